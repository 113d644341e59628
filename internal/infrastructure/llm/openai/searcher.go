package openai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	domainllm "soliditydocs/app/internal/domain/llm"
)

// SearcherOptions configures the LLM-backed page searcher.
type SearcherOptions struct {
	Client       *Client
	Model        string
	Temperature  float64
	SystemPrompt string
}

type searcher struct {
	client       *Client
	logger       *logrus.Logger
	model        string
	temperature  float64
	systemPrompt string
}

var routePattern = regexp.MustCompile(`\d+\.\d+/[A-Za-z0-9][A-Za-z0-9-]*`)

const (
	defaultSearcherSystemPrompt = "You help readers find pages on a Solidity by example documentation site. You receive a query and a list of pages, one per line, formatted as route | title | description. Respond only with the routes of the most relevant pages, most relevant first, separated by commas. Never invent routes that are not in the list. Example response: /0.6/sending-ether, /0.6/fallback"
	defaultSearcherTemperature  = 0.1
)

// NewSearcher constructs a Searcher implementation backed by an OpenAI-compatible chat model.
func NewSearcher(opts SearcherOptions) (domainllm.Searcher, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("search model is required")
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultSearcherTemperature
	}

	systemPrompt := strings.TrimSpace(opts.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultSearcherSystemPrompt
	}

	return &searcher{
		client:       opts.Client,
		logger:       opts.Client.logger,
		model:        model,
		temperature:  temperature,
		systemPrompt: systemPrompt,
	}, nil
}

func (s *searcher) Search(ctx context.Context, query string, candidates []domainllm.Candidate, limit int) ([]string, error) {
	trimmedQuery := strings.TrimSpace(query)
	if trimmedQuery == "" {
		return nil, eris.New("query is required")
	}

	if limit <= 0 {
		return nil, eris.New("number of results must be positive")
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	known := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		known[normalizeRoute(candidate.Route)] = struct{}{}
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(s.systemPrompt),
			openai.UserMessage(buildSearchPrompt(trimmedQuery, candidates, limit)),
		},
		Temperature: openai.Float(s.temperature),
	}

	completion, err := s.client.chat.New(ctx, params)
	if err != nil {
		s.logError(logrus.Fields{"query": trimmedQuery}, err, "requesting search completion")
		return nil, eris.Wrap(err, "requesting search completion")
	}

	if len(completion.Choices) == 0 {
		err := eris.New("llm completion returned no choices")
		s.logError(logrus.Fields{"query": trimmedQuery}, err, "search completion empty")
		return nil, err
	}

	choice := completion.Choices[0]
	if reason := strings.TrimSpace(choice.FinishReason); strings.EqualFold(reason, "content_filter") {
		err := eris.New("llm blocked the search via content filter")
		s.logError(logrus.Fields{"query": trimmedQuery}, err, "search blocked")
		return nil, err
	}

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		err := eris.Errorf("llm refused to perform search: %s", refusal)
		s.logError(logrus.Fields{"query": trimmedQuery}, err, "search refused")
		return nil, err
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		err := eris.New("llm search response is empty")
		s.logError(logrus.Fields{"query": trimmedQuery}, err, "empty search response")
		return nil, err
	}

	seen := make(map[string]struct{})
	routes := make([]string, 0, limit)
	for _, raw := range extractList(content) {
		route := routeFromLine(raw)
		if route == "" {
			continue
		}
		if _, ok := known[route]; !ok {
			continue
		}
		if _, dup := seen[route]; dup {
			continue
		}
		seen[route] = struct{}{}
		routes = append(routes, route)
		if len(routes) == limit {
			break
		}
	}

	if len(routes) == 0 {
		if s.logger != nil {
			s.logger.WithField("query", trimmedQuery).Debug("llm search picked no known routes")
		}
		return nil, nil
	}

	return routes, nil
}

func (s *searcher) logError(fields logrus.Fields, err error, message string) {
	if s.logger == nil || err == nil {
		return
	}

	entry := s.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func buildSearchPrompt(query string, candidates []domainllm.Candidate, limit int) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Query: %s\nReturn at most %d routes separated by commas.\nPages:\n", query, limit)
	for _, candidate := range candidates {
		fmt.Fprintf(&builder, "%s | %s | %s\n", candidate.Route, candidate.Title, candidate.Description)
	}
	return builder.String()
}

func extractList(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.Index(trimmed, "\n"); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		trimmed = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed), "```"))
	}

	replacer := strings.NewReplacer("\n", ",", ";", ",")
	parts := strings.Split(replacer.Replace(trimmed), ",")

	results := make([]string, 0, len(parts))
	for _, part := range parts {
		if cleaned := strings.TrimSpace(part); cleaned != "" {
			results = append(results, cleaned)
		}
	}

	return results
}

// routeFromLine picks the first /MAJOR.MINOR/slug shaped route out of a response line,
// tolerating list markers, quotes and trailing commentary.
func routeFromLine(line string) string {
	match := routePattern.FindString(line)
	if match == "" {
		return ""
	}
	return normalizeRoute(match)
}

func normalizeRoute(route string) string {
	trimmed := strings.Trim(strings.TrimSpace(route), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + strings.ToLower(trimmed)
}

var _ domainllm.Searcher = (*searcher)(nil)
