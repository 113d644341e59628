package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"soliditydocs/app/internal/data/database"
	"soliditydocs/app/internal/domain/docs"
	"soliditydocs/app/internal/presentation/http/templates"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	searchResultsLimit   = 10
	errorFallbackMessage = "We couldn't process your request right now."
	notFoundMessage      = "We couldn't find that example. Browse the full list from the home page."
	noPagesMessage       = "No examples have been indexed yet."
)

type htmlResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Location    string `header:"Location"`
	Body        []byte
}

type pageInput struct {
	Series string `path:"series"`
	Slug   string `path:"slug"`
}

type searchInput struct {
	Query string `query:"q"`
}

type pageSummary struct {
	Route       string `json:"route"`
	Version     string `json:"version"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type pageDetail struct {
	pageSummary
	Body      string   `json:"body"`
	Headings  []string `json:"headings"`
	Languages []string `json:"languages"`
}

type pageListResponse struct {
	Body []pageSummary
}

type pageDetailResponse struct {
	Body pageDetail
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Pages    int64  `json:"pages"`
		Indexed  int64  `json:"indexed"`
	}
}

func (s *Server) registerHomeRoute() {
	huma.Get(s.api, "/", s.homeHandler, htmlOperation("List examples", stdhttp.StatusInternalServerError))
}

func (s *Server) registerRandomRoute() {
	huma.Get(s.api, "/random", s.randomHandler, htmlOperation(
		"Redirect to random example",
		stdhttp.StatusFound,
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerPageRoute() {
	huma.Get(s.api, "/{series}/{slug}", s.pageHandler, htmlOperation(
		"Render example page",
		stdhttp.StatusBadRequest,
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerSearchRoute() {
	huma.Get(s.api, "/search", s.searchHandler, htmlOperation(
		"Search examples",
		stdhttp.StatusBadRequest,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerAPIRoutes() {
	huma.Get(s.api, "/api/pages", s.apiListHandler, func(op *huma.Operation) {
		op.Summary = "List page records"
	})
	huma.Get(s.api, "/api/pages/{series}/{slug}", s.apiPageHandler, func(op *huma.Operation) {
		op.Summary = "Fetch page record"
	})
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	entries, err := s.docs.ListPages(ctx)
	if err != nil {
		s.recordError(ctx, err, "listing pages", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't load the examples right now.")
	}

	data := templates.HomePageData{
		PageCountLabel: fmt.Sprintf("%d examples published.", len(entries)),
		Series:         groupBySeries(entries),
	}

	body, err := renderComponent(ctx, templates.HomePage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering home page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render the homepage.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) randomHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	route, err := s.docs.RandomRoute(ctx)
	if err != nil {
		status := stdhttp.StatusInternalServerError
		message := errorFallbackMessage

		if eris.Is(err, docs.ErrNoPages) {
			status = stdhttp.StatusNotFound
			message = noPagesMessage
		}

		s.recordError(ctx, err, "selecting random page", nil)
		return s.renderErrorResponse(ctx, status, message)
	}

	response := newHTMLResponse(stdhttp.StatusFound, nil)
	response.Location = route

	return response, nil
}

func (s *Server) pageHandler(ctx context.Context, input *pageInput) (*htmlResponse, error) {
	route := routeFromInput(input)
	page, err := s.docs.GetPage(ctx, route)
	if err != nil {
		status, message := classifyError(err)
		if status >= stdhttp.StatusInternalServerError {
			s.recordError(ctx, err, "loading page", logrus.Fields{"route": route})
		}
		return s.renderErrorResponse(ctx, status, message)
	}

	data := templates.DocPageData{
		Title:       page.Record.Title,
		Description: page.Record.Description,
		Version:     page.Record.Version,
		Route:       page.Route,
		Languages:   page.Outline.Languages(),
		HTML:        page.Record.Body,
	}
	for _, heading := range page.Outline.Headings {
		data.Headings = append(data.Headings, templates.HeadingView{ID: heading.ID, Text: heading.Text, Level: heading.Level})
	}

	body, err := renderComponent(ctx, templates.DocPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering page", logrus.Fields{"route": route})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) searchHandler(ctx context.Context, input *searchInput) (*htmlResponse, error) {
	query := strings.TrimSpace(input.Query)
	data := templates.SearchPageData{Query: query}

	status := stdhttp.StatusOK

	if query != "" {
		results, err := s.docs.Search(ctx, query, searchResultsLimit)
		if err != nil {
			s.recordError(ctx, err, "search request failed", logrus.Fields{"query": query})
			errStatus, message := classifyError(err)
			data.ErrorMessage = message
			status = errStatus
		} else {
			data.Results = make([]templates.SearchResultView, 0, len(results))
			for _, result := range results {
				data.Results = append(data.Results, templates.SearchResultView{
					Title: result.Title,
					URL:   result.Route,
				})
			}
		}
	}

	body, err := renderComponent(ctx, templates.SearchPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering search page", logrus.Fields{"query": query})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render search results right now.")
	}

	return newHTMLResponse(status, body), nil
}

func (s *Server) apiListHandler(ctx context.Context, _ *struct{}) (*pageListResponse, error) {
	entries, err := s.docs.ListPages(ctx)
	if err != nil {
		s.recordError(ctx, err, "listing pages", nil)
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	resp := &pageListResponse{Body: make([]pageSummary, 0, len(entries))}
	for _, entry := range entries {
		resp.Body = append(resp.Body, toSummary(entry.Route, entry.Record))
	}

	return resp, nil
}

func (s *Server) apiPageHandler(ctx context.Context, input *pageInput) (*pageDetailResponse, error) {
	route := routeFromInput(input)
	page, err := s.docs.GetPage(ctx, route)
	if err != nil {
		status, message := classifyError(err)
		if status >= stdhttp.StatusInternalServerError {
			s.recordError(ctx, err, "loading page record", logrus.Fields{"route": route})
		}
		return nil, huma.NewError(status, message)
	}

	detail := pageDetail{
		pageSummary: toSummary(page.Route, page.Record),
		Body:        page.Record.Body,
		Headings:    make([]string, 0, len(page.Outline.Headings)),
		Languages:   page.Outline.Languages(),
	}
	for _, heading := range page.Outline.Headings {
		detail.Headings = append(detail.Headings, heading.Text)
	}

	return &pageDetailResponse{Body: detail}, nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"

	if s.db == nil {
		resp.Body.Status = "degraded"
		resp.Body.Database = "unconfigured"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if err := database.Ping(ctx, s.db); err != nil {
		s.recordError(ctx, err, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	count, err := s.docs.CountPages(ctx)
	if err != nil {
		s.recordError(ctx, err, "counting pages", nil)
		resp.Body.Status = "degraded"
		resp.Status = stdhttp.StatusServiceUnavailable
	}
	resp.Body.Pages = count

	indexed, err := s.docs.IndexedPages(ctx)
	switch {
	case err != nil:
		s.recordError(ctx, err, "counting indexed pages", nil)
		resp.Body.Status = "degraded"
		resp.Status = stdhttp.StatusServiceUnavailable
	case indexed != count:
		resp.Body.Status = "degraded"
		resp.Status = stdhttp.StatusServiceUnavailable
	}
	resp.Body.Indexed = indexed

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

func routeFromInput(input *pageInput) string {
	return "/" + strings.TrimSpace(input.Series) + "/" + strings.TrimSpace(input.Slug)
}

func toSummary(route string, record docs.PageRecord) pageSummary {
	return pageSummary{
		Route:       route,
		Version:     record.Version,
		Title:       record.Title,
		Description: record.Description,
	}
}

func groupBySeries(entries []docs.Entry) []templates.SeriesView {
	var groups []templates.SeriesView
	index := make(map[string]int)

	for _, entry := range entries {
		series := entry.Record.Series()
		pos, ok := index[series]
		if !ok {
			pos = len(groups)
			index[series] = pos
			groups = append(groups, templates.SeriesView{Series: series})
		}
		groups[pos].Pages = append(groups[pos].Pages, templates.PageLinkView{
			Title:       entry.Record.Title,
			Description: entry.Record.Description,
			URL:         entry.Route,
			Version:     entry.Record.Version,
		})
	}

	return groups
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

func classifyError(err error) (int, string) {
	switch {
	case err == nil:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	case eris.Is(err, docs.ErrPageNotFound):
		return stdhttp.StatusNotFound, notFoundMessage
	case eris.Is(err, docs.ErrNoPages):
		return stdhttp.StatusNotFound, noPagesMessage
	}

	cause := strings.ToLower(eris.Cause(err).Error())
	switch {
	case strings.Contains(cause, "route is required"), strings.Contains(cause, "invalid characters"):
		return stdhttp.StatusBadRequest, "That is not a valid example address."
	case strings.Contains(cause, "query is required"):
		return stdhttp.StatusBadRequest, "Enter a search query to find an example."
	default:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	}
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) (*htmlResponse, error) {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	template := templates.ErrorPage(templates.ErrorPageData{
		StatusLabel: label,
		Message:     message,
	})

	body, err := renderComponent(ctx, template)
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		fallback := []byte(fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>", label, message))
		return newHTMLResponse(status, fallback), nil
	}

	return newHTMLResponse(status, body), nil
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
