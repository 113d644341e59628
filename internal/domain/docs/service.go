package docs

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	domainllm "soliditydocs/app/internal/domain/llm"
)

// Service defines the documentation operations exposed to the presentation layer.
type Service interface {
	GetPage(ctx context.Context, route string) (*Page, error)
	ListPages(ctx context.Context) ([]Entry, error)
	CountPages(ctx context.Context) (int64, error)
	IndexedPages(ctx context.Context) (int64, error)
	RandomRoute(ctx context.Context) (string, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	SyncIndex(ctx context.Context) error
}

// ErrPageNotFound indicates the requested route is not part of the catalog.
var ErrPageNotFound = eris.New("page not found")

// ErrNoPages indicates the search index holds no pages to select from.
var ErrNoPages = eris.New("no documentation pages available")

const defaultSearchLimit = 10

type service struct {
	catalog   *Catalog
	repo      Repository
	searcher  domainllm.Searcher
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

var _ Service = (*service)(nil)

// NewService wires the docs service. The searcher is optional; keyword search is used without it.
func NewService(catalog *Catalog, repo Repository, searcher domainllm.Searcher, logger *logrus.Logger, hub *sentry.Hub) (Service, error) {
	if catalog == nil {
		return nil, eris.New("page catalog is required")
	}
	if repo == nil {
		return nil, eris.New("docs repository is required")
	}

	return &service{
		catalog:   catalog,
		repo:      repo,
		searcher:  searcher,
		logger:    logger,
		sentryHub: hub,
	}, nil
}

func (s *service) GetPage(_ context.Context, route string) (*Page, error) {
	normalized, err := NormalizeRoute(route)
	if err != nil {
		return nil, err
	}

	record, ok := s.catalog.Lookup(normalized)
	if !ok {
		return nil, eris.Wrapf(ErrPageNotFound, "looking up route %s", normalized)
	}

	outline, _ := s.catalog.Outline(normalized)

	return &Page{Route: normalized, Record: record, Outline: outline}, nil
}

func (s *service) ListPages(_ context.Context) ([]Entry, error) {
	return s.catalog.Entries(), nil
}

func (s *service) CountPages(_ context.Context) (int64, error) {
	return int64(s.catalog.Len()), nil
}

// IndexedPages reports the size of the search index, which matches CountPages once SyncIndex has run.
func (s *service) IndexedPages(ctx context.Context) (int64, error) {
	count, err := s.repo.CountPages(ctx)
	if err != nil {
		s.recordError(nil, err, "counting indexed pages")
		return 0, eris.Wrap(err, "counting indexed pages")
	}
	return count, nil
}

func (s *service) RandomRoute(ctx context.Context) (string, error) {
	entry, err := s.repo.RandomPage(ctx)
	if err != nil {
		s.recordError(nil, err, "selecting random page")
		return "", eris.Wrap(err, "selecting random page")
	}

	if entry == nil {
		return "", eris.Wrap(ErrNoPages, "selecting random page")
	}

	route := strings.TrimSpace(entry.Route)
	if _, ok := s.catalog.Lookup(route); !ok {
		err := eris.Errorf("indexed route %s is not in the catalog", route)
		s.recordError(logrus.Fields{"route": route}, err, "validating random page")
		return "", err
	}

	return route, nil
}

func (s *service) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	trimmedQuery := strings.TrimSpace(query)
	if trimmedQuery == "" {
		return nil, eris.New("query is required")
	}

	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if s.searcher != nil {
		results, err := s.searchWithLLM(ctx, trimmedQuery, limit)
		if err != nil {
			s.recordError(logrus.Fields{"query": trimmedQuery}, err, "llm search failed, falling back to keyword index")
		} else if len(results) > 0 {
			return results, nil
		}
	}

	results, err := s.repo.SearchKeyword(ctx, trimmedQuery, limit)
	if err != nil {
		s.recordError(logrus.Fields{"query": trimmedQuery}, err, "performing keyword search")
		return nil, eris.Wrap(err, "keyword search failure")
	}

	return s.catalogResults(results, limit), nil
}

// catalogResults keeps index hits that still resolve in the catalog, titled from the catalog record.
func (s *service) catalogResults(hits []SearchResult, limit int) []SearchResult {
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		record, ok := s.catalog.Lookup(strings.TrimSpace(hit.Route))
		if !ok {
			continue
		}
		results = append(results, SearchResult{Route: strings.TrimSpace(hit.Route), Title: record.Title})
		if len(results) == limit {
			break
		}
	}
	return results
}

func (s *service) searchWithLLM(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	entries := s.catalog.Entries()
	candidates := make([]domainllm.Candidate, 0, len(entries))
	for _, entry := range entries {
		candidates = append(candidates, domainllm.Candidate{
			Route:       entry.Route,
			Title:       entry.Record.Title,
			Description: entry.Record.Description,
		})
	}

	routes, err := s.searcher.Search(ctx, query, candidates, limit)
	if err != nil {
		return nil, eris.Wrap(err, "llm search failure")
	}

	seen := make(map[string]struct{}, len(routes))
	results := make([]SearchResult, 0, len(routes))
	for _, route := range routes {
		normalized, err := NormalizeRoute(route)
		if err != nil {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		record, ok := s.catalog.Lookup(normalized)
		if !ok {
			continue
		}
		seen[normalized] = struct{}{}
		results = append(results, SearchResult{Route: normalized, Title: record.Title})
		if len(results) == limit {
			break
		}
	}

	return results, nil
}

func (s *service) SyncIndex(ctx context.Context) error {
	updated := 0
	for _, entry := range s.catalog.Entries() {
		changed, err := s.repo.Upsert(ctx, entry)
		if err != nil {
			s.recordError(logrus.Fields{"route": entry.Route}, err, "indexing page")
			return eris.Wrapf(err, "indexing page: %s", entry.Route)
		}
		if changed {
			updated++
		}
	}

	removed, err := s.repo.DeleteExcept(ctx, s.catalog.Routes())
	if err != nil {
		s.recordError(nil, err, "pruning index")
		return eris.Wrap(err, "pruning index")
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"pages":   s.catalog.Len(),
			"updated": updated,
			"removed": removed,
		}).Info("search index synchronised")
	}

	return nil
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
