package docs

import "context"

// Repository defines the search index persistence operations supported by the docs domain.
type Repository interface {
	Upsert(ctx context.Context, entry Entry) (bool, error)
	DeleteExcept(ctx context.Context, routes []string) (int64, error)
	CountPages(ctx context.Context) (int64, error)
	RandomPage(ctx context.Context) (*Entry, error)
	SearchKeyword(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
