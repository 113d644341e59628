package llm

import "context"

// Candidate is a page the searcher may choose from.
type Candidate struct {
	Route       string
	Title       string
	Description string
}

// Searcher defines the behaviour for ranking documentation pages against a query.
type Searcher interface {
	Search(ctx context.Context, query string, candidates []Candidate, limit int) ([]string, error)
}
