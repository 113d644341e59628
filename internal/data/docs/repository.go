package docs

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domaindocs "soliditydocs/app/internal/domain/docs"
)

const likeEscape = "!"

// Repository persists the page search index using a Gorm database connection.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &Repository{db: db, logger: logger}, nil
}

var _ domaindocs.Repository = (*Repository)(nil)

// Upsert inserts or refreshes the indexed copy of a page.
// It reports false when the stored content hash already matches.
func (r *Repository) Upsert(ctx context.Context, entry domaindocs.Entry) (bool, error) {
	route := strings.TrimSpace(entry.Route)
	if route == "" {
		return false, eris.New("page route is required")
	}

	hash := contentHash(entry.Record)

	var row PageRow
	err := r.db.WithContext(ctx).First(&row, "route = ?", route).Error
	switch {
	case err == nil:
		if row.ContentHash == hash {
			return false, nil
		}
	case eris.Is(err, gorm.ErrRecordNotFound):
		row = PageRow{Route: route}
	default:
		r.logError(logrus.Fields{"route": route}, err, "loading indexed page")
		return false, eris.Wrapf(err, "loading indexed page: %s", route)
	}

	row.Version = entry.Record.Version
	row.Series = entry.Record.Series()
	row.Title = entry.Record.Title
	row.Description = entry.Record.Description
	row.Body = entry.Record.Body
	row.ContentHash = hash

	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		r.logError(logrus.Fields{"route": route}, err, "saving indexed page")
		return false, eris.Wrapf(err, "saving indexed page: %s", route)
	}

	return true, nil
}

// DeleteExcept hard deletes indexed pages whose route is not listed and reports how many were removed.
// An empty list clears the index.
func (r *Repository) DeleteExcept(ctx context.Context, routes []string) (int64, error) {
	tx := r.db.WithContext(ctx).Unscoped()
	if len(routes) == 0 {
		tx = tx.Where("1 = 1")
	} else {
		tx = tx.Where("route NOT IN ?", routes)
	}

	result := tx.Delete(&PageRow{})
	if result.Error != nil {
		r.logError(logrus.Fields{"keep": len(routes)}, result.Error, "pruning indexed pages")
		return 0, eris.Wrap(result.Error, "pruning indexed pages")
	}

	return result.RowsAffected, nil
}

// CountPages returns the total number of indexed pages.
func (r *Repository) CountPages(ctx context.Context) (int64, error) {
	var count int64

	if err := r.db.WithContext(ctx).Model(&PageRow{}).Count(&count).Error; err != nil {
		r.logError(nil, err, "counting pages")
		return 0, eris.Wrap(err, "counting pages")
	}

	return count, nil
}

// RandomPage returns a single random page or nil when the index is empty.
func (r *Repository) RandomPage(ctx context.Context) (*domaindocs.Entry, error) {
	var row PageRow

	if err := r.db.WithContext(ctx).Order("RANDOM()").First(&row).Error; err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(nil, err, "selecting random page")
		return nil, eris.Wrap(err, "selecting random page")
	}

	return toDomainEntry(&row), nil
}

// SearchKeyword matches every whitespace separated term against title, description and body.
// Pages whose title contains the whole query rank first. SQLite LIKE folds ASCII case only,
// so non-ASCII terms match case-sensitively.
func (r *Repository) SearchKeyword(ctx context.Context, query string, limit int) ([]domaindocs.SearchResult, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, eris.New("query is required")
	}

	tx := r.db.WithContext(ctx).Model(&PageRow{}).Select("route", "title")
	for _, term := range terms {
		pattern := likePattern(term)
		tx = tx.Where(
			"title LIKE ? ESCAPE '"+likeEscape+"' OR description LIKE ? ESCAPE '"+likeEscape+"' OR body LIKE ? ESCAPE '"+likeEscape+"'",
			pattern, pattern, pattern,
		)
	}

	phrase := likePattern(strings.Join(terms, " "))
	tx = tx.Order(clause.OrderBy{Expression: clause.Expr{
		SQL:                "CASE WHEN title LIKE ? ESCAPE '" + likeEscape + "' THEN 0 WHEN description LIKE ? ESCAPE '" + likeEscape + "' THEN 1 ELSE 2 END",
		Vars:               []any{phrase, phrase},
		WithoutParentheses: true,
	}}).Order("route ASC")

	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var rows []PageRow
	if err := tx.Find(&rows).Error; err != nil {
		r.logError(logrus.Fields{"query": query}, err, "searching pages")
		return nil, eris.Wrap(err, "searching pages")
	}

	results := make([]domaindocs.SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, domaindocs.SearchResult{
			Route: strings.TrimSpace(row.Route),
			Title: strings.TrimSpace(row.Title),
		})
	}

	return results, nil
}

func (r *Repository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func likePattern(term string) string {
	replacer := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + replacer.Replace(term) + "%"
}

func toDomainEntry(row *PageRow) *domaindocs.Entry {
	if row == nil {
		return nil
	}

	return &domaindocs.Entry{
		Route: strings.TrimSpace(row.Route),
		Record: domaindocs.PageRecord{
			Version:     row.Version,
			Title:       row.Title,
			Description: row.Description,
			Body:        row.Body,
		},
	}
}
