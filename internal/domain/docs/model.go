package docs

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rotisserie/eris"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// PageRecord is the immutable content of a single documentation page.
type PageRecord struct {
	Version     string `json:"version"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Body        string `json:"body"`
}

// Validate reports whether every field of the record is present and the version is a dotted triplet.
func (r PageRecord) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Version, validation.Required, validation.Match(versionPattern).Error("must be MAJOR.MINOR.PATCH")),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.Body, validation.Required),
	)
	if err != nil {
		return eris.Wrap(err, "invalid page record")
	}
	return nil
}

// Series returns the MAJOR.MINOR prefix of the record version.
func (r PageRecord) Series() string {
	parts := strings.SplitN(strings.TrimSpace(r.Version), ".", 3)
	if len(parts) < 2 {
		return strings.TrimSpace(r.Version)
	}
	return parts[0] + "." + parts[1]
}

// Entry binds a page record to the route it is published under.
type Entry struct {
	Route  string
	Record PageRecord
}

// Page is a catalog entry resolved for presentation.
type Page struct {
	Route   string
	Record  PageRecord
	Outline Outline
}

// SearchResult represents a page returned by search operations.
type SearchResult struct {
	Route string
	Title string
}
