package docs

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Catalog is the read-only set of published pages keyed by route.
// It is built once and may be shared between goroutines without locking.
type Catalog struct {
	entries map[string]catalogEntry
	routes  []string
	series  []string
}

type catalogEntry struct {
	record  PageRecord
	outline Outline
}

// NewCatalog validates the provided entries and indexes them by normalised route.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	catalog := &Catalog{entries: make(map[string]catalogEntry, len(entries))}
	seriesSet := make(map[string]struct{})

	for _, entry := range entries {
		route, err := NormalizeRoute(entry.Route)
		if err != nil {
			return nil, eris.Wrapf(err, "registering page %q", entry.Record.Title)
		}

		if _, exists := catalog.entries[route]; exists {
			return nil, eris.Errorf("page with route %s already registered", route)
		}

		if err := entry.Record.Validate(); err != nil {
			return nil, eris.Wrapf(err, "registering page %s", route)
		}

		outline, err := InspectBody(entry.Record.Body)
		if err != nil {
			return nil, eris.Wrapf(err, "inspecting body of page %s", route)
		}

		catalog.entries[route] = catalogEntry{record: entry.Record, outline: outline}
		catalog.routes = append(catalog.routes, route)
		seriesSet[entry.Record.Series()] = struct{}{}
	}

	sort.Strings(catalog.routes)

	for series := range seriesSet {
		catalog.series = append(catalog.series, series)
	}
	sort.Strings(catalog.series)

	return catalog, nil
}

// NormalizeRoute trims, lower-cases and slash-normalises a catalog route.
func NormalizeRoute(route string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(route), "/")
	if trimmed == "" {
		return "", eris.New("route is required")
	}
	if strings.ContainsAny(trimmed, " ?#\\") {
		return "", eris.Errorf("route %s contains invalid characters", route)
	}
	return "/" + strings.ToLower(trimmed), nil
}

// Lookup returns the record published under the route.
func (c *Catalog) Lookup(route string) (PageRecord, bool) {
	entry, ok := c.find(route)
	return entry.record, ok
}

// Outline returns the structural outline of the page published under the route.
func (c *Catalog) Outline(route string) (Outline, bool) {
	entry, ok := c.find(route)
	return entry.outline, ok
}

// Routes returns every registered route in lexical order.
func (c *Catalog) Routes() []string {
	routes := make([]string, len(c.routes))
	copy(routes, c.routes)
	return routes
}

// Entries returns every registered page ordered by route.
func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, 0, len(c.routes))
	for _, route := range c.routes {
		entries = append(entries, Entry{Route: route, Record: c.entries[route].record})
	}
	return entries
}

// Series returns the distinct MAJOR.MINOR version series in lexical order.
func (c *Catalog) Series() []string {
	series := make([]string, len(c.series))
	copy(series, c.series)
	return series
}

// Len returns the number of registered pages.
func (c *Catalog) Len() int {
	return len(c.routes)
}

func (c *Catalog) find(route string) (catalogEntry, bool) {
	if c == nil {
		return catalogEntry{}, false
	}
	normalized, err := NormalizeRoute(route)
	if err != nil {
		return catalogEntry{}, false
	}
	entry, ok := c.entries[normalized]
	return entry, ok
}
