package templates

// SiteName is shown in the header and page titles.
const SiteName = "Solidity by Example"

// DefaultFooterNote is shown in the shared layout when a page does not supply custom text.
const DefaultFooterNote = "Examples target the Solidity version shown on each page. Verify contracts before deploying them."

// LayoutData holds the values shared by every page.
type LayoutData struct {
	Title       string
	Description string
	Query       string
	FooterNote  string
}

// PageLinkView represents a link to a documentation page.
type PageLinkView struct {
	Title       string
	Description string
	URL         string
	Version     string
}

// SeriesView groups page links by compiler version series.
type SeriesView struct {
	Series string
	Pages  []PageLinkView
}

// HomePageData contains dynamic values rendered on the landing page.
type HomePageData struct {
	PageCountLabel string
	Series         []SeriesView
}

// HeadingView is an entry of a page table of contents.
type HeadingView struct {
	ID    string
	Text  string
	Level int
}

// DocPageData contains the dynamic values for a documentation page.
type DocPageData struct {
	Title       string
	Description string
	Version     string
	Route       string
	Languages   []string
	Headings    []HeadingView
	HTML        string
}

// SearchResultView represents an individual search result entry.
type SearchResultView struct {
	Title string
	URL   string
}

// SearchPageData bundles template data for the search results page.
type SearchPageData struct {
	Query        string
	Results      []SearchResultView
	ErrorMessage string
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	StatusLabel string
	Message     string
}
