package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestDocPageRendersBodyUnescaped(t *testing.T) {
	t.Parallel()

	body := renderString(t, DocPage(DocPageData{
		Title:       "Sending Ether (transfer, send, call)",
		Description: "An example of sending Ether in Solidity",
		Version:     "0.6.10",
		Route:       "/0.6/sending-ether",
		Languages:   []string{"solidity"},
		Headings:    []HeadingView{{ID: "send", Text: "How to send Ether?", Level: 3}},
		HTML:        `<h3 id="send">How to send Ether?</h3>`,
	}))

	for _, want := range []string{
		`<title>Sending Ether (transfer, send, call) | Solidity by Example</title>`,
		`<meta name="description" content="An example of sending Ether in Solidity">`,
		`<h3 id="send">How to send Ether?</h3>`,
		`<li data-level="3"><a href="#send">How to send Ether?</a></li>`,
		`<span class="language">solidity</span>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in output, got %q", want, body)
		}
	}
}

func TestSearchPageEscapesQuery(t *testing.T) {
	t.Parallel()

	body := renderString(t, SearchPage(SearchPageData{Query: `<script>alert(1)</script>`}))

	if strings.Contains(body, "<script>") {
		t.Fatalf("expected query to be escaped, got %q", body)
	}
	if !strings.Contains(body, "No examples matched") {
		t.Fatalf("expected empty results message, got %q", body)
	}
}

func TestLayoutEscapesQueryAttribute(t *testing.T) {
	t.Parallel()

	body := renderString(t, SearchPage(SearchPageData{Query: `ether" onfocus="x`}))

	if strings.Contains(body, `onfocus="x"`) {
		t.Fatalf("expected quote in query attribute to be escaped, got %q", body)
	}
	if !strings.Contains(body, `value="ether&#34; onfocus=&#34;x"`) {
		t.Fatalf("expected escaped query in search box, got %q", body)
	}
}

func TestLayoutOmitsEmptyDescription(t *testing.T) {
	t.Parallel()

	body := renderString(t, ErrorPage(ErrorPageData{StatusLabel: "500 Internal Server Error", Message: "Oops"}))

	if strings.Contains(body, `name="description"`) {
		t.Fatalf("expected no description meta tag, got %q", body)
	}
	if !strings.Contains(body, "<title>500 Internal Server Error | Solidity by Example</title>") {
		t.Fatalf("expected status in title, got %q", body)
	}
}

func TestSearchPagePromptsForBlankQuery(t *testing.T) {
	t.Parallel()

	body := renderString(t, SearchPage(SearchPageData{}))

	if !strings.Contains(body, "Enter a search query") {
		t.Fatalf("expected prompt for blank query, got %q", body)
	}
}

func TestHomePageGroupsSeries(t *testing.T) {
	t.Parallel()

	body := renderString(t, HomePage(HomePageData{
		PageCountLabel: "1 examples published.",
		Series: []SeriesView{{
			Series: "0.6",
			Pages:  []PageLinkView{{Title: "Sending Ether", URL: "/0.6/sending-ether", Version: "0.6.10"}},
		}},
	}))

	for _, want := range []string{"<h2>Solidity 0.6</h2>", `<a href="/0.6/sending-ether">Sending Ether</a>`, DefaultFooterNote} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in output, got %q", want, body)
		}
	}
}

func TestErrorPageShowsStatus(t *testing.T) {
	t.Parallel()

	body := renderString(t, ErrorPage(ErrorPageData{StatusLabel: "404 Not Found", Message: "Missing"}))

	if !strings.Contains(body, "<h1>404 Not Found</h1>") || !strings.Contains(body, "<p>Missing</p>") {
		t.Fatalf("unexpected error page %q", body)
	}
}

func TestRawHTMLStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := RawHTML("<p>x</p>").Render(ctx, &buf); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func renderString(t *testing.T, component templ.Component) string {
	t.Helper()

	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	return buf.String()
}
