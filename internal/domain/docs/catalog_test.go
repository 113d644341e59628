package docs

import (
	"sync"
	"testing"
)

const sampleBody = `<h3 id="intro">Intro</h3>
<p>Example</p>
<pre><code class="language-solidity">contract A {}
</code></pre>`

func sampleEntry(route, version, title string) Entry {
	return Entry{
		Route: route,
		Record: PageRecord{
			Version:     version,
			Title:       title,
			Description: title + " description",
			Body:        sampleBody,
		},
	}
}

func TestPageRecordValidateRejectsMissingFields(t *testing.T) {
	t.Parallel()

	cases := map[string]PageRecord{
		"version":     {Title: "t", Description: "d", Body: "b"},
		"title":       {Version: "0.6.10", Description: "d", Body: "b"},
		"description": {Version: "0.6.10", Title: "t", Body: "b"},
		"body":        {Version: "0.6.10", Title: "t", Description: "d"},
		"bad version": {Version: "0.6", Title: "t", Description: "d", Body: "b"},
	}

	for name, record := range cases {
		if err := record.Validate(); err == nil {
			t.Fatalf("expected validation error for %s", name)
		}
	}
}

func TestPageRecordSeries(t *testing.T) {
	t.Parallel()

	record := PageRecord{Version: "0.8.24"}
	if got := record.Series(); got != "0.8" {
		t.Fatalf("expected series 0.8, got %q", got)
	}
}

func TestNewCatalogNormalisesRoutes(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog(sampleEntry(" 0.6/Hello-World/ ", "0.6.10", "Hello"))
	if err != nil {
		t.Fatalf("NewCatalog returned error: %v", err)
	}

	routes := catalog.Routes()
	if len(routes) != 1 || routes[0] != "/0.6/hello-world" {
		t.Fatalf("expected normalised route, got %v", routes)
	}

	if _, ok := catalog.Lookup("/0.6/hello-world/"); !ok {
		t.Fatalf("expected lookup with trailing slash to succeed")
	}
}

func TestNewCatalogRejectsDuplicateRoutes(t *testing.T) {
	t.Parallel()

	_, err := NewCatalog(
		sampleEntry("/0.6/alpha", "0.6.10", "Alpha"),
		sampleEntry("/0.6/ALPHA", "0.6.10", "Alpha again"),
	)
	if err == nil {
		t.Fatalf("expected duplicate route error")
	}
}

func TestNewCatalogRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	entry := sampleEntry("/0.6/alpha", "0.6.10", "Alpha")
	entry.Record.Description = ""

	if _, err := NewCatalog(entry); err == nil {
		t.Fatalf("expected invalid record error")
	}
}

func TestNewCatalogRejectsUntaggedCodeSamples(t *testing.T) {
	t.Parallel()

	entry := sampleEntry("/0.6/alpha", "0.6.10", "Alpha")
	entry.Record.Body = "<h3>Alpha</h3><pre><code>contract A {}</code></pre>"

	if _, err := NewCatalog(entry); err == nil {
		t.Fatalf("expected error for code sample without language")
	}
}

func TestCatalogEntriesAndSeriesAreSorted(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog(
		sampleEntry("/0.8/zulu", "0.8.3", "Zulu"),
		sampleEntry("/0.6/beta", "0.6.10", "Beta"),
		sampleEntry("/0.6/alpha", "0.6.10", "Alpha"),
	)
	if err != nil {
		t.Fatalf("NewCatalog returned error: %v", err)
	}

	entries := catalog.Entries()
	expected := []string{"/0.6/alpha", "/0.6/beta", "/0.8/zulu"}
	for idx, route := range expected {
		if entries[idx].Route != route {
			t.Fatalf("expected route %q at index %d, got %q", route, idx, entries[idx].Route)
		}
	}

	series := catalog.Series()
	if len(series) != 2 || series[0] != "0.6" || series[1] != "0.8" {
		t.Fatalf("unexpected series %v", series)
	}
}

func TestCatalogCopiesDoNotAlterEntries(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog(sampleEntry("/0.6/alpha", "0.6.10", "Alpha"))
	if err != nil {
		t.Fatalf("NewCatalog returned error: %v", err)
	}

	routes := catalog.Routes()
	routes[0] = "/mutated"

	entries := catalog.Entries()
	entries[0].Record.Title = "mutated"

	record, ok := catalog.Lookup("/0.6/alpha")
	if !ok || record.Title != "Alpha" {
		t.Fatalf("expected catalog to be unaffected, got %#v", record)
	}
	if catalog.Routes()[0] != "/0.6/alpha" {
		t.Fatalf("expected routes to be unaffected")
	}
}

func TestCatalogConcurrentReads(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog(sampleEntry("/0.6/alpha", "0.6.10", "Alpha"))
	if err != nil {
		t.Fatalf("NewCatalog returned error: %v", err)
	}

	want, _ := catalog.Lookup("/0.6/alpha")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, ok := catalog.Lookup("/0.6/alpha")
			if !ok || got != want {
				errs <- "lookup mismatch"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Fatal(msg)
	}
}

func TestInspectBodyRequiresContent(t *testing.T) {
	t.Parallel()

	if _, err := InspectBody("   "); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestInspectBodyRejectsEmptyHeading(t *testing.T) {
	t.Parallel()

	if _, err := InspectBody(`<h3 id="x"> </h3>`); err == nil {
		t.Fatalf("expected error for heading without text")
	}
}

func TestInspectBodyCollectsHeadings(t *testing.T) {
	t.Parallel()

	outline, err := InspectBody(`<h2 id="a">First <code>call</code></h2><p>x</p><h3>Second</h3>`)
	if err != nil {
		t.Fatalf("InspectBody returned error: %v", err)
	}

	if len(outline.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(outline.Headings))
	}

	first := outline.Headings[0]
	if first.ID != "a" || first.Text != "First call" || first.Level != 2 {
		t.Fatalf("unexpected first heading %#v", first)
	}

	if outline.Headings[1].Level != 3 || outline.Headings[1].ID != "" {
		t.Fatalf("unexpected second heading %#v", outline.Headings[1])
	}

	if len(outline.CodeSamples) != 0 {
		t.Fatalf("expected no code samples, got %d", len(outline.CodeSamples))
	}
}
