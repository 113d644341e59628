package sendingether

import (
	"strings"
	"testing"

	"soliditydocs/app/internal/domain/docs"
)

func TestPageReturnsExpectedMetadata(t *testing.T) {
	t.Parallel()

	page := Page()

	if page.Version != "0.6.10" {
		t.Fatalf("expected version 0.6.10, got %q", page.Version)
	}

	if page.Title != "Sending Ether (transfer, send, call)" {
		t.Fatalf("unexpected title %q", page.Title)
	}

	if page.Description != "An example of sending Ether in Solidity" {
		t.Fatalf("unexpected description %q", page.Description)
	}

	if !strings.Contains(page.Body, "How to receive Ether?") {
		t.Fatalf("expected body to contain the receive section")
	}
}

func TestPageFieldsAreNonEmpty(t *testing.T) {
	t.Parallel()

	page := Page()
	fields := map[string]string{
		"version":     page.Version,
		"title":       page.Title,
		"description": page.Description,
		"body":        page.Body,
	}

	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			t.Fatalf("expected %s to be non-empty", name)
		}
	}

	if err := page.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestPageIsStableAcrossCalls(t *testing.T) {
	t.Parallel()

	first := Page()
	second := Page()

	if first != second {
		t.Fatalf("expected repeated calls to return equal records")
	}
}

func TestPageMutationDoesNotLeak(t *testing.T) {
	t.Parallel()

	copyPage := Page()
	copyPage.Title = "changed"
	copyPage.Body = ""

	fresh := Page()
	if fresh.Title != Title {
		t.Fatalf("expected title to stay %q, got %q", Title, fresh.Title)
	}
	if fresh.Body != Body() || fresh.Body == "" {
		t.Fatalf("expected body to be unaffected by caller mutation")
	}
}

func TestBodyContainsSectionsAndCodeSample(t *testing.T) {
	t.Parallel()

	body := Body()
	expected := []string{
		`<h3 id="how-to-send-ether">How to send Ether?</h3>`,
		`<h3 id="how-to-receive-ether">How to receive Ether?</h3>`,
		`<h3 id="which-method-should-you-use">Which method should you use?</h3>`,
		`<pre><code class="language-solidity">`,
		"pragma solidity ^0.6.10;",
		"contract ReceiveEther {",
		"contract SendEther {",
		`(bool sent, bytes memory data) = _to.call{value: msg.value}("");`,
		"msg.data is empty?\n              / \\\n",
	}

	for _, substring := range expected {
		if !strings.Contains(body, substring) {
			t.Fatalf("expected body to contain %q", substring)
		}
	}
}

func TestBodyOutlineListsHeadingsAndLanguage(t *testing.T) {
	t.Parallel()

	outline, err := docs.InspectBody(Body())
	if err != nil {
		t.Fatalf("InspectBody returned error: %v", err)
	}

	if len(outline.Headings) != 3 {
		t.Fatalf("expected 3 headings, got %d", len(outline.Headings))
	}

	if outline.Headings[0].ID != "how-to-send-ether" || outline.Headings[0].Text != "How to send Ether?" {
		t.Fatalf("unexpected first heading %#v", outline.Headings[0])
	}

	languages := outline.Languages()
	if len(languages) != 1 || languages[0] != "solidity" {
		t.Fatalf("expected a single solidity sample, got %v", languages)
	}
}

func TestEntryUsesPublishedRoute(t *testing.T) {
	t.Parallel()

	entry := Entry()
	if entry.Route != "/0.6/sending-ether" {
		t.Fatalf("unexpected route %q", entry.Route)
	}
	if entry.Record.Series() != "0.6" {
		t.Fatalf("expected series 0.6, got %q", entry.Record.Series())
	}
}
