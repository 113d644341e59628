// Package sendingether provides the "Sending Ether" page of the 0.6 series.
package sendingether

import (
	_ "embed"

	"soliditydocs/app/internal/domain/docs"
)

const (
	Version     = "0.6.10"
	Title       = "Sending Ether (transfer, send, call)"
	Description = "An example of sending Ether in Solidity"
	Route       = "/0.6/sending-ether"
)

//go:embed body.html
var body string

// Body returns the HTML body of the page.
func Body() string {
	return body
}

// Page returns the page record. Every call yields an equal value.
func Page() docs.PageRecord {
	return docs.PageRecord{
		Version:     Version,
		Title:       Title,
		Description: Description,
		Body:        body,
	}
}

// Entry returns the page record bound to its catalog route.
func Entry() docs.Entry {
	return docs.Entry{Route: Route, Record: Page()}
}
