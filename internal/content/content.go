// Package content registers every documentation page published by the site.
package content

import (
	"github.com/rotisserie/eris"

	"soliditydocs/app/internal/content/v06/sendingether"
	"soliditydocs/app/internal/domain/docs"
)

// Entries lists every page provider. New pages are added here.
func Entries() []docs.Entry {
	return []docs.Entry{
		sendingether.Entry(),
	}
}

// NewCatalog builds the read-only page catalog from the registered providers.
func NewCatalog() (*docs.Catalog, error) {
	catalog, err := docs.NewCatalog(Entries()...)
	if err != nil {
		return nil, eris.Wrap(err, "building page catalog")
	}
	return catalog, nil
}
