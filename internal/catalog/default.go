package catalog

import (
	_ "embed"
	"sync"
)

//go:embed default.json
var defaultDocument []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the built-in catalog used when no catalog file is
// configured.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(defaultDocument, FormatJSON)
		if defaultErr != nil {
			defaultErr = &ErrLoad{Source: "built-in", Err: defaultErr}
			defaultCat = Empty()
		}
	})
	return defaultCat, defaultErr
}
