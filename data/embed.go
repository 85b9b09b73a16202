// Package data holds the default facility catalog shipped with the binary.
package data

import _ "embed"

// Catalog is the Accra hospitel catalog used when no --catalog file is given.
//
//go:embed catalog.yaml
var Catalog []byte
