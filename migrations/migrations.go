// Package migrations embeds the goose SQL migrations so both binaries can
// apply them without relying on the working directory.
package migrations

import "embed"

// FS holds the embedded migration files.
//
//go:embed *.sql
var FS embed.FS
