// Package migrations embeds the SQL schema migrations of the rating engine.
package migrations

import "embed"

// FS holds every *.sql migration file in this directory.
//
//go:embed *.sql
var FS embed.FS
