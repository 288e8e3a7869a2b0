// Package migrations embeds the versioned SQL schema for the postgres store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
