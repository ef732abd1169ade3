// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS contains the *_up.sql and *_down.sql migration files.
//
//go:embed *.sql
var FS embed.FS
