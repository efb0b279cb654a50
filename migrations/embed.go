// Package migrations embeds the SQL schema migrations into the binary
package migrations

import "embed"

// FS holds every *.sql migration at its root
//
//go:embed *.sql
var FS embed.FS

// Table is the golang-migrate bookkeeping table for this service
const Table = "auth_schema_migrations"
