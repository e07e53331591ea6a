// Package migrations embeds the goose SQL migrations for both supported
// dialects. Each dialect has its own directory inside FS.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
