// Package db embeds the Postgres migrations and seeders so both binaries can
// run without the source tree.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed seeders/*.sql
var Seeders embed.FS
