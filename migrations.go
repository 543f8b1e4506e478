// Package linkexpander holds assets embedded into the binary.
package linkexpander

import "embed"

// Migrations contains the goose migrations for the PostgreSQL storage backend.
//
//go:embed migrations/*.sql
var Migrations embed.FS
