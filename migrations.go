package linkfixer

import "embed"

// Migrations holds the goose migrations for the posted-comment ledger.
//
//go:embed migrations/*.sql
var Migrations embed.FS
