// Package db carries the SQL schema applied at service startup.
package db

import "embed"

// Migrations holds the numbered up/down migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
