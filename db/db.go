package db

import "embed"

// Migrations holds the per-driver schema under migrations/<driver>/.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var Migrations embed.FS
