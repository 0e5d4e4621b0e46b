// Package migrations embeds the SQL schema so binaries and tests can apply it
// without a migrations directory on disk.
package migrations

import "embed"

// FS holds the versioned up/down SQL files
//
//go:embed *.sql
var FS embed.FS
