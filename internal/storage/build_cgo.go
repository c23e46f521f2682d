//go:build cgo_sqlite

package storage

// Driver used: github.com/mattn/go-sqlite3. Requires a C compiler.

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
