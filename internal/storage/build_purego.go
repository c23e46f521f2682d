//go:build !cgo_sqlite

package storage

// Driver used: modernc.org/sqlite. No C compiler needed.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
