//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
//
// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
package sqlite

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

const (
	driverName    = "sqlite3"
	driverType    = "cgo"
	driverPackage = "github.com/mattn/go-sqlite3"
)

// pragmaDSN appends connection pragmas in mattn's underscore syntax.
func pragmaDSN(path string, readOnly bool) string {
	dsn := "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
	if readOnly {
		dsn += "&mode=ro"
	}
	return dsn
}
