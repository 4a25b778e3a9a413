// Package database stores run history in SQLite.
//
// Each successful run is saved as one row holding the URL, the start time,
// the body hash, the token total and the histogram as JSON. The history
// and compare commands read it back.
//
// The driver is modernc.org/sqlite, which needs no cgo. The file lives in
// the directory the caller passes, normally the XDG data directory.
package database
