package postgres

import _ "embed"

// Schema is the ledger DDL, embedded so test harnesses can apply it without
// locating the file on disk.
//
//go:embed schema.sql
var Schema string
