// Package types defines the raw resource interfaces that sheetsdb consumes,
// the value and association kinds used by record schemas, configuration, and
// the standard errors shared by every backend.
//
// Backends (memory, SQLite, xlsx) implement Drive, RawCollection,
// RawSpreadsheet, and RawWorksheet. The sheetsdb package depends only on
// these interfaces.
package types
