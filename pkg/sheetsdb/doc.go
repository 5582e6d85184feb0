// Package sheetsdb maps spreadsheet rows to typed records.
//
// A record type is a Schema: typed attributes read from named columns
// (with aliases and a missing-column fallback) plus associations to rows of
// other worksheets in the same spreadsheet. A Worksheet binds a raw sheet to
// a Schema and yields Rows. Rows load attributes lazily, stage writes until
// Save, and memoize resolved associations.
//
// Assigning a belongs-to association rewrites foreign keys on the remote
// rows. Those rows are saved when the local row is saved.
//
// Cell encodings: multi-valued cells are read by splitting on a comma and
// optional whitespace and written joined by a bare comma. Date-times use
// MM/DD/YYYY HH:MM:SS in UTC.
package sheetsdb
