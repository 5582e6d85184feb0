package sqlite

// Schema DDL. Every statement is idempotent so an existing database opens
// unchanged.
const (
	createFiles = `CREATE TABLE IF NOT EXISTS files (
    file_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    parent_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (parent_id) REFERENCES files(file_id) ON DELETE CASCADE
);`

	createWorksheets = `CREATE TABLE IF NOT EXISTS worksheets (
    worksheet_id TEXT PRIMARY KEY,
    spreadsheet_id TEXT NOT NULL,
    title TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    UNIQUE (spreadsheet_id, title),
    FOREIGN KEY (spreadsheet_id) REFERENCES files(file_id) ON DELETE CASCADE
);`

	createCells = `CREATE TABLE IF NOT EXISTS cells (
    worksheet_id TEXT NOT NULL,
    row_num INTEGER NOT NULL,
    col_num INTEGER NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (worksheet_id, row_num, col_num),
    FOREIGN KEY (worksheet_id) REFERENCES worksheets(worksheet_id) ON DELETE CASCADE
);`
)

// Index DDL for child listings and title lookups.
const (
	idxFilesParent       = `CREATE INDEX IF NOT EXISTS idx_files_parent ON files(parent_id, kind);`
	idxFilesName         = `CREATE INDEX IF NOT EXISTS idx_files_name ON files(parent_id, name);`
	idxWorksheetsOrdinal = `CREATE INDEX IF NOT EXISTS idx_worksheets_ordinal ON worksheets(spreadsheet_id, ordinal);`
)

// schemaDDL lists all statements in dependency order.
var schemaDDL = []string{
	createFiles,
	createWorksheets,
	createCells,
	idxFilesParent,
	idxFilesName,
	idxWorksheetsOrdinal,
}
