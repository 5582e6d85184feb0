package types

import (
	"errors"
	"time"
)

// File kinds reported by File.Kind.
const (
	KindCollection  = "collection"
	KindSpreadsheet = "spreadsheet"
	KindFile        = "file"
)

// File is a resource stored in a Drive: a collection (folder), a
// spreadsheet, or an opaque file.
type File interface {
	ID() string
	Name() string

	// HumanURL returns a locator that FileByURL resolves back to this file.
	HumanURL() string

	CreatedTime() time.Time
	ModifiedTime() time.Time

	// Kind returns one of the Kind constants.
	Kind() string

	// Parents returns the collections that contain this file.
	Parents() ([]RawCollection, error)

	// Delete removes the file and, for containers, everything inside it.
	Delete() error

	// ReloadMetadata re-reads name and timestamps from the backing store.
	ReloadMetadata() error
}

// RawSpreadsheet is a File holding worksheets.
type RawSpreadsheet interface {
	File

	// WorksheetByTitle returns the worksheet with the given title, or nil
	// with a nil error when no such worksheet exists.
	WorksheetByTitle(title string) (RawWorksheet, error)

	// AddWorksheet creates an empty worksheet.
	AddWorksheet(title string) (RawWorksheet, error)

	// Worksheets lists worksheets in display order.
	Worksheets() ([]RawWorksheet, error)
}

// RawCollection is a File that contains subcollections and spreadsheets.
type RawCollection interface {
	File

	Subcollections() ([]RawCollection, error)
	Spreadsheets() ([]RawSpreadsheet, error)

	// SubcollectionByTitle and SpreadsheetByTitle return nil with a nil
	// error when no child has the title.
	SubcollectionByTitle(title string) (RawCollection, error)
	SpreadsheetByTitle(title string) (RawSpreadsheet, error)

	CreateSubcollection(title string) (RawCollection, error)
	CreateSpreadsheet(title string) (RawSpreadsheet, error)
}

// Drive resolves files by identifier or locator.
type Drive interface {
	// FileByID returns ErrResourceNotFound when the id is unknown.
	FileByID(id string) (File, error)

	// FileByURL returns ErrInvalidLocator when the locator cannot be
	// parsed and ErrResourceNotFound when it names no file.
	FileByURL(url string) (File, error)

	// Root returns the top-level collection.
	Root() (RawCollection, error)

	// Close releases backend resources. Close is idempotent.
	Close() error
}

// Resource lookup errors.
var (
	ErrInvalidLocator        = errors.New("invalid resource locator")
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceTypeMismatch  = errors.New("resource type mismatch")
	ErrChildResourceNotFound = errors.New("child resource not found")
	ErrDriveClosed           = errors.New("drive is closed")
)

// Resource schema errors.
var (
	ErrWorksheetAssociationAlreadyRegistered = errors.New("worksheet association already registered")
	ErrAssociationKindAlreadyRegistered      = errors.New("association of this kind already registered")
	ErrInvalidResourceType                   = errors.New("invalid resource type")
)

// Session errors.
var (
	ErrNoDefaultSession = errors.New("no default session set")
	ErrIllegalDefault   = errors.New("default session must not be nil")
)
