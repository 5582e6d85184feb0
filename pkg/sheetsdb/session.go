package sheetsdb

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Session finds typed resources on a Drive.
type Session struct {
	drive  types.Drive
	logger *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger handed to worksheets found through the
// session.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession wraps a drive.
func NewSession(drive types.Drive, opts ...SessionOption) *Session {
	s := &Session{drive: drive, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Drive returns the underlying drive.
func (s *Session) Drive() types.Drive { return s.drive }

// Close closes the drive.
func (s *Session) Close() error { return s.drive.Close() }

// FindSpreadsheet resolves idOrURL as a locator first and falls back to an
// id lookup when it is not one.
func (s *Session) FindSpreadsheet(idOrURL string, t *SpreadsheetType) (*Spreadsheet, error) {
	f, err := s.find(idOrURL)
	if err != nil {
		return nil, err
	}
	return s.WrapSpreadsheet(f, t)
}

// FindSpreadsheetByID returns the spreadsheet with the given id.
func (s *Session) FindSpreadsheetByID(id string, t *SpreadsheetType) (*Spreadsheet, error) {
	f, err := s.drive.FileByID(id)
	if err != nil {
		return nil, err
	}
	return s.WrapSpreadsheet(f, t)
}

// FindSpreadsheetByURL returns the spreadsheet a locator points at.
func (s *Session) FindSpreadsheetByURL(url string, t *SpreadsheetType) (*Spreadsheet, error) {
	f, err := s.drive.FileByURL(url)
	if err != nil {
		return nil, err
	}
	return s.WrapSpreadsheet(f, t)
}

// FindCollection resolves idOrURL like FindSpreadsheet.
func (s *Session) FindCollection(idOrURL string, t *CollectionType) (*Collection, error) {
	f, err := s.find(idOrURL)
	if err != nil {
		return nil, err
	}
	return s.WrapCollection(f, t)
}

// FindCollectionByID returns the collection with the given id.
func (s *Session) FindCollectionByID(id string, t *CollectionType) (*Collection, error) {
	f, err := s.drive.FileByID(id)
	if err != nil {
		return nil, err
	}
	return s.WrapCollection(f, t)
}

// FindCollectionByURL returns the collection a locator points at.
func (s *Session) FindCollectionByURL(url string, t *CollectionType) (*Collection, error) {
	f, err := s.drive.FileByURL(url)
	if err != nil {
		return nil, err
	}
	return s.WrapCollection(f, t)
}

// RootCollection returns the drive's top-level collection.
func (s *Session) RootCollection(t *CollectionType) (*Collection, error) {
	root, err := s.drive.Root()
	if err != nil {
		return nil, err
	}
	return newCollection(root, t, s), nil
}

// WrapSpreadsheet types a raw file. Files that are not spreadsheets yield
// ErrResourceTypeMismatch.
func (s *Session) WrapSpreadsheet(f types.File, t *SpreadsheetType) (*Spreadsheet, error) {
	raw, ok := f.(types.RawSpreadsheet)
	if !ok || f.Kind() != types.KindSpreadsheet {
		return nil, fmt.Errorf("%w: %s is a %s, not a spreadsheet", types.ErrResourceTypeMismatch, f.ID(), f.Kind())
	}
	if t == nil {
		t = DefineSpreadsheet(f.Name())
	}
	return newSpreadsheet(raw, t, s), nil
}

// WrapCollection types a raw file. Files that are not collections yield
// ErrResourceTypeMismatch.
func (s *Session) WrapCollection(f types.File, t *CollectionType) (*Collection, error) {
	raw, ok := f.(types.RawCollection)
	if !ok || f.Kind() != types.KindCollection {
		return nil, fmt.Errorf("%w: %s is a %s, not a collection", types.ErrResourceTypeMismatch, f.ID(), f.Kind())
	}
	return newCollection(raw, t, s), nil
}

func (s *Session) find(idOrURL string) (types.File, error) {
	f, err := s.drive.FileByURL(idOrURL)
	if errors.Is(err, types.ErrInvalidLocator) {
		return s.drive.FileByID(idOrURL)
	}
	return f, err
}

var (
	defaultMu      sync.RWMutex
	defaultSession *Session
)

// SetDefaultSession installs a process-wide session for callers that do not
// thread one through. Passing nil is ErrIllegalDefault.
func SetDefaultSession(s *Session) error {
	if s == nil {
		return types.ErrIllegalDefault
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSession = s
	return nil
}

// DefaultSession returns the installed session or ErrNoDefaultSession.
func DefaultSession() (*Session, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultSession == nil {
		return nil, types.ErrNoDefaultSession
	}
	return defaultSession, nil
}

// ClearDefaultSession removes the installed session.
func ClearDefaultSession() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSession = nil
}
