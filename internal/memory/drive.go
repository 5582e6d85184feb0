// Package memory implements an in-process Drive. Nothing is persisted; it
// backs tests, examples, and the CLI's memory backend.
package memory

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/sheetsdb/internal/locator"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Drive is an in-memory file tree rooted at a single collection.
type Drive struct {
	mu           sync.RWMutex
	files        map[string]*node
	collections  map[string]*Collection
	spreadsheets map[string]*Spreadsheet
	root         *Collection
	closed       bool
	base         string
}

// node is the shared state of every file kind.
type node struct {
	drive    *Drive
	id       string
	name     string
	kind     string
	parents  []string
	children []string
	created  time.Time
	modified time.Time
}

// NewDrive returns an empty drive with a root collection named "root".
func NewDrive() *Drive {
	d := &Drive{
		files:        make(map[string]*node),
		collections:  make(map[string]*Collection),
		spreadsheets: make(map[string]*Spreadsheet),
		base:         locator.DefaultBase,
	}
	d.root = d.addCollection("root", "")
	return d
}

// newNode registers a file under parentID. The caller must not hold d.mu.
func (d *Drive) newNode(name, kind, parentID string) *node {
	now := time.Now().UTC()
	n := &node{
		drive:    d,
		id:       generateUUID(),
		name:     name,
		kind:     kind,
		created:  now,
		modified: now,
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[n.id] = n
	if parentID != "" {
		n.parents = []string{parentID}
		if p, ok := d.files[parentID]; ok {
			p.children = append(p.children, n.id)
		}
	}
	return n
}

// FileByID returns the file with the given id.
func (d *Drive) FileByID(id string) (types.File, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, types.ErrDriveClosed
	}
	n, ok := d.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrResourceNotFound, id)
	}
	return d.wrap(n), nil
}

// FileByURL parses the locator and returns the file it names.
func (d *Drive) FileByURL(url string) (types.File, error) {
	id, err := locator.Parse(url)
	if err != nil {
		return nil, err
	}
	return d.FileByID(id)
}

// Root returns the top-level collection.
func (d *Drive) Root() (types.RawCollection, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, types.ErrDriveClosed
	}
	return d.root, nil
}

// Close marks the drive closed. Close is idempotent.
func (d *Drive) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *Drive) addCollection(name, parentID string) *Collection {
	c := &Collection{node: d.newNode(name, types.KindCollection, parentID)}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collections[c.id] = c
	return c
}

func (d *Drive) addSpreadsheet(name, parentID string) *Spreadsheet {
	s := &Spreadsheet{node: d.newNode(name, types.KindSpreadsheet, parentID)}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spreadsheets[s.id] = s
	return s
}

// wrap returns the typed view of n. The caller must hold d.mu.
func (d *Drive) wrap(n *node) types.File {
	switch n.kind {
	case types.KindCollection:
		return d.collections[n.id]
	case types.KindSpreadsheet:
		return d.spreadsheets[n.id]
	default:
		return n
	}
}

func (n *node) ID() string              { return n.id }
func (n *node) Kind() string            { return n.kind }
func (n *node) HumanURL() string        { return locator.Format(n.drive.base, n.kind, n.id) }
func (n *node) CreatedTime() time.Time  { return n.created }
func (n *node) ModifiedTime() time.Time { return n.modified }
func (n *node) ReloadMetadata() error   { return nil }
func (n *node) Name() string {
	n.drive.mu.RLock()
	defer n.drive.mu.RUnlock()
	return n.name
}

// Rename changes the file's name.
func (n *node) Rename(name string) {
	n.drive.mu.Lock()
	defer n.drive.mu.Unlock()
	n.name = name
	n.modified = time.Now().UTC()
}

// Parents returns the containing collections.
func (n *node) Parents() ([]types.RawCollection, error) {
	d := n.drive
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]types.RawCollection, 0, len(n.parents))
	for _, id := range n.parents {
		if p, ok := d.files[id]; ok {
			out = append(out, d.wrap(p).(types.RawCollection))
		}
	}
	return out, nil
}

// Delete removes the file and its descendants.
func (n *node) Delete() error {
	d := n.drive
	d.mu.Lock()
	defer d.mu.Unlock()
	if n == d.root.node {
		return fmt.Errorf("%w: the root collection cannot be deleted", types.ErrInvalidName)
	}
	d.deleteLocked(n)
	return nil
}

func (d *Drive) deleteLocked(n *node) {
	for _, child := range n.children {
		if c, ok := d.files[child]; ok {
			d.deleteLocked(c)
		}
	}
	for _, pid := range n.parents {
		if p, ok := d.files[pid]; ok {
			p.children = slices.DeleteFunc(p.children, func(id string) bool { return id == n.id })
		}
	}
	delete(d.files, n.id)
	delete(d.collections, n.id)
	delete(d.spreadsheets, n.id)
}

// generateUUID generates a new UUID v7 for file ids.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
