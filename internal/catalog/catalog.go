// Package catalog holds the in-memory, editable set of lumps that sits
// between the archive reader and writer.
package catalog

import (
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/btree"

	"github.com/ossyrian/wadlumper/internal/wad2"
)

// Record is a single lump in a Catalog.
type Record struct {
	Name   string // normalized (uppercased, at most wad2.NameSize bytes)
	Source Source
	Size   int64 // 0 for a StandaloneFile until a save resolves it
}

// Entry is one item of a listing.
type Entry struct {
	Name   string
	Size   int64
	Source Source
}

// Catalog is an insertion-ordered set of lumps with case-insensitive unique
// names. The insertion order is the order lumps are written to disk.
//
// A Catalog is not safe for concurrent use.
type Catalog struct {
	origin  string
	records []*Record
	byName  *btree.Map[string, *Record]
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{byName: btree.NewMap[string, *Record](0)}
}

// Origin returns the path of the archive the Catalog was loaded from, or ""
// for a Catalog created empty.
func (c *Catalog) Origin() string { return c.origin }

// SetOrigin records the archive path the Catalog's ranges were read from.
func (c *Catalog) SetOrigin(path string) { c.origin = path }

// Len returns the number of lumps.
func (c *Catalog) Len() int { return len(c.records) }

// NameFromPath derives a lump name from a file path: the base name up to its
// first dot, uppercased and truncated.
func NameFromPath(path string) (string, error) {
	name, _, _ := strings.Cut(filepath.Base(path), ".")
	return wad2.NormalizeName(name)
}

// lookupKey maps a user-supplied name to its index key. Names that could
// never have been stored simply miss.
func lookupKey(name string) string {
	key := strings.ToUpper(name)
	if len(key) > wad2.NameSize {
		key = key[:wad2.NameSize]
	}
	return key
}

// Add appends a lump read from the standalone file at path. Its name is
// derived from nameSource (see NameFromPath). A name that collides with an
// existing lump is rejected with wad2.ErrDuplicateName and the Catalog is
// left unchanged.
func (c *Catalog) Add(nameSource, path string) (*Record, error) {
	name, err := NameFromPath(nameSource)
	if err != nil {
		return nil, fmt.Errorf("failed to name lump from %s: %w", nameSource, err)
	}
	return c.insert(&Record{Name: name, Source: StandaloneFile{Path: path}})
}

// AddRange appends a lump whose bytes live in the archive at path.
func (c *Catalog) AddRange(name, path string, offset, length int64) (*Record, error) {
	n, err := wad2.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	return c.insert(&Record{
		Name:   n,
		Source: ArchiveRange{Path: path, Offset: offset, Length: length},
		Size:   length,
	})
}

func (c *Catalog) insert(r *Record) (*Record, error) {
	if _, ok := c.byName.Get(r.Name); ok {
		return nil, fmt.Errorf("%w: lump %q already exists", wad2.ErrDuplicateName, r.Name)
	}
	c.byName.Set(r.Name, r)
	c.records = append(c.records, r)
	return r, nil
}

// Remove deletes the lump with the given name (case-insensitive) and
// reports whether it was present. Remaining lumps keep their order.
func (c *Catalog) Remove(name string) bool {
	r, ok := c.byName.Delete(lookupKey(name))
	if !ok {
		return false
	}
	c.records = slices.DeleteFunc(c.records, func(x *Record) bool { return x == r })
	return true
}

// Get looks up a lump by name (case-insensitive).
func (c *Catalog) Get(name string) (*Record, bool) {
	return c.byName.Get(lookupKey(name))
}

// Resolve records the size of a lump as written by a save. It reports
// whether the lump is still in the Catalog.
func (c *Catalog) Resolve(name string, size int64) bool {
	r, ok := c.byName.Get(lookupKey(name))
	if !ok {
		return false
	}
	r.Size = size
	return true
}

// Records returns a copy of the lump records in insertion order.
func (c *Catalog) Records() []Record {
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = *r
	}
	return out
}

// List yields every lump in insertion order. The sequence can be iterated
// any number of times; each pass reflects the Catalog at that moment.
func (c *Catalog) List() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, r := range c.records {
			if !yield(Entry{Name: r.Name, Size: r.Size, Source: r.Source}) {
				return
			}
		}
	}
}

// Sorted yields every lump ordered by name.
func (c *Catalog) Sorted() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		c.byName.Scan(func(_ string, r *Record) bool {
			return yield(Entry{Name: r.Name, Size: r.Size, Source: r.Source})
		})
	}
}
