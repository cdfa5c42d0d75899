// Package tree implements the tree index (spec.md §4.3): an in-memory
// path → (object-hash, kind) map shared, per the design notes ("share one
// tree-index type parameterized by its storage path; do not duplicate the
// diff logic"), by both the staging tree and any committed tree the engine
// loads for comparison.
package tree

import (
	"sort"

	"github.com/meltosvc/tvc/internal/objectenc"
)

// Index is the mutable path→hash map that both STAGE and a loaded commit
// tree are read into for staging and diffing.
type Index struct {
	entries map[string]objectenc.TreeEntry
}

// New returns an empty Index.
func New() *Index {
	return &Index{entries: make(map[string]objectenc.TreeEntry)}
}

// FromTree loads an Index from a decoded objectenc.Tree.
func FromTree(t *objectenc.Tree) *Index {
	idx := New()
	for _, e := range t.Entries {
		idx.entries[e.Path] = e
	}
	return idx
}

// ToTree encodes the Index back into an objectenc.Tree, ready for Encode.
// Kept entries include any pending Delete tombstones — this is the form
// STAGE persists so a later diff can still see a pending deletion.
func (idx *Index) ToTree() *objectenc.Tree {
	entries := make([]objectenc.TreeEntry, 0, len(idx.entries))
	for _, e := range idx.entries {
		entries = append(entries, e)
	}
	return &objectenc.Tree{Entries: entries}
}

// LiveTree encodes only the File entries of the Index, dropping Delete
// tombstones — the shape a commit's TREE object actually persists, since a
// committed snapshot names the files that exist, not the ones that don't
// (spec.md §8 scenario 2: "new tree is empty" after the sole file is
// deleted and recommitted).
func (idx *Index) LiveTree() *objectenc.Tree {
	entries := make([]objectenc.TreeEntry, 0, len(idx.entries))
	for _, e := range idx.entries {
		if e.Kind == objectenc.KindFile {
			entries = append(entries, e)
		}
	}
	return &objectenc.Tree{Entries: entries}
}

// Stage records that path now maps to hash as a live file entry.
func (idx *Index) Stage(path string, hash objectenc.ObjHash) {
	idx.entries[path] = objectenc.TreeEntry{Path: path, Hash: hash, Kind: objectenc.KindFile}
}

// StageDelete records an explicit tombstone for path, naming the hash of
// the object it used to point to (spec.md §4.3: "Delete entries ... produce
// an explicit deletion ... rather than disappearing silently").
func (idx *Index) StageDelete(path string, previousHash objectenc.ObjHash) {
	idx.entries[path] = objectenc.TreeEntry{Path: path, Hash: previousHash, Kind: objectenc.KindDelete}
}

// Unstage removes path from the index entirely (distinct from StageDelete,
// which keeps a tombstone).
func (idx *Index) Unstage(path string) {
	delete(idx.entries, path)
}

// Lookup returns the entry at path, if any.
func (idx *Index) Lookup(path string) (objectenc.TreeEntry, bool) {
	e, ok := idx.entries[path]
	return e, ok
}

// Paths returns every path in the index, lexicographically sorted.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, len(idx.entries))
	for p := range idx.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ChangeKind tags one entry of a Diff result.
type ChangeKind int

const (
	Add ChangeKind = iota
	Modify
	Delete
)

func (c ChangeKind) String() string {
	switch c {
	case Add:
		return "Add"
	case Modify:
		return "Modify"
	case Delete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Change is one path-level difference between two indexes.
type Change struct {
	Path string
	Kind ChangeKind
	Hash objectenc.ObjHash // new hash for Add/Modify; removed hash for Delete
}

// Diff compares idx (treated as the newer side) against other (the older
// side) path-by-path, per spec.md §4.3.
func (idx *Index) Diff(other *Index) []Change {
	seen := make(map[string]bool)
	var changes []Change

	for _, path := range idx.Paths() {
		seen[path] = true
		newEntry := idx.entries[path]
		oldEntry, existed := other.entries[path]

		switch {
		case !existed:
			if newEntry.Kind == objectenc.KindFile {
				changes = append(changes, Change{Path: path, Kind: Add, Hash: newEntry.Hash})
			}
			// A Delete entry with no prior counterpart is a no-op diff.
		case newEntry.Kind == objectenc.KindDelete && oldEntry.Kind == objectenc.KindFile:
			changes = append(changes, Change{Path: path, Kind: Delete, Hash: oldEntry.Hash})
		case newEntry.Kind == objectenc.KindFile && (oldEntry.Kind == objectenc.KindDelete || oldEntry.Hash != newEntry.Hash):
			changes = append(changes, Change{Path: path, Kind: Modify, Hash: newEntry.Hash})
		}
	}

	for _, path := range other.Paths() {
		if seen[path] {
			continue
		}
		oldEntry := other.entries[path]
		if oldEntry.Kind == objectenc.KindFile {
			changes = append(changes, Change{Path: path, Kind: Delete, Hash: oldEntry.Hash})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

// Equal reports whether idx and other hold identical entries — used to
// detect spec.md §4.5's "NothingToCommit" precondition (stage == HEAD tree).
func (idx *Index) Equal(other *Index) bool {
	if len(idx.entries) != len(other.entries) {
		return false
	}
	for path, e := range idx.entries {
		oe, ok := other.entries[path]
		if !ok || oe.Hash != e.Hash || oe.Kind != e.Kind {
			return false
		}
	}
	return true
}
