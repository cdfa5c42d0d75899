package objectenc

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

// TreeEntry is one (path, object-hash, kind) tuple inside a Tree object.
// Kind is either KindFile or KindDelete — a Delete entry is an explicit
// tombstone for a path that existed in an ancestor tree, per spec.md §4.3
// ("Delete entries on the right produce an explicit deletion ... rather
// than disappearing silently").
type TreeEntry struct {
	Path string
	Hash ObjHash
	Kind Kind
}

// Tree is the flat path→hash snapshot a commit captures. Unlike the
// teacher's recursive, directory-shaped TreeObject, spec.md models a tree
// as one ordered list of entries with no implied subtree objects — each
// directory prefix is implied, never stored (spec.md §3 invariant 2).
type Tree struct {
	Entries []TreeEntry
}

var treeHeader = []byte("TREE\x00")

func (t *Tree) Kind() Kind { return KindTree }

// sorted returns a copy of Entries ordered lexicographically by Path, the
// stable ordering spec.md §4.3 requires for deterministic hashing.
func (t *Tree) sorted() []TreeEntry {
	out := append([]TreeEntry(nil), t.Entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (t *Tree) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(treeHeader)
	entries := t.sorted()
	writeUint32(&buf, uint32(len(entries)))
	for _, e := range entries {
		writeString(&buf, e.Path)
		buf.Write([]byte(e.Hash))
		switch e.Kind {
		case KindFile:
			buf.WriteByte(0)
		case KindDelete:
			buf.WriteByte(1)
		default:
			return nil, fmt.Errorf("tree entry %q: invalid kind %v", e.Path, e.Kind)
		}
	}
	return buf.Bytes(), nil
}

func decodeTree(payload []byte) (*Tree, error) {
	r := bytes.NewReader(payload)
	count, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	entries := make([]TreeEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		path, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("decode tree entry %d path: %w", i, err)
		}
		hashBuf := make([]byte, 40)
		if _, err := io.ReadFull(r, hashBuf); err != nil {
			return nil, fmt.Errorf("decode tree entry %d hash: %w", i, err)
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("decode tree entry %d kind: %w", i, err)
		}
		var kind Kind
		switch kindByte {
		case 0:
			kind = KindFile
		case 1:
			kind = KindDelete
		default:
			return nil, fmt.Errorf("decode tree entry %d: invalid kind byte %d", i, kindByte)
		}
		entries = append(entries, TreeEntry{Path: path, Hash: ObjHash(hashBuf), Kind: kind})
	}
	return &Tree{Entries: entries}, nil
}

// Lookup returns the entry for path, if present.
func (t *Tree) Lookup(path string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return TreeEntry{}, false
}
