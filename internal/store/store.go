// Package store implements the object store (spec.md §4.2): encode, hash,
// gzip-compress and persist the four object kinds under
// ./.meltos/objects/<hash[0..2]>/<hash[2..]>, exclusively owning that
// subtree per spec.md §3 ("Entities and ownership"). Grounded on the
// teacher's internal/objects/{blob,commit,tree}.go persistence pattern,
// generalized into one store instead of one free function per kind.
package store

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/meltosvc/tvc/internal/compressio"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

const objectsRoot = ".meltos/objects"

// Store is the content-addressed, append-only object heap.
type Store struct {
	fs  fs.FileSystem
	log *slog.Logger
}

// New returns a Store backed by f. A nil logger falls back to slog.Default.
func New(f fs.FileSystem, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{fs: f, log: log}
}

func objectPath(hash objectenc.ObjHash) string {
	h := string(hash)
	return fmt.Sprintf("%s/%s/%s", objectsRoot, h[:2], h[2:])
}

// Write encodes, hashes, compresses and persists obj. Idempotent: if the
// object already exists under its hash, Write does nothing.
func (s *Store) Write(obj objectenc.Object) (objectenc.ObjHash, error) {
	encoded, err := obj.Encode()
	if err != nil {
		return "", tvcerr.Wrap("store.Write", tvcerr.KindSerialization, err)
	}
	hash := objectenc.Hash(encoded)
	path := objectPath(hash)

	existing, err := s.fs.Read(path)
	if err != nil {
		return "", tvcerr.Wrap("store.Write", tvcerr.KindIO, err)
	}
	if existing != nil {
		return hash, nil
	}

	compressed, err := compressio.Compress(encoded)
	if err != nil {
		return "", tvcerr.Wrap("store.Write", tvcerr.KindSerialization, err)
	}
	if err := s.fs.Write(path, compressed); err != nil {
		return "", tvcerr.Wrap("store.Write", tvcerr.KindIO, err)
	}
	s.log.Debug("object written", "hash", string(hash), "kind", obj.Kind().String())
	return hash, nil
}

// ReadRaw returns the compressed bytes stored for hash, as-is — used by
// bundle production, which stores objects in their already-compressed
// form without re-encoding (spec.md §6).
func (s *Store) ReadRaw(hash objectenc.ObjHash) ([]byte, error) {
	data, err := s.fs.Read(objectPath(hash))
	if err != nil {
		return nil, tvcerr.Wrap("store.ReadRaw", tvcerr.KindIO, err)
	}
	if data == nil {
		return nil, tvcerr.New("store.ReadRaw", tvcerr.KindObjectNotFound)
	}
	return data, nil
}

// WriteRaw persists already-compressed bytes under hash without
// re-encoding, used when ingesting a bundle (spec.md §4.8 "Consumer").
// Idempotent like Write.
func (s *Store) WriteRaw(hash objectenc.ObjHash, compressed []byte) error {
	path := objectPath(hash)
	existing, err := s.fs.Read(path)
	if err != nil {
		return tvcerr.Wrap("store.WriteRaw", tvcerr.KindIO, err)
	}
	if existing != nil {
		return nil
	}
	if err := s.fs.Write(path, compressed); err != nil {
		return tvcerr.Wrap("store.WriteRaw", tvcerr.KindIO, err)
	}
	return nil
}

// Read decompresses and decodes the object at hash.
func (s *Store) Read(hash objectenc.ObjHash) (objectenc.Object, error) {
	compressed, err := s.ReadRaw(hash)
	if err != nil {
		return nil, err
	}
	encoded, err := compressio.Decompress(compressed)
	if err != nil {
		return nil, tvcerr.Wrap("store.Read", tvcerr.KindCorruptObject, err)
	}
	obj, err := objectenc.Decode(encoded)
	if err != nil {
		return nil, tvcerr.Wrap("store.Read", tvcerr.KindCorruptObject, err)
	}
	return obj, nil
}

// Has reports whether hash is already persisted.
func (s *Store) Has(hash objectenc.ObjHash) (bool, error) {
	data, err := s.fs.Read(objectPath(hash))
	if err != nil {
		return false, tvcerr.Wrap("store.Has", tvcerr.KindIO, err)
	}
	return data != nil, nil
}

// ReadFile is a typed shortcut: fails WrongObjectKind if hash is not a File.
func (s *Store) ReadFile(hash objectenc.ObjHash) (*objectenc.File, error) {
	obj, err := s.Read(hash)
	if err != nil {
		return nil, err
	}
	f, ok := obj.(*objectenc.File)
	if !ok {
		return nil, tvcerr.New("store.ReadFile", tvcerr.KindWrongObjectKind)
	}
	return f, nil
}

// ReadTree is a typed shortcut: fails WrongObjectKind if hash is not a Tree.
func (s *Store) ReadTree(hash objectenc.ObjHash) (*objectenc.Tree, error) {
	obj, err := s.Read(hash)
	if err != nil {
		return nil, err
	}
	t, ok := obj.(*objectenc.Tree)
	if !ok {
		return nil, tvcerr.New("store.ReadTree", tvcerr.KindWrongObjectKind)
	}
	return t, nil
}

// ReadCommit is a typed shortcut: fails WrongObjectKind if hash is not a Commit.
func (s *Store) ReadCommit(hash objectenc.ObjHash) (*objectenc.Commit, error) {
	obj, err := s.Read(hash)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*objectenc.Commit)
	if !ok {
		return nil, tvcerr.New("store.ReadCommit", tvcerr.KindWrongObjectKind)
	}
	return c, nil
}

// AllHashes returns every persisted object hash, sorted lexicographically.
func (s *Store) AllHashes() ([]objectenc.ObjHash, error) {
	paths, err := s.fs.AllFiles(objectsRoot)
	if err != nil {
		return nil, tvcerr.Wrap("store.AllHashes", tvcerr.KindIO, err)
	}
	hashes := make([]objectenc.ObjHash, 0, len(paths))
	for _, p := range paths {
		// path is ".meltos/objects/<2 chars>/<38 chars>"
		if len(p) < len(objectsRoot)+3+38 {
			continue
		}
		prefix := p[len(objectsRoot)+1 : len(objectsRoot)+3]
		suffix := p[len(objectsRoot)+4:]
		hashes = append(hashes, objectenc.ObjHash(prefix+suffix))
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes, nil
}
