// Package atomicfiles implements the small ref files spec.md §3 lists under
// "Entities and ownership": WORKING, per-branch HEAD/TRACE/LOCAL_COMMITS,
// and STAGE. Each is its own type with Write/Read (Working also has TryRead,
// Head has Exists), following the
// original Rust workspace's io/atomic/{work_branch,head,trace,local}.rs
// split rather than one "atomic files" blob — see SPEC_FULL.md §7.
//
// All writes go through fs.FileSystem.Write, whose Disk implementation
// already does temp-file-then-rename (spec.md §4.11 "I/O errors during
// write"); these types add no buffering of their own.
package atomicfiles

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

const (
	workingPath    = ".meltos/WORKING"
	stagePath      = ".meltos/stage"
	branchesPrefix = ".meltos/branches"
)

func headPath(branch string) string  { return fmt.Sprintf("%s/%s/HEAD", branchesPrefix, branch) }
func tracePath(branch string) string { return fmt.Sprintf("%s/%s/TRACE", branchesPrefix, branch) }
func localPath(branch string) string { return fmt.Sprintf("%s/%s/LOCAL", branchesPrefix, branch) }

// Working persists the name of the currently checked-out branch.
type Working struct{ fs fs.FileSystem }

func NewWorking(f fs.FileSystem) *Working { return &Working{fs: f} }

func (w *Working) Write(branch string) error {
	data, err := json.Marshal(branch)
	if err != nil {
		return tvcerr.Wrap("atomicfiles.Working.Write", tvcerr.KindSerialization, err)
	}
	if err := w.fs.Write(workingPath, data); err != nil {
		return tvcerr.Wrap("atomicfiles.Working.Write", tvcerr.KindIO, err)
	}
	return nil
}

// Read returns the empty string if WORKING has never been written.
func (w *Working) Read() (string, error) {
	data, err := w.fs.Read(workingPath)
	if err != nil {
		return "", tvcerr.Wrap("atomicfiles.Working.Read", tvcerr.KindIO, err)
	}
	if data == nil {
		return "", nil
	}
	var branch string
	if err := json.Unmarshal(data, &branch); err != nil {
		return "", tvcerr.Wrap("atomicfiles.Working.Read", tvcerr.KindSerialization, err)
	}
	return branch, nil
}

// TryRead fails NotInitialized if WORKING has never been written.
func (w *Working) TryRead() (string, error) {
	branch, err := w.Read()
	if err != nil {
		return "", err
	}
	if branch == "" {
		return "", tvcerr.New("atomicfiles.Working.TryRead", tvcerr.KindNotInitialized)
	}
	return branch, nil
}

// Head persists the latest commit hash of one branch.
type Head struct {
	fs     fs.FileSystem
	branch string
}

func NewHead(f fs.FileSystem, branch string) *Head { return &Head{fs: f, branch: branch} }

func (h *Head) Write(hash objectenc.ObjHash) error {
	if err := h.fs.Write(headPath(h.branch), []byte(hash)); err != nil {
		return tvcerr.Wrap("atomicfiles.Head.Write", tvcerr.KindIO, err)
	}
	return nil
}

// Read returns objectenc.NullCommitHash if the branch has never committed.
func (h *Head) Read() (objectenc.ObjHash, error) {
	data, err := h.fs.Read(headPath(h.branch))
	if err != nil {
		return "", tvcerr.Wrap("atomicfiles.Head.Read", tvcerr.KindIO, err)
	}
	if data == nil {
		return objectenc.NullCommitHash, nil
	}
	return objectenc.ObjHash(data), nil
}

// Exists reports whether this branch has ever had a HEAD written at all
// (distinct from Read returning the null commit for an initialized-but-empty
// branch — Exists tells new_branch/checkout whether the branch is known).
func (h *Head) Exists() (bool, error) {
	data, err := h.fs.Read(headPath(h.branch))
	if err != nil {
		return false, tvcerr.Wrap("atomicfiles.Head.Exists", tvcerr.KindIO, err)
	}
	return data != nil, nil
}

// Trace persists the tree hash most recently committed on one branch.
type Trace struct {
	fs     fs.FileSystem
	branch string
}

func NewTrace(f fs.FileSystem, branch string) *Trace { return &Trace{fs: f, branch: branch} }

func (t *Trace) Write(treeHash objectenc.ObjHash) error {
	if err := t.fs.Write(tracePath(t.branch), []byte(treeHash)); err != nil {
		return tvcerr.Wrap("atomicfiles.Trace.Write", tvcerr.KindIO, err)
	}
	return nil
}

func (t *Trace) Read() (objectenc.ObjHash, error) {
	data, err := t.fs.Read(tracePath(t.branch))
	if err != nil {
		return "", tvcerr.Wrap("atomicfiles.Trace.Read", tvcerr.KindIO, err)
	}
	if data == nil {
		return objectenc.EmptyTreeHash, nil
	}
	return objectenc.ObjHash(data), nil
}

// LocalCommits persists the ordered list of commit hashes created locally
// but not yet pushed for one branch.
type LocalCommits struct {
	fs     fs.FileSystem
	branch string
}

func NewLocalCommits(f fs.FileSystem, branch string) *LocalCommits {
	return &LocalCommits{fs: f, branch: branch}
}

func (l *LocalCommits) Write(hashes []objectenc.ObjHash) error {
	data, err := json.Marshal(hashes)
	if err != nil {
		return tvcerr.Wrap("atomicfiles.LocalCommits.Write", tvcerr.KindSerialization, err)
	}
	if err := l.fs.Write(localPath(l.branch), data); err != nil {
		return tvcerr.Wrap("atomicfiles.LocalCommits.Write", tvcerr.KindIO, err)
	}
	return nil
}

func (l *LocalCommits) Read() ([]objectenc.ObjHash, error) {
	data, err := l.fs.Read(localPath(l.branch))
	if err != nil {
		return nil, tvcerr.Wrap("atomicfiles.LocalCommits.Read", tvcerr.KindIO, err)
	}
	if data == nil {
		return nil, nil
	}
	var hashes []objectenc.ObjHash
	if err := json.Unmarshal(data, &hashes); err != nil {
		return nil, tvcerr.Wrap("atomicfiles.LocalCommits.Read", tvcerr.KindSerialization, err)
	}
	return hashes, nil
}

// Append adds hash to the end of the local-commits list.
func (l *LocalCommits) Append(hash objectenc.ObjHash) error {
	existing, err := l.Read()
	if err != nil {
		return err
	}
	return l.Write(append(existing, hash))
}

// Clear empties the local-commits list, used after a successful push.
func (l *LocalCommits) Clear() error {
	return l.Write(nil)
}

// Stage persists the pending snapshot a commit will capture, encoded as a
// TREE object payload (without being hashed/stored in the object store
// itself — STAGE is a ref file, not a store entry).
type Stage struct{ fs fs.FileSystem }

func NewStage(f fs.FileSystem) *Stage { return &Stage{fs: f} }

func (s *Stage) Write(tree *objectenc.Tree) error {
	encoded, err := tree.Encode()
	if err != nil {
		return tvcerr.Wrap("atomicfiles.Stage.Write", tvcerr.KindSerialization, err)
	}
	if err := s.fs.Write(stagePath, encoded); err != nil {
		return tvcerr.Wrap("atomicfiles.Stage.Write", tvcerr.KindIO, err)
	}
	return nil
}

// Read returns an empty tree if STAGE has never been written.
func (s *Stage) Read() (*objectenc.Tree, error) {
	data, err := s.fs.Read(stagePath)
	if err != nil {
		return nil, tvcerr.Wrap("atomicfiles.Stage.Read", tvcerr.KindIO, err)
	}
	if data == nil {
		return &objectenc.Tree{}, nil
	}
	obj, err := objectenc.Decode(data)
	if err != nil {
		return nil, tvcerr.Wrap("atomicfiles.Stage.Read", tvcerr.KindCorruptObject, err)
	}
	tree, ok := obj.(*objectenc.Tree)
	if !ok {
		return nil, tvcerr.New("atomicfiles.Stage.Read", tvcerr.KindWrongObjectKind)
	}
	return tree, nil
}

// ListBranches discovers every branch name with a HEAD file on disk, sorted
// lexicographically — used to walk "every existing branch" when producing
// a full bundle (spec.md §4.8).
func ListBranches(f fs.FileSystem) ([]string, error) {
	paths, err := f.AllFiles(branchesPrefix)
	if err != nil {
		return nil, tvcerr.Wrap("atomicfiles.ListBranches", tvcerr.KindIO, err)
	}
	seen := make(map[string]bool)
	var names []string
	for _, p := range paths {
		if !strings.HasSuffix(p, "/HEAD") {
			continue
		}
		rest := strings.TrimPrefix(p, branchesPrefix+"/")
		name := strings.TrimSuffix(rest, "/HEAD")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
