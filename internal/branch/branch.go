// Package branch implements the branch operations (spec.md §4.4–§4.6):
// init, stage, commit, new_branch and checkout. Each function is a thin
// orchestration over internal/store, internal/tree and internal/atomicfiles
// — the object/ref primitives — following the teacher's internal/staging
// and internal/repository split between "what changed" and "what's
// committed".
package branch

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/clock"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/store"
	"github.com/meltosvc/tvc/internal/tree"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

// Owner is the distinguished initial branch name (spec.md §3).
const Owner = "owner"

const metadataPrefix = ".meltos"

// Repo bundles the collaborators every branch operation needs.
type Repo struct {
	FS     fs.FileSystem
	Store  *store.Store
	Clock  clock.Source
	Log    *slog.Logger
	Ignore []string // workspace path prefixes never staged, beyond metadataPrefix
}

func (r *Repo) Now() int64 {
	if r.Clock != nil {
		return r.Clock()
	}
	return clock.Real()
}

func (r *Repo) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

func (r *Repo) ignored(path string) bool {
	if strings.HasPrefix(path, metadataPrefix) {
		return true
	}
	for _, prefix := range r.Ignore {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// WorkingBranch returns the name of the currently checked-out branch.
// Fails KindNotInitialized if no branch has ever been checked out.
func (r *Repo) WorkingBranch() (string, error) {
	return atomicfiles.NewWorking(r.FS).TryRead()
}

// CommitHead returns branchName's current HEAD commit hash.
func (r *Repo) CommitHead(branchName string) (objectenc.ObjHash, error) {
	return atomicfiles.NewHead(r.FS, branchName).Read()
}

// Init creates the named branch's HEAD/TRACE at the null commit / empty
// tree and checks it out as WORKING. Used for the first branch of a fresh
// repository.
func (r *Repo) Init(branchName string) error {
	head := atomicfiles.NewHead(r.FS, branchName)
	exists, err := head.Exists()
	if err != nil {
		return err
	}
	if exists {
		return tvcerr.New("branch.Init", tvcerr.KindBranchExists)
	}
	if err := head.Write(objectenc.NullCommitHash); err != nil {
		return err
	}
	if err := atomicfiles.NewTrace(r.FS, branchName).Write(objectenc.EmptyTreeHash); err != nil {
		return err
	}
	if err := atomicfiles.NewWorking(r.FS).Write(branchName); err != nil {
		return err
	}
	r.logger().Info("branch initialized", "branch", branchName)
	return nil
}

// headTree loads the tree index committed at branch's HEAD, or an empty
// index if the branch has never committed.
func (r *Repo) headTree(branchName string) (*tree.Index, error) {
	headHash, err := atomicfiles.NewHead(r.FS, branchName).Read()
	if err != nil {
		return nil, err
	}
	return r.CommitTreeIndex(headHash)
}

// CommitTreeIndex loads the tree index a commit captured, or an empty index
// for the null commit. Exported for internal/history's three-way merge,
// which needs the tree of arbitrary commits (base, source HEAD, dest HEAD),
// not just "the" HEAD of one branch.
func (r *Repo) CommitTreeIndex(commitHash objectenc.ObjHash) (*tree.Index, error) {
	if commitHash.IsNull() {
		return tree.New(), nil
	}
	commit, err := r.Store.ReadCommit(commitHash)
	if err != nil {
		return nil, err
	}
	t, err := r.Store.ReadTree(commit.Tree)
	if err != nil {
		return nil, err
	}
	return tree.FromTree(t), nil
}

// Stage enumerates every file under path in the workspace, hashes and
// writes a FILE object for each, updates the staging tree, and inserts an
// explicit Delete entry for any path present at HEAD but now missing from
// the workspace (spec.md §4.4).
func (r *Repo) Stage(branchName, path string) error {
	files, err := r.FS.AllFiles(path)
	if err != nil {
		return tvcerr.Wrap("branch.Stage", tvcerr.KindIO, err)
	}

	stageIo := atomicfiles.NewStage(r.FS)
	stageTree, err := stageIo.Read()
	if err != nil {
		return err
	}
	idx := tree.FromTree(stageTree)

	staged := make(map[string]bool)
	for _, filePath := range files {
		if r.ignored(filePath) {
			continue
		}
		data, err := r.FS.TryRead(filePath)
		if err != nil {
			return tvcerr.Wrap("branch.Stage", tvcerr.KindIO, err)
		}
		fileObj := &objectenc.File{Data: data}
		hash, err := r.Store.Write(fileObj)
		if err != nil {
			return err
		}
		idx.Stage(filePath, hash)
		staged[filePath] = true
	}

	head, err := r.headTree(branchName)
	if err != nil {
		return err
	}
	for _, headPath := range head.Paths() {
		if r.ignored(headPath) || staged[headPath] {
			continue
		}
		if idxEntry, ok := idx.Lookup(headPath); ok && idxEntry.Kind == objectenc.KindDelete {
			continue // already tombstoned
		}
		headEntry, _ := head.Lookup(headPath)
		if headEntry.Kind != objectenc.KindFile {
			continue
		}
		if _, err := r.FS.Stat(headPath); err == nil {
			continue // still present in the workspace, outside the staged path
		} else if !errors.Is(err, fs.ErrNotFound) {
			return tvcerr.Wrap("branch.Stage", tvcerr.KindIO, err)
		}
		idx.StageDelete(headPath, headEntry.Hash)
	}

	if err := stageIo.Write(idx.ToTree()); err != nil {
		return err
	}
	r.logger().Debug("staged", "branch", branchName, "path", path, "files", len(staged))
	return nil
}

// Commit snapshots the staging tree as a new commit on branchName. Fails
// KindNothingToCommit if the staging tree equals HEAD's tree.
func (r *Repo) Commit(branchName, message string) (objectenc.ObjHash, error) {
	stageTree, err := atomicfiles.NewStage(r.FS).Read()
	if err != nil {
		return "", err
	}
	stageIdx := tree.FromTree(stageTree)

	headTreeIdx, err := r.headTree(branchName)
	if err != nil {
		return "", err
	}

	if stageIdx.Equal(headTreeIdx) {
		return "", tvcerr.New("branch.Commit", tvcerr.KindNothingToCommit)
	}

	newTreeHash, err := r.Store.Write(stageIdx.LiveTree())
	if err != nil {
		return "", err
	}

	headIo := atomicfiles.NewHead(r.FS, branchName)
	currentHead, err := headIo.Read()
	if err != nil {
		return "", err
	}
	var parents []objectenc.ObjHash
	if !currentHead.IsNull() {
		parents = []objectenc.ObjHash{currentHead}
	}

	commit := &objectenc.Commit{
		Branch:        branchName,
		Message:       message,
		Tree:          newTreeHash,
		CommittedUnix: r.Now(),
		Parents:       parents,
	}
	newCommitHash, err := r.Store.Write(commit)
	if err != nil {
		return "", err
	}

	if err := headIo.Write(newCommitHash); err != nil {
		return "", err
	}
	if err := atomicfiles.NewTrace(r.FS, branchName).Write(newTreeHash); err != nil {
		return "", err
	}
	if err := atomicfiles.NewLocalCommits(r.FS, branchName).Append(newCommitHash); err != nil {
		return "", err
	}
	// STAGE is left unchanged (spec.md §4.5 note 4): the committed state
	// now equals the new HEAD tree, so a subsequent diff is empty either way.
	r.logger().Info("committed", "branch", branchName, "commit", string(newCommitHash))
	return newCommitHash, nil
}

// NewBranch creates "to" as a copy of "from"'s HEAD/TRACE and checks it out.
// Requires that "to" does not already exist (spec.md §4.6).
func (r *Repo) NewBranch(from, to string) error {
	fromHead := atomicfiles.NewHead(r.FS, from)
	head, err := fromHead.Read()
	if err != nil {
		return err
	}
	trace, err := atomicfiles.NewTrace(r.FS, from).Read()
	if err != nil {
		return err
	}

	toHead := atomicfiles.NewHead(r.FS, to)
	exists, err := toHead.Exists()
	if err != nil {
		return err
	}
	if exists {
		return tvcerr.New("branch.NewBranch", tvcerr.KindBranchExists)
	}

	if err := toHead.Write(head); err != nil {
		return err
	}
	if err := atomicfiles.NewTrace(r.FS, to).Write(trace); err != nil {
		return err
	}
	if err := atomicfiles.NewWorking(r.FS).Write(to); err != nil {
		return err
	}
	r.logger().Info("branch created", "from", from, "to", to)
	return nil
}

// Checkout rewrites the workspace to match branchName's HEAD tree and
// updates WORKING. Fails KindBranchMissing if branchName's HEAD is null.
func (r *Repo) Checkout(branchName string) error {
	headIo := atomicfiles.NewHead(r.FS, branchName)
	exists, err := headIo.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return tvcerr.New("branch.Checkout", tvcerr.KindBranchMissing)
	}
	headHash, err := headIo.Read()
	if err != nil {
		return err
	}
	if headHash.IsNull() {
		return tvcerr.New("branch.Checkout", tvcerr.KindBranchMissing)
	}

	commit, err := r.Store.ReadCommit(headHash)
	if err != nil {
		return err
	}
	wantTree, err := r.Store.ReadTree(commit.Tree)
	if err != nil {
		return err
	}
	want := tree.FromTree(wantTree)

	currentFiles, err := r.FS.AllFiles("")
	if err != nil {
		return tvcerr.Wrap("branch.Checkout", tvcerr.KindIO, err)
	}
	for _, path := range currentFiles {
		if r.ignored(path) {
			continue
		}
		if _, ok := want.Lookup(path); !ok {
			if err := r.FS.Delete(path); err != nil {
				return tvcerr.Wrap("branch.Checkout", tvcerr.KindIO, err)
			}
		}
	}

	for _, path := range want.Paths() {
		entry, _ := want.Lookup(path)
		if entry.Kind != objectenc.KindFile {
			continue
		}
		file, err := r.Store.ReadFile(entry.Hash)
		if err != nil {
			return err
		}
		if err := r.FS.Write(path, file.Data); err != nil {
			return tvcerr.Wrap("branch.Checkout", tvcerr.KindIO, err)
		}
	}

	if err := atomicfiles.NewWorking(r.FS).Write(branchName); err != nil {
		return err
	}
	r.logger().Info("checked out", "branch", branchName)
	return nil
}
