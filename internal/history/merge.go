// Package history implements the history operations of spec.md §4.7–§4.9:
// three-way merge, and the push/fetch/save/unzip bundle exchange. It sits
// above internal/branch (commit/tree primitives), internal/ancestry
// (DAG walks) and internal/bundle (wire format).
package history

import (
	"sort"

	"github.com/meltosvc/tvc/internal/ancestry"
	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/branch"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/tree"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

// StatusKind tags the outcome of a Merge call (spec.md §4.7).
type StatusKind int

const (
	FastForward StatusKind = iota
	UpToDate
	Conflict
	Merged
)

func (k StatusKind) String() string {
	switch k {
	case FastForward:
		return "FastForward"
	case UpToDate:
		return "UpToDate"
	case Conflict:
		return "Conflict"
	case Merged:
		return "Merged"
	default:
		return "Unknown"
	}
}

// MergeResult is the outcome of Merge.
type MergeResult struct {
	Status StatusKind
	Paths  []string          // populated for Conflict
	Commit objectenc.ObjHash // new HEAD for FastForward/Merged
}

// Merge merges sourceBranch into the branch currently checked out
// (WORKING), per spec.md §4.7.
func Merge(repo *branch.Repo, sourceBranch string) (*MergeResult, error) {
	destBranch, err := atomicfiles.NewWorking(repo.FS).TryRead()
	if err != nil {
		return nil, err
	}

	srcHeadIo := atomicfiles.NewHead(repo.FS, sourceBranch)
	srcExists, err := srcHeadIo.Exists()
	if err != nil {
		return nil, err
	}
	if !srcExists {
		return nil, tvcerr.New("history.Merge", tvcerr.KindBranchMissing)
	}
	hs, err := srcHeadIo.Read()
	if err != nil {
		return nil, err
	}
	dstHeadIo := atomicfiles.NewHead(repo.FS, destBranch)
	hd, err := dstHeadIo.Read()
	if err != nil {
		return nil, err
	}

	// Step 2, first half: Hs == Hd is already up to date. Checked before the
	// fast path, since IsAncestor also reports true for equal hashes.
	if hs == hd {
		return &MergeResult{Status: UpToDate, Commit: hd}, nil
	}

	// Step 1: fast path — Hd is an ancestor of Hs.
	if hdAncestorOfHs, err := ancestry.IsAncestor(repo.Store, hd, hs); err != nil {
		return nil, err
	} else if hdAncestorOfHs {
		if err := fastForward(repo, destBranch, hs); err != nil {
			return nil, err
		}
		return &MergeResult{Status: FastForward, Commit: hs}, nil
	}

	// Step 2, second half: already up to date — Hs is an ancestor of Hd.
	if hsAncestorOfHd, err := ancestry.IsAncestor(repo.Store, hs, hd); err != nil {
		return nil, err
	} else if hsAncestorOfHd {
		return &MergeResult{Status: UpToDate, Commit: hd}, nil
	}

	// Step 3: merge base search.
	base, err := ancestry.MergeBase(repo.Store, hs, hd)
	if err != nil {
		return nil, err
	}

	baseIdx, err := repo.CommitTreeIndex(base)
	if err != nil {
		return nil, err
	}
	srcIdx, err := repo.CommitTreeIndex(hs)
	if err != nil {
		return nil, err
	}
	dstIdx, err := repo.CommitTreeIndex(hd)
	if err != nil {
		return nil, err
	}

	// Step 4: three-way combine.
	merged, conflicts := combine(baseIdx, srcIdx, dstIdx)
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return &MergeResult{Status: Conflict, Paths: conflicts}, nil
	}

	// Step 6: build the merge commit.
	newTreeHash, err := repo.Store.Write(merged.LiveTree())
	if err != nil {
		return nil, err
	}
	commit := &objectenc.Commit{
		Branch:        destBranch,
		Message:       "merge " + sourceBranch + " into " + destBranch,
		Tree:          newTreeHash,
		CommittedUnix: repo.Now(),
		Parents:       []objectenc.ObjHash{hd, hs},
	}
	newCommitHash, err := repo.Store.Write(commit)
	if err != nil {
		return nil, err
	}
	if err := dstHeadIo.Write(newCommitHash); err != nil {
		return nil, err
	}
	if err := atomicfiles.NewTrace(repo.FS, destBranch).Write(newTreeHash); err != nil {
		return nil, err
	}
	if err := atomicfiles.NewLocalCommits(repo.FS, destBranch).Append(newCommitHash); err != nil {
		return nil, err
	}

	return &MergeResult{Status: Merged, Commit: newCommitHash}, nil
}

func fastForward(repo *branch.Repo, destBranch string, newHead objectenc.ObjHash) error {
	if err := atomicfiles.NewHead(repo.FS, destBranch).Write(newHead); err != nil {
		return err
	}
	commit, err := repo.Store.ReadCommit(newHead)
	if err != nil {
		return err
	}
	if err := atomicfiles.NewTrace(repo.FS, destBranch).Write(commit.Tree); err != nil {
		return err
	}
	return repo.Checkout(destBranch)
}

// combine implements spec.md §4.7 step 4 for every path in the union of
// base, src and dst. Paths with no surviving action (both sides deleted
// relative to base, or both sides still absent) are simply left out of the
// returned index.
func combine(base, src, dst *tree.Index) (*tree.Index, []string) {
	paths := make(map[string]bool)
	for _, p := range base.Paths() {
		paths[p] = true
	}
	for _, p := range src.Paths() {
		paths[p] = true
	}
	for _, p := range dst.Paths() {
		paths[p] = true
	}

	result := tree.New()
	var conflicts []string

	for path := range paths {
		be, bOk := base.Lookup(path)
		se, sOk := src.Lookup(path)
		de, dOk := dst.Lookup(path)

		sameAsBase := func(ok bool, hash objectenc.ObjHash) bool {
			if !bOk {
				return !ok
			}
			if !ok {
				return false
			}
			return hash == be.Hash
		}

		srcUnchanged := sameAsBase(sOk, se.Hash)
		dstUnchanged := sameAsBase(dOk, de.Hash)

		switch {
		case srcUnchanged && dstUnchanged:
			if dOk {
				result.Stage(path, de.Hash)
			}
		case srcUnchanged:
			if dOk {
				result.Stage(path, de.Hash)
			}
			// else: D deleted, S unchanged -> delete (omit from result)
		case dstUnchanged:
			if sOk {
				result.Stage(path, se.Hash)
			}
			// else: S deleted, D unchanged -> delete (omit from result)
		case sOk && dOk && se.Hash == de.Hash:
			result.Stage(path, se.Hash)
		case !sOk && !dOk:
			// both deleted -> delete (omit from result)
		default:
			conflicts = append(conflicts, path)
		}
	}

	return result, conflicts
}
