package history

import (
	"testing"

	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/branch"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/store"
)

func newTestRepo(tickStart int64) (*branch.Repo, fs.FileSystem) {
	memFS := fs.NewMemory()
	tick := tickStart
	repo := &branch.Repo{
		FS:    memFS,
		Store: store.New(memFS, nil),
		Clock: func() int64 { tick++; return tick },
	}
	return repo, memFS
}

func TestLinearFastForward(t *testing.T) {
	repo, memFS := newTestRepo(1700000000)
	repo.Init(branch.Owner)
	memFS.Write("a.txt", []byte("hello"))
	repo.Stage(branch.Owner, "")
	repo.Commit(branch.Owner, "c1")

	repo.NewBranch(branch.Owner, "dev")
	memFS.Write("b.txt", []byte("B"))
	repo.Stage("dev", "")
	c2, err := repo.Commit("dev", "c2")
	if err != nil {
		t.Fatalf("Commit(c2) error = %v", err)
	}

	repo.Checkout(branch.Owner)
	result, err := Merge(repo, "dev")
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if result.Status != FastForward {
		t.Fatalf("Status = %v, want FastForward", result.Status)
	}
	if result.Commit != c2 {
		t.Fatalf("Commit = %s, want %s", result.Commit, c2)
	}
}

func TestThreeWayCleanMerge(t *testing.T) {
	repo, memFS := newTestRepo(1700000000)
	repo.Init(branch.Owner)
	memFS.Write("a.txt", []byte("hello"))
	repo.Stage(branch.Owner, "")
	repo.Commit(branch.Owner, "c1")

	repo.NewBranch(branch.Owner, "dev")

	memFS.Write("b.txt", []byte("B"))
	repo.Stage(branch.Owner, "")
	repo.Commit(branch.Owner, "c2")

	repo.Checkout("dev")
	memFS.Write("c.txt", []byte("C"))
	repo.Stage("dev", "")
	repo.Commit("dev", "c3")

	repo.Checkout(branch.Owner)
	result, err := Merge(repo, "dev")
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if result.Status != Merged {
		t.Fatalf("Status = %v, want Merged", result.Status)
	}

	mergedTree, err := repo.CommitTreeIndex(result.Commit)
	if err != nil {
		t.Fatalf("CommitTreeIndex() error = %v", err)
	}
	for _, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if _, ok := mergedTree.Lookup(want); !ok {
			t.Fatalf("merged tree missing %s", want)
		}
	}
}

func TestConflictingMerge(t *testing.T) {
	repo, memFS := newTestRepo(1700000000)
	repo.Init(branch.Owner)
	memFS.Write("a.txt", []byte("hello"))
	repo.Stage(branch.Owner, "")
	repo.Commit(branch.Owner, "c1")

	repo.NewBranch(branch.Owner, "dev")

	memFS.Write("a.txt", []byte("owner-version"))
	repo.Stage(branch.Owner, "")
	repo.Commit(branch.Owner, "c2")

	repo.Checkout("dev")
	memFS.Write("a.txt", []byte("dev-version"))
	repo.Stage("dev", "")
	repo.Commit("dev", "c3")

	repo.Checkout(branch.Owner)
	originalHead, _ := repo.CommitTreeIndex(mustHead(t, repo, branch.Owner))

	result, err := Merge(repo, "dev")
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if result.Status != Conflict {
		t.Fatalf("Status = %v, want Conflict", result.Status)
	}
	if len(result.Paths) != 1 || result.Paths[0] != "a.txt" {
		t.Fatalf("Paths = %v, want [a.txt]", result.Paths)
	}

	headAfter, _ := repo.CommitTreeIndex(mustHead(t, repo, branch.Owner))
	if !originalHead.Equal(headAfter) {
		t.Fatalf("HEAD(owner) mutated by a conflicting merge")
	}
}

func mustHead(t *testing.T, repo *branch.Repo, branchName string) objectenc.ObjHash {
	t.Helper()
	h, err := atomicfiles.NewHead(repo.FS, branchName).Read()
	if err != nil {
		t.Fatalf("Head.Read() error = %v", err)
	}
	return h
}
