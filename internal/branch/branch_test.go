package branch

import (
	"testing"

	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/store"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

func newTestRepo(t *testing.T) (*Repo, fs.FileSystem) {
	t.Helper()
	memFS := fs.NewMemory()
	repo := &Repo{
		FS:    memFS,
		Store: store.New(memFS, nil),
		Clock: func() int64 { return 1700000000 },
	}
	return repo, memFS
}

func TestInitThenCommitSingleFile(t *testing.T) {
	repo, memFS := newTestRepo(t)
	if err := repo.Init(Owner); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := memFS.Write("a.txt", []byte("hello")); err != nil {
		t.Fatalf("Write(a.txt) error = %v", err)
	}
	if err := repo.Stage(Owner, ""); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	commitHash, err := repo.Commit(Owner, "c1")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	wantFileHash := objectenc.Hash([]byte("FILE\x00hello"))
	fileObj, err := repo.Store.ReadFile(wantFileHash)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", wantFileHash, err)
	}
	if string(fileObj.Data) != "hello" {
		t.Fatalf("file data = %q, want %q", fileObj.Data, "hello")
	}

	head, err := atomicfiles.NewHead(memFS, Owner).Read()
	if err != nil {
		t.Fatalf("Head.Read() error = %v", err)
	}
	if head != commitHash {
		t.Fatalf("HEAD = %s, want %s", head, commitHash)
	}

	local, err := atomicfiles.NewLocalCommits(memFS, Owner).Read()
	if err != nil {
		t.Fatalf("LocalCommits.Read() error = %v", err)
	}
	if len(local) != 1 || local[0] != commitHash {
		t.Fatalf("LOCAL_COMMITS = %v, want [%s]", local, commitHash)
	}
}

func TestCommitWithoutStagedChangesFailsNothingToCommit(t *testing.T) {
	repo, _ := newTestRepo(t)
	if err := repo.Init(Owner); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	_, err := repo.Commit(Owner, "empty")
	if !tvcerr.Is(err, tvcerr.KindNothingToCommit) {
		t.Fatalf("Commit() error = %v, want NothingToCommit", err)
	}
}

func TestDeletePropagation(t *testing.T) {
	repo, memFS := newTestRepo(t)
	repo.Init(Owner)
	memFS.Write("a.txt", []byte("hello"))
	repo.Stage(Owner, "")
	c1, err := repo.Commit(Owner, "c1")
	if err != nil {
		t.Fatalf("Commit(c1) error = %v", err)
	}

	memFS.Delete("a.txt")
	if err := repo.Stage(Owner, ""); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	c2, err := repo.Commit(Owner, "c2")
	if err != nil {
		t.Fatalf("Commit(c2) error = %v", err)
	}

	commit2, err := repo.Store.ReadCommit(c2)
	if err != nil {
		t.Fatalf("ReadCommit(c2) error = %v", err)
	}
	if len(commit2.Parents) != 1 || commit2.Parents[0] != c1 {
		t.Fatalf("c2 parents = %v, want [%s]", commit2.Parents, c1)
	}
	treeObj, err := repo.Store.ReadTree(commit2.Tree)
	if err != nil {
		t.Fatalf("ReadTree() error = %v", err)
	}
	if len(treeObj.Entries) != 0 {
		t.Fatalf("c2 tree = %+v, want empty", treeObj.Entries)
	}
}

func TestNewBranchAndCheckout(t *testing.T) {
	repo, memFS := newTestRepo(t)
	repo.Init(Owner)
	memFS.Write("a.txt", []byte("hello"))
	repo.Stage(Owner, "")
	repo.Commit(Owner, "c1")

	if err := repo.NewBranch(Owner, "dev"); err != nil {
		t.Fatalf("NewBranch() error = %v", err)
	}

	working, err := atomicfiles.NewWorking(memFS).Read()
	if err != nil {
		t.Fatalf("Working.Read() error = %v", err)
	}
	if working != "dev" {
		t.Fatalf("WORKING = %q, want %q", working, "dev")
	}

	memFS.Delete("a.txt")
	if err := repo.Checkout(Owner); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	data, err := memFS.Read("a.txt")
	if err != nil {
		t.Fatalf("Read(a.txt) error = %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("a.txt = %q, want %q", data, "hello")
	}
}
