package history

import (
	"testing"

	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/branch"
	"github.com/meltosvc/tvc/internal/bundle"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/store"
)

type inMemoryRemote struct {
	sent *bundle.Bundle
}

func (r *inMemoryRemote) Send(b *bundle.Bundle) error {
	r.sent = b
	return nil
}

func (r *inMemoryRemote) Receive() (*bundle.Bundle, error) {
	return r.sent, nil
}

func TestBundleRoundTripToEmptyPeer(t *testing.T) {
	source, sourceFS := newTestRepo(1700000000)
	source.Init(branch.Owner)
	sourceFS.Write("a.txt", []byte("hello"))
	source.Stage(branch.Owner, "")
	c1, err := source.Commit(branch.Owner, "c1")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	b, err := ProduceFull(source)
	if err != nil {
		t.Fatalf("ProduceFull() error = %v", err)
	}

	peerFS := fs.NewMemory()
	peer := &branch.Repo{FS: peerFS, Store: store.New(peerFS, nil)}
	result, err := Unzip(peer, b)
	if err != nil {
		t.Fatalf("Unzip() error = %v", err)
	}
	if len(result.UpdatedBranches) != 1 || result.UpdatedBranches[0] != branch.Owner {
		t.Fatalf("UpdatedBranches = %v, want [owner]", result.UpdatedBranches)
	}

	peerHead, err := atomicfiles.NewHead(peerFS, branch.Owner).Read()
	if err != nil {
		t.Fatalf("Head.Read() error = %v", err)
	}
	if peerHead != c1 {
		t.Fatalf("peer HEAD = %s, want %s", peerHead, c1)
	}

	if err := atomicfiles.NewWorking(peerFS).Write(branch.Owner); err != nil {
		t.Fatalf("Working.Write() error = %v", err)
	}
	if err := peer.Checkout(branch.Owner); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	data, err := peerFS.Read("a.txt")
	if err != nil {
		t.Fatalf("Read(a.txt) error = %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("a.txt = %q, want %q", data, "hello")
	}
}

func TestPushClearsLocalCommits(t *testing.T) {
	repo, memFS := newTestRepo(1700000000)
	repo.Init(branch.Owner)
	memFS.Write("a.txt", []byte("hello"))
	repo.Stage(branch.Owner, "")
	repo.Commit(branch.Owner, "c1")

	remote := &inMemoryRemote{}
	if err := Push(repo, branch.Owner, remote); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	local, err := atomicfiles.NewLocalCommits(memFS, branch.Owner).Read()
	if err != nil {
		t.Fatalf("LocalCommits.Read() error = %v", err)
	}
	if len(local) != 0 {
		t.Fatalf("LOCAL_COMMITS after push = %v, want empty", local)
	}
	if len(remote.sent.Objects) == 0 {
		t.Fatalf("pushed bundle has no objects")
	}
}

func TestSaveRejectsOversizedBundle(t *testing.T) {
	repo, memFS := newTestRepo(1700000000)
	repo.Init(branch.Owner)
	memFS.Write("a.txt", []byte("hello"))
	repo.Stage(branch.Owner, "")
	repo.Commit(branch.Owner, "c1")

	b, err := ProduceFull(repo)
	if err != nil {
		t.Fatalf("ProduceFull() error = %v", err)
	}

	peerFS := fs.NewMemory()
	peer := &branch.Repo{FS: peerFS, Store: store.New(peerFS, nil)}
	if _, err := Save(peer, b, 1); err == nil {
		t.Fatalf("Save() succeeded with a 1-byte limit, want BundleSizeExceeded")
	}
}
