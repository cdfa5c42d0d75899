package engine

import (
	"testing"

	"github.com/meltosvc/tvc/internal/fs"
)

func TestInitStageCommitStatus(t *testing.T) {
	memFS := fs.NewMemory()
	e := Open(memFS, nil, nil)

	if err := e.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	memFS.Write("a.txt", []byte("hello"))
	if err := e.Stage(""); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	commit, err := e.Commit("first commit")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	branchName, head, err := e.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if branchName != "owner" {
		t.Fatalf("branch = %q, want owner", branchName)
	}
	if head != commit {
		t.Fatalf("head = %s, want %s", head, commit)
	}
}

func TestBundleRoundTrip(t *testing.T) {
	memFS := fs.NewMemory()
	e := Open(memFS, nil, nil)
	e.Init()
	memFS.Write("a.txt", []byte("hello"))
	e.Stage("")
	if _, err := e.Commit("c1"); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	b, err := e.Bundle()
	if err != nil {
		t.Fatalf("Bundle() error = %v", err)
	}
	if len(b.Objects) == 0 {
		t.Fatalf("bundle has no objects")
	}

	peerFS := fs.NewMemory()
	peer := Open(peerFS, nil, nil)
	result, err := peer.Save(b)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(result.UpdatedBranches) != 1 {
		t.Fatalf("UpdatedBranches = %v, want 1 entry", result.UpdatedBranches)
	}
}
