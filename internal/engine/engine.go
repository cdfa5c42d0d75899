// Package engine is the façade a CLI or room server drives: one Engine per
// opened repository root, serializing every operation behind a mutex per
// spec.md §5's single-writer concurrency model (this module assumes a
// single process owns a given repository root; concurrent processes racing
// the same root are out of scope).
package engine

import (
	"log/slog"
	"sync"

	"github.com/meltosvc/tvc/internal/branch"
	"github.com/meltosvc/tvc/internal/bundle"
	"github.com/meltosvc/tvc/internal/clock"
	"github.com/meltosvc/tvc/internal/config"
	"github.com/meltosvc/tvc/internal/fs"
	"github.com/meltosvc/tvc/internal/history"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/store"
)

// Engine bundles one repository's FS-backed collaborators behind a single
// mutex; every exported method is safe to call from multiple goroutines,
// but operations never interleave (spec.md §5: "no two operations … run
// concurrently against the same repository root").
type Engine struct {
	mu     sync.Mutex
	repo   *branch.Repo
	config *config.Config
}

// Open wires a FileSystem, an object store and the loaded configuration
// into one Engine. cfg may be nil, in which case config.Default() applies.
func Open(f fs.FileSystem, cfg *config.Config, log *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		repo: &branch.Repo{
			FS:     f,
			Store:  store.New(f, log),
			Clock:  clock.Real,
			Log:    log,
			Ignore: cfg.WorkspaceIgnorePrefixes,
		},
		config: cfg,
	}
}

// Init bootstraps a brand-new repository on branch.Owner.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.Init(branch.Owner)
}

// Stage snapshots path (or the whole workspace if path is "") into the
// staging tree of the currently checked-out branch.
func (e *Engine) Stage(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	working, err := e.working()
	if err != nil {
		return err
	}
	return e.repo.Stage(working, path)
}

// Commit snapshots the staging tree as a new commit on the currently
// checked-out branch.
func (e *Engine) Commit(message string) (objectenc.ObjHash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	working, err := e.working()
	if err != nil {
		return "", err
	}
	return e.repo.Commit(working, message)
}

// NewBranch creates "to" from the currently checked-out branch and checks
// it out.
func (e *Engine) NewBranch(to string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	working, err := e.working()
	if err != nil {
		return err
	}
	return e.repo.NewBranch(working, to)
}

// Checkout switches the workspace to branchName.
func (e *Engine) Checkout(branchName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.Checkout(branchName)
}

// Merge merges sourceBranch into the currently checked-out branch.
func (e *Engine) Merge(sourceBranch string) (*history.MergeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history.Merge(e.repo, sourceBranch)
}

// Bundle produces a full export of every branch reachable from the repository.
func (e *Engine) Bundle() (*bundle.Bundle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history.ProduceFull(e.repo)
}

// Save ingests an externally produced bundle, e.g. one received over HTTP
// by a room server, rejecting it outright if it exceeds the configured
// bundle size limit.
func (e *Engine) Save(b *bundle.Bundle) (*history.UnzipResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history.Save(e.repo, b, e.config.BundleSizeLimitBytes)
}

// Push sends branchName's unpushed commits to remote and clears its
// LOCAL_COMMITS on success.
func (e *Engine) Push(branchName string, remote history.RemoteClient) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history.Push(e.repo, branchName, remote)
}

// Fetch receives a bundle from remote and ingests it.
func (e *Engine) Fetch(remote history.RemoteClient) (*history.UnzipResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history.Fetch(e.repo, remote, e.config.BundleSizeLimitBytes)
}

// Status reports the currently checked-out branch and its HEAD commit.
func (e *Engine) Status() (branchName string, head objectenc.ObjHash, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	branchName, err = e.working()
	if err != nil {
		return "", "", err
	}
	head, err = e.repo.CommitHead(branchName)
	return branchName, head, err
}

func (e *Engine) working() (string, error) {
	return e.repo.WorkingBranch()
}

// Config returns the engine's loaded configuration.
func (e *Engine) Config() *config.Config { return e.config }
