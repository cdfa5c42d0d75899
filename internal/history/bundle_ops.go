package history

import (
	"sort"

	"github.com/meltosvc/tvc/internal/ancestry"
	"github.com/meltosvc/tvc/internal/atomicfiles"
	"github.com/meltosvc/tvc/internal/branch"
	"github.com/meltosvc/tvc/internal/bundle"
	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

// RemoteClient is the collaborator push/fetch hand a bundle to — transport
// itself is out of scope (spec.md §1 Non-goals: "no network transport
// beyond the bundle as exchange unit"); this is the seam a server or a
// test double implements.
type RemoteClient interface {
	Send(b *bundle.Bundle) error
	Receive() (*bundle.Bundle, error)
}

// UnzipResult reports which branches a bundle advanced and which ones it
// could not, because the incoming head was not a descendant of the local
// one (spec.md §4.8: "surfaced as a divergence requiring merge").
type UnzipResult struct {
	UpdatedBranches  []string
	DivergedBranches []string
}

func includeCommit(repo *branch.Repo, commitHash objectenc.ObjHash, objects map[objectenc.ObjHash][]byte, traces map[objectenc.ObjHash]objectenc.ObjHash) error {
	if commitHash.IsNull() {
		return nil
	}
	if _, ok := objects[commitHash]; ok {
		return nil
	}
	raw, err := repo.Store.ReadRaw(commitHash)
	if err != nil {
		return err
	}
	objects[commitHash] = raw

	commit, err := repo.Store.ReadCommit(commitHash)
	if err != nil {
		return err
	}
	traces[commitHash] = commit.Tree

	if _, ok := objects[commit.Tree]; !ok {
		treeRaw, err := repo.Store.ReadRaw(commit.Tree)
		if err != nil {
			return err
		}
		objects[commit.Tree] = treeRaw
	}

	tr, err := repo.Store.ReadTree(commit.Tree)
	if err != nil {
		return err
	}
	for _, e := range tr.Entries {
		if _, ok := objects[e.Hash]; ok {
			continue
		}
		raw, err := repo.Store.ReadRaw(e.Hash)
		if err != nil {
			return err
		}
		objects[e.Hash] = raw
	}
	return nil
}

func gatherReachable(repo *branch.Repo, head objectenc.ObjHash, objects map[objectenc.ObjHash][]byte, traces map[objectenc.ObjHash]objectenc.ObjHash) error {
	if head.IsNull() {
		return nil
	}
	visited := make(map[objectenc.ObjHash]bool)
	queue := []objectenc.ObjHash{head}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h.IsNull() || visited[h] {
			continue
		}
		visited[h] = true
		if err := includeCommit(repo, h, objects, traces); err != nil {
			return err
		}
		commit, err := repo.Store.ReadCommit(h)
		if err != nil {
			return err
		}
		queue = append(queue, commit.Parents...)
	}
	return nil
}

func toBundle(objects map[objectenc.ObjHash][]byte, traces map[objectenc.ObjHash]objectenc.ObjHash, branches []bundle.BranchEntry) *bundle.Bundle {
	b := &bundle.Bundle{Branches: branches}
	for hash, raw := range objects {
		b.Objects = append(b.Objects, bundle.ObjectEntry{Hash: hash, Compressed: raw})
	}
	for commitHash, treeHash := range traces {
		b.Traces = append(b.Traces, bundle.TraceEntry{CommitHash: commitHash, TreeHash: treeHash})
	}
	sort.Slice(b.Objects, func(i, j int) bool { return b.Objects[i].Hash < b.Objects[j].Hash })
	return b
}

// ProduceFull walks every existing branch and emits every reachable commit,
// tree and file/delete object exactly once (spec.md §4.8, the full
// "bundle()" operation).
func ProduceFull(repo *branch.Repo) (*bundle.Bundle, error) {
	names, err := atomicfiles.ListBranches(repo.FS)
	if err != nil {
		return nil, err
	}

	objects := make(map[objectenc.ObjHash][]byte)
	traces := make(map[objectenc.ObjHash]objectenc.ObjHash)
	var branches []bundle.BranchEntry

	for _, name := range names {
		head, err := atomicfiles.NewHead(repo.FS, name).Read()
		if err != nil {
			return nil, err
		}
		trace, err := atomicfiles.NewTrace(repo.FS, name).Read()
		if err != nil {
			return nil, err
		}
		branches = append(branches, bundle.BranchEntry{Name: name, Head: head, Trace: trace})
		if err := gatherReachable(repo, head, objects, traces); err != nil {
			return nil, err
		}
	}

	return toBundle(objects, traces, branches), nil
}

// ProducePush builds a bundle containing exactly the commits in
// LOCAL_COMMITS(branchName) and every object they newly reference, plus the
// (name, head, trace) triple (spec.md §4.9 "push").
func ProducePush(repo *branch.Repo, branchName string) (*bundle.Bundle, error) {
	commits, err := atomicfiles.NewLocalCommits(repo.FS, branchName).Read()
	if err != nil {
		return nil, err
	}

	objects := make(map[objectenc.ObjHash][]byte)
	traces := make(map[objectenc.ObjHash]objectenc.ObjHash)
	for _, c := range commits {
		if err := includeCommit(repo, c, objects, traces); err != nil {
			return nil, err
		}
	}

	head, err := atomicfiles.NewHead(repo.FS, branchName).Read()
	if err != nil {
		return nil, err
	}
	trace, err := atomicfiles.NewTrace(repo.FS, branchName).Read()
	if err != nil {
		return nil, err
	}

	branches := []bundle.BranchEntry{{Name: branchName, Head: head, Trace: trace}}
	return toBundle(objects, traces, branches), nil
}

// Unzip ingests a bundle: every object is written idempotently, then every
// branch advances if the incoming head is a descendant of the local one,
// is created outright if unknown locally, or is reported as diverged
// otherwise (spec.md §4.8 "Consumer"). HEAD is never silently rewritten to
// an unrelated commit.
func Unzip(repo *branch.Repo, b *bundle.Bundle) (*UnzipResult, error) {
	for _, obj := range b.Objects {
		if err := repo.Store.WriteRaw(obj.Hash, obj.Compressed); err != nil {
			return nil, err
		}
	}

	result := &UnzipResult{}
	for _, be := range b.Branches {
		headIo := atomicfiles.NewHead(repo.FS, be.Name)
		exists, err := headIo.Exists()
		if err != nil {
			return nil, err
		}
		if !exists {
			if err := headIo.Write(be.Head); err != nil {
				return nil, err
			}
			if err := atomicfiles.NewTrace(repo.FS, be.Name).Write(be.Trace); err != nil {
				return nil, err
			}
			result.UpdatedBranches = append(result.UpdatedBranches, be.Name)
			continue
		}

		localHead, err := headIo.Read()
		if err != nil {
			return nil, err
		}
		if localHead == be.Head {
			continue
		}
		isFastForward, err := ancestry.IsAncestor(repo.Store, localHead, be.Head)
		if err != nil {
			return nil, err
		}
		if isFastForward {
			if err := headIo.Write(be.Head); err != nil {
				return nil, err
			}
			if err := atomicfiles.NewTrace(repo.FS, be.Name).Write(be.Trace); err != nil {
				return nil, err
			}
			result.UpdatedBranches = append(result.UpdatedBranches, be.Name)
		} else {
			result.DivergedBranches = append(result.DivergedBranches, be.Name)
		}
	}
	return result, nil
}

// Save is the server-side ingestion entry point: reject oversized bundles
// before touching the store, otherwise delegate to Unzip (spec.md §4.9).
// A zero bundleSizeLimitBytes means unlimited.
func Save(repo *branch.Repo, b *bundle.Bundle, bundleSizeLimitBytes int64) (*UnzipResult, error) {
	if bundleSizeLimitBytes > 0 {
		size, err := b.SizeBytes()
		if err != nil {
			return nil, err
		}
		if int64(size) > bundleSizeLimitBytes {
			return nil, tvcerr.New("history.Save", tvcerr.KindBundleSizeExceeded)
		}
	}
	return Unzip(repo, b)
}

// Push builds the bundle for branchName and hands it to remote; on success
// LOCAL_COMMITS(branchName) is cleared (spec.md §4.9).
func Push(repo *branch.Repo, branchName string, remote RemoteClient) error {
	b, err := ProducePush(repo, branchName)
	if err != nil {
		return err
	}
	if err := remote.Send(b); err != nil {
		return tvcerr.Wrap("history.Push", tvcerr.KindIO, err)
	}
	return atomicfiles.NewLocalCommits(repo.FS, branchName).Clear()
}

// Fetch receives a bundle from remote and runs Save against it (spec.md
// §4.9).
func Fetch(repo *branch.Repo, remote RemoteClient, bundleSizeLimitBytes int64) (*UnzipResult, error) {
	b, err := remote.Receive()
	if err != nil {
		return nil, tvcerr.Wrap("history.Fetch", tvcerr.KindIO, err)
	}
	return Save(repo, b, bundleSizeLimitBytes)
}
