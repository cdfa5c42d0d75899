// Package ancestry walks the commit DAG that internal/branch writes commits
// into. It backs both the merge-base search (spec.md §4.7 step 3) and the
// bundle consumer's fast-forward check (spec.md §4.8 "advance HEAD only if
// the incoming head is a descendant of the local head"), so it lives
// outside both internal/history and internal/bundle to avoid a cycle
// between them.
package ancestry

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/store"
)

// Set walks every commit reachable from head (inclusive) and returns them
// keyed by hash.
func Set(s *store.Store, head objectenc.ObjHash) (map[objectenc.ObjHash]*objectenc.Commit, error) {
	out := make(map[objectenc.ObjHash]*objectenc.Commit)
	if head.IsNull() {
		return out, nil
	}
	queue := []objectenc.ObjHash{head}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if _, seen := out[h]; seen || h.IsNull() {
			continue
		}
		commit, err := s.ReadCommit(h)
		if err != nil {
			return nil, err
		}
		out[h] = commit
		queue = append(queue, commit.Parents...)
	}
	return out, nil
}

// IsAncestor reports whether ancestor is reachable from descendant
// (including descendant == ancestor, per spec.md §4.7's fast-forward test).
func IsAncestor(s *store.Store, ancestorHash, descendantHash objectenc.ObjHash) (bool, error) {
	if ancestorHash == descendantHash {
		return true, nil
	}
	reachable, err := Set(s, descendantHash)
	if err != nil {
		return false, err
	}
	_, ok := reachable[ancestorHash]
	return ok, nil
}

// MergeBase walks both histories concurrently (spec.md SPEC_FULL.md §6:
// errgroup over the two ancestries) and returns the best common ancestor:
// among all commits reachable from both a and b, the one with the greatest
// committed timestamp, ties broken by hash (spec.md §4.7 step 3). Returns
// an empty hash (for which IsNull reports true) and a nil error if a and b
// share no history at all — callers treat that as "no common ancestor"
// rather than an error.
func MergeBase(s *store.Store, a, b objectenc.ObjHash) (objectenc.ObjHash, error) {
	var setA, setB map[objectenc.ObjHash]*objectenc.Commit
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		setA, err = Set(s, a)
		return err
	})
	g.Go(func() error {
		var err error
		setB, err = Set(s, b)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	var best objectenc.ObjHash
	var bestTime int64 = -1
	for hash, commit := range setA {
		if _, ok := setB[hash]; !ok {
			continue
		}
		if commit.CommittedUnix > bestTime || (commit.CommittedUnix == bestTime && hash > best) {
			best = hash
			bestTime = commit.CommittedUnix
		}
	}
	return best, nil
}
