package tree

import (
	"testing"

	"github.com/meltosvc/tvc/internal/objectenc"
)

func TestStageAndLookup(t *testing.T) {
	idx := New()
	idx.Stage("a.txt", objectenc.ObjHash("1111111111111111111111111111111111111a"))

	e, ok := idx.Lookup("a.txt")
	if !ok {
		t.Fatalf("Lookup(a.txt) not found")
	}
	if e.Kind != objectenc.KindFile {
		t.Fatalf("Kind = %v, want KindFile", e.Kind)
	}
}

func TestUnstageRemovesEntry(t *testing.T) {
	idx := New()
	idx.Stage("a.txt", objectenc.ObjHash("1111111111111111111111111111111111111a"))
	idx.Unstage("a.txt")

	if _, ok := idx.Lookup("a.txt"); ok {
		t.Fatalf("Lookup(a.txt) found after Unstage")
	}
}

func TestPathsSorted(t *testing.T) {
	idx := New()
	idx.Stage("b.txt", objectenc.ObjHash("1111111111111111111111111111111111111b"))
	idx.Stage("a.txt", objectenc.ObjHash("1111111111111111111111111111111111111a"))

	paths := idx.Paths()
	if len(paths) != 2 || paths[0] != "a.txt" || paths[1] != "b.txt" {
		t.Fatalf("Paths() = %v, want [a.txt b.txt]", paths)
	}
}

func TestDiffAddModifyDelete(t *testing.T) {
	base := New()
	base.Stage("a.txt", objectenc.ObjHash("1111111111111111111111111111111111111a"))
	base.Stage("b.txt", objectenc.ObjHash("1111111111111111111111111111111111111b"))

	next := New()
	next.Stage("a.txt", objectenc.ObjHash("2222222222222222222222222222222222222a")) // modified
	next.Stage("c.txt", objectenc.ObjHash("3333333333333333333333333333333333333c")) // added
	// b.txt dropped entirely from the workspace -> delete diff

	changes := next.Diff(base)
	want := map[string]ChangeKind{"a.txt": Modify, "b.txt": Delete, "c.txt": Add}
	if len(changes) != len(want) {
		t.Fatalf("Diff() = %+v, want %d changes", changes, len(want))
	}
	for _, c := range changes {
		if want[c.Path] != c.Kind {
			t.Fatalf("Diff()[%s] = %v, want %v", c.Path, c.Kind, want[c.Path])
		}
	}
}

func TestDiffExplicitDeleteEntryNotSilentlyDropped(t *testing.T) {
	base := New()
	base.Stage("a.txt", objectenc.ObjHash("1111111111111111111111111111111111111a"))

	next := New()
	next.StageDelete("a.txt", objectenc.ObjHash("1111111111111111111111111111111111111a"))

	changes := next.Diff(base)
	if len(changes) != 1 || changes[0].Kind != Delete || changes[0].Path != "a.txt" {
		t.Fatalf("Diff() = %+v, want one Delete(a.txt)", changes)
	}
}

func TestStageIdempotent(t *testing.T) {
	first := New()
	first.Stage("a.txt", objectenc.ObjHash("1111111111111111111111111111111111111a"))

	second := New()
	second.Stage("a.txt", objectenc.ObjHash("1111111111111111111111111111111111111a"))

	if !first.Equal(second) {
		t.Fatalf("staging identical workspace twice produced different indexes")
	}
}

func TestToTreeRoundTrip(t *testing.T) {
	idx := New()
	idx.Stage("a.txt", objectenc.ObjHash("111111111111111111111111111111111111111a"))
	idx.Stage("b.txt", objectenc.ObjHash("111111111111111111111111111111111111111b"))

	encoded, err := idx.ToTree().Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := objectenc.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	roundTripped := FromTree(decoded.(*objectenc.Tree))
	if !idx.Equal(roundTripped) {
		t.Fatalf("round-tripped index does not equal original")
	}
}
