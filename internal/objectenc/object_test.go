package objectenc

import (
	"bytes"
	"testing"
)

func TestFileEncodeAppendsHeader(t *testing.T) {
	f := &File{Data: []byte("hello")}
	buf, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(buf, []byte("FILE\x00hello")) {
		t.Fatalf("Encode() = %q, want %q", buf, "FILE\x00hello")
	}
}

func TestFileRoundTrip(t *testing.T) {
	f := &File{Data: []byte("hello")}
	buf, _ := f.Encode()
	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, ok := decoded.(*File)
	if !ok {
		t.Fatalf("Decode() returned %T, want *File", decoded)
	}
	if !bytes.Equal(got.Data, f.Data) {
		t.Fatalf("Data = %q, want %q", got.Data, f.Data)
	}
}

func TestContentAddressing(t *testing.T) {
	f := &File{Data: []byte("hello")}
	buf, _ := f.Encode()
	h1 := Hash(buf)
	h2 := Hash(buf)
	if h1 != h2 {
		t.Fatalf("identical bytes hashed differently: %s != %s", h1, h2)
	}

	other := &File{Data: []byte("hellO")}
	otherBuf, _ := other.Encode()
	if Hash(otherBuf) == h1 {
		t.Fatalf("distinct bytes hashed identically")
	}
}

func TestScenario1HashMatchesSpecExample(t *testing.T) {
	f := &File{Data: []byte("hello")}
	buf, _ := f.Encode()
	// spec.md §8 scenario 1: "hash = SHA1(\"FILE\\0hello\")".
	want := Hash([]byte("FILE\x00hello"))
	if Hash(buf) != want {
		t.Fatalf("hash = %s, want %s", Hash(buf), want)
	}
}

func TestTreeRoundTripAndDeterministicOrder(t *testing.T) {
	tree := &Tree{Entries: []TreeEntry{
		{Path: "b.txt", Hash: ObjHash("111111111111111111111111111111111111111b"), Kind: KindFile},
		{Path: "a.txt", Hash: ObjHash("111111111111111111111111111111111111111a"), Kind: KindFile},
	}}
	buf1, err := tree.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	reordered := &Tree{Entries: []TreeEntry{tree.Entries[1], tree.Entries[0]}}
	buf2, err := reordered.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(buf1, buf2) {
		t.Fatalf("tree encoding depends on input order, want stable sort by path")
	}

	decoded, err := Decode(buf1)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, ok := decoded.(*Tree)
	if !ok {
		t.Fatalf("Decode() returned %T, want *Tree", decoded)
	}
	if len(got.Entries) != 2 || got.Entries[0].Path != "a.txt" || got.Entries[1].Path != "b.txt" {
		t.Fatalf("Entries = %+v, want sorted [a.txt b.txt]", got.Entries)
	}
}

func TestTreeDeleteEntryRoundTrip(t *testing.T) {
	tree := &Tree{Entries: []TreeEntry{
		{Path: "gone.txt", Hash: ObjHash("222222222222222222222222222222222222222c"), Kind: KindDelete},
	}}
	buf, err := tree.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := decoded.(*Tree)
	if got.Entries[0].Kind != KindDelete {
		t.Fatalf("Kind = %v, want KindDelete", got.Entries[0].Kind)
	}
}

func TestCommitDeterminism(t *testing.T) {
	mk := func() *Commit {
		return &Commit{
			Branch:        "owner",
			Message:       "initial commit",
			Tree:          ObjHash("3333333333333333333333333333333333333d"),
			CommittedUnix: 1700000000,
			Parents:       nil,
		}
	}
	h1, err := HashOf(mk())
	if err != nil {
		t.Fatalf("HashOf() error = %v", err)
	}
	h2, err := HashOf(mk())
	if err != nil {
		t.Fatalf("HashOf() error = %v", err)
	}
	if h1 != h2 {
		t.Fatalf("commit hash not deterministic: %s != %s", h1, h2)
	}
}

func TestCommitRoundTripWithParents(t *testing.T) {
	c := &Commit{
		Branch:        "owner",
		Message:       "merge",
		Tree:          ObjHash("444444444444444444444444444444444444444e"),
		CommittedUnix: 1700000001,
		Parents: []ObjHash{
			ObjHash("555555555555555555555555555555555555555f"),
			ObjHash("666666666666666666666666666666666666666a"),
		},
	}
	buf, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := decoded.(*Commit)
	if got.Branch != c.Branch || got.Message != c.Message || got.Tree != c.Tree || got.CommittedUnix != c.CommittedUnix {
		t.Fatalf("decoded commit = %+v, want %+v", got, c)
	}
	if len(got.Parents) != 2 || got.Parents[0] != c.Parents[0] || got.Parents[1] != c.Parents[1] {
		t.Fatalf("Parents = %+v, want %+v", got.Parents, c.Parents)
	}
}

func TestDeleteRoundTrip(t *testing.T) {
	d := &Delete{Removed: ObjHash("777777777777777777777777777777777777777b")}
	buf, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := decoded.(*Delete)
	if got.Removed != d.Removed {
		t.Fatalf("Removed = %s, want %s", got.Removed, d.Removed)
	}
}
