package bundle

import (
	"testing"

	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

func sampleBundle() *Bundle {
	return &Bundle{
		Objects: []ObjectEntry{
			{Hash: objectenc.ObjHash("111111111111111111111111111111111111111a"), Compressed: []byte("gzipbytes")},
		},
		Branches: []BranchEntry{
			{Name: "owner", Head: objectenc.ObjHash("222222222222222222222222222222222222222b"), Trace: objectenc.EmptyTreeHash},
		},
		Traces: []TraceEntry{
			{CommitHash: objectenc.ObjHash("222222222222222222222222222222222222222b"), TreeHash: objectenc.EmptyTreeHash},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := sampleBundle()
	data, err := b.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(decoded.Objects) != 1 || decoded.Objects[0].Hash != b.Objects[0].Hash {
		t.Fatalf("Objects = %+v", decoded.Objects)
	}
	if len(decoded.Branches) != 1 || decoded.Branches[0].Name != "owner" {
		t.Fatalf("Branches = %+v", decoded.Branches)
	}
	if len(decoded.Traces) != 1 {
		t.Fatalf("Traces = %+v", decoded.Traces)
	}
}

func TestDecodeRejectsTruncatedData(t *testing.T) {
	b := sampleBundle()
	data, _ := b.Encode()
	truncated := data[:len(data)-5]
	if _, err := Decode(truncated); err == nil {
		t.Fatalf("Decode() succeeded on truncated data, want error")
	}
}

func TestDecodeRejectsCorruptedPayload(t *testing.T) {
	b := sampleBundle()
	data, _ := b.Encode()
	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)-1] ^= 0xFF

	_, err := Decode(corrupted)
	if !tvcerr.Is(err, tvcerr.KindCorruptObject) {
		t.Fatalf("Decode() error = %v, want KindCorruptObject", err)
	}
}
