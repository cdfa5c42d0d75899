// Package bundle implements the wire format of spec.md §4.8 and §6: a
// self-contained slice of a repository (objects, per-branch heads/traces,
// per-commit tree pointers) that another peer can ingest atomically. The
// fixed 4-byte signature + version + length-prefixed sections framing
// follows the teacher's internal/packfile.PackFileHeader idiom, generalized
// from git's pack format to the spec's flat bundle shape. A blake3 checksum
// precedes the payload so a truncated/corrupted transfer is rejected before
// any object is decoded (SPEC_FULL.md §6).
package bundle

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"lukechampine.com/blake3"

	"github.com/meltosvc/tvc/internal/objectenc"
	"github.com/meltosvc/tvc/internal/tvcerr"
)

var signature = [4]byte{'M', 'B', 'U', 'N'}

const formatVersion uint32 = 1

// ObjectEntry is one (hash, already-compressed encoded bytes) pair. Bundles
// never re-encode or re-compress objects (spec.md §6).
type ObjectEntry struct {
	Hash       objectenc.ObjHash
	Compressed []byte
}

// BranchEntry names one branch's ref state.
type BranchEntry struct {
	Name  string
	Head  objectenc.ObjHash
	Trace objectenc.ObjHash
}

// TraceEntry caches a commit's tree pointer so a consumer can inspect the
// shape of history without decoding every commit object (spec.md §4.8:
// "traces: per-commit tree pointers").
type TraceEntry struct {
	CommitHash objectenc.ObjHash
	TreeHash   objectenc.ObjHash
}

// Bundle is the serialized exchange unit of spec.md §4.8.
type Bundle struct {
	Objects  []ObjectEntry
	Branches []BranchEntry
	Traces   []TraceEntry
}

// SizeBytes reports the length of the bundle's serialized payload (Encode's
// output minus its 40-byte signature/version/checksum header), compared against
// config's bundle_size_limit_bytes before ingestion (spec.md §4.9).
func (b *Bundle) SizeBytes() (int, error) {
	payload, err := b.encodePayload()
	if err != nil {
		return 0, err
	}
	return len(payload), nil
}

func (b *Bundle) encodePayload() ([]byte, error) {
	var buf bytes.Buffer

	sort.Slice(b.Objects, func(i, j int) bool { return b.Objects[i].Hash < b.Objects[j].Hash })
	sort.Slice(b.Branches, func(i, j int) bool { return b.Branches[i].Name < b.Branches[j].Name })
	sort.Slice(b.Traces, func(i, j int) bool { return b.Traces[i].CommitHash < b.Traces[j].CommitHash })

	writeUint32(&buf, uint32(len(b.Objects)))
	for _, o := range b.Objects {
		buf.Write([]byte(o.Hash))
		writeUint32(&buf, uint32(len(o.Compressed)))
		buf.Write(o.Compressed)
	}

	writeUint32(&buf, uint32(len(b.Branches)))
	for _, br := range b.Branches {
		writeString(&buf, br.Name)
		buf.Write([]byte(br.Head))
		buf.Write([]byte(br.Trace))
	}

	writeUint32(&buf, uint32(len(b.Traces)))
	for _, tr := range b.Traces {
		buf.Write([]byte(tr.CommitHash))
		buf.Write([]byte(tr.TreeHash))
	}

	return buf.Bytes(), nil
}

// Encode serializes the bundle to the on-wire envelope: signature, version,
// blake3 checksum of the payload, then the payload itself.
func (b *Bundle) Encode() ([]byte, error) {
	payload, err := b.encodePayload()
	if err != nil {
		return nil, tvcerr.Wrap("bundle.Encode", tvcerr.KindSerialization, err)
	}
	checksum := blake3.Sum256(payload)

	var buf bytes.Buffer
	buf.Write(signature[:])
	writeUint32(&buf, formatVersion)
	buf.Write(checksum[:])
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Decode parses a bundle envelope, rejecting it before touching any object
// if the checksum does not match the payload.
func Decode(data []byte) (*Bundle, error) {
	if len(data) < 4+4+32 {
		return nil, tvcerr.New("bundle.Decode", tvcerr.KindCorruptObject)
	}
	if !bytes.Equal(data[:4], signature[:]) {
		return nil, tvcerr.New("bundle.Decode", tvcerr.KindCorruptObject)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != formatVersion {
		return nil, tvcerr.New("bundle.Decode", tvcerr.KindCorruptObject)
	}
	wantChecksum := data[8:40]
	payload := data[40:]

	gotChecksum := blake3.Sum256(payload)
	if !bytes.Equal(gotChecksum[:], wantChecksum) {
		return nil, tvcerr.New("bundle.Decode", tvcerr.KindCorruptObject)
	}

	r := bytes.NewReader(payload)
	b := &Bundle{}

	objCount, err := readUint32(r)
	if err != nil {
		return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
	}
	for i := uint32(0); i < objCount; i++ {
		hashBuf := make([]byte, 40)
		if _, err := io.ReadFull(r, hashBuf); err != nil {
			return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
		}
		size, err := readUint32(r)
		if err != nil {
			return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
		}
		compressed := make([]byte, size)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
		}
		b.Objects = append(b.Objects, ObjectEntry{Hash: objectenc.ObjHash(hashBuf), Compressed: compressed})
	}

	branchCount, err := readUint32(r)
	if err != nil {
		return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
	}
	for i := uint32(0); i < branchCount; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
		}
		headBuf := make([]byte, 40)
		if _, err := io.ReadFull(r, headBuf); err != nil {
			return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
		}
		traceBuf := make([]byte, 40)
		if _, err := io.ReadFull(r, traceBuf); err != nil {
			return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
		}
		b.Branches = append(b.Branches, BranchEntry{
			Name:  name,
			Head:  objectenc.ObjHash(headBuf),
			Trace: objectenc.ObjHash(traceBuf),
		})
	}

	traceCount, err := readUint32(r)
	if err != nil {
		return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
	}
	for i := uint32(0); i < traceCount; i++ {
		commitBuf := make([]byte, 40)
		if _, err := io.ReadFull(r, commitBuf); err != nil {
			return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
		}
		treeBuf := make([]byte, 40)
		if _, err := io.ReadFull(r, treeBuf); err != nil {
			return nil, tvcerr.Wrap("bundle.Decode", tvcerr.KindCorruptObject, err)
		}
		b.Traces = append(b.Traces, TraceEntry{
			CommitHash: objectenc.ObjHash(commitBuf),
			TreeHash:   objectenc.ObjHash(treeBuf),
		})
	}

	return b, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeString(buf *bytes.Buffer, s string) {
	b := []byte(s)
	writeUint32(buf, uint32(len(b)))
	buf.Write(b)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, b); err != nil {
			return "", fmt.Errorf("read string body: %w", err)
		}
	}
	return string(b), nil
}
