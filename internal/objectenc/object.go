// Package objectenc implements the four TVC object kinds (spec.md §3): a
// closed tagged sum with a fixed ASCII header per kind, encode/decode pairs,
// and the SHA-1 content hash computed over the encoded (pre-compression)
// bytes. The binary framing style — length-prefixed strings via
// encoding/binary — follows the teacher's internal/objects/commit.go.
package objectenc

import (
	"crypto/sha1"
	"encoding/hex"
)

// ObjHash is the 40-character lowercase hex SHA-1 of an object's encoded
// bytes.
type ObjHash string

// NullCommitHash is the sentinel HEAD value for a branch that has never
// committed. It is never an ancestor of any real commit.
const NullCommitHash ObjHash = "0000000000000000000000000000000000000000"

// Hash computes the content hash of already-encoded object bytes.
func Hash(encoded []byte) ObjHash {
	sum := sha1.Sum(encoded)
	return ObjHash(hex.EncodeToString(sum[:]))
}

func (h ObjHash) String() string { return string(h) }

// IsNull reports whether h is the null commit sentinel.
func (h ObjHash) IsNull() bool { return h == NullCommitHash || h == "" }

// EmptyTreeHash is the content hash of the empty tree — the TRACE value of
// a freshly initialized branch, whose HEAD is NullCommitHash (design notes:
// "[the null commit's] tree is the empty tree").
var EmptyTreeHash = func() ObjHash {
	encoded, err := (&Tree{}).Encode()
	if err != nil {
		panic(err)
	}
	return Hash(encoded)
}()

// Kind tags which of the four object variants an Object is, enabling an
// exhaustive switch at decode time instead of open-ended dynamic dispatch
// (per the design notes: "a closed tagged variant with exhaustive match").
type Kind int

const (
	KindFile Kind = iota
	KindDelete
	KindTree
	KindCommit
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "FILE"
	case KindDelete:
		return "DELETE"
	case KindTree:
		return "TREE"
	case KindCommit:
		return "COMMIT"
	default:
		return "UNKNOWN"
	}
}

// Object is implemented by File, Delete, Tree and Commit. Encode returns
// the full header+payload bytes whose SHA-1 is the object's hash.
type Object interface {
	Kind() Kind
	Encode() ([]byte, error)
}

// HashOf encodes obj and returns its content hash.
func HashOf(obj Object) (ObjHash, error) {
	data, err := obj.Encode()
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
