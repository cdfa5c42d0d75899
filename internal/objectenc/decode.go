package objectenc

import (
	"bytes"
	"fmt"
)

// Decode inspects the header prefix of encoded and dispatches to the
// matching variant's decoder — the closed tagged-sum match the design
// notes call for instead of open-ended dynamic dispatch.
func Decode(encoded []byte) (Object, error) {
	switch {
	case bytes.HasPrefix(encoded, fileHeader):
		return decodeFile(encoded[len(fileHeader):])
	case bytes.HasPrefix(encoded, deleteHeader):
		return decodeDelete(encoded[len(deleteHeader):])
	case bytes.HasPrefix(encoded, treeHeader):
		return decodeTree(encoded[len(treeHeader):])
	case bytes.HasPrefix(encoded, commitHeader):
		return decodeCommit(encoded[len(commitHeader):])
	default:
		return nil, fmt.Errorf("decode object: unrecognized header")
	}
}

// KindOf returns the Kind encoded's header declares, without fully
// decoding the payload.
func KindOf(encoded []byte) (Kind, bool) {
	switch {
	case bytes.HasPrefix(encoded, fileHeader):
		return KindFile, true
	case bytes.HasPrefix(encoded, deleteHeader):
		return KindDelete, true
	case bytes.HasPrefix(encoded, treeHeader):
		return KindTree, true
	case bytes.HasPrefix(encoded, commitHeader):
		return KindCommit, true
	default:
		return 0, false
	}
}
