package objectenc

import "fmt"

// Delete records that a previously-staged object at some path was removed;
// it carries the hash of the object it replaces. Header: "DELETE\0".
type Delete struct {
	Removed ObjHash
}

var deleteHeader = []byte("DELETE\x00")

func (d *Delete) Kind() Kind { return KindDelete }

func (d *Delete) Encode() ([]byte, error) {
	buf := make([]byte, 0, len(deleteHeader)+len(d.Removed))
	buf = append(buf, deleteHeader...)
	buf = append(buf, []byte(d.Removed)...)
	return buf, nil
}

func decodeDelete(payload []byte) (*Delete, error) {
	if len(payload) != 40 {
		return nil, fmt.Errorf("delete object: expected 40-byte hash payload, got %d", len(payload))
	}
	return &Delete{Removed: ObjHash(payload)}, nil
}
