package objectenc

import (
	"bytes"
	"fmt"
)

// Commit references one tree and zero-to-two parent commits. Header:
// "COMMIT\0". Field order mirrors the teacher's internal/objects/commit.go
// serialize() layout, generalized to the spec's branch/message/committed
// fields (no separate author/committer — a commit is attributed to the
// branch it was made on, per spec.md §4.5).
type Commit struct {
	Branch        string
	Message       string
	Tree          ObjHash
	CommittedUnix int64
	Parents       []ObjHash // 0, 1 (normal commit) or 2 (merge commit)
}

var commitHeader = []byte("COMMIT\x00")

func (c *Commit) Kind() Kind { return KindCommit }

func (c *Commit) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(commitHeader)
	writeString(&buf, c.Branch)
	writeString(&buf, c.Message)
	buf.Write([]byte(c.Tree))
	writeInt64(&buf, c.CommittedUnix)
	writeUint32(&buf, uint32(len(c.Parents)))
	for _, p := range c.Parents {
		buf.Write([]byte(p))
	}
	return buf.Bytes(), nil
}

func decodeCommit(payload []byte) (*Commit, error) {
	r := bytes.NewReader(payload)
	branch, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("decode commit branch: %w", err)
	}
	message, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("decode commit message: %w", err)
	}
	treeBuf := make([]byte, 40)
	if _, err := readFull(r, treeBuf); err != nil {
		return nil, fmt.Errorf("decode commit tree: %w", err)
	}
	ts, err := readInt64(r)
	if err != nil {
		return nil, fmt.Errorf("decode commit timestamp: %w", err)
	}
	parentCount, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("decode commit parent count: %w", err)
	}
	if parentCount > 2 {
		return nil, fmt.Errorf("decode commit: %d parents exceeds maximum of 2", parentCount)
	}
	parents := make([]ObjHash, 0, parentCount)
	for i := uint32(0); i < parentCount; i++ {
		pBuf := make([]byte, 40)
		if _, err := readFull(r, pBuf); err != nil {
			return nil, fmt.Errorf("decode commit parent %d: %w", i, err)
		}
		parents = append(parents, ObjHash(pBuf))
	}
	return &Commit{
		Branch:        branch,
		Message:       message,
		Tree:          ObjHash(treeBuf),
		CommittedUnix: ts,
		Parents:       parents,
	}, nil
}
