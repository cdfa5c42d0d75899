// Package compressio wraps the fixed compression codec objects are stored
// under (spec.md §3: "encoded objects are then compressed with gzip for
// storage"). It uses klauspost/compress's gzip, a drop-in replacement for
// compress/gzip adopted the same way grafana/nanogit, javanhut/Ivaldi-vcs
// and odvcencio/graft use it in their own object/pack encoders.
package compressio

import (
	"bytes"

	"github.com/klauspost/compress/gzip"
)

// Compress gzips data at the default compression level.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
