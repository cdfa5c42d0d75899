// Package clock provides an injectable source of "now" so commit and merge
// timestamps are reproducible in tests, mirroring the now/time modules of
// the crate this engine was distilled from.
package clock

import "time"

// Source returns the current Unix time in seconds. Engines default to
// time.Now().Unix but accept an override for deterministic tests.
type Source func() int64

// Real is the production clock.
func Real() int64 {
	return time.Now().Unix()
}
