package trace

import (
	"fmt"

	"github.com/zeebo/blake3"
)

// DigestSize is the size in bytes of a trace fingerprint.
const DigestSize = 32

// Digest returns the blake3 fingerprint of the serialized trace. The digest
// is a stable function of the mode, the mapping and the sample stream, so
// two recordings of the same schedule always share it.
func (t *Trace) Digest() (d [DigestSize]byte, err error) {

	h := blake3.New()

	if _, err = t.WriteTo(h); err != nil {
		return d, fmt.Errorf("trace.WriteTo: %w", err)
	}

	copy(d[:], h.Sum(nil))

	return
}
