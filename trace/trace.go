// Package trace records the cycle-accurate behavior of an address unit:
// per-tick samples of the resolved memory addresses, twiddle lanes and
// pulses, with binary serialization, fingerprinting and schedule statistics.
package trace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"

	"github.com/tuneinsight/nttgen/addrgen"
	"github.com/tuneinsight/nttgen/utils/buffer"
)

const sampleBinarySize = 12

// Sample records one enabled tick of an address unit: the resolved RAM
// addresses, the four twiddle lanes, the pulse flags and the counters the
// unit held while driving them.
type Sample struct {
	RAMAddr    uint8
	RAMNat     uint8
	Twiddle    [addrgen.Lanes]uint8
	J, K, I, L uint8
	RoundDone  bool
	Done       bool
}

func (s Sample) pack() (p [sampleBinarySize]byte) {
	p[0] = s.RAMAddr
	p[1] = s.RAMNat
	copy(p[2:6], s.Twiddle[:])
	p[6], p[7], p[8], p[9] = s.J, s.K, s.I, s.L
	if s.RoundDone {
		p[10] = 1
	}
	if s.Done {
		p[11] = 1
	}
	return
}

func (s *Sample) unpack(p [sampleBinarySize]byte) {
	s.RAMAddr = p[0]
	s.RAMNat = p[1]
	copy(s.Twiddle[:], p[2:6])
	s.J, s.K, s.I, s.L = p[6], p[7], p[8], p[9]
	s.RoundDone = p[10] == 1
	s.Done = p[11] == 1
}

// Trace is a recorded run of an address unit.
type Trace struct {
	Mode    addrgen.Mode
	Mapping addrgen.Mapping
	Samples []Sample
}

// Equal performs a deep equal.
func (t *Trace) Equal(other *Trace) bool {
	return cmp.Equal(*t, *other)
}

// BinarySize returns the serialized size of the object in bytes.
func (t *Trace) BinarySize() int {
	return 2 + 8 + len(t.Samples)*sampleBinarySize
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the buffer.Writer interface, it will be wrapped into
// a bufio.Writer. Since this requires allocations, it is preferable to pass
// a buffer.Writer directly:
//
//   - When writing multiple times to a io.Writer, it is preferable to first wrap the
//     io.Writer in a pre-allocated bufio.Writer.
//   - When writing to a pre-allocated var b []byte, it is preferable to pass
//     buffer.NewBuffer(b) as w.
func (t *Trace) WriteTo(w io.Writer) (n int64, err error) {

	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteUint8(w, uint8(t.Mode)); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint8: %w", err)
		}

		n += inc

		if inc, err = buffer.WriteUint8(w, uint8(t.Mapping)); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint8: %w", err)
		}

		n += inc

		if inc, err = buffer.WriteUint64(w, uint64(len(t.Samples))); err != nil {
			return n + inc, fmt.Errorf("buffer.WriteUint64: %w", err)
		}

		n += inc

		for i := range t.Samples {
			p := t.Samples[i].pack()
			if inc, err = buffer.WriteUint8Slice(w, p[:]); err != nil {
				return n + inc, fmt.Errorf("buffer.WriteUint8Slice: %w", err)
			}

			n += inc
		}

		return n, w.Flush()

	default:
		return t.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Writer. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface, it will be wrapped into
// a bufio.Reader. Since this requires allocation, it is preferable to pass
// a buffer.Reader directly:
//
//   - When reading multiple values from a io.Reader, it is preferable to
//     first wrap the io.Reader in a pre-allocated bufio.Reader.
//   - When reading from a var b []byte, it is preferable to pass
//     buffer.NewBuffer(b) as r.
func (t *Trace) ReadFrom(r io.Reader) (n int64, err error) {

	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var mode, mapping uint8

		if inc, err = buffer.ReadUint8(r, &mode); err != nil {
			return n + inc, fmt.Errorf("buffer.ReadUint8: %w", err)
		}

		n += inc

		if inc, err = buffer.ReadUint8(r, &mapping); err != nil {
			return n + inc, fmt.Errorf("buffer.ReadUint8: %w", err)
		}

		n += inc

		t.Mode = addrgen.Mode(mode)
		t.Mapping = addrgen.Mapping(mapping)

		var size uint64
		if inc, err = buffer.ReadUint64(r, &size); err != nil {
			return n + inc, fmt.Errorf("buffer.ReadUint64: %w", err)
		}

		n += inc

		if cap(t.Samples) < int(size) {
			t.Samples = make([]Sample, size)
		}

		t.Samples = t.Samples[:size]

		var p [sampleBinarySize]byte
		for i := range t.Samples {
			if inc, err = buffer.ReadUint8Slice(r, p[:]); err != nil {
				return n + inc, fmt.Errorf("buffer.ReadUint8Slice: %w", err)
			}

			n += inc

			t.Samples[i].unpack(p)
		}

		return n, nil

	default:
		return t.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated
// slice of bytes.
func (t *Trace) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(t.BinarySize())
	_, err = t.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary or
// WriteTo on the object.
func (t *Trace) UnmarshalBinary(p []byte) (err error) {
	_, err = t.ReadFrom(buffer.NewBuffer(p))
	return
}
