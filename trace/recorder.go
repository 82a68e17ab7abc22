package trace

import (
	"github.com/tuneinsight/nttgen/addrgen"
	"github.com/tuneinsight/nttgen/utils/sampling"
)

// Recorder drives an address unit and captures one Sample per enabled tick.
type Recorder struct {
	unit *addrgen.AddressUnit
}

// NewRecorder returns a Recorder backed by a fresh address unit.
func NewRecorder() *Recorder {
	return &Recorder{unit: addrgen.NewAddressUnit()}
}

// PassLength returns the number of enabled ticks a full pass of the given
// mode spans: the four rounds of a transform, or a single sweep of the
// memory for the pointwise modes.
func PassLength(mode addrgen.Mode) int {
	if mode.Transform() {
		return 4 * addrgen.Words
	}
	return addrgen.Words
}

// RecordPass resets the unit for the given mode and mapping and records one
// full pass.
func (rec *Recorder) RecordPass(mode addrgen.Mode, mapping addrgen.Mapping) (*Trace, error) {
	return rec.Record(mode, mapping, PassLength(mode))
}

// Record resets the unit and captures n consecutive enabled ticks.
func (rec *Recorder) Record(mode addrgen.Mode, mapping addrgen.Mapping, n int) (*Trace, error) {

	if _, err := rec.unit.Step(addrgen.Input{Reset: true, Mode: mode, Mapping: mapping}); err != nil {
		return nil, err
	}

	t := &Trace{Mode: mode, Mapping: mapping, Samples: make([]Sample, 0, n)}

	in := addrgen.Input{Enable: true, Mode: mode, Mapping: mapping}
	for len(t.Samples) < n {

		st := rec.unit.State()

		out, err := rec.unit.Step(in)
		if err != nil {
			return nil, err
		}

		t.Samples = append(t.Samples, newSample(out, st))
	}

	return t, nil
}

// RecordGated records like Record but gates the unit with an enable pattern
// drawn from prng. Disabled ticks freeze the unit and are not sampled, so
// the recorded trace is identical to the one Record produces.
func (rec *Recorder) RecordGated(mode addrgen.Mode, mapping addrgen.Mapping, n int, prng sampling.PRNG) (*Trace, error) {

	if _, err := rec.unit.Step(addrgen.Input{Reset: true, Mode: mode, Mapping: mapping}); err != nil {
		return nil, err
	}

	t := &Trace{Mode: mode, Mapping: mapping, Samples: make([]Sample, 0, n)}

	var bits [1]byte
	var left int
	for len(t.Samples) < n {

		if left == 0 {
			if _, err := prng.Read(bits[:]); err != nil {
				return nil, err
			}
			left = 8
		}

		enable := bits[0]&1 == 1
		bits[0] >>= 1
		left--

		st := rec.unit.State()

		out, err := rec.unit.Step(addrgen.Input{Enable: enable, Mode: mode, Mapping: mapping})
		if err != nil {
			return nil, err
		}

		if enable {
			t.Samples = append(t.Samples, newSample(out, st))
		}
	}

	return t, nil
}

// newSample captures the outputs of a tick together with the counters that
// drove them, which are the ones observed before the step commits.
func newSample(out addrgen.Output, st addrgen.State) Sample {
	return Sample{
		RAMAddr:   out.RAMAddr,
		RAMNat:    out.RAMNat,
		Twiddle:   out.TwiddleAddr,
		J:         uint8(st.J),
		K:         uint8(st.K),
		I:         uint8(st.I),
		L:         uint8(st.L),
		RoundDone: out.RoundDone,
		Done:      out.Done,
	}
}
