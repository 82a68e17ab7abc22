// Package addrgen implements the address and twiddle-index sequencing
// of an in-place iterative 256-point number-theoretic transform with a
// four-coefficient datapath. An AddressUnit is stepped one logical tick
// at a time and drives the physical and natural addresses of the memory
// word to access, four parallel twiddle table indices, and the round and
// pass completion pulses. Two binary transform stages are merged per
// round, so a full transform pass runs four 64-tick rounds over the
// 64-word coefficient memory.
package addrgen

import "errors"

const (
	// LogN is the log2 of the transform size the unit sequences.
	LogN = 8

	// N is the transform size, and the size of the twiddle index space.
	N = 1 << LogN

	// Lanes is the number of butterfly lanes served per tick.
	Lanes = 4

	// Words is the number of addressable coefficient memory words.
	Words = N / Lanes

	wordMask = Words - 1
)

// ErrInvalidMode is returned by Step when the mode input is not one of
// the defined operating modes.
var ErrInvalidMode = errors.New("addrgen: invalid mode")

// fwdStride maps the stage pair selector l>>1 to the log2 of the
// per-tick butterfly offset stride of a forward pass. The first and the
// last stage pair share the stride 16.
var fwdStride = [4]int{4, 2, 0, 4}

// Input carries the control wires sampled by the unit on one tick.
type Input struct {

	// Reset synchronously reinitializes the unit for Mode, overriding
	// Enable. The outputs of a reset tick reflect the reinitialized
	// state.
	Reset bool

	// Enable advances the unit by one step. A disabled tick observes
	// the outputs without changing any state.
	Enable bool

	// Mode selects the sequence to generate.
	Mode Mode

	// Mapping selects the physical address permutation.
	Mapping Mapping
}

// Output carries the values the unit drives during one tick. Addresses
// and indices are stable for exactly one tick per assertion.
type Output struct {

	// RAMAddr is the six-bit physical storage address.
	RAMAddr uint8

	// RAMNat is the natural-order counterpart of RAMAddr, resolved with
	// the opposite mapping.
	RAMNat uint8

	// TwiddleAddr holds the four eight-bit twiddle table indices, one
	// per butterfly lane.
	TwiddleAddr [Lanes]uint8

	// RoundDone pulses for one tick at the end of each merged stage
	// pair of a transform pass.
	RoundDone bool

	// Done pulses for one tick at the end of a pass.
	Done bool
}

// State is a snapshot of the unit's counter registers.
type State struct {
	J    int  // outer group index
	K    int  // intra-stage butterfly offset
	I    int  // round iteration counter
	L    int  // merged stage pair index, one of {0, 2, 4, 6}
	Done bool // terminal latch of a transform pass
}

// AddressUnit is the top-level sequencing state machine. A fresh unit
// holds the all-zero state; assert Input.Reset on the first tick to
// seed it for a mode. The unit is not safe for concurrent use.
type AddressUnit struct {
	j, k, i, l int
	done       bool
	lastStage  bool
	tw         twiddleResolver
}

// NewAddressUnit returns a fresh address unit.
func NewAddressUnit() *AddressUnit {
	return &AddressUnit{}
}

// State returns a snapshot of the unit's counters.
func (u *AddressUnit) State() State {
	return State{J: u.j, K: u.k, I: u.i, L: u.l, Done: u.done}
}

// Step advances the unit by one tick and returns the outputs driven
// during that tick. The outputs are derived from the state as of the
// beginning of the tick; state committed by an enabled tick becomes
// visible on the next one. An invalid mode leaves the unit untouched
// and returns ErrInvalidMode.
func (u *AddressUnit) Step(in Input) (out Output, err error) {

	if !in.Mode.IsValid() {
		return Output{}, ErrInvalidMode
	}

	if in.Reset {
		u.reset(in.Mode)
		return u.output(in, false), nil
	}

	out = u.output(in, in.Enable)

	if in.Enable {
		u.advance(in.Mode)
	}

	return out, nil
}

// reset synchronously reinitializes the counters for the given mode.
// The round iteration seeds to 1 for an inverse pass and 0 otherwise,
// and the twiddle lanes reseed from their stage-zero boundary values.
func (u *AddressUnit) reset(mode Mode) {
	u.j, u.k, u.l = 0, 0, 0
	if mode == InverseNTT {
		u.i = 1
	} else {
		u.i = 0
	}
	u.done = false
	u.lastStage = false
	u.tw.reset(mode)
}

// addri derives the natural transform index for the current state.
func (u *AddressUnit) addri(mode Mode) uint8 {
	if mode.Pointwise() {
		return uint8(u.j)
	}
	return uint8(u.j+u.k) & wordMask
}

// output assembles the values driven during the current tick. Pulses
// are gated by enable and, for transform modes, by the done latch.
func (u *AddressUnit) output(in Input, enable bool) (out Output) {

	addri := u.addri(in.Mode)

	out.RAMAddr = Resolve(in.Mapping, addri)
	out.RAMNat = Resolve(in.Mapping.Opposite(), addri)
	out.TwiddleAddr = u.tw.lanes

	if enable {
		if in.Mode.Pointwise() {
			out.Done = u.j == Words-1
		} else if !u.done && u.i == Words-1 {
			out.RoundDone = true
			out.Done = u.l == 6
		}
	}

	return
}

// kNext computes the candidate butterfly offset for the next tick.
func (u *AddressUnit) kNext(mode Mode) int {
	if mode == InverseNTT {
		return u.k + 1<<u.l
	}
	return u.k + 1<<fwdStride[u.l>>1]
}

// advance commits one enabled step.
func (u *AddressUnit) advance(mode Mode) {

	// The twiddle lanes register their next values on the same edge as
	// the counters, from the pre-update stage and offset. Once a
	// transform pass is done they hold until reset.
	if mode.Transform() && !u.done {
		u.tw.step(mode, u.l, u.k, u.lastStage)
	}

	switch {
	case mode.Pointwise():
		// The group index free-runs; done pulses again at every wrap.
		u.j = (u.j + 1) & wordMask
		u.k = 0

	case u.done:
		// Terminal state: a forward pass keeps incrementing the group
		// index, an inverse pass holds everything.
		if mode == ForwardNTT {
			u.j = (u.j + 1) & wordMask
		}

	default:
		u.advanceTransform(mode)
	}
}

// advanceTransform commits one enabled step of a running transform pass.
func (u *AddressUnit) advanceTransform(mode Mode) {

	iZero := u.i == 0
	lPre := u.l
	final := u.i == Words-1 && u.l == 6

	// Shared offset/group progression. On the final round boundary the
	// offset register holds; the group index still follows its own rule.
	if kn := u.kNext(mode); kn < Words {
		if !final {
			u.k = kn
		}
	} else {
		if !final {
			u.k = 0
		}
		u.j = (u.j + 1) & wordMask
	}

	// Round boundary: the iteration counter wraps, a forward pass
	// rewinds the group index, and the stage pair either advances or,
	// on the final pair, latches done with the offset and stage held.
	if u.i == Words-1 {
		u.i = 0
		if mode == ForwardNTT {
			u.j = 0
		}
		if u.l == 6 {
			u.done = true
		} else {
			u.l += 2
		}
	} else {
		u.i++
	}

	// An inverse pass resynchronizes one tick after each round
	// boundary: the tick with pre-increment i == 0 still sequences the
	// final offset of the previous round, then clears for the new one.
	if mode == InverseNTT && iZero {
		u.j = 0
		u.k = 0
	}

	// The final forward stage loads its twiddle bases exactly once, on
	// the first step taken at l == 6.
	if mode == ForwardNTT && lPre == 6 {
		u.lastStage = true
	}
}
