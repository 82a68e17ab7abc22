package addrgen

import "github.com/tuneinsight/nttgen/utils"

// twiddleResolver tracks the four twiddle table indices consumed by the
// butterfly lanes. The lane registers hold the values driven during the
// current tick; each enabled step computes the candidates for the next
// tick from the unit's current stage and offset, then commits them.
type twiddleResolver struct {

	// Registered lane indices, driven as twiddle_addr[1..4].
	lanes [Lanes]uint8

	// Per-lane bases snapshotted at the last stage boundary, used to
	// restore a lane to the start of its root block after a wrap.
	base [Lanes]uint8
}

// freshBases returns the stage-boundary lane values for the given
// transform mode and stage width.
//
// A forward stage of width s consumes the root blocks [2^s, 2^(s+1))
// on lanes 1-2 and [2^(s+1), 2^(s+2)) on lanes 3-4. An inverse stage
// walks the blocks downwards from their last entry, lanes 1-2 starting
// at N>>s - 1 and N>>s - 2 and lanes 3-4 both at N>>(s+1) - 1.
func freshBases(mode Mode, s int) (b [Lanes]uint8) {
	switch mode {
	case ForwardNTT:
		b[0] = uint8(1 << s)
		b[1] = uint8(1 << s)
		b[2] = uint8(2 << s)
		b[3] = uint8(2<<s + 1)
	case InverseNTT:
		b[0] = uint8(int(N)>>s - 1)
		b[1] = uint8(int(N)>>s - 2)
		b[2] = uint8(int(N)>>(s+1) - 1)
		b[3] = uint8(int(N)>>(s+1) - 1)
	}
	return
}

// seed loads the stage-boundary values into both the lane registers and
// the boundary snapshots.
func (tw *twiddleResolver) seed(mode Mode, s int) {
	b := freshBases(mode, s)
	tw.lanes = b
	tw.base = b
}

// step commits the next lane values for the current (mode, s, k) inputs.
// Pointwise modes define no candidates and leave the registers untouched.
func (tw *twiddleResolver) step(mode Mode, s, k int, lastStage bool) {

	switch mode {
	case ForwardNTT:

		// A stage starts at k == 0, except the final stage which is
		// entered exactly once and flagged by the unit.
		if (s < 6 && k == 0) || (s >= 6 && !lastStage) {
			tw.seed(mode, s)
			return
		}

		if s >= 6 {
			tw.lanes[0]++
			tw.lanes[1]++
			tw.lanes[2] += 2
			tw.lanes[3] += 2
			return
		}

		// Lanes 1-2 step by 1 within [0, 2^(s+1)) and lanes 3-4 by 2
		// within [0, 2^(s+2)); a wrap falls below the snapshot, which
		// then restores the block base.
		pairMask := uint8(2<<s - 1)
		quadMask := uint8(4<<s - 1)
		tw.lanes[0] = utils.Max(tw.base[0], (tw.lanes[0]+1)&pairMask)
		tw.lanes[1] = utils.Max(tw.base[1], (tw.lanes[1]+1)&pairMask)
		tw.lanes[2] = utils.Max(tw.base[2], (tw.lanes[2]+2)&quadMask)
		tw.lanes[3] = utils.Max(tw.base[3], (tw.lanes[3]+2)&quadMask)

	case InverseNTT:

		if k == 0 {
			tw.seed(mode, s)
			return
		}

		tw.lanes[0] -= 2
		tw.lanes[1] -= 2
		tw.lanes[2]--
		tw.lanes[3]--
	}
}

// reset reseeds the lanes and the snapshots from the stage-boundary
// values of the given mode at stage zero, never to zero or stale state.
// Pointwise modes hold the registers.
func (tw *twiddleResolver) reset(mode Mode) {
	if mode.Transform() {
		tw.seed(mode, 0)
	}
}
