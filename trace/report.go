package trace

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/tuneinsight/nttgen/addrgen"
	"github.com/tuneinsight/nttgen/utils"
)

// LaneStats aggregates the absolute tick-to-tick stride of one twiddle lane.
type LaneStats struct {
	Mean   float64
	Median float64
	Max    float64
}

// Report summarizes a recorded trace: enabled cycles and distinct natural
// addresses per stage pair, and the stride statistics of each twiddle lane.
type Report struct {
	Mode        addrgen.Mode
	Mapping     addrgen.Mapping
	Cycles      int
	StageCycles map[int]int
	StageAddrs  map[int]int
	Lanes       [addrgen.Lanes]LaneStats
}

// NewReport scans t and aggregates its schedule statistics.
func NewReport(t *Trace) (*Report, error) {

	r := &Report{
		Mode:        t.Mode,
		Mapping:     t.Mapping,
		Cycles:      len(t.Samples),
		StageCycles: make(map[int]int),
		StageAddrs:  make(map[int]int),
	}

	seen := make(map[int]map[uint8]bool)
	for _, s := range t.Samples {

		stage := 0
		if t.Mode.Transform() {
			stage = int(s.L)
		}

		r.StageCycles[stage]++

		if seen[stage] == nil {
			seen[stage] = make(map[uint8]bool)
		}
		seen[stage][s.RAMNat] = true
	}

	for stage, addrs := range seen {
		r.StageAddrs[stage] = len(addrs)
	}

	if !t.Mode.Transform() || len(t.Samples) < 2 {
		return r, nil
	}

	for lane := 0; lane < addrgen.Lanes; lane++ {

		strides := make([]float64, len(t.Samples)-1)
		for i := 1; i < len(t.Samples); i++ {
			d := int(t.Samples[i].Twiddle[lane]) - int(t.Samples[i-1].Twiddle[lane])
			if d < 0 {
				d = -d
			}
			strides[i-1] = float64(d)
		}

		var ls LaneStats
		var err error

		if ls.Mean, err = stats.Mean(strides); err != nil {
			return nil, fmt.Errorf("stats.Mean: %w", err)
		}

		if ls.Median, err = stats.Median(strides); err != nil {
			return nil, fmt.Errorf("stats.Median: %w", err)
		}

		if ls.Max, err = stats.Max(strides); err != nil {
			return nil, fmt.Errorf("stats.Max: %w", err)
		}

		r.Lanes[lane] = ls
	}

	return r, nil
}

// String renders the report with the stage pairs in increasing order.
func (r *Report) String() string {

	var sb strings.Builder

	fmt.Fprintf(&sb, "mode=%s mapping=%s cycles=%d\n", r.Mode, r.Mapping, r.Cycles)

	for _, stage := range utils.GetSortedKeys(r.StageCycles) {
		fmt.Fprintf(&sb, "stages %d-%d: cycles=%d addresses=%d\n", stage, stage+1, r.StageCycles[stage], r.StageAddrs[stage])
	}

	if r.Mode.Transform() {
		for lane, ls := range r.Lanes {
			fmt.Fprintf(&sb, "lane %d: stride mean=%.2f median=%.1f max=%.0f\n", lane, ls.Mean, ls.Median, ls.Max)
		}
	}

	return sb.String()
}
