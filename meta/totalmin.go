package meta

import (
	"fmt"

	"github.com/hupe1980/simspace/metric"
)

// totalMinAgg reports the minimum normalized sub-distance over all
// (i, j) pairs of sub-objects whose kinds agree, regardless of slot
// names. Distances are normalized by each sub-object's MaxDistance so
// descriptors with different scales compete fairly; sub-objects with an
// unbounded metric normalize to ~0 and effectively dominate, so total-min
// composites should hold bounded-metric descriptors.
//
// When no compatible pair exists the aggregate's own maximum distance 1
// is returned.
type totalMinAgg struct{}

func (totalMinAgg) max(*Object) float32 { return 1 }

func (totalMinAgg) distance(a, b *Object, out []float32, _ float32) (float32, error) {
	if out != nil {
		for i := range out {
			out[i] = UnknownDistance
		}
	}
	best := float32(1)
	found := false
	for i, sa := range a.subs {
		if sa == nil {
			continue
		}
		for _, sb := range b.subs {
			if sb == nil || sb.Kind() != sa.Kind() {
				continue
			}
			found = true
			subMax := sa.MaxDistance()
			// The current best, denormalized, is a valid pruning bound
			// for the pair: anything at or above it cannot improve.
			subThreshold := metric.Unbounded
			if subMax < metric.Unbounded {
				subThreshold = best * subMax
			}
			d, err := sa.Distance(sb, subThreshold)
			if err != nil {
				return 0, fmt.Errorf("descriptor %q: %w", a.schema.Slot(i).Name, err)
			}
			nd := d
			if subMax > 0 {
				nd = d / subMax
			}
			if nd < best {
				best = nd
				if out != nil {
					out[i] = d
				}
			}
		}
	}
	if !found {
		return 1, nil
	}
	return best, nil
}
