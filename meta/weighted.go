package meta

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/simspace/object"
)

// Weights assigns one weight per descriptor slot of a weighted-sum
// composite. A weight <= 0 means "skip this descriptor entirely": the
// sub-distance is never computed, which lets callers holding expensive
// descriptors avoid the work rather than multiplying it by zero.
type Weights []float32

// Skip reports whether slot i is excluded from the aggregate.
func (w Weights) Skip(i int) bool { return w[i] <= 0 }

// Skipped returns the indices of all excluded slots, letting upstream
// code omit loading or computing those descriptors altogether.
func (w Weights) Skipped() []int {
	var out []int
	for i := range w {
		if w.Skip(i) {
			out = append(out, i)
		}
	}
	return out
}

// MaxDistance returns 1 + the sum of the effective weights. Every
// per-slot distance term is weight * subDistance with both factors
// non-negative, so the sum of weights bounds the aggregate of normalized
// sub-distances; the extra 1 is a safety margin against float round-off
// in downstream pruning.
func (w Weights) MaxDistance() float32 {
	m := float32(1)
	for i, v := range w {
		if !w.Skip(i) {
			m += v
		}
	}
	return m
}

const metaWeights = "weights"

func (w Weights) writeMeta(out io.Writer) error {
	fields := make([]string, len(w))
	for i, v := range w {
		fields[i] = object.FormatFloat32(v)
	}
	_, err := fmt.Fprintf(out, "#%s %s\n", metaWeights, strings.Join(fields, ", "))
	return err
}

func parseWeightsMeta(s string, slots int) (Weights, error) {
	if s == "" {
		// No weight metadata: every slot participates with weight 1.
		w := make(Weights, slots)
		for i := range w {
			w[i] = 1
		}
		return w, nil
	}
	fields := object.SplitFields(s)
	w := make(Weights, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", f, err)
		}
		w[i] = float32(v)
	}
	if len(w) != slots {
		return nil, fmt.Errorf("weight count %d does not match slot count %d", len(w), slots)
	}
	return w, nil
}

// weightedAgg sums weight[i] * subDistance(i) over the slots where both
// operands hold a sub-object, the kinds agree and the weight is positive.
//
// Early termination: every term is non-negative, so the running sum only
// grows; once it exceeds the threshold it is returned as-is. The
// truncated value is a lower bound of the true aggregate and already
// exceeds the threshold, so pruning on it is sound. The remaining
// threshold budget is forwarded to each sub-distance (scaled by the
// slot's weight), letting sub-objects prune recursively.
type weightedAgg struct {
	weights Weights
}

func (agg *weightedAgg) max(*Object) float32 { return agg.weights.MaxDistance() }

func (agg *weightedAgg) distance(a, b *Object, out []float32, threshold float32) (float32, error) {
	if out != nil {
		for i := range out {
			out[i] = UnknownDistance
		}
	}
	var sum float32
	for i := range a.schema.Len() {
		if agg.weights.Skip(i) {
			continue
		}
		sa := a.subs[i]
		if sa == nil {
			continue
		}
		slot := a.schema.Slot(i)
		j, ok := b.schema.Index(slot.Name)
		if !ok {
			continue
		}
		sb := b.subs[j]
		if sb == nil || sb.Kind() != sa.Kind() {
			// Absent or incompatible descriptors are skipped, not errors:
			// comparing against a superset composite is routine.
			continue
		}
		weight := agg.weights[i]
		d, err := sa.Distance(sb, (threshold-sum)/weight)
		if err != nil {
			return 0, fmt.Errorf("descriptor %q: %w", slot.Name, err)
		}
		if out != nil {
			out[i] = d
		}
		sum += weight * d
		if sum > threshold {
			return sum, nil
		}
	}
	return sum, nil
}
