// Package metric provides the dissimilarity functions attached to vector
// containers. A metric is a strategy value: the container holds the data,
// the metric computes the distance. This keeps the set of vector types at
// (element type) x (metric) without a concrete type per combination.
package metric

import (
	"errors"
	"math"

	"github.com/hupe1980/simspace/object"
)

// Number constrains the element types supported by dense vector metrics.
type Number interface {
	~uint8 | ~int16 | ~int32 | ~float32 | ~float64
}

// Func computes the dissimilarity between two equal-typed slices.
type Func[T Number] func(a, b []T) (float32, error)

// Metric bundles a distance function with its name and upper bound.
// Max is the smallest value guaranteed to be >= any distance the function
// can return; unbounded metrics report Unbounded.
type Metric[T Number] struct {
	Name     string
	Max      float32
	Distance Func[T]
}

// Unbounded is the Max of metrics with no finite distance bound.
const Unbounded = float32(math.MaxFloat32)

// ErrZeroVector is returned by the cosine metric when either operand has
// zero magnitude, where the distance is undefined.
var ErrZeroVector = errors.New("cosine distance undefined for zero-magnitude vector")

// All dense metrics share one dimensionality policy: comparing vectors of
// unequal length returns *object.ErrDimensionMismatch. Inputs are never
// silently truncated.
func checkDims[T Number](a, b []T) error {
	if len(a) != len(b) {
		return &object.ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
	}
	return nil
}

// L1 returns the city-block metric: the sum of absolute per-coordinate
// differences.
func L1[T Number]() Metric[T] {
	return Metric[T]{Name: "l1", Max: Unbounded, Distance: l1[T]}
}

func l1[T Number](a, b []T) (float32, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return float32(sum), nil
}

// L2 returns the Euclidean metric: the square root of the sum of squared
// per-coordinate differences.
func L2[T Number]() Metric[T] {
	return Metric[T]{Name: "l2", Max: Unbounded, Distance: l2[T]}
}

func l2[T Number](a, b []T) (float32, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum)), nil
}

// Cosine returns the angular metric 1 - |dot(a,b)| / (|a|*|b|).
// The distance is undefined for zero-magnitude operands and returns
// ErrZeroVector in that case rather than propagating a NaN.
func Cosine[T Number]() Metric[T] {
	return Metric[T]{Name: "cosine", Max: 1, Distance: cosine[T]}
}

func cosine[T Number](a, b []T) (float32, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var dot, na, nb float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0, ErrZeroVector
	}
	return float32(1 - math.Abs(dot)/(math.Sqrt(na)*math.Sqrt(nb))), nil
}

// Jaccard returns the set dissimilarity 1 - |intersection|/|union| over
// two ascending, duplicate-free int32 arrays. The sorted-unique invariant
// is the container's responsibility (enforced on construction); the
// distance itself is a single merge scan of both arrays, O(n+m) with no
// allocation. Operand lengths may differ: Jaccard is a set metric, not a
// coordinate metric.
//
// Edge cases: two empty sets have distance 0, exactly one empty set has
// distance 1.
func Jaccard() Metric[int32] {
	return Metric[int32]{Name: "jaccard", Max: 1, Distance: jaccard}
}

func jaccard(a, b []int32) (float32, error) {
	if len(a) == 0 && len(b) == 0 {
		return 0, nil
	}
	if len(a) == 0 || len(b) == 0 {
		return 1, nil
	}
	var inter, i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	union := len(a) + len(b) - inter
	return 1 - float32(inter)/float32(union), nil
}
