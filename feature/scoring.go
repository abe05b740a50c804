package feature

import (
	"fmt"
	"math"
)

// DistanceFunc is a per-point dissimilarity used by the greedy matcher.
type DistanceFunc func(p, q Point) float32

// SpatialDistance is the Euclidean distance between the normalized
// positions of two points. It is the greedy matcher's default.
func SpatialDistance(p, q Point) float32 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return float32(math.Sqrt(dx*dx + dy*dy))
}

// KeyDistance is 0 when the points share a quantization key and 1
// otherwise.
func KeyDistance(p, q Point) float32 {
	if p.SharesKey(q) {
		return 0
	}
	return 1
}

// MatchFunc scores the alignment of two points: positive for a match,
// negative for a mismatch.
type MatchFunc func(p, q Point) float32

// Scoring configures the alignment algorithms. MaxCost must be the
// largest value Match can return; it normalizes similarities into
// distances. GapPenalty is subtracted for every skipped point.
type Scoring struct {
	Match      MatchFunc
	MaxCost    float32
	GapPenalty float32
}

// validate rejects configurations that would divide by zero when
// normalizing a similarity into a distance.
func (sc Scoring) validate() error {
	if sc.Match == nil {
		return fmt.Errorf("alignment scoring needs a match function")
	}
	if sc.MaxCost <= 0 {
		return fmt.Errorf("alignment scoring needs a positive max match cost, got %g", sc.MaxCost)
	}
	return nil
}

// KeyScoring aligns points on shared quantization keys: +1 for a shared
// key, -1 otherwise, gap penalty 0.5. It is the alignment default.
func KeyScoring() Scoring {
	return Scoring{
		Match: func(p, q Point) float32 {
			if p.SharesKey(q) {
				return 1
			}
			return -1
		},
		MaxCost:    1,
		GapPenalty: 0.5,
	}
}
