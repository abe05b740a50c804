package feature

// greedyAlgo implements the bidirectional greedy nearest-match distance:
// for every point of one set, the distance to its nearest point in the
// other set (linear scan), summed over both directions and averaged.
//
// The outer loop exits early once the accumulated partial sum exceeds
// 2*threshold; since per-point minima are non-negative the partial sum
// only grows, so the truncated result (partial/2) is a lower bound of the
// true distance that already exceeds the threshold.
type greedyAlgo struct {
	dist DistanceFunc
}

func (g *greedyAlgo) max() float32 { return maxSetDistance }

func (g *greedyAlgo) distance(a, b *Set, threshold float32) (float32, error) {
	pa, pb := a.points, b.points
	if len(pa) == 0 && len(pb) == 0 {
		return 0, nil
	}
	if len(pa) == 0 || len(pb) == 0 {
		return maxSetDistance, nil
	}
	limit := 2 * threshold
	var sum float32
	for _, p := range pa {
		sum += g.nearest(p, pb)
		if sum > limit {
			return sum / 2, nil
		}
	}
	for _, q := range pb {
		sum += g.nearest(q, pa)
		if sum > limit {
			return sum / 2, nil
		}
	}
	return sum / 2, nil
}

func (g *greedyAlgo) nearest(p Point, others []Point) float32 {
	best := g.dist(p, others[0])
	for _, q := range others[1:] {
		if d := g.dist(p, q); d < best {
			best = d
		}
	}
	return best
}
