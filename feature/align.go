package feature

import "slices"

// alignAlgo implements the global-alignment distance: a Needleman-Wunsch
// dynamic program over the two ordered point sequences, with similarity
// normalized into [0,1] as 1 - sim/maxSim, maxSim = max(n,m)*MaxCost.
//
// The boundary row and column are initialized to 0 rather than cumulative
// gap penalties, giving the local-similarity-flavored variant: leading
// gaps are free.
//
// When either operand has no established sort dimension the algorithm
// runs the alignment independently on X-sorted and Y-sorted copies and
// averages the two similarities. This replaces true 2-D alignment with
// two 1-D approximations; it is a deliberate simplification, not a bug.
type alignAlgo struct {
	sc Scoring
}

func (a *alignAlgo) max() float32 { return 1 }

func (a *alignAlgo) distance(x, y *Set, _ float32) (float32, error) {
	if err := a.sc.validate(); err != nil {
		return 0, err
	}
	px, py := x.points, y.points
	if len(px) == 0 && len(py) == 0 {
		return 0, nil
	}
	if len(px) == 0 || len(py) == 0 {
		return 1, nil
	}

	var sim float32
	if x.order != DimNone && y.order != DimNone {
		sim = needlemanWunsch(px, py, a.sc)
	} else {
		simX := needlemanWunsch(sortedBy(px, DimX), sortedBy(py, DimX), a.sc)
		simY := needlemanWunsch(sortedBy(px, DimY), sortedBy(py, DimY), a.sc)
		sim = (simX + simY) / 2
	}
	if sim < 0 {
		sim = 0
	}
	maxSim := float32(max(len(px), len(py))) * a.sc.MaxCost
	return 1 - sim/maxSim, nil
}

func sortedBy(points []Point, d Dim) []Point {
	out := slices.Clone(points)
	slices.SortStableFunc(out, func(p, q Point) int {
		pc, qc := d.coord(p), d.coord(q)
		switch {
		case pc < qc:
			return -1
		case pc > qc:
			return 1
		default:
			return 0
		}
	})
	return out
}

// needlemanWunsch returns the global alignment similarity of the two
// point sequences. Two rolling rows keep the space linear; the recurrence
// is the classic 3-way max of vertical gap, horizontal gap and diagonal
// match.
func needlemanWunsch(pa, pb []Point, sc Scoring) float32 {
	m := len(pb)
	prev := make([]float32, m+1)
	cur := make([]float32, m+1)
	for i := 1; i <= len(pa); i++ {
		cur[0] = 0
		for j := 1; j <= m; j++ {
			best := prev[j] - sc.GapPenalty
			if v := cur[j-1] - sc.GapPenalty; v > best {
				best = v
			}
			if v := prev[j-1] + sc.Match(pa[i-1], pb[j-1]); v > best {
				best = v
			}
			cur[j] = best
		}
		prev, cur = cur, prev
	}
	return prev[m]
}
