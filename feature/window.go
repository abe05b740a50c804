package feature

import "fmt"

// Window configures the sliding rectangular regions swept across the
// normalized [0,1)x[0,1) feature space. W and H are the window size,
// ShiftX and ShiftY the sweep step. A shift of 0 means a single window
// position on that axis and is only legal when the window size already
// covers the whole extent.
type Window struct {
	W, H           float32
	ShiftX, ShiftY float32
}

// FullExtent is the single window covering the whole normalized space.
var FullExtent = Window{W: 1, H: 1}

// Validate checks that the configuration covers the full extent.
func (w Window) Validate() error {
	if w.W <= 0 || w.H <= 0 {
		return fmt.Errorf("window size %gx%g must be positive", w.W, w.H)
	}
	if w.ShiftX < 0 || w.ShiftY < 0 {
		return fmt.Errorf("window shift %g/%g must be non-negative", w.ShiftX, w.ShiftY)
	}
	if w.ShiftX == 0 && w.W < 1 {
		return fmt.Errorf("window width %g with shift 0 does not cover the extent", w.W)
	}
	if w.ShiftY == 0 && w.H < 1 {
		return fmt.Errorf("window height %g with shift 0 does not cover the extent", w.H)
	}
	if w.ShiftX > w.W || w.ShiftY > w.H {
		return fmt.Errorf("window shift %g/%g exceeds window size %gx%g, leaving uncovered gaps", w.ShiftX, w.ShiftY, w.W, w.H)
	}
	return nil
}

type region struct {
	x0, y0, x1, y1 float32
}

func (r region) contains(p Point) bool {
	return p.X >= r.x0 && p.X < r.x1 && p.Y >= r.y0 && p.Y < r.y1
}

// regions enumerates the window positions left-to-right, top-to-bottom.
// Positions start at every multiple of the shift below 1, so overlapping
// windows cover the full extent.
func (w Window) regions() []region {
	xs := w.starts(w.ShiftX)
	ys := w.starts(w.ShiftY)
	regions := make([]region, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			regions = append(regions, region{x0: x, y0: y, x1: x + w.W, y1: y + w.H})
		}
	}
	return regions
}

func (w Window) starts(shift float32) []float32 {
	if shift == 0 {
		return []float32{0}
	}
	var out []float32
	for x := float32(0); x < 1; x += shift {
		out = append(out, x)
	}
	return out
}

// windowAlgo implements the windowed local-alignment distance: a
// Smith-Waterman similarity per window pair, with the minimum distance
// (maximum similarity) over all pairs reported as the result. Window
// pairs where either side is empty are skipped; if no pair remains the
// distance is the maximum 1.
type windowAlgo struct {
	sc Scoring
}

func (al *windowAlgo) max() float32 { return 1 }

func (al *windowAlgo) distance(a, b *Set, _ float32) (float32, error) {
	if err := al.sc.validate(); err != nil {
		return 0, err
	}
	awins, err := a.Windows(a.window)
	if err != nil {
		return 0, err
	}

	// Materialize the right operand's windows once; they are scanned per
	// left window. The receiver's window configuration governs both sides.
	bseq, err := b.Windows(a.window)
	if err != nil {
		return 0, err
	}
	var bwins [][]Point
	for pts := range bseq {
		bwins = append(bwins, pts)
	}

	best := float32(1)
	for wa := range awins {
		if len(wa) == 0 {
			continue
		}
		for _, wb := range bwins {
			if len(wb) == 0 {
				continue
			}
			sim := smithWaterman(wa, wb, al.sc)
			maxSim := float32(max(len(wa), len(wb))) * al.sc.MaxCost
			d := 1 - sim/maxSim
			if d < best {
				best = d
			}
		}
	}
	return best, nil
}

// smithWaterman returns the best local alignment similarity: the same
// recurrence as the global variant with the matrix floored at zero, and
// the maximum over all cells as the score.
func smithWaterman(pa, pb []Point, sc Scoring) float32 {
	m := len(pb)
	prev := make([]float32, m+1)
	cur := make([]float32, m+1)
	var best float32
	for i := 1; i <= len(pa); i++ {
		cur[0] = 0
		for j := 1; j <= m; j++ {
			v := prev[j] - sc.GapPenalty
			if h := cur[j-1] - sc.GapPenalty; h > v {
				v = h
			}
			if d := prev[j-1] + sc.Match(pa[i-1], pb[j-1]); d > v {
				v = d
			}
			if v < 0 {
				v = 0
			}
			cur[j] = v
			if v > best {
				best = v
			}
		}
		prev, cur = cur, prev
	}
	return best
}
