package feature

import (
	"fmt"
	"io"
	"iter"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hupe1980/simspace/object"
)

// Dim selects the axis a set's points are kept ordered by.
type Dim uint8

const (
	// DimNone means no sort dimension has been established.
	DimNone Dim = iota
	// DimX orders points by their X coordinate.
	DimX
	// DimY orders points by their Y coordinate.
	DimY
)

func (d Dim) String() string {
	switch d {
	case DimX:
		return "x"
	case DimY:
		return "y"
	default:
		return "none"
	}
}

func (d Dim) coord(p Point) float32 {
	if d == DimY {
		return p.Y
	}
	return p.X
}

// Set is an ordered sequence of feature points describing one image,
// with a set-matching distance selected by its kind. The source image
// dimensions travel in the object key.
//
// Sets are the one mutable object family: Add inserts a point (respecting
// the current ordering) and OrderBy re-sorts in place. Both are
// exclusive-write mutations guarded by an internal lock; perform them
// during single-threaded setup before publishing the set for concurrent
// distance computation.
type Set struct {
	object.Base
	kind   string
	algo   algorithm
	order  Dim
	window Window

	mu     sync.Mutex
	points []Point
}

type algorithm interface {
	distance(a, b *Set, threshold float32) (float32, error)
	max() float32
}

// Option configures a feature set at construction.
type Option func(*Set)

// WithKey assigns the object key (locator plus source dimensions).
func WithKey(key object.Key) Option {
	return func(s *Set) { s.SetKey(key) }
}

// WithOrder establishes the sort dimension; the point sequence is sorted
// immediately.
func WithOrder(d Dim) Option {
	return func(s *Set) { s.OrderBy(d) }
}

// WithPointDistance replaces the greedy matcher's per-point distance.
// It has no effect on the alignment kinds.
func WithPointDistance(f DistanceFunc) Option {
	return func(s *Set) {
		if g, ok := s.algo.(*greedyAlgo); ok {
			g.dist = f
		}
	}
}

// WithScoring replaces the alignment scoring. It has no effect on the
// greedy kind.
func WithScoring(sc Scoring) Option {
	return func(s *Set) {
		switch a := s.algo.(type) {
		case *alignAlgo:
			a.sc = sc
		case *windowAlgo:
			a.sc = sc
		}
	}
}

const (
	// KindGreedy is the greedy nearest-match set kind.
	KindGreedy = "featureset-greedy"
	// KindAligned is the global-alignment (Needleman-Wunsch) set kind.
	KindAligned = "featureset-align"
	// KindWindowed is the windowed local-alignment (Smith-Waterman) kind.
	KindWindowed = "featureset-window"
)

// NewGreedy constructs a set whose distance is the bidirectional greedy
// nearest-match sum. The points slice is adopted.
func NewGreedy(points []Point, opts ...Option) *Set {
	s := &Set{kind: KindGreedy, algo: &greedyAlgo{dist: SpatialDistance}, points: points}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewAligned constructs a set whose distance is a Needleman-Wunsch global
// alignment of the ordered point sequences. When either operand has no
// sort dimension the alignment falls back to the average of two
// independent 1-D projections (X-sorted and Y-sorted); see alignAlgo.
func NewAligned(points []Point, opts ...Option) *Set {
	s := &Set{kind: KindAligned, algo: &alignAlgo{sc: KeyScoring()}, points: points}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWindowed constructs a set whose distance is the best Smith-Waterman
// local alignment over all pairs of sliding windows. Returns an error if
// the window configuration cannot cover the normalized extent.
func NewWindowed(points []Point, win Window, opts ...Option) (*Set, error) {
	if err := win.Validate(); err != nil {
		return nil, err
	}
	s := &Set{kind: KindWindowed, algo: &windowAlgo{sc: KeyScoring()}, window: win, points: points}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Kind returns the set's registered kind name.
func (s *Set) Kind() string { return s.kind }

// Len returns the number of points.
func (s *Set) Len() int { return len(s.points) }

// Points returns the backing point slice. Callers must not modify it.
func (s *Set) Points() []Point { return s.points }

// Order returns the currently established sort dimension.
func (s *Set) Order() Dim { return s.order }

// OrderBy establishes d as the sort dimension and re-sorts the points.
// OrderBy(DimNone) drops the ordering without touching the sequence.
// This is an exclusive-write mutation.
func (s *Set) OrderBy(d Dim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = d
	if d == DimNone {
		return
	}
	sort.SliceStable(s.points, func(i, j int) bool {
		return d.coord(s.points[i]) < d.coord(s.points[j])
	})
}

// Add inserts one point. With a sort dimension established the insertion
// keeps the sequence ordered (ordered insert, not append-then-sort);
// otherwise the point is appended.
func (s *Set) Add(p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == DimNone {
		s.points = append(s.points, p)
		return
	}
	c := s.order.coord(p)
	i := sort.Search(len(s.points), func(i int) bool {
		return s.order.coord(s.points[i]) > c
	})
	s.points = append(s.points, Point{})
	copy(s.points[i+1:], s.points[i:])
	s.points[i] = p
}

// MaxDistance returns the distance bound of the set's algorithm.
func (s *Set) MaxDistance() float32 { return s.algo.max() }

// Distance computes the set-matching distance to other, which must be a
// set of the same kind. The receiver's algorithm configuration (scoring,
// window) governs the computation.
func (s *Set) Distance(other object.Object, threshold float32) (float32, error) {
	o, ok := other.(*Set)
	if !ok || o.kind != s.kind {
		return 0, &object.ErrTypeMismatch{Want: s.kind, Got: other.Kind()}
	}
	return s.algo.distance(s, o, threshold)
}

// Windows iterates the sliding windows of the normalized extent, yielding
// the points falling inside each window in sequence order. It requires an
// established sort dimension and returns object.ErrNotOrdered otherwise.
func (s *Set) Windows(win Window) (iter.Seq[[]Point], error) {
	if s.order == DimNone {
		return nil, object.ErrNotOrdered
	}
	if err := win.Validate(); err != nil {
		return nil, err
	}
	return func(yield func([]Point) bool) {
		for _, r := range win.regions() {
			var pts []Point
			for _, p := range s.points {
				if r.contains(p) {
					pts = append(pts, p)
				}
			}
			if !yield(pts) {
				return
			}
		}
	}, nil
}

const (
	metaOrder  = "order"
	metaWindow = "window"
)

// WriteText writes the set's textual record: key and configuration
// metadata lines, a point-count line, then one line per point.
func (s *Set) WriteText(w io.Writer) error {
	if err := object.WriteKeyMeta(w, s.Key()); err != nil {
		return err
	}
	if s.order != DimNone {
		if _, err := fmt.Fprintf(w, "#%s %s\n", metaOrder, s.order); err != nil {
			return err
		}
	}
	if s.kind == KindWindowed {
		if _, err := fmt.Fprintf(w, "#%s %s %s %s %s\n", metaWindow,
			object.FormatFloat32(s.window.W), object.FormatFloat32(s.window.H),
			object.FormatFloat32(s.window.ShiftX), object.FormatFloat32(s.window.ShiftY)); err != nil {
			return err
		}
	}
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(s.points)))
	sb.WriteByte('\n')
	for _, p := range s.points {
		p.writeText(&sb)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// BinarySize returns the exact encoded length.
func (s *Set) BinarySize() int {
	n := s.Base.BinarySize() + 1 // order
	if s.kind == KindWindowed {
		n += 16
	}
	n += object.UvarintSize(uint64(len(s.points)))
	for _, p := range s.points {
		n += p.binarySize()
	}
	return n
}

// AppendBinary appends the base prefix, the sort dimension, the window
// configuration (windowed kind only), the point count and the points.
func (s *Set) AppendBinary(buf []byte) ([]byte, error) {
	buf, err := s.Base.AppendBinary(buf)
	if err != nil {
		return nil, err
	}
	buf = append(buf, byte(s.order))
	if s.kind == KindWindowed {
		buf = object.AppendFloat32(buf, s.window.W)
		buf = object.AppendFloat32(buf, s.window.H)
		buf = object.AppendFloat32(buf, s.window.ShiftX)
		buf = object.AppendFloat32(buf, s.window.ShiftY)
	}
	buf = object.AppendUvarint(buf, uint64(len(s.points)))
	for _, p := range s.points {
		buf = p.appendBinary(buf)
	}
	return buf, nil
}

func parseSet(kind string, r *object.TextReader) (*Set, error) {
	line, err := r.ReadDataLine()
	if err != nil {
		return nil, err
	}
	meta := r.TakeMeta()
	key, err := object.KeyFromMeta(meta)
	if err != nil {
		return nil, object.NewParseError(r.Line(), line, key.Locator, err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || count < 0 {
		return nil, object.NewParseError(r.Line(), line, key.Locator, fmt.Errorf("invalid point count: %w", err))
	}
	points := make([]Point, 0, count)
	for range count {
		pl, err := r.ReadLine()
		if err != nil {
			return nil, object.NewParseError(r.Line(), "", key.Locator, fmt.Errorf("truncated point list: %w", err))
		}
		p, err := parsePoint(pl)
		if err != nil {
			return nil, object.NewParseError(r.Line(), pl, key.Locator, err)
		}
		points = append(points, p)
	}

	var order Dim
	switch meta[metaOrder] {
	case "x":
		order = DimX
	case "y":
		order = DimY
	}

	switch kind {
	case KindGreedy:
		return NewGreedy(points, WithKey(key), WithOrder(order)), nil
	case KindAligned:
		return NewAligned(points, WithKey(key), WithOrder(order)), nil
	default:
		win, err := parseWindowMeta(meta[metaWindow])
		if err != nil {
			return nil, object.NewParseError(r.Line(), meta[metaWindow], key.Locator, err)
		}
		return NewWindowed(points, win, WithKey(key), WithOrder(order))
	}
}

func parseWindowMeta(s string) (Window, error) {
	var win Window
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return win, fmt.Errorf("window metadata needs 4 fields, got %d", len(fields))
	}
	dst := [4]*float32{&win.W, &win.H, &win.ShiftX, &win.ShiftY}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return win, err
		}
		*dst[i] = float32(v)
	}
	return win, nil
}

func decodeSet(kind string, r *object.BinReader) (*Set, error) {
	base, err := object.ReadBase(r)
	if err != nil {
		return nil, err
	}
	ob, err := r.Byte("sort dimension")
	if err != nil {
		return nil, err
	}
	if ob > byte(DimY) {
		return nil, fmt.Errorf("invalid sort dimension %d", ob)
	}
	var win Window
	if kind == KindWindowed {
		if win.W, err = r.Float32("window width"); err != nil {
			return nil, err
		}
		if win.H, err = r.Float32("window height"); err != nil {
			return nil, err
		}
		if win.ShiftX, err = r.Float32("window shift x"); err != nil {
			return nil, err
		}
		if win.ShiftY, err = r.Float32("window shift y"); err != nil {
			return nil, err
		}
	}
	// A point encodes to at least 17 bytes: four floats plus the key count.
	n, err := r.Count(17, "point count")
	if err != nil {
		return nil, err
	}
	points := make([]Point, 0, n)
	for range n {
		p, err := readPoint(r)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	var s *Set
	switch kind {
	case KindGreedy:
		s = NewGreedy(points)
	case KindAligned:
		s = NewAligned(points)
	default:
		if s, err = NewWindowed(points, win); err != nil {
			return nil, err
		}
	}
	s.Base = base
	s.order = Dim(ob) // points were stored in order; no re-sort needed
	return s, nil
}

func registerSetKind(kind string) {
	object.Register(object.Factory{
		Kind: kind,
		Parse: func(r *object.TextReader) (object.Object, error) {
			return parseSet(kind, r)
		},
		Decode: func(r *object.BinReader) (object.Object, error) {
			return decodeSet(kind, r)
		},
	})
}

func init() {
	registerSetKind(KindGreedy)
	registerSetKind(KindAligned)
	registerSetKind(KindWindowed)
}

// maxSetDistance is the sentinel returned by unbounded set algorithms.
const maxSetDistance = float32(math.MaxFloat32)
