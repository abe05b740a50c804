// Package feature implements local image features and feature-set objects
// with set-matching distances: greedy nearest-match, global sequence
// alignment and windowed local alignment.
package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/simspace/object"
)

// Point is one local image feature. X and Y are relative coordinates in
// the normalized [0,1) space; absolute pixel positions are recovered via
// the dimensions carried by the owning set's key. Keys are optional
// quantization (visual-word) identifiers.
//
// Point is a record type: it carries no aggregate distance logic of its
// own. Per-point costs are supplied to the set algorithms as strategy
// functions (DistanceFunc, Scoring).
type Point struct {
	X           float32
	Y           float32
	Orientation float32
	Scale       float32
	Keys        []int32
}

// SharesKey reports whether p and q have at least one quantization key in
// common. Key lists are short (typically 1-3 entries), so the scan is
// quadratic on purpose.
func (p Point) SharesKey(q Point) bool {
	for _, a := range p.Keys {
		for _, b := range q.Keys {
			if a == b {
				return true
			}
		}
	}
	return false
}

// parsePoint reads the "x, y, orientation, scale[; key1, key2, ...]" form.
func parsePoint(line string) (Point, error) {
	var p Point
	head, tail, hasKeys := strings.Cut(line, ";")
	fields := object.SplitFields(head)
	if len(fields) != 4 {
		return p, fmt.Errorf("feature point needs 4 coordinate fields, got %d", len(fields))
	}
	coords := [4]*float32{&p.X, &p.Y, &p.Orientation, &p.Scale}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return p, err
		}
		*coords[i] = float32(v)
	}
	if hasKeys {
		keyFields := object.SplitFields(strings.TrimSpace(tail))
		p.Keys = make([]int32, len(keyFields))
		for i, f := range keyFields {
			v, err := strconv.ParseInt(f, 10, 32)
			if err != nil {
				return p, err
			}
			p.Keys[i] = int32(v)
		}
	}
	return p, nil
}

func (p Point) writeText(sb *strings.Builder) {
	sb.WriteString(object.FormatFloat32(p.X))
	sb.WriteString(", ")
	sb.WriteString(object.FormatFloat32(p.Y))
	sb.WriteString(", ")
	sb.WriteString(object.FormatFloat32(p.Orientation))
	sb.WriteString(", ")
	sb.WriteString(object.FormatFloat32(p.Scale))
	if len(p.Keys) > 0 {
		sb.WriteString("; ")
		for i, k := range p.Keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatInt(int64(k), 10))
		}
	}
	sb.WriteByte('\n')
}

func (p Point) binarySize() int {
	return 16 + object.UvarintSize(uint64(len(p.Keys))) + 4*len(p.Keys)
}

func (p Point) appendBinary(buf []byte) []byte {
	buf = object.AppendFloat32(buf, p.X)
	buf = object.AppendFloat32(buf, p.Y)
	buf = object.AppendFloat32(buf, p.Orientation)
	buf = object.AppendFloat32(buf, p.Scale)
	buf = object.AppendUvarint(buf, uint64(len(p.Keys)))
	for _, k := range p.Keys {
		buf = object.AppendUint32(buf, uint32(k))
	}
	return buf
}

func readPoint(r *object.BinReader) (Point, error) {
	var p Point
	var err error
	if p.X, err = r.Float32("point x"); err != nil {
		return p, err
	}
	if p.Y, err = r.Float32("point y"); err != nil {
		return p, err
	}
	if p.Orientation, err = r.Float32("point orientation"); err != nil {
		return p, err
	}
	if p.Scale, err = r.Float32("point scale"); err != nil {
		return p, err
	}
	n, err := r.Count(4, "point key count")
	if err != nil {
		return p, err
	}
	if n > 0 {
		p.Keys = make([]int32, n)
		for i := range p.Keys {
			v, err := r.Uint32("point key")
			if err != nil {
				return p, err
			}
			p.Keys[i] = int32(v)
		}
	}
	return p, nil
}
