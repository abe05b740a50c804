// Package vector implements fixed-length numeric vector objects. One
// generic container covers every element type; the dissimilarity is an
// injected metric strategy, so adding a metric or an element type never
// adds a class.
package vector

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/simspace/metric"
	"github.com/hupe1980/simspace/object"
)

// Vector is a fixed-length array of numeric elements with an attached
// metric. The element array is fixed after construction; Data exposes the
// backing slice for reading only.
type Vector[T metric.Number] struct {
	object.Base
	typ  Type[T]
	data []T
}

// Kind returns the registered kind name, e.g. "float-l2".
func (v *Vector[T]) Kind() string { return v.typ.Kind }

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return len(v.data) }

// Data returns the backing element slice. Callers must not modify it.
func (v *Vector[T]) Data() []T { return v.data }

// MaxDistance returns the attached metric's upper bound.
func (v *Vector[T]) MaxDistance() float32 { return v.typ.Metric.Max }

// Distance computes the metric distance to other, which must be a vector
// of the same kind. The threshold is accepted for interface uniformity;
// primitive metrics always return the exact value.
func (v *Vector[T]) Distance(other object.Object, _ float32) (float32, error) {
	o, ok := other.(*Vector[T])
	if !ok || o.typ.Kind != v.typ.Kind {
		return 0, &object.ErrTypeMismatch{Want: v.typ.Kind, Got: other.Kind()}
	}
	return v.typ.Metric.Distance(v.data, o.data)
}

// WriteText writes the key metadata lines followed by one comma-separated
// data line.
func (v *Vector[T]) WriteText(w io.Writer) error {
	if err := object.WriteKeyMeta(w, v.Key()); err != nil {
		return err
	}
	fields := make([]string, len(v.data))
	for i, e := range v.data {
		fields[i] = v.typ.elem.format(e)
	}
	_, err := fmt.Fprintln(w, strings.Join(fields, ", "))
	return err
}

// BinarySize returns the exact encoded length: base prefix, element count
// and fixed-width elements.
func (v *Vector[T]) BinarySize() int {
	return v.Base.BinarySize() + object.UvarintSize(uint64(len(v.data))) + len(v.data)*v.typ.elem.size
}

// AppendBinary appends the base prefix, the element count and the
// little-endian elements.
func (v *Vector[T]) AppendBinary(buf []byte) ([]byte, error) {
	buf, err := v.Base.AppendBinary(buf)
	if err != nil {
		return nil, err
	}
	buf = object.AppendUvarint(buf, uint64(len(v.data)))
	for _, e := range v.data {
		buf = v.typ.elem.appendElem(buf, e)
	}
	return buf, nil
}
