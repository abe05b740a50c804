package meta

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/simspace/object"
)

// Composite kinds.
const (
	// KindWeighted aggregates per-slot distances as a weighted sum.
	KindWeighted = "meta-weighted"
	// KindTotalMin aggregates as the minimum normalized distance over all
	// compatible sub-object pairs.
	KindTotalMin = "meta-min"
)

// UnknownDistance marks a per-component slot whose distance was not
// computed (absent descriptor, zero weight or incompatible kinds).
const UnknownDistance = float32(-1)

// Object is a composite of named sub-objects with an aggregate distance.
// A slot may hold nil (absent descriptor); that is a frequent case, not
// an error, and the slot simply contributes nothing to the aggregate.
type Object struct {
	object.Base
	kind   string
	schema *Schema
	subs   []object.Object
	agg    aggregator
}

type aggregator interface {
	distance(a, b *Object, out []float32, threshold float32) (float32, error)
	max(a *Object) float32
}

func newObject(kind string, schema *Schema, subs []object.Object, agg aggregator) (*Object, error) {
	if len(subs) != schema.Len() {
		return nil, fmt.Errorf("composite needs %d sub-objects, got %d", schema.Len(), len(subs))
	}
	for i, sub := range subs {
		if sub == nil {
			continue
		}
		if want := schema.Slot(i).Kind; sub.Kind() != want {
			return nil, fmt.Errorf("slot %q holds kind %q, schema requires %q", schema.Slot(i).Name, sub.Kind(), want)
		}
	}
	return &Object{kind: kind, schema: schema, subs: subs, agg: agg}, nil
}

// NewWeightedSum constructs a weighted-sum composite. weights must have
// one entry per schema slot; a weight <= 0 excludes that slot's distance
// from the aggregate entirely (the sub-distance is never computed).
func NewWeightedSum(schema *Schema, subs []object.Object, weights Weights) (*Object, error) {
	if len(weights) != schema.Len() {
		return nil, fmt.Errorf("composite needs %d weights, got %d", schema.Len(), len(weights))
	}
	return newObject(KindWeighted, schema, subs, &weightedAgg{weights: weights})
}

// NewTotalMin constructs a total-min composite.
func NewTotalMin(schema *Schema, subs []object.Object) (*Object, error) {
	return newObject(KindTotalMin, schema, subs, totalMinAgg{})
}

// Kind returns the composite kind name.
func (o *Object) Kind() string { return o.kind }

// Schema returns the slot layout.
func (o *Object) Schema() *Schema { return o.schema }

// Sub returns the sub-object at slot i, possibly nil.
func (o *Object) Sub(i int) object.Object { return o.subs[i] }

// SubByName returns the named sub-object, or nil when the slot is absent
// or empty.
func (o *Object) SubByName(name string) object.Object {
	i, ok := o.schema.Index(name)
	if !ok {
		return nil
	}
	return o.subs[i]
}

// Weights returns the weight vector of a weighted-sum composite, or nil
// for other kinds.
func (o *Object) Weights() Weights {
	if w, ok := o.agg.(*weightedAgg); ok {
		return w.weights
	}
	return nil
}

// MaxDistance returns the aggregate's distance bound. For the weighted
// sum this is 1 + the sum of the effective weights, the extra 1 guarding
// downstream pruning against float round-off; it is derived from the
// weight vector on every call and therefore always consistent with it.
func (o *Object) MaxDistance() float32 { return o.agg.max(o) }

// Distance computes the aggregate distance to other.
func (o *Object) Distance(other object.Object, threshold float32) (float32, error) {
	return o.DistanceComponents(other, nil, threshold)
}

// DistanceComponents computes the aggregate distance and, when out is
// non-nil, records each slot's raw sub-distance into out[i] for
// diagnostics. Slots whose distance was not computed are set to
// UnknownDistance. out must have one entry per schema slot.
func (o *Object) DistanceComponents(other object.Object, out []float32, threshold float32) (float32, error) {
	om, ok := other.(*Object)
	if !ok || om.kind != o.kind {
		return 0, &object.ErrTypeMismatch{Want: o.kind, Got: other.Kind()}
	}
	if out != nil && len(out) != o.schema.Len() {
		return 0, fmt.Errorf("component output needs %d entries, got %d", o.schema.Len(), len(out))
	}
	return o.agg.distance(o, om, out, threshold)
}

// WriteText writes the composite record: metadata lines, the header line
// "locator;Name1;Kind1;..." listing every schema slot, then one record
// per slot in header order. An empty slot is encoded as a single empty
// line.
func (o *Object) WriteText(w io.Writer) error {
	key := o.Key()
	if key.HasDims {
		if err := object.WriteKeyMeta(w, object.Key{Width: key.Width, Height: key.Height, HasDims: true}); err != nil {
			return err
		}
	}
	if weights := o.Weights(); weights != nil {
		if err := weights.writeMeta(w); err != nil {
			return err
		}
	}
	var sb strings.Builder
	sb.WriteString(key.Locator)
	for i := range o.schema.Len() {
		slot := o.schema.Slot(i)
		sb.WriteByte(';')
		sb.WriteString(slot.Name)
		sb.WriteByte(';')
		sb.WriteString(slot.Kind)
	}
	sb.WriteByte('\n')
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	for _, sub := range o.subs {
		if sub == nil {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
			continue
		}
		if err := sub.WriteText(w); err != nil {
			return err
		}
	}
	return nil
}

// BinarySize returns the exact encoded length.
func (o *Object) BinarySize() int {
	n := o.Base.BinarySize()
	if weights := o.Weights(); weights != nil {
		n += object.UvarintSize(uint64(len(weights))) + 4*len(weights)
	}
	n += object.UvarintSize(uint64(o.schema.Len()))
	for i, sub := range o.subs {
		slot := o.schema.Slot(i)
		n += object.StringSize(slot.Name) + object.StringSize(slot.Kind) + 1
		if sub != nil {
			n += sub.BinarySize()
		}
	}
	return n
}

// AppendBinary appends the base prefix, the weight vector (weighted kind
// only), the slot count and, per slot, its name, kind, a presence byte
// and the present sub-object's record.
func (o *Object) AppendBinary(buf []byte) ([]byte, error) {
	buf, err := o.Base.AppendBinary(buf)
	if err != nil {
		return nil, err
	}
	if weights := o.Weights(); weights != nil {
		buf = object.AppendUvarint(buf, uint64(len(weights)))
		for _, w := range weights {
			buf = object.AppendFloat32(buf, w)
		}
	}
	buf = object.AppendUvarint(buf, uint64(o.schema.Len()))
	for i, sub := range o.subs {
		slot := o.schema.Slot(i)
		buf = object.AppendString(buf, slot.Name)
		buf = object.AppendString(buf, slot.Kind)
		if sub == nil {
			buf = append(buf, 0)
			continue
		}
		buf = append(buf, 1)
		if buf, err = sub.AppendBinary(buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
