// Package object defines the common supertype of every distance-bearing
// object in simspace, together with the serialization kit shared by all
// concrete types.
//
// An Object wraps some payload (a numeric vector, a set of local image
// features, a composite of named descriptors) and knows how to compute a
// dissimilarity against another object of the same kind. Distance
// computation is a pure function of the two operands and the caller's
// threshold; objects are immutable after construction unless a concrete
// type documents otherwise.
package object

import "io"

// Object is the common contract of every distance-bearing type.
//
// Distance returns the dissimilarity between the receiver and other.
// Implementations must verify that other is of a compatible concrete kind
// and return *ErrTypeMismatch otherwise; they never coerce silently.
//
// The threshold parameter enables early termination: once an
// implementation can prove the final value exceeds threshold it may return
// the running partial value immediately. A threshold-truncated result is a
// lower bound of the true distance and is itself greater than threshold,
// so callers pruning candidates by "distance > threshold" always decide
// correctly. Implementations that cannot prune ignore the threshold.
type Object interface {
	// Kind returns the stable type name used by the registry, meta-object
	// headers and datafile records.
	Kind() string

	// Locator returns the opaque external identifier of the object, or ""
	// when none was assigned.
	Locator() string

	// MaxDistance returns the smallest value guaranteed to be greater than
	// or equal to any distance this object can produce.
	MaxDistance() float32

	// Distance computes the dissimilarity to other, with optional early
	// termination past threshold.
	Distance(other Object, threshold float32) (float32, error)

	// WriteText writes the object's textual record, including its key
	// metadata lines, to w.
	WriteText(w io.Writer) error

	// BinarySize returns the exact number of bytes AppendBinary appends.
	BinarySize() int

	// AppendBinary appends the object's compact binary form to buf and
	// returns the extended slice.
	AppendBinary(buf []byte) ([]byte, error)
}

// Key identifies the origin of an object and optionally carries auxiliary
// structured data, currently the pixel dimensions of the source image.
// Feature points store relative [0,1) coordinates; the dimensions held
// here recover absolute pixel positions.
type Key struct {
	Locator string
	Width   uint32
	Height  uint32
	HasDims bool
}

// IsZero reports whether the key carries no information at all.
func (k Key) IsZero() bool {
	return k.Locator == "" && !k.HasDims
}

// Base carries the state every object shares: its key. Concrete types
// embed Base and call its text/binary helpers first so that the encoded
// form of any object starts with the supertype's fields.
type Base struct {
	key Key
}

// NewBase returns a Base with the given key.
func NewBase(key Key) Base {
	return Base{key: key}
}

// Locator returns the key's locator.
func (b *Base) Locator() string { return b.key.Locator }

// Key returns the object's key.
func (b *Base) Key() Key { return b.key }

// SetKey assigns the object's key. It is intended for use during
// construction and parsing only; published objects are not rekeyed.
func (b *Base) SetKey(key Key) { b.key = key }
