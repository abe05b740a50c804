package vector

import (
	"slices"
	"strconv"

	"github.com/hupe1980/simspace/metric"
	"github.com/hupe1980/simspace/object"
)

// Type describes one concrete vector kind: an element codec plus a metric
// strategy. The predefined Type values below are registered with the
// object registry during package initialization.
type Type[T metric.Number] struct {
	// Kind is the stable registry name.
	Kind string
	// Metric is the dissimilarity attached to vectors of this type.
	Metric metric.Metric[T]

	elem elemCodec[T]
	// normalize, when set, canonicalizes the element array on
	// construction (e.g. sort-and-dedupe for set metrics).
	normalize func([]T) []T
}

// New constructs a vector of this type. The data slice is adopted, not
// copied; callers hand over ownership.
func (t Type[T]) New(data []T) *Vector[T] {
	if t.normalize != nil {
		data = t.normalize(data)
	}
	return &Vector[T]{typ: t, data: data}
}

// NewWithKey constructs a vector carrying the given key.
func (t Type[T]) NewWithKey(key object.Key, data []T) *Vector[T] {
	v := t.New(data)
	v.SetKey(key)
	return v
}

// Parse reads one textual vector record from r.
func (t Type[T]) Parse(r *object.TextReader) (*Vector[T], error) {
	line, err := r.ReadDataLine()
	if err != nil {
		return nil, err
	}
	key, err := object.KeyFromMeta(r.TakeMeta())
	if err != nil {
		return nil, object.NewParseError(r.Line(), line, key.Locator, err)
	}
	fields := object.SplitFields(line)
	data := make([]T, len(fields))
	for i, f := range fields {
		e, err := t.elem.parse(f)
		if err != nil {
			return nil, object.NewParseError(r.Line(), line, key.Locator, err)
		}
		data[i] = e
	}
	return t.NewWithKey(key, data), nil
}

// Decode reads one binary vector record from r.
func (t Type[T]) Decode(r *object.BinReader) (*Vector[T], error) {
	base, err := object.ReadBase(r)
	if err != nil {
		return nil, err
	}
	n, err := r.Count(t.elem.size, "vector length")
	if err != nil {
		return nil, err
	}
	data := make([]T, n)
	for i := range data {
		if data[i], err = t.elem.read(r); err != nil {
			return nil, err
		}
	}
	v := &Vector[T]{Base: base, typ: t, data: data}
	return v, nil
}

func (t Type[T]) register() {
	object.Register(object.Factory{
		Kind: t.Kind,
		Parse: func(r *object.TextReader) (object.Object, error) {
			return t.Parse(r)
		},
		Decode: func(r *object.BinReader) (object.Object, error) {
			return t.Decode(r)
		},
	})
}

// elemCodec handles one element type's scalar encoding.
type elemCodec[T metric.Number] struct {
	size       int
	appendElem func(buf []byte, v T) []byte
	read       func(r *object.BinReader) (T, error)
	parse      func(s string) (T, error)
	format     func(v T) string
}

var byteCodec = elemCodec[uint8]{
	size:       1,
	appendElem: func(buf []byte, v uint8) []byte { return append(buf, v) },
	read: func(r *object.BinReader) (uint8, error) {
		return r.Byte("vector element")
	},
	parse: func(s string) (uint8, error) {
		v, err := strconv.ParseUint(s, 10, 8)
		return uint8(v), err
	},
	format: func(v uint8) string { return strconv.FormatUint(uint64(v), 10) },
}

var shortCodec = elemCodec[int16]{
	size: 2,
	appendElem: func(buf []byte, v int16) []byte {
		return object.AppendUint16(buf, uint16(v))
	},
	read: func(r *object.BinReader) (int16, error) {
		v, err := r.Uint16("vector element")
		return int16(v), err
	},
	parse: func(s string) (int16, error) {
		v, err := strconv.ParseInt(s, 10, 16)
		return int16(v), err
	},
	format: func(v int16) string { return strconv.FormatInt(int64(v), 10) },
}

var intCodec = elemCodec[int32]{
	size: 4,
	appendElem: func(buf []byte, v int32) []byte {
		return object.AppendUint32(buf, uint32(v))
	},
	read: func(r *object.BinReader) (int32, error) {
		v, err := r.Uint32("vector element")
		return int32(v), err
	},
	parse: func(s string) (int32, error) {
		v, err := strconv.ParseInt(s, 10, 32)
		return int32(v), err
	},
	format: func(v int32) string { return strconv.FormatInt(int64(v), 10) },
}

var float32Codec = elemCodec[float32]{
	size:       4,
	appendElem: object.AppendFloat32,
	read: func(r *object.BinReader) (float32, error) {
		return r.Float32("vector element")
	},
	parse: func(s string) (float32, error) {
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	},
	format: object.FormatFloat32,
}

var float64Codec = elemCodec[float64]{
	size:       8,
	appendElem: object.AppendFloat64,
	read: func(r *object.BinReader) (float64, error) {
		return r.Float64("vector element")
	},
	parse: func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	},
	format: object.FormatFloat64,
}

// sortedUnique canonicalizes set-metric element arrays: ascending order,
// duplicates removed.
func sortedUnique(data []int32) []int32 {
	slices.Sort(data)
	return slices.Compact(data)
}

// Predefined vector types.
var (
	ByteL1      = Type[uint8]{Kind: "byte-l1", Metric: metric.L1[uint8](), elem: byteCodec}
	ShortL1     = Type[int16]{Kind: "short-l1", Metric: metric.L1[int16](), elem: shortCodec}
	IntL1       = Type[int32]{Kind: "int-l1", Metric: metric.L1[int32](), elem: intCodec}
	IntJaccard  = Type[int32]{Kind: "int-jaccard", Metric: metric.Jaccard(), elem: intCodec, normalize: sortedUnique}
	FloatL1     = Type[float32]{Kind: "float-l1", Metric: metric.L1[float32](), elem: float32Codec}
	FloatL2     = Type[float32]{Kind: "float-l2", Metric: metric.L2[float32](), elem: float32Codec}
	FloatCosine = Type[float32]{Kind: "float-cosine", Metric: metric.Cosine[float32](), elem: float32Codec}
	DoubleL2    = Type[float64]{Kind: "double-l2", Metric: metric.L2[float64](), elem: float64Codec}
)

func init() {
	ByteL1.register()
	ShortL1.register()
	IntL1.register()
	IntJaccard.register()
	FloatL1.register()
	FloatL2.register()
	FloatCosine.register()
	DoubleL2.register()
}
