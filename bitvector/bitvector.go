// Package bitvector implements sparse binary signature objects backed by
// roaring bitmaps, with Jaccard and Hamming dissimilarities. Signatures
// suit quantized descriptors where each set bit marks the presence of one
// visual word.
package bitvector

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/simspace/object"
)

// Signature kinds.
const (
	// KindJaccard is 1 - |intersection|/|union|.
	KindJaccard = "bits-jaccard"
	// KindHamming is the symmetric-difference cardinality.
	KindHamming = "bits-hamming"
)

// Signature is a compressed set of uint32 bit positions with a set
// dissimilarity. Immutable after construction.
type Signature struct {
	object.Base
	kind string
	bm   *roaring.Bitmap
}

// NewJaccard builds a Jaccard signature from the given bit positions.
func NewJaccard(bits ...uint32) *Signature {
	return &Signature{kind: KindJaccard, bm: roaring.BitmapOf(bits...)}
}

// NewHamming builds a Hamming signature from the given bit positions.
func NewHamming(bits ...uint32) *Signature {
	return &Signature{kind: KindHamming, bm: roaring.BitmapOf(bits...)}
}

// Kind returns the signature's registered kind name.
func (s *Signature) Kind() string { return s.kind }

// Cardinality returns the number of set bits.
func (s *Signature) Cardinality() uint64 { return s.bm.GetCardinality() }

// Contains reports whether bit is set.
func (s *Signature) Contains(bit uint32) bool { return s.bm.Contains(bit) }

// MaxDistance returns the dissimilarity bound: 1 for Jaccard, unbounded
// for Hamming (the count of differing bits has no fixed ceiling).
func (s *Signature) MaxDistance() float32 {
	if s.kind == KindJaccard {
		return 1
	}
	return maxHamming
}

// Bit positions are uint32, so at most 1<<32 bits can differ.
const maxHamming = float32(1 << 32)

// Distance computes the signature dissimilarity. Both cardinality forms
// work directly on the compressed representation; no bitmap is
// materialized.
func (s *Signature) Distance(other object.Object, _ float32) (float32, error) {
	o, ok := other.(*Signature)
	if !ok || o.kind != s.kind {
		return 0, &object.ErrTypeMismatch{Want: s.kind, Got: other.Kind()}
	}
	inter := s.bm.AndCardinality(o.bm)
	if s.kind == KindHamming {
		return float32(s.bm.GetCardinality() + o.bm.GetCardinality() - 2*inter), nil
	}
	union := s.bm.GetCardinality() + o.bm.GetCardinality() - inter
	if union == 0 {
		return 0, nil // two empty signatures
	}
	return 1 - float32(inter)/float32(union), nil
}

// WriteText writes the key metadata lines and one comma-separated line of
// ascending bit positions.
func (s *Signature) WriteText(w io.Writer) error {
	if err := object.WriteKeyMeta(w, s.Key()); err != nil {
		return err
	}
	var sb strings.Builder
	first := true
	it := s.bm.Iterator()
	for it.HasNext() {
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatUint(uint64(it.Next()), 10))
		first = false
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// BinarySize returns the exact encoded length. The payload is roaring's
// own serialized form, whose size the bitmap reports exactly.
func (s *Signature) BinarySize() int {
	n := s.Base.BinarySize()
	sz := s.bm.GetSerializedSizeInBytes()
	return n + object.UvarintSize(sz) + int(sz)
}

// AppendBinary appends the base prefix and the length-prefixed roaring
// serialization.
func (s *Signature) AppendBinary(buf []byte) ([]byte, error) {
	buf, err := s.Base.AppendBinary(buf)
	if err != nil {
		return nil, err
	}
	payload, err := s.bm.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize bitmap: %w", err)
	}
	buf = object.AppendUvarint(buf, uint64(len(payload)))
	return append(buf, payload...), nil
}

func parseSignature(kind string, r *object.TextReader) (object.Object, error) {
	line, err := r.ReadDataLine()
	if err != nil {
		return nil, err
	}
	key, err := object.KeyFromMeta(r.TakeMeta())
	if err != nil {
		return nil, object.NewParseError(r.Line(), line, key.Locator, err)
	}
	bm := roaring.New()
	if strings.TrimSpace(line) != "" {
		for _, f := range object.SplitFields(line) {
			v, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return nil, object.NewParseError(r.Line(), line, key.Locator, err)
			}
			bm.Add(uint32(v))
		}
	}
	s := &Signature{kind: kind, bm: bm}
	s.SetKey(key)
	return s, nil
}

func decodeSignature(kind string, r *object.BinReader) (object.Object, error) {
	base, err := object.ReadBase(r)
	if err != nil {
		return nil, err
	}
	payload, err := r.Bytes("bitmap")
	if err != nil {
		return nil, err
	}
	bm := roaring.New()
	if err := bm.UnmarshalBinary(payload); err != nil {
		return nil, fmt.Errorf("deserialize bitmap: %w", err)
	}
	return &Signature{Base: base, kind: kind, bm: bm}, nil
}

func registerSignatureKind(kind string) {
	object.Register(object.Factory{
		Kind: kind,
		Parse: func(r *object.TextReader) (object.Object, error) {
			return parseSignature(kind, r)
		},
		Decode: func(r *object.BinReader) (object.Object, error) {
			return decodeSignature(kind, r)
		},
	})
}

func init() {
	registerSignatureKind(KindJaccard)
	registerSignatureKind(KindHamming)
}
