package object

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// The compact binary form of every object starts with its supertype's
// fields and continues with the subtype's own fields in declared order.
// Scalars are little-endian fixed width; lengths and counts are uvarints;
// strings and byte arrays are length-prefixed.

// ErrShortBuffer indicates a truncated binary record.
var ErrShortBuffer = errors.New("short buffer")

// BinReader is a cursor over one binary record.
type BinReader struct {
	data []byte
	off  int
}

// NewBinReader returns a reader positioned at the start of data.
func NewBinReader(data []byte) *BinReader {
	return &BinReader{data: data}
}

// Offset returns the number of bytes consumed so far.
func (r *BinReader) Offset() int { return r.off }

// Remaining returns the number of bytes left.
func (r *BinReader) Remaining() int { return len(r.data) - r.off }

func (r *BinReader) take(n int, what string) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w for %s: need %d, have %d", ErrShortBuffer, what, n, r.Remaining())
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Uvarint reads one unsigned varint.
func (r *BinReader) Uvarint(what string) (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("%w for %s: invalid uvarint", ErrShortBuffer, what)
	}
	r.off += n
	return v, nil
}

// Byte reads one byte.
func (r *BinReader) Byte(what string) (byte, error) {
	b, err := r.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads one little-endian uint16.
func (r *BinReader) Uint16(what string) (uint16, error) {
	b, err := r.take(2, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads one little-endian uint32.
func (r *BinReader) Uint32(what string) (uint32, error) {
	b, err := r.take(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 reads one little-endian uint64.
func (r *BinReader) Uint64(what string) (uint64, error) {
	b, err := r.take(8, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Float32 reads one little-endian IEEE 754 float32.
func (r *BinReader) Float32(what string) (float32, error) {
	v, err := r.Uint32(what)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Float64 reads one little-endian IEEE 754 float64.
func (r *BinReader) Float64(what string) (float64, error) {
	v, err := r.Uint64(what)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Bytes reads a uvarint-length-prefixed byte array. The returned slice
// aliases the underlying buffer.
func (r *BinReader) Bytes(what string) ([]byte, error) {
	n, err := r.Uvarint(what)
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Remaining()) {
		return nil, fmt.Errorf("%w for %s: need %d, have %d", ErrShortBuffer, what, n, r.Remaining())
	}
	return r.take(int(n), what)
}

// Count reads a uvarint element count and checks it against the bytes
// actually remaining, at minSize encoded bytes per element. A corrupt
// count surfaces as ErrShortBuffer instead of an oversized allocation.
func (r *BinReader) Count(minSize int, what string) (int, error) {
	n, err := r.Uvarint(what)
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Remaining()/minSize) {
		return 0, fmt.Errorf("%w for %s: count %d exceeds remaining %d bytes", ErrShortBuffer, what, n, r.Remaining())
	}
	return int(n), nil
}

// String reads a uvarint-length-prefixed string.
func (r *BinReader) String(what string) (string, error) {
	b, err := r.Bytes(what)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AppendUvarint appends v as an unsigned varint.
func AppendUvarint(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}

// AppendUint16 appends v little-endian.
func AppendUint16(buf []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(buf, v)
}

// AppendUint32 appends v little-endian.
func AppendUint32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

// AppendUint64 appends v little-endian.
func AppendUint64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

// AppendFloat32 appends v as little-endian IEEE 754 bits.
func AppendFloat32(buf []byte, v float32) []byte {
	return AppendUint32(buf, math.Float32bits(v))
}

// AppendFloat64 appends v as little-endian IEEE 754 bits.
func AppendFloat64(buf []byte, v float64) []byte {
	return AppendUint64(buf, math.Float64bits(v))
}

// AppendString appends s with a uvarint length prefix.
func AppendString(buf []byte, s string) []byte {
	buf = AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

// UvarintSize returns the encoded length of v as a uvarint.
func UvarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// StringSize returns the encoded length of s including its prefix.
func StringSize(s string) int {
	return UvarintSize(uint64(len(s))) + len(s)
}

const (
	keyFlagDims = 1 << 0
)

// BinarySize returns the exact encoded length of the base prefix.
func (b *Base) BinarySize() int {
	n := StringSize(b.key.Locator) + 1
	if b.key.HasDims {
		n += 8
	}
	return n
}

// AppendBinary appends the base prefix: locator, flags and, when present,
// the source dimensions.
func (b *Base) AppendBinary(buf []byte) ([]byte, error) {
	buf = AppendString(buf, b.key.Locator)
	var flags byte
	if b.key.HasDims {
		flags |= keyFlagDims
	}
	buf = append(buf, flags)
	if b.key.HasDims {
		buf = AppendUint32(buf, b.key.Width)
		buf = AppendUint32(buf, b.key.Height)
	}
	return buf, nil
}

// ReadBase decodes the base prefix written by Base.AppendBinary.
func ReadBase(r *BinReader) (Base, error) {
	var b Base
	loc, err := r.String("locator")
	if err != nil {
		return b, err
	}
	flags, err := r.Byte("key flags")
	if err != nil {
		return b, err
	}
	b.key.Locator = loc
	if flags&keyFlagDims != 0 {
		if b.key.Width, err = r.Uint32("key width"); err != nil {
			return b, err
		}
		if b.key.Height, err = r.Uint32("key height"); err != nil {
			return b, err
		}
		b.key.HasDims = true
	}
	return b, nil
}
