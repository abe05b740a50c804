package face

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simspace/metric"
	"github.com/hupe1980/simspace/object"
)

// hammingOracle scores similarity as the fraction of equal bytes.
func hammingOracle(a, b []byte) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("descriptor length mismatch: %d vs %d", len(a), len(b))
	}
	equal := 0
	for i := range a {
		if a[i] == b[i] {
			equal++
		}
	}
	return float32(equal) / float32(len(a)), nil
}

func TestDescriptorDistance(t *testing.T) {
	p := StaticProvider(OracleFunc(hammingOracle))

	a := NewDescriptor(p, []byte{1, 2, 3, 4})
	b := NewDescriptor(p, []byte{1, 2, 0, 0})

	d, err := a.Distance(b, metric.Unbounded)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d, 1e-6)

	self, err := a.Distance(a, metric.Unbounded)
	require.NoError(t, err)
	assert.InDelta(t, 0, self, 1e-6)
}

func TestDescriptorDistanceClamped(t *testing.T) {
	p := StaticProvider(OracleFunc(func(a, b []byte) (float32, error) {
		return 1.5, nil // a misbehaving native layer
	}))
	a := NewDescriptor(p, []byte{1})
	b := NewDescriptor(p, []byte{2})

	d, err := a.Distance(b, metric.Unbounded)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-6)
	assert.LessOrEqual(t, d, a.MaxDistance())
}

func TestProviderLazyInit(t *testing.T) {
	calls := 0
	p := NewProvider(func() (Oracle, error) {
		calls++
		return OracleFunc(hammingOracle), nil
	})
	assert.Equal(t, 0, calls, "initializer must not run at construction")

	assert.True(t, p.Available())
	assert.True(t, p.Available())
	assert.Equal(t, 1, calls, "initializer runs at most once")
}

func TestProviderUnavailableSticky(t *testing.T) {
	cause := errors.New("libface.so not found")
	calls := 0
	p := NewProvider(func() (Oracle, error) {
		calls++
		return nil, cause
	})
	assert.False(t, p.Available())

	a := NewDescriptor(p, []byte{1})
	b := NewDescriptor(p, []byte{2})

	_, err := a.Distance(b, metric.Unbounded)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "libface.so not found")

	_, err = a.Distance(b, metric.Unbounded)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, calls, "failed initialization is memoized")
}

func TestDescriptorNoProvider(t *testing.T) {
	SetDefaultProvider(nil)
	a := NewDescriptor(nil, []byte{1})
	b := NewDescriptor(nil, []byte{2})

	_, err := a.Distance(b, metric.Unbounded)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDefaultProvider(t *testing.T) {
	SetDefaultProvider(StaticProvider(OracleFunc(hammingOracle)))
	t.Cleanup(func() { SetDefaultProvider(nil) })

	a := NewDescriptor(nil, []byte{1, 2})
	b := NewDescriptor(nil, []byte{1, 3})

	d, err := a.Distance(b, metric.Unbounded)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d, 1e-6)
}

func TestDescriptorTextRoundTrip(t *testing.T) {
	a := NewDescriptor(nil, []byte{0xde, 0xad, 0xbe, 0xef})
	a.SetKey(object.Key{Locator: "person-42"})

	var sb strings.Builder
	require.NoError(t, a.WriteText(&sb))

	parsed, err := object.Parse(Kind, object.NewTextReader(strings.NewReader(sb.String())))
	require.NoError(t, err)

	pd := parsed.(*Descriptor)
	assert.Equal(t, a.Raw(), pd.Raw())
	assert.Equal(t, "person-42", pd.Locator())

	var sb2 strings.Builder
	require.NoError(t, parsed.WriteText(&sb2))
	assert.Equal(t, sb.String(), sb2.String())
}

func TestDescriptorBinaryRoundTripAndSize(t *testing.T) {
	a := NewDescriptor(nil, bytes.Repeat([]byte{0xab}, 300))
	a.SetKey(object.Key{Locator: "p", Width: 640, Height: 480, HasDims: true})

	buf, err := a.AppendBinary(nil)
	require.NoError(t, err)
	assert.Equal(t, a.BinarySize(), len(buf))

	r := object.NewBinReader(buf)
	decoded, err := object.Decode(Kind, r)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Remaining())

	pd := decoded.(*Descriptor)
	assert.Equal(t, a.Raw(), pd.Raw())
	assert.Equal(t, a.Key(), pd.Key())
}

func TestDescriptorTypeMismatch(t *testing.T) {
	a := NewDescriptor(nil, []byte{1})
	_, err := a.Distance(&otherKind{}, metric.Unbounded)
	var tm *object.ErrTypeMismatch
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, Kind, tm.Want)
}

type otherKind struct{ object.Base }

func (otherKind) Kind() string         { return "other" }
func (otherKind) MaxDistance() float32 { return 1 }
func (otherKind) Distance(object.Object, float32) (float32, error) { return 0, nil }
func (otherKind) WriteText(io.Writer) error             { return nil }
func (otherKind) BinarySize() int                       { return 0 }
func (otherKind) AppendBinary(b []byte) ([]byte, error) { return b, nil }
