package datafile

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simspace/bitvector"
	"github.com/hupe1980/simspace/metric"
	"github.com/hupe1980/simspace/object"
	"github.com/hupe1980/simspace/vector"
)

func sampleObjects() []object.Object {
	v1 := vector.FloatL2.New([]float32{1, 2, 3})
	v1.SetKey(object.Key{Locator: "a.jpg", Width: 640, Height: 480, HasDims: true})
	v2 := vector.ByteL1.New([]uint8{10, 20})
	v2.SetKey(object.Key{Locator: "b.jpg"})
	s := bitvector.NewJaccard(1, 5, 9)
	s.SetKey(object.Key{Locator: "c.jpg"})
	return []object.Object{v1, v2, s}
}

func requireSameObjects(t *testing.T, want, got []object.Object) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Kind(), got[i].Kind())
		d, err := want[i].Distance(got[i], metric.Unbounded)
		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-6)
	}
}

func TestFileRoundTrip(t *testing.T) {
	objs := sampleObjects()

	tests := []struct {
		name        string
		compression Compression
	}{
		{"Plain", None},
		{"Zstd", Zstd},
		{"Gzip", Gzip},
		{"LZ4", LZ4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "objects.txt")

			w, err := Create(path, WithCompression(tt.compression))
			require.NoError(t, err)
			for _, obj := range objs {
				require.NoError(t, w.Write(obj))
			}
			require.NoError(t, w.Close())

			// The reader never needs to know the compression.
			r, err := Open(path)
			require.NoError(t, err)
			defer r.Close()

			got, err := r.ReadAll()
			require.NoError(t, err)
			requireSameObjects(t, objs, got)

			first := got[0].(*vector.Vector[float32])
			assert.Equal(t, objs[0].(*vector.Vector[float32]).Key(), first.Key())
		})
	}
}

func TestReaderClassDispatch(t *testing.T) {
	// Records of mixed kinds in one stream, each dispatched by its
	// "#class" line.
	var sb strings.Builder
	w, err := NewWriter(&sb)
	require.NoError(t, err)
	require.NoError(t, w.Write(vector.FloatL1.New([]float32{1})))
	require.NoError(t, w.Write(bitvector.NewHamming(2, 4)))
	require.NoError(t, w.Close())

	r, err := NewReader(strings.NewReader(sb.String()))
	require.NoError(t, err)

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "float-l1", first.Kind())

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "bits-hamming", second.Kind())

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderDefaultKind(t *testing.T) {
	// A bare datafile without class metadata needs a default kind.
	input := "1, 2, 3\n4, 5, 6\n"

	r, err := NewReader(strings.NewReader(input), WithKind("float-l1"))
	require.NoError(t, err)
	got, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[1].(*vector.Vector[float32]).Len())
}

func TestReaderMissingKind(t *testing.T) {
	r, err := NewReader(strings.NewReader("1, 2, 3\n"))
	require.NoError(t, err)

	_, err = r.Next()
	require.ErrorIs(t, err, ErrMissingKind)
}

func TestReaderClassOverridesDefault(t *testing.T) {
	var sb strings.Builder
	w, err := NewWriter(&sb)
	require.NoError(t, err)
	require.NoError(t, w.Write(bitvector.NewJaccard(1)))
	require.NoError(t, w.Close())

	r, err := NewReader(strings.NewReader(sb.String()), WithKind("float-l1"))
	require.NoError(t, err)

	obj, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "bits-jaccard", obj.Kind())
}

func TestReaderMalformedRecord(t *testing.T) {
	input := "#class float-l1\n1, oops, 3\n"

	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = r.Next()
	var pe *object.ParseError
	require.ErrorAs(t, err, &pe)
	assert.NotErrorIs(t, err, io.EOF, "corruption must not look like a clean end")
}

func TestReaderEmptyStream(t *testing.T) {
	r, err := NewReader(strings.NewReader(""))
	require.NoError(t, err)

	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriterUnsupportedCompression(t *testing.T) {
	_, err := NewWriter(io.Discard, WithCompression(Compression(99)))
	require.Error(t, err)
}

func TestCompressionString(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "zstd", Zstd.String())
	assert.Equal(t, "gzip", Gzip.String())
	assert.Equal(t, "lz4", LZ4.String())
	assert.Equal(t, "Unknown(9)", Compression(9).String())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
