package metric

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simspace/object"
)

func TestL1(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 2, 0}, 6},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Empty", []float32{}, []float32{}, 0},
		{"Negative", []float32{-1, 1}, []float32{1, -1}, 4},
	}

	m := L1[float32]()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-5)
		})
	}
}

func TestL1Int(t *testing.T) {
	m := L1[int32]()
	got, err := m.Distance([]int32{1, 2, 3}, []int32{4, 2, 0})
	require.NoError(t, err)
	assert.InDelta(t, 6, got, 1e-6)
}

func TestL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{0, 0}, []float32{3, 4}, 5},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Empty", []float32{}, []float32{}, 0},
	}

	m := L2[float32]()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-5)
		})
	}
}

func TestCosine(t *testing.T) {
	m := Cosine[float32]()

	t.Run("Orthogonal", func(t *testing.T) {
		got, err := m.Distance([]float32{1, 0}, []float32{0, 1})
		require.NoError(t, err)
		assert.InDelta(t, 1, got, 1e-5)
	})

	t.Run("Parallel", func(t *testing.T) {
		got, err := m.Distance([]float32{1, 2}, []float32{2, 4})
		require.NoError(t, err)
		assert.InDelta(t, 0, got, 1e-5)
	})

	t.Run("AntiParallelAbsDot", func(t *testing.T) {
		// The absolute dot product makes opposite directions identical.
		got, err := m.Distance([]float32{1, 0}, []float32{-1, 0})
		require.NoError(t, err)
		assert.InDelta(t, 0, got, 1e-5)
	})

	t.Run("ZeroVector", func(t *testing.T) {
		_, err := m.Distance([]float32{0, 0}, []float32{1, 1})
		require.ErrorIs(t, err, ErrZeroVector)
		_, err = m.Distance([]float32{1, 1}, []float32{0, 0})
		require.ErrorIs(t, err, ErrZeroVector)
	})
}

func TestDimensionMismatch(t *testing.T) {
	metrics := map[string]Metric[float32]{
		"l1":     L1[float32](),
		"l2":     L2[float32](),
		"cosine": Cosine[float32](),
	}
	for name, m := range metrics {
		t.Run(name, func(t *testing.T) {
			_, err := m.Distance([]float32{1, 2, 3}, []float32{1, 2})
			var dm *object.ErrDimensionMismatch
			require.ErrorAs(t, err, &dm)
			assert.Equal(t, 3, dm.Expected)
			assert.Equal(t, 2, dm.Actual)
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []int32
		expected float32
	}{
		// {1,3,5} vs {3,5,7}: intersection 2, union 4.
		{"Simple", []int32{1, 3, 5}, []int32{3, 5, 7}, 0.5},
		{"Identical", []int32{1, 2, 3}, []int32{1, 2, 3}, 0},
		{"Disjoint", []int32{1, 2}, []int32{3, 4}, 1},
		{"BothEmpty", nil, nil, 0},
		{"OneEmpty", nil, []int32{1, 2}, 1},
		{"DifferentLengths", []int32{1, 2, 3, 4}, []int32{4}, 0.75},
	}

	m := Jaccard()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-6)
		})
	}
}

// TestMetricAxioms fuzzes identity, symmetry and the triangle inequality
// on random triples for the metrics that claim them.
func TestMetricAxioms(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randVec := func(n int) []float32 {
		v := make([]float32, n)
		for i := range v {
			v[i] = rng.Float32()*2 - 1
		}
		return v
	}

	for name, m := range map[string]Metric[float32]{"l1": L1[float32](), "l2": L2[float32]()} {
		t.Run(name, func(t *testing.T) {
			for range 200 {
				dim := 1 + rng.Intn(16)
				a, b, c := randVec(dim), randVec(dim), randVec(dim)

				daa, err := m.Distance(a, a)
				require.NoError(t, err)
				assert.InDelta(t, 0, daa, 1e-5)

				dab, err := m.Distance(a, b)
				require.NoError(t, err)
				dba, err := m.Distance(b, a)
				require.NoError(t, err)
				assert.InDelta(t, dab, dba, 1e-5)

				dac, err := m.Distance(a, c)
				require.NoError(t, err)
				dcb, err := m.Distance(c, b)
				require.NoError(t, err)
				assert.LessOrEqual(t, dab, dac+dcb+1e-4)
			}
		})
	}
}
