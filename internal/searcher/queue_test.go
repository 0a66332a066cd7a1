package searcher

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLess(t *testing.T) {
	nan := float32(math.NaN())

	tests := []struct {
		name   string
		da     float32
		ia     int32
		db     float32
		ib     int32
		expect bool
	}{
		{"SmallerDistance", 1, 9, 2, 0, true},
		{"LargerDistance", 2, 0, 1, 9, false},
		{"TieSmallerIndex", 3, 1, 3, 2, true},
		{"TieLargerIndex", 3, 2, 3, 1, false},
		{"Equal", 3, 2, 3, 2, false},
		{"NaNLast", nan, 0, 1e30, 9, false},
		{"NumberBeforeNaN", float32(math.Inf(1)), 9, nan, 0, true},
		{"NaNTiesByIndex", nan, 1, nan, 2, true},
		{"SignedZeroTie", float32(math.Copysign(0, -1)), 4, 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Less(tt.da, tt.ia, tt.db, tt.ib))
		})
	}
}

func TestPriorityQueue(t *testing.T) {
	t.Run("KeepsBestK", func(t *testing.T) {
		pq := NewPriorityQueue(3)
		for i, d := range []float32{10, 5, 20, 1, 7, 30} {
			pq.Push(Neighbor{Index: int32(i), Distance: d})
		}
		require.Equal(t, 3, pq.Len())

		top, ok := pq.Top()
		require.True(t, ok)
		assert.Equal(t, float32(7), top.Distance)

		got := pq.Drain(make([]Neighbor, 3))
		assert.Equal(t, []Neighbor{{3, 1}, {1, 5}, {4, 7}}, got)
		assert.Equal(t, 0, pq.Len())
	})

	t.Run("TieBreakKeepsSmallerIndex", func(t *testing.T) {
		pq := NewPriorityQueue(2)
		pq.Push(Neighbor{Index: 4, Distance: 1})
		pq.Push(Neighbor{Index: 2, Distance: 1})
		pq.Push(Neighbor{Index: 0, Distance: 1})
		pq.Push(Neighbor{Index: 1, Distance: 1})

		got := pq.Drain(make([]Neighbor, 2))
		assert.Equal(t, []Neighbor{{0, 1}, {1, 1}}, got)
	})

	t.Run("ZeroCapacity", func(t *testing.T) {
		pq := NewPriorityQueue(0)
		pq.Push(Neighbor{Index: 1, Distance: 1})
		assert.Equal(t, 0, pq.Len())
		_, ok := pq.Pop()
		assert.False(t, ok)
		_, ok = pq.Top()
		assert.False(t, ok)
	})

	t.Run("Pool", func(t *testing.T) {
		pq := GetPriorityQueue(4)
		pq.Push(Neighbor{Index: 1, Distance: 2})
		PutPriorityQueue(pq)

		pq = GetPriorityQueue(8)
		assert.Equal(t, 0, pq.Len())
		for i := range 10 {
			pq.Push(Neighbor{Index: int32(i), Distance: float32(10 - i)})
		}
		assert.Equal(t, 8, pq.Len())
		PutPriorityQueue(pq)
	})
}

func TestInsertionSelect(t *testing.T) {
	t.Run("Basic", func(t *testing.T) {
		dist := []float32{1, 81, 101}
		ind := make([]int32, 3)
		InsertionSelect(dist, ind, 2)
		assert.Equal(t, []int32{0, 1}, ind[:2])
		assert.Equal(t, []float32{1, 81}, dist[:2])
	})

	t.Run("FullSort", func(t *testing.T) {
		dist := []float32{4, 2, 2, 9, 0}
		ind := make([]int32, 5)
		InsertionSelect(dist, ind, 5)
		assert.Equal(t, []int32{4, 1, 2, 0, 3}, ind)
		assert.Equal(t, []float32{0, 2, 2, 4, 9}, dist)
	})

	t.Run("NaNRanksLast", func(t *testing.T) {
		nan := float32(math.NaN())
		dist := []float32{nan, 3, nan, 1}
		ind := make([]int32, 4)
		InsertionSelect(dist, ind, 4)
		assert.Equal(t, []int32{3, 1, 0, 2}, ind)
	})

	t.Run("KClamped", func(t *testing.T) {
		dist := []float32{3, 1}
		ind := make([]int32, 2)
		InsertionSelect(dist, ind, 5)
		assert.Equal(t, []int32{1, 0}, ind)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.NotPanics(t, func() { InsertionSelect(nil, nil, 3) })
	})
}

func TestSelectionStrategiesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := range 50 {
		n := 1 + rng.Intn(200)
		k := 1 + rng.Intn(n)
		dist := make([]float32, n)
		for i := range dist {
			// Few distinct values so ties are common.
			dist[i] = float32(rng.Intn(8))
		}

		pq := NewPriorityQueue(k)
		for i, d := range dist {
			pq.Push(Neighbor{Index: int32(i), Distance: d})
		}
		heap := pq.Drain(make([]Neighbor, k))

		col := append([]float32(nil), dist...)
		ind := make([]int32, n)
		InsertionSelect(col, ind, k)

		for l := 0; l < k; l++ {
			require.Equal(t, heap[l].Index, ind[l], "trial %d rank %d", trial, l)
			require.Equal(t, heap[l].Distance, col[l], "trial %d rank %d", trial, l)
		}
	}
}
