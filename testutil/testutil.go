package testutil

import (
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/vecknn/internal/searcher"
)

// RNG is a seeded, mutex-guarded random source for test fixtures.
type RNG struct {
	rand *rand.Rand
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed))}
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// PointSet returns batch×dim×n uniform values in [-1, 1), laid out as batch
// consecutive dimension-major point sets.
func (r *RNG) PointSet(batch, dim, n int) []float32 {
	data := make([]float32, batch*dim*n)
	r.FillUniformRange(data, -1, 1)
	return data
}

// GridPointSet returns batch×dim×n small integer coordinates in [0, span).
// Integer data makes every distance exact, and duplicates force ties.
func (r *RNG) GridPointSet(batch, dim, n, span int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := make([]float32, batch*dim*n)
	for i := range data {
		data[i] = float32(r.rand.Intn(span))
	}
	return data
}

// ExactKNN returns the k nearest reference points of every query for one
// batch element, as k×q index and distance buffers (one column per query).
//
// ref is dim×n and query dim×q, both dimension-major. Distances accumulate in
// float32 in ascending dimension order; ties resolve to the smaller index and
// NaN distances rank last.
func ExactKNN(ref, query []float32, n, q, dim, k int) ([]int32, []float32) {
	idx := make([]int32, k*q)
	dist := make([]float32, k*q)

	type cand struct {
		i int32
		d float32
	}
	cands := make([]cand, n)

	for j := 0; j < q; j++ {
		for i := 0; i < n; i++ {
			var s float32
			for d := 0; d < dim; d++ {
				diff := ref[d*n+i] - query[d*q+j]
				s += float32(diff * diff)
			}
			cands[i] = cand{i: int32(i), d: s}
		}
		slices.SortFunc(cands, func(a, b cand) int {
			switch {
			case searcher.Less(a.d, a.i, b.d, b.i):
				return -1
			case searcher.Less(b.d, b.i, a.d, a.i):
				return 1
			}
			return 0
		})
		for l := 0; l < k; l++ {
			idx[l*q+j] = cands[l].i
			dist[l*q+j] = cands[l].d
		}
	}

	return idx, dist
}

// Column extracts query j's k entries from a k×q result buffer.
func Column[T any](buf []T, k, q, j int) []T {
	col := make([]T, k)
	for l := 0; l < k; l++ {
		col[l] = buf[l*q+j]
	}
	return col
}
