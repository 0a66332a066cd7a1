package kernel

import (
	"github.com/hupe1980/vecknn/distance"
	"github.com/hupe1980/vecknn/internal/mem"
	"github.com/hupe1980/vecknn/internal/searcher"
)

// CPU is the single-threaded host backend. Results are bit-for-bit
// reproducible.
type CPU struct{}

// Name implements Backend.
func (CPU) Name() string { return "cpu" }

// Alloc implements Backend. Dist is query-major: column j starts at j*refN.
func (CPU) Alloc(refN, queryN int) (*Scratch, error) {
	return &Scratch{
		Dist:  mem.AllocAlignedFloat32(refN * queryN),
		Index: mem.AllocAlignedInt32(refN),
	}, nil
}

// Run implements Backend.
func (CPU) Run(p Problem, s *Scratch) error {
	n, k := p.RefN, min(p.K, p.RefN)
	for j := 0; j < p.QueryN; j++ {
		col := s.Dist[j*n : (j+1)*n]
		distance.Columns(col, p.Ref, n, p.Query, p.QueryN, j, p.Dim)
		searcher.InsertionSelect(col, s.Index, k)

		for l := 0; l < k; l++ {
			writeNeighbor(&p, l, j, searcher.Neighbor{Index: s.Index[l], Distance: col[l]})
		}
	}
	return nil
}

// Finish implements Backend.
func (CPU) Finish(*Scratch) error { return nil }
