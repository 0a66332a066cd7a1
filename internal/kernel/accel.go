package kernel

import (
	"github.com/hupe1980/vecknn/device"
	"github.com/hupe1980/vecknn/distance"
	"github.com/hupe1980/vecknn/internal/searcher"
)

// Launch names submitted by the Accelerator backend.
const (
	LaunchDistances = "knn.distances"
	LaunchSelect    = "knn.select"
)

// Accelerator runs the kernel as lane-parallel launches on the current stream
// of a device context. Streams implementing device.KNNLauncher receive one
// native launch per batch element instead.
type Accelerator struct {
	Ctx device.Context

	// Expanded computes the distance matrix with one GEMM
	// (‖r‖² + ‖q‖² − 2·qᵀr) instead of the direct accumulation.
	Expanded bool
}

// NewAccelerator returns an Accelerator bound to ctx.
func NewAccelerator(ctx device.Context, expanded bool) *Accelerator {
	return &Accelerator{Ctx: ctx, Expanded: expanded}
}

// Name implements Backend.
func (a *Accelerator) Name() string { return a.Ctx.Name() }

// Alloc implements Backend. Dist lives in device memory.
func (a *Accelerator) Alloc(refN, queryN int) (*Scratch, error) {
	dist, err := a.Ctx.AllocFloat32(refN * queryN)
	if err != nil {
		return nil, err
	}
	s := &Scratch{Dist: dist}

	if a.Expanded && !a.native() {
		norms, err := a.Ctx.AllocFloat32(refN + queryN)
		if err != nil {
			a.Ctx.Free(dist)
			return nil, err
		}
		s.norms = norms
	}
	return s, nil
}

// Run implements Backend.
func (a *Accelerator) Run(p Problem, s *Scratch) error {
	stream := a.Ctx.Stream()
	if l, ok := stream.(device.KNNLauncher); ok {
		return a.runNative(l, p, s)
	}

	n, q := p.RefN, p.QueryN
	if a.Expanded {
		stream.Launch(device.Launch{
			Name:  LaunchDistances,
			Lanes: 1,
			Body: func(int) error {
				distance.ExpandedSquaredL2(s.Dist, p.Ref, n, p.Query, q, p.Dim, s.norms)
				return nil
			},
		})
	} else {
		stream.Launch(device.Launch{
			Name:  LaunchDistances,
			Lanes: q,
			Body: func(j int) error {
				distance.Columns(s.Dist[j*n:(j+1)*n], p.Ref, n, p.Query, q, j, p.Dim)
				return nil
			},
		})
	}

	stream.Launch(device.Launch{
		Name:  LaunchSelect,
		Lanes: q,
		Body: func(j int) error {
			selectColumn(&p, s.Dist[j*n:(j+1)*n], j)
			return nil
		},
	})
	return nil
}

func selectColumn(p *Problem, col []float32, j int) {
	pq := searcher.GetPriorityQueue(min(p.K, p.RefN))
	defer searcher.PutPriorityQueue(pq)

	for i, d := range col {
		pq.Push(searcher.Neighbor{Index: int32(i), Distance: d})
	}
	for rank := pq.Len() - 1; rank >= 0; rank-- {
		nb, _ := pq.Pop()
		writeNeighbor(p, rank, j, nb)
	}
}

// runNative hands the batch element to the device's own kernel. Distances are
// left sorted in the first K rows of the scratch buffer (pitch QueryN); they
// can only be copied out once the launch has completed, so requesting them
// synchronizes the stream.
func (a *Accelerator) runNative(l device.KNNLauncher, p Problem, s *Scratch) error {
	l.LaunchKNN(device.KNNArgs{
		Ref:    p.Ref,
		RefN:   p.RefN,
		Query:  p.Query,
		QueryN: p.QueryN,
		Dim:    p.Dim,
		K:      p.K,
		Dist:   s.Dist,
		Index:  p.Index,
	})
	if p.Dist == nil {
		return nil
	}
	if err := a.Ctx.LastError(); err != nil {
		return err
	}
	copy(p.Dist[:p.K*p.QueryN], s.Dist[:p.K*p.QueryN])
	return nil
}

// Finish implements Backend.
func (a *Accelerator) Finish(s *Scratch) error {
	err := a.Ctx.LastError()
	if s != nil {
		a.Ctx.Free(s.Dist)
		if s.norms != nil {
			a.Ctx.Free(s.norms)
		}
	}
	return err
}

func (a *Accelerator) native() bool {
	_, ok := a.Ctx.Stream().(device.KNNLauncher)
	return ok
}
