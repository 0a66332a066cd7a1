package kernel

import (
	"github.com/hupe1980/vecknn/internal/searcher"
)

// Problem is one batch element.
//
// Ref is Dim×RefN and Query Dim×QueryN, both dimension-major. Index receives
// K×QueryN reference indices (column j belongs to query j); Dist, when non-nil,
// receives the matching squared distances in the same layout.
type Problem struct {
	Ref    []float32
	Query  []float32
	RefN   int
	QueryN int
	Dim    int
	K      int
	Index  []int32
	Dist   []float32
}

// Scratch is the per-call working memory reused across batch elements.
// It never escapes a call.
type Scratch struct {
	// Dist holds RefN×QueryN distances. Layout is backend specific.
	Dist []float32

	// Index is the host-side selection buffer (RefN entries). CPU only.
	Index []int32

	norms []float32
}

// Backend runs the kernel on one kind of execution resource.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Alloc returns scratch sized for refN references and queryN queries.
	Alloc(refN, queryN int) (*Scratch, error)

	// Run processes one batch element. Work may complete asynchronously.
	Run(p Problem, s *Scratch) error

	// Finish waits for outstanding work, releases s and returns the first
	// asynchronous failure.
	Finish(s *Scratch) error
}

func writeNeighbor(p *Problem, rank, j int, n searcher.Neighbor) {
	at := rank*p.QueryN + j
	p.Index[at] = n.Index
	if p.Dist != nil {
		p.Dist[at] = n.Distance
	}
}
