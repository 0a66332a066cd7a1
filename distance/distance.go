package distance

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/hupe1980/vecknn/internal/simd"
)

// Columns writes the squared distances from query point j to all n reference
// points into dst (len n). ref is dim×n and query dim×q, both dimension-major.
func Columns(dst, ref []float32, n int, query []float32, q, j, dim int) {
	clear(dst)
	for d := 0; d < dim; d++ {
		simd.AccumulateSquaredDiff(dst, ref[d*n:(d+1)*n], query[d*q+j])
	}
}

// ExpandedSquaredL2 computes all q×n squared distances as ‖r‖² + ‖x‖² − 2·xᵀr
// with one matrix multiplication. out is query-major: out[j*n+i] holds the
// distance from query j to reference i.
//
// norms is optional scratch of length n+q; it is allocated when too short.
// The result equals the direct form up to floating-point rounding, so ties
// may resolve differently. Negative rounding residue is clamped to zero.
func ExpandedSquaredL2(out, ref []float32, n int, query []float32, q, dim int, norms []float32) {
	if n == 0 || q == 0 {
		return
	}
	out = out[:n*q]
	if dim == 0 {
		clear(out)
		return
	}

	if len(norms) < n+q {
		norms = make([]float32, n+q)
	}
	refNorms, queryNorms := norms[:n], norms[n:n+q]
	clear(refNorms)
	clear(queryNorms)
	for d := 0; d < dim; d++ {
		simd.AccumulateSquaredDiff(refNorms, ref[d*n:(d+1)*n], 0)
		simd.AccumulateSquaredDiff(queryNorms, query[d*q:(d+1)*q], 0)
	}

	blas32.Gemm(blas.Trans, blas.NoTrans, -2,
		blas32.General{Rows: dim, Cols: q, Stride: q, Data: query[:dim*q]},
		blas32.General{Rows: dim, Cols: n, Stride: n, Data: ref[:dim*n]},
		0,
		blas32.General{Rows: q, Cols: n, Stride: n, Data: out},
	)

	for j := 0; j < q; j++ {
		row := out[j*n : (j+1)*n]
		qn := queryNorms[j]
		for i := range row {
			v := row[i] + qn + refNorms[i]
			if v < 0 {
				v = 0
			}
			row[i] = v
		}
	}
}
