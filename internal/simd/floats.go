package simd

import "github.com/viterin/vek/vek32"

// chunk bounds the stack buffer used by the vectorised accumulate.
const chunk = 256

var accumulateImpl = accumulateSquaredDiffGeneric

func bindKernels(isa ISA) {
	if isa != Generic && vek32.Info().Acceleration {
		accumulateImpl = accumulateSquaredDiffVek
		return
	}
	accumulateImpl = accumulateSquaredDiffGeneric
}

// AccumulateSquaredDiff adds (row[i]-q)² to dst[i] for every i.
//
// row is one dimension of a dimension-major point set, q the matching
// coordinate of a single query. Calling it once per dimension in ascending
// order yields the squared L2 distance from q to every point.
//
// SAFETY: This function assumes len(dst) == len(row).
func AccumulateSquaredDiff(dst, row []float32, q float32) {
	accumulateImpl(dst, row, q)
}

func accumulateSquaredDiffGeneric(dst, row []float32, q float32) {
	row = row[:len(dst)]
	for i := range dst {
		d := row[i] - q
		dst[i] += float32(d * d)
	}
}

// vek rejects overlapping destination and source slices, so the difference
// and its square live in separate buffers.
func accumulateSquaredDiffVek(dst, row []float32, q float32) {
	var diff, sq [chunk]float32
	for off := 0; off < len(dst); off += chunk {
		end := min(off+chunk, len(dst))
		d, s := diff[:end-off], sq[:end-off]
		vek32.SubNumber_Into(d, row[off:end], q)
		vek32.Mul_Into(s, d, d)
		vek32.Add_Inplace(dst[off:end], s)
	}
}
