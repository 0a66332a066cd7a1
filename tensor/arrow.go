package tensor

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// FromArrowPoints builds a [len(lists), dim, n] host point-set tensor from
// FixedSizeList<float32> arrays, one array per batch element and one row per
// point. Rows are transposed into the dimension-major layout; every array must
// share the list width and row count. Null rows or values are rejected.
func FromArrowPoints(lists ...*array.FixedSizeList) (*Tensor[float32], error) {
	if len(lists) == 0 {
		return nil, fmt.Errorf("%w: no arrow arrays", ErrShape)
	}

	dim, n := -1, -1
	for b, list := range lists {
		fsl, ok := list.DataType().(*arrow.FixedSizeListType)
		if !ok {
			return nil, fmt.Errorf("tensor: batch %d: unexpected type %s", b, list.DataType())
		}
		if fsl.Elem().ID() != arrow.FLOAT32 {
			return nil, fmt.Errorf("tensor: batch %d: want float32 elements, got %s", b, fsl.Elem())
		}
		if list.NullN() > 0 || list.ListValues().NullN() > 0 {
			return nil, fmt.Errorf("tensor: batch %d: null points are not supported", b)
		}
		if b == 0 {
			dim, n = int(fsl.Len()), list.Len()
			continue
		}
		if int(fsl.Len()) != dim || list.Len() != n {
			return nil, fmt.Errorf("%w: batch %d is %d×%d, want %d×%d", ErrShape, b, list.Len(), fsl.Len(), n, dim)
		}
	}

	out := make([]float32, len(lists)*dim*n)
	for b, list := range lists {
		values := list.ListValues().(*array.Float32).Float32Values()
		dst := out[b*dim*n : (b+1)*dim*n]
		for i := 0; i < n; i++ {
			off, _ := list.ValueOffsets(i)
			start := int(off)
			row := values[start : start+dim]
			for d, v := range row {
				dst[d*n+i] = v
			}
		}
	}

	return &Tensor[float32]{data: out, shape: []int{len(lists), dim, n}, device: Host}, nil
}

// NeighborsToArrow exports batch element b of a [batch, k, queries] host
// index tensor as a FixedSizeList<int32> with one row of k neighbors per query.
// The caller owns the returned array and must Release it.
func NeighborsToArrow(mem memory.Allocator, idx *Tensor[int32], b int) (*array.FixedSizeList, error) {
	if idx.Device() != Host {
		return nil, fmt.Errorf("tensor: neighbors must be host resident, got %s", idx.Device())
	}
	if idx.Rank() != 3 {
		return nil, fmt.Errorf("%w: want [batch, k, queries], got %v", ErrShape, idx.shape)
	}
	if b < 0 || b >= idx.Dim(0) {
		return nil, fmt.Errorf("tensor: batch %d out of range [0, %d)", b, idx.Dim(0))
	}

	k, q := idx.Dim(1), idx.Dim(2)
	data := idx.Batch(b)

	builder := array.NewFixedSizeListBuilder(mem, int32(k), arrow.PrimitiveTypes.Int32)
	defer builder.Release()
	vb := builder.ValueBuilder().(*array.Int32Builder)
	vb.Reserve(k * q)

	for j := 0; j < q; j++ {
		builder.Append(true)
		for l := 0; l < k; l++ {
			vb.Append(data[l*q+j])
		}
	}

	return builder.NewArray().(*array.FixedSizeList), nil
}
