package tensor

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPoints(t *testing.T, mem memory.Allocator, dim int, rows ...[]float32) *array.FixedSizeList {
	t.Helper()

	builder := array.NewFixedSizeListBuilder(mem, int32(dim), arrow.PrimitiveTypes.Float32)
	defer builder.Release()

	vb := builder.ValueBuilder().(*array.Float32Builder)
	for _, row := range rows {
		builder.Append(true)
		vb.AppendValues(row, nil)
	}

	return builder.NewArray().(*array.FixedSizeList)
}

func TestFromArrowPoints(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	t.Run("Transposes", func(t *testing.T) {
		a := buildPoints(t, mem, 2, []float32{0, 0}, []float32{10, 0}, []float32{0, 10})
		defer a.Release()
		b := buildPoints(t, mem, 2, []float32{1, 2}, []float32{3, 4}, []float32{5, 6})
		defer b.Release()

		x, err := FromArrowPoints(a, b)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 2, 3}, x.Shape())
		assert.Equal(t, []float32{
			0, 10, 0, 0, 0, 10, // batch 0: x row, y row
			1, 3, 5, 2, 4, 6, // batch 1
		}, x.Data())
	})

	t.Run("Sliced", func(t *testing.T) {
		a := buildPoints(t, mem, 2, []float32{9, 9}, []float32{1, 2}, []float32{3, 4})
		defer a.Release()
		s := array.NewSlice(a, 1, 3).(*array.FixedSizeList)
		defer s.Release()

		x, err := FromArrowPoints(s)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 3, 2, 4}, x.Data())
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		a := buildPoints(t, mem, 2, []float32{0, 0})
		defer a.Release()
		b := buildPoints(t, mem, 2, []float32{0, 0}, []float32{1, 1})
		defer b.Release()

		_, err := FromArrowPoints(a, b)
		assert.ErrorIs(t, err, ErrShape)
	})

	t.Run("WrongElementType", func(t *testing.T) {
		builder := array.NewFixedSizeListBuilder(mem, 2, arrow.PrimitiveTypes.Int32)
		defer builder.Release()
		builder.Append(true)
		builder.ValueBuilder().(*array.Int32Builder).AppendValues([]int32{1, 2}, nil)
		arr := builder.NewArray().(*array.FixedSizeList)
		defer arr.Release()

		_, err := FromArrowPoints(arr)
		assert.Error(t, err)
	})

	t.Run("NullRow", func(t *testing.T) {
		builder := array.NewFixedSizeListBuilder(mem, 1, arrow.PrimitiveTypes.Float32)
		defer builder.Release()
		builder.AppendNull()
		arr := builder.NewArray().(*array.FixedSizeList)
		defer arr.Release()

		_, err := FromArrowPoints(arr)
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := FromArrowPoints()
		assert.ErrorIs(t, err, ErrShape)
	})
}

func TestNeighborsToArrow(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	// batch 2, k 2, queries 3
	idx := MustFromSlice([]int32{
		0, 1, 2,
		3, 4, 5,

		6, 7, 8,
		9, 10, 11,
	}, 2, 2, 3)

	arr, err := NeighborsToArrow(mem, idx, 1)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, 3, arr.Len())
	assert.Equal(t, int32(2), arr.DataType().(*arrow.FixedSizeListType).Len())
	assert.Equal(t, []int32{6, 9, 7, 10, 8, 11}, arr.ListValues().(*array.Int32).Int32Values())

	_, err = NeighborsToArrow(mem, idx, 2)
	assert.Error(t, err)

	_, err = NeighborsToArrow(mem, idx.OnDevice(Accelerator), 0)
	assert.Error(t, err)
}
