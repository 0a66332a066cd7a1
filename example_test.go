package vecknn_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/vecknn"
	"github.com/hupe1980/vecknn/device"
	"github.com/hupe1980/vecknn/tensor"
)

// ExampleKNN finds the two nearest of three reference points.
func ExampleKNN() {
	// Dimension-major: x coordinates first, then y.
	ref := tensor.MustFromSlice([]float32{
		0, 10, 0, // x
		0, 0, 10, // y
	}, 1, 2, 3)
	query := tensor.MustFromSlice([]float32{1, 0}, 1, 2, 1)

	idx, err := tensor.New[int32](1, 2, 1)
	if err != nil {
		log.Fatal(err)
	}
	dist, err := tensor.New[float32](1, 2, 1)
	if err != nil {
		log.Fatal(err)
	}

	if err := vecknn.KNN(context.Background(), ref, query, idx, vecknn.WithDistances(dist)); err != nil {
		log.Fatal(err)
	}

	fmt.Println(idx.Data(), dist.Data())
	// Output: [0 1] [1 81]
}

// ExampleEngine_Search runs the same search on the emulated accelerator.
func ExampleEngine_Search() {
	emu := device.NewEmulator()
	defer emu.Close()

	metrics := &vecknn.BasicMetricsCollector{}
	eng := vecknn.New(
		vecknn.WithAccelerator(emu),
		vecknn.WithMetricsCollector(metrics),
	)

	ref, _ := tensor.Wrap([]float32{0, 10, 0, 0, 0, 10}, tensor.Accelerator, 1, 2, 3)
	query, _ := tensor.Wrap([]float32{1, 0, 0, 9}, tensor.Accelerator, 1, 2, 2)
	idx, _ := tensor.Wrap(make([]int32, 2), tensor.Accelerator, 1, 1, 2)

	if err := eng.Search(context.Background(), ref, query, idx); err != nil {
		log.Fatal(err)
	}

	fmt.Println(idx.Data(), metrics.GetStats().QueryCount)
	// Output: [0 2] 2
}

// ExampleErrNotSupported shows the failure for accelerator input on a host-only engine.
func ExampleErrNotSupported() {
	ref, _ := tensor.Wrap([]float32{0, 1}, tensor.Accelerator, 1, 1, 2)
	query, _ := tensor.Wrap([]float32{0}, tensor.Accelerator, 1, 1, 1)
	idx, _ := tensor.Wrap(make([]int32, 1), tensor.Accelerator, 1, 1, 1)

	err := vecknn.KNN(context.Background(), ref, query, idx)
	fmt.Println(err)
	// Output: not compiled with accelerator support
}
