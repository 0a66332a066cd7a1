//go:build linux || darwin

package cuda

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecknn/device"
)

type knnCall struct {
	refN, queryN, dim, k int32
	dist, ind            uintptr
}

// fakeDevice returns a Device whose runtime entry points are Go closures.
func fakeDevice(syncCode int32) (*Device, *[]knnCall, *[]uintptr) {
	var calls []knnCall
	var freed []uintptr
	d := &Device{fn: functions{
		streamSynchronize: func(uintptr) int32 { return syncCode },
		getLastError:      func() int32 { return cudaSuccess },
		getErrorString:    func(int32) string { return "an illegal memory access was encountered" },
		free: func(p uintptr) int32 {
			freed = append(freed, p)
			return cudaSuccess
		},
		knn: func(_ uintptr, refN int32, _ uintptr, queryN int32, dim, k int32, dist, ind uintptr, _ uintptr) {
			calls = append(calls, knnCall{refN: refN, queryN: queryN, dim: dim, k: k, dist: dist, ind: ind})
		},
	}}
	return d, &calls, &freed
}

func TestStreamLaunchUnsupported(t *testing.T) {
	d, _, _ := fakeDevice(cudaSuccess)
	ran := false
	d.Stream().Launch(device.Launch{Name: "knn.distances", Lanes: 4, Body: func(int) error {
		ran = true
		return nil
	}})

	err := d.LastError()
	require.ErrorIs(t, err, device.ErrUnsupportedLaunch)
	var fault *device.FaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "knn.distances", fault.Launch)
	assert.False(t, ran)

	assert.NoError(t, d.LastError())
}

func TestStreamLaunchKNN(t *testing.T) {
	t.Run("Arguments", func(t *testing.T) {
		d, calls, _ := fakeDevice(cudaSuccess)
		launcher, ok := d.Stream().(device.KNNLauncher)
		require.True(t, ok)

		dist := make([]float32, 6)
		idx := make([]int32, 6)
		launcher.LaunchKNN(device.KNNArgs{
			Ref: make([]float32, 20), RefN: 10,
			Query: make([]float32, 6), QueryN: 3,
			Dim: 2, K: 2,
			Dist: dist, Index: idx,
		})

		require.NoError(t, d.LastError())
		require.Len(t, *calls, 1)
		assert.Equal(t, knnCall{refN: 10, queryN: 3, dim: 2, k: 2, dist: addr(dist), ind: addr(idx)}, (*calls)[0])
	})

	t.Run("Overflow", func(t *testing.T) {
		if strconv.IntSize == 32 {
			t.Skip("int is 32 bits")
		}
		d, calls, _ := fakeDevice(cudaSuccess)
		n := math.MaxInt32
		n++
		d.Stream().(device.KNNLauncher).LaunchKNN(device.KNNArgs{RefN: n, QueryN: 1, Dim: 1, K: 1})

		var fault *device.FaultError
		require.ErrorAs(t, d.LastError(), &fault)
		assert.Equal(t, KernelSymbol, fault.Launch)
		assert.Empty(t, *calls)
	})

	t.Run("SyncFailure", func(t *testing.T) {
		d, _, _ := fakeDevice(700)
		d.Stream().(device.KNNLauncher).LaunchKNN(device.KNNArgs{RefN: 1, QueryN: 1, Dim: 1, K: 1})

		err := d.LastError()
		var cerr *Error
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, int32(700), cerr.Code)
		assert.Equal(t, "cudaStreamSynchronize", cerr.Op)
		assert.Contains(t, err.Error(), "illegal memory access")
	})

	t.Run("Closed", func(t *testing.T) {
		d, calls, _ := fakeDevice(cudaSuccess)
		d.closed = true
		d.Stream().(device.KNNLauncher).LaunchKNN(device.KNNArgs{RefN: 1, QueryN: 1, Dim: 1, K: 1})

		assert.ErrorIs(t, d.LastError(), device.ErrStreamClosed)
		assert.Empty(t, *calls)
	})
}

type celsius float32

type label int32

func TestRelease(t *testing.T) {
	d, _, freed := fakeDevice(cudaSuccess)

	temps := []celsius{1, 2, 3}
	labels := []label{4}
	plain := []float32{5}

	release(d, temps)
	release(d, labels)
	d.Free(plain)
	release[celsius](d, nil)
	assert.Equal(t, []uintptr{addr(temps), addr(labels), addr(plain)}, *freed)

	d.closed = true
	release(d, temps)
	assert.Len(t, *freed, 3)
}
