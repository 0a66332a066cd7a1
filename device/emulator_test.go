package device

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmulatorRunsEveryLane(t *testing.T) {
	emu := NewEmulator(func(o *EmulatorOptions) {
		o.BlockSize = 7
		o.Parallelism = 3
	})
	defer emu.Close()

	out := make([]int, 100)
	emu.Stream().Launch(Launch{Name: "fill", Lanes: len(out), Body: func(lane int) error {
		out[lane] = lane * 2
		return nil
	}})
	require.NoError(t, emu.LastError())

	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
}

func TestEmulatorLaunchOrder(t *testing.T) {
	emu := NewEmulator()
	defer emu.Close()

	buf := make([]int, 16)
	emu.Stream().Launch(Launch{Name: "first", Lanes: len(buf), Body: func(lane int) error {
		buf[lane] = lane
		return nil
	}})
	emu.Stream().Launch(Launch{Name: "second", Lanes: len(buf), Body: func(lane int) error {
		buf[lane] *= 10
		return nil
	}})
	require.NoError(t, emu.LastError())
	assert.Equal(t, 150, buf[15])
}

func TestEmulatorStickyFault(t *testing.T) {
	boom := errors.New("boom")
	emu := NewEmulator(func(o *EmulatorOptions) {
		o.FaultInjector = func(launch string, lane int) error {
			if launch == "bad" && lane == 3 {
				return boom
			}
			return nil
		}
	})
	defer emu.Close()

	var after atomic.Int32
	emu.Stream().Launch(Launch{Name: "bad", Lanes: 8, Body: func(int) error { return nil }})
	emu.Stream().Launch(Launch{Name: "after", Lanes: 8, Body: func(int) error {
		after.Add(1)
		return nil
	}})

	err := emu.LastError()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var fault *FaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "bad", fault.Launch)
	assert.Equal(t, 3, fault.Lane)
	assert.Zero(t, after.Load(), "launches behind a fault are skipped")

	// Cleared after being read.
	assert.NoError(t, emu.LastError())

	emu.Stream().Launch(Launch{Name: "after", Lanes: 8, Body: func(int) error {
		after.Add(1)
		return nil
	}})
	require.NoError(t, emu.LastError())
	assert.Equal(t, int32(8), after.Load())
}

func TestEmulatorLanePanic(t *testing.T) {
	emu := NewEmulator()
	defer emu.Close()

	emu.Stream().Launch(Launch{Name: "panics", Lanes: 4, Body: func(lane int) error {
		if lane == 2 {
			var s []int
			_ = s[lane]
		}
		return nil
	}})

	var fault *FaultError
	require.ErrorAs(t, emu.LastError(), &fault)
	assert.Equal(t, 2, fault.Lane)
}

func TestEmulatorInvalidLaunch(t *testing.T) {
	emu := NewEmulator()
	defer emu.Close()

	emu.Stream().Launch(Launch{Name: "nobody", Lanes: 1})
	assert.ErrorIs(t, emu.LastError(), ErrInvalidLaunch)

	emu.Stream().Launch(Launch{Name: "empty", Lanes: 0})
	assert.NoError(t, emu.LastError())
}

func TestEmulatorMemoryLimit(t *testing.T) {
	emu := NewEmulator(func(o *EmulatorOptions) {
		o.MemoryLimit = 1024
	})
	defer emu.Close()

	a, err := emu.AllocFloat32(200)
	require.NoError(t, err)
	assert.Len(t, a, 200)
	assert.Equal(t, int64(800), emu.Allocated())

	_, err = emu.AllocFloat32(100)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, int64(800), emu.Allocated())

	emu.Free(a)
	assert.Zero(t, emu.Allocated())

	_, err = emu.AllocFloat32(-1)
	assert.Error(t, err)
}

func TestEmulatorClosed(t *testing.T) {
	emu := NewEmulator()
	require.NoError(t, emu.Close())
	require.NoError(t, emu.Close())

	emu.Stream().Launch(Launch{Name: "late", Lanes: 1, Body: func(int) error { return nil }})
	assert.ErrorIs(t, emu.LastError(), ErrStreamClosed)
}

func TestFaultErrorMessage(t *testing.T) {
	err := &FaultError{Launch: "knn.select", Lane: 4, Err: errors.New("x")}
	assert.Equal(t, `device: launch "knn.select" lane 4: x`, err.Error())

	err = &FaultError{Launch: "knn", Lane: -1, Err: errors.New("y")}
	assert.Equal(t, `device: launch "knn": y`, err.Error())
}
