// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package blockio

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func loopback(t *testing.T, size int64) *Handle {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "eraser-loopback-*")
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())

	h, err := Open(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestSequentialWriteCoversWholeRangeInOrder(t *testing.T) {
	h := loopback(t, 3*64*1024)
	h.cfg.BufferSize = 64 * 1024

	var offsets []uint64
	fill := func(buf []byte) error {
		for i := range buf {
			buf[i] = 0xAB
		}
		return nil
	}
	var lastProgress uint64
	err := SequentialWrite(context.Background(), h, h.Size(), fill, func(bytesDone uint64) {
		offsets = append(offsets, bytesDone)
		require.GreaterOrEqual(t, bytesDone, lastProgress)
		lastProgress = bytesDone
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{64 * 1024, 128 * 1024, 192 * 1024}, offsets)

	buf := make([]byte, h.Size())
	n, err := h.ReadAt(buf, 0)
	require.NoError(t, err)
	require.EqualValues(t, len(buf), n)
	for _, b := range buf {
		require.Equal(t, byte(0xAB), b)
	}
}

func TestSequentialWriteStopsOnCancellation(t *testing.T) {
	h := loopback(t, 1<<20)
	h.cfg.BufferSize = 4096

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := SequentialWrite(ctx, h, h.Size(), func(buf []byte) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return nil
	}, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, calls)
}

func TestDefaultConfigBufferSizesByMediaClass(t *testing.T) {
	require.Equal(t, 4<<20, DefaultConfig(MediaHDD).BufferSize)
	require.Equal(t, 256<<10, DefaultConfig(MediaSMR).BufferSize)
	require.Equal(t, 1<<20, DefaultConfig(MediaNVMe).BufferSize)
	require.True(t, DefaultConfig(MediaNVMe).DirectIO)
	require.False(t, DefaultConfig(MediaUnknown).DirectIO)
}
