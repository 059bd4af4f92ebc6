// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package wipe

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratastor/eraser/pkg/blockio"
	"github.com/stratastor/eraser/pkg/rng"
)

func loopback(t *testing.T, size int64) *blockio.Handle {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "eraser-loopback-*")
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())

	h, err := blockio.Open(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestZeroAlgorithmWritesAllZero(t *testing.T) {
	h := loopback(t, 64*1024)

	passes, err := Run(context.Background(), h, AlgorithmZero, rng.NewCryptoSource(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, passes)

	buf := make([]byte, h.Size())
	_, err = h.ReadAt(buf, 0)
	require.NoError(t, err)
	for _, b := range buf {
		require.Equal(t, byte(0x00), b)
	}
}

func TestDoD5220PassCount(t *testing.T) {
	h := loopback(t, 32*1024)

	var passNames []string
	passes, err := Run(context.Background(), h, AlgorithmDoD5220, rng.NewCryptoSource(), func(p PassProgress) {
		if len(passNames) == 0 || passNames[len(passNames)-1] != p.PassName {
			passNames = append(passNames, p.PassName)
		}
	})
	require.NoError(t, err)
	require.Equal(t, 3, passes)
	require.Equal(t, []string{"dod-pass-1", "dod-pass-2", "dod-pass-3"}, passNames)
}

func TestGutmannSchedulePassCount(t *testing.T) {
	n, err := PassCount(AlgorithmGutmann)
	require.NoError(t, err)
	require.Equal(t, 35, n)

	h := loopback(t, 16*1024)
	passes, err := Run(context.Background(), h, AlgorithmGutmann, rng.FixedSource{Seed: []byte{0x42}}, nil)
	require.NoError(t, err)
	require.Equal(t, 35, passes)
}

func TestRunRespectsCancellation(t *testing.T) {
	h := loopback(t, 16*1024*1024)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	passes, err := Run(ctx, h, AlgorithmGutmann, rng.NewCryptoSource(), nil)
	require.Error(t, err)
	require.Equal(t, 0, passes)
}

func TestUnsupportedAlgorithm(t *testing.T) {
	h := loopback(t, 4096)
	_, err := Run(context.Background(), h, Algorithm("bogus"), rng.NewCryptoSource(), nil)
	require.Error(t, err)
}
