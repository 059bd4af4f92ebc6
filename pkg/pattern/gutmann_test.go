// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratastor/eraser/pkg/rng"
)

func TestGutmannScheduleGolden(t *testing.T) {
	fillers := GutmannFillers(rng.FixedSource{Seed: []byte{0x7A}})
	require.Len(t, fillers, 35)

	cases := []struct {
		index int
		want  []byte
	}{
		{4, []byte{0x55}},
		{5, []byte{0xAA}},
		{6, []byte{0x92, 0x49, 0x24}},
		{9, []byte{0x00}},
		{24, []byte{0xFF}},
		{28, []byte{0x6D, 0xB6, 0xDB}},
		{30, []byte{0xDB, 0x6D, 0xB6}},
	}

	for _, c := range cases {
		buf := make([]byte, len(c.want)*3)
		require.NoError(t, fillers[c.index].Fill(buf))
		for i, b := range buf {
			require.Equalf(t, c.want[i%len(c.want)], b, "pass %d byte %d", c.index+1, i)
		}
	}
}

func TestGutmannRandomPassesUseSource(t *testing.T) {
	fillers := GutmannFillers(rng.FixedSource{Seed: []byte{0x11, 0x22}})

	randomIndexes := []int{0, 1, 2, 3, 31, 32, 33, 34}
	for _, idx := range randomIndexes {
		buf := make([]byte, 4)
		require.NoError(t, fillers[idx].Fill(buf))
		require.Equal(t, []byte{0x11, 0x22, 0x11, 0x22}, buf)
	}
}
