// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package pattern

import (
	"fmt"

	"github.com/stratastor/eraser/pkg/rng"
)

// gutmannPatterns is the 35-entry Gutmann schedule: passes 1-4 and 32-35
// are random, the remaining 27 are fixed byte sequences (including the
// three rotations of the 92 49 24 triplet, each appearing twice, and the
// three rotations of 6D B6 DB, each appearing once). A nil entry means
// "random pass".
var gutmannPatterns = [35][]byte{
	nil, nil, nil, nil,
	{0x55}, {0xAA}, {0x92, 0x49, 0x24},
	{0x49, 0x24, 0x92}, {0x24, 0x92, 0x49}, {0x00},
	{0x11}, {0x22}, {0x33}, {0x44}, {0x55}, {0x66},
	{0x77}, {0x88}, {0x99}, {0xAA}, {0xBB}, {0xCC},
	{0xDD}, {0xEE}, {0xFF}, {0x92, 0x49, 0x24},
	{0x49, 0x24, 0x92}, {0x24, 0x92, 0x49},
	{0x6D, 0xB6, 0xDB}, {0xB6, 0xDB, 0x6D}, {0xDB, 0x6D, 0xB6},
	nil, nil, nil, nil,
}

// GutmannFillers returns the 35 Fillers of the Gutmann schedule in pass
// order, each random pass backed by source.
func GutmannFillers(source rng.Source) []Filler {
	fillers := make([]Filler, len(gutmannPatterns))
	for i, seq := range gutmannPatterns {
		name := fmt.Sprintf("gutmann-pass-%02d", i+1)
		if seq == nil {
			fillers[i] = NewRandomFiller(name, source)
		} else {
			fillers[i] = NewBytesFiller(name, seq)
		}
	}
	return fillers
}

// GutmannPassCount is the fixed 35-pass Gutmann schedule length.
const GutmannPassCount = 35
