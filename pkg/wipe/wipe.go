// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wipe implements the pattern/random overwrite algorithms:
// Zero, Random, DoD 5220.22-M (3-pass), and Gutmann (35-pass). Each
// algorithm is parameterised over pkg/blockio for I/O and pkg/pattern
// for pass content, and respects cooperative cancellation at buffer
// boundaries.
package wipe

import (
	"context"
	"fmt"

	"github.com/stratastor/eraser/pkg/blockio"
	"github.com/stratastor/eraser/pkg/errors"
	"github.com/stratastor/eraser/pkg/pattern"
	"github.com/stratastor/eraser/pkg/rng"
)

// Algorithm names the overwrite strategy, mirroring WipeConfig.algorithm.
type Algorithm string

const (
	AlgorithmZero     Algorithm = "zero"
	AlgorithmRandom   Algorithm = "random"
	AlgorithmDoD5220  Algorithm = "dod5220"
	AlgorithmGutmann  Algorithm = "gutmann"
)

// PassProgress reports progress within a single pass of a single
// algorithm run, forwarded by the orchestrator into pkg/progress Events.
type PassProgress struct {
	PassIndex  int
	PassCount  int
	PassName   string
	BytesDone  uint64
	BytesTotal uint64
}

// ProgressFunc receives PassProgress updates at buffer boundaries.
type ProgressFunc func(PassProgress)

// Run executes algorithm against h, writing size bytes from offset 0 and
// syncing between passes. It returns the number of passes completed
// before success, cancellation, or a write error.
func Run(ctx context.Context, h *blockio.Handle, algorithm Algorithm, source rng.Source, onProgress ProgressFunc) (int, error) {
	fillers, err := fillersFor(algorithm, source)
	if err != nil {
		return 0, err
	}

	size := h.Size()

	for i, f := range fillers {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := runPass(ctx, h, f, size, i, len(fillers), onProgress); err != nil {
			return i, err
		}
		if err := h.Sync(); err != nil {
			return i, err
		}
	}

	return len(fillers), nil
}

func fillersFor(algorithm Algorithm, source rng.Source) ([]pattern.Filler, error) {
	switch algorithm {
	case AlgorithmZero:
		return []pattern.Filler{pattern.Zero()}, nil
	case AlgorithmRandom:
		return []pattern.Filler{pattern.NewRandomFiller("random", source)}, nil
	case AlgorithmDoD5220:
		return []pattern.Filler{
			pattern.NewBytesFiller("dod-pass-1", []byte{0x00}),
			pattern.NewBytesFiller("dod-pass-2", []byte{0xFF}),
			pattern.NewRandomFiller("dod-pass-3", source),
		}, nil
	case AlgorithmGutmann:
		return pattern.GutmannFillers(source), nil
	default:
		return nil, errors.New(errors.WipeAlgorithmUnsupported, "unsupported wipe algorithm").
			WithMetadata("algorithm", string(algorithm))
	}
}

// runPass writes one pass across the full device, buffer by buffer, in
// strictly increasing offset order, delegating the write loop itself to
// blockio.SequentialWrite so every algorithm shares one retry and
// sync-cadence implementation.
func runPass(ctx context.Context, h *blockio.Handle, f pattern.Filler, size uint64, passIdx, passCount int, onProgress ProgressFunc) error {
	err := blockio.SequentialWrite(ctx, h, size, f.Fill, func(bytesDone uint64) {
		if onProgress != nil {
			onProgress(PassProgress{
				PassIndex:  passIdx,
				PassCount:  passCount,
				PassName:   f.Name(),
				BytesDone:  bytesDone,
				BytesTotal: size,
			})
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return errors.Wrap(err, errors.WipePassFailed).WithMetadata("pass", f.Name())
	}
	return nil
}

// PassCount returns how many passes algorithm performs, without running
// it.
func PassCount(algorithm Algorithm) (int, error) {
	switch algorithm {
	case AlgorithmZero, AlgorithmRandom:
		return 1, nil
	case AlgorithmDoD5220:
		return 3, nil
	case AlgorithmGutmann:
		return pattern.GutmannPassCount, nil
	default:
		return 0, fmt.Errorf("unsupported algorithm %q", algorithm)
	}
}
