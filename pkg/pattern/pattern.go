// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package pattern generates the fixed and pseudo-random fill buffers the
// wipe algorithms write. A Filler owns one pass's content; callers ask it
// to fill successive buffers without re-deriving the pattern each time.
package pattern

import "github.com/stratastor/eraser/pkg/rng"

// Filler produces the bytes for one wipe pass.
type Filler interface {
	// Fill writes this pass's content into buf, which may be shorter
	// than a full pattern period (callers always call with the same
	// buffer size except for the final, possibly short, write).
	Fill(buf []byte) error
	// Name identifies the pass for progress reporting and certificates.
	Name() string
}

// bytesFiller repeats a fixed byte sequence across the buffer.
type bytesFiller struct {
	name string
	seq  []byte
}

// NewBytesFiller returns a Filler that repeats seq across every buffer.
// A single-byte seq (e.g. []byte{0x00}) is the common case.
func NewBytesFiller(name string, seq []byte) Filler {
	return &bytesFiller{name: name, seq: seq}
}

func (f *bytesFiller) Name() string { return f.name }

func (f *bytesFiller) Fill(buf []byte) error {
	if len(f.seq) == 1 {
		b := f.seq[0]
		for i := range buf {
			buf[i] = b
		}
		return nil
	}
	n := len(f.seq)
	for i := range buf {
		buf[i] = f.seq[i%n]
	}
	return nil
}

// randomFiller delegates to an rng.Source, used for the Random algorithm
// and the Gutmann schedule's four random passes.
type randomFiller struct {
	name   string
	source rng.Source
}

// NewRandomFiller returns a Filler backed by source.
func NewRandomFiller(name string, source rng.Source) Filler {
	return &randomFiller{name: name, source: source}
}

func (f *randomFiller) Name() string { return f.name }

func (f *randomFiller) Fill(buf []byte) error {
	return f.source.Fill(buf)
}

// Zero returns the all-zero single-pass filler, distinct from the DoD
// 5220.22-M three-pass algorithm even though DoD's first pass is also
// all-zero.
func Zero() Filler {
	return NewBytesFiller("zero", []byte{0x00})
}
