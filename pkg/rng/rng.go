// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package rng provides the random byte source used by the random-fill
// wipe passes and the Gutmann schedule's four random passes. It is
// injectable so verification and algorithm tests can substitute a
// deterministic source without touching crypto/rand.
package rng

import (
	"crypto/rand"
	"io"

	"github.com/stratastor/eraser/pkg/errors"
)

// Source fills a buffer with random bytes.
type Source interface {
	Fill(buf []byte) error
}

// CryptoSource is backed by crypto/rand.Reader, the OS CSPRNG.
type CryptoSource struct{}

// NewCryptoSource returns the default production Source.
func NewCryptoSource() *CryptoSource {
	return &CryptoSource{}
}

func (CryptoSource) Fill(buf []byte) error {
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return errors.Wrap(err, errors.IOReadFailed).WithMetadata("context", "failed to read random bytes")
	}
	return nil
}

// FixedSource replays a fixed byte sequence, repeating as needed. Used by
// tests that need reproducible "random" passes.
type FixedSource struct {
	Seed []byte
}

func (s FixedSource) Fill(buf []byte) error {
	if len(s.Seed) == 0 {
		return errors.New(errors.Internal, "fixed rng source has empty seed")
	}
	for i := range buf {
		buf[i] = s.Seed[i%len(s.Seed)]
	}
	return nil
}
