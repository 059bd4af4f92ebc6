// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package blockio

// O_DIRECT has no portable equivalent; non-Linux builds fall back to
// buffered I/O regardless of Config.DirectIO.
const directIOFlag = 0
