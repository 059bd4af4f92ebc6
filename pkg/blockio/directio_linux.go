// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package blockio

import "golang.org/x/sys/unix"

// directIOFlag is OR'd into the open(2) flags when Config.DirectIO asks
// for writes to bypass the page cache.
const directIOFlag = unix.O_DIRECT
