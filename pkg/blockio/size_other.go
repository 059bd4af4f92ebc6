// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package blockio

import "os"

// blockDeviceSize has no portable ioctl equivalent outside linux; the
// erasure targets are always Linux hosts in production, and tests use
// loopback files (which take the os.Stat branch in deviceSize) rather
// than real device nodes.
func blockDeviceSize(f *os.File) (uint64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}
