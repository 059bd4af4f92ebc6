// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package blockio

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/stratastor/eraser/pkg/errors"
)

// blockDeviceSize queries the kernel for a block device's size via the
// BLKGETSIZE64 ioctl, since os.Stat reports 0 for device nodes.
func blockDeviceSize(f *os.File) (uint64, error) {
	var devsize uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&devsize))); errno != 0 {
		return 0, errors.Wrap(errno, errors.IOError).WithMetadata("context", "BLKGETSIZE64 failed")
	}
	return devsize, nil
}
