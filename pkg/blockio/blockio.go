// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package blockio provides bounded-memory, strictly-ordered buffered
// writes and reads against a block device (or a regular file standing in
// for one in tests), the shared primitive every wipe algorithm and the
// statistical verifier build on.
package blockio

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/stratastor/eraser/pkg/errors"
)

// MediaClass tunes the buffer size used for sequential I/O: spinning
// media benefits from large buffers that amortize seek cost, flash and
// NVMe saturate at smaller ones, and SMR zoned drives need writes shaped
// to the zone size.
type MediaClass string

const (
	MediaHDD     MediaClass = "hdd"
	MediaSSD     MediaClass = "ssd"
	MediaNVMe    MediaClass = "nvme"
	MediaSMR     MediaClass = "smr"
	MediaOptane  MediaClass = "optane"
	MediaEMMC    MediaClass = "emmc"
	MediaHybrid  MediaClass = "hybrid"
	MediaUnknown MediaClass = "unknown"
)

// Config tunes how a Handle issues sequential I/O: the buffer size that
// bounds a single wipe pass's memory, whether to bypass the page cache
// with O_DIRECT, how often to force a sync mid-pass, and (reserved for
// an async-queue writer) how many writes to keep in flight.
type Config struct {
	BufferSize      int
	DirectIO        bool
	SyncEveryNBytes uint64
	QueueDepth      int
}

// DefaultConfig returns the recommended I/O shape for a media class,
// bounding the memory a single wipe pass holds regardless of device
// size and picking a buffer/sync cadence suited to the media's seek and
// cache characteristics.
func DefaultConfig(class MediaClass) Config {
	switch class {
	case MediaHDD, MediaHybrid:
		return Config{BufferSize: 4 << 20, DirectIO: true, SyncEveryNBytes: 256 << 20, QueueDepth: 1}
	case MediaSMR:
		return Config{BufferSize: 256 << 10, DirectIO: true, SyncEveryNBytes: 64 << 20, QueueDepth: 1}
	case MediaEMMC:
		return Config{BufferSize: 512 << 10, DirectIO: false, SyncEveryNBytes: 32 << 20, QueueDepth: 1}
	case MediaNVMe, MediaOptane:
		return Config{BufferSize: 1 << 20, DirectIO: true, SyncEveryNBytes: 512 << 20, QueueDepth: 4}
	case MediaSSD:
		return Config{BufferSize: 1 << 20, DirectIO: true, SyncEveryNBytes: 256 << 20, QueueDepth: 4}
	default:
		return Config{BufferSize: 1 << 20, DirectIO: false, SyncEveryNBytes: 256 << 20, QueueDepth: 1}
	}
}

// BufferSize returns the recommended write chunk size for a media class;
// kept as a thin accessor over DefaultConfig for callers that only need
// the buffer dimension.
func BufferSize(class MediaClass) int {
	return DefaultConfig(class).BufferSize
}

// Handle wraps an *os.File opened on a block device (or loopback file)
// with the strictly-increasing-offset write discipline the wipe
// algorithms and verifier require.
type Handle struct {
	f    *os.File
	size uint64
	cfg  Config
}

// Open opens path for read/write without truncating, the mode required
// to overwrite an existing block device, using MediaUnknown's default
// (buffered, non-direct) I/O shape. Use OpenWithConfig when the media
// class is already known.
func Open(path string) (*Handle, error) {
	return OpenWithConfig(path, DefaultConfig(MediaUnknown))
}

// OpenWithConfig opens path the way Open does, but honors cfg's
// DirectIO setting (O_DIRECT, bypassing the page cache) and records cfg
// on the returned Handle so SequentialWrite can pick up its buffer size
// and sync cadence.
func OpenWithConfig(path string, cfg Config) (*Handle, error) {
	flags := os.O_RDWR
	if cfg.DirectIO {
		flags |= directIOFlag
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, errors.Wrap(err, errors.IOError).WithMetadata("context", "failed to open device").
			WithMetadata("path", path)
	}
	size, err := deviceSize(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig(MediaUnknown).BufferSize
	}
	return &Handle{f: f, size: size, cfg: cfg}, nil
}

// Size returns the device's byte size as determined at Open time.
func (h *Handle) Size() uint64 { return h.size }

// Close closes the underlying file. Callers must Close even after a
// cancelled operation, since the handle owns the open file descriptor
// regardless of how the operation using it ended.
func (h *Handle) Close() error {
	return h.f.Close()
}

const (
	maxWriteRetries    = 5
	writeRetryBaseWait = 20 * time.Millisecond
)

// WriteAt writes buf at the given offset. Callers issuing a sequence of
// WriteAt calls within one pass must do so in strictly increasing offset
// order; this type does not enforce that itself, since the wipe
// algorithms already iterate offsets monotonically - the invariant is
// structural, not runtime-checked.
//
// A permission error is returned at once, without a retry. A short write
// or any other I/O error is retried from the point it left off, up to
// maxWriteRetries times, with the wait between attempts doubling each
// time. A write that still hasn't completed after the bound is given up
// as failed.
func (h *Handle) WriteAt(ctx context.Context, buf []byte, offset uint64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	written := 0
	wait := writeRetryBaseWait
	var lastErr error

	for attempt := 0; ; attempt++ {
		n, err := h.f.WriteAt(buf[written:], int64(offset)+int64(written))
		written += n
		if written == len(buf) {
			return written, nil
		}
		lastErr = err
		if err != nil && os.IsPermission(err) {
			break
		}

		if attempt >= maxWriteRetries {
			break
		}
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	if lastErr != nil {
		return written, errors.Wrap(lastErr, errors.IOError).WithMetadata("context", "write failed").
			WithMetadata("offset", itoa(offset))
	}
	return written, errors.New(errors.ShortWrite, "short write exceeded retry budget").
		WithMetadata("offset", itoa(offset)).
		WithMetadata("wanted", itoa(uint64(len(buf)))).
		WithMetadata("got", itoa(uint64(written)))
}

// ReadAt reads into buf at the given offset, used by the verifier's
// post-wipe sampling and the pre-wipe self-test round trip.
func (h *Handle) ReadAt(buf []byte, offset uint64) (int, error) {
	n, err := h.f.ReadAt(buf, int64(offset))
	if err != nil && err != io.EOF {
		return n, errors.Wrap(err, errors.IOReadFailed).WithMetadata("context", "read failed").
			WithMetadata("offset", itoa(offset))
	}
	return n, nil
}

// Sync flushes to stable storage. SequentialWrite calls it at the
// configured SyncEveryNBytes cadence, and callers also sync between
// wipe passes so each pass's writes are durable before the next begins.
func (h *Handle) Sync() error {
	if err := h.f.Sync(); err != nil {
		return errors.Wrap(err, errors.IOSyncFailed).WithMetadata("context", "sync failed")
	}
	return nil
}

// FillFunc produces one buffer's worth of pass content.
type FillFunc func(buf []byte) error

// ProgressFunc reports cumulative bytes written within a SequentialWrite
// call.
type ProgressFunc func(bytesDone uint64)

// SequentialWrite writes bytesTotal bytes to h starting at offset 0, in
// strictly increasing offset order, filling each buffer via fill and
// reporting cumulative progress via progress. It owns the buffer-sizing,
// short-write-retry, and periodic-sync concerns so wipe algorithms only
// supply pass content, not an I/O loop.
func SequentialWrite(ctx context.Context, h *Handle, bytesTotal uint64, fill FillFunc, progress ProgressFunc) error {
	bufSize := h.cfg.BufferSize
	buf := make([]byte, bufSize)

	var offset uint64
	var sinceSync uint64

	for offset < bytesTotal {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := uint64(bufSize)
		if remaining := bytesTotal - offset; remaining < n {
			n = remaining
		}

		if err := fill(buf[:n]); err != nil {
			return err
		}
		if _, err := h.WriteAt(ctx, buf[:n], offset); err != nil {
			return err
		}

		offset += n
		sinceSync += n

		if h.cfg.SyncEveryNBytes > 0 && sinceSync >= h.cfg.SyncEveryNBytes {
			if err := h.Sync(); err != nil {
				return err
			}
			sinceSync = 0
		}

		if progress != nil {
			progress(offset)
		}
	}

	return nil
}

func deviceSize(f *os.File) (uint64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, errors.IOError).WithMetadata("context", "failed to stat device")
	}
	if info.Mode()&os.ModeDevice == 0 {
		// Regular file standing in for a device (loopback test fixture).
		return uint64(info.Size()), nil
	}
	return blockDeviceSize(f)
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
