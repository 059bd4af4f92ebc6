// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"sync"

	"github.com/stratastor/logger"
)

// Bus fans out Events to every active subscriber plus the structured
// logger. One Bus is shared process-wide (see Default), the same way the
// lifecycle package keeps process-wide shutdown-hook state.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	logger      logger.Logger

	history   map[string][]Event
	historyMu sync.Mutex
}

var (
	defaultBus   *Bus
	defaultOnce  sync.Once
)

// Default returns the process-wide Bus singleton.
func Default() *Bus {
	defaultOnce.Do(func() {
		defaultBus = New(nil)
	})
	return defaultBus
}

// New creates a Bus. A nil logger disables log fan-out (used in tests).
func New(l logger.Logger) *Bus {
	return &Bus{
		subscribers: make(map[int]chan Event),
		logger:      l,
		history:     make(map[string][]Event),
	}
}

// Emit publishes an Event to every subscriber and appends it to that
// session's in-memory history. Subscriber channels are buffered and
// non-blocking: a slow consumer drops events rather than stalling the
// wipe loop.
func (b *Bus) Emit(e Event) {
	b.historyMu.Lock()
	b.history[e.SessionID] = append(b.history[e.SessionID], e)
	b.historyMu.Unlock()

	if b.logger != nil {
		level := "info"
		switch e.Level {
		case LevelWarn:
			level = "warn"
		case LevelError:
			level = "error"
		}
		b.logger.Info("progress event",
			"session_id", e.SessionID,
			"stage", e.Stage,
			"percent", e.Percent,
			"message", e.Message,
			"level", level,
		)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new listener and returns a channel of Events plus
// an unsubscribe function the caller must invoke when done.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, 64)
	b.subscribers[id] = ch
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
		close(ch)
	}
}

// History returns the Events emitted so far for a session, for clients
// that connect to the stream after the session started.
func (b *Bus) History(sessionID string) []Event {
	b.historyMu.Lock()
	defer b.historyMu.Unlock()
	out := make([]Event, len(b.history[sessionID]))
	copy(out, b.history[sessionID])
	return out
}

// Forget drops a session's retained history, called once its certificate
// has been assembled and delivered.
func (b *Bus) Forget(sessionID string) {
	b.historyMu.Lock()
	delete(b.history, sessionID)
	b.historyMu.Unlock()
}
