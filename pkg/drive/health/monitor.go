// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package health implements the `health <device|all> [--self-test]
// [--monitor]` subcommand's SMART polling and self-test dispatch.
package health

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"

	"github.com/stratastor/eraser/pkg/drive/tools"
	"github.com/stratastor/eraser/pkg/errors"
)

// Level is the coarse health verdict derived from SMART attributes.
type Level string

const (
	LevelUnknown  Level = "unknown"
	LevelHealthy  Level = "healthy"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
	LevelFailed   Level = "failed"
)

// Thresholds bounds the raw SMART attributes this package reads to
// derive a Level.
type Thresholds struct {
	ReallocatedSectorsWarning  int
	ReallocatedSectorsCritical int
	PendingSectorsWarning      int
	MaxTemperatureCelsius      int
}

// DefaultThresholds mirrors commonly-cited SMART failure thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ReallocatedSectorsWarning:  10,
		ReallocatedSectorsCritical: 100,
		PendingSectorsWarning:      1,
		MaxTemperatureCelsius:      60,
	}
}

// Status is one device's health snapshot.
type Status struct {
	Path         string
	Level        Level
	Reason       string
	TemperatureC int
	Passed       bool
	CheckedAt    time.Time
}

type smartctlHealthOutput struct {
	SmartStatus struct {
		Passed bool `json:"passed"`
	} `json:"smart_status"`
	Temperature struct {
		Current int `json:"current"`
	} `json:"temperature"`
	ATASmartAttributes struct {
		Table []struct {
			ID       int `json:"id"`
			RawValue int `json:"raw_value"`
		} `json:"table"`
	} `json:"ata_smart_attributes"`
}

const (
	attrReallocatedSectorCount = 5
	attrPendingSectorCount     = 197
)

// Monitor polls SMART data and caches the latest verdict per device.
type Monitor struct {
	logger     logger.Logger
	smartctl   *tools.SmartctlExecutor
	thresholds Thresholds

	mu    sync.RWMutex
	cache map[string]*Status
}

// NewMonitor builds a Monitor.
func NewMonitor(l logger.Logger, smartctl *tools.SmartctlExecutor, thresholds Thresholds) *Monitor {
	return &Monitor{logger: l, smartctl: smartctl, thresholds: thresholds, cache: make(map[string]*Status)}
}

// Check runs a single SMART health read for path and caches the result.
func (m *Monitor) Check(ctx context.Context, path string) (*Status, error) {
	output, err := m.smartctl.GetHealth(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.HardwareCommandFailed).WithMetadata("device", path)
	}

	var parsed smartctlHealthOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.HardwareCommandFailed).WithMetadata("device", path)
	}

	status := m.evaluate(path, parsed)
	m.mu.Lock()
	m.cache[path] = status
	m.mu.Unlock()
	return status, nil
}

// CheckAll runs Check concurrently across paths, bounded to 4 in
// flight at once to keep SMART command load on the bus modest.
func (m *Monitor) CheckAll(ctx context.Context, paths []string) []*Status {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		out  []*Status
		sema = make(chan struct{}, 4)
	)

	for _, p := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sema <- struct{}{}
			defer func() { <-sema }()

			status, err := m.Check(ctx, path)
			if err != nil {
				m.logger.Warn("smart health check failed", "device", path, "error", err)
				return
			}
			mu.Lock()
			out = append(out, status)
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return out
}

// StartSelfTest dispatches a SMART self-test, short by default or
// extensive when requested, and returns immediately (the test runs on
// the drive's own firmware schedule).
func (m *Monitor) StartSelfTest(ctx context.Context, path string, extensive bool) error {
	var err error
	if extensive {
		_, err = m.smartctl.StartExtensiveTest(ctx, path)
	} else {
		_, err = m.smartctl.StartQuickTest(ctx, path)
	}
	if err != nil {
		return errors.Wrap(err, errors.HardwareCommandFailed).WithMetadata("device", path)
	}
	return nil
}

// Watch polls Check for paths on the given interval until ctx is
// cancelled, invoking onUpdate with each fresh Status. This backs the
// `health --monitor` flag's continuous mode, scheduled as a gocron job,
// with a plain ticker as the fallback when the scheduler cannot start.
func (m *Monitor) Watch(ctx context.Context, paths []string, interval time.Duration, onUpdate func(Status)) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		m.logger.Warn("failed to start health monitor scheduler, falling back to a plain ticker", "error", err)
		m.watchWithTicker(ctx, paths, interval, onUpdate)
		return
	}

	poll := func() {
		for _, s := range m.CheckAll(ctx, paths) {
			onUpdate(*s)
		}
	}
	poll()

	if _, err := scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(poll)); err != nil {
		m.logger.Warn("failed to schedule health monitor job, falling back to a plain ticker", "error", err)
		m.watchWithTicker(ctx, paths, interval, onUpdate)
		return
	}

	scheduler.Start()
	<-ctx.Done()
	_ = scheduler.Shutdown()
}

func (m *Monitor) watchWithTicker(ctx context.Context, paths []string, interval time.Duration, onUpdate func(Status)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for _, s := range m.CheckAll(ctx, paths) {
			onUpdate(*s)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Cached returns the last cached Status for path, if any.
func (m *Monitor) Cached(path string) (*Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.cache[path]
	if !ok {
		return nil, false
	}
	out := *s
	return &out, true
}

func (m *Monitor) evaluate(path string, raw smartctlHealthOutput) *Status {
	status := &Status{
		Path:         path,
		TemperatureC: raw.Temperature.Current,
		Passed:       raw.SmartStatus.Passed,
		CheckedAt:    time.Now(),
		Level:        LevelHealthy,
	}

	if !raw.SmartStatus.Passed {
		status.Level = LevelFailed
		status.Reason = "smart overall-health self-assessment failed"
		return status
	}

	reallocated := attrValue(raw, attrReallocatedSectorCount)
	pending := attrValue(raw, attrPendingSectorCount)

	switch {
	case reallocated >= m.thresholds.ReallocatedSectorsCritical:
		status.Level = LevelCritical
		status.Reason = "reallocated sector count above critical threshold"
	case reallocated >= m.thresholds.ReallocatedSectorsWarning || pending >= m.thresholds.PendingSectorsWarning:
		status.Level = LevelWarning
		status.Reason = "reallocated or pending sector count above warning threshold"
	case m.thresholds.MaxTemperatureCelsius > 0 && raw.Temperature.Current > m.thresholds.MaxTemperatureCelsius:
		status.Level = LevelWarning
		status.Reason = "temperature above warning threshold"
	}

	return status
}

func attrValue(raw smartctlHealthOutput, id int) int {
	for _, a := range raw.ATASmartAttributes.Table {
		if a.ID == id {
			return a.RawValue
		}
	}
	return 0
}
