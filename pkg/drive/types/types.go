// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package types holds the read-only-after-detection drive data model:
// MediaClass, DriveInfo, Capabilities, and the session/report records the
// orchestrator mutates as a wipe progresses.
package types

import "time"

// MediaClass classifies a device's underlying storage technology, which
// determines which wiper and freeze-mitigation strategies apply.
type MediaClass string

const (
	MediaSpinning MediaClass = "spinning"    // rotational HDD
	MediaFlash    MediaClass = "flash"       // SATA/SAS SSD
	MediaNVMe     MediaClass = "nvme"        // NVMe SSD
	MediaSMR      MediaClass = "smr"         // shingled magnetic recording, zoned
	MediaOptane   MediaClass = "optane"      // Intel Optane persistent memory
	MediaEMMC     MediaClass = "emmc"        // eMMC/UFS embedded flash
	MediaHybrid   MediaClass = "hybrid"      // SSHD: flash cache + platters
	MediaRAID     MediaClass = "raid_member" // member of a hardware RAID set
	MediaUnknown  MediaClass = "unknown"
)

// FreezeReason names why a drive's security features are locked,
// determining which mitigation strategies are compatible.
type FreezeReason string

const (
	FreezeSecurityLock    FreezeReason = "security_lock"
	FreezeBiosSetFrozen   FreezeReason = "bios_set_frozen"
	FreezeControllerPolicy FreezeReason = "controller_policy"
	FreezeRaidController  FreezeReason = "raid_controller"
	FreezeOsSecurity      FreezeReason = "os_security"
	FreezeUnknown         FreezeReason = "unknown"
	FreezeNone            FreezeReason = "none"
)

// HiddenArea describes an HPA or DCO discrepancy between the drive's
// reported and native maximum addressable sector.
type HiddenArea struct {
	CurrentMaxSectors uint64
	NativeMaxSectors  uint64
}

// SizeBytes is the difference between native and current max sectors,
// assuming 512-byte logical sectors.
func (h HiddenArea) SizeBytes() uint64 {
	if h.NativeMaxSectors <= h.CurrentMaxSectors {
		return 0
	}
	return (h.NativeMaxSectors - h.CurrentMaxSectors) * 512
}

// Capabilities records what a drive supports, resolved once at
// detection time and used by the orchestrator and freeze stack to pick
// strategies.
type Capabilities struct {
	SupportsSecureErase bool
	SupportsCryptoErase bool
	SupportsSanitize    bool // NVMe-only
	SupportsTrim        bool
	IsSelfEncrypting    bool // SED/OPAL
	IsFrozen            bool
	FreezeReason        FreezeReason
	HasHPA              bool
	HasDCO              bool
}

// DriveInfo is the immutable-after-detection record of one block device.
// Lifecycle: DriveInfo is read-only once Detector.Detect returns it;
// all mutable state lives in WipeSession.
type DriveInfo struct {
	Path         string
	Model        string
	Serial       string
	SizeBytes    uint64
	Class        MediaClass
	Capabilities Capabilities
	HPA          *HiddenArea
	DCO          *HiddenArea
	TemperatureC int
	IsMounted    bool
	IsSystemDisk bool
	DiscoveredAt time.Time
}

// HandleHPADCO names the hidden-area handling policy of a WipeConfig.
type HandleHPADCO string

const (
	HPAIgnore           HandleHPADCO = "ignore"
	HPADetect           HandleHPADCO = "detect"
	HPATemporaryRemove  HandleHPADCO = "temporary_remove"
	HPAPermanentRemove  HandleHPADCO = "permanent_remove"
)

// Algorithm mirrors WipeConfig.algorithm, spanning both the pkg/wipe
// overwrite algorithms and the drive-specific hardware erase methods.
type Algorithm string

const (
	AlgorithmDoD5220    Algorithm = "dod5220"
	AlgorithmGutmann    Algorithm = "gutmann"
	AlgorithmRandom     Algorithm = "random"
	AlgorithmZero       Algorithm = "zero"
	AlgorithmSecureErase Algorithm = "secure_erase"
	AlgorithmCryptoErase Algorithm = "crypto_erase"
	AlgorithmSanitize   Algorithm = "sanitize"
	AlgorithmTrimOnly   Algorithm = "trim_only"
)

// WipeConfig is the configuration passed to the orchestrator for one
// drive's wipe.
type WipeConfig struct {
	Algorithm             Algorithm
	Verify                bool
	HandleHPADCO          HandleHPADCO
	UseTrimAfter          bool
	TemperatureMonitoring bool
	MaxTemperatureCelsius int
	FreezeMitigation      bool
	SEDCryptoErase        bool
	SamplePercent         float64
	MinConfidence         float64
	MaxWaitSeconds        int
	Force                 bool
}

// DefaultWipeConfig returns sane defaults mirrored in the viper-backed
// config defaults (config/config.go's Wipe section).
func DefaultWipeConfig() WipeConfig {
	return WipeConfig{
		Algorithm:             AlgorithmDoD5220,
		Verify:                true,
		HandleHPADCO:          HPATemporaryRemove,
		UseTrimAfter:          true,
		TemperatureMonitoring: true,
		MaxTemperatureCelsius: 55,
		FreezeMitigation:      true,
		SamplePercent:         1.0,
		MinConfidence:         90.0,
		MaxWaitSeconds:        300,
	}
}

// DriveStatus is the per-drive terminal/in-flight state within a
// WipeSession.
type DriveStatus string

const (
	DriveStatusPending    DriveStatus = "pending"
	DriveStatusInProgress DriveStatus = "in_progress"
	DriveStatusCompleted  DriveStatus = "completed"
	DriveStatusFailed     DriveStatus = "failed"
	DriveStatusAborted    DriveStatus = "aborted"
)

// DriveRecord tracks one drive's progress within a WipeSession.
type DriveRecord struct {
	Path              string
	Status            DriveStatus
	Error             string
	CertificatePath   string
	VerificationScore float64
	Verified          bool
	StartedAt         time.Time
	EndedAt           time.Time
}

// WipeSession is the mutable record of one multi-drive erase run. Owned
// by the orchestrator for its lifetime; closed once every drive reaches
// a terminal state.
type WipeSession struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Drives    map[string]*DriveRecord
}

// NewWipeSession creates an empty session for the given drive paths.
func NewWipeSession(id string, paths []string) *WipeSession {
	s := &WipeSession{
		ID:        id,
		StartedAt: time.Now(),
		Drives:    make(map[string]*DriveRecord, len(paths)),
	}
	for _, p := range paths {
		s.Drives[p] = &DriveRecord{Path: p, Status: DriveStatusPending}
	}
	return s
}

// Done returns true once every drive has reached a terminal status.
func (s *WipeSession) Done() bool {
	for _, d := range s.Drives {
		switch d.Status {
		case DriveStatusCompleted, DriveStatusFailed, DriveStatusAborted:
		default:
			return false
		}
	}
	return true
}
