// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"maps"
	"net/http"
)

// Domain error code ranges (3000-3799), covering the erasure pipeline's
// eight domains: device discovery, block I/O, hidden areas, freeze
// mitigation, wipe execution, verification, certification and
// orchestration.
const (
	// Device Errors (3000-3099)
	DeviceNotFound = 3000 + iota
	DeviceMounted
	DeviceBusy
	DeviceDiscoveryFailed
	DeviceToolNotFound
	DeviceMediaClassUnknown
	DeviceRAIDMemberRefused
)

const (
	// Block I/O Errors (3100-3199)
	IOError = 3100 + iota
	ShortWrite
	IOReadFailed
	IOSyncFailed
	IOSeekOutOfRange
)

const (
	// Hidden Area Errors (3200-3299)
	HiddenAreaDetectFailed = 3200 + iota
	HiddenAreaRemoveFailed
	HiddenAreaRestoreFailed
	HiddenAreaOrderingViolation
	DCORemoveFailed
)

const (
	// Freeze Mitigation Errors (3300-3399)
	Frozen = 3300 + iota
	FreezeStrategyUnavailable
	FreezeStrategyFailed
	FreezeAllStrategiesExhausted
)

const (
	// Wipe Errors (3400-3499)
	Unsupported = 3400 + iota
	HardwareCommandFailed
	TemperatureExceeded
	Cancelled
	WipeAlgorithmUnsupported
	WipePassFailed
	WipeZoneWriteOrderViolation
)

const (
	// Verification Errors (3500-3599)
	VerificationBelowThreshold = 3500 + iota
	VerificationSelfTestFailed
	VerificationSamplingFailed
	VerificationRestoreFailed
)

const (
	// Certificate Errors (3600-3699)
	CertificateSignFailed = 3600 + iota
	CertificateIncompleteVerification
	CertificateMarshalFailed
)

const (
	// Orchestrator Errors (3700-3799)
	OrchestratorInvalidTransition = 3700 + iota
	OrchestratorSessionNotFound
	OrchestratorSessionConflict
	CommandPermissionDenied
)

func init() {
	domainErrorDefinitions := map[ErrorCode]struct {
		message    string
		domain     Domain
		httpStatus int
	}{
		DeviceNotFound:          {"Device not found", DomainDevice, http.StatusNotFound},
		DeviceMounted:           {"Device has mounted filesystems", DomainDevice, http.StatusConflict},
		DeviceBusy:              {"Device is busy", DomainDevice, http.StatusConflict},
		DeviceDiscoveryFailed:   {"Device discovery failed", DomainDevice, http.StatusInternalServerError},
		DeviceToolNotFound:      {"Required device tool not found", DomainDevice, http.StatusServiceUnavailable},
		DeviceMediaClassUnknown: {"Could not determine device media class", DomainDevice, http.StatusUnprocessableEntity},
		DeviceRAIDMemberRefused: {"Refusing to wipe RAID member without force", DomainDevice, http.StatusConflict},

		IOError:          {"I/O error", DomainIO, http.StatusInternalServerError},
		ShortWrite:       {"Short write to device", DomainIO, http.StatusInternalServerError},
		IOReadFailed:     {"Read from device failed", DomainIO, http.StatusInternalServerError},
		IOSyncFailed:     {"Sync to device failed", DomainIO, http.StatusInternalServerError},
		IOSeekOutOfRange: {"Seek offset out of device range", DomainIO, http.StatusBadRequest},

		HiddenAreaDetectFailed:      {"Failed to detect hidden area", DomainHiddenArea, http.StatusInternalServerError},
		HiddenAreaRemoveFailed:      {"Failed to remove hidden area", DomainHiddenArea, http.StatusInternalServerError},
		HiddenAreaRestoreFailed:     {"Failed to restore hidden area", DomainHiddenArea, http.StatusInternalServerError},
		HiddenAreaOrderingViolation: {"DCO must be removed before HPA", DomainHiddenArea, http.StatusConflict},
		DCORemoveFailed:             {"Failed to remove device configuration overlay", DomainHiddenArea, http.StatusInternalServerError},

		Frozen:                       {"Device is frozen", DomainFreeze, http.StatusConflict},
		FreezeStrategyUnavailable:    {"Freeze mitigation strategy unavailable", DomainFreeze, http.StatusServiceUnavailable},
		FreezeStrategyFailed:         {"Freeze mitigation strategy failed", DomainFreeze, http.StatusInternalServerError},
		FreezeAllStrategiesExhausted: {"All freeze mitigation strategies exhausted", DomainFreeze, http.StatusConflict},

		Unsupported:                 {"Operation not supported on this device", DomainWipe, http.StatusUnprocessableEntity},
		HardwareCommandFailed:       {"Hardware erase command failed", DomainWipe, http.StatusInternalServerError},
		TemperatureExceeded:         {"Device temperature exceeded safe ceiling", DomainWipe, http.StatusServiceUnavailable},
		Cancelled:                   {"Operation cancelled", DomainWipe, http.StatusOK},
		WipeAlgorithmUnsupported:    {"Wipe algorithm not supported for this media class", DomainWipe, http.StatusUnprocessableEntity},
		WipePassFailed:              {"Wipe pass failed", DomainWipe, http.StatusInternalServerError},
		WipeZoneWriteOrderViolation: {"Zone write pointer order violated", DomainWipe, http.StatusInternalServerError},

		VerificationBelowThreshold: {"Verification confidence below required threshold", DomainVerify, http.StatusUnprocessableEntity},
		VerificationSelfTestFailed: {"Pre-wipe self-test failed", DomainVerify, http.StatusInternalServerError},
		VerificationSamplingFailed: {"Post-wipe sampling failed", DomainVerify, http.StatusInternalServerError},
		VerificationRestoreFailed:  {"Failed to restore self-test area", DomainVerify, http.StatusInternalServerError},

		CertificateSignFailed:             {"Certificate signing failed", DomainCertificate, http.StatusInternalServerError},
		CertificateIncompleteVerification: {"Certificate requires a completed verification", DomainCertificate, http.StatusConflict},
		CertificateMarshalFailed:          {"Failed to serialize certificate", DomainCertificate, http.StatusInternalServerError},

		OrchestratorInvalidTransition: {"Invalid session state transition", DomainOrchestrator, http.StatusConflict},
		OrchestratorSessionNotFound:   {"Wipe session not found", DomainOrchestrator, http.StatusNotFound},
		OrchestratorSessionConflict:   {"Wipe session already active for device", DomainOrchestrator, http.StatusConflict},
		CommandPermissionDenied:       {"Permission denied", DomainCommand, http.StatusForbidden},
	}

	maps.Copy(errorDefinitions, domainErrorDefinitions)
}
