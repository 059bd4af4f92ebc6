// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package certificate assembles a WipeSession and VerificationReport
// into the signed, serialisable certificate artifact.
package certificate

import (
	"encoding/json"
	"time"

	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/errors"
	"github.com/stratastor/eraser/pkg/verify"
)

const SchemaVersion = "1.0"

// Signer signs a canonical payload and names the algorithm used. Key
// management is out of scope here; production deployments inject an
// HSM- or KMS-backed Signer in place of NoopSigner.
type Signer interface {
	Algorithm() string
	Sign(payload []byte) ([]byte, error)
}

// NoopSigner produces an empty signature, used for tests and
// development builds where no signing authority is configured.
type NoopSigner struct{}

func (NoopSigner) Algorithm() string { return "none" }

func (NoopSigner) Sign(payload []byte) ([]byte, error) {
	return nil, nil
}

// DriveSummary is the certificate's drive section.
type DriveSummary struct {
	Path   string          `json:"path"`
	Model  string          `json:"model"`
	Serial string          `json:"serial"`
	Size   uint64          `json:"size_bytes"`
	Class  types.MediaClass `json:"class"`
}

// WipeSummary is the certificate's wipe section.
type WipeSummary struct {
	Algorithm       types.Algorithm `json:"algorithm"`
	PassesCompleted int             `json:"passes_completed"`
	DurationSeconds float64         `json:"duration_seconds"`
	OperatorID      string          `json:"operator_id,omitempty"`
}

// VerificationSummary is the certificate's compact verification
// section; EnhancedVerification carries the full report when requested.
type VerificationSummary struct {
	Verified           bool      `json:"verified"`
	EntropyScore       float64   `json:"entropy_score"`
	RecoveryTestPassed bool      `json:"recovery_test_passed"`
	Timestamp          time.Time `json:"timestamp"`
}

// Signature is the certificate's signature section.
type Signature struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value,omitempty"`
}

// Certificate is the full JSON artifact handed to an operator after a
// wipe session closes.
type Certificate struct {
	SchemaVersion         string                `json:"schema_version"`
	SessionID             string                `json:"session_id"`
	GeneratedAt           time.Time             `json:"generated_at"`
	Drive                 DriveSummary          `json:"drive"`
	Wipe                  WipeSummary           `json:"wipe"`
	Verification          VerificationSummary   `json:"verification"`
	EnhancedVerification  *verify.Report        `json:"enhanced_verification,omitempty"`
	Error                 string                `json:"error,omitempty"`
	Signature             Signature             `json:"signature"`
}

// Assembler builds and signs certificates.
type Assembler struct {
	signer Signer
}

// NewAssembler builds an Assembler. Pass NoopSigner{} when no signing
// authority is configured.
func NewAssembler(signer Signer) *Assembler {
	if signer == nil {
		signer = NoopSigner{}
	}
	return &Assembler{signer: signer}
}

// AssembleInput carries everything needed to build one certificate.
type AssembleInput struct {
	SessionID      string
	Drive          *types.DriveInfo
	Algorithm      types.Algorithm
	PassesCompleted int
	Duration       time.Duration
	OperatorID     string
	Report         *verify.Report
	IncludeEnhanced bool
	MinConfidence  float64
	SessionError   string
}

// Assemble builds a Certificate from in, scores verified against
// MinConfidence, and signs the canonical JSON payload. Certificate
// emission still proceeds when in.SessionError is set: the certificate
// then records verified: false with the error embedded, so a failed
// session still produces an auditable artifact.
func (a *Assembler) Assemble(in AssembleInput) (*Certificate, error) {
	cert := &Certificate{
		SchemaVersion: SchemaVersion,
		SessionID:     in.SessionID,
		GeneratedAt:   time.Now().UTC(),
		Drive: DriveSummary{
			Path:   in.Drive.Path,
			Model:  in.Drive.Model,
			Serial: in.Drive.Serial,
			Size:   in.Drive.SizeBytes,
			Class:  in.Drive.Class,
		},
		Wipe: WipeSummary{
			Algorithm:       in.Algorithm,
			PassesCompleted: in.PassesCompleted,
			DurationSeconds: in.Duration.Seconds(),
			OperatorID:      in.OperatorID,
		},
		Error: in.SessionError,
	}

	if in.Report != nil {
		verified := in.SessionError == "" && in.Report.Verified(in.MinConfidence)
		cert.Verification = VerificationSummary{
			Verified:           verified,
			EntropyScore:       in.Report.Entropy,
			RecoveryTestPassed: in.Report.SelfTest.Passed,
			Timestamp:          in.Report.Timestamp,
		}
		if in.IncludeEnhanced {
			cert.EnhancedVerification = in.Report
		}
	}

	payload, err := json.Marshal(certSignablePayload(cert))
	if err != nil {
		return nil, errors.Wrap(err, errors.CertificateMarshalFailed)
	}

	sigBytes, err := a.signer.Sign(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CertificateSignFailed)
	}
	cert.Signature = Signature{
		Algorithm: a.signer.Algorithm(),
		Value:     encodeSignature(sigBytes),
	}

	return cert, nil
}

// certSignablePayload excludes the signature field itself from the
// canonical payload the signer signs over.
func certSignablePayload(c *Certificate) any {
	return struct {
		SchemaVersion        string                `json:"schema_version"`
		SessionID            string                `json:"session_id"`
		GeneratedAt          time.Time             `json:"generated_at"`
		Drive                DriveSummary          `json:"drive"`
		Wipe                 WipeSummary           `json:"wipe"`
		Verification         VerificationSummary   `json:"verification"`
		EnhancedVerification *verify.Report        `json:"enhanced_verification,omitempty"`
		Error                string                `json:"error,omitempty"`
	}{
		SchemaVersion:        c.SchemaVersion,
		SessionID:            c.SessionID,
		GeneratedAt:          c.GeneratedAt,
		Drive:                c.Drive,
		Wipe:                 c.Wipe,
		Verification:         c.Verification,
		EnhancedVerification: c.EnhancedVerification,
		Error:                c.Error,
	}
}

func encodeSignature(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return string(b)
}
