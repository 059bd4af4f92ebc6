package certificate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratastor/eraser/pkg/drive/types"
	"github.com/stratastor/eraser/pkg/verify"
)

func testDrive() *types.DriveInfo {
	return &types.DriveInfo{
		Path:      "/dev/sda",
		Model:     "TestDrive 9000",
		Serial:    "SN123",
		SizeBytes: 1 << 30,
		Class:     types.MediaSpinning,
	}
}

func TestAssembleMarksVerifiedWhenConfidenceMet(t *testing.T) {
	a := NewAssembler(NoopSigner{})

	cert, err := a.Assemble(AssembleInput{
		SessionID:       "sess-1",
		Drive:           testDrive(),
		Algorithm:       types.AlgorithmDoD5220,
		PassesCompleted: 3,
		Duration:        90 * time.Second,
		Report: &verify.Report{
			SelfTest:        verify.SelfTestResult{Passed: true, Restored: true},
			Entropy:         7.98,
			ConfidenceScore: 97.5,
			Timestamp:       time.Now(),
		},
		MinConfidence: 95.0,
	})

	require.NoError(t, err)
	assert.True(t, cert.Verification.Verified)
	assert.Equal(t, 7.98, cert.Verification.EntropyScore)
	assert.Equal(t, SchemaVersion, cert.SchemaVersion)
	assert.Equal(t, "none", cert.Signature.Algorithm)
	assert.Empty(t, cert.Error)
}

func TestAssembleMarksUnverifiedBelowConfidenceThreshold(t *testing.T) {
	a := NewAssembler(NoopSigner{})

	cert, err := a.Assemble(AssembleInput{
		SessionID: "sess-2",
		Drive:     testDrive(),
		Algorithm: types.AlgorithmDoD5220,
		Report: &verify.Report{
			SelfTest:        verify.SelfTestResult{Passed: true},
			ConfidenceScore: 80.0,
		},
		MinConfidence: 95.0,
	})

	require.NoError(t, err)
	assert.False(t, cert.Verification.Verified)
}

func TestAssembleStillEmitsCertificateOnSessionError(t *testing.T) {
	a := NewAssembler(NoopSigner{})

	cert, err := a.Assemble(AssembleInput{
		SessionID:    "sess-3",
		Drive:        testDrive(),
		Algorithm:    types.AlgorithmDoD5220,
		SessionError: "temperature exceeded maximum during pass 2",
	})

	require.NoError(t, err)
	assert.Equal(t, "temperature exceeded maximum during pass 2", cert.Error)
	assert.False(t, cert.Verification.Verified)
}

func TestAssembleOmitsEnhancedReportUnlessRequested(t *testing.T) {
	a := NewAssembler(NoopSigner{})
	report := &verify.Report{SelfTest: verify.SelfTestResult{Passed: true}, ConfidenceScore: 99}

	cert, err := a.Assemble(AssembleInput{
		SessionID:     "sess-4",
		Drive:         testDrive(),
		Algorithm:     types.AlgorithmSecureErase,
		Report:        report,
		MinConfidence: 90,
	})
	require.NoError(t, err)
	assert.Nil(t, cert.EnhancedVerification)

	cert, err = a.Assemble(AssembleInput{
		SessionID:       "sess-5",
		Drive:           testDrive(),
		Algorithm:       types.AlgorithmSecureErase,
		Report:          report,
		MinConfidence:   90,
		IncludeEnhanced: true,
	})
	require.NoError(t, err)
	assert.Same(t, report, cert.EnhancedVerification)
}
