package verify

import (
	"bytes"
	"math"
	"testing"
)

// TestEntropySanity asserts two entropy sanity bounds: all-zero data
// scores near-zero entropy, and evenly distributed bytes score near-max
// entropy.
func TestEntropySanity(t *testing.T) {
	zeros := make([]byte, 4096)
	if h := shannonEntropy(zeros); h >= 0.1 {
		t.Fatalf("entropy of all-zeros = %f, want < 0.1", h)
	}

	uniform := make([]byte, 256*10)
	for i := range uniform {
		uniform[i] = byte(i % 256)
	}
	if h := shannonEntropy(uniform); h < 7.99 {
		t.Fatalf("entropy of uniform distribution = %f, want >= 7.99", h)
	}
}

// TestChiSquareUniformLowForEvenDistribution sanity-checks the
// chi-square statistic is near zero for a perfectly uniform sample.
func TestChiSquareUniformLowForEvenDistribution(t *testing.T) {
	uniform := make([]byte, 256*50)
	for i := range uniform {
		uniform[i] = byte(i % 256)
	}
	chi := chiSquareUniform(uniform)
	if chi > 1.0 {
		t.Fatalf("chi-square = %f, want near 0 for perfectly even distribution", chi)
	}
}

// TestPatternFillDeterminism asserts repeatPattern implements
// B[i] = P[i mod len(P)] exactly.
func TestPatternFillDeterminism(t *testing.T) {
	pattern := []byte{0xAA, 0xBB, 0xCC}
	buf := repeatPattern(pattern, 10)
	want := []byte{0xAA, 0xBB, 0xCC, 0xAA, 0xBB, 0xCC, 0xAA, 0xBB, 0xCC, 0xAA}
	if !bytes.Equal(buf, want) {
		t.Fatalf("got %v, want %v", buf, want)
	}
}

// TestConfidenceMonotonicity asserts adding a passed battery test never
// decreases the confidence score.
func TestConfidenceMonotonicity(t *testing.T) {
	base := Report{
		Entropy: 7.9,
		Battery: []BatteryResult{
			{Name: "runs", Passed: false},
			{Name: "monobit", Passed: false},
		},
	}
	withMore := Report{
		Entropy: 7.9,
		Battery: []BatteryResult{
			{Name: "runs", Passed: true},
			{Name: "monobit", Passed: false},
		},
	}

	baseScore := confidenceScore(base)
	moreScore := confidenceScore(withMore)
	if moreScore < baseScore {
		t.Fatalf("score decreased after a test flipped to passed: %f -> %f", baseScore, moreScore)
	}
}

// TestRunsTestOnBalancedData asserts the runs test yields a finite
// statistic for a perfectly alternating bit sequence.
func TestRunsTestOnBalancedData(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = 0xAA // 10101010
	}
	result := runsTest(data)
	if math.IsInf(result.Statistic, 0) {
		t.Fatalf("statistic should be finite for balanced data")
	}
}

// TestMonobitBalanced asserts a byte sequence with equal ones and
// zeros passes the monobit test.
func TestMonobitBalanced(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = 0x55 // 01010101, 4 ones and 4 zeros per byte
	}
	result := monobitTest(data)
	if !result.Passed {
		t.Fatalf("expected monobit test to pass for balanced data, got statistic %f", result.Statistic)
	}
}

// TestContainsKnownMagicDetectsPDF asserts the signature scan flags a
// PDF header embedded in sample data.
func TestContainsKnownMagicDetectsPDF(t *testing.T) {
	data := append([]byte{0x00, 0x00}, []byte{0x25, 0x50, 0x44, 0x46}...)
	if !containsKnownMagic(data) {
		t.Fatal("expected PDF magic to be detected")
	}
}

// TestHasRepeatingWindowDetectsStructuredData asserts a buffer made of
// one repeated 4-byte window is flagged as structured.
func TestHasRepeatingWindowDetectsStructuredData(t *testing.T) {
	data := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04}, 100)
	if !hasRepeatingWindow(data, 4) {
		t.Fatal("expected repeating 4-byte window to be detected")
	}
}

// TestClampSampleSize asserts the sample target is clamped to
// [10 MiB, 1 GiB] and never exceeds the device size.
func TestClampSampleSize(t *testing.T) {
	if got := clampSampleSize(1024, 1<<40); got != minSampleBytes {
		t.Fatalf("got %d, want floor %d", got, minSampleBytes)
	}
	if got := clampSampleSize(1<<40, 1<<40); got != maxSampleBytes {
		t.Fatalf("got %d, want ceiling %d", got, maxSampleBytes)
	}
	if got := clampSampleSize(1<<40, 1<<20); got != 1<<20 {
		t.Fatalf("got %d, want device size %d", got, 1<<20)
	}
}
