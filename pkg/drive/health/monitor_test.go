package health

import "testing"

func TestEvaluateHealthyDrive(t *testing.T) {
	m := &Monitor{thresholds: DefaultThresholds()}
	raw := smartctlHealthOutput{}
	raw.SmartStatus.Passed = true
	raw.Temperature.Current = 35

	status := m.evaluate("/dev/sda", raw)
	if status.Level != LevelHealthy {
		t.Fatalf("Level = %v, want %v", status.Level, LevelHealthy)
	}
}

func TestEvaluateFailedOverallAssessment(t *testing.T) {
	m := &Monitor{thresholds: DefaultThresholds()}
	raw := smartctlHealthOutput{}
	raw.SmartStatus.Passed = false

	status := m.evaluate("/dev/sda", raw)
	if status.Level != LevelFailed {
		t.Fatalf("Level = %v, want %v", status.Level, LevelFailed)
	}
}

func TestEvaluateCriticalReallocatedSectors(t *testing.T) {
	m := &Monitor{thresholds: DefaultThresholds()}
	raw := smartctlHealthOutput{}
	raw.SmartStatus.Passed = true
	raw.ATASmartAttributes.Table = []struct {
		ID       int `json:"id"`
		RawValue int `json:"raw_value"`
	}{
		{ID: attrReallocatedSectorCount, RawValue: 150},
	}

	status := m.evaluate("/dev/sda", raw)
	if status.Level != LevelCritical {
		t.Fatalf("Level = %v, want %v", status.Level, LevelCritical)
	}
}

func TestEvaluateWarningOnTemperature(t *testing.T) {
	m := &Monitor{thresholds: DefaultThresholds()}
	raw := smartctlHealthOutput{}
	raw.SmartStatus.Passed = true
	raw.Temperature.Current = 75

	status := m.evaluate("/dev/sda", raw)
	if status.Level != LevelWarning {
		t.Fatalf("Level = %v, want %v", status.Level, LevelWarning)
	}
}
