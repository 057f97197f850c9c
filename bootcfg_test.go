package main

import "testing"

func TestBootcfgParseAndAccessors(t *testing.T) {
	BootcfgParse("pit_hz=200\nautoload_fs=1\nautosave_seconds=30\n")

	if got := BootcfgPITFrequency(); got != 200 {
		t.Errorf("BootcfgPITFrequency() = %d, want 200", got)
	}
	if !BootcfgAutoLoadFS() {
		t.Error("BootcfgAutoLoadFS() = false, want true")
	}
	if got := BootcfgAutosaveIntervalSeconds(); got != 30 {
		t.Errorf("BootcfgAutosaveIntervalSeconds() = %d, want 30", got)
	}
}

func TestBootcfgDefaultsOnEmptyBlob(t *testing.T) {
	BootcfgParse("")
	if got := BootcfgPITFrequency(); got != pitDefaultHz {
		t.Errorf("BootcfgPITFrequency() = %d, want default %d", got, pitDefaultHz)
	}
	if BootcfgAutoLoadFS() {
		t.Error("BootcfgAutoLoadFS() should default to false")
	}
	if got := BootcfgAutosaveIntervalSeconds(); got != shellAutosaveIntervalSeconds {
		t.Errorf("BootcfgAutosaveIntervalSeconds() = %d, want default %d", got, shellAutosaveIntervalSeconds)
	}
}

func TestBootcfgIgnoresMalformedLines(t *testing.T) {
	BootcfgParse("not_a_kv_pair\npit_hz=\npit_hz=150\n")
	if got := BootcfgPITFrequency(); got != 150 {
		t.Errorf("BootcfgPITFrequency() = %d, want 150 (malformed earlier lines should be skipped)", got)
	}
}

func TestBootcfgLastAssignmentWins(t *testing.T) {
	BootcfgParse("pit_hz=100\npit_hz=500\n")
	if got := BootcfgPITFrequency(); got != 500 {
		t.Errorf("BootcfgPITFrequency() = %d, want 500 (last wins)", got)
	}
}
