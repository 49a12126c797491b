package procutil

import (
	"testing"
)

// TestMatchesName_Truncation tests tolerance for process-table truncation
func TestMatchesName_Truncation(t *testing.T) {
	target := "WRFrontiers-Win64-Shipping.exe"

	tests := []struct {
		name string
		row  string
		want bool
	}{
		{"full name", "WRFrontiers-Win64-Shipping.exe", true},
		{"no suffix", "WRFrontiers-Win64-Shipping", true},
		{"truncated to 20 chars", "wrfrontiers-win64-sh", true},
		{"different case", "WRFRONTIERS-WIN64-SHIPPING.EXE", true},
		{"unrelated process", "explorer.exe", false},
		{"shares short prefix only", "wrfronti", false},
		{"empty row", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesName(tt.row, target); got != tt.want {
				t.Errorf("MatchesName(%q, %q) = %v, want %v", tt.row, target, got, tt.want)
			}
		})
	}
}

// TestMatchesName_ShortTarget tests names shorter than the truncation length
func TestMatchesName_ShortTarget(t *testing.T) {
	if !MatchesName("notepad.exe", "notepad.exe") {
		t.Error("Expected exact short name to match")
	}
	if !MatchesName("notepad", "notepad.exe") {
		t.Error("Expected suffix-stripped short name to match")
	}
	if MatchesName("calc.exe", "notepad.exe") {
		t.Error("Did not expect unrelated short name to match")
	}
	if MatchesName("anything.exe", "") {
		t.Error("Empty target must never match")
	}
}
