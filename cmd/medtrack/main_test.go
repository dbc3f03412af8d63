package main

import (
	"testing"

	"medtrack/internal/model"
)

func TestParseRecordItem(t *testing.T) {
	tests := []struct {
		spec string
		want model.RecordItem
	}{
		{"Drug A:1 tablet", model.RecordItem{Name: "Drug A", Dosage: "1 tablet"}},
		{"Drug A:1 tablet:half tablet", model.RecordItem{Name: "Drug A", Dosage: "1 tablet", ActualDosage: "half tablet"}},
		{"Drug A:1 tablet:half tablet:felt dizzy", model.RecordItem{Name: "Drug A", Dosage: "1 tablet", ActualDosage: "half tablet", Memo: "felt dizzy"}},
	}

	for _, tt := range tests {
		got, err := parseRecordItem(tt.spec)
		if err != nil {
			t.Errorf("parseRecordItem(%q) failed: %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRecordItem(%q) = %+v, want %+v", tt.spec, got, tt.want)
		}
	}

	for _, spec := range []string{"", "Drug A", ":1 tablet"} {
		if _, err := parseRecordItem(spec); err == nil {
			t.Errorf("expected error for %q", spec)
		}
	}
}
