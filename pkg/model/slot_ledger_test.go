package model

import (
	"testing"
	"time"
)

func TestDateKey(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{
			name: "single digit day and month",
			date: time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC),
			want: "5_3_2026",
		},
		{
			name: "double digit day and month",
			date: time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
			want: "31_12_2026",
		},
		{
			name: "month is one-based",
			date: time.Date(2026, time.January, 1, 23, 59, 0, 0, time.UTC),
			want: "1_1_2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateKey(tt.date); got != tt.want {
				t.Errorf("DateKey(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestTimeLabel(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{
			name: "afternoon",
			date: time.Date(2026, time.March, 5, 14, 30, 0, 0, time.UTC),
			want: "02:30 PM",
		},
		{
			name: "morning with padded hour",
			date: time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC),
			want: "09:00 AM",
		},
		{
			name: "noon",
			date: time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC),
			want: "12:00 PM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeLabel(tt.date); got != tt.want {
				t.Errorf("TimeLabel(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestSlotLedgerAdd(t *testing.T) {
	ledger := SlotLedger{}

	if !ledger.Add("5_3_2026", "10:00 AM") {
		t.Fatal("expected first Add to succeed")
	}
	if ledger.Add("5_3_2026", "10:00 AM") {
		t.Error("expected duplicate Add to fail")
	}
	if !ledger.Add("5_3_2026", "10:30 AM") {
		t.Error("expected Add of different time to succeed")
	}
	if !ledger.Has("5_3_2026", "10:00 AM") {
		t.Error("expected ledger to contain added slot")
	}
	if ledger.Has("6_3_2026", "10:00 AM") {
		t.Error("expected other date to be empty")
	}
}

func TestSlotLedgerRemove(t *testing.T) {
	ledger := SlotLedger{
		"5_3_2026": {"10:00 AM", "10:30 AM"},
	}

	ledger.Remove("5_3_2026", "10:00 AM")
	if ledger.Has("5_3_2026", "10:00 AM") {
		t.Error("expected slot to be removed")
	}
	if !ledger.Has("5_3_2026", "10:30 AM") {
		t.Error("expected remaining slot to survive removal")
	}

	// Removing an absent entry is a no-op.
	ledger.Remove("5_3_2026", "11:00 AM")
	ledger.Remove("9_9_2026", "10:00 AM")
	if !ledger.Has("5_3_2026", "10:30 AM") {
		t.Error("expected ledger unchanged after removing absent entries")
	}
}

func TestSlotLedgerClone(t *testing.T) {
	original := SlotLedger{
		"5_3_2026": {"10:00 AM"},
	}

	clone := original.Clone()
	clone.Add("5_3_2026", "10:30 AM")

	if original.Has("5_3_2026", "10:30 AM") {
		t.Error("expected mutation of clone to leave original untouched")
	}
}
