package service

import (
	"testing"
	"time"

	"carebook/pkg/model"
)

func clinicWindow() SlotWindow {
	return SlotWindow{
		OpenHour:    10,
		CloseHour:   21,
		IntervalMin: 30,
		Days:        7,
	}
}

func TestBuildSlotWindowDayCount(t *testing.T) {
	now := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	buckets := BuildSlotWindow(model.SlotLedger{}, now, clinicWindow())

	if len(buckets) != 7 {
		t.Fatalf("expected 7 day buckets, got %d", len(buckets))
	}

	wantKeys := []string{"5_3_2026", "6_3_2026", "7_3_2026", "8_3_2026", "9_3_2026", "10_3_2026", "11_3_2026"}
	for i, want := range wantKeys {
		if buckets[i].Date != want {
			t.Errorf("bucket %d: expected date %q, got %q", i, want, buckets[i].Date)
		}
	}
}

func TestBuildSlotWindowFirstSlotRounding(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantFirst string
	}{
		{
			name:      "mid hour rounds to half past",
			now:       time.Date(2026, time.March, 5, 14, 10, 0, 0, time.UTC),
			wantFirst: "02:30 PM",
		},
		{
			name:      "past half hour rounds to next hour",
			now:       time.Date(2026, time.March, 5, 14, 45, 0, 0, time.UTC),
			wantFirst: "03:00 PM",
		},
		{
			name:      "exactly on the half hour stays",
			now:       time.Date(2026, time.March, 5, 14, 30, 0, 0, time.UTC),
			wantFirst: "02:30 PM",
		},
		{
			name:      "before opening clamps to opening",
			now:       time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC),
			wantFirst: "10:00 AM",
		},
		{
			name:      "early morning clamps to opening",
			now:       time.Date(2026, time.March, 5, 0, 5, 0, 0, time.UTC),
			wantFirst: "10:00 AM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets := BuildSlotWindow(model.SlotLedger{}, tt.now, clinicWindow())
			today := buckets[0]
			if len(today.Slots) == 0 {
				t.Fatal("expected slots for today")
			}
			if today.Slots[0].Time != tt.wantFirst {
				t.Errorf("expected first slot %q, got %q", tt.wantFirst, today.Slots[0].Time)
			}
		})
	}
}

func TestBuildSlotWindowLateEveningEmptyToday(t *testing.T) {
	now := time.Date(2026, time.March, 5, 20, 45, 0, 0, time.UTC)
	buckets := BuildSlotWindow(model.SlotLedger{}, now, clinicWindow())

	if len(buckets[0].Slots) != 0 {
		t.Errorf("expected no slots today after 20:45, got %d", len(buckets[0].Slots))
	}

	// Tomorrow starts fresh at opening time.
	if len(buckets[1].Slots) == 0 || buckets[1].Slots[0].Time != "10:00 AM" {
		t.Errorf("expected tomorrow to open at 10:00 AM, got %+v", buckets[1].Slots)
	}
}

func TestBuildSlotWindowLastSlotBeforeClosing(t *testing.T) {
	now := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	buckets := BuildSlotWindow(model.SlotLedger{}, now, clinicWindow())

	today := buckets[0]
	// 10:00 through 20:30 at 30 minute intervals.
	if len(today.Slots) != 22 {
		t.Fatalf("expected 22 slots for a full day, got %d", len(today.Slots))
	}
	if last := today.Slots[len(today.Slots)-1].Time; last != "08:30 PM" {
		t.Errorf("expected last slot 08:30 PM, got %q", last)
	}
}

func TestBuildSlotWindowExcludesBookedSlots(t *testing.T) {
	now := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	ledger := model.SlotLedger{
		"5_3_2026": {"10:00 AM", "02:30 PM"},
		"6_3_2026": {"10:30 AM"},
	}

	buckets := BuildSlotWindow(ledger, now, clinicWindow())

	for _, slot := range buckets[0].Slots {
		if slot.Time == "10:00 AM" || slot.Time == "02:30 PM" {
			t.Errorf("expected booked slot %q to be excluded from today", slot.Time)
		}
	}
	if len(buckets[0].Slots) != 20 {
		t.Errorf("expected 20 free slots today, got %d", len(buckets[0].Slots))
	}

	for _, slot := range buckets[1].Slots {
		if slot.Time == "10:30 AM" {
			t.Error("expected booked slot to be excluded from tomorrow")
		}
	}
}

func TestBuildSlotWindowSlotDatetimes(t *testing.T) {
	now := time.Date(2026, time.March, 5, 14, 10, 0, 0, time.UTC)
	buckets := BuildSlotWindow(model.SlotLedger{}, now, clinicWindow())

	first := buckets[0].Slots[0]
	want := time.Date(2026, time.March, 5, 14, 30, 0, 0, time.UTC)
	if !first.Datetime.Equal(want) {
		t.Errorf("expected first slot datetime %v, got %v", want, first.Datetime)
	}
	if got := model.TimeLabel(first.Datetime); got != first.Time {
		t.Errorf("label %q does not match datetime label %q", first.Time, got)
	}
}
