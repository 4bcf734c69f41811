package model

import (
	"fmt"
	"slices"
	"time"
)

// TimeLabelLayout is the wire format for booked slot times, e.g. "02:30 PM".
const TimeLabelLayout = "03:04 PM"

// SlotLedger is a doctor's record of booked slots: date key -> ordered list
// of time labels already reserved for that date. It is the source of truth
// for availability. Storage-side mutation happens only through the atomic
// conditional updates in the doctor repository; the in-memory helpers here
// exist for availability computation and tests.
type SlotLedger map[string][]string

// DateKey renders the ledger key for a calendar day: "{day}_{month}_{year}",
// 1-based month, no zero padding, local calendar boundaries.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%d_%d_%d", t.Day(), int(t.Month()), t.Year())
}

// TimeLabel renders the wire label for a slot start time.
func TimeLabel(t time.Time) string {
	return t.Format(TimeLabelLayout)
}

// Has reports whether the given slot is already booked.
func (l SlotLedger) Has(dateKey, timeLabel string) bool {
	return slices.Contains(l[dateKey], timeLabel)
}

// Add records a slot as booked, creating the date bucket if absent. It
// returns false without mutating when the slot is already present.
func (l SlotLedger) Add(dateKey, timeLabel string) bool {
	if l.Has(dateKey, timeLabel) {
		return false
	}
	l[dateKey] = append(l[dateKey], timeLabel)
	return true
}

// Remove releases a slot. It filters by value rather than position, so it is
// safe when the entry is already missing.
func (l SlotLedger) Remove(dateKey, timeLabel string) {
	booked, ok := l[dateKey]
	if !ok {
		return
	}

	remaining := booked[:0]
	for _, t := range booked {
		if t != timeLabel {
			remaining = append(remaining, t)
		}
	}
	l[dateKey] = remaining
}

// Clone returns a deep copy of the ledger.
func (l SlotLedger) Clone() SlotLedger {
	cloned := make(SlotLedger, len(l))
	for date, times := range l {
		cloned[date] = slices.Clone(times)
	}
	return cloned
}
