package model

import "time"

// Slot is one offerable 30-minute window for a doctor.
type Slot struct {
	Datetime time.Time `json:"datetime"`
	Time     string    `json:"time"`
}

// DaySlots is one day bucket of the availability window; Slots may be empty.
type DaySlots struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}
