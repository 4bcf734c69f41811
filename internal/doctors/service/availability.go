package service

import (
	"time"

	"carebook/pkg/model"
)

// SlotWindow describes the offerable booking window: clinic hours, slot
// granularity, and how many days ahead slots are generated.
type SlotWindow struct {
	OpenHour    int
	CloseHour   int
	IntervalMin int
	Days        int
}

// BuildSlotWindow derives the offerable slots for one doctor: one bucket per
// day starting today, each holding the slots between opening and closing
// time that are not already present in the ledger. The computation is pure;
// all state comes in through the arguments.
func BuildSlotWindow(ledger model.SlotLedger, now time.Time, window SlotWindow) []model.DaySlots {
	interval := time.Duration(window.IntervalMin) * time.Minute
	buckets := make([]model.DaySlots, 0, window.Days)

	for i := 0; i < window.Days; i++ {
		day := now.AddDate(0, 0, i)
		opening := at(day, window.OpenHour, 0)
		closing := at(day, window.CloseHour, 0)

		cursor := opening
		if i == 0 {
			cursor = firstSlotToday(now)
			if cursor.Before(opening) {
				cursor = opening
			}
		}

		dateKey := model.DateKey(day)
		slots := []model.Slot{}

		// Last slot must start strictly before closing time.
		for cursor.Before(closing) {
			label := model.TimeLabel(cursor)
			if !ledger.Has(dateKey, label) {
				slots = append(slots, model.Slot{Datetime: cursor, Time: label})
			}
			cursor = cursor.Add(interval)
		}

		buckets = append(buckets, model.DaySlots{Date: dateKey, Slots: slots})
	}

	return buckets
}

// firstSlotToday rounds "now" forward to the next half-hour boundary:
// minutes past the half hour roll to the top of the next hour, anything else
// rolls to half past.
func firstSlotToday(now time.Time) time.Time {
	if now.Minute() > 30 {
		return at(now, now.Hour()+1, 0)
	}
	return at(now, now.Hour(), 30)
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
