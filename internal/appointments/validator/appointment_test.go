package validator

import (
	"testing"

	"carebook/pkg/logger"
	"carebook/pkg/model"
)

func testValidator() *AppointmentValidator {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewAppointmentValidator(log)
}

func TestValidateBookingSlotDate(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name      string
		slotDate  string
		wantError bool
	}{
		{"single digit day and month", "5_3_2026", false},
		{"double digit day and month", "31_12_2026", false},
		{"first of january", "1_1_2026", false},
		{"zero padded day", "05_3_2026", true},
		{"zero padded month", "5_03_2026", true},
		{"day zero", "0_3_2026", true},
		{"day out of range", "32_3_2026", true},
		{"month out of range", "5_13_2026", true},
		{"two digit year", "5_3_26", true},
		{"dashes instead of underscores", "5-3-2026", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := &model.BookingRequest{
				DocID:    "507f1f77bcf86cd799439011",
				SlotDate: tt.slotDate,
				SlotTime: "10:30 AM",
			}
			err := v.ValidateBooking(request)
			if tt.wantError && err == nil {
				t.Errorf("expected error for slot_date %q", tt.slotDate)
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error for slot_date %q: %v", tt.slotDate, err)
			}
		})
	}
}

func TestValidateBookingSlotTime(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name      string
		slotTime  string
		wantError bool
	}{
		{"morning", "10:00 AM", false},
		{"afternoon", "03:30 PM", false},
		{"noon", "12:00 PM", false},
		{"unpadded hour", "3:30 PM", true},
		{"24 hour clock", "14:30", true},
		{"hour zero", "00:30 AM", true},
		{"hour thirteen", "13:00 PM", true},
		{"minute out of range", "10:60 AM", true},
		{"lowercase meridiem", "10:00 am", true},
		{"missing space", "10:00AM", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := &model.BookingRequest{
				DocID:    "507f1f77bcf86cd799439011",
				SlotDate: "5_3_2026",
				SlotTime: tt.slotTime,
			}
			err := v.ValidateBooking(request)
			if tt.wantError && err == nil {
				t.Errorf("expected error for slot_time %q", tt.slotTime)
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error for slot_time %q: %v", tt.slotTime, err)
			}
		})
	}
}

func TestValidateBookingDocID(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name      string
		docID     string
		wantError bool
	}{
		{"valid object id", "507f1f77bcf86cd799439011", false},
		{"too short", "507f1f77", true},
		{"not hex", "zzzzzzzzzzzzzzzzzzzzzzzz", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := &model.BookingRequest{
				DocID:    tt.docID,
				SlotDate: "5_3_2026",
				SlotTime: "10:30 AM",
			}
			err := v.ValidateBooking(request)
			if tt.wantError && err == nil {
				t.Errorf("expected error for doc_id %q", tt.docID)
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error for doc_id %q: %v", tt.docID, err)
			}
		})
	}
}
