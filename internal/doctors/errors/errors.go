package errors

import "errors"

var (
	ErrNotFound = errors.New("doctor not found")

	ErrInvalidID = errors.New("invalid doctor ID format")

	// ErrSlotTaken is returned when the conditional ledger update matched no
	// document: the slot is already booked or the doctor was disabled.
	ErrSlotTaken = errors.New("slot already booked")

	ErrDuplicateEmail = errors.New("doctor with this email already exists")
)
