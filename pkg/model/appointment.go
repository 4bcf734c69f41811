package model

import "time"

// AppointmentStatus is the explicit lifecycle state. Booked is the initial
// state; Cancelled and Completed are terminal and mutually exclusive.
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Terminal reports whether no further lifecycle transition is allowed.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type Appointment struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID   string `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	DocID    string `json:"doc_id" bson:"doc_id" validate:"required,mongodb"`
	SlotDate string `json:"slot_date" bson:"slot_date" validate:"required,slot_date"`
	SlotTime string `json:"slot_time" bson:"slot_time" validate:"required,slot_time"`

	// Denormalized snapshots captured at booking time; immune to later
	// edits of the patient or doctor records.
	UserData PatientSnapshot `json:"user_data" bson:"user_data"`
	DocData  DoctorSnapshot  `json:"doc_data" bson:"doc_data"`

	// Amount is the doctor's fee at booking time.
	Amount int `json:"amount" bson:"amount" validate:"required,min=1"`

	Status AppointmentStatus `json:"status" bson:"status" validate:"required,oneof=booked cancelled completed"`
	Paid   bool              `json:"paid" bson:"paid"`

	Feedback            string     `json:"feedback" bson:"feedback"`
	Rating              *int       `json:"rating,omitempty" bson:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	AnonymousFeedback   bool       `json:"anonymous_feedback" bson:"anonymous_feedback"`
	FeedbackApproved    bool       `json:"feedback_approved" bson:"feedback_approved"`
	FeedbackRejected    bool       `json:"feedback_rejected" bson:"feedback_rejected"`
	FeedbackSubmittedAt *time.Time `json:"feedback_submitted_at,omitempty" bson:"feedback_submitted_at,omitempty"`

	BookedAt time.Time `json:"booked_at" bson:"booked_at" validate:"omitempty"`
}

// HasFeedback reports whether a feedback payload is already attached.
func (a *Appointment) HasFeedback() bool {
	return a.Feedback != "" || a.Rating != nil
}

// BookingRequest is the client payload for reserving a slot. The patient
// identity comes from the authenticated actor, not the body.
type BookingRequest struct {
	DocID    string `json:"doc_id" validate:"required,mongodb"`
	SlotDate string `json:"slot_date" validate:"required,slot_date"`
	SlotTime string `json:"slot_time" validate:"required,slot_time"`
}

// FeedbackSubmission is the client payload for submitting or editing
// feedback on a completed appointment.
type FeedbackSubmission struct {
	Feedback  string `json:"feedback" validate:"required,min=2,max=2000"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Anonymous bool   `json:"anonymous"`
}

// DoctorRating is the moderated feedback aggregate for one doctor.
type DoctorRating struct {
	DocID     string  `json:"doc_id" bson:"_id"`
	AvgRating float64 `json:"avg_rating" bson:"avg_rating"`
	Count     int64   `json:"count" bson:"count"`
}
