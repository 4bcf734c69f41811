package events

import (
	"context"
	"time"

	"carebook/pkg/model"
)

const (
	TopicAppointments    = "carebook.appointments"
	TopicAppointmentsDLQ = TopicAppointments + ".dlq"
	TopicFeedback        = "carebook.feedback"
	TopicFeedbackDLQ     = TopicFeedback + ".dlq"

	TypeAppointmentBooked    = "appointment.booked"
	TypeAppointmentCancelled = "appointment.cancelled"
	TypeAppointmentCompleted = "appointment.completed"
	TypeFeedbackSubmitted    = "feedback.submitted"
)

// AppointmentEvent is the envelope published on every lifecycle transition.
// The notifier worker consumes it to drive out-of-band notifications.
type AppointmentEvent struct {
	Type          string                  `json:"type"`
	AppointmentID string                  `json:"appointment_id"`
	UserID        string                  `json:"user_id"`
	DocID         string                  `json:"doc_id"`
	SlotDate      string                  `json:"slot_date"`
	SlotTime      string                  `json:"slot_time"`
	Status        model.AppointmentStatus `json:"status"`
	Amount        int                     `json:"amount,omitempty"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

// FeedbackEvent signals submitted or edited feedback awaiting moderation.
type FeedbackEvent struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointment_id"`
	DocID         string    `json:"doc_id"`
	Rating        int       `json:"rating"`
	Anonymous     bool      `json:"anonymous"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers domain events. Implementations must be safe for
// concurrent use; delivery is best effort and never gates the transaction
// that produced the event.
type Publisher interface {
	PublishAppointment(ctx context.Context, event AppointmentEvent) error
	PublishFeedback(ctx context.Context, event FeedbackEvent) error
	Close() error
}

// NewAppointmentEvent builds the envelope for an appointment transition.
func NewAppointmentEvent(eventType string, appt *model.Appointment) AppointmentEvent {
	return AppointmentEvent{
		Type:          eventType,
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		DocID:         appt.DocID,
		SlotDate:      appt.SlotDate,
		SlotTime:      appt.SlotTime,
		Status:        appt.Status,
		Amount:        appt.Amount,
		OccurredAt:    time.Now().UTC(),
	}
}
