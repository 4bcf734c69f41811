package notifier

import (
	"context"
	"fmt"

	"carebook/internal/events"
	"carebook/pkg/kafka"
	"carebook/pkg/logger"
)

// Notifier turns lifecycle events into notifications. Delivery is a log line
// here; the send path is where an SMS or email provider plugs in.
type Notifier struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Notifier {
	return &Notifier{log: log}
}

// HandleAppointment consumes carebook.appointments messages.
func (n *Notifier) HandleAppointment(ctx context.Context, msg kafka.Message) error {
	var event events.AppointmentEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("failed to decode appointment event: %w", err)
	}

	var text string
	switch event.Type {
	case events.TypeAppointmentBooked:
		text = fmt.Sprintf("Your appointment on %s at %s is confirmed", event.SlotDate, event.SlotTime)
	case events.TypeAppointmentCancelled:
		text = fmt.Sprintf("Your appointment on %s at %s was cancelled", event.SlotDate, event.SlotTime)
	case events.TypeAppointmentCompleted:
		text = "Thanks for your visit. You can now leave feedback"
	default:
		n.log.Warn("Unknown appointment event type", "type", event.Type, "event_id", msg.GetEventID())
		return nil
	}

	n.log.Info("Notification dispatched",
		"event_type", event.Type,
		"appointment_id", event.AppointmentID,
		"user_id", event.UserID,
		"message", text,
	)
	return nil
}

// HandleFeedback consumes carebook.feedback messages and pings the
// moderation queue.
func (n *Notifier) HandleFeedback(ctx context.Context, msg kafka.Message) error {
	var event events.FeedbackEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("failed to decode feedback event: %w", err)
	}

	n.log.Info("Moderation queue notified",
		"appointment_id", event.AppointmentID,
		"doc_id", event.DocID,
		"rating", event.Rating,
	)
	return nil
}
