package events

import (
	"context"

	"carebook/pkg/kafka"
	kafka_config "carebook/pkg/kafka/config"
	"carebook/pkg/logger"
)

const sourceService = "carebook"

type kafkaPublisher struct {
	appointments *kafka.Producer
	feedback     *kafka.Producer
	log          *logger.Logger
}

// NewKafkaPublisher wires producers for the appointment and feedback topics.
func NewKafkaPublisher(cfg *kafka_config.Config, log *logger.Logger) (Publisher, error) {
	appointments, err := kafka.NewProducer(cfg, TopicAppointments, TopicAppointmentsDLQ)
	if err != nil {
		return nil, err
	}

	feedback, err := kafka.NewProducer(cfg, TopicFeedback, TopicFeedbackDLQ)
	if err != nil {
		_ = appointments.Close()
		return nil, err
	}

	return &kafkaPublisher{
		appointments: appointments,
		feedback:     feedback,
		log:          log,
	}, nil
}

func (p *kafkaPublisher) PublishAppointment(ctx context.Context, event AppointmentEvent) error {
	msg := kafka.NewMessage().
		WithKey(event.DocID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(sourceService).
		Build()

	return p.appointments.Publish(ctx, msg)
}

func (p *kafkaPublisher) PublishFeedback(ctx context.Context, event FeedbackEvent) error {
	msg := kafka.NewMessage().
		WithKey(event.DocID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(sourceService).
		Build()

	return p.feedback.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	err := p.appointments.Close()
	if feedbackErr := p.feedback.Close(); err == nil {
		err = feedbackErr
	}
	return err
}

type noopPublisher struct{}

// NewNoopPublisher is used when the event bus is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishAppointment(ctx context.Context, event AppointmentEvent) error {
	return nil
}

func (noopPublisher) PublishFeedback(ctx context.Context, event FeedbackEvent) error {
	return nil
}

func (noopPublisher) Close() error { return nil }
