package service

import (
	"context"
	"errors"
	"sync"
	"time"

	appointmentserrors "carebook/internal/appointments/errors"
	appointmentsrepo "carebook/internal/appointments/repository"
	"carebook/internal/events"
	"carebook/internal/feedback/repository"
	"carebook/internal/feedback/validator"
	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/middleware"
	"carebook/pkg/model"
	"carebook/pkg/sanitizer"
)

type FeedbackService interface {
	Submit(ctx context.Context, appointmentID string, actor middleware.Actor, submission *model.FeedbackSubmission) error
	Edit(ctx context.Context, appointmentID string, actor middleware.Actor, submission *model.FeedbackSubmission) error
	Approve(ctx context.Context, appointmentID string, actor middleware.Actor) error
	Reject(ctx context.Context, appointmentID string, actor middleware.Actor) error
	Pending(ctx context.Context, actor middleware.Actor, limit int, offset int64) ([]*model.Appointment, int64, error)
}

type feedbackService struct {
	repo            repository.FeedbackRepository
	appointmentRepo appointmentsrepo.AppointmentRepository
	validator       *validator.FeedbackValidator
	publisher       events.Publisher
	cfg             *config.Config
}

func NewFeedbackService(
	repo repository.FeedbackRepository,
	appointmentRepo appointmentsrepo.AppointmentRepository,
	validator *validator.FeedbackValidator,
	publisher events.Publisher,
	cfg *config.Config,
) FeedbackService {
	return &feedbackService{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		validator:       validator,
		publisher:       publisher,
		cfg:             cfg,
	}
}

func (s *feedbackService) Submit(ctx context.Context, appointmentID string, actor middleware.Actor, submission *model.FeedbackSubmission) error {
	appointment, err := s.eligibleAppointment(ctx, appointmentID, actor, submission)
	if err != nil {
		return err
	}

	if appointment.HasFeedback() {
		return apperrors.AlreadySubmitted("Feedback already submitted for this appointment")
	}

	return s.save(ctx, appointment, submission, "submitted")
}

// Edit overwrites the previous payload and sends it back through moderation.
func (s *feedbackService) Edit(ctx context.Context, appointmentID string, actor middleware.Actor, submission *model.FeedbackSubmission) error {
	appointment, err := s.eligibleAppointment(ctx, appointmentID, actor, submission)
	if err != nil {
		return err
	}

	if !appointment.HasFeedback() {
		return apperrors.NotEligible("No feedback to edit")
	}

	return s.save(ctx, appointment, submission, "edited")
}

func (s *feedbackService) Approve(ctx context.Context, appointmentID string, actor middleware.Actor) error {
	return s.moderate(ctx, appointmentID, actor, s.repo.Approve, "approved")
}

func (s *feedbackService) Reject(ctx context.Context, appointmentID string, actor middleware.Actor) error {
	return s.moderate(ctx, appointmentID, actor, s.repo.Reject, "rejected")
}

func (s *feedbackService) Pending(ctx context.Context, actor middleware.Actor, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperrors.Forbidden("Only admins may view the moderation queue")
	}

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountPending(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count pending feedback", "error", errCount)
			errCount = apperrors.Internal("Failed to count pending feedback", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.FindPending(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list pending feedback", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve pending feedback", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return appointments, count, nil
}

// eligibleAppointment enforces the shared gate for submit and edit: valid
// payload, owning patient, completed visit.
func (s *feedbackService) eligibleAppointment(ctx context.Context, appointmentID string, actor middleware.Actor, submission *model.FeedbackSubmission) (*model.Appointment, error) {
	submission.Feedback = sanitizer.NormalizeFeedback(submission.Feedback)

	if err := s.validator.Validate(submission); err != nil {
		s.cfg.Log.Warn("Feedback validation failed", "error", err)
		return nil, apperrors.Validation("Feedback validation failed", map[string]any{"error": err.Error()})
	}

	appointment, err := s.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if actor.Role != middleware.RolePatient || actor.ID != appointment.UserID {
		return nil, apperrors.Forbidden("Only the appointment's patient may leave feedback")
	}

	if appointment.Status != model.StatusCompleted {
		return nil, apperrors.NotEligible("Feedback is only accepted on completed appointments")
	}

	return appointment, nil
}

func (s *feedbackService) save(ctx context.Context, appointment *model.Appointment, submission *model.FeedbackSubmission, action string) error {
	submittedAt := time.Now().UTC().Truncate(time.Millisecond)

	if err := s.repo.SaveFeedback(ctx, appointment.ID, submission, submittedAt); err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Appointment", appointment.ID)
		}
		s.cfg.Log.Error("Failed to save feedback", "id", appointment.ID, "error", err)
		return apperrors.Internal("Failed to save feedback", err)
	}

	s.cfg.Log.Info("Feedback "+action,
		"appointment_id", appointment.ID,
		"doc_id", appointment.DocID,
		"rating", submission.Rating,
		"anonymous", submission.Anonymous,
	)

	event := events.FeedbackEvent{
		Type:          events.TypeFeedbackSubmitted,
		AppointmentID: appointment.ID,
		DocID:         appointment.DocID,
		Rating:        submission.Rating,
		Anonymous:     submission.Anonymous,
		OccurredAt:    submittedAt,
	}
	if err := s.publisher.PublishFeedback(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish feedback event",
			"appointment_id", appointment.ID,
			"error", err,
		)
	}

	return nil
}

func (s *feedbackService) moderate(ctx context.Context, appointmentID string, actor middleware.Actor, op func(ctx context.Context, id string) error, action string) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Only admins may moderate feedback")
	}

	appointment, err := s.findAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}

	if !appointment.HasFeedback() {
		return apperrors.NotEligible("Appointment has no feedback to moderate")
	}

	if err := op(ctx, appointment.ID); err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Appointment", appointmentID)
		}
		s.cfg.Log.Error("Failed to moderate feedback", "id", appointmentID, "error", err)
		return apperrors.Internal("Failed to moderate feedback", err)
	}

	s.cfg.Log.Info("Feedback "+action, "appointment_id", appointment.ID, "actor", actor.ID)
	return nil
}

func (s *feedbackService) findAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appointmentserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		s.cfg.Log.Error("Failed to load appointment", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to access appointment record", err)
	}

	return appointment, nil
}
