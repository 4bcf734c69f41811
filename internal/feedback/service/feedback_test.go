package service

import (
	"context"
	"testing"
	"time"

	"carebook/internal/events"
	"carebook/internal/feedback/validator"
	"carebook/pkg/config"
	mongotx "carebook/pkg/db/mongo"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/logger"
	"carebook/pkg/middleware"
	"carebook/pkg/model"
)

const (
	testDoctorID      = "507f1f77bcf86cd799439011"
	testPatientID     = "507f1f77bcf86cd799439022"
	testAppointmentID = "507f1f77bcf86cd799439033"
)

type mockFeedbackRepository struct {
	saveFunc    func(ctx context.Context, id string, submission *model.FeedbackSubmission, submittedAt time.Time) error
	approveFunc func(ctx context.Context, id string) error
	rejectFunc  func(ctx context.Context, id string) error
}

func (m *mockFeedbackRepository) SaveFeedback(ctx context.Context, id string, submission *model.FeedbackSubmission, submittedAt time.Time) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, id, submission, submittedAt)
	}
	return nil
}

func (m *mockFeedbackRepository) Approve(ctx context.Context, id string) error {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, id)
	}
	return nil
}

func (m *mockFeedbackRepository) Reject(ctx context.Context, id string) error {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, id)
	}
	return nil
}

func (m *mockFeedbackRepository) FindPending(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error) {
	return []*model.Appointment{}, nil
}

func (m *mockFeedbackRepository) CountPending(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockFeedbackRepository) RatingsByDoctor(ctx context.Context, docIDs []string) (map[string]model.DoctorRating, error) {
	return map[string]model.DoctorRating{}, nil
}

type mockAppointmentFinder struct {
	appointment *model.Appointment
	err         error
}

func (m *mockAppointmentFinder) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	return m.appointment, m.err
}

func (m *mockAppointmentFinder) Create(ctx context.Context, appointment *model.Appointment) error {
	return nil
}

func (m *mockAppointmentFinder) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *mockAppointmentFinder) FindByDoctor(ctx context.Context, docID string, limit int, offset int64) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *mockAppointmentFinder) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *mockAppointmentFinder) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockAppointmentFinder) CountByUser(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (m *mockAppointmentFinder) CountByDoctor(ctx context.Context, docID string) (int64, error) {
	return 0, nil
}

func (m *mockAppointmentFinder) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	return nil
}

func (m *mockAppointmentFinder) SetPaid(ctx context.Context, id string) error { return nil }

func (m *mockAppointmentFinder) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockPublisher struct {
	feedbackEvents []events.FeedbackEvent
}

func (m *mockPublisher) PublishAppointment(ctx context.Context, event events.AppointmentEvent) error {
	return nil
}

func (m *mockPublisher) PublishFeedback(ctx context.Context, event events.FeedbackEvent) error {
	m.feedbackEvents = append(m.feedbackEvents, event)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

func newTestService(repo *mockFeedbackRepository, finder *mockAppointmentFinder, publisher *mockPublisher) FeedbackService {
	cfg := testConfig()
	return NewFeedbackService(
		repo,
		finder,
		validator.NewFeedbackValidator(cfg.Log),
		publisher,
		cfg,
	)
}

func completedAppointment() *model.Appointment {
	return &model.Appointment{
		ID:     testAppointmentID,
		UserID: testPatientID,
		DocID:  testDoctorID,
		Status: model.StatusCompleted,
	}
}

func submission() *model.FeedbackSubmission {
	return &model.FeedbackSubmission{
		Feedback: "Attentive and thorough visit",
		Rating:   5,
	}
}

func ownerActor() middleware.Actor {
	return middleware.Actor{ID: testPatientID, Role: middleware.RolePatient}
}

func TestSubmitSuccess(t *testing.T) {
	var saved *model.FeedbackSubmission
	repo := &mockFeedbackRepository{
		saveFunc: func(ctx context.Context, id string, sub *model.FeedbackSubmission, submittedAt time.Time) error {
			saved = sub
			if submittedAt.IsZero() {
				t.Error("expected a submission timestamp")
			}
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(repo, &mockAppointmentFinder{appointment: completedAppointment()}, publisher)

	if err := svc.Submit(context.Background(), testAppointmentID, ownerActor(), submission()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved == nil || saved.Rating != 5 {
		t.Errorf("expected submission to be saved, got %+v", saved)
	}
	if len(publisher.feedbackEvents) != 1 {
		t.Errorf("expected one feedback event, got %d", len(publisher.feedbackEvents))
	}
}

func TestSubmitRequiresCompletedAppointment(t *testing.T) {
	for _, status := range []model.AppointmentStatus{model.StatusBooked, model.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			appt := completedAppointment()
			appt.Status = status
			svc := newTestService(&mockFeedbackRepository{}, &mockAppointmentFinder{appointment: appt}, &mockPublisher{})

			err := svc.Submit(context.Background(), testAppointmentID, ownerActor(), submission())
			if !apperrors.IsCode(err, apperrors.CodeNotEligible) {
				t.Fatalf("expected NOT_ELIGIBLE, got %v", err)
			}
		})
	}
}

func TestSubmitOnlyOnce(t *testing.T) {
	appt := completedAppointment()
	appt.Feedback = "Earlier feedback"
	rating := 4
	appt.Rating = &rating
	svc := newTestService(&mockFeedbackRepository{}, &mockAppointmentFinder{appointment: appt}, &mockPublisher{})

	err := svc.Submit(context.Background(), testAppointmentID, ownerActor(), submission())
	if !apperrors.IsCode(err, apperrors.CodeAlreadySubmitted) {
		t.Fatalf("expected ALREADY_SUBMITTED, got %v", err)
	}
}

func TestSubmitOwnerOnly(t *testing.T) {
	svc := newTestService(&mockFeedbackRepository{}, &mockAppointmentFinder{appointment: completedAppointment()}, &mockPublisher{})

	for _, actor := range []middleware.Actor{
		{ID: "507f1f77bcf86cd799439099", Role: middleware.RolePatient},
		{ID: testDoctorID, Role: middleware.RoleDoctor},
		{ID: "admin-1", Role: middleware.RoleAdmin},
	} {
		err := svc.Submit(context.Background(), testAppointmentID, actor, submission())
		if !apperrors.IsCode(err, apperrors.CodeForbidden) {
			t.Errorf("actor %s/%s: expected FORBIDDEN, got %v", actor.Role, actor.ID, err)
		}
	}
}

func TestSubmitValidatesPayload(t *testing.T) {
	svc := newTestService(&mockFeedbackRepository{}, &mockAppointmentFinder{appointment: completedAppointment()}, &mockPublisher{})

	tests := []struct {
		name       string
		submission *model.FeedbackSubmission
	}{
		{"empty feedback", &model.FeedbackSubmission{Feedback: "", Rating: 5}},
		{"rating too high", &model.FeedbackSubmission{Feedback: "Good", Rating: 6}},
		{"rating missing", &model.FeedbackSubmission{Feedback: "Good"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Submit(context.Background(), testAppointmentID, ownerActor(), tt.submission)
			if !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestEditRequiresExistingFeedback(t *testing.T) {
	svc := newTestService(&mockFeedbackRepository{}, &mockAppointmentFinder{appointment: completedAppointment()}, &mockPublisher{})

	err := svc.Edit(context.Background(), testAppointmentID, ownerActor(), submission())
	if !apperrors.IsCode(err, apperrors.CodeNotEligible) {
		t.Fatalf("expected NOT_ELIGIBLE, got %v", err)
	}
}

func TestEditOwnerOnly(t *testing.T) {
	appt := completedAppointment()
	appt.Feedback = "Earlier feedback"
	svc := newTestService(&mockFeedbackRepository{}, &mockAppointmentFinder{appointment: appt}, &mockPublisher{})

	stranger := middleware.Actor{ID: "507f1f77bcf86cd799439099", Role: middleware.RolePatient}
	err := svc.Edit(context.Background(), testAppointmentID, stranger, submission())
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestEditOverwritesAndRepublishes(t *testing.T) {
	appt := completedAppointment()
	appt.Feedback = "Earlier feedback"
	appt.FeedbackApproved = true

	var saved *model.FeedbackSubmission
	repo := &mockFeedbackRepository{
		saveFunc: func(ctx context.Context, id string, sub *model.FeedbackSubmission, submittedAt time.Time) error {
			saved = sub
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(repo, &mockAppointmentFinder{appointment: appt}, publisher)

	edit := &model.FeedbackSubmission{Feedback: "Revised impression", Rating: 3}
	if err := svc.Edit(context.Background(), testAppointmentID, ownerActor(), edit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved == nil || saved.Feedback != "Revised impression" || saved.Rating != 3 {
		t.Errorf("expected edited payload to be saved, got %+v", saved)
	}
	if len(publisher.feedbackEvents) != 1 {
		t.Errorf("expected the edit to re-enter moderation via an event, got %d events", len(publisher.feedbackEvents))
	}
}

func TestModerationAdminOnly(t *testing.T) {
	appt := completedAppointment()
	appt.Feedback = "Earlier feedback"
	svc := newTestService(&mockFeedbackRepository{}, &mockAppointmentFinder{appointment: appt}, &mockPublisher{})

	patient := ownerActor()
	if err := svc.Approve(context.Background(), testAppointmentID, patient); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for patient approve, got %v", err)
	}
	if err := svc.Reject(context.Background(), testAppointmentID, patient); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for patient reject, got %v", err)
	}

	admin := middleware.Actor{ID: "admin-1", Role: middleware.RoleAdmin}
	var approved bool
	repo := &mockFeedbackRepository{
		approveFunc: func(ctx context.Context, id string) error {
			approved = true
			return nil
		},
	}
	svc = newTestService(repo, &mockAppointmentFinder{appointment: appt}, &mockPublisher{})
	if err := svc.Approve(context.Background(), testAppointmentID, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approved {
		t.Error("expected Approve to reach the repository")
	}
}

func TestModerationRequiresFeedback(t *testing.T) {
	admin := middleware.Actor{ID: "admin-1", Role: middleware.RoleAdmin}
	svc := newTestService(&mockFeedbackRepository{}, &mockAppointmentFinder{appointment: completedAppointment()}, &mockPublisher{})

	if err := svc.Approve(context.Background(), testAppointmentID, admin); !apperrors.IsCode(err, apperrors.CodeNotEligible) {
		t.Errorf("expected NOT_ELIGIBLE, got %v", err)
	}
}

func TestPendingAdminOnly(t *testing.T) {
	svc := newTestService(&mockFeedbackRepository{}, &mockAppointmentFinder{appointment: completedAppointment()}, &mockPublisher{})

	_, _, err := svc.Pending(context.Background(), ownerActor(), 10, 0)
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	admin := middleware.Actor{ID: "admin-1", Role: middleware.RoleAdmin}
	if _, _, err := svc.Pending(context.Background(), admin, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
