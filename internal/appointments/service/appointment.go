package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appointmentserrors "carebook/internal/appointments/errors"
	"carebook/internal/appointments/repository"
	"carebook/internal/appointments/validator"
	doctorserrors "carebook/internal/doctors/errors"
	doctorsrepo "carebook/internal/doctors/repository"
	"carebook/internal/events"
	patientserrors "carebook/internal/patients/errors"
	patientsrepo "carebook/internal/patients/repository"
	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/middleware"
	"carebook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type AppointmentService interface {
	Book(ctx context.Context, actor middleware.Actor, request *model.BookingRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, id string, actor middleware.Actor) (*model.Appointment, error)
	ListForActor(ctx context.Context, actor middleware.Actor, limit int, offset int64) ([]*model.Appointment, int64, error)
	Cancel(ctx context.Context, id string, actor middleware.Actor) error
	Complete(ctx context.Context, id string, actor middleware.Actor) error
	MarkPaid(ctx context.Context, id string, actor middleware.Actor) error
}

type appointmentService struct {
	repo        repository.AppointmentRepository
	doctorRepo  doctorsrepo.DoctorRepository
	patientRepo patientsrepo.PatientRepository
	lockRepo    repository.SlotLockRepository
	validator   *validator.AppointmentValidator
	publisher   events.Publisher
	cfg         *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	doctorRepo doctorsrepo.DoctorRepository,
	patientRepo patientsrepo.PatientRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:        repo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		lockRepo:    lockRepo,
		validator:   validator,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func (s *appointmentService) Book(ctx context.Context, actor middleware.Actor, request *model.BookingRequest) (*model.Appointment, error) {
	if actor.Role != middleware.RolePatient {
		return nil, apperrors.Forbidden("Only patients may book appointments")
	}

	if err := s.validator.ValidateBooking(request); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	doctor, err := s.doctorRepo.FindByID(ctx, request.DocID)
	if err != nil {
		return nil, translateDoctorError(err, request.DocID)
	}
	if !doctor.Available {
		return nil, apperrors.DoctorUnavailable(doctor.ID)
	}

	// Fast path rejection. The conditional ledger update below is the
	// authoritative guard.
	if doctor.SlotsBooked.Has(request.SlotDate, request.SlotTime) {
		return nil, apperrors.SlotUnavailable(request.SlotDate, request.SlotTime)
	}

	patient, err := s.patientRepo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, patientserrors.ErrNotFound) || errors.Is(err, patientserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Patient", actor.ID)
		}
		s.cfg.Log.Error("Failed to load patient", "user_id", actor.ID, "error", err)
		return nil, apperrors.Internal("Failed to load patient record", err)
	}

	// Advisory lock on the slot coordinates so two racing bookings do not
	// both enter the transaction.
	lockID, err := s.acquireSlotLock(ctx, request.DocID, request.SlotDate, request.SlotTime)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	appointment := &model.Appointment{
		UserID:   actor.ID,
		DocID:    doctor.ID,
		SlotDate: request.SlotDate,
		SlotTime: request.SlotTime,
		UserData: patient.Snapshot(),
		DocData:  doctor.Snapshot(),
		Amount:   doctor.Fees,
		Status:   model.StatusBooked,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		if err := s.doctorRepo.ReserveSlot(sessCtx, doctor.ID, request.SlotDate, request.SlotTime); err != nil {
			return err
		}
		return s.repo.Create(sessCtx, appointment)
	})
	if err != nil {
		if errors.Is(err, doctorserrors.ErrSlotTaken) {
			return nil, apperrors.SlotUnavailable(request.SlotDate, request.SlotTime)
		}
		s.cfg.Log.Error("Booking transaction failed",
			"doc_id", doctor.ID,
			"slot_date", request.SlotDate,
			"slot_time", request.SlotTime,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to book appointment", err)
	}

	s.cfg.Log.Info("Appointment booked",
		"id", appointment.ID,
		"user_id", appointment.UserID,
		"doc_id", appointment.DocID,
		"slot_date", appointment.SlotDate,
		"slot_time", appointment.SlotTime,
	)
	s.publishAppointmentEvent(ctx, events.TypeAppointmentBooked, appointment)

	return appointment, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string, actor middleware.Actor) (*model.Appointment, error) {
	appointment, err := s.findAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canAccess(appointment, actor) {
		return nil, apperrors.Forbidden("Not allowed to view this appointment")
	}

	return appointment, nil
}

func (s *appointmentService) ListForActor(ctx context.Context, actor middleware.Actor, limit int, offset int64) ([]*model.Appointment, int64, error) {
	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		switch actor.Role {
		case middleware.RoleAdmin:
			count, errCount = s.repo.Count(ctx)
		case middleware.RoleDoctor:
			count, errCount = s.repo.CountByDoctor(ctx, actor.ID)
		default:
			count, errCount = s.repo.CountByUser(ctx, actor.ID)
		}
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		switch actor.Role {
		case middleware.RoleAdmin:
			appointments, errFind = s.repo.FindAll(ctx, limit, offset)
		case middleware.RoleDoctor:
			appointments, errFind = s.repo.FindByDoctor(ctx, actor.ID, limit, offset)
		default:
			appointments, errFind = s.repo.FindByUser(ctx, actor.ID, limit, offset)
		}
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
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

func (s *appointmentService) Cancel(ctx context.Context, id string, actor middleware.Actor) error {
	appointment, err := s.findAppointment(ctx, id)
	if err != nil {
		return err
	}

	if !canAccess(appointment, actor) {
		return apperrors.Forbidden("Not allowed to cancel this appointment")
	}

	if appointment.Status.Terminal() {
		return apperrors.Conflict(fmt.Sprintf("Appointment is already %s", appointment.Status))
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		if err := s.repo.UpdateStatus(sessCtx, appointment.ID, model.StatusCancelled); err != nil {
			return err
		}

		err := s.doctorRepo.ReleaseSlot(sessCtx, appointment.DocID, appointment.SlotDate, appointment.SlotTime)
		if errors.Is(err, doctorserrors.ErrNotFound) {
			// Doctor record gone; cancelling the appointment still stands.
			s.cfg.Log.Warn("Doctor missing during slot release", "doc_id", appointment.DocID)
			return nil
		}
		return err
	})
	if err != nil {
		s.cfg.Log.Error("Cancel transaction failed", "id", appointment.ID, "error", err)
		return apperrors.Internal("Failed to cancel appointment", err)
	}

	appointment.Status = model.StatusCancelled
	s.cfg.Log.Info("Appointment cancelled",
		"id", appointment.ID,
		"actor", actor.ID,
		"role", actor.Role,
	)
	s.publishAppointmentEvent(ctx, events.TypeAppointmentCancelled, appointment)

	return nil
}

func (s *appointmentService) Complete(ctx context.Context, id string, actor middleware.Actor) error {
	appointment, err := s.findAppointment(ctx, id)
	if err != nil {
		return err
	}

	if actor.Role != middleware.RoleDoctor || actor.ID != appointment.DocID {
		return apperrors.MarkFailed("Only the appointment's doctor may mark it completed")
	}
	if appointment.Status != model.StatusBooked {
		return apperrors.MarkFailed(fmt.Sprintf("Appointment is %s, not booked", appointment.Status))
	}

	// The slot stays in the ledger; completed visits are history, not freed
	// capacity.
	if err := s.repo.UpdateStatus(ctx, appointment.ID, model.StatusCompleted); err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Appointment", id)
		}
		s.cfg.Log.Error("Failed to complete appointment", "id", id, "error", err)
		return apperrors.Internal("Failed to complete appointment", err)
	}

	appointment.Status = model.StatusCompleted
	s.cfg.Log.Info("Appointment completed", "id", appointment.ID, "doc_id", actor.ID)
	s.publishAppointmentEvent(ctx, events.TypeAppointmentCompleted, appointment)

	return nil
}

func (s *appointmentService) MarkPaid(ctx context.Context, id string, actor middleware.Actor) error {
	appointment, err := s.findAppointment(ctx, id)
	if err != nil {
		return err
	}

	if !actor.IsAdmin() && !(actor.Role == middleware.RolePatient && actor.ID == appointment.UserID) {
		return apperrors.Forbidden("Not allowed to mark this appointment paid")
	}

	if appointment.Paid {
		return nil
	}

	if err := s.repo.SetPaid(ctx, appointment.ID); err != nil {
		s.cfg.Log.Error("Failed to mark appointment paid", "id", id, "error", err)
		return apperrors.Internal("Failed to mark appointment paid", err)
	}

	s.cfg.Log.Info("Appointment marked paid", "id", appointment.ID, "actor", actor.ID)
	return nil
}

func (s *appointmentService) findAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, id)
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

func (s *appointmentService) acquireSlotLock(ctx context.Context, docID, slotDate, slotTime string) (string, error) {
	lockID := fmt.Sprintf("slot_%s_%s_%s", docID, slotDate, slotTime)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.SlotUnavailable(slotDate, slotTime)
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *appointmentService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *appointmentService) publishAppointmentEvent(ctx context.Context, eventType string, appointment *model.Appointment) {
	event := events.NewAppointmentEvent(eventType, appointment)
	if err := s.publisher.PublishAppointment(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"type", eventType,
			"appointment_id", appointment.ID,
			"error", err,
		)
	}
}

// canAccess reports whether the actor owns the appointment from either side
// or is an admin.
func canAccess(appointment *model.Appointment, actor middleware.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.Role == middleware.RolePatient && actor.ID == appointment.UserID {
		return true
	}
	if actor.Role == middleware.RoleDoctor && actor.ID == appointment.DocID {
		return true
	}
	return false
}

func translateDoctorError(err error, id string) error {
	if errors.Is(err, doctorserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Doctor", id)
	}
	if errors.Is(err, doctorserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid doctor ID format")
	}
	return apperrors.Internal("Failed to access doctor record", err)
}
