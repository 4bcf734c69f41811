package service

import (
	"context"
	"errors"
	"sync"
	"time"

	doctorserrors "carebook/internal/doctors/errors"
	"carebook/internal/doctors/repository"
	"carebook/internal/doctors/validator"
	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/middleware"
	"carebook/pkg/model"
	"carebook/pkg/sanitizer"
)

// RatingSource exposes the moderated feedback aggregates attached to public
// doctor listings. Implemented by the feedback repository.
type RatingSource interface {
	RatingsByDoctor(ctx context.Context, docIDs []string) (map[string]model.DoctorRating, error)
}

type DoctorService interface {
	Onboard(ctx context.Context, doctor *model.Doctor) error
	GetByID(ctx context.Context, id string) (*model.DoctorWithRating, error)
	List(ctx context.Context, limit int, offset int64) ([]*model.DoctorWithRating, int64, error)
	SetAvailability(ctx context.Context, id string, available bool, actor middleware.Actor) error
	Availability(ctx context.Context, docID string, now time.Time) ([]model.DaySlots, error)
}

type doctorService struct {
	repo      repository.DoctorRepository
	ratings   RatingSource
	validator *validator.DoctorValidator
	cfg       *config.Config
}

func NewDoctorService(
	repo repository.DoctorRepository,
	ratings RatingSource,
	validator *validator.DoctorValidator,
	cfg *config.Config,
) DoctorService {
	return &doctorService{
		repo:      repo,
		ratings:   ratings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *doctorService) Onboard(ctx context.Context, doctor *model.Doctor) error {
	s.sanitize(doctor)
	doctor.Available = true
	doctor.SlotsBooked = model.SlotLedger{}

	if err := s.validator.Validate(doctor); err != nil {
		s.cfg.Log.Warn("Doctor validation failed", "error", err)
		return apperrors.Validation("Doctor validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		if errors.Is(err, doctorserrors.ErrDuplicateEmail) {
			return apperrors.Conflict("Doctor with this email already exists")
		}
		s.cfg.Log.Error("Failed to create doctor", "error", err)
		return apperrors.Internal("Failed to create doctor", err)
	}

	s.cfg.Log.Info("Doctor onboarded",
		"id", doctor.ID,
		"speciality", doctor.Speciality,
	)
	return nil
}

func (s *doctorService) GetByID(ctx context.Context, id string) (*model.DoctorWithRating, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Doctor ID cannot be empty")
	}

	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(err, id)
	}

	ratings, err := s.ratings.RatingsByDoctor(ctx, []string{doctor.ID})
	if err != nil {
		s.cfg.Log.Error("Failed to load doctor rating", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to load doctor rating", err)
	}

	return withRating(doctor, ratings), nil
}

func (s *doctorService) List(ctx context.Context, limit int, offset int64) ([]*model.DoctorWithRating, int64, error) {
	var count int64
	var doctors []*model.Doctor
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count doctors", "error", errCount)
			errCount = apperrors.Internal("Failed to count doctors", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		doctors, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list doctors", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve doctors", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	docIDs := make([]string, 0, len(doctors))
	for _, doctor := range doctors {
		docIDs = append(docIDs, doctor.ID)
	}

	ratings, err := s.ratings.RatingsByDoctor(ctx, docIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load doctor ratings", "error", err)
		return nil, 0, apperrors.Internal("Failed to load doctor ratings", err)
	}

	listed := make([]*model.DoctorWithRating, 0, len(doctors))
	for _, doctor := range doctors {
		listed = append(listed, withRating(doctor, ratings))
	}

	return listed, count, nil
}

func (s *doctorService) SetAvailability(ctx context.Context, id string, available bool, actor middleware.Actor) error {
	if id == "" {
		return apperrors.InvalidInput("Doctor ID cannot be empty")
	}

	// Only the admin console or the doctor themselves may flip the toggle.
	if !actor.IsAdmin() && !(actor.Role == middleware.RoleDoctor && actor.ID == id) {
		return apperrors.Forbidden("Not allowed to change this doctor's availability")
	}

	if err := s.repo.SetAvailability(ctx, id, available); err != nil {
		return translateLookupError(err, id)
	}

	s.cfg.Log.Info("Doctor availability changed",
		"id", id,
		"available", available,
		"actor", actor.ID,
	)
	return nil
}

func (s *doctorService) Availability(ctx context.Context, docID string, now time.Time) ([]model.DaySlots, error) {
	if docID == "" {
		return nil, apperrors.InvalidInput("Doctor ID cannot be empty")
	}

	doctor, err := s.repo.FindByID(ctx, docID)
	if err != nil {
		return nil, translateLookupError(err, docID)
	}

	// Disabled doctors still get their window rendered; the availability
	// toggle is enforced at booking time.
	window := SlotWindow{
		OpenHour:    s.cfg.ClinicOpenHour,
		CloseHour:   s.cfg.ClinicCloseHour,
		IntervalMin: s.cfg.SlotIntervalMin,
		Days:        s.cfg.BookingWindowDays,
	}
	return BuildSlotWindow(doctor.SlotsBooked, now, window), nil
}

func (s *doctorService) sanitize(doctor *model.Doctor) {
	doctor.Name = sanitizer.NormalizeName(doctor.Name)
	doctor.Speciality = sanitizer.NormalizeSpeciality(doctor.Speciality)
	doctor.Degree = sanitizer.TrimAndNormalize(doctor.Degree)
	doctor.About = sanitizer.TrimAndNormalize(doctor.About)
	doctor.Address = sanitizer.TrimAndNormalize(doctor.Address)
}

func withRating(doctor *model.Doctor, ratings map[string]model.DoctorRating) *model.DoctorWithRating {
	listed := &model.DoctorWithRating{Doctor: *doctor}
	if rating, ok := ratings[doctor.ID]; ok {
		avg := rating.AvgRating
		listed.Rating = &avg
		listed.RatingCount = rating.Count
	}
	return listed
}

func translateLookupError(err error, id string) error {
	if errors.Is(err, doctorserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Doctor", id)
	}
	if errors.Is(err, doctorserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid doctor ID format")
	}
	return apperrors.Internal("Failed to access doctor record", err)
}
