package service

import (
	"context"
	"testing"
	"time"

	doctorserrors "carebook/internal/doctors/errors"
	"carebook/internal/doctors/validator"
	"carebook/pkg/config"
	mongotx "carebook/pkg/db/mongo"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/logger"
	"carebook/pkg/middleware"
	"carebook/pkg/model"
)

const (
	testDoctorID  = "507f1f77bcf86cd799439011"
	otherDoctorID = "507f1f77bcf86cd799439044"
)

type mockDoctorRepository struct {
	createFunc          func(ctx context.Context, doctor *model.Doctor) error
	findByIDFunc        func(ctx context.Context, id string) (*model.Doctor, error)
	findAllFunc         func(ctx context.Context, limit int, offset int64) ([]*model.Doctor, error)
	countFunc           func(ctx context.Context) (int64, error)
	setAvailabilityFunc func(ctx context.Context, id string, available bool) error
}

func (m *mockDoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, doctor)
	}
	doctor.ID = testDoctorID
	return nil
}

func (m *mockDoctorRepository) FindByID(ctx context.Context, id string) (*model.Doctor, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Doctor{ID: id, Available: true, SlotsBooked: model.SlotLedger{}}, nil
}

func (m *mockDoctorRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Doctor, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Doctor{}, nil
}

func (m *mockDoctorRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockDoctorRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	if m.setAvailabilityFunc != nil {
		return m.setAvailabilityFunc(ctx, id, available)
	}
	return nil
}

func (m *mockDoctorRepository) ReserveSlot(ctx context.Context, docID, dateKey, timeLabel string) error {
	return nil
}

func (m *mockDoctorRepository) ReleaseSlot(ctx context.Context, docID, dateKey, timeLabel string) error {
	return nil
}

func (m *mockDoctorRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockRatingSource struct {
	ratings map[string]model.DoctorRating
}

func (m *mockRatingSource) RatingsByDoctor(ctx context.Context, docIDs []string) (map[string]model.DoctorRating, error) {
	if m.ratings != nil {
		return m.ratings, nil
	}
	return map[string]model.DoctorRating{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ClinicOpenHour:    10,
		ClinicCloseHour:   21,
		SlotIntervalMin:   30,
		BookingWindowDays: 7,
	}
}

func newTestService(repo *mockDoctorRepository, ratings *mockRatingSource) DoctorService {
	cfg := testConfig()
	return NewDoctorService(repo, ratings, validator.NewDoctorValidator(cfg.Log), cfg)
}

func validDoctor() *model.Doctor {
	return &model.Doctor{
		Name:           "Dr. Noa Levi",
		Email:          "noa@example.com",
		Speciality:     "Dermatology",
		Degree:         "MD",
		Experience:     "8 years",
		About:          "Board certified dermatologist",
		Fees:           120,
		Address:        "12 Herzl St, Tel Aviv",
		RegistrationNo: "IL-44821",
	}
}

func TestOnboardDefaults(t *testing.T) {
	var created *model.Doctor
	repo := &mockDoctorRepository{
		createFunc: func(ctx context.Context, doctor *model.Doctor) error {
			created = doctor
			doctor.ID = testDoctorID
			return nil
		},
	}
	svc := newTestService(repo, &mockRatingSource{})

	doctor := validDoctor()
	doctor.Available = false
	doctor.SlotsBooked = nil

	if err := svc.Onboard(context.Background(), doctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if !created.Available {
		t.Error("expected onboarded doctor to default to available")
	}
	if created.SlotsBooked == nil {
		t.Error("expected an empty slot ledger, got nil")
	}
}

func TestOnboardValidation(t *testing.T) {
	svc := newTestService(&mockDoctorRepository{}, &mockRatingSource{})

	doctor := validDoctor()
	doctor.Email = "not-an-email"

	err := svc.Onboard(context.Background(), doctor)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestOnboardDuplicateEmail(t *testing.T) {
	repo := &mockDoctorRepository{
		createFunc: func(ctx context.Context, doctor *model.Doctor) error {
			return doctorserrors.ErrDuplicateEmail
		},
	}
	svc := newTestService(repo, &mockRatingSource{})

	err := svc.Onboard(context.Background(), validDoctor())
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestListAttachesRatings(t *testing.T) {
	repo := &mockDoctorRepository{
		countFunc: func(ctx context.Context) (int64, error) { return 2, nil },
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Doctor, error) {
			return []*model.Doctor{
				{ID: testDoctorID, Name: "Dr. Noa Levi"},
				{ID: otherDoctorID, Name: "Dr. Omer Bar"},
			}, nil
		},
	}
	ratings := &mockRatingSource{
		ratings: map[string]model.DoctorRating{
			testDoctorID: {DocID: testDoctorID, AvgRating: 4.5, Count: 2},
		},
	}
	svc := newTestService(repo, ratings)

	doctors, total, err := svc.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total != 2 {
		t.Errorf("expected total 2, got %d", total)
	}
	if len(doctors) != 2 {
		t.Fatalf("expected 2 doctors, got %d", len(doctors))
	}

	rated := doctors[0]
	if rated.Rating == nil || *rated.Rating != 4.5 || rated.RatingCount != 2 {
		t.Errorf("expected rating 4.5 with count 2, got %+v", rated)
	}

	unrated := doctors[1]
	if unrated.Rating != nil || unrated.RatingCount != 0 {
		t.Errorf("expected no rating for unreviewed doctor, got %+v", unrated)
	}
}

func TestSetAvailabilityAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		actor   middleware.Actor
		wantErr bool
	}{
		{"admin", middleware.Actor{ID: "admin-1", Role: middleware.RoleAdmin}, false},
		{"the doctor themselves", middleware.Actor{ID: testDoctorID, Role: middleware.RoleDoctor}, false},
		{"another doctor", middleware.Actor{ID: otherDoctorID, Role: middleware.RoleDoctor}, true},
		{"a patient", middleware.Actor{ID: "507f1f77bcf86cd799439022", Role: middleware.RolePatient}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockDoctorRepository{}, &mockRatingSource{})

			err := svc.SetAvailability(context.Background(), testDoctorID, false, tt.actor)
			if tt.wantErr {
				if !apperrors.IsCode(err, apperrors.CodeForbidden) {
					t.Fatalf("expected FORBIDDEN, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAvailabilityExcludesLedgerEntries(t *testing.T) {
	now := time.Now()
	dateKey := model.DateKey(now.AddDate(0, 0, 1))
	repo := &mockDoctorRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Doctor, error) {
			return &model.Doctor{
				ID:        id,
				Available: true,
				SlotsBooked: model.SlotLedger{
					dateKey: {"10:00 AM"},
				},
			}, nil
		},
	}
	svc := newTestService(repo, &mockRatingSource{})

	buckets, err := svc.Availability(context.Background(), testDoctorID, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 7 {
		t.Fatalf("expected 7 day buckets, got %d", len(buckets))
	}

	for _, slot := range buckets[1].Slots {
		if slot.Time == "10:00 AM" {
			t.Error("expected booked slot to be excluded from tomorrow")
		}
	}
}
