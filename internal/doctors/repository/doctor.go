package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	doctorserrors "carebook/internal/doctors/errors"
	"carebook/pkg/config"
	mongotx "carebook/pkg/db/mongo"
	"carebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Doctors"

	slotsBookedField = "slots_booked"
)

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	FindByID(ctx context.Context, id string) (*model.Doctor, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Doctor, error)
	Count(ctx context.Context) (int64, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	ReserveSlot(ctx context.Context, docID, dateKey, timeLabel string) error
	ReleaseSlot(ctx context.Context, docID, dateKey, timeLabel string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoDoctorRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoDoctorRepository(cfg *config.Config) DoctorRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDoctorRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is already bound to
// a transaction session, which must not be re-wrapped.
func (r *mongoDoctorRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongo.SessionFromContext(ctx) != nil {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoDoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doctor.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if doctor.SlotsBooked == nil {
		doctor.SlotsBooked = model.SlotLedger{}
	}

	result, err := r.collection.InsertOne(ctx, doctor)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return doctorserrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		doctor.ID = oid.Hex()
	}
	return nil
}

func (r *mongoDoctorRepository) FindByID(ctx context.Context, id string) (*model.Doctor, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", doctorserrors.ErrInvalidID, id)
	}

	var doctor model.Doctor
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doctor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, doctorserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find doctor: %w", err)
	}

	return &doctor, nil
}

func (r *mongoDoctorRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Doctor, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find doctors: %w", err)
	}
	defer cursor.Close(ctx)

	var doctors []*model.Doctor
	if err = cursor.All(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("failed to decode doctors: %w", err)
	}

	return doctors, nil
}

func (r *mongoDoctorRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	return count, nil
}

func (r *mongoDoctorRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", doctorserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"available": available}},
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor availability: %w", err)
	}

	if result.MatchedCount == 0 {
		return doctorserrors.ErrNotFound
	}

	return nil
}

// ReserveSlot appends the slot to the doctor's ledger only if the doctor is
// available and the slot is not yet present. The guard and the push execute
// as one document update, so two racing bookings can never both match.
func (r *mongoDoctorRepository) ReserveSlot(ctx context.Context, docID, dateKey, timeLabel string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(docID)
	if err != nil {
		return fmt.Errorf("%w: %s", doctorserrors.ErrInvalidID, docID)
	}

	ledgerKey := slotsBookedField + "." + dateKey
	filter := bson.M{
		"_id":       objectID,
		"available": true,
		ledgerKey:   bson.M{"$ne": timeLabel},
	}
	update := bson.M{
		"$push": bson.M{ledgerKey: timeLabel},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}

	if result.MatchedCount == 0 {
		return doctorserrors.ErrSlotTaken
	}

	return nil
}

// ReleaseSlot removes the slot from the ledger. The $pull filters by value,
// so releasing an already-absent entry is a no-op rather than an error.
func (r *mongoDoctorRepository) ReleaseSlot(ctx context.Context, docID, dateKey, timeLabel string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(docID)
	if err != nil {
		return fmt.Errorf("%w: %s", doctorserrors.ErrInvalidID, docID)
	}

	ledgerKey := slotsBookedField + "." + dateKey
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$pull": bson.M{ledgerKey: timeLabel}},
	)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}

	if result.MatchedCount == 0 {
		return doctorserrors.ErrNotFound
	}

	return nil
}

func (r *mongoDoctorRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
