package repository

import (
	"context"
	"fmt"
	"time"

	appointmentserrors "carebook/internal/appointments/errors"
	appointmentsrepo "carebook/internal/appointments/repository"
	"carebook/pkg/config"
	"carebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeedbackRepository works on the appointments collection; feedback is an
// embedded payload on the appointment document, never a separate record.
type FeedbackRepository interface {
	SaveFeedback(ctx context.Context, id string, submission *model.FeedbackSubmission, submittedAt time.Time) error
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	FindPending(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error)
	CountPending(ctx context.Context) (int64, error)
	RatingsByDoctor(ctx context.Context, docIDs []string) (map[string]model.DoctorRating, error)
}

type mongoFeedbackRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoFeedbackRepository(cfg *config.Config) FeedbackRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFeedbackRepository{
		cfg:        cfg,
		collection: db.Collection(appointmentsrepo.CollectionName),
	}
}

func (r *mongoFeedbackRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongo.SessionFromContext(ctx) != nil {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithTimeout(ctx, time.Until(deadline))
	}

	return context.WithTimeout(ctx, timeout)
}

// SaveFeedback writes the payload and resets both moderation flags, so an
// edit always re-enters the moderation queue.
func (r *mongoFeedbackRepository) SaveFeedback(ctx context.Context, id string, submission *model.FeedbackSubmission, submittedAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"feedback":              submission.Feedback,
			"rating":                submission.Rating,
			"anonymous_feedback":    submission.Anonymous,
			"feedback_approved":     false,
			"feedback_rejected":     false,
			"feedback_submitted_at": submittedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	if result.MatchedCount == 0 {
		return appointmentserrors.ErrNotFound
	}

	return nil
}

func (r *mongoFeedbackRepository) Approve(ctx context.Context, id string) error {
	return r.moderate(ctx, id, true)
}

func (r *mongoFeedbackRepository) Reject(ctx context.Context, id string) error {
	return r.moderate(ctx, id, false)
}

// moderate sets exactly one of the two flags; they are mutually exclusive.
func (r *mongoFeedbackRepository) moderate(ctx context.Context, id string, approved bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"feedback_approved": approved,
			"feedback_rejected": !approved,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to moderate feedback: %w", err)
	}

	if result.MatchedCount == 0 {
		return appointmentserrors.ErrNotFound
	}

	return nil
}

func pendingFilter() bson.M {
	return bson.M{
		"feedback":          bson.M{"$ne": ""},
		"feedback_approved": false,
		"feedback_rejected": false,
	}
}

func (r *mongoFeedbackRepository) FindPending(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "feedback_submitted_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, pendingFilter(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode pending feedback: %w", err)
	}

	return appointments, nil
}

func (r *mongoFeedbackRepository) CountPending(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, pendingFilter())
	if err != nil {
		return 0, fmt.Errorf("failed to count pending feedback: %w", err)
	}

	return count, nil
}

// ratingsPipeline averages ratings per doctor. Only approved feedback with
// a rating attached counts; unrated or unmoderated reviews never move the
// average.
func ratingsPipeline(docIDs []string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"doc_id":            bson.M{"$in": docIDs},
			"feedback_approved": true,
			"rating":            bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$doc_id",
			"avg_rating": bson.M{"$avg": "$rating"},
			"count":      bson.M{"$sum": 1},
		}}},
	}
}

// RatingsByDoctor aggregates mean rating and review count per doctor over
// approved feedback with a rating attached.
func (r *mongoFeedbackRepository) RatingsByDoctor(ctx context.Context, docIDs []string) (map[string]model.DoctorRating, error) {
	ratings := make(map[string]model.DoctorRating, len(docIDs))
	if len(docIDs) == 0 {
		return ratings, nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, ratingsPipeline(docIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var results []model.DoctorRating
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode ratings: %w", err)
	}

	for _, rating := range results {
		ratings[rating.DocID] = rating
	}

	return ratings, nil
}
