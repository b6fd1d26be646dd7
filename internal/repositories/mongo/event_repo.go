package mongo

import (
	"context"
	"time"

	"github.com/yoockh/recruitportal/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository stores the per-candidate pipeline history.
type EventRepository interface {
	Append(ctx context.Context, e *models.PipelineEvent) error
	ListByCandidate(ctx context.Context, candidateID string, limit int64) ([]models.PipelineEvent, error)
	DeleteByCandidate(ctx context.Context, candidateID string) error
}

type eventRepo struct {
	col *mongo.Collection
}

func NewEventRepo(db *mongo.Database) EventRepository {
	return &eventRepo{col: db.Collection("pipeline_events")}
}

func (r *eventRepo) Append(ctx context.Context, e *models.PipelineEvent) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *eventRepo) ListByCandidate(ctx context.Context, candidateID string, limit int64) ([]models.PipelineEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	cur, err := r.col.Find(ctx,
		bson.M{"candidate_id": candidateID},
		options.Find().
			SetSort(bson.D{{Key: "at", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PipelineEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepo) DeleteByCandidate(ctx context.Context, candidateID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"candidate_id": candidateID})
	return err
}
