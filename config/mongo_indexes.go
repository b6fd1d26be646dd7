package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events := MongoDatabase().Collection("pipeline_events")
	_, err := events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("by_candidate_at"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "at", Value: -1}},
			Options: options.Index().SetName("by_actor_at").SetSparse(true),
		},
	})
	return err
}
