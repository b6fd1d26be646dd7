package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PipelineEvent is one entry of a candidate's status history.
type PipelineEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CandidateID string             `bson:"candidate_id" json:"candidate_id"`
	Action      string             `bson:"action" json:"action"`
	From        string             `bson:"from,omitempty" json:"from,omitempty"`
	To          string             `bson:"to,omitempty" json:"to,omitempty"`
	ActorID     string             `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	Warnings    []string           `bson:"warnings,omitempty" json:"warnings,omitempty"`
	At          time.Time          `bson:"at" json:"at"`
}
