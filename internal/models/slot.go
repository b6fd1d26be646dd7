package models

import "time"

// AssessmentSlot is bookable by at most one candidate.
// CandidateID is set exactly when IsLocked is true.
type AssessmentSlot struct {
	ID          string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StartTime   time.Time `gorm:"column:start_time;type:timestamptz;not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"column:end_time;type:timestamptz;not null" json:"end_time"`
	IsLocked    bool      `gorm:"column:is_locked;not null;default:false;index" json:"is_locked"`
	CandidateID *string   `gorm:"column:candidate_id;type:uuid;index" json:"candidate_id,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID;references:ID" json:"candidate,omitempty"`
}

func (AssessmentSlot) TableName() string { return "assessment_slots" }
