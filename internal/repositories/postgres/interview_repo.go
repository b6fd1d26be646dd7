package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	"github.com/yoockh/recruitportal/internal/utils"
	"gorm.io/gorm"
)

type InterviewRepository interface {
	Insert(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	List(ctx context.Context) ([]models.Interview, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.Interview, error)
	CountPending(ctx context.Context) (int64, error)

	// SetDecision records feedback. Without overwrite it only matches an
	// interview whose decision is still null and returns utils.ErrConflict otherwise.
	SetDecision(ctx context.Context, id string, d pipeline.Decision, feedback, actorID string, at time.Time, overwrite bool) error
	DeleteByCandidate(ctx context.Context, candidateID string) error
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Insert(ctx context.Context, iv *models.Interview) error {
	return r.db.WithContext(ctx).Create(iv).Error
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var iv models.Interview
	err := r.db.WithContext(ctx).Preload("Candidate").Where("id = ?", id).Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) List(ctx context.Context) ([]models.Interview, error) {
	var rows []models.Interview
	err := r.db.WithContext(ctx).
		Preload("Candidate").
		Order("scheduled_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *interviewRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.Interview, error) {
	var rows []models.Interview
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("scheduled_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *interviewRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("decision IS NULL").
		Count(&n).Error
	return n, err
}

func (r *interviewRepo) SetDecision(ctx context.Context, id string, d pipeline.Decision, feedback, actorID string, at time.Time, overwrite bool) error {
	q := r.db.WithContext(ctx).Model(&models.Interview{}).Where("id = ?", id)
	if !overwrite {
		q = q.Where("decision IS NULL")
	}
	res := q.Updates(map[string]any{
		"decision":   d,
		"feedback":   feedback,
		"decided_by": actorID,
		"decided_at": at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return utils.ErrConflict
}

func (r *interviewRepo) DeleteByCandidate(ctx context.Context, candidateID string) error {
	return r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Delete(&models.Interview{}).Error
}
