package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	"github.com/yoockh/recruitportal/internal/utils"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	Insert(ctx context.Context, c *models.Candidate) error
	GetByID(ctx context.Context, id string) (*models.Candidate, error)
	List(ctx context.Context, f models.CandidateFilter) ([]models.Candidate, error)
	Recent(ctx context.Context, n int) ([]models.Candidate, error)
	// Count counts candidates in status, or all candidates when status is empty.
	Count(ctx context.Context, status pipeline.Status) (int64, error)
	// UpdateStatus moves a candidate from one status to another. It returns
	// utils.ErrConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to pipeline.Status) error
	Delete(ctx context.Context, id string) error
}

type candidateRepo struct {
	db *gorm.DB
}

func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Insert(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *candidateRepo) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	var c models.Candidate
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *candidateRepo) List(ctx context.Context, f models.CandidateFilter) ([]models.Candidate, error) {
	if f.Limit <= 0 {
		f.Limit = 200
	}

	q := r.db.WithContext(ctx).Model(&models.Candidate{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + s + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR position ILIKE ?", like, like, like)
	}

	var rows []models.Candidate
	err := q.Order("created_at DESC").Limit(f.Limit).Find(&rows).Error
	return rows, err
}

func (r *candidateRepo) Recent(ctx context.Context, n int) ([]models.Candidate, error) {
	if n <= 0 {
		n = 5
	}
	var rows []models.Candidate
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&rows).Error
	return rows, err
}

func (r *candidateRepo) Count(ctx context.Context, status pipeline.Status) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Candidate{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *candidateRepo) UpdateStatus(ctx context.Context, id string, from, to pipeline.Status) error {
	res := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
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

func (r *candidateRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Candidate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
