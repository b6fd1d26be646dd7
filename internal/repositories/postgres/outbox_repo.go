package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/utils"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	Insert(ctx context.Context, m *models.EmailOutbox) error
	GetByID(ctx context.Context, id string) (*models.EmailOutbox, error)
	List(ctx context.Context, status models.OutboxStatus, limit int) ([]models.EmailOutbox, error)
	// Due lists pending rows whose next attempt is at or before now.
	Due(ctx context.Context, now time.Time, limit int) ([]models.EmailOutbox, error)
	// Claim leases a due pending row until the given time so only one
	// dispatcher sends it. It returns utils.ErrConflict when the row is not
	// pending or not yet due.
	Claim(ctx context.Context, id string, now, until time.Time) error
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, lastErr string, next time.Time, dead bool) error
	Requeue(ctx context.Context, id string, at time.Time) error
	// DiscardPending marks every pending row of a candidate dead and returns
	// how many it touched. Sent rows are kept.
	DiscardPending(ctx context.Context, candidateID, reason string) (int64, error)
}

type outboxRepo struct {
	db *gorm.DB
}

func NewOutboxRepo(db *gorm.DB) OutboxRepository {
	return &outboxRepo{db: db}
}

func (r *outboxRepo) Insert(ctx context.Context, m *models.EmailOutbox) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *outboxRepo) GetByID(ctx context.Context, id string) (*models.EmailOutbox, error) {
	var m models.EmailOutbox
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &m, err
}

func (r *outboxRepo) List(ctx context.Context, status models.OutboxStatus, limit int) ([]models.EmailOutbox, error) {
	if limit <= 0 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Model(&models.EmailOutbox{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.EmailOutbox
	err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *outboxRepo) Due(ctx context.Context, now time.Time, limit int) ([]models.EmailOutbox, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.EmailOutbox
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", models.OutboxPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *outboxRepo) Claim(ctx context.Context, id string, now, until time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.EmailOutbox{}).
		Where("id = ? AND status = ? AND next_attempt_at <= ?", id, models.OutboxPending, now).
		Update("next_attempt_at", until)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrConflict
	}
	return nil
}

func (r *outboxRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"status":     models.OutboxSent,
		"sent_at":    at,
		"last_error": "",
		"attempts":   gorm.Expr("attempts + 1"),
	})
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id string, lastErr string, next time.Time, dead bool) error {
	status := models.OutboxPending
	if dead {
		status = models.OutboxDead
	}
	return r.update(ctx, id, map[string]any{
		"status":          status,
		"last_error":      lastErr,
		"next_attempt_at": next,
		"attempts":        gorm.Expr("attempts + 1"),
	})
}

func (r *outboxRepo) Requeue(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"status":          models.OutboxPending,
		"attempts":        0,
		"next_attempt_at": at,
	})
}

func (r *outboxRepo) DiscardPending(ctx context.Context, candidateID, reason string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.EmailOutbox{}).
		Where("candidate_id = ? AND status = ?", candidateID, models.OutboxPending).
		Updates(map[string]any{
			"status":     models.OutboxDead,
			"last_error": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *outboxRepo) update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.EmailOutbox{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
