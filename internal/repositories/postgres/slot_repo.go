package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/utils"
	"gorm.io/gorm"
)

type SlotRepository interface {
	Insert(ctx context.Context, s *models.AssessmentSlot) error
	GetByID(ctx context.Context, id string) (*models.AssessmentSlot, error)
	ListAll(ctx context.Context) ([]models.AssessmentSlot, error)
	ListAvailable(ctx context.Context, from time.Time) ([]models.AssessmentSlot, error)
	Upcoming(ctx context.Context, from time.Time, n int) ([]models.AssessmentSlot, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.AssessmentSlot, error)

	// Book locks an unlocked slot for candidateID. It returns utils.ErrConflict
	// when the slot is already locked and utils.ErrNotFound when it is missing.
	Book(ctx context.Context, slotID, candidateID string) error
	// Release unlocks every slot held by candidateID except keepSlotID.
	Release(ctx context.Context, candidateID, keepSlotID string) error
	DeleteByCandidate(ctx context.Context, candidateID string) error
	// DeleteUnlocked removes a slot nobody has booked.
	DeleteUnlocked(ctx context.Context, id string) error
}

type slotRepo struct {
	db *gorm.DB
}

func NewSlotRepo(db *gorm.DB) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) Insert(ctx context.Context, s *models.AssessmentSlot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *slotRepo) GetByID(ctx context.Context, id string) (*models.AssessmentSlot, error) {
	var s models.AssessmentSlot
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *slotRepo) ListAll(ctx context.Context) ([]models.AssessmentSlot, error) {
	var rows []models.AssessmentSlot
	err := r.db.WithContext(ctx).
		Preload("Candidate").
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *slotRepo) ListAvailable(ctx context.Context, from time.Time) ([]models.AssessmentSlot, error) {
	var rows []models.AssessmentSlot
	err := r.db.WithContext(ctx).
		Where("is_locked = ? AND start_time >= ?", false, from).
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *slotRepo) Upcoming(ctx context.Context, from time.Time, n int) ([]models.AssessmentSlot, error) {
	if n <= 0 {
		n = 3
	}
	var rows []models.AssessmentSlot
	err := r.db.WithContext(ctx).
		Preload("Candidate").
		Where("is_locked = ? AND start_time >= ?", true, from).
		Order("start_time ASC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}

func (r *slotRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.AssessmentSlot, error) {
	var rows []models.AssessmentSlot
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *slotRepo) Book(ctx context.Context, slotID, candidateID string) error {
	// compare-and-set: only an unlocked row matches
	res := r.db.WithContext(ctx).
		Model(&models.AssessmentSlot{}).
		Where("id = ? AND is_locked = ?", slotID, false).
		Updates(map[string]any{
			"is_locked":    true,
			"candidate_id": candidateID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.AssessmentSlot{}).Where("id = ?", slotID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrNotFound
	}
	return utils.ErrConflict
}

func (r *slotRepo) Release(ctx context.Context, candidateID, keepSlotID string) error {
	q := r.db.WithContext(ctx).
		Model(&models.AssessmentSlot{}).
		Where("candidate_id = ?", candidateID)
	if keepSlotID != "" {
		q = q.Where("id <> ?", keepSlotID)
	}
	return q.Updates(map[string]any{
		"is_locked":    false,
		"candidate_id": nil,
	}).Error
}

func (r *slotRepo) DeleteByCandidate(ctx context.Context, candidateID string) error {
	return r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Delete(&models.AssessmentSlot{}).Error
}

func (r *slotRepo) DeleteUnlocked(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND is_locked = ?", id, false).
		Delete(&models.AssessmentSlot{})
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
