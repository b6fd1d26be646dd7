package postgres

import (
	"context"

	"github.com/yoockh/recruitportal/internal/models"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	Latest(ctx context.Context, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context) (int64, error)
	MarkAllRead(ctx context.Context) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) Latest(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *notificationRepo) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Count(&n).Error
	return n, err
}

func (r *notificationRepo) MarkAllRead(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
