package services

import (
	"context"

	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/models"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/utils"
)

// BellFeed is the notification dropdown: latest entries plus the unread count.
type BellFeed struct {
	Items  []models.Notification `json:"items"`
	Unread int64                 `json:"unread"`
}

type NotificationService interface {
	Feed(ctx context.Context, actor access.Principal, limit int) (*BellFeed, error)
	MarkAllRead(ctx context.Context, actor access.Principal) (int64, error)
}

type notificationService struct {
	notes pgrepo.NotificationRepository
}

func NewNotificationService(notes pgrepo.NotificationRepository) NotificationService {
	return &notificationService{notes: notes}
}

func (s *notificationService) Feed(ctx context.Context, actor access.Principal, limit int) (*BellFeed, error) {
	const op = "NotificationService.Feed"
	if err := access.Authorize(actor, access.ViewNotifications, op); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	items, err := s.notes.Latest(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load notifications", err)
	}
	unread, err := s.notes.CountUnread(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count unread notifications", err)
	}
	return &BellFeed{Items: items, Unread: unread}, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor access.Principal) (int64, error) {
	const op = "NotificationService.MarkAllRead"
	if err := access.Authorize(actor, access.ViewNotifications, op); err != nil {
		return 0, err
	}
	n, err := s.notes.MarkAllRead(ctx)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to mark notifications read", err)
	}
	return n, nil
}
