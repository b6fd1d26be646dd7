package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/models"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/utils"
)

type OutboxService interface {
	List(ctx context.Context, actor access.Principal, status models.OutboxStatus, limit int) ([]models.EmailOutbox, error)
	// Requeue resets a dead or pending row so the dispatcher tries it again now.
	Requeue(ctx context.Context, actor access.Principal, outboxID string) (*models.EmailOutbox, error)
}

type outboxService struct {
	repo      pgrepo.OutboxRepository
	publisher OutboxPublisher
	log       *logrus.Logger
	now       func() time.Time
}

func NewOutboxService(repo pgrepo.OutboxRepository, publisher OutboxPublisher, log *logrus.Logger) OutboxService {
	return &outboxService{repo: repo, publisher: publisher, log: defaultLogger(log), now: utcNow}
}

func (s *outboxService) List(ctx context.Context, actor access.Principal, status models.OutboxStatus, limit int) ([]models.EmailOutbox, error) {
	const op = "OutboxService.List"
	if err := access.Authorize(actor, access.ViewOutbox, op); err != nil {
		return nil, err
	}
	switch status {
	case "", models.OutboxPending, models.OutboxSent, models.OutboxDead:
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown outbox status", nil)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	out, err := s.repo.List(ctx, status, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list outbox", err)
	}
	return out, nil
}

func (s *outboxService) Requeue(ctx context.Context, actor access.Principal, outboxID string) (*models.EmailOutbox, error) {
	const op = "OutboxService.Requeue"
	if err := access.Authorize(actor, access.ViewOutbox, op); err != nil {
		return nil, err
	}
	if err := checkID(op, "outbox", outboxID); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, outboxID)
	if err != nil {
		return nil, wrapStore(op, "outbox entry", err)
	}
	if row.Status == models.OutboxSent {
		return nil, utils.E(utils.CodeConflict, op, "email was already sent", nil)
	}

	now := s.now()
	if err := s.repo.Requeue(ctx, row.ID, now); err != nil {
		return nil, wrapStore(op, "outbox entry", err)
	}
	row.Status = models.OutboxPending
	row.Attempts = 0
	row.NextAttemptAt = now

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, row.ID); err != nil {
			s.log.WithError(err).WithField("outbox_id", row.ID).Warn("requeued email not published; sweeper will retry")
		}
	}
	return row, nil
}
