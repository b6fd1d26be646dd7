package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/recruitportal/internal/feed"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	mongorepo "github.com/yoockh/recruitportal/internal/repositories/mongo"
	"github.com/yoockh/recruitportal/internal/utils"
)

// OutboxPublisher hands a committed outbox row to the email dispatcher.
type OutboxPublisher interface {
	Publish(ctx context.Context, outboxID string) error
}

// sideEffects are the best-effort steps that run after a commit. None of them
// can fail the operation that triggered them.
type sideEffects struct {
	events mongorepo.EventRepository
	feed   feed.Publisher
	log    *logrus.Logger
	now    func() time.Time
}

func (e sideEffects) announce(ctx context.Context, notes []*models.Notification) {
	if e.feed == nil {
		return
	}
	for _, n := range notes {
		if err := e.feed.Publish(ctx, *n); err != nil {
			e.log.WithError(err).WithField("notification_id", n.ID).Warn("feed publish failed")
		}
	}
}

func (e sideEffects) record(ctx context.Context, ev models.PipelineEvent) {
	if e.events == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = e.now()
	}
	if err := e.events.Append(ctx, &ev); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"candidate_id": ev.CandidateID,
			"action":       ev.Action,
		}).Warn("history append failed")
	}
}

func newNotification(title, message string, at time.Time) *models.Notification {
	return &models.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		CreatedAt: at,
	}
}

// wrapStore translates repository sentinels into AppErrors. what names the record.
func wrapStore(op, what string, err error) error {
	var ae *utils.AppError
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, utils.ErrNotFound):
		return utils.E(utils.CodeNotFound, op, what+" not found", err)
	case errors.Is(err, utils.ErrConflict):
		return utils.E(utils.CodeConflict, op, what+" was changed by another request", err)
	case errors.Is(err, pipeline.ErrInvalidTransition):
		return utils.E(utils.CodeConflict, op, err.Error(), err)
	}
	return utils.E(utils.CodeInternal, op, "failed to access "+what, err)
}

// checkID rejects an id before it reaches a uuid column. A malformed id can
// never name a row, so it is reported as missing.
func checkID(op, what, id string) error {
	if strings.TrimSpace(id) == "" {
		return utils.E(utils.CodeInvalidArgument, op, what+"_id is required", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return utils.E(utils.CodeNotFound, op, what+" not found", utils.ErrNotFound)
	}
	return nil
}

func defaultLogger(l *logrus.Logger) *logrus.Logger {
	if l != nil {
		return l
	}
	return logrus.StandardLogger()
}

func utcNow() time.Time { return time.Now().UTC() }
