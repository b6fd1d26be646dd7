package workers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/recruitportal/internal/mailer"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/utils"
	"golang.org/x/time/rate"
)

// Dispatcher delivers one outbox row at a time and records the outcome.
type Dispatcher struct {
	Outbox   pgrepo.OutboxRepository
	Notifier mailer.Notifier
	Limiter  *rate.Limiter // optional SMTP throttle

	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// Lease is how long a claimed row is hidden from other dispatchers.
	Lease   time.Duration
	Timeout time.Duration

	Logger *logrus.Logger
	Now    func() time.Time
}

func (d *Dispatcher) defaults() {
	if d.MaxAttempts <= 0 {
		d.MaxAttempts = 8
	}
	if d.BaseBackoff <= 0 {
		d.BaseBackoff = 30 * time.Second
	}
	if d.MaxBackoff <= 0 {
		d.MaxBackoff = time.Hour
	}
	if d.Lease <= 0 {
		d.Lease = 2 * time.Minute
	}
	if d.Timeout <= 0 {
		d.Timeout = 30 * time.Second
	}
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
}

// Backoff returns the wait before retry number attempt (1-based).
func (d *Dispatcher) Backoff(attempt int) time.Duration {
	d.defaults()
	if attempt < 1 {
		attempt = 1
	}
	wait := d.BaseBackoff
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= d.MaxBackoff {
			return d.MaxBackoff
		}
	}
	return wait
}

// Deliver sends the row if it is pending and due. Rows claimed by another
// dispatcher, already sent or dead are skipped without error.
func (d *Dispatcher) Deliver(ctx context.Context, outboxID string) error {
	d.defaults()
	if d.Outbox == nil || d.Notifier == nil {
		return errors.New("Dispatcher missing dependency: Outbox/Notifier must be set")
	}

	now := d.Now()
	if err := d.Outbox.Claim(ctx, outboxID, now, now.Add(d.Lease)); err != nil {
		if errors.Is(err, utils.ErrConflict) || errors.Is(err, utils.ErrNotFound) {
			return nil
		}
		return err
	}

	row, err := d.Outbox.GetByID(ctx, outboxID)
	if err != nil {
		return err
	}
	log := d.Logger.WithFields(logrus.Fields{
		"outbox_id":    row.ID,
		"candidate_id": row.CandidateID,
		"kind":         row.Kind,
		"attempt":      row.Attempts + 1,
	})

	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			// context cancelled; the lease expires and the sweeper retries
			return err
		}
	}

	sendErr := d.send(ctx, row)
	if sendErr == nil {
		if err := d.Outbox.MarkSent(ctx, row.ID, d.Now()); err != nil {
			log.WithError(err).Error("email sent but status not recorded")
			return err
		}
		log.Info("email sent")
		return nil
	}

	attempt := row.Attempts + 1
	dead := attempt >= d.MaxAttempts || utils.IsCode(sendErr, utils.CodeInvalidArgument)
	next := d.Now().Add(d.Backoff(attempt))
	if err := d.Outbox.MarkFailed(ctx, row.ID, sendErr.Error(), next, dead); err != nil {
		log.WithError(err).Error("failed to record delivery failure")
		return err
	}
	if dead {
		log.WithError(sendErr).Error("email delivery abandoned")
	} else {
		log.WithError(sendErr).WithField("next_attempt_at", next).Warn("email delivery failed; will retry")
	}
	return sendErr
}

func (d *Dispatcher) send(ctx context.Context, row *models.EmailOutbox) error {
	kind := pipeline.EmailKind(row.Kind)
	if !kind.Valid() {
		return utils.E(utils.CodeInvalidArgument, "Dispatcher.send", "unknown email kind "+row.Kind, nil)
	}

	data := map[string]string{}
	if len(row.Context) > 0 {
		if err := json.Unmarshal(row.Context, &data); err != nil {
			return utils.E(utils.CodeInvalidArgument, "Dispatcher.send", "invalid email context", err)
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	return d.Notifier.Send(sendCtx, kind, row.RecipientEmail, row.RecipientName, data)
}

// Sweep delivers every due row. It covers rows whose stream message was lost
// and rows waiting for a retry.
func (d *Dispatcher) Sweep(ctx context.Context, limit int) int {
	d.defaults()
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.Outbox.Due(ctx, d.Now(), limit)
	if err != nil {
		d.Logger.WithError(err).Warn("outbox sweep query failed")
		return 0
	}
	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}
		_ = d.Deliver(ctx, row.ID)
	}
	return len(rows)
}
