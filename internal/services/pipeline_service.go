package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/feed"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	mongorepo "github.com/yoockh/recruitportal/internal/repositories/mongo"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/utils"
	"gorm.io/datatypes"
)

// TransitionResult is returned by every status-changing operation. Warnings
// carry failures that happened after the status was committed.
type TransitionResult struct {
	Candidate *models.Candidate `json:"candidate"`
	From      pipeline.Status   `json:"from"`
	OutboxID  string            `json:"outbox_id,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
}

type PipelineService interface {
	Approve(ctx context.Context, actor access.Principal, candidateID string) (*TransitionResult, error)
	Reject(ctx context.Context, actor access.Principal, candidateID string) (*TransitionResult, error)
	UpdateStatus(ctx context.Context, actor access.Principal, candidateID string, target pipeline.Status) (*TransitionResult, error)

	// BookSlot is public: knowing the candidate id is the capability.
	BookSlot(ctx context.Context, candidateID, slotID string) (*TransitionResult, error)
	CompleteAssessment(ctx context.Context, actor access.Principal, candidateID string) (*TransitionResult, error)

	SubmitFeedback(ctx context.Context, actor access.Principal, interviewID string, d pipeline.Decision, feedback string) (*TransitionResult, error)
	ReviseFeedback(ctx context.Context, actor access.Principal, interviewID string, d pipeline.Decision, feedback string) (*TransitionResult, error)

	DeleteCandidate(ctx context.Context, actor access.Principal, candidateID string) error
	History(ctx context.Context, actor access.Principal, candidateID string) ([]models.PipelineEvent, error)
}

type PipelineDeps struct {
	Store  pgrepo.Store
	Events mongorepo.EventRepository // optional
	Outbox OutboxPublisher           // optional; the sweeper picks up unpublished rows
	Feed   feed.Publisher            // optional
	Logger *logrus.Logger

	// AppURL is the public portal origin used to build booking links.
	AppURL string
	Now    func() time.Time
}

type pipelineService struct {
	store  pgrepo.Store
	outbox OutboxPublisher
	appURL string
	fx     sideEffects
}

func NewPipelineService(d PipelineDeps) PipelineService {
	now := d.Now
	if now == nil {
		now = utcNow
	}
	return &pipelineService{
		store:  d.Store,
		outbox: d.Outbox,
		appURL: strings.TrimRight(d.AppURL, "/"),
		fx: sideEffects{
			events: d.Events,
			feed:   d.Feed,
			log:    defaultLogger(d.Logger),
			now:    now,
		},
	}
}

// move describes one transition. apply runs inside the transaction once the
// status write has succeeded; c still carries the previous status.
type move struct {
	op          string
	action      pipeline.Action
	actorID     string
	candidateID string
	to          pipeline.Status
	apply       func(ctx context.Context, tx pgrepo.Store, c *models.Candidate, now time.Time) (*models.Notification, error)
}

func (s *pipelineService) run(ctx context.Context, m move) (*TransitionResult, error) {
	if err := checkID(m.op, "candidate", m.candidateID); err != nil {
		return nil, err
	}

	now := s.fx.now()
	res := &TransitionResult{}
	var note *models.Notification

	err := s.store.WithinTx(ctx, func(tx pgrepo.Store) error {
		c, err := tx.Candidates().GetByID(ctx, m.candidateID)
		if err != nil {
			return wrapStore(m.op, "candidate", err)
		}
		if err := pipeline.Check(m.action, c.Status, m.to); err != nil {
			return utils.E(utils.CodeConflict, m.op, err.Error(), err)
		}

		if m.action == pipeline.ActionUpdateStatus && c.Status.Terminal() && !m.to.Terminal() {
			res.Warnings = append(res.Warnings, "candidate reopened from "+string(c.Status))
		}

		// the check above only holds while the row still has the status we read
		if err := tx.Candidates().UpdateStatus(ctx, c.ID, c.Status, m.to); err != nil {
			return wrapStore(m.op, "candidate", err)
		}

		if m.apply != nil {
			if note, err = m.apply(ctx, tx, c, now); err != nil {
				return err
			}
		}

		res.From = c.Status
		c.Status = m.to
		res.Candidate = c

		if note != nil {
			if err := tx.Notifications().Insert(ctx, note); err != nil {
				return wrapStore(m.op, "notification", err)
			}
		}

		if res.From == m.to {
			return nil
		}
		kind, ok := pipeline.EmailFor(m.to)
		if !ok {
			return nil
		}
		row, err := s.outboxRow(c, kind, now)
		if err != nil {
			return utils.E(utils.CodeInternal, m.op, "failed to build email context", err)
		}
		if err := tx.Outbox().Insert(ctx, row); err != nil {
			return wrapStore(m.op, "email outbox", err)
		}
		res.OutboxID = row.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.OutboxID != "" && s.outbox != nil {
		if err := s.outbox.Publish(ctx, res.OutboxID); err != nil {
			s.fx.log.WithError(err).WithField("outbox_id", res.OutboxID).Warn("email dispatch not queued")
			res.Warnings = append(res.Warnings, "status updated but the email could not be queued for immediate delivery; it will be retried")
		}
	}
	if note != nil {
		s.fx.announce(ctx, []*models.Notification{note})
	}
	s.fx.record(ctx, models.PipelineEvent{
		CandidateID: m.candidateID,
		Action:      string(m.action),
		From:        string(res.From),
		To:          string(m.to),
		ActorID:     m.actorID,
		Warnings:    res.Warnings,
		At:          now,
	})
	return res, nil
}

func (s *pipelineService) outboxRow(c *models.Candidate, kind pipeline.EmailKind, now time.Time) (*models.EmailOutbox, error) {
	data := map[string]string{"position": c.Position}
	if kind == pipeline.EmailAssessmentInvite {
		data["booking_link"] = s.BookingLink(c.ID)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &models.EmailOutbox{
		ID:             uuid.NewString(),
		CandidateID:    c.ID,
		Kind:           string(kind),
		RecipientEmail: c.Email,
		RecipientName:  c.Name,
		Context:        datatypes.JSON(raw),
		Status:         models.OutboxPending,
		NextAttemptAt:  now,
		CreatedAt:      now,
	}, nil
}

// BookingLink is the public page a candidate uses to pick an assessment slot.
func (s *pipelineService) BookingLink(candidateID string) string {
	return s.appURL + "/book-slot/" + candidateID
}

func (s *pipelineService) Approve(ctx context.Context, actor access.Principal, candidateID string) (*TransitionResult, error) {
	const op = "PipelineService.Approve"
	if err := access.Authorize(actor, access.ApproveCandidate, op); err != nil {
		return nil, err
	}
	return s.run(ctx, move{op: op, action: pipeline.ActionApprove, actorID: actor.UserID, candidateID: candidateID, to: pipeline.StatusApproved})
}

func (s *pipelineService) Reject(ctx context.Context, actor access.Principal, candidateID string) (*TransitionResult, error) {
	const op = "PipelineService.Reject"
	if err := access.Authorize(actor, access.ApproveCandidate, op); err != nil {
		return nil, err
	}
	return s.run(ctx, move{op: op, action: pipeline.ActionReject, actorID: actor.UserID, candidateID: candidateID, to: pipeline.StatusRejected})
}

func (s *pipelineService) UpdateStatus(ctx context.Context, actor access.Principal, candidateID string, target pipeline.Status) (*TransitionResult, error) {
	const op = "PipelineService.UpdateStatus"
	if err := access.Authorize(actor, access.UpdateStatus, op); err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("unknown status %q", target), nil)
	}
	return s.run(ctx, move{op: op, action: pipeline.ActionUpdateStatus, actorID: actor.UserID, candidateID: candidateID, to: target})
}

func (s *pipelineService) BookSlot(ctx context.Context, candidateID, slotID string) (*TransitionResult, error) {
	const op = "PipelineService.BookSlot"
	if err := checkID(op, "slot", slotID); err != nil {
		return nil, err
	}

	return s.run(ctx, move{
		op:          op,
		action:      pipeline.ActionBookSlot,
		candidateID: candidateID,
		to:          pipeline.StatusAssessmentScheduled,
		apply: func(ctx context.Context, tx pgrepo.Store, c *models.Candidate, now time.Time) (*models.Notification, error) {
			slot, err := tx.Slots().GetByID(ctx, slotID)
			if err != nil {
				return nil, wrapStore(op, "slot", err)
			}
			if slot.IsLocked {
				return nil, utils.E(utils.CodeConflict, op, "slot is already booked", utils.ErrConflict)
			}
			if !slot.StartTime.After(now) {
				return nil, utils.E(utils.CodeInvalidArgument, op, "slot has already started", nil)
			}

			if err := tx.Slots().Book(ctx, slot.ID, c.ID); err != nil {
				if utils.IsCode(err, utils.CodeConflict) {
					return nil, utils.E(utils.CodeConflict, op, "slot is already booked", err)
				}
				return nil, wrapStore(op, "slot", err)
			}
			if err := tx.Slots().Release(ctx, c.ID, slot.ID); err != nil {
				return nil, wrapStore(op, "slot", err)
			}

			return newNotification(
				"Assessment Scheduled",
				fmt.Sprintf("%s booked an assessment for %s", c.Name, slot.StartTime.UTC().Format("Mon, 02 Jan 2006 15:04 MST")),
				now,
			), nil
		},
	})
}

func (s *pipelineService) CompleteAssessment(ctx context.Context, actor access.Principal, candidateID string) (*TransitionResult, error) {
	const op = "PipelineService.CompleteAssessment"
	if err := access.Authorize(actor, access.CompleteAssessment, op); err != nil {
		return nil, err
	}

	return s.run(ctx, move{
		op:          op,
		action:      pipeline.ActionCompleteAssessment,
		actorID:     actor.UserID,
		candidateID: candidateID,
		to:          pipeline.StatusToBeInterviewed,
		apply: func(ctx context.Context, tx pgrepo.Store, c *models.Candidate, now time.Time) (*models.Notification, error) {
			iv := &models.Interview{
				ID:          uuid.NewString(),
				CandidateID: c.ID,
				ScheduledAt: now,
			}
			if err := tx.Interviews().Insert(ctx, iv); err != nil {
				return nil, wrapStore(op, "interview", err)
			}
			return newNotification("Interview Ready", c.Name+" completed the assessment and is ready for interview", now), nil
		},
	})
}

func (s *pipelineService) SubmitFeedback(ctx context.Context, actor access.Principal, interviewID string, d pipeline.Decision, feedback string) (*TransitionResult, error) {
	const op = "PipelineService.SubmitFeedback"
	if err := access.Authorize(actor, access.SubmitFeedback, op); err != nil {
		return nil, err
	}
	return s.decide(ctx, op, actor, pipeline.ActionSubmitFeedback, interviewID, d, feedback, false)
}

func (s *pipelineService) ReviseFeedback(ctx context.Context, actor access.Principal, interviewID string, d pipeline.Decision, feedback string) (*TransitionResult, error) {
	const op = "PipelineService.ReviseFeedback"
	if err := access.Authorize(actor, access.ReviseFeedback, op); err != nil {
		return nil, err
	}
	return s.decide(ctx, op, actor, pipeline.ActionReviseFeedback, interviewID, d, feedback, true)
}

func (s *pipelineService) decide(ctx context.Context, op string, actor access.Principal, action pipeline.Action, interviewID string, d pipeline.Decision, feedback string, revise bool) (*TransitionResult, error) {
	if err := checkID(op, "interview", interviewID); err != nil {
		return nil, err
	}
	if _, err := pipeline.ParseDecision(string(d)); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), err)
	}

	iv, err := s.store.Interviews().GetByID(ctx, interviewID)
	if err != nil {
		return nil, wrapStore(op, "interview", err)
	}
	switch {
	case !revise && iv.Decision != nil:
		return nil, utils.E(utils.CodeConflict, op, "feedback was already submitted for this interview", nil)
	case revise && iv.Decision == nil:
		return nil, utils.E(utils.CodeConflict, op, "interview has no feedback to revise", nil)
	}

	return s.run(ctx, move{
		op:          op,
		action:      action,
		actorID:     actor.UserID,
		candidateID: iv.CandidateID,
		to:          d.Status(),
		apply: func(ctx context.Context, tx pgrepo.Store, _ *models.Candidate, now time.Time) (*models.Notification, error) {
			if err := tx.Interviews().SetDecision(ctx, iv.ID, d, strings.TrimSpace(feedback), actor.UserID, now, revise); err != nil {
				if utils.IsCode(err, utils.CodeConflict) {
					return nil, utils.E(utils.CodeConflict, op, "feedback was already submitted for this interview", err)
				}
				return nil, wrapStore(op, "interview", err)
			}
			return nil, nil
		},
	})
}

func (s *pipelineService) DeleteCandidate(ctx context.Context, actor access.Principal, candidateID string) error {
	const op = "PipelineService.DeleteCandidate"
	if err := access.Authorize(actor, access.DeleteCandidate, op); err != nil {
		return err
	}
	if err := checkID(op, "candidate", candidateID); err != nil {
		return err
	}

	var (
		from      pipeline.Status
		discarded int64
	)
	err := s.store.WithinTx(ctx, func(tx pgrepo.Store) error {
		c, err := tx.Candidates().GetByID(ctx, candidateID)
		if err != nil {
			return wrapStore(op, "candidate", err)
		}
		from = c.Status
		if err := tx.Slots().DeleteByCandidate(ctx, candidateID); err != nil {
			return wrapStore(op, "slot", err)
		}
		if err := tx.Interviews().DeleteByCandidate(ctx, candidateID); err != nil {
			return wrapStore(op, "interview", err)
		}
		n, err := tx.Outbox().DiscardPending(ctx, candidateID, "candidate deleted")
		if err != nil {
			return wrapStore(op, "email outbox", err)
		}
		discarded = n
		if err := tx.Candidates().Delete(ctx, candidateID); err != nil {
			return wrapStore(op, "candidate", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.fx.log.WithFields(logrus.Fields{
		"candidate_id": candidateID,
		"actor_id":     actor.UserID,
		"from":         from,
		"discarded":    discarded,
	}).Info("candidate deleted")

	if s.fx.events != nil {
		if err := s.fx.events.DeleteByCandidate(ctx, candidateID); err != nil {
			s.fx.log.WithError(err).WithField("candidate_id", candidateID).Warn("history cleanup failed")
		}
	}
	return nil
}

func (s *pipelineService) History(ctx context.Context, actor access.Principal, candidateID string) ([]models.PipelineEvent, error) {
	const op = "PipelineService.History"
	if err := access.Authorize(actor, access.ViewApplications, op); err != nil {
		return nil, err
	}
	if err := checkID(op, "candidate", candidateID); err != nil {
		return nil, err
	}
	if s.fx.events == nil {
		return []models.PipelineEvent{}, nil
	}
	out, err := s.fx.events.ListByCandidate(ctx, candidateID, 100)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load history", err)
	}
	return out, nil
}
