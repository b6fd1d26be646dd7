package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/utils"
)

// BookingPage is what a candidate sees on the public booking link.
type BookingPage struct {
	CandidateID   string                  `json:"candidate_id"`
	CandidateName string                  `json:"candidate_name"`
	Status        pipeline.Status         `json:"status"`
	Eligible      bool                    `json:"eligible"`
	BookedSlot    *models.AssessmentSlot  `json:"booked_slot,omitempty"`
	Available     []models.AssessmentSlot `json:"available"`
}

type SlotService interface {
	Create(ctx context.Context, actor access.Principal, start, end time.Time) (*models.AssessmentSlot, error)
	List(ctx context.Context, actor access.Principal) ([]models.AssessmentSlot, error)
	Delete(ctx context.Context, actor access.Principal, slotID string) error

	// BookingPage is public and keyed by candidate id.
	BookingPage(ctx context.Context, candidateID string) (*BookingPage, error)
}

type slotService struct {
	store pgrepo.Store
	now   func() time.Time
}

func NewSlotService(store pgrepo.Store, now func() time.Time) SlotService {
	if now == nil {
		now = utcNow
	}
	return &slotService{store: store, now: now}
}

func (s *slotService) Create(ctx context.Context, actor access.Principal, start, end time.Time) (*models.AssessmentSlot, error) {
	const op = "SlotService.Create"
	if err := access.Authorize(actor, access.ManageSlots, op); err != nil {
		return nil, err
	}
	if start.IsZero() || end.IsZero() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "start_time and end_time are required", nil)
	}
	if !end.After(start) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "end_time must be after start_time", nil)
	}

	slot := &models.AssessmentSlot{
		ID:        uuid.NewString(),
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		CreatedAt: s.now(),
	}
	if err := s.store.Slots().Insert(ctx, slot); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create slot", err)
	}
	return slot, nil
}

func (s *slotService) List(ctx context.Context, actor access.Principal) ([]models.AssessmentSlot, error) {
	const op = "SlotService.List"
	if err := access.Authorize(actor, access.ManageSlots, op); err != nil {
		return nil, err
	}
	out, err := s.store.Slots().ListAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list slots", err)
	}
	return out, nil
}

func (s *slotService) Delete(ctx context.Context, actor access.Principal, slotID string) error {
	const op = "SlotService.Delete"
	if err := access.Authorize(actor, access.ManageSlots, op); err != nil {
		return err
	}
	if err := checkID(op, "slot", slotID); err != nil {
		return err
	}
	if err := s.store.Slots().DeleteUnlocked(ctx, slotID); err != nil {
		if utils.IsCode(err, utils.CodeConflict) {
			return utils.E(utils.CodeConflict, op, "slot is booked and cannot be deleted", err)
		}
		return wrapStore(op, "slot", err)
	}
	return nil
}

func (s *slotService) BookingPage(ctx context.Context, candidateID string) (*BookingPage, error) {
	const op = "SlotService.BookingPage"
	if err := checkID(op, "candidate", candidateID); err != nil {
		return nil, err
	}

	c, err := s.store.Candidates().GetByID(ctx, candidateID)
	if err != nil {
		return nil, wrapStore(op, "candidate", err)
	}
	page := &BookingPage{
		CandidateID:   c.ID,
		CandidateName: c.Name,
		Status:        c.Status,
		Eligible:      pipeline.CanBook(c.Status),
		Available:     []models.AssessmentSlot{},
	}
	if !page.Eligible {
		return page, nil
	}

	held, err := s.store.Slots().ListByCandidate(ctx, c.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load booked slot", err)
	}
	if len(held) > 0 {
		page.BookedSlot = &held[0]
	}

	available, err := s.store.Slots().ListAvailable(ctx, s.now())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list available slots", err)
	}
	page.Available = available
	return page, nil
}
