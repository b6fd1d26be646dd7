package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	"github.com/yoockh/recruitportal/internal/utils"
)

func TestSlotCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewSlotService(store, fixedNow)

	start := testNow.Add(24 * time.Hour)
	if _, err := svc.Create(ctx, hr, start, start); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("zero-length slot should be rejected, got %v", err)
	}
	if _, err := svc.Create(ctx, interviewer, start, start.Add(time.Hour)); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	slot, err := svc.Create(ctx, hr, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c := store.addCandidate(models.Candidate{Name: "Pat", Email: "pat@example.com", Status: pipeline.StatusApproved})
	if err := store.Slots().Book(ctx, slot.ID, c.ID); err != nil {
		t.Fatalf("book: %v", err)
	}
	if err := svc.Delete(ctx, hr, slot.ID); !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("booked slot delete should conflict, got %v", err)
	}

	free, _ := svc.Create(ctx, master, start.Add(2*time.Hour), start.Add(3*time.Hour))
	if err := svc.Delete(ctx, master, free.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, master, free.ID); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	all, err := svc.List(ctx, hr)
	if err != nil || len(all) != 1 {
		t.Fatalf("list: %v %v", all, err)
	}
}

func TestBookingPage(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewSlotService(store, fixedNow)
	applied := store.addCandidate(models.Candidate{Name: "Quinn", Email: "q@example.com"})
	approved := store.addCandidate(models.Candidate{Name: "Ray", Email: "r@example.com", Status: pipeline.StatusApproved})
	store.addSlot(testNow.Add(-time.Hour))
	open := store.addSlot(testNow.Add(time.Hour))

	page, err := svc.BookingPage(ctx, applied.ID)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Eligible || len(page.Available) != 0 {
		t.Fatalf("applied candidate should not see slots: %+v", page)
	}

	page, err = svc.BookingPage(ctx, approved.ID)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if !page.Eligible || len(page.Available) != 1 || page.Available[0].ID != open.ID || page.BookedSlot != nil {
		t.Fatalf("unexpected page %+v", page)
	}

	for _, id := range []string{uuid.NewString(), "not-a-uuid", "1; drop table candidates"} {
		if _, err := svc.BookingPage(ctx, id); !utils.IsCode(err, utils.CodeNotFound) {
			t.Fatalf("booking page %q: expected NOT_FOUND, got %v", id, err)
		}
	}
}
