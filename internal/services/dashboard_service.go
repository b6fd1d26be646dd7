package services

import (
	"context"
	"time"

	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/utils"
)

type DashboardService interface {
	Stats(ctx context.Context, actor access.Principal) (*models.DashboardStats, error)
}

type dashboardService struct {
	store pgrepo.Store
	now   func() time.Time
}

func NewDashboardService(store pgrepo.Store, now func() time.Time) DashboardService {
	if now == nil {
		now = utcNow
	}
	return &dashboardService{store: store, now: now}
}

func (s *dashboardService) Stats(ctx context.Context, actor access.Principal) (*models.DashboardStats, error) {
	const op = "DashboardService.Stats"
	if err := access.Authorize(actor, access.ViewDashboard, op); err != nil {
		return nil, err
	}

	var (
		out models.DashboardStats
		err error
	)
	fail := func(what string, err error) error {
		return utils.E(utils.CodeInternal, op, "failed to load "+what, err)
	}

	if out.TotalCandidates, err = s.store.Candidates().Count(ctx, ""); err != nil {
		return nil, fail("candidate count", err)
	}
	if out.PendingApproval, err = s.store.Candidates().Count(ctx, pipeline.StatusApplied); err != nil {
		return nil, fail("pending count", err)
	}
	if out.Recommended, err = s.store.Candidates().Count(ctx, pipeline.StatusRecommended); err != nil {
		return nil, fail("recommended count", err)
	}
	if out.ActiveInterviews, err = s.store.Interviews().CountPending(ctx); err != nil {
		return nil, fail("interview count", err)
	}
	if out.RecentCandidates, err = s.store.Candidates().Recent(ctx, 5); err != nil {
		return nil, fail("recent candidates", err)
	}
	if out.UpcomingAssessments, err = s.store.Slots().Upcoming(ctx, s.now(), 3); err != nil {
		return nil, fail("upcoming assessments", err)
	}
	return &out, nil
}
