package services

import (
	"context"

	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/models"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/utils"
)

type InterviewService interface {
	List(ctx context.Context, actor access.Principal) ([]models.Interview, error)
	Get(ctx context.Context, actor access.Principal, interviewID string) (*models.Interview, error)
}

type interviewService struct {
	interviews pgrepo.InterviewRepository
}

func NewInterviewService(interviews pgrepo.InterviewRepository) InterviewService {
	return &interviewService{interviews: interviews}
}

func (s *interviewService) List(ctx context.Context, actor access.Principal) ([]models.Interview, error) {
	const op = "InterviewService.List"
	if err := access.Authorize(actor, access.ViewInterviews, op); err != nil {
		return nil, err
	}
	out, err := s.interviews.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interviews", err)
	}
	return out, nil
}

func (s *interviewService) Get(ctx context.Context, actor access.Principal, interviewID string) (*models.Interview, error) {
	const op = "InterviewService.Get"
	if err := access.Authorize(actor, access.ViewInterviews, op); err != nil {
		return nil, err
	}
	if err := checkID(op, "interview", interviewID); err != nil {
		return nil, err
	}
	iv, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return nil, wrapStore(op, "interview", err)
	}
	return iv, nil
}
