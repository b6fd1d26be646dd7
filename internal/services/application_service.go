package services

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/feed"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	mongorepo "github.com/yoockh/recruitportal/internal/repositories/mongo"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/storage"
	"github.com/yoockh/recruitportal/internal/utils"
)

const MaxResumeBytes = 10 << 20

var resumeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type ApplicationInput struct {
	Name        string
	Email       string
	Phone       string
	Position    string
	CoverLetter string
}

type ResumeFile struct {
	FileName string
	Size     int64
	Body     io.Reader
}

type ApplicationService interface {
	Submit(ctx context.Context, in ApplicationInput, resume *ResumeFile) (*models.Candidate, error)

	Get(ctx context.Context, actor access.Principal, candidateID string) (*models.Candidate, error)
	List(ctx context.Context, actor access.Principal, f models.CandidateFilter) ([]models.Candidate, error)
	// ResumeURL returns a short-lived download link for the candidate's resume.
	ResumeURL(ctx context.Context, actor access.Principal, candidateID string) (string, error)
}

type ApplicationDeps struct {
	Store    pgrepo.Store
	Uploader storage.Uploader
	Signer   storage.Signer // optional
	Events   mongorepo.EventRepository
	Feed     feed.Publisher
	Logger   *logrus.Logger
	Now      func() time.Time
}

type applicationService struct {
	store    pgrepo.Store
	uploader storage.Uploader
	signer   storage.Signer
	fx       sideEffects
}

func NewApplicationService(d ApplicationDeps) ApplicationService {
	now := d.Now
	if now == nil {
		now = utcNow
	}
	return &applicationService{
		store:    d.Store,
		uploader: d.Uploader,
		signer:   d.Signer,
		fx:       sideEffects{events: d.Events, feed: d.Feed, log: defaultLogger(d.Logger), now: now},
	}
}

// ResumeContentType validates a resume file name and returns its MIME type.
func ResumeContentType(fileName string) (string, bool) {
	ct, ok := resumeTypes[strings.ToLower(filepath.Ext(fileName))]
	return ct, ok
}

func (s *applicationService) Submit(ctx context.Context, in ApplicationInput, resume *ResumeFile) (*models.Candidate, error) {
	const op = "ApplicationService.Submit"

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "name and email are required", nil)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email is not a valid address", err)
	}
	if resume == nil || resume.Body == nil || resume.Size == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume is required", nil)
	}
	if resume.Size > MaxResumeBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume must be 10MB or smaller", nil)
	}
	contentType, ok := ResumeContentType(resume.FileName)
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume must be a PDF, DOC or DOCX file", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	now := s.fx.now()
	id := uuid.NewString()
	objectName := "resumes/" + id + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(resume.FileName))

	storedPath, err := s.uploader.Upload(ctx, objectName, contentType, io.LimitReader(resume.Body, MaxResumeBytes))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload resume", err)
	}

	c := &models.Candidate{
		ID:          id,
		Name:        in.Name,
		Email:       strings.ToLower(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		Position:    strings.TrimSpace(in.Position),
		ResumeURL:   storedPath,
		CoverLetter: strings.TrimSpace(in.CoverLetter),
		Status:      pipeline.StatusApplied,
		CreatedAt:   now,
	}
	position := c.Position
	if position == "" {
		position = "an open position"
	}
	note := newNotification("New Application", c.Name+" applied for "+position, now)

	err = s.store.WithinTx(ctx, func(tx pgrepo.Store) error {
		if err := tx.Candidates().Insert(ctx, c); err != nil {
			return wrapStore(op, "candidate", err)
		}
		if err := tx.Notifications().Insert(ctx, note); err != nil {
			return wrapStore(op, "notification", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fx.announce(ctx, []*models.Notification{note})
	s.fx.record(ctx, models.PipelineEvent{
		CandidateID: c.ID,
		Action:      string(pipeline.ActionApply),
		To:          string(c.Status),
		At:          now,
	})
	return c, nil
}

func (s *applicationService) Get(ctx context.Context, actor access.Principal, candidateID string) (*models.Candidate, error) {
	const op = "ApplicationService.Get"
	if err := access.Authorize(actor, access.ViewApplications, op); err != nil {
		return nil, err
	}
	if err := checkID(op, "candidate", candidateID); err != nil {
		return nil, err
	}
	c, err := s.store.Candidates().GetByID(ctx, candidateID)
	if err != nil {
		return nil, wrapStore(op, "candidate", err)
	}
	return c, nil
}

func (s *applicationService) List(ctx context.Context, actor access.Principal, f models.CandidateFilter) ([]models.Candidate, error) {
	const op = "ApplicationService.List"
	if err := access.Authorize(actor, access.ViewApplications, op); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown status filter", nil)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 200
	}
	out, err := s.store.Candidates().List(ctx, f)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list candidates", err)
	}
	return out, nil
}

func (s *applicationService) ResumeURL(ctx context.Context, actor access.Principal, candidateID string) (string, error) {
	const op = "ApplicationService.ResumeURL"

	c, err := s.Get(ctx, actor, candidateID)
	if err != nil {
		return "", err
	}
	if c.ResumeURL == "" {
		return "", utils.E(utils.CodeNotFound, op, "candidate has no resume", nil)
	}
	if s.signer == nil || !strings.HasPrefix(c.ResumeURL, "gs://") {
		return c.ResumeURL, nil
	}
	url, err := s.signer.SignedGetURL(ctx, storage.ObjectName(c.ResumeURL), 15*time.Minute)
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to sign resume url", err)
	}
	return url, nil
}
