package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	"github.com/yoockh/recruitportal/internal/utils"
)

func pdf(body string) *ResumeFile {
	return &ResumeFile{FileName: "cv.pdf", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestSubmitValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewApplicationService(ApplicationDeps{Store: store, Uploader: &fakeUploader{}, Now: fixedNow})

	tests := []struct {
		name   string
		in     ApplicationInput
		resume *ResumeFile
	}{
		{"missing name", ApplicationInput{Email: "a@example.com"}, pdf("x")},
		{"bad email", ApplicationInput{Name: "A", Email: "not-an-email"}, pdf("x")},
		{"no resume", ApplicationInput{Name: "A", Email: "a@example.com"}, nil},
		{"empty resume", ApplicationInput{Name: "A", Email: "a@example.com"}, pdf("")},
		{"too large", ApplicationInput{Name: "A", Email: "a@example.com"}, &ResumeFile{FileName: "cv.pdf", Size: MaxResumeBytes + 1, Body: strings.NewReader("x")}},
		{"wrong type", ApplicationInput{Name: "A", Email: "a@example.com"}, &ResumeFile{FileName: "cv.exe", Size: 1, Body: strings.NewReader("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.in, tt.resume)
			if !utils.IsCode(err, utils.CodeInvalidArgument) {
				t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
			}
		})
	}
	if n, _ := store.Candidates().Count(context.Background(), ""); n != 0 {
		t.Fatalf("no candidate should be stored, got %d", n)
	}
}

func TestSubmitStoresResumeUnderCandidate(t *testing.T) {
	store := newFakeStore()
	up := &fakeUploader{}
	svc := NewApplicationService(ApplicationDeps{Store: store, Uploader: up, Now: fixedNow})

	c, err := svc.Submit(context.Background(), ApplicationInput{Name: " Lee ", Email: "lee@example.com", Position: " QA "}, &ResumeFile{FileName: "Lee.DOCX", Size: 4, Body: strings.NewReader("PK..")})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.Name != "Lee" || c.Position != "QA" || c.Status != pipeline.StatusApplied || !c.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected candidate %+v", c)
	}
	if !strings.HasPrefix(c.ResumeURL, "gs://resumes/resumes/"+c.ID+"/") || !strings.HasSuffix(c.ResumeURL, ".docx") {
		t.Fatalf("unexpected resume path %q", c.ResumeURL)
	}
	if len(up.objects) != 1 {
		t.Fatalf("expected one uploaded object, got %d", len(up.objects))
	}
	notes := store.notifications()
	if len(notes) != 1 || notes[0].Message != "Lee applied for QA" {
		t.Fatalf("unexpected notifications %+v", notes)
	}
}

func TestSubmitUploadFailure(t *testing.T) {
	store := newFakeStore()
	svc := NewApplicationService(ApplicationDeps{Store: store, Uploader: &fakeUploader{err: errors.New("bucket gone")}, Now: fixedNow})

	_, err := svc.Submit(context.Background(), ApplicationInput{Name: "M", Email: "m@example.com"}, pdf("%PDF"))
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
	if len(store.notifications()) != 0 {
		t.Fatal("nothing should be stored when the upload fails")
	}
}

func TestListAndResumeURL(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewApplicationService(ApplicationDeps{Store: store, Uploader: &fakeUploader{}, Signer: &fakeUploader{}, Now: fixedNow})
	a := store.addCandidate(models.Candidate{Name: "Nia", Email: "nia@example.com", Position: "Designer", ResumeURL: "gs://resumes/resumes/x/cv.pdf"})
	store.addCandidate(models.Candidate{Name: "Oz", Email: "oz@example.com", Status: pipeline.StatusRejected})

	got, err := svc.List(ctx, hr, models.CandidateFilter{Query: "design"})
	if err != nil || len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("query filter: %v %v", got, err)
	}
	got, err = svc.List(ctx, hr, models.CandidateFilter{Status: pipeline.StatusRejected})
	if err != nil || len(got) != 1 || got[0].Name != "Oz" {
		t.Fatalf("status filter: %v %v", got, err)
	}
	if _, err := svc.List(ctx, hr, models.CandidateFilter{Status: "Hired"}); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
	if _, err := svc.List(ctx, interviewer, models.CandidateFilter{}); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	url, err := svc.ResumeURL(ctx, approver, a.ID)
	if err != nil {
		t.Fatalf("resume url: %v", err)
	}
	if url != "https://storage.example/resumes/x/cv.pdf?ttl=15m0s" {
		t.Fatalf("unexpected signed url %q", url)
	}
	if _, err := svc.Get(ctx, approver, "missing"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestResumeContentType(t *testing.T) {
	if ct, ok := ResumeContentType("CV.PDF"); !ok || ct != "application/pdf" {
		t.Fatalf("got %q %v", ct, ok)
	}
	if _, ok := ResumeContentType("cv.txt"); ok {
		t.Fatal("txt should be rejected")
	}
}
