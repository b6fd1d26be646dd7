package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/recruitportal/internal/services"
	"github.com/yoockh/recruitportal/internal/utils"
)

type ApplicationHandler struct {
	svc services.ApplicationService
}

func NewApplicationHandler(svc services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

// Submit accepts the public application form as multipart/form-data.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	const op = "ApplicationHandler.Submit"

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxResumeBytes+(1<<20))

	in := services.ApplicationInput{
		Name:        c.PostForm("name"),
		Email:       c.PostForm("email"),
		Phone:       c.PostForm("phone"),
		Position:    c.PostForm("position"),
		CoverLetter: c.PostForm("cover_letter"),
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "resume is required", err))
		return
	}
	if _, ok := services.ResumeContentType(fh.Filename); !ok {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "resume must be a PDF, DOC or DOCX file", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff the first bytes so a renamed file is not accepted as a PDF
	head := make([]byte, 512)
	n, _ := file.Read(head)
	head = head[:n]
	if strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") && http.DetectContentType(head) != "application/pdf" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid content type (must be pdf)", nil))
		return
	}

	cand, err := h.svc.Submit(c.Request.Context(), in, &services.ResumeFile{
		FileName: fh.Filename,
		Size:     fh.Size,
		Body:     io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      cand.ID,
		"status":  cand.Status,
		"message": "Application submitted successfully",
	})
}
