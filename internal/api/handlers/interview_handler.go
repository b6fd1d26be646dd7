package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/recruitportal/internal/pipeline"
	"github.com/yoockh/recruitportal/internal/services"
	"github.com/yoockh/recruitportal/internal/utils"
)

type InterviewHandler struct {
	interviews services.InterviewService
	pipeline   services.PipelineService
}

func NewInterviewHandler(interviews services.InterviewService, p services.PipelineService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, pipeline: p}
}

type FeedbackRequest struct {
	Decision string `json:"decision" binding:"required"` // Recommended | Not Recommended
	Feedback string `json:"feedback"`
}

func (h *InterviewHandler) List(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	out, err := h.interviews.List(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *InterviewHandler) SubmitFeedback(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	d, req, ok := bindFeedback(c, "InterviewHandler.SubmitFeedback")
	if !ok {
		return
	}
	res, err := h.pipeline.SubmitFeedback(c.Request.Context(), p, c.Param("interview_id"), d, req.Feedback)
	writeTransition(c, res, err)
}

func (h *InterviewHandler) ReviseFeedback(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	d, req, ok := bindFeedback(c, "InterviewHandler.ReviseFeedback")
	if !ok {
		return
	}
	res, err := h.pipeline.ReviseFeedback(c.Request.Context(), p, c.Param("interview_id"), d, req.Feedback)
	writeTransition(c, res, err)
}

func bindFeedback(c *gin.Context, op string) (pipeline.Decision, FeedbackRequest, bool) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "decision is required", err))
		return "", req, false
	}
	d, err := pipeline.ParseDecision(req.Decision)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, err.Error(), err))
		return "", req, false
	}
	return d, req, true
}
