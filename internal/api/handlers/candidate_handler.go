package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	"github.com/yoockh/recruitportal/internal/services"
	"github.com/yoockh/recruitportal/internal/utils"
)

type CandidateHandler struct {
	apps     services.ApplicationService
	pipeline services.PipelineService
}

func NewCandidateHandler(apps services.ApplicationService, p services.PipelineService) *CandidateHandler {
	return &CandidateHandler{apps: apps, pipeline: p}
}

func (h *CandidateHandler) List(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	f := models.CandidateFilter{Query: c.Query("q"), Limit: queryInt(c, "limit", 0)}
	if raw := c.Query("status"); raw != "" && raw != "all" {
		st, err := pipeline.ParseStatus(raw)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "CandidateHandler.List", err.Error(), err))
			return
		}
		f.Status = st
	}

	out, err := h.apps.List(c.Request.Context(), p, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "statuses": pipeline.All()})
}

func (h *CandidateHandler) Get(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	cand, err := h.apps.Get(c.Request.Context(), p, c.Param("candidate_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

func (h *CandidateHandler) History(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	out, err := h.pipeline.History(c.Request.Context(), p, c.Param("candidate_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// Resume redirects to a short-lived signed download URL.
func (h *CandidateHandler) Resume(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	url, err := h.apps.ResumeURL(c.Request.Context(), p, c.Param("candidate_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *CandidateHandler) Approve(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	res, err := h.pipeline.Approve(c.Request.Context(), p, c.Param("candidate_id"))
	writeTransition(c, res, err)
}

func (h *CandidateHandler) Reject(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	res, err := h.pipeline.Reject(c.Request.Context(), p, c.Param("candidate_id"))
	writeTransition(c, res, err)
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *CandidateHandler) UpdateStatus(c *gin.Context) {
	const op = "CandidateHandler.UpdateStatus"
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "status is required", err))
		return
	}
	st, err := pipeline.ParseStatus(req.Status)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, err.Error(), err))
		return
	}

	res, err := h.pipeline.UpdateStatus(c.Request.Context(), p, c.Param("candidate_id"), st)
	writeTransition(c, res, err)
}

func (h *CandidateHandler) CompleteAssessment(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	res, err := h.pipeline.CompleteAssessment(c.Request.Context(), p, c.Param("candidate_id"))
	writeTransition(c, res, err)
}

func (h *CandidateHandler) Delete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if err := h.pipeline.DeleteCandidate(c.Request.Context(), p, c.Param("candidate_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeTransition(c *gin.Context, res *services.TransitionResult, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
