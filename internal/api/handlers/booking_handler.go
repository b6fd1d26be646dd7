package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/recruitportal/internal/services"
	"github.com/yoockh/recruitportal/internal/utils"
)

// BookingHandler serves the public booking link sent in the invite email.
type BookingHandler struct {
	slots    services.SlotService
	pipeline services.PipelineService
}

func NewBookingHandler(slots services.SlotService, p services.PipelineService) *BookingHandler {
	return &BookingHandler{slots: slots, pipeline: p}
}

func (h *BookingHandler) Page(c *gin.Context) {
	page, err := h.slots.BookingPage(c.Request.Context(), c.Param("candidate_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type BookSlotRequest struct {
	SlotID string `json:"slot_id" binding:"required"`
}

func (h *BookingHandler) Book(c *gin.Context) {
	var req BookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "BookingHandler.Book", "slot_id is required", err))
		return
	}

	res, err := h.pipeline.BookSlot(c.Request.Context(), c.Param("candidate_id"), req.SlotID)
	if err != nil {
		writeError(c, err)
		return
	}
	// the public page only needs the new status, not the full candidate row
	c.JSON(http.StatusOK, gin.H{
		"status":   res.Candidate.Status,
		"slot_id":  req.SlotID,
		"warnings": res.Warnings,
	})
}
