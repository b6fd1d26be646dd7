package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/recruitportal/internal/services"
	"github.com/yoockh/recruitportal/internal/utils"
)

type SlotHandler struct {
	svc services.SlotService
}

func NewSlotHandler(svc services.SlotService) *SlotHandler {
	return &SlotHandler{svc: svc}
}

type CreateSlotRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

func (h *SlotHandler) List(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	out, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *SlotHandler) Create(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SlotHandler.Create", "start_time and end_time must be RFC 3339 timestamps", err))
		return
	}

	slot, err := h.svc.Create(c.Request.Context(), p, req.StartTime, req.EndTime)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

func (h *SlotHandler) Delete(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p, c.Param("slot_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
