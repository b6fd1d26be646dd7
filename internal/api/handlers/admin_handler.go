package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/services"
)

type DashboardHandler struct {
	svc services.DashboardService
}

func NewDashboardHandler(svc services.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	out, err := h.svc.Stats(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type OutboxHandler struct {
	svc services.OutboxService
}

func NewOutboxHandler(svc services.OutboxService) *OutboxHandler {
	return &OutboxHandler{svc: svc}
}

func (h *OutboxHandler) List(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	out, err := h.svc.List(c.Request.Context(), p, models.OutboxStatus(c.Query("status")), queryInt(c, "limit", 100))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *OutboxHandler) Requeue(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	row, err := h.svc.Requeue(c.Request.Context(), p, c.Param("outbox_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
