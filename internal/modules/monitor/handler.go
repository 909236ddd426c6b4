package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"neighborly/internal/pkg/response"
)

type Handler struct {
	service  *Service
	deadline time.Duration
}

func NewHandler(service *Service, deadline time.Duration) *Handler {
	return &Handler{service: service, deadline: deadline}
}

// RegisterRoutes mounts the cron trigger; the caller guards the group
// with the cron token middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/check-return-dates", h.Trigger)
}

func (h *Handler) Trigger(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.deadline)
	defer cancel()

	res, err := h.service.Run(ctx)
	if err != nil {
		// A deadline stop is not a failure: whatever was dispatched is
		// durable and the next run picks up the rest.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			response.Success(c, http.StatusOK, summary(res, true))
			return
		}
		response.Error(c, http.StatusInternalServerError, "MONITOR_FAILED", "Return-date scan did not complete")
		return
	}
	response.Success(c, http.StatusOK, summary(res, false))
}

func summary(res Result, partial bool) gin.H {
	return gin.H{
		"processed":                res.Processed,
		"remindersSent":            res.RemindersSent,
		"overdueNotificationsSent": res.OverdueNotificationsSent,
		"partial":                  partial,
	}
}
