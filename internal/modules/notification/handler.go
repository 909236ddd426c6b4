package notification

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neighborly/internal/domain"
	"neighborly/internal/pkg/response"
	"neighborly/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.List)
	rg.GET("/notifications/unread-count", h.UnreadCount)
	rg.POST("/notifications/read-all", h.MarkAllRead)
	rg.POST("/notifications/:id/read", h.MarkRead)
	rg.POST("/notifications/:id/archive", h.Archive)
	rg.POST("/notifications/:id/action", h.TakeAction)
}

func (h *Handler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	filters := repository.NotificationFilters{
		IsRead:         q.IsRead,
		IsArchived:     q.IsArchived,
		ActionRequired: q.ActionRequired,
		ActionTaken:    q.ActionTaken,
	}
	if q.Type != "" {
		t := domain.NotificationType(q.Type)
		filters.Type = &t
	}

	list, err := h.service.List(c.Request.Context(), c.GetString("tenant_id"), c.GetString("user_id"), filters, q.Limit)
	if err != nil {
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"notifications": list})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), c.GetString("tenant_id"), c.GetString("user_id"))
	if err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	err := h.service.MarkRead(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context(), c.GetString("tenant_id"), c.GetString("user_id")); err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}

func (h *Handler) Archive(c *gin.Context) {
	err := h.service.ArchiveNotification(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"archived": true})
}

func (h *Handler) TakeAction(c *gin.Context) {
	var req takeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	err := h.service.TakeAction(c.Request.Context(), c.Param("id"), c.GetString("user_id"), req.Response)
	if err != nil {
		if errors.Is(err, ErrActionAlreadyTaken) {
			response.Error(c, http.StatusConflict, "ACTION_ALREADY_TAKEN", "Action was already recorded for this notification")
			return
		}
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"action_taken": true})
}
