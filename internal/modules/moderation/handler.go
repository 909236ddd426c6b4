package moderation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neighborly/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/listings/:id/flags", h.Flag)
}

// RegisterModeratorRoutes mounts flag review; the caller guards the
// group with the moderator role middleware.
func (h *Handler) RegisterModeratorRoutes(rg *gin.RouterGroup) {
	rg.GET("/listings/:id/flags", h.ListFlags)
	rg.DELETE("/listings/:id/flags", h.UnflagAll)
}

type flagRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

func (h *Handler) Flag(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A reason is required")
		return
	}

	f, err := h.service.Flag(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, f)
}

func (h *Handler) ListFlags(c *gin.Context) {
	flags, err := h.service.ListFlags(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"flags": flags})
}

func (h *Handler) UnflagAll(c *gin.Context) {
	if err := h.service.UnflagAll(c.Request.Context(), c.GetString("tenant_id"), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resolved": true})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case errors.Is(err, ErrAlreadyFlagged):
		response.Error(c, http.StatusConflict, "ALREADY_FLAGGED", "You have already flagged this listing")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c)
	}
}
