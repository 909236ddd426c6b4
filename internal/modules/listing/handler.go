package listing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neighborly/internal/domain"
	"neighborly/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/listings", h.Create)
	rg.GET("/listings", h.ListPublished)
	rg.GET("/listings/mine", h.ListMine)
	rg.GET("/listings/:id", h.Get)
	rg.PATCH("/listings/:id", h.Update)
	rg.POST("/listings/:id/publish", h.Publish)
	rg.POST("/listings/:id/pause", h.Pause)
	rg.POST("/listings/:id/resume", h.Resume)
	rg.POST("/listings/:id/cancel", h.Cancel)
}

// RegisterAdminRoutes mounts the archive operations; the caller is
// expected to guard the group with the admin role middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/listings/:id/archive", h.Archive)
	rg.POST("/listings/:id/unarchive", h.Unarchive)
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	in := CreateInput{
		TenantID:        c.GetString("tenant_id"),
		CreatedBy:       c.GetString("user_id"),
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Description:     req.Description,
		PricingType:     domain.PricingType(req.PricingType),
		Price:           req.Price,
		Quantity:        req.Quantity,
		VisibilityScope: domain.VisibilityCommunity,
		NeighborhoodIDs: req.NeighborhoodIDs,
	}
	if req.Condition != nil {
		cond := domain.ItemCondition(*req.Condition)
		in.Condition = &cond
	}
	if req.VisibilityScope != "" {
		in.VisibilityScope = domain.VisibilityScope(req.VisibilityScope)
	}

	l, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, l)
}

func (h *Handler) ListPublished(c *gin.Context) {
	list, err := h.service.ListPublished(c.Request.Context(), c.GetString("tenant_id"))
	if err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listings": list})
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), c.GetString("tenant_id"), c.GetString("user_id"))
	if err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"listings": list})
}

func (h *Handler) Get(c *gin.Context) {
	l, err := h.service.Get(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	in := UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	if req.PricingType != nil {
		pt := domain.PricingType(*req.PricingType)
		in.PricingType = &pt
	}
	if req.Condition != nil {
		cond := domain.ItemCondition(*req.Condition)
		in.Condition = &cond
	}

	l, err := h.service.Update(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Publish(c *gin.Context) {
	l, err := h.service.Publish(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Pause(c *gin.Context) {
	l, err := h.service.Pause(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Resume(c *gin.Context) {
	l, err := h.service.Resume(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Cancel(c *gin.Context) {
	var req cancelListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	l, err := h.service.Cancel(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"), domain.Role(c.GetString("role")), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, l)
}

func (h *Handler) Archive(c *gin.Context) {
	err := h.service.Archive(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"archived": true})
}

func (h *Handler) Unarchive(c *gin.Context) {
	err := h.service.Unarchive(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"archived": false})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this listing")
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", "Operation not allowed in the current listing status")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c)
	}
}
