package exchange

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
	rg.POST("/transactions", h.Create)
	rg.GET("/transactions", h.ListMine)
	rg.GET("/transactions/:id", h.Get)
	rg.POST("/transactions/:id/accept", h.Accept)
	rg.POST("/transactions/:id/reject", h.Reject)
	rg.POST("/transactions/:id/pickup", h.ConfirmPickup)
	rg.POST("/transactions/:id/return", h.InitiateReturn)
	rg.POST("/transactions/:id/complete", h.Complete)
	rg.POST("/transactions/:id/extension", h.RequestExtension)
	rg.POST("/transactions/:id/extension/resolve", h.ResolveExtension)
	rg.POST("/transactions/:id/cancel", h.Cancel)
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.Request(c.Request.Context(), RequestInput{
		TenantID:           c.GetString("tenant_id"),
		ListingID:          req.ListingID,
		BorrowerID:         c.GetString("user_id"),
		Quantity:           req.Quantity,
		ProposedPickupDate: req.ProposedPickupDate,
		ProposedReturnDate: req.ProposedReturnDate,
		Message:            req.Message,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), c.GetString("tenant_id"), c.GetString("user_id"))
	if err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transactions": list})
}

func (h *Handler) Get(c *gin.Context) {
	t, err := h.service.Get(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) Accept(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.Accept(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"), AcceptInput{
		ConfirmedPickupDate: req.ConfirmedPickupDate,
		ExpectedReturnDate:  req.ExpectedReturnDate,
		LenderMessage:       req.LenderMessage,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.Reject(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) ConfirmPickup(c *gin.Context) {
	t, err := h.service.ConfirmPickup(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) InitiateReturn(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.InitiateReturn(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"), ReturnInput{
		Condition:      domain.ReturnCondition(req.Condition),
		Notes:          req.Notes,
		DamagePhotoURL: req.DamagePhotoURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) Complete(c *gin.Context) {
	t, err := h.service.Complete(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) RequestExtension(c *gin.Context) {
	var req extensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.RequestExtension(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"), req.NewDate, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) ResolveExtension(c *gin.Context) {
	var req resolveExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.ResolveExtension(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"), *req.Approve)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) Cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, err := h.service.Cancel(c.Request.Context(), c.GetString("tenant_id"), c.Param("id"), c.GetString("user_id"), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Transaction not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not a party to this transaction")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Transition not allowed from the current status")
	case errors.Is(err, ErrUnavailable):
		response.Error(c, http.StatusConflict, "UNAVAILABLE", "The listing cannot satisfy the requested quantity")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Internal(c)
	}
}
