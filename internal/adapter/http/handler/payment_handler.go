package handler

import (
	"stablecoin-gateway/internal/adapter/http/dto"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment session endpoints for owners.
type PaymentHandler struct {
	sessionSvc ports.PaymentSessionService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(sessionSvc ports.PaymentSessionService) *PaymentHandler {
	return &PaymentHandler{sessionSvc: sessionSvc}
}

// Get handles GET /api/v1/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionSvc.GetPaymentSession(c.Request.Context(), id, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToPaymentSessionResponse(session))
}
