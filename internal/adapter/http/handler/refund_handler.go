package handler

import (
	"stablecoin-gateway/internal/adapter/http/dto"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/pkg/apperror"
	"stablecoin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// HeaderIdempotencyKey makes refund requests safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 255

// RefundHandler handles refund endpoints for owners.
type RefundHandler struct {
	refundSvc ports.RefundService
}

// NewRefundHandler creates a new RefundHandler.
func NewRefundHandler(refundSvc ports.RefundService) *RefundHandler {
	return &RefundHandler{refundSvc: refundSvc}
}

// Create handles POST /api/v1/payments/:id/refunds.
func (h *RefundHandler) Create(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	idemKey := c.GetHeader(HeaderIdempotencyKey)
	if len(idemKey) > maxIdempotencyKeyLen {
		response.Error(c, apperror.Validation("Idempotency-Key is too long"))
		return
	}

	var req dto.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	refund, err := h.refundSvc.RequestRefund(c.Request.Context(), ports.RequestRefundRequest{
		OwnerID:          ownerID,
		PaymentSessionID: sessionID,
		Amount:           amount,
		Reason:           req.Reason,
		IdempotencyKey:   idemKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToRefundResponse(refund))
}

// List handles GET /api/v1/payments/:id/refunds.
func (h *RefundHandler) List(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	refunds, err := h.refundSvc.ListRefunds(c.Request.Context(), sessionID, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.RefundResponse, 0, len(refunds))
	for i := range refunds {
		items = append(items, dto.ToRefundResponse(&refunds[i]))
	}
	response.OK(c, dto.ListResponse[dto.RefundResponse]{Items: items})
}

// Get handles GET /api/v1/refunds/:id.
func (h *RefundHandler) Get(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	refund, err := h.refundSvc.GetRefund(c.Request.Context(), id, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToRefundResponse(refund))
}

// MarkProcessing handles POST /api/v1/refunds/:id/processing.
func (h *RefundHandler) MarkProcessing(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.RefundTxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	refund, err := h.refundSvc.MarkRefundProcessing(c.Request.Context(), id, req.TxHash, &ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToRefundResponse(refund))
}

// Complete handles POST /api/v1/refunds/:id/complete.
func (h *RefundHandler) Complete(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CompleteRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	refund, err := h.refundSvc.CompleteRefund(c.Request.Context(), ports.CompleteRefundRequest{
		ID:          id,
		TxHash:      req.TxHash,
		BlockNumber: req.BlockNumber,
		OwnerID:     &ownerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToRefundResponse(refund))
}

// Fail handles POST /api/v1/refunds/:id/fail.
func (h *RefundHandler) Fail(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.FailRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	refund, err := h.refundSvc.FailRefund(c.Request.Context(), id, req.Reason, &ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToRefundResponse(refund))
}
