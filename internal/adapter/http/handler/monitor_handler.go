package handler

import (
	"stablecoin-gateway/internal/adapter/http/dto"
	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/pkg/apperror"
	"stablecoin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// MonitorHandler serves the signed callbacks of the blockchain monitor.
type MonitorHandler struct {
	sessionSvc ports.PaymentSessionService
	refundSvc  ports.RefundService
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(sessionSvc ports.PaymentSessionService, refundSvc ports.RefundService) *MonitorHandler {
	return &MonitorHandler{sessionSvc: sessionSvc, refundSvc: refundSvc}
}

// PaymentStatus handles POST /internal/v1/payments/:id/status.
func (h *MonitorHandler) PaymentStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	session, err := h.sessionSvc.TransitionPaymentSession(c.Request.Context(), id, domain.PaymentStatus(req.Status), req.TxHash)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToPaymentSessionResponse(session))
}

// RefundFinality handles POST /internal/v1/refunds/:id/finality. A pending
// result answers 202 and the monitor polls again later.
func (h *MonitorHandler) RefundFinality(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.RefundFinalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.refundSvc.ConfirmRefundFinality(c.Request.Context(), id, req.TxHash, req.Network)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Status == domain.FinalityPending {
		response.Accepted(c, dto.ToFinalityResponse(result))
		return
	}
	response.OK(c, dto.ToFinalityResponse(result))
}

// RefundFail handles POST /internal/v1/refunds/:id/fail, e.g. after the
// refund transaction reverted.
func (h *MonitorHandler) RefundFail(c *gin.Context) {
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

	refund, err := h.refundSvc.FailRefund(c.Request.Context(), id, req.Reason, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToRefundResponse(refund))
}
