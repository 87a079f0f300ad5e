package handler

import (
	"stablecoin-gateway/internal/adapter/http/dto"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/pkg/apperror"
	"stablecoin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentLinkHandler handles payment link endpoints.
type PaymentLinkHandler struct {
	linkSvc ports.PaymentLinkService
	baseURL string
}

// NewPaymentLinkHandler creates a new PaymentLinkHandler. baseURL prefixes
// the public link URL returned to owners.
func NewPaymentLinkHandler(linkSvc ports.PaymentLinkService, baseURL string) *PaymentLinkHandler {
	return &PaymentLinkHandler{linkSvc: linkSvc, baseURL: baseURL}
}

// Create handles POST /api/v1/payment-links.
func (h *PaymentLinkHandler) Create(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	link, err := h.linkSvc.CreatePaymentLink(c.Request.Context(), ownerID, ports.CreatePaymentLinkRequest{
		Title:           req.Title,
		Amount:          amount,
		Currency:        req.Currency,
		Network:         req.Network,
		Token:           req.Token,
		MerchantAddress: req.MerchantAddress,
		MaxUsages:       req.MaxUsages,
		ExpiresAt:       req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToPaymentLinkResponse(link, h.baseURL))
}

// List handles GET /api/v1/payment-links.
func (h *PaymentLinkHandler) List(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	links, err := h.linkSvc.ListPaymentLinks(c.Request.Context(), ownerID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentLinkResponse, 0, len(links))
	for i := range links {
		items = append(items, dto.ToPaymentLinkResponse(&links[i], h.baseURL))
	}
	response.OK(c, dto.ListResponse[dto.PaymentLinkResponse]{Items: items, Limit: limit, Offset: offset})
}

// Get handles GET /api/v1/payment-links/:id.
func (h *PaymentLinkHandler) Get(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	link, err := h.linkSvc.GetPaymentLink(c.Request.Context(), id, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToPaymentLinkResponse(link, h.baseURL))
}

// Deactivate handles POST /api/v1/payment-links/:id/deactivate.
func (h *PaymentLinkHandler) Deactivate(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	link, err := h.linkSvc.DeactivatePaymentLink(c.Request.Context(), id, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToPaymentLinkResponse(link, h.baseURL))
}

// Resolve handles GET /api/v1/pay/:code. It is public.
func (h *PaymentLinkHandler) Resolve(c *gin.Context) {
	link, err := h.linkSvc.GetPaymentLinkByShortCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToPublicLinkResponse(link))
}

// Redeem handles POST /api/v1/pay/:code/redeem. It is public.
func (h *PaymentLinkHandler) Redeem(c *gin.Context) {
	var req dto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	session, err := h.linkSvc.RedeemPaymentLink(c.Request.Context(), c.Param("code"), ports.RedeemRequest{
		Amount:     amount,
		PayerEmail: req.PayerEmail,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToPaymentSessionResponse(session))
}
