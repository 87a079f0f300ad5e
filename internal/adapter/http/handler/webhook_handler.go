package handler

import (
	"net/http"
	"strconv"

	"stablecoin-gateway/internal/adapter/http/dto"
	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/pkg/apperror"
	"stablecoin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles webhook endpoint management.
type WebhookHandler struct {
	webhookSvc ports.WebhookEndpointService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookEndpointService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Register handles POST /api/v1/webhooks. The signing secret is only
// returned here and on rotation.
func (h *WebhookHandler) Register(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	var req dto.RegisterWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	events := make([]domain.EventType, 0, len(req.Events))
	for _, e := range req.Events {
		ev := domain.EventType(e)
		if !domain.IsKnownEvent(ev) {
			response.Error(c, apperror.Validation("unknown event type: "+e))
			return
		}
		events = append(events, ev)
	}

	registered, err := h.webhookSvc.RegisterEndpoint(c.Request.Context(), ownerID, req.URL, events)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ToWebhookEndpointResponse(registered.Endpoint)
	resp.Secret = registered.Secret
	response.Created(c, resp)
}

// List handles GET /api/v1/webhooks.
func (h *WebhookHandler) List(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	endpoints, err := h.webhookSvc.ListEndpoints(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WebhookEndpointResponse, 0, len(endpoints))
	for i := range endpoints {
		items = append(items, dto.ToWebhookEndpointResponse(&endpoints[i]))
	}
	response.OK(c, dto.ListResponse[dto.WebhookEndpointResponse]{Items: items})
}

// RotateSecret handles POST /api/v1/webhooks/:id/rotate-secret.
func (h *WebhookHandler) RotateSecret(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rotated, err := h.webhookSvc.RotateSecret(c.Request.Context(), id, ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ToWebhookEndpointResponse(rotated.Endpoint)
	resp.Secret = rotated.Secret
	response.OK(c, resp)
}

// Deactivate handles DELETE /api/v1/webhooks/:id.
func (h *WebhookHandler) Deactivate(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.webhookSvc.DeactivateEndpoint(c.Request.Context(), id, ownerID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDeliveries handles GET /api/v1/webhooks/:id/deliveries.
func (h *WebhookHandler) ListDeliveries(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	deliveries, err := h.webhookSvc.ListDeliveries(c.Request.Context(), id, ownerID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WebhookDeliveryResponse, 0, len(deliveries))
	for i := range deliveries {
		items = append(items, dto.ToWebhookDeliveryResponse(&deliveries[i]))
	}
	response.OK(c, dto.ListResponse[dto.WebhookDeliveryResponse]{Items: items, Limit: limit})
}
