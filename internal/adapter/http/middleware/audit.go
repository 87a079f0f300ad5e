package middleware

import (
	"encoding/json"
	"net/http"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

// auditRoutes maps "METHOD route-template" to the action it performs.
var auditRoutes = map[string]auditRoute{
	"POST /api/v1/payment-links":                {domain.AuditActionLinkCreate, "payment_link"},
	"POST /api/v1/payment-links/:id/deactivate": {domain.AuditActionLinkDeactivate, "payment_link"},
	"POST /api/v1/pay/:code/redeem":             {domain.AuditActionLinkRedeem, "payment_link"},
	"POST /api/v1/payments/:id/refunds":         {domain.AuditActionRefundRequest, "refund"},
	"POST /api/v1/refunds/:id/processing":       {domain.AuditActionRefundProcess, "refund"},
	"POST /api/v1/refunds/:id/complete":         {domain.AuditActionRefundComplete, "refund"},
	"POST /api/v1/refunds/:id/fail":             {domain.AuditActionRefundFail, "refund"},
	"POST /api/v1/webhooks":                     {domain.AuditActionWebhookRegister, "webhook_endpoint"},
	"POST /api/v1/webhooks/:id/rotate-secret":   {domain.AuditActionWebhookRotate, "webhook_endpoint"},
	"DELETE /api/v1/webhooks/:id":               {domain.AuditActionWebhookDisable, "webhook_endpoint"},
	"POST /internal/v1/payments/:id/status":     {domain.AuditActionPaymentStatus, "payment_session"},
	"POST /internal/v1/refunds/:id/finality":    {domain.AuditActionRefundFinality, "refund"},
	"POST /internal/v1/refunds/:id/fail":        {domain.AuditActionRefundFail, "refund"},
}

// AuditLog creates an audit middleware that logs successful write operations.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		route, ok := auditRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		var ownerID *uuid.UUID
		if id, ok := OwnerID(c); ok {
			ownerID = &id
		}

		resourceID := c.Param("id")
		if resourceID == "" {
			resourceID = c.Param("code")
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"caller": c.GetString(CtxCaller),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			OwnerID:      ownerID,
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
		})
	}
}
