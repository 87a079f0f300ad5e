package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionLinkCreate      AuditAction = "LINK_CREATE"
	AuditActionLinkDeactivate  AuditAction = "LINK_DEACTIVATE"
	AuditActionLinkRedeem      AuditAction = "LINK_REDEEM"
	AuditActionRefundRequest   AuditAction = "REFUND_REQUEST"
	AuditActionRefundProcess   AuditAction = "REFUND_PROCESSING"
	AuditActionRefundComplete  AuditAction = "REFUND_COMPLETE"
	AuditActionRefundFail      AuditAction = "REFUND_FAIL"
	AuditActionRefundFinality  AuditAction = "REFUND_FINALITY"
	AuditActionPaymentStatus   AuditAction = "PAYMENT_STATUS"
	AuditActionWebhookRegister AuditAction = "WEBHOOK_REGISTER"
	AuditActionWebhookRotate   AuditAction = "WEBHOOK_ROTATE_SECRET"
	AuditActionWebhookDisable  AuditAction = "WEBHOOK_DEACTIVATE"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	OwnerID      *uuid.UUID  `json:"owner_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
