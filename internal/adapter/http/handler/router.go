package handler

import (
	"stablecoin-gateway/internal/adapter/http/middleware"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const defaultMaxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LinkSvc        ports.PaymentLinkService
	SessionSvc     ports.PaymentSessionService
	RefundSvc      ports.RefundService
	WebhookSvc     ports.WebhookEndpointService
	SigSvc         ports.SignatureService
	NonceStore     ports.NonceStore
	TokenSvc       ports.TokenService
	RateLimitStore middleware.Limiter // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Metrics        *telemetry.Metrics
	Gatherer       prometheus.Gatherer // nil = /metrics not exposed
	Monitor        middleware.MonitorAuthConfig
	PublicBaseURL  string
	MaxBodyBytes   int64
	ServiceName    string // non-empty enables otelgin spans
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = defaultMaxBodyBytes
	}

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	if deps.ServiceName != "" {
		r.Use(otelgin.Middleware(deps.ServiceName))
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.MaxBodySize(deps.MaxBodyBytes))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep: verifies PostgreSQL and Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	linkHandler := NewPaymentLinkHandler(deps.LinkSvc, deps.PublicBaseURL)
	pay := v1.Group("/pay")
	{
		pay.GET("/:code", rl("public_resolve"), linkHandler.Resolve)
		pay.POST("/:code/redeem", rl("public_redeem"), linkHandler.Redeem)
	}

	// --- JWT-authenticated routes (owner API) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	links := v1.Group("/payment-links", jwtAuth)
	{
		links.POST("", rl("links"), linkHandler.Create)
		links.GET("", rl("dashboard"), linkHandler.List)
		links.GET("/:id", rl("dashboard"), linkHandler.Get)
		links.POST("/:id/deactivate", rl("links"), linkHandler.Deactivate)
	}

	paymentHandler := NewPaymentHandler(deps.SessionSvc)
	refundHandler := NewRefundHandler(deps.RefundSvc)
	payments := v1.Group("/payments", jwtAuth)
	{
		payments.GET("/:id", rl("dashboard"), paymentHandler.Get)
		payments.POST("/:id/refunds", rl("refunds"), refundHandler.Create)
		payments.GET("/:id/refunds", rl("dashboard"), refundHandler.List)
	}

	refunds := v1.Group("/refunds", jwtAuth)
	{
		refunds.GET("/:id", rl("dashboard"), refundHandler.Get)
		refunds.POST("/:id/processing", rl("refunds"), refundHandler.MarkProcessing)
		refunds.POST("/:id/complete", rl("refunds"), refundHandler.Complete)
		refunds.POST("/:id/fail", rl("refunds"), refundHandler.Fail)
	}

	webhookHandler := NewWebhookHandler(deps.WebhookSvc)
	webhooks := v1.Group("/webhooks", jwtAuth)
	{
		webhooks.POST("", rl("webhooks"), webhookHandler.Register)
		webhooks.GET("", rl("dashboard"), webhookHandler.List)
		webhooks.POST("/:id/rotate-secret", rl("webhooks"), webhookHandler.RotateSecret)
		webhooks.DELETE("/:id", rl("webhooks"), webhookHandler.Deactivate)
		webhooks.GET("/:id/deliveries", rl("dashboard"), webhookHandler.ListDeliveries)
	}

	// --- HMAC-authenticated routes (blockchain monitor) ---
	monitorAuth := middleware.MonitorAuth(deps.Monitor, deps.SigSvc, deps.NonceStore, deps.Logger)
	monitorHandler := NewMonitorHandler(deps.SessionSvc, deps.RefundSvc)
	internal := r.Group("/internal/v1", monitorAuth)
	{
		internal.POST("/payments/:id/status", monitorHandler.PaymentStatus)
		internal.POST("/refunds/:id/finality", monitorHandler.RefundFinality)
		internal.POST("/refunds/:id/fail", monitorHandler.RefundFail)
	}

	return r
}
