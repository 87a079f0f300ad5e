package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stablecoin-gateway/config"
	"stablecoin-gateway/internal/adapter/chain"
	httpHandler "stablecoin-gateway/internal/adapter/http/handler"
	"stablecoin-gateway/internal/adapter/http/middleware"
	kafkaBus "stablecoin-gateway/internal/adapter/messaging/kafka"
	pgStorage "stablecoin-gateway/internal/adapter/storage/postgres"
	redisStorage "stablecoin-gateway/internal/adapter/storage/redis"
	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"
	"stablecoin-gateway/internal/service"
	"stablecoin-gateway/internal/telemetry"
	"stablecoin-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("SPG_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Stablecoin Gateway")

	ctx := context.Background()

	// Tracing
	shutdownTracer, err := telemetry.InitTracer(cfg.Tracing, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	linkRepo := pgStorage.NewPaymentLinkRepo(pool)
	sessionRepo := pgStorage.NewPaymentSessionRepo(pool)
	refundRepo := pgStorage.NewRefundRepo(pool)
	endpointRepo := pgStorage.NewWebhookEndpointRepo(pool)
	deliveryRepo := pgStorage.NewWebhookDeliveryRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool, cfg.Database.LockTimeout, cfg.Database.StatementTimeout)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb, "idem:refund:")
	nonceStore := redisStorage.NewNonceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Event publishing (optional)
	var publisher ports.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafkaBus.NewSyncProducer(cfg.Kafka)
		if err != nil {
			log.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("Failed to connect to Kafka")
		}
		kafkaPublisher := kafkaBus.NewPublisher(producer, cfg.Kafka.Topic, log)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher ready")
	}

	// Webhook delivery
	guard := service.NewURLGuard(nil, cfg.Webhook.AllowPrivateURLs)
	secretCache := service.NewSecretCache(cfg.SecretCache.TTL, cfg.SecretCache.MaxEntries)
	breaker := service.NewCircuitBreaker(cfg.Webhook.BreakerThreshold, cfg.Webhook.BreakerCooldown)
	outbox := service.NewWebhookOutbox(endpointRepo, deliveryRepo, publisher, log)
	executor := service.NewWebhookExecutor(
		deliveryRepo,
		encSvc,
		breaker,
		secretCache,
		guard,
		service.NewWebhookHTTPClient(guard, cfg.Webhook.Timeout),
		metrics,
		service.WebhookExecutorConfig{
			Timeout:       cfg.Webhook.Timeout,
			MaxAttempts:   cfg.Webhook.MaxAttempts,
			RetrySchedule: cfg.Webhook.RetrySchedule,
			Jitter:        cfg.Webhook.Jitter,
		},
		log,
	)
	dispatcher := service.NewWebhookDispatcher(deliveryRepo, executor, service.DispatcherConfig{
		PollInterval: cfg.Webhook.PollInterval,
		BatchSize:    cfg.Webhook.BatchSize,
		Workers:      cfg.Webhook.Workers,
		StaleAfter:   cfg.Webhook.StaleAfter,
		MaxAttempts:  cfg.Webhook.MaxAttempts,
	}, log)

	// Confirmation oracle
	oracle := chain.NewEVMOracle(cfg.Chain.RPCURLs, &http.Client{Timeout: cfg.Chain.Timeout}, cfg.Chain.Timeout, log)

	// Initialize business services
	linkSvc := service.NewPaymentLinkService(linkRepo, sessionRepo, outbox, transactor, metrics, cfg.PaymentLink.ShortCodeAttempts, log)
	sessionSvc := service.NewPaymentSessionService(sessionRepo, outbox, transactor, cfg.Database.TxTimeout, log)
	refundSvc := service.NewRefundService(
		refundRepo,
		sessionRepo,
		outbox,
		transactor,
		oracle,
		idempotencyCache,
		metrics,
		service.RefundServiceConfig{
			TxTimeout:      cfg.Database.TxTimeout,
			IdempotencyTTL: cfg.Refund.IdempotencyTTL,
			Finality:       domain.NewFinalityPolicy(cfg.Chain.Confirmations),
		},
		log,
	)
	webhookSvc := service.NewWebhookEndpointService(endpointRepo, deliveryRepo, encSvc, guard, secretCache, log)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	serviceName := ""
	if cfg.Tracing.Enabled {
		serviceName = cfg.Tracing.ServiceName
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LinkSvc:        linkSvc,
		SessionSvc:     sessionSvc,
		RefundSvc:      refundSvc,
		WebhookSvc:     webhookSvc,
		SigSvc:         sigSvc,
		NonceStore:     nonceStore,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Metrics:        metrics,
		Gatherer:       reg,
		Monitor: middleware.MonitorAuthConfig{
			Secret:    cfg.Monitor.Secret,
			ClockSkew: cfg.Monitor.ClockSkew,
			NonceTTL:  cfg.Monitor.NonceTTL,
		},
		PublicBaseURL: cfg.PaymentLink.PublicBaseURL,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		ServiceName:   serviceName,
		Logger:        log,
	})

	if cfg.Monitor.Secret == "" {
		log.Warn().Msg("monitor.secret is empty, monitor callbacks will be rejected")
	}

	// Start webhook dispatcher
	dispatcher.Start(ctx)

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	dispatcher.Stop()
	if err := auditSvc.Flush(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Pending audit logs dropped")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Tracer shutdown failed")
	}

	log.Info().Msg("Server exited")
}
