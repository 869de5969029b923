package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoOrderly/orderlygate/internal/config"
	"github.com/GoOrderly/orderlygate/internal/handler"
	"github.com/GoOrderly/orderlygate/internal/market"
	"github.com/GoOrderly/orderlygate/internal/middleware"
	"github.com/GoOrderly/orderlygate/internal/pkg/logger"
	"github.com/GoOrderly/orderlygate/internal/repository"
	"github.com/GoOrderly/orderlygate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(cfg.Server.LogLevel)

	// 3. Initialize Persistence
	var db *sqlx.DB
	if cfg.Database.DSN != "" {
		db, err = repository.NewDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		logger.Info("✅ Connected to PostgreSQL")
	} else {
		log.Fatal("database.dsn is required")
	}
	partnerRepo := repository.NewPostgresPartnerRepo(db)
	credentialRepo := repository.NewPostgresCredentialRepo(db)

	// Idempotency Store (Redis > Memory)
	var redisClient *redis.Client
	var idempotencyStore middleware.IdempotencyStore
	if cfg.Redis.Addr != "" {
		redisClient, err = repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			ttl := time.Duration(cfg.Redis.IdempotencyTTLSeconds) * time.Second
			idempotencyStore = repository.NewRedisIdempotencyStore(redisClient, ttl)
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
			redisClient = nil
		}
	}
	if idempotencyStore == nil {
		idempotencyStore = middleware.NewInMemIdempotencyStore()
	}

	// Audit Trail (Postgres + optional Redis recent cache)
	var auditRecent service.AuditRepo
	if redisClient != nil {
		auditRecent = repository.NewRedisAuditRepo(redisClient, "", 0)
	}
	auditSvc := service.NewAuditService(repository.NewPostgresAuditRepo(db), auditRecent)

	// 4. Initialize Core Services
	resolver := service.NewCredentialResolver(partnerRepo, credentialRepo)
	partnerSvc := service.NewPartnerService(partnerRepo, credentialRepo)
	factory := service.NewOrderlyClientFactory(cfg)
	limiters := middleware.NewPartnerLimiters(cfg.RateLimit)

	// Ticker Stream
	tickers := market.NewTickerCache()
	stream := market.NewStream(cfg.Orderly.WSURL, tickers)
	stream.Start()

	// 5. Initialize Handlers
	orderHandler := handler.NewOrderHandler(factory)
	accountHandler := handler.NewAccountHandler(factory)
	keysHandler := handler.NewKeysHandler(partnerSvc)
	registerHandler := handler.NewRegisterHandler(factory)
	marketHandler := handler.NewMarketHandler(factory, tickers)
	withdrawHandler := handler.NewWithdrawHandler(factory)
	partnerHandler := handler.NewPartnerHandler(partnerSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	healthHandler := handler.NewHealthHandler(db)

	// 6. Setup Router
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(auditSvc))

	// Health Check
	r.GET("/health", healthHandler.Health)

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API V1 Routes
	v1 := r.Group("/v1")
	v1.Use(middleware.ReadOnlyMiddleware(cfg.Server.ReadOnly))
	v1.Use(middleware.AuthMiddleware(resolver))
	v1.Use(middleware.RateLimitMiddleware(limiters))
	{
		orders := v1.Group("/orders")
		orders.Use(middleware.IdempotencyMiddleware(idempotencyStore))
		{
			orders.POST("", orderHandler.Create)
			orders.GET("", orderHandler.List)
			orders.PUT("", orderHandler.Edit)
			orders.DELETE("", orderHandler.CancelAll)
			orders.GET("/history", orderHandler.History)
			orders.POST("/batch", orderHandler.BatchCreate)
			orders.DELETE("/batch", orderHandler.BatchCancel)
			orders.GET("/:id", orderHandler.Get)
			orders.DELETE("/:id", orderHandler.Cancel)
		}

		algo := v1.Group("/algo/orders")
		algo.Use(middleware.IdempotencyMiddleware(idempotencyStore))
		{
			algo.POST("", orderHandler.CreateAlgo)
			algo.GET("", orderHandler.ListAlgo)
			algo.PUT("/:id", orderHandler.EditAlgo)
			algo.GET("/:id", orderHandler.GetAlgo)
			algo.DELETE("/:id", orderHandler.CancelAlgo)
		}

		account := v1.Group("/account")
		{
			account.GET("/info", accountHandler.Info)
			account.GET("/balances", accountHandler.Balances)
			account.GET("/stats", accountHandler.Stats)
		}
		v1.GET("/settlement", accountHandler.SettlementInfo)
		v1.GET("/positions", accountHandler.Positions)
		v1.GET("/positions/:symbol", accountHandler.Position)

		keys := v1.Group("/keys")
		{
			keys.POST("", keysHandler.Save)
			keys.GET("", keysHandler.List)
			keys.DELETE("/:id", keysHandler.Deactivate)
		}

		register := v1.Group("/register")
		{
			register.GET("/nonce", registerHandler.Nonce)
			register.POST("/account", registerHandler.Account)
			register.POST("/key", registerHandler.Key)
			register.GET("/check", registerHandler.Check)
		}

		withdraw := v1.Group("/withdraw")
		{
			withdraw.GET("/nonce", withdrawHandler.Nonce)
			withdraw.POST("", withdrawHandler.Request)
			withdraw.GET("/history", withdrawHandler.History)
		}

		mkt := v1.Group("/market")
		{
			mkt.GET("/symbols", marketHandler.Symbols)
			mkt.GET("/tickers", marketHandler.AllTickers)
			mkt.GET("/tickers/:symbol", marketHandler.Ticker)
			mkt.GET("/orderbook/:symbol", marketHandler.Orderbook)
			mkt.GET("/trades/:symbol", marketHandler.Trades)
			mkt.GET("/klines", marketHandler.Klines)
			mkt.GET("/funding-rate/:symbol", marketHandler.FundingRate)
			mkt.GET("/funding-rate-history", marketHandler.FundingRateHistory)
			mkt.GET("/stream/tickers", marketHandler.StreamTickers)
			mkt.GET("/stream/tickers/:symbol", marketHandler.StreamTicker)
		}
	}

	// Admin Routes
	admin := r.Group("/admin")
	admin.Use(middleware.AdminMiddleware(cfg))
	{
		admin.POST("/partners", partnerHandler.Create)
		admin.GET("/partners", partnerHandler.List)
		admin.DELETE("/partners/:id", partnerHandler.Delete)
		admin.GET("/audit", auditHandler.List)
	}

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 OrderlyGate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	auditSvc.Close()

	logger.Info("Server exiting")
}
