package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"adbidder/internal/auth"
	"adbidder/internal/bidding"
	"adbidder/internal/cache"
	"adbidder/internal/client/searchad"
	"adbidder/internal/config"
	cronrunner "adbidder/internal/cron"
	"adbidder/internal/db"
	"adbidder/internal/gateway"
	"adbidder/internal/handler"
	"adbidder/internal/logger"
	"adbidder/internal/paas"
	gormrepository "adbidder/internal/repository/gorm"
	"adbidder/internal/service"

	_ "adbidder/docs"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("SA_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("SA_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB, logger)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}
	loc, err := time.LoadLocation(cfg.DB.Timezone)
	if err != nil {
		loc = time.Local
	}

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		logger.Warn("init default system switches failed", zap.Error(err))
	}

	var leaseStore cache.Store
	var redisStore *cache.RedisStore
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		redisStore = cache.NewRedisStore(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisStore.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, run lease will fail until it recovers", zap.Error(err))
		}
		cancel()
		leaseStore = redisStore
	} else {
		logger.Info("redis not configured, using in-process run lease")
		leaseStore = cache.NewMemoryStore()
	}

	paasClient := initPaaSClient(cfg.PaaS, logger)

	apiClient := searchad.NewClient(searchad.Options{
		BaseURL:    cfg.SearchAd.BaseURL,
		Timeout:    cfg.SearchAd.Timeout,
		RetryCount: cfg.SearchAd.RetryCount,
		Credentials: searchad.Credentials{
			APIKey:     cfg.SearchAd.APIKey,
			SecretKey:  cfg.SearchAd.SecretKey,
			CustomerID: cfg.SearchAd.CustomerID,
		},
	})
	gw := &gateway.SearchAdGateway{
		API:         apiClient,
		Audit:       store,
		Logger:      logger.Named("gateway"),
		Concurrency: cfg.SearchAd.Concurrency,
		Location:    loc,
		StatsPause:  200 * time.Millisecond,
		Forward: func(ctx context.Context) bool {
			return settingsSvc.IsEnabled(ctx, service.FeatureAuditForward, false)
		},
	}

	defaults := bidding.StrategyFromConfig(cfg.Bidder)
	if err := defaults.Validate(); err != nil {
		logger.Fatal("invalid bidder defaults", zap.Error(err))
	}
	bidder := service.NewAutoBidder(gw, store, store, cfg.Bidder, logger.Named("bidder"))
	bidder.Lease = service.NewLease(leaseStore, cfg.SearchAd.CustomerID, cfg.Bidder.LeaseTTL)

	expander := &service.OverflowExpander{Gateway: gw, Runs: store, Logger: logger.Named("expansion"), Config: cfg.Expansion}
	batchSvc := &service.KeywordBatchService{Gateway: gw, Expander: expander, Logger: logger.Named("expansion")}
	cloner := &service.CreativeCloner{Gateway: gw, Logger: logger.Named("creatives")}
	watchSvc := &service.WatchlistService{Repo: store, Gateway: gw, Logger: logger}
	auditSvc := &service.AuditService{Repo: store, Location: loc, Logger: logger}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	if cfg.Auth.Disabled {
		logger.Warn("api auth disabled")
	} else if cfg.Auth.JWTSecret == "" {
		logger.Fatal("auth.jwt_secret is required unless auth.disabled is set")
	}
	engine.Use(auth.RequireBearer(auth.JWT{Secret: []byte(cfg.Auth.JWTSecret)}, cfg.Auth.Disabled))
	engine.Use(paas.InjectClientMiddleware(paasClient))
	engine.Use(paas.WriteAuditMiddleware(paasClient, logger))

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	if redisStore != nil {
		healthHandler.Cache = redisStore
	}
	healthHandler.Register(engine)
	paas.RegisterDocs(engine)

	(&handler.CatalogHandler{Gateway: gw}).Register(engine)
	(&handler.AutoBidHandler{Bidder: bidder, Settings: settingsSvc, Watchlist: watchSvc, Defaults: defaults}).Register(engine)
	(&handler.WatchlistHandler{Service: watchSvc}).Register(engine)
	(&handler.ExpansionHandler{Expander: expander, Batch: batchSvc, Cloner: cloner}).Register(engine)
	(&handler.BidLogHandler{Repo: store, Audit: auditSvc}).Register(engine)
	(&handler.SystemSettingsHandler{Repo: store, Settings: settingsSvc}).Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseCtx := ctx
	if paasClient != nil {
		baseCtx = paas.WithClient(ctx, paasClient)
	}

	jobs := &service.ScheduledJobs{
		Bidder:        bidder,
		Settings:      settingsSvc,
		Audit:         auditSvc,
		Defaults:      defaults,
		RetentionDays: cfg.Audit.RetentionDays,
		Logger:        logger.Named("cron"),
	}
	cronRunner := cronrunner.New(logger, baseCtx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add("audit_retention", cfg.Cron.AuditRetention, jobs.AuditRetention); err != nil {
			logger.Warn("cron register audit retention failed", zap.Error(err))
		}
		if _, err := cronRunner.Add("scheduled_autobid", cfg.Cron.AutoBid, jobs.ScheduledAutoBid); err != nil {
			logger.Warn("cron register scheduled autobid failed", zap.Error(err))
		}
		cronRunner.Start()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	if cfg.Cron.Enabled {
		cronRunner.Stop()
	}
	if err := bidder.Stop(); err == nil {
		select {
		case <-bidder.Done():
			logger.Info("auto bidder stopped")
		case <-time.After(30 * time.Second):
			logger.Warn("auto bidder did not stop in time")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func initPaaSClient(cfg config.PaaSConfig, logger *zap.Logger) *paas.Client {
	base := strings.TrimSpace(cfg.BaseURL)
	apiKey := strings.TrimSpace(cfg.APIKey)
	if base == "" || apiKey == "" {
		return nil
	}

	p := &paas.Client{BaseURL: base, APIKey: apiKey, Agent: cfg.Agent}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Login(ctx); err != nil {
		logger.Warn("paas login failed (audit forwarding disabled)", zap.Error(err))
		return nil
	}
	logger.Info("paas login ok")
	return p
}
