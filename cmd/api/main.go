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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/auth"
	"github.com/01moynul/carlisting-golang/internal/config"
	"github.com/01moynul/carlisting-golang/internal/csvimport"
	"github.com/01moynul/carlisting-golang/internal/database"
	"github.com/01moynul/carlisting-golang/internal/handlers"
	"github.com/01moynul/carlisting-golang/internal/logger"
	"github.com/01moynul/carlisting-golang/internal/metrics"
	"github.com/01moynul/carlisting-golang/internal/middleware"
	"github.com/01moynul/carlisting-golang/internal/recommend"
	"github.com/01moynul/carlisting-golang/internal/repository"
	"github.com/01moynul/carlisting-golang/internal/routes"
	"github.com/01moynul/carlisting-golang/internal/service"
	"github.com/01moynul/carlisting-golang/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Error loading config: %v", err))
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("Error initializing logger: %v", err))
	}
	defer log.Sync()

	log = logger.WithService(log, "carlisting-api")
	log.Info("Starting car listing API",
		zap.String("environment", cfg.Environment),
		zap.String("http_port", cfg.HTTP.Port),
		zap.String("api_prefix", cfg.APIPrefix),
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		log.Fatal("Error registering validators", zap.Error(err))
	}

	// --- Database ---
	db, err := database.OpenDB(database.Config{
		DSN:             cfg.MySQL.DSN(),
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("Error connecting to MySQL", zap.Error(err))
	}
	defer db.Close()
	prometheus.MustRegister(collectors.NewDBStatsCollector(db.DB, cfg.MySQL.Database))

	if cfg.RunMigrations {
		if err := database.Migrate(db, log); err != nil {
			log.Fatal("Error running migrations", zap.Error(err))
		}
	}

	// --- Event fan-out ---
	var publisher service.Publisher
	if cfg.Kafka.Enabled() {
		producer, err := stream.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Fatal("Error initializing Kafka producer", zap.Error(err))
		}
		defer producer.Close()
		publisher = producer
	} else {
		log.Info("Kafka brokers not configured, event fan-out disabled")
	}

	// --- Wiring ---
	itemRepo := repository.NewItemRepository(db, log)
	eventRepo := repository.NewEventRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)

	itemService := service.NewItemService(itemRepo, log)
	eventService := service.NewEventService(eventRepo, publisher, log)
	userService := service.NewUserService(userRepo, log)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userService.EnsureSuperuser(bootCtx, cfg.FirstSuperuser.Email, cfg.FirstSuperuser.Password); err != nil {
		log.Fatal("Error creating first superuser", zap.Error(err))
	}
	cancelBoot()

	app := &handlers.Handlers{
		Items:          itemService,
		Events:         eventService,
		Users:          userService,
		Recommender:    recommend.NewRecommender(itemRepo, metrics.RecommendationObserver{}, log),
		Importer:       csvimport.NewImporter(itemRepo, log),
		Tokens:         tokens,
		DB:             db,
		Logger:         log,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.EventsPerSecond, cfg.RateLimit.EventsBurst)
	stopCleanup := make(chan struct{})
	go limiter.Run(10*time.Minute, stopCleanup)
	defer close(stopCleanup)

	router := routes.SetupRouter(app, routes.Config{
		APIPrefix:      cfg.APIPrefix,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Tokens:         tokens,
		Users:          userService,
		EventLimiter:   limiter,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("HTTP server shutdown timed out", zap.Error(err))
		return
	}
	log.Info("HTTP server stopped")
}
