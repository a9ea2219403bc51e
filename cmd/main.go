package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sharath018/church-notification-backend/config"
	"github.com/sharath018/church-notification-backend/database"
	"github.com/sharath018/church-notification-backend/internal/auditlog"
	"github.com/sharath018/church-notification-backend/internal/event"
	"github.com/sharath018/church-notification-backend/internal/notification"
	"github.com/sharath018/church-notification-backend/internal/scheduler"
	"github.com/sharath018/church-notification-backend/internal/settings"
	"github.com/sharath018/church-notification-backend/internal/tenant"
	"github.com/sharath018/church-notification-backend/internal/trigger"
	"github.com/sharath018/church-notification-backend/metrics"
	"github.com/sharath018/church-notification-backend/routes"
	"github.com/sharath018/church-notification-backend/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	logger, err := utils.NewLogger(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("❌ Logger init failed: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("❌ Database connection failed", zap.Error(err))
	}

	logger.Info("🔄 Running database migrations...")
	if err := database.Migrate(db,
		&settings.Record{},
		&notification.History{},
		&event.Event{},
		&event.Team{},
		&event.User{},
		&tenant.Church{},
		&auditlog.AuditLog{},
	); err != nil {
		logger.Fatal("❌ DB AutoMigrate failed", zap.Error(err))
	}
	logger.Info("✅ Database migrations completed")

	// Redis only fronts settings reads; the service works without it.
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		if cache, err = utils.InitRedis(cfg); err != nil {
			logger.Warn("⚠️ Redis init failed, settings cache disabled", zap.Error(err))
			cache = nil
		}
	}

	// 🔥 Firebase: push is disabled rather than fatal when credentials are missing
	fcmClient, err := utils.InitFirebase(ctx, cfg, logger)
	if err != nil {
		logger.Warn("⚠️ Firebase initialization failed, push notifications disabled", zap.Error(err))
	}

	metrics.Register(prometheus.DefaultRegisterer)
	loc := cfg.Location()

	// Init repositories & services
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	settingsSvc := settings.NewService(settings.NewRepository(db), cache, cfg.SettingsCacheTTL, logger)

	tenantRepo := tenant.NewRepository(db)
	zones := tenant.NewZones(tenantRepo, loc, logger)

	historyRepo := notification.NewRepository(db)
	engine := notification.NewEngine(
		settingsSvc,
		notification.NewFCMPusher(fcmClient, float64(cfg.FCMSendRate), logger),
		historyRepo,
		logger,
		notification.WithLocation(loc),
		notification.WithZones(zones),
	)
	settingsSvc.OnChange(engine.OnSettingsChanged)

	eventRepo := event.NewRepository(db)

	reconciler := event.NewReconciler(tenantRepo, eventRepo, auditSvc, cfg.MaterializationMonths, logger)
	reminders := event.NewReminders(tenantRepo, eventRepo, settingsSvc, engine, cfg.ReminderTick, loc, logger).
		WithZones(zones)
	cleaner := event.NewCleaner(tenantRepo, eventRepo, auditSvc, cfg.RetentionDays, logger)

	dispatcher := trigger.NewDispatcher(logger)
	trigger.NewHandlers(engine, eventRepo, settingsSvc, logger).Register(dispatcher)

	// ===========================
	// ⏰ Scheduled jobs
	sched := scheduler.New(loc, logger)
	jobs := []struct {
		name    string
		spec    string
		timeout time.Duration
		run     scheduler.Job
	}{
		{"reconcile", cfg.ReconcileCron, 10 * time.Minute, func(ctx context.Context) error {
			_, err := reconciler.Reconcile(ctx)
			return err
		}},
		{"reminders", cfg.ReminderCron, cfg.ReminderTick, func(ctx context.Context) error {
			_, err := reminders.Run(ctx)
			return err
		}},
		{"cleanup", cfg.CleanupCron, 30 * time.Minute, func(ctx context.Context) error {
			_, err := cleaner.Run(ctx)
			return err
		}},
	}
	for _, j := range jobs {
		if err := sched.Add(j.name, j.spec, j.timeout, j.run); err != nil {
			logger.Fatal("❌ Invalid job schedule", zap.String("job", j.name), zap.Error(err))
		}
	}
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("❌ Scheduler start failed", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	// ===========================
	// 📨 Kafka change source
	var consumer *trigger.Consumer
	if len(cfg.KafkaBrokers) > 0 {
		consumer = trigger.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, dispatcher, logger)
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil {
				return fmt.Errorf("kafka consumer: %w", err)
			}
			return nil
		})
	} else {
		logger.Info("ℹ️ KAFKA_BROKERS not set, change events accepted over HTTP only")
	}

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	routes.Setup(router, cfg, routes.Handlers{
		Settings:     settings.NewHandler(settingsSvc, auditSvc, logger),
		Notification: notification.NewHandler(engine, historyRepo),
		Event:        event.NewHandler(reconciler),
		Tenant:       tenant.NewHandler(tenantRepo, logger),
		Audit:        auditlog.NewHandler(auditSvc),
		Jobs:         scheduler.NewHandler(sched),
		Changes:      trigger.NewWebhookHandler(dispatcher),
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.Info("🚀 Server starting", zap.String("port", cfg.Port), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// A failing server or consumer cancels gctx and takes the process down
	// through the same shutdown path as a signal.
	<-gctx.Done()
	logger.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("⚠️ HTTP shutdown incomplete", zap.Error(err))
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Warn("⚠️ Kafka consumer close failed", zap.Error(err))
		}
	}
	if err := g.Wait(); err != nil {
		logger.Error("❌ Service stopped with error", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
	// Pending batches are delivered before exit.
	engine.Shutdown(shutdownCtx)

	if cache != nil {
		_ = cache.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("✅ Shutdown complete")
}
