package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	crmapp "github.com/agencycrm/backend/internal/application/crm"
	financeapp "github.com/agencycrm/backend/internal/application/finance"
	intelligenceapp "github.com/agencycrm/backend/internal/application/intelligence"
	settingsapp "github.com/agencycrm/backend/internal/application/settings"
	snapshotapp "github.com/agencycrm/backend/internal/application/snapshot"
	"github.com/agencycrm/backend/internal/infrastructure/auth"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/config"
	"github.com/agencycrm/backend/internal/infrastructure/event"
	"github.com/agencycrm/backend/internal/infrastructure/logger"
	"github.com/agencycrm/backend/internal/infrastructure/persistence"
	"github.com/agencycrm/backend/internal/infrastructure/persistence/tenant"
	"github.com/agencycrm/backend/internal/infrastructure/realtime"
	"github.com/agencycrm/backend/internal/infrastructure/scheduler"
	"github.com/agencycrm/backend/internal/infrastructure/storage"
	"github.com/agencycrm/backend/internal/interfaces/http/handler"
	"github.com/agencycrm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting agency CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, gormlogger.Warn)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	tenant.EnableAutoTenantFilter(db.DB, true)
	log.Info("Database connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	retainerRepo := persistence.NewGormRetainerChangeRepository(db.DB)
	dealRepo := persistence.NewGormDealRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	noteRepo := persistence.NewGormNoteRepository(db.DB)
	transcriptRepo := persistence.NewGormTranscriptRepository(db.DB)
	recommendationRepo := persistence.NewGormRecommendationRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	planRepo := persistence.NewGormStrategyPlanRepository(db.DB)
	reportRepo := persistence.NewGormCompetitorReportRepository(db.DB)
	signalRepo := persistence.NewGormSignalRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)

	// Shared infrastructure
	store := cache.NewStore()
	queue := event.NewTaskQueue(event.TaskQueueConfig{
		QueueSize:    cfg.Event.QueueSize,
		Workers:      cfg.Event.Workers,
		MaxRetries:   cfg.Event.MaxRetries,
		RetryBackoff: cfg.Event.RetryBackoff,
	}, log)
	if err := queue.Start(context.Background()); err != nil {
		log.Fatal("Failed to start task queue", zap.Error(err))
	}

	activity := appaudit.NewActivityLogger(activityRepo, store, queue, log)

	eventBus := event.NewInMemoryEventBus(log)
	publisher := realtime.NewPublisher(redisClient, log)
	eventBus.Subscribe(realtime.NewLeadEventRelay(leadRepo, publisher, log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	listener := realtime.NewListener(redisClient, store, realtime.WithListenerLogger(log))
	listenerCtx, stopListener := context.WithCancel(context.Background())
	go func() {
		if err := listener.Start(listenerCtx); err != nil && listenerCtx.Err() == nil {
			log.Error("Realtime listener exited", zap.Error(err))
		}
	}()

	// Object storage, stubbed out when no bucket is configured
	var blobs storage.BlobStorage
	if cfg.Storage.Bucket != "" {
		s3Store, err := storage.NewS3BlobStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithSignedURLExpiry(cfg.Storage.SignedURLExpiry),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Store.EnsureBucket(ctx); err != nil {
			log.Warn("Failed to ensure storage bucket", zap.Error(err))
		}
		cancel()
		blobs = s3Store
	} else {
		log.Warn("No storage bucket configured, file uploads are kept in memory")
		blobs = storage.NewStubBlobStorage()
	}

	// Application services
	clientService := crmapp.NewClientService(
		clientRepo, retainerRepo, dealRepo, expenseRepo, paymentRepo,
		store, activity, queue,
		crmapp.WithClientServiceLogger(log),
		crmapp.WithClientServiceEventBus(eventBus),
	)
	leadService := crmapp.NewLeadService(leadRepo, store, activity,
		crmapp.WithLeadServiceLogger(log),
		crmapp.WithLeadServiceEventBus(eventBus),
	)
	conversionService := crmapp.NewConversionService(
		leadRepo, clientRepo, signalRepo, store, activity, queue,
		crmapp.WithConversionServiceLogger(log),
	)
	dealService := financeapp.NewDealService(dealRepo, store, activity, log)
	expenseService := financeapp.NewExpenseService(expenseRepo, store, activity, log)
	paymentService := financeapp.NewPaymentService(paymentRepo, store, activity, log)
	generationService := financeapp.NewGenerationService(clientRepo, expenseRepo, paymentRepo, store, activity, log)
	noteService := intelligenceapp.NewNoteService(noteRepo, store, activity, log)
	recordsService := intelligenceapp.NewRecordsService(
		transcriptRepo, recommendationRepo, messageRepo, planRepo, reportRepo, signalRepo,
		noteService, store, activity,
		intelligenceapp.WithRecordsServiceLogger(log),
		intelligenceapp.WithSignalPublisher(publisher),
	)
	settingsService := settingsapp.NewService(settingsRepo, store, activity, log)
	snapshotService := snapshotapp.NewService(snapshotapp.Repos{
		Clients:         clientRepo,
		Leads:           leadRepo,
		RetainerChanges: retainerRepo,
		Deals:           dealRepo,
		Expenses:        expenseRepo,
		Payments:        paymentRepo,
		Notes:           noteRepo,
		Transcripts:     transcriptRepo,
		Recommendations: recommendationRepo,
		Messages:        messageRepo,
		Plans:           planRepo,
		Reports:         reportRepo,
		Signals:         signalRepo,
		Activity:        activityRepo,
	}, store, activity, log)

	// Monthly generation scheduler
	sched := scheduler.NewScheduler(scheduler.Config{
		MaxConcurrentJobs: 1,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, generationService, log)

	var trigger *scheduler.MonthlyTrigger
	if cfg.Scheduler.Enabled {
		if err := sched.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		trigger, err = scheduler.NewMonthlyTrigger(scheduler.MonthlyTriggerConfig{
			CronSpec: cfg.Scheduler.MonthlyCronSpec,
		}, sched, settingsRepo, log)
		if err != nil {
			log.Fatal("Failed to create monthly trigger", zap.Error(err))
		}
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start monthly trigger", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(router.Config{
		HTTP: &cfg.HTTP,
		JWT:  jwtService,
		Handlers: router.Handlers{
			System: handler.NewSystemHandler(
				handler.ReadyCheck{Name: "database", Probe: func(context.Context) error { return db.Ping() }},
				handler.ReadyCheck{Name: "redis", Probe: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
			),
			Clients:      handler.NewClientHandler(clientService),
			Leads:        handler.NewLeadHandler(leadService, conversionService),
			Finance:      handler.NewFinanceHandler(dealService, expenseService, paymentService, generationService),
			Intelligence: handler.NewIntelligenceHandler(noteService, recordsService),
			Settings:     handler.NewSettingsHandler(settingsService),
			Activity:     handler.NewActivityHandler(activity),
			Snapshot:     handler.NewSnapshotHandler(snapshotService),
			Files:        handler.NewFileHandler(blobs),
		},
		Logger: log,
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if trigger != nil {
		if err := trigger.Stop(shutdownCtx); err != nil {
			log.Error("Monthly trigger shutdown failed", zap.Error(err))
		}
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler shutdown failed", zap.Error(err))
		}
	}

	stopListener()
	if err := listener.Close(); err != nil {
		log.Error("Realtime listener shutdown failed", zap.Error(err))
	}

	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus shutdown failed", zap.Error(err))
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error("Task queue shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
