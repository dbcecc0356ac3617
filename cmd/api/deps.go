package main

import (
	"context"
	"log"

	"fintrack/internal/domain/account"
	"fintrack/internal/domain/credential"
	"fintrack/internal/domain/notification"
	"fintrack/internal/domain/sync"
	"fintrack/internal/infrastructure/firebase"
	"fintrack/internal/infrastructure/postgres"
	"fintrack/internal/infrastructure/provider"
	httphandlers "fintrack/internal/interfaces/http"
	"fintrack/internal/interfaces/scheduler"
	"fintrack/internal/shared/auth"
	"fintrack/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AccountHandler      *httphandlers.AccountHandler
	TransactionHandler  *httphandlers.TransactionHandler
	SyncHandler         *httphandlers.SyncHandler
	WebhookHandler      *httphandlers.WebhookHandler
	NotificationHandler *httphandlers.NotificationHandler

	// Auth
	JWT *auth.JWT

	// Background sync machinery
	Orchestrator *sync.Orchestrator
	Pool         *scheduler.WorkerPool

	// For the scheduler's job provider
	CredentialRepo credential.Repository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Connect to database and apply pending migrations
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := db.Migrate("file://migrations"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	credentialRepo := postgres.NewCredentialRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	deviceRepo := postgres.NewDeviceRepository(db)

	// Initialize domain services
	accountService := account.NewService(accountRepo, credentialRepo)

	// Push messaging is optional: without Firebase credentials the
	// notification service logs and drops.
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcmClient, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, deviceRepo.DeactivateToken)
		if err != nil {
			log.Printf("Warning: Failed to initialize Firebase messaging: %v", err)
		} else {
			messenger = fcmClient
		}
	}
	notificationService := notification.NewService(deviceRepo, messenger)

	// Provider client and sync pipeline
	providerClient := provider.NewHTTPClient(
		cfg.Provider.BaseURL,
		cfg.Provider.ClientID,
		cfg.Provider.Secret,
		cfg.Provider.FetchTimeout,
	)
	reconciler := sync.NewReconciler(transactionRepo)
	orchestrator := sync.NewOrchestrator(providerClient, credentialRepo, accountService, reconciler, cfg.Provider.SyncWindowDays)

	// Worker pool feeds both webhook-triggered and scheduled syncs
	pool := scheduler.NewWorkerPool(cfg.Scheduler.WorkerCount, cfg.Scheduler.JobDelay, cfg.Scheduler.QueueSize)
	dispatcher := scheduler.NewDispatcher(pool, orchestrator)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize handlers
	accountHandler := httphandlers.NewAccountHandler(accountService)
	transactionHandler := httphandlers.NewTransactionHandler(transactionRepo, accountRepo)
	syncHandler := httphandlers.NewSyncHandler(orchestrator)
	webhookHandler := httphandlers.NewWebhookHandler(cfg.Webhook.Secret, credentialRepo, notificationService, dispatcher)
	notificationHandler := httphandlers.NewNotificationHandler(notificationService)

	return &Dependencies{
		DB:                  db,
		AccountHandler:      accountHandler,
		TransactionHandler:  transactionHandler,
		SyncHandler:         syncHandler,
		WebhookHandler:      webhookHandler,
		NotificationHandler: notificationHandler,
		JWT:                 jwt,
		Orchestrator:        orchestrator,
		Pool:                pool,
		CredentialRepo:      credentialRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
