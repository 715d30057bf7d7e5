package main

import (
	"context"
	"log"
	"strings"
	"time"

	api "jobtrail-backend/cmd/api"
	appdomain "jobtrail-backend/internal/application/domain"
	appRepo "jobtrail-backend/internal/application/repository"
	appScheduler "jobtrail-backend/internal/application/scheduler"
	appUsecase "jobtrail-backend/internal/application/usecase"
	authdomain "jobtrail-backend/internal/auth/domain"
	authRepo "jobtrail-backend/internal/auth/repository"
	authUsecase "jobtrail-backend/internal/auth/usecase"
	maildomain "jobtrail-backend/internal/mailsync/domain"
	mailRepo "jobtrail-backend/internal/mailsync/repository"
	mailUsecase "jobtrail-backend/internal/mailsync/usecase"
	"jobtrail-backend/internal/notification"
	"jobtrail-backend/pkg/cache"
	"jobtrail-backend/pkg/config"
	"jobtrail-backend/pkg/database"
	"jobtrail-backend/pkg/fcm"
	"jobtrail-backend/pkg/mailbox"
	"jobtrail-backend/pkg/sse"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.FCMToken{},
		&appdomain.JobApplication{}, &appdomain.Document{}, &appdomain.InterviewEvent{},
		&maildomain.MailboxIntegration{}, &maildomain.TrackedMessage{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(db)
	applicationRepo := appRepo.NewGormApplicationRepository(db)
	documentRepo := appRepo.NewGormDocumentRepository(db)
	interviewRepo := appRepo.NewGormInterviewEventRepository(db)
	integrationRepo := mailRepo.NewIntegrationRepository(db)
	messageRepo := mailRepo.NewTrackedMessageRepository(db)

	// Initialize SSE Manager
	sseManager := sse.NewManager()
	go sseManager.Run()

	// Initialize FCM Client (optional)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		}
	}

	// Mailbox connectors, one per provider
	registry := mailbox.NewRegistry(
		mailbox.NewGmailConnector(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI),
		mailbox.NewOutlookConnector(cfg.MicrosoftClientID, cfg.MicrosoftClientSecret, cfg.MicrosoftRedirectURI, cfg.MicrosoftTenantID),
		mailbox.NewIMAPConnector(),
	)

	// OAuth state nonce cache
	stateCache := cache.New(cfg.StateCacheTTL, cfg.StateCacheEnabled)

	// Gmail push topic (short name, optional)
	pubsubTopic := ""
	if cfg.GoogleProjectID != "" {
		pubsubTopic = cfg.GooglePubSubTopic
		if parts := strings.Split(pubsubTopic, "/"); len(parts) > 1 {
			pubsubTopic = parts[len(parts)-1]
		}
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)
	appUsecaseInstance := appUsecase.NewApplicationUsecase(applicationRepo, documentRepo, interviewRepo)
	syncUsecaseInstance := mailUsecase.NewSyncUsecase(
		integrationRepo, messageRepo, applicationRepo,
		registry, stateCache, cfg.SyncMaxResults, pubsubTopic,
	)
	syncUsecaseInstance.SetNotifier(notification.NewStatusNotifier(sseManager, fcmTokenRepo, fcmClient))

	// Gmail push notifications via Pub/Sub (optional)
	if cfg.GoogleProjectID != "" && pubsubTopic != "" {
		notifService, err := notification.NewService(cfg.GoogleProjectID, pubsubTopic, sseManager, integrationRepo, syncUsecaseInstance, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize notification service: %v", err)
		} else {
			go notifService.Start(context.Background())
		}
	}

	// Interview reminder scheduler
	reminderScheduler := appScheduler.NewInterviewReminderScheduler(interviewRepo, applicationRepo, fcmTokenRepo, fcmClient)
	reminderScheduler.Start()

	// Periodic mailbox sync
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for range ticker.C {
			syncUsecaseInstance.SyncAllUsers(context.Background())
		}
	}()

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, appUsecaseInstance, syncUsecaseInstance, fcmTokenRepo, sseManager, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
