package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jamiljuma2/assignhub-backend/internal/config"
	"github.com/jamiljuma2/assignhub-backend/internal/db"
	httpHandlers "github.com/jamiljuma2/assignhub-backend/internal/http/handlers"
	httpRouter "github.com/jamiljuma2/assignhub-backend/internal/http/router"
	"github.com/jamiljuma2/assignhub-backend/internal/logger"
	"github.com/jamiljuma2/assignhub-backend/internal/mpesa"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
	"github.com/jamiljuma2/assignhub-backend/internal/service"
	"github.com/jamiljuma2/assignhub-backend/internal/storage"
	"github.com/jamiljuma2/assignhub-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
	}
	logger.Init(logLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.FileStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	mpesaClient := mpesa.NewClient(cfg.MpesaBaseURL, cfg.MpesaAPIKey, cfg.MpesaAPISecret,
		cfg.MpesaShortCode, cfg.MpesaCallbackURL, logger.Log)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	assignmentRepo := repository.NewAssignmentRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn)
	submissionRepo := repository.NewSubmissionRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	ratingRepo := repository.NewRatingRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	fileRepo := repository.NewFileRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(logger.Log)
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	assignmentService := service.NewAssignmentService(assignmentRepo, fileRepo, notificationService)
	taskService := service.NewTaskService(taskRepo, userRepo, notificationService)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, fileRepo, notificationService)
	paymentService := service.NewPaymentService(paymentRepo, mpesaClient, notificationService, cfg.MinTopupAmount)
	subscriptionService := service.NewSubscriptionService(paymentRepo, userRepo, notificationService)
	ratingService := service.NewRatingService(ratingRepo, taskRepo, userRepo, notificationService)
	fileService := service.NewFileService(fileRepo, fileStorage)
	userService := service.NewUserService(userRepo, assignmentRepo, taskRepo)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	userHandler := httpHandlers.NewUserHandler(userService)
	assignmentHandler := httpHandlers.NewAssignmentHandler(assignmentService)
	taskHandler := httpHandlers.NewTaskHandler(taskService)
	submissionHandler := httpHandlers.NewSubmissionHandler(submissionService)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService)
	subscriptionHandler := httpHandlers.NewSubscriptionHandler(subscriptionService)
	ratingHandler := httpHandlers.NewRatingHandler(ratingService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	fileHandler := httpHandlers.NewFileHandler(fileService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager, logger.Log)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg,
		authHandler, userHandler, assignmentHandler, taskHandler, submissionHandler,
		paymentHandler, subscriptionHandler, ratingHandler, notificationHandler,
		fileHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
