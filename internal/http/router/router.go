package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jamiljuma2/assignhub-backend/internal/config"
	"github.com/jamiljuma2/assignhub-backend/internal/http/handlers"
	"github.com/jamiljuma2/assignhub-backend/internal/http/middleware"
	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	assignmentHandler *handlers.AssignmentHandler,
	taskHandler *handlers.TaskHandler,
	submissionHandler *handlers.SubmissionHandler,
	paymentHandler *handlers.PaymentHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	ratingHandler *handlers.RatingHandler,
	notificationHandler *handlers.NotificationHandler,
	fileHandler *handlers.FileHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/uploads", http.Dir(cfg.FileStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/sessions", authHandler.ListSessions)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/subscriptions/plans", subscriptionHandler.Plans)
	api.GET("/writers/:id/ratings", middleware.UUIDValidator("id"), ratingHandler.ListWriterRatings)
	api.GET("/writers/:id/stats", middleware.UUIDValidator("id"), ratingHandler.WriterStats)

	// Колбэк платёжного шлюза: авторизация пользователя не требуется.
	api.POST("/payments/mpesa/callback", paymentHandler.Callback)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/users/me", userHandler.Me)
		protected.POST("/files", fileHandler.Upload)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), notificationHandler.Delete)

		protected.GET("/payments/wallet", paymentHandler.GetWallet)
		protected.GET("/payments/history", paymentHandler.History)
		protected.POST("/payments/topup", paymentHandler.TopUp)
	}

	// Маршруты студентов
	students := api.Group("/")
	students.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleStudent, models.RoleAdmin))
	{
		students.POST("/assignments", assignmentHandler.Create)
		students.GET("/assignments/my", assignmentHandler.ListMy)
		students.POST("/tasks/:id/rating", middleware.UUIDValidator("id"), ratingHandler.Rate)
	}

	// Маршруты авторов
	writers := api.Group("/")
	writers.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleWriter))
	{
		writers.GET("/tasks/available", taskHandler.ListAvailable)
		writers.GET("/tasks/my", taskHandler.ListMy)
		writers.GET("/tasks/quota", taskHandler.Quota)
		writers.POST("/tasks/:id/claim", middleware.UUIDValidator("id"), taskHandler.Claim)
		writers.POST("/submissions", submissionHandler.Create)
		writers.GET("/submissions/my", submissionHandler.ListMy)
		writers.POST("/subscriptions", subscriptionHandler.Subscribe)
	}

	// Общие защищённые ресурсы с проверкой прав в сервисах
	resources := api.Group("/")
	resources.Use(middleware.AuthMiddleware(tokenManager))
	{
		resources.GET("/assignments/:id", middleware.UUIDValidator("id"), assignmentHandler.Get)
		resources.GET("/tasks/:id", middleware.UUIDValidator("id"), taskHandler.Get)
		resources.GET("/submissions/:id", middleware.UUIDValidator("id"), submissionHandler.Get)
	}

	// Администрирование
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/assignments/pending", assignmentHandler.ListPending)
		admin.POST("/assignments/:id/approve", middleware.UUIDValidator("id"), assignmentHandler.Approve)
		admin.POST("/assignments/:id/reject", middleware.UUIDValidator("id"), assignmentHandler.Reject)
		admin.POST("/submissions/:id/approve", middleware.UUIDValidator("id"), submissionHandler.Approve)
		admin.POST("/submissions/:id/reject", middleware.UUIDValidator("id"), submissionHandler.Reject)
		admin.GET("/users", userHandler.List)
		admin.GET("/stats", userHandler.Stats)
	}

	return r
}
