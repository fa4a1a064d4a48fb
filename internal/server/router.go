package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/fluxclass/fluxclass-backend/internal/handlers"
	"github.com/fluxclass/fluxclass-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName        string
	AllowedOrigins     []string
	AuthMiddleware     *middleware.AuthMiddleware
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	EngagementHandler  *handlers.EngagementHandler
	UnreadHandler      *handlers.UnreadHandler
	SubmissionHandler  *handlers.SubmissionHandler
	ClassConfigHandler *handlers.ClassConfigHandler
	StreamHandler      *handlers.StreamHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "fluxclass"
	}
	router.Use(otelgin.Middleware(serviceName))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)
	}

	// Protected
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/user", cfg.UserHandler.GetMe)

	engagement := protected.Group("/engagement")
	{
		engagement.POST("/events", cfg.EngagementHandler.RecordEvents)
		engagement.GET("/active", cfg.EngagementHandler.Active)
		engagement.POST("/complete", cfg.EngagementHandler.Complete)
		engagement.POST("/submit", cfg.EngagementHandler.Submit)
		engagement.POST("/review-time", cfg.EngagementHandler.ReviewTime)
		engagement.POST("/question-award", cfg.EngagementHandler.QuestionAward)
	}

	protected.GET("/stream", cfg.StreamHandler.Stream)

	protected.GET("/unread", cfg.UnreadHandler.ListUnread)
	protected.POST("/unread/:channelID/read", cfg.UnreadHandler.MarkRead)
	protected.POST("/messages", cfg.UnreadHandler.PostMessage)

	// Admin
	admin := protected.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())

	admin.GET("/submissions", cfg.SubmissionHandler.List)
	admin.POST("/submissions/:id/pin", cfg.SubmissionHandler.Pin)
	admin.POST("/submissions/:id/archive", cfg.SubmissionHandler.Archive)
	admin.POST("/submissions/:id/comment", cfg.SubmissionHandler.Comment)

	admin.GET("/classes", cfg.ClassConfigHandler.List)
	admin.GET("/classes/:classType/config", cfg.ClassConfigHandler.Get)
	admin.PUT("/classes/:classType/config", cfg.ClassConfigHandler.Put)

	return router
}
