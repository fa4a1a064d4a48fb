package app

import (
	"github.com/gin-gonic/gin"

	"github.com/fluxclass/fluxclass-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:        cfg.ServiceName,
		AllowedOrigins:     cfg.AllowedOrigins,
		AuthMiddleware:     middlewareset.Auth,
		AuthHandler:        handlerset.Auth,
		UserHandler:        handlerset.User,
		EngagementHandler:  handlerset.Engagement,
		UnreadHandler:      handlerset.Unread,
		SubmissionHandler:  handlerset.Submission,
		ClassConfigHandler: handlerset.ClassConfig,
		StreamHandler:      handlerset.Stream,
	})
}
