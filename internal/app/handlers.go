package app

import (
	"github.com/fluxclass/fluxclass-backend/internal/handlers"
	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/realtime/sse"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Engagement  *handlers.EngagementHandler
	Unread      *handlers.UnreadHandler
	Submission  *handlers.SubmissionHandler
	ClassConfig *handlers.ClassConfigHandler
	Stream      *handlers.StreamHandler
}

func wireHandlers(log *logger.Logger, reposet Repos, serviceset Services, hub *sse.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:        handlers.NewAuthHandler(serviceset.Auth),
		User:        handlers.NewUserHandler(reposet.User),
		Engagement:  handlers.NewEngagementHandler(log, serviceset.Engagement, serviceset.SessionTracker),
		Unread:      handlers.NewUnreadHandler(serviceset.Unread),
		Submission:  handlers.NewSubmissionHandler(serviceset.SubmissionBoard),
		ClassConfig: handlers.NewClassConfigHandler(serviceset.ClassConfig),
		Stream:      handlers.NewStreamHandler(log, hub),
	}
}
