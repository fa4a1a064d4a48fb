package app

import (
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/services"
)

type Services struct {
	Bootstrap       services.BootstrapService
	Auth            services.AuthService
	Engagement      services.EngagementService
	SessionTracker  *services.SessionTracker
	Unread          services.UnreadService
	SubmissionBoard services.SubmissionBoardService
	ClassConfig     services.ClassConfigService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	bootstrap := services.NewBootstrapService(db, log, reposet.User, reposet.Whitelist, cfg.AdminEmail)
	auth := services.NewAuthService(db, log, reposet.User, reposet.UserToken, bootstrap, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	engagement := services.NewEngagementService(db, log, reposet.Submission, reposet.QuestionAward, reposet.User, reposet.ClassConfig, clients.Bus)
	tracker := services.NewSessionTracker(log, engagement, nil)
	unread := services.NewUnreadService(db, log, reposet.Message, reposet.User, clients.SeenStore, clients.Bus)
	board := services.NewSubmissionBoardService(db, log, reposet.Submission)
	classConfig := services.NewClassConfigService(db, log, reposet.ClassConfig)

	return Services{
		Bootstrap:       bootstrap,
		Auth:            auth,
		Engagement:      engagement,
		SessionTracker:  tracker,
		Unread:          unread,
		SubmissionBoard: board,
		ClassConfig:     classConfig,
	}
}
