package app

import (
	"gorm.io/gorm"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
)

type Repos struct {
	User          repos.UserRepo
	UserToken     repos.UserTokenRepo
	Submission    repos.SubmissionRepo
	QuestionAward repos.QuestionAwardRepo
	ClassConfig   repos.ClassConfigRepo
	Whitelist     repos.WhitelistRepo
	Message       repos.MessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		UserToken:     repos.NewUserTokenRepo(db, log),
		Submission:    repos.NewSubmissionRepo(db, log),
		QuestionAward: repos.NewQuestionAwardRepo(db, log),
		ClassConfig:   repos.NewClassConfigRepo(db, log),
		Whitelist:     repos.NewWhitelistRepo(db, log),
		Message:       repos.NewMessageRepo(db, log),
	}
}
