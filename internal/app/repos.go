package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/infobase-backend/internal/data/repos"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

type Repos struct {
	Users     repos.UserRepo
	AIModels  repos.AIModelRepo
	Projects  repos.ProjectRepo
	InfoBases repos.InfoBaseRepo
	Chunks    repos.InfoListRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Users:     repos.NewUserRepo(db, log),
		AIModels:  repos.NewAIModelRepo(db, log),
		Projects:  repos.NewProjectRepo(db, log),
		InfoBases: repos.NewInfoBaseRepo(db, log),
		Chunks:    repos.NewInfoListRepo(db, log),
	}
}
