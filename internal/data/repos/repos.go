package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/infobase-backend/internal/data/repos/knowledge"
	"github.com/yungbote/infobase-backend/internal/data/repos/user"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type AIModelRepo = user.AIModelRepo

type ProjectRepo = knowledge.ProjectRepo
type InfoBaseRepo = knowledge.InfoBaseRepo
type InfoListRepo = knowledge.InfoListRepo

var ErrMetadataFilter = knowledge.ErrMetadataFilter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewAIModelRepo(db *gorm.DB, baseLog *logger.Logger) AIModelRepo {
	return user.NewAIModelRepo(db, baseLog)
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return knowledge.NewProjectRepo(db, baseLog)
}
func NewInfoBaseRepo(db *gorm.DB, baseLog *logger.Logger) InfoBaseRepo {
	return knowledge.NewInfoBaseRepo(db, baseLog)
}
func NewInfoListRepo(db *gorm.DB, baseLog *logger.Logger) InfoListRepo {
	return knowledge.NewInfoListRepo(db, baseLog)
}
