package user

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/infobase-backend/internal/domain"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

type AIModelRepo interface {
	Create(dbc dbctx.Context, m *types.AIModel) error
	GetByID(dbc dbctx.Context, id uint) (*types.AIModel, error)
	Delete(dbc dbctx.Context, id uint) (int64, error)
}

type aiModelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAIModelRepo(db *gorm.DB, baseLog *logger.Logger) AIModelRepo {
	return &aiModelRepo{db: db, log: baseLog.With("repo", "AIModelRepo")}
}

func (r *aiModelRepo) Create(dbc dbctx.Context, m *types.AIModel) error {
	if m == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(m).Error
}

func (r *aiModelRepo) GetByID(dbc dbctx.Context, id uint) (*types.AIModel, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.AIModel
	if err := dbc.Conn(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Delete removes the model; projects bound to it keep existing with model_id NULL.
func (r *aiModelRepo) Delete(dbc dbctx.Context, id uint) (int64, error) {
	res := dbc.Conn(r.db).Where("id = ?", id).Delete(&types.AIModel{})
	return res.RowsAffected, res.Error
}
