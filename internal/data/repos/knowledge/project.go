package knowledge

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/infobase-backend/internal/domain"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

type ProjectRepo interface {
	Create(dbc dbctx.Context, p *types.Project) error
	GetByID(dbc dbctx.Context, projectID uint) (*types.Project, error)
	ListByOwner(dbc dbctx.Context, ownerUserID uint) ([]*types.Project, error)
	IDsByOwner(dbc dbctx.Context, ownerUserID uint) ([]uint, error)
	UpdateFields(dbc dbctx.Context, projectID uint, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, projectID uint) (int64, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(dbc dbctx.Context, p *types.Project) error {
	if p == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(p).Error
}

// GetByID returns nil, nil when the project does not exist.
func (r *projectRepo) GetByID(dbc dbctx.Context, projectID uint) (*types.Project, error) {
	if projectID == 0 {
		return nil, nil
	}
	var row types.Project
	err := dbc.Conn(r.db).Where("project_id = ?", projectID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *projectRepo) ListByOwner(dbc dbctx.Context, ownerUserID uint) ([]*types.Project, error) {
	var out []*types.Project
	if ownerUserID == 0 {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Where("owner_user_id = ?", ownerUserID).
		Order("project_id ASC").
		Find(&out).Error
	return out, err
}

func (r *projectRepo) IDsByOwner(dbc dbctx.Context, ownerUserID uint) ([]uint, error) {
	var ids []uint
	err := dbc.Conn(r.db).
		Model(&types.Project{}).
		Where("owner_user_id = ?", ownerUserID).
		Order("project_id ASC").
		Pluck("project_id", &ids).Error
	return ids, err
}

func (r *projectRepo) UpdateFields(dbc dbctx.Context, projectID uint, updates map[string]interface{}) error {
	if projectID == 0 || len(updates) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.Project{}).
		Where("project_id = ?", projectID).
		Updates(updates).Error
}

func (r *projectRepo) Delete(dbc dbctx.Context, projectID uint) (int64, error) {
	res := dbc.Conn(r.db).Where("project_id = ?", projectID).Delete(&types.Project{})
	return res.RowsAffected, res.Error
}
