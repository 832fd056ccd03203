package knowledge

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/infobase-backend/internal/domain"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

type InfoBaseRepo interface {
	Create(dbc dbctx.Context, ib *types.ProjectInfoBase) error
	GetByID(dbc dbctx.Context, id uint) (*types.ProjectInfoBase, error)
	ListByProject(dbc dbctx.Context, projectID uint) ([]*types.ProjectInfoBase, error)
	ListByProjectIDs(dbc dbctx.Context, projectIDs []uint) ([]*types.ProjectInfoBase, error)
	ListByEmail(dbc dbctx.Context, email string) ([]*types.ProjectInfoBase, error)
	UpdateArtifacts(dbc dbctx.Context, id uint, a types.Artifacts) (int64, error)
	DeleteByIDs(dbc dbctx.Context, ids []uint) (int64, error)
}

type infoBaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInfoBaseRepo(db *gorm.DB, baseLog *logger.Logger) InfoBaseRepo {
	return &infoBaseRepo{db: db, log: baseLog.With("repo", "InfoBaseRepo")}
}

func (r *infoBaseRepo) Create(dbc dbctx.Context, ib *types.ProjectInfoBase) error {
	if ib == nil {
		return nil
	}
	ib.Normalize()
	return dbc.Conn(r.db).Create(ib).Error
}

func (r *infoBaseRepo) GetByID(dbc dbctx.Context, id uint) (*types.ProjectInfoBase, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.ProjectInfoBase
	if err := dbc.Conn(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *infoBaseRepo) ListByProject(dbc dbctx.Context, projectID uint) ([]*types.ProjectInfoBase, error) {
	return r.ListByProjectIDs(dbc, []uint{projectID})
}

func (r *infoBaseRepo) ListByProjectIDs(dbc dbctx.Context, projectIDs []uint) ([]*types.ProjectInfoBase, error) {
	var out []*types.ProjectInfoBase
	if len(projectIDs) == 0 {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Where("project_id IN ?", projectIDs).
		Order("project_id ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *infoBaseRepo) ListByEmail(dbc dbctx.Context, email string) ([]*types.ProjectInfoBase, error) {
	var out []*types.ProjectInfoBase
	if email == "" {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Where("user_email = ?", email).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// UpdateArtifacts overwrites the derived artifact columns and reports rows touched.
func (r *infoBaseRepo) UpdateArtifacts(dbc dbctx.Context, id uint, a types.Artifacts) (int64, error) {
	updates := a.Updates()
	updates["updated_at"] = time.Now().UTC()
	res := dbc.Conn(r.db).
		Model(&types.ProjectInfoBase{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *infoBaseRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).Where("id IN ?", ids).Delete(&types.ProjectInfoBase{})
	return res.RowsAffected, res.Error
}
