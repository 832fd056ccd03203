package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/infobase-backend/internal/domain"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

// ErrMetadataFilter rejects match values the current dialect cannot compare.
var ErrMetadataFilter = errors.New("unsupported metadata filter")

// chunk text can be large; keep insert statements small
const chunkBatchSize = 100

type InfoListRepo interface {
	Create(dbc dbctx.Context, chunks []*types.InfoList) ([]*types.InfoList, error)
	GetByID(dbc dbctx.Context, id uint) (*types.InfoList, error)
	ListByInfoBase(dbc dbctx.Context, infoBaseID uint) ([]*types.InfoList, error)
	FindByMetadata(dbc dbctx.Context, infoBaseID uint, match map[string]interface{}) ([]*types.InfoList, error)
	UpdateEmbedding(dbc dbctx.Context, id uint, vec *pgvector.Vector) (int64, error)
	CountByInfoBaseIDs(dbc dbctx.Context, infoBaseIDs []uint) (int64, error)
	DeleteByInfoBaseIDs(dbc dbctx.Context, infoBaseIDs []uint) (int64, error)
}

type infoListRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInfoListRepo(db *gorm.DB, baseLog *logger.Logger) InfoListRepo {
	return &infoListRepo{db: db, log: baseLog.With("repo", "InfoListRepo")}
}

func (r *infoListRepo) Create(dbc dbctx.Context, chunks []*types.InfoList) ([]*types.InfoList, error) {
	if len(chunks) == 0 {
		return []*types.InfoList{}, nil
	}
	if err := dbc.Conn(r.db).CreateInBatches(chunks, chunkBatchSize).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *infoListRepo) GetByID(dbc dbctx.Context, id uint) (*types.InfoList, error) {
	if id == 0 {
		return nil, nil
	}
	var row types.InfoList
	if err := dbc.Conn(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListByInfoBase returns chunks in insertion order.
func (r *infoListRepo) ListByInfoBase(dbc dbctx.Context, infoBaseID uint) ([]*types.InfoList, error) {
	var out []*types.InfoList
	err := dbc.Conn(r.db).
		Where("infobase_id = ?", infoBaseID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// FindByMetadata returns the chunks of an upload whose metadata contains every
// key/value pair in match. Postgres uses JSONB containment so the GIN index applies.
//
// Other dialects compare JSON paths: nested objects match leaf by leaf, an
// empty nested object only requires the key. Array values have no path
// equivalent there and fail with ErrMetadataFilter.
func (r *infoListRepo) FindByMetadata(dbc dbctx.Context, infoBaseID uint, match map[string]interface{}) ([]*types.InfoList, error) {
	q := dbc.Conn(r.db).Where("infobase_id = ?", infoBaseID)
	if len(match) > 0 {
		if q.Dialector.Name() == "postgres" {
			q = q.Where("metadata @> ?", types.Metadata(match))
		} else {
			var err error
			if q, err = wherePaths(q, nil, match); err != nil {
				return nil, err
			}
		}
	}
	var out []*types.InfoList
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

// UpdateEmbedding sets or clears (vec == nil) the stored vector.
func (r *infoListRepo) UpdateEmbedding(dbc dbctx.Context, id uint, vec *pgvector.Vector) (int64, error) {
	res := dbc.Conn(r.db).
		Model(&types.InfoList{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"vector_memory": vec,
			"updated_at":    time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *infoListRepo) CountByInfoBaseIDs(dbc dbctx.Context, infoBaseIDs []uint) (int64, error) {
	if len(infoBaseIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := dbc.Conn(r.db).Model(&types.InfoList{}).Where("infobase_id IN ?", infoBaseIDs).Count(&n).Error
	return n, err
}

func (r *infoListRepo) DeleteByInfoBaseIDs(dbc dbctx.Context, infoBaseIDs []uint) (int64, error) {
	if len(infoBaseIDs) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).Where("infobase_id IN ?", infoBaseIDs).Delete(&types.InfoList{})
	return res.RowsAffected, res.Error
}

func wherePaths(q *gorm.DB, prefix []string, match map[string]interface{}) (*gorm.DB, error) {
	for k, v := range match {
		path := append(append([]string(nil), prefix...), k)
		if m, ok := v.(types.Metadata); ok {
			v = map[string]interface{}(m)
		}
		switch vv := v.(type) {
		case map[string]interface{}:
			if len(vv) == 0 {
				q = q.Where(datatypes.JSONQuery("metadata").HasKey(path...))
				continue
			}
			var err error
			if q, err = wherePaths(q, path, vv); err != nil {
				return nil, err
			}
		case []interface{}, []string:
			return nil, fmt.Errorf("%w: array value at %q", ErrMetadataFilter, strings.Join(path, "."))
		default:
			q = q.Where(datatypes.JSONQuery("metadata").Equals(sqliteJSONValue(v), path...))
		}
	}
	return q, nil
}

// sqliteJSONValue converts json.Number to the integer or real JSON_EXTRACT yields.
func sqliteJSONValue(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
