package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/infobase-backend/internal/data/repos"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
	"github.com/yungbote/infobase-backend/internal/observability"
	"github.com/yungbote/infobase-backend/internal/platform/filestore"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
	"github.com/yungbote/infobase-backend/internal/realtime"
	"github.com/yungbote/infobase-backend/internal/realtime/bus"
)

var (
	ErrUploadTooLarge = errors.New("upload exceeds size limit")
	// ErrArtifactFolder rejects output folders outside the infobase's own
	// namespace. Deleting the infobase removes that folder recursively.
	ErrArtifactFolder = errors.New("output folder outside infobase namespace")
)

type UploadInput struct {
	ProjectID    uint
	UserEmail    string
	OriginalName string
	Reader       io.Reader
}

type InfoBaseService interface {
	// RecordUpload stores the file and inserts its row. The stored file is
	// removed again when the insert fails.
	RecordUpload(ctx context.Context, in UploadInput) (*knowledge.ProjectInfoBase, error)
	RecordArtifacts(ctx context.Context, infoBaseID uint, a knowledge.Artifacts) (*knowledge.ProjectInfoBase, error)
	Get(ctx context.Context, infoBaseID uint) (*knowledge.ProjectInfoBase, error)
	ListByProject(ctx context.Context, projectID uint) ([]*knowledge.ProjectInfoBase, error)
	Delete(ctx context.Context, infoBaseID uint) (domainagg.CascadeResult, error)
}

type InfoBaseServiceConfig struct {
	// MaxUploadBytes caps a single upload; 0 means unlimited.
	MaxUploadBytes int64
}

type infoBaseService struct {
	log       *logger.Logger
	cfg       InfoBaseServiceConfig
	infoBases repos.InfoBaseRepo
	agg       domainagg.InfoBaseAggregate
	files     filestore.FileStore
	events    bus.Bus
	metrics   *observability.Metrics
}

func NewInfoBaseService(
	baseLog *logger.Logger,
	cfg InfoBaseServiceConfig,
	infoBases repos.InfoBaseRepo,
	agg domainagg.InfoBaseAggregate,
	files filestore.FileStore,
	events bus.Bus,
	metrics *observability.Metrics,
) InfoBaseService {
	return &infoBaseService{
		log:       baseLog.With("service", "InfoBaseService"),
		cfg:       cfg,
		infoBases: infoBases,
		agg:       agg,
		files:     files,
		events:    events,
		metrics:   metrics,
	}
}

// UploadKey is where an upload is stored: projects/<project>/<uuid>_<name>.
func UploadKey(projectID uint, originalName string) string {
	return fmt.Sprintf("projects/%d/%s_%s", projectID, uuid.NewString(), filestore.SanitizeName(originalName))
}

// ArtifactFolder is the namespace an infobase's derived files live under:
// projects/<project>/<infobase>. Upload keys never collide with it because
// they carry a uuid prefix.
func ArtifactFolder(projectID, infoBaseID uint) string {
	return fmt.Sprintf("projects/%d/%d", projectID, infoBaseID)
}

func confineArtifactFolder(projectID, infoBaseID uint, folder string) (string, error) {
	key, err := filestore.CleanKey(folder)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArtifactFolder, err)
	}
	root := ArtifactFolder(projectID, infoBaseID)
	if key != root && !strings.HasPrefix(key, root+"/") {
		return "", fmt.Errorf("%w: %q is not under %q", ErrArtifactFolder, folder, root)
	}
	return key, nil
}

func (s *infoBaseService) RecordUpload(ctx context.Context, in UploadInput) (*knowledge.ProjectInfoBase, error) {
	const op = "Knowledge.InfoBase.RecordUpload"
	switch {
	case in.ProjectID == 0:
		return nil, validation(op, "missing project_id")
	case strings.TrimSpace(in.UserEmail) == "":
		return nil, validation(op, "missing user_email")
	case in.Reader == nil:
		return nil, validation(op, "missing file")
	}

	key := UploadKey(in.ProjectID, in.OriginalName)
	r := in.Reader
	if s.cfg.MaxUploadBytes > 0 {
		r = io.LimitReader(r, s.cfg.MaxUploadBytes+1)
	}
	size, err := s.files.Save(ctx, key, r)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "store upload", err)
	}
	if s.cfg.MaxUploadBytes > 0 && size > s.cfg.MaxUploadBytes {
		s.discard(ctx, key)
		return nil, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("upload larger than %d bytes", s.cfg.MaxUploadBytes), ErrUploadTooLarge)
	}

	ib, err := s.agg.Create(ctx, &knowledge.ProjectInfoBase{
		ProjectID: in.ProjectID,
		UserEmail: in.UserEmail,
		OrigName:  in.OriginalName,
		FilePath:  key,
		Size:      size,
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	s.metrics.AddStoredBytes(s.files.Backend(), size)

	publish(ctx, s.log, s.events, realtime.NewEvent(realtime.EventInfoBaseUploaded, ib.ProjectID, map[string]any{
		"infobase_id": ib.ID,
		"orig_name":   ib.OrigName,
		"file_path":   ib.FilePath,
		"url":         s.files.PublicURL(ib.FilePath),
		"size":        ib.Size,
	}))
	return ib, nil
}

func (s *infoBaseService) discard(ctx context.Context, key string) {
	// The request context may already be done; cleanup still has to run.
	if err := s.files.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn("Remove rejected upload failed", "key", key, "error", err)
	}
}

func (s *infoBaseService) RecordArtifacts(ctx context.Context, infoBaseID uint, a knowledge.Artifacts) (*knowledge.ProjectInfoBase, error) {
	const op = "Knowledge.InfoBase.RecordArtifacts"
	if strings.TrimSpace(a.OutputFolder) != "" {
		cur, err := s.Get(ctx, infoBaseID)
		if err != nil {
			return nil, err
		}
		folder, err := confineArtifactFolder(cur.ProjectID, infoBaseID, a.OutputFolder)
		if err != nil {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
		}
		a.OutputFolder = folder
	} else {
		a.OutputFolder = ""
	}
	ib, err := s.agg.RecordArtifacts(ctx, infoBaseID, a)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.log, s.events, realtime.NewEvent(realtime.EventInfoBaseArtifactsRecorded, ib.ProjectID, map[string]any{
		"infobase_id":   ib.ID,
		"output_folder": ib.OutputFolder,
		"md_path":       ib.MDPath,
		"html_path":     ib.HTMLPath,
	}))
	return ib, nil
}

func (s *infoBaseService) Get(ctx context.Context, infoBaseID uint) (*knowledge.ProjectInfoBase, error) {
	const op = "Knowledge.InfoBase.Get"
	ib, err := s.infoBases.GetByID(readCtx(ctx), infoBaseID)
	if err != nil {
		return nil, mapRead(op, err)
	}
	if ib == nil {
		return nil, notFound(op, fmt.Sprintf("infobase %d does not exist", infoBaseID))
	}
	return ib, nil
}

func (s *infoBaseService) ListByProject(ctx context.Context, projectID uint) ([]*knowledge.ProjectInfoBase, error) {
	out, err := s.infoBases.ListByProject(readCtx(ctx), projectID)
	if err != nil {
		return nil, mapRead("Knowledge.InfoBase.ListByProject", err)
	}
	return out, nil
}

func (s *infoBaseService) Delete(ctx context.Context, infoBaseID uint) (domainagg.CascadeResult, error) {
	const op = "Knowledge.InfoBase.Delete"
	ib, err := s.infoBases.GetByID(readCtx(ctx), infoBaseID)
	if err != nil {
		return domainagg.CascadeResult{}, mapRead(op, err)
	}
	res, err := s.agg.Delete(ctx, infoBaseID)
	if err != nil {
		return res, err
	}
	removeStored(ctx, s.log, s.files, res)
	if ib != nil {
		publish(ctx, s.log, s.events, realtime.NewEvent(realtime.EventInfoBaseDeleted, ib.ProjectID, map[string]any{
			"infobase_id": infoBaseID,
			"chunks":      res.Chunks,
		}))
	}
	return res, nil
}
