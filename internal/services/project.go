package services

import (
	"context"
	"fmt"

	"github.com/yungbote/infobase-backend/internal/data/repos"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
	"github.com/yungbote/infobase-backend/internal/platform/filestore"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
	"github.com/yungbote/infobase-backend/internal/realtime"
	"github.com/yungbote/infobase-backend/internal/realtime/bus"
)

type ProjectInput struct {
	OwnerUserID uint
	ModelID     *uint
	ProjectName string
	Category    string
	Description string
}

type ProjectService interface {
	Create(ctx context.Context, in ProjectInput) (*knowledge.Project, error)
	Get(ctx context.Context, projectID uint) (*knowledge.Project, error)
	ListByOwner(ctx context.Context, ownerUserID uint) ([]*knowledge.Project, error)
	Update(ctx context.Context, projectID uint, u knowledge.ProjectUpdate) (*knowledge.Project, error)
	// Delete removes the project with its uploads and chunks, then their stored files.
	Delete(ctx context.Context, projectID uint) (domainagg.CascadeResult, error)
}

type projectService struct {
	log      *logger.Logger
	projects repos.ProjectRepo
	agg      domainagg.ProjectAggregate
	files    filestore.FileStore
	events   bus.Bus
}

func NewProjectService(
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	agg domainagg.ProjectAggregate,
	files filestore.FileStore,
	events bus.Bus,
) ProjectService {
	return &projectService{
		log:      baseLog.With("service", "ProjectService"),
		projects: projects,
		agg:      agg,
		files:    files,
		events:   events,
	}
}

func (s *projectService) Create(ctx context.Context, in ProjectInput) (*knowledge.Project, error) {
	return s.agg.Create(ctx, &knowledge.Project{
		OwnerUserID: in.OwnerUserID,
		ModelID:     in.ModelID,
		ProjectName: in.ProjectName,
		Category:    in.Category,
		Description: in.Description,
	})
}

func (s *projectService) Get(ctx context.Context, projectID uint) (*knowledge.Project, error) {
	const op = "Knowledge.Project.Get"
	p, err := s.projects.GetByID(readCtx(ctx), projectID)
	if err != nil {
		return nil, mapRead(op, err)
	}
	if p == nil {
		return nil, notFound(op, fmt.Sprintf("project %d does not exist", projectID))
	}
	return p, nil
}

func (s *projectService) ListByOwner(ctx context.Context, ownerUserID uint) ([]*knowledge.Project, error) {
	out, err := s.projects.ListByOwner(readCtx(ctx), ownerUserID)
	if err != nil {
		return nil, mapRead("Knowledge.Project.ListByOwner", err)
	}
	return out, nil
}

func (s *projectService) Update(ctx context.Context, projectID uint, u knowledge.ProjectUpdate) (*knowledge.Project, error) {
	return s.agg.Update(ctx, projectID, u)
}

func (s *projectService) Delete(ctx context.Context, projectID uint) (domainagg.CascadeResult, error) {
	res, err := s.agg.Delete(ctx, projectID)
	if err != nil {
		return res, err
	}
	removeStored(ctx, s.log, s.files, res)
	s.log.Info("Project deleted", "project_id", projectID, "infobases", res.InfoBases, "chunks", res.Chunks)
	publish(ctx, s.log, s.events, realtime.NewEvent(realtime.EventProjectDeleted, projectID, map[string]any{
		"project_id": projectID,
		"infobases":  res.InfoBases,
		"chunks":     res.Chunks,
	}))
	return res, nil
}
