package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/infobase-backend/internal/data/repos"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
)

type ProjectAggregateDeps struct {
	Base BaseDeps

	Projects  repos.ProjectRepo
	InfoBases repos.InfoBaseRepo
	Chunks    repos.InfoListRepo
}

type projectAggregate struct {
	deps ProjectAggregateDeps
}

func NewProjectAggregate(deps ProjectAggregateDeps) domainagg.ProjectAggregate {
	deps.Base = deps.Base.withDefaults()
	return &projectAggregate{deps: deps}
}

func (a *projectAggregate) Contract() domainagg.Contract {
	return domainagg.ProjectAggregateContract
}

func (a *projectAggregate) Create(ctx context.Context, p *knowledge.Project) (*knowledge.Project, error) {
	const op = "Knowledge.Project.Create"
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing project", nil)
	}
	p.ProjectName = strings.TrimSpace(p.ProjectName)
	if err := p.Validate(); err != nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	if a.deps.Projects == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "project aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if err := a.deps.Base.Guard.RefUser(dbc, p.OwnerUserID); err != nil {
			return err
		}
		if p.ModelID != nil {
			if err := a.deps.Base.Guard.RefAIModel(dbc, *p.ModelID); err != nil {
				return err
			}
		}
		return a.deps.Projects.Create(dbc, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (a *projectAggregate) Update(ctx context.Context, projectID uint, u knowledge.ProjectUpdate) (*knowledge.Project, error) {
	const op = "Knowledge.Project.Update"
	if projectID == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing project_id", nil)
	}
	if a.deps.Projects == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "project aggregate repos not configured", nil)
	}

	var out *knowledge.Project
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		p, err := a.deps.Projects.GetByID(dbc, projectID)
		if err != nil {
			return err
		}
		if p == nil {
			return NotFoundError(fmt.Sprintf("project %d does not exist", projectID))
		}
		if u.Empty() {
			out = p
			return nil
		}
		cols := u.Apply(p)
		if err := p.Validate(); err != nil {
			return domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
		}
		if p.ModelID != nil && u.ModelID != nil {
			if err := a.deps.Base.Guard.RefAIModel(dbc, *p.ModelID); err != nil {
				return err
			}
		}
		if err := a.deps.Projects.UpdateFields(dbc, projectID, cols); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *projectAggregate) Delete(ctx context.Context, projectID uint) (domainagg.CascadeResult, error) {
	const op = "Knowledge.Project.Delete"
	var out domainagg.CascadeResult
	if projectID == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing project_id", nil)
	}
	if a.deps.Projects == nil || a.deps.InfoBases == nil || a.deps.Chunks == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "project aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.CascadeResult{}
		if err := a.deps.Base.Guard.RequireProject(dbc, projectID); err != nil {
			return err
		}
		rows, err := a.deps.InfoBases.ListByProject(dbc, projectID)
		if err != nil {
			return err
		}
		if err := deleteInfoBases(dbc, a.deps.InfoBases, a.deps.Chunks, rows, &out); err != nil {
			return err
		}
		n, err := a.deps.Projects.Delete(dbc, projectID)
		if err != nil {
			return err
		}
		out.Projects = n
		return nil
	})
	if err != nil {
		return domainagg.CascadeResult{}, err
	}
	return out, nil
}
