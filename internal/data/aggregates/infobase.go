package aggregates

import (
	"context"
	"strings"

	"github.com/yungbote/infobase-backend/internal/data/repos"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
)

type InfoBaseAggregateDeps struct {
	Base BaseDeps

	InfoBases repos.InfoBaseRepo
	Chunks    repos.InfoListRepo
}

type infoBaseAggregate struct {
	deps InfoBaseAggregateDeps
}

func NewInfoBaseAggregate(deps InfoBaseAggregateDeps) domainagg.InfoBaseAggregate {
	deps.Base = deps.Base.withDefaults()
	return &infoBaseAggregate{deps: deps}
}

func (a *infoBaseAggregate) Contract() domainagg.Contract {
	return domainagg.InfoBaseAggregateContract
}

func (a *infoBaseAggregate) Create(ctx context.Context, ib *knowledge.ProjectInfoBase) (*knowledge.ProjectInfoBase, error) {
	const op = "Knowledge.InfoBase.Create"
	if ib == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing infobase", nil)
	}
	ib.UserEmail = strings.TrimSpace(ib.UserEmail)
	if err := ib.Validate(); err != nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	if a.deps.InfoBases == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "infobase aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if err := a.deps.Base.Guard.RefProject(dbc, ib.ProjectID); err != nil {
			return err
		}
		if err := a.deps.Base.Guard.RefUserEmail(dbc, ib.UserEmail); err != nil {
			return err
		}
		return a.deps.InfoBases.Create(dbc, ib)
	})
	if err != nil {
		return nil, err
	}
	return ib, nil
}

func (a *infoBaseAggregate) RecordArtifacts(ctx context.Context, infoBaseID uint, art knowledge.Artifacts) (*knowledge.ProjectInfoBase, error) {
	const op = "Knowledge.InfoBase.RecordArtifacts"
	if infoBaseID == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing infobase_id", nil)
	}
	if a.deps.InfoBases == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "infobase aggregate repos not configured", nil)
	}

	var out *knowledge.ProjectInfoBase
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := a.deps.InfoBases.UpdateArtifacts(dbc, infoBaseID, art)
		if err != nil {
			return err
		}
		if n == 0 {
			return NotFoundError("infobase does not exist")
		}
		out, err = a.deps.InfoBases.GetByID(dbc, infoBaseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *infoBaseAggregate) Delete(ctx context.Context, infoBaseID uint) (domainagg.CascadeResult, error) {
	const op = "Knowledge.InfoBase.Delete"
	var out domainagg.CascadeResult
	if infoBaseID == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing infobase_id", nil)
	}
	if a.deps.InfoBases == nil || a.deps.Chunks == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "infobase aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.CascadeResult{}
		row, err := a.deps.InfoBases.GetByID(dbc, infoBaseID)
		if err != nil {
			return err
		}
		if row == nil {
			return NotFoundError("infobase does not exist")
		}
		return deleteInfoBases(dbc, a.deps.InfoBases, a.deps.Chunks, []*knowledge.ProjectInfoBase{row}, &out)
	})
	if err != nil {
		return domainagg.CascadeResult{}, err
	}
	return out, nil
}
