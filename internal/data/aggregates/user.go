package aggregates

import (
	"context"

	"github.com/yungbote/infobase-backend/internal/data/repos"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
)

type UserAggregateDeps struct {
	Base BaseDeps

	Users     repos.UserRepo
	InfoBases repos.InfoBaseRepo
	Chunks    repos.InfoListRepo
}

type userAggregate struct {
	deps UserAggregateDeps
}

func NewUserAggregate(deps UserAggregateDeps) domainagg.UserAggregate {
	deps.Base = deps.Base.withDefaults()
	return &userAggregate{deps: deps}
}

func (a *userAggregate) Contract() domainagg.Contract {
	return domainagg.UserAggregateContract
}

func (a *userAggregate) Delete(ctx context.Context, userID uint) (domainagg.CascadeResult, error) {
	const op = "Knowledge.User.Delete"
	var out domainagg.CascadeResult
	if userID == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if a.deps.Users == nil || a.deps.InfoBases == nil || a.deps.Chunks == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "user aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.CascadeResult{}
		u, err := a.deps.Users.GetByID(dbc, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return NotFoundError("user does not exist")
		}
		owns, err := a.deps.Base.Guard.OwnsProjects(dbc, userID)
		if err != nil {
			return err
		}
		if owns {
			return PreconditionError("user still owns projects")
		}
		rows, err := a.deps.InfoBases.ListByEmail(dbc, u.Email)
		if err != nil {
			return err
		}
		if err := deleteInfoBases(dbc, a.deps.InfoBases, a.deps.Chunks, rows, &out); err != nil {
			return err
		}
		n, err := a.deps.Users.Delete(dbc, userID)
		if err != nil {
			return err
		}
		out.Users = n
		return nil
	})
	if err != nil {
		return domainagg.CascadeResult{}, err
	}
	return out, nil
}
