package aggregates

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/infobase-backend/internal/domain/knowledge"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
)

// Guard runs the existence checks aggregates make before writing, inside the
// caller's transaction. Ref* checks a foreign key the write is about to store
// and fails with ErrConstraint. Require* checks the row the write targets and
// fails with ErrNotFound.
type Guard struct{}

func (Guard) conn(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx == nil {
		return nil, ValidationError("missing db transaction context")
	}
	return dbc.Conn(nil), nil
}

func (g Guard) exists(dbc dbctx.Context, model interface{}, where string, arg interface{}) (bool, error) {
	db, err := g.conn(dbc)
	if err != nil {
		return false, err
	}
	var n int64
	if err := db.Model(model).Where(where, arg).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (g Guard) check(dbc dbctx.Context, model interface{}, where string, arg interface{}, missing func(string) error, msg string) error {
	ok, err := g.exists(dbc, model, where, arg)
	if err != nil {
		return err
	}
	if !ok {
		return missing(msg)
	}
	return nil
}

func (g Guard) ref(dbc dbctx.Context, model interface{}, where string, arg interface{}, what string) error {
	return g.check(dbc, model, where, arg, ConstraintError, fmt.Sprintf("referenced %s %v does not exist", what, arg))
}

func (g Guard) RefUser(dbc dbctx.Context, userID uint) error {
	return g.ref(dbc, &knowledge.User{}, "id = ?", userID, "user")
}

func (g Guard) RefUserEmail(dbc dbctx.Context, email string) error {
	return g.ref(dbc, &knowledge.User{}, "email = ?", email, "user email")
}

func (g Guard) RefAIModel(dbc dbctx.Context, modelID uint) error {
	return g.ref(dbc, &knowledge.AIModel{}, "id = ?", modelID, "ai model")
}

func (g Guard) RefProject(dbc dbctx.Context, projectID uint) error {
	return g.ref(dbc, &knowledge.Project{}, "project_id = ?", projectID, "project")
}

func (g Guard) RefInfoBase(dbc dbctx.Context, infoBaseID uint) error {
	return g.ref(dbc, &knowledge.ProjectInfoBase{}, "id = ?", infoBaseID, "infobase")
}

func (g Guard) RequireProject(dbc dbctx.Context, projectID uint) error {
	return g.check(dbc, &knowledge.Project{}, "project_id = ?", projectID, NotFoundError, fmt.Sprintf("project %d does not exist", projectID))
}

// OwnsProjects reports whether any project still names userID as owner.
func (g Guard) OwnsProjects(dbc dbctx.Context, userID uint) (bool, error) {
	return g.exists(dbc, &knowledge.Project{}, "owner_user_id = ?", userID)
}
