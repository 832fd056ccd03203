package knowledge

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxProjectNameLen = 255
	MaxCategoryLen    = 100
)

// Project groups uploaded files under one owner.
type Project struct {
	ProjectID   uint      `gorm:"column:project_id;primaryKey;autoIncrement" json:"project_id"`
	OwnerUserID uint      `gorm:"column:owner_user_id;not null;index" json:"owner_user_id"`
	ModelID     *uint     `gorm:"column:model_id;index" json:"model_id,omitempty"`
	ProjectName string    `gorm:"column:project_name;size:255;not null" json:"project_name"`
	Category    string    `gorm:"column:category;size:100" json:"category"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Project) TableName() string { return "project_table" }

// Validate checks the fields the schema constrains.
func (p *Project) Validate() error {
	if p == nil {
		return fmt.Errorf("project is nil")
	}
	name := strings.TrimSpace(p.ProjectName)
	if name == "" {
		return fmt.Errorf("project_name is required")
	}
	if len(name) > MaxProjectNameLen {
		return fmt.Errorf("project_name longer than %d bytes", MaxProjectNameLen)
	}
	if len(p.Category) > MaxCategoryLen {
		return fmt.Errorf("category longer than %d bytes", MaxCategoryLen)
	}
	if p.OwnerUserID == 0 {
		return fmt.Errorf("owner_user_id is required")
	}
	return nil
}

// ProjectUpdate carries the editable project fields. Nil fields are left as is;
// ClearModel detaches the model.
type ProjectUpdate struct {
	ProjectName *string
	Category    *string
	Description *string
	ModelID     *uint
	ClearModel  bool
}

func (u ProjectUpdate) Empty() bool {
	return u.ProjectName == nil && u.Category == nil && u.Description == nil && u.ModelID == nil && !u.ClearModel
}

// Apply copies the set fields onto p and returns the changed columns.
func (u ProjectUpdate) Apply(p *Project) map[string]interface{} {
	cols := map[string]interface{}{}
	if u.ProjectName != nil {
		p.ProjectName = strings.TrimSpace(*u.ProjectName)
		cols["project_name"] = p.ProjectName
	}
	if u.Category != nil {
		p.Category = *u.Category
		cols["category"] = p.Category
	}
	if u.Description != nil {
		p.Description = *u.Description
		cols["description"] = p.Description
	}
	switch {
	case u.ClearModel:
		p.ModelID = nil
		cols["model_id"] = nil
	case u.ModelID != nil:
		id := *u.ModelID
		p.ModelID = &id
		cols["model_id"] = id
	}
	return cols
}
