package knowledge

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ProjectInfoBase is one uploaded source file and the artifacts derived from it.
// The artifact fields start empty and are filled in once ingestion has run.
type ProjectInfoBase struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProjectID uint   `gorm:"column:project_id;not null;index" json:"project_id"`
	UserEmail string `gorm:"column:user_email;size:255;not null;index" json:"user_email"`

	// upload
	OrigName string `gorm:"column:orig_name;size:255" json:"orig_name"`
	FilePath string `gorm:"column:file_path;type:text" json:"file_path"`
	Size     int64  `gorm:"column:size" json:"size"`

	// derived artifacts
	OutputFolder string                                `gorm:"column:output_folder;type:text" json:"output_folder"`
	HTMLPath     string                                `gorm:"column:html_path;type:text" json:"html_path"`
	MDPath       string                                `gorm:"column:md_path;type:text" json:"md_path"`
	Images       datatypes.JSONSlice[string]           `gorm:"column:images" json:"images"`
	JSONPaths    datatypes.JSONType[map[string]string] `gorm:"column:json_paths" json:"json_paths"`
	Parts        datatypes.JSONSlice[string]           `gorm:"column:parts" json:"parts"`

	UploadAt  time.Time `gorm:"column:upload_at;autoCreateTime" json:"upload_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProjectInfoBase) TableName() string { return "project_info_base" }

// Normalize replaces nil collections with empty ones so the row never stores JSON null.
func (ib *ProjectInfoBase) Normalize() {
	if ib.Images == nil {
		ib.Images = datatypes.JSONSlice[string]{}
	}
	if ib.Parts == nil {
		ib.Parts = datatypes.JSONSlice[string]{}
	}
	if ib.JSONPaths.Data() == nil {
		ib.JSONPaths = datatypes.NewJSONType(map[string]string{})
	}
}

func (ib *ProjectInfoBase) Validate() error {
	if ib == nil {
		return fmt.Errorf("infobase is nil")
	}
	if ib.ProjectID == 0 {
		return fmt.Errorf("project_id is required")
	}
	if strings.TrimSpace(ib.UserEmail) == "" {
		return fmt.Errorf("user_email is required")
	}
	if ib.Size < 0 {
		return fmt.Errorf("size must not be negative")
	}
	return nil
}

// Artifacts are the ingestion outputs recorded against an upload.
type Artifacts struct {
	OutputFolder string
	HTMLPath     string
	MDPath       string
	Images       []string
	JSONPaths    map[string]string
	Parts        []string
}

// Updates renders the artifacts as a column map. Nil collections are written as empty.
func (a Artifacts) Updates() map[string]interface{} {
	images := a.Images
	if images == nil {
		images = []string{}
	}
	parts := a.Parts
	if parts == nil {
		parts = []string{}
	}
	jsonPaths := a.JSONPaths
	if jsonPaths == nil {
		jsonPaths = map[string]string{}
	}
	return map[string]interface{}{
		"output_folder": a.OutputFolder,
		"html_path":     a.HTMLPath,
		"md_path":       a.MDPath,
		"images":        datatypes.JSONSlice[string](images),
		"json_paths":    datatypes.NewJSONType(jsonPaths),
		"parts":         datatypes.JSONSlice[string](parts),
	}
}
