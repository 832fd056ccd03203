package knowledge

import (
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// InfoList is one retrievable chunk of an upload: its text, free-form metadata
// (page number, section label, ...) and its embedding.
type InfoList struct {
	ID           uint             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InfoBaseID   uint             `gorm:"column:infobase_id;not null;index" json:"infobase_id"`
	Content      *string          `gorm:"column:content;type:text" json:"content"`
	Metadata     Metadata         `gorm:"column:metadata" json:"metadata"`
	VectorMemory *pgvector.Vector `gorm:"column:vector_memory;type:vector(1536)" json:"-"`

	UploadAt  time.Time `gorm:"column:upload_at;autoCreateTime" json:"upload_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (InfoList) TableName() string { return "info_list" }

// TextContent reports the chunk text and whether there is any.
func (c *InfoList) TextContent() (string, bool) {
	if c == nil || c.Content == nil {
		return "", false
	}
	return *c.Content, true
}

// Embedding returns the stored vector, or nil when the chunk has not been embedded.
func (c *InfoList) Embedding() []float32 {
	if c == nil || c.VectorMemory == nil {
		return nil
	}
	return c.VectorMemory.Slice()
}

func (c *InfoList) Validate() error {
	if c == nil {
		return fmt.Errorf("chunk is nil")
	}
	if c.VectorMemory != nil {
		if err := ValidateEmbedding(c.VectorMemory.Slice()); err != nil {
			return err
		}
	}
	return nil
}
