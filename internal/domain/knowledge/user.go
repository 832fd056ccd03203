package knowledge

import "time"

// User is the minimal account record projects and uploads point at. Accounts
// are managed elsewhere; the knowledge base only needs the id and the email.
type User struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email       string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	DisplayName string    `gorm:"column:display_name;size:255" json:"display_name"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "user_table" }

// AIModel is the optional model configuration a project can be bound to.
type AIModel struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Provider  string    `gorm:"column:provider;size:100" json:"provider"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AIModel) TableName() string { return "ai_models" }
