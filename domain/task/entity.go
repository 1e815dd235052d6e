package task

import "time"

// MaxTitleLength is the longest title accepted, in characters.
const MaxTitleLength = 200

// Task is a todo item owned by exactly one user.
// OwnerID is set at creation from the caller's verified identity and never changes.
type Task struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"size:200;not null"`
	Description *string   `gorm:"type:text"`
	Completed   bool      `gorm:"not null"`
	OwnerID     string    `gorm:"column:owner_user_id;type:text;not null;index"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}
