package thread

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ThreadMessage struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadUUID      uuid.UUID `gorm:"type:uuid;column:thread_uuid;not null;index" json:"thread_uuid"`
	ParentMessageID *int64    `gorm:"column:parent_message_id" json:"parent_message_id,omitempty"`

	Content     string `gorm:"column:content;type:text" json:"content"`
	Role        Role   `gorm:"column:role;type:varchar(16);not null" json:"role"`
	DisplayText string `gorm:"column:display_text;type:text" json:"display_text"`
	IsJSON      bool   `gorm:"column:is_json;not null;default:false" json:"is_json"`
	IsDisliked  *bool  `gorm:"column:is_disliked" json:"is_disliked,omitempty"`
	IsDeleted   bool   `gorm:"column:is_deleted;not null;default:false" json:"is_deleted"`
	UserID      *int64 `gorm:"column:user_id" json:"user_id,omitempty"`

	QuestionConfig datatypes.JSON `gorm:"column:question_config;not null;default:'{}'" json:"question_config,omitempty"`
	PromptDetails  datatypes.JSON `gorm:"column:prompt_details;not null;default:'{}'" json:"prompt_details,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ThreadMessage) TableName() string { return "thread_message" }

func (m *ThreadMessage) BeforeCreate(*gorm.DB) error {
	if m.DisplayText == "" {
		m.DisplayText = m.Content
	}
	if len(m.QuestionConfig) == 0 {
		m.QuestionConfig = datatypes.JSON([]byte(`{}`))
	}
	if len(m.PromptDetails) == 0 {
		m.PromptDetails = datatypes.JSON([]byte(`{}`))
	}
	return nil
}
