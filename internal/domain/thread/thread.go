package thread

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Thread struct {
	ID   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;column:uuid;not null;uniqueIndex" json:"uuid"`

	Title     string  `gorm:"column:title" json:"title"`
	UserID    *int64  `gorm:"column:user_id" json:"user_id,omitempty"`
	UserEmail string  `gorm:"column:user_email;index:ix_thread_user_email_product_is_deleted,priority:1" json:"user_email"`
	Product   Product `gorm:"column:product;type:varchar(32);not null;index:ix_thread_user_email_product_is_deleted,priority:2" json:"product"`
	IsDeleted bool    `gorm:"column:is_deleted;not null;default:false;index:ix_thread_user_email_product_is_deleted,priority:3" json:"is_deleted"`

	// AlternateID correlates with an external system and is not unique.
	AlternateID   *int64         `gorm:"column:alternate_id" json:"alternate_id,omitempty"`
	Meta          datatypes.JSON `gorm:"column:meta;not null;default:'{}'" json:"meta,omitempty"`
	LastMessageID *int64         `gorm:"column:last_message_id" json:"last_message_id,omitempty"`
	OrgID         *string        `gorm:"column:org_id;index" json:"org_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Thread) TableName() string { return "thread" }

func (t *Thread) BeforeCreate(*gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if len(t.Meta) == 0 {
		t.Meta = datatypes.JSON([]byte(`{}`))
	}
	return nil
}
