package thread

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThreadMessageSummary is a generated summary of one message. At most one
// summary per message is expected, but thread_message_id is not unique.
type ThreadMessageSummary struct {
	UUID            uuid.UUID `gorm:"type:uuid;column:uuid;primaryKey" json:"uuid"`
	ThreadUUID      uuid.UUID `gorm:"type:uuid;column:thread_uuid;not null;index" json:"thread_uuid"`
	ThreadMessageID *int64    `gorm:"column:thread_message_id;index" json:"thread_message_id,omitempty"`
	Summary         string    `gorm:"column:summary;type:text" json:"summary"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ThreadMessageSummary) TableName() string { return "thread_message_summary" }

func (s *ThreadMessageSummary) BeforeCreate(*gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	return nil
}
