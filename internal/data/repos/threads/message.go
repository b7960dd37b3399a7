package threads

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/platform/apierr"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
	"github.com/mitanshu610/chat-threads/internal/schemas"
)

type ThreadMessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.ThreadMessage) ([]*types.ThreadMessage, error)
	// GetByID returns nil, nil when no message has the id.
	GetByID(dbc dbctx.Context, id int64) (*schemas.ThreadMessageSchema, error)
	ListByThreadUUID(dbc dbctx.Context, threadUUID uuid.UUID) ([]*types.ThreadMessage, error)
	UpdateFields(dbc dbctx.Context, id int64, fields map[string]interface{}) (bool, error)
}

var messagePatchable = map[string]bool{
	"content":         true,
	"display_text":    true,
	"is_disliked":     true,
	"is_json":         true,
	"question_config": true,
	"prompt_details":  true,
}

type threadMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThreadMessageRepo(db *gorm.DB, log *logger.Logger) ThreadMessageRepo {
	return &threadMessageRepo{db: db, log: log.With("repo", "ThreadMessageRepo")}
}

func (r *threadMessageRepo) Create(dbc dbctx.Context, rows []*types.ThreadMessage) ([]*types.ThreadMessage, error) {
	if len(rows) == 0 {
		return []*types.ThreadMessage{}, nil
	}
	for _, row := range rows {
		if row != nil && !row.Role.Valid() {
			return nil, apierr.Validation("create message: invalid role "+string(row.Role), nil)
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, apierr.MapError("create message", err)
	}
	return rows, nil
}

func (r *threadMessageRepo) GetByID(dbc dbctx.Context, id int64) (*schemas.ThreadMessageSchema, error) {
	var out types.ThreadMessage
	err := dbc.DB(r.db).
		Model(&types.ThreadMessage{}).
		Where("thread_message.id = ?", id).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apierr.MapError("get message", err)
	}
	return schemas.NewThreadMessageSchema(&out)
}

// ListByThreadUUID orders by creation time, unlike ThreadRepo.ListMessages
// which orders by id.
func (r *threadMessageRepo) ListByThreadUUID(dbc dbctx.Context, threadUUID uuid.UUID) ([]*types.ThreadMessage, error) {
	var out []*types.ThreadMessage
	if err := dbc.DB(r.db).
		Model(&types.ThreadMessage{}).
		Select("thread_message.*").
		Joins("JOIN thread ON thread.uuid = thread_message.thread_uuid").
		Where("thread.uuid = ?", threadUUID).
		Order("thread_message.created_at ASC").
		Order("thread_message.id ASC").
		Find(&out).Error; err != nil {
		return nil, apierr.MapError("list messages by thread", err)
	}
	return out, nil
}

func (r *threadMessageRepo) UpdateFields(dbc dbctx.Context, id int64, fields map[string]interface{}) (bool, error) {
	updates, err := patch("update message", fields, messagePatchable)
	if err != nil {
		return false, err
	}
	res := dbc.DB(r.db).
		Model(&types.ThreadMessage{}).
		Where("thread_message.id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return false, apierr.MapError("update message", res.Error)
	}
	return res.RowsAffected > 0, nil
}
