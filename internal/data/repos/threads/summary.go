package threads

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/platform/apierr"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
)

type ThreadMessageSummaryRepo interface {
	GetByMessageIDs(dbc dbctx.Context, messageIDs []int64) ([]*types.ThreadMessageSummary, error)
	// GetSummaries is kept under its old name; it behaves exactly like GetByMessageIDs.
	GetSummaries(dbc dbctx.Context, messageIDs []int64) ([]*types.ThreadMessageSummary, error)
	Create(dbc dbctx.Context, threadUUID uuid.UUID, messageID *int64, text string) (*types.ThreadMessageSummary, error)
	Update(dbc dbctx.Context, summaryUUID uuid.UUID, fields map[string]interface{}) error
}

var summaryPatchable = map[string]bool{
	"summary":           true,
	"thread_message_id": true,
}

type threadMessageSummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThreadMessageSummaryRepo(db *gorm.DB, log *logger.Logger) ThreadMessageSummaryRepo {
	return &threadMessageSummaryRepo{db: db, log: log.With("repo", "ThreadMessageSummaryRepo")}
}

func (r *threadMessageSummaryRepo) GetByMessageIDs(dbc dbctx.Context, messageIDs []int64) ([]*types.ThreadMessageSummary, error) {
	if len(messageIDs) == 0 {
		return []*types.ThreadMessageSummary{}, nil
	}
	var out []*types.ThreadMessageSummary
	if err := dbc.DB(r.db).
		Model(&types.ThreadMessageSummary{}).
		Where("thread_message_id IN ?", messageIDs).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, apierr.MapError("get summaries", err)
	}
	return out, nil
}

func (r *threadMessageSummaryRepo) GetSummaries(dbc dbctx.Context, messageIDs []int64) ([]*types.ThreadMessageSummary, error) {
	return r.GetByMessageIDs(dbc, messageIDs)
}

func (r *threadMessageSummaryRepo) Create(dbc dbctx.Context, threadUUID uuid.UUID, messageID *int64, text string) (*types.ThreadMessageSummary, error) {
	if threadUUID == uuid.Nil {
		return nil, apierr.Validation("create summary: missing thread uuid", nil)
	}
	row := &types.ThreadMessageSummary{
		UUID:            uuid.New(),
		ThreadUUID:      threadUUID,
		ThreadMessageID: messageID,
		Summary:         text,
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, apierr.MapError("create summary", err)
	}
	return row, nil
}

func (r *threadMessageSummaryRepo) Update(dbc dbctx.Context, summaryUUID uuid.UUID, fields map[string]interface{}) error {
	updates, err := patch("update summary", fields, summaryPatchable)
	if err != nil {
		return err
	}
	res := dbc.DB(r.db).
		Model(&types.ThreadMessageSummary{}).
		Where("uuid = ?", summaryUUID).
		Updates(updates)
	if res.Error != nil {
		return apierr.MapError("update summary", res.Error)
	}
	if res.RowsAffected == 0 {
		return apierr.SummaryUpdate("Summary to update not found")
	}
	return nil
}
