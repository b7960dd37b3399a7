package schemas

import (
	"time"

	"github.com/google/uuid"

	"github.com/mitanshu610/chat-threads/internal/domain/thread"
)

type ThreadMessageSummarySchema struct {
	UUID            uuid.UUID `json:"uuid" validate:"required"`
	ThreadUUID      uuid.UUID `json:"thread_uuid" validate:"required"`
	ThreadMessageID *int64    `json:"thread_message_id"`
	Summary         string    `json:"summary"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewThreadMessageSummarySchema(row *thread.ThreadMessageSummary) (*ThreadMessageSummarySchema, error) {
	if row == nil {
		return nil, nil
	}
	out := &ThreadMessageSummarySchema{
		UUID:            row.UUID,
		ThreadUUID:      row.ThreadUUID,
		ThreadMessageID: row.ThreadMessageID,
		Summary:         row.Summary,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if err := Validate("ThreadMessageSummarySchema", out); err != nil {
		return nil, err
	}
	return out, nil
}

func NewThreadMessageSummarySchemas(rows []*thread.ThreadMessageSummary) ([]*ThreadMessageSummarySchema, error) {
	out := make([]*ThreadMessageSummarySchema, 0, len(rows))
	for _, row := range rows {
		s, err := NewThreadMessageSummarySchema(row)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

type CreateSummaryRequest struct {
	ThreadUUID      uuid.UUID `json:"thread_uuid" validate:"required"`
	ThreadMessageID *int64    `json:"thread_message_id"`
	Summary         string    `json:"summary" validate:"required"`
}

type UpdateSummaryRequest struct {
	Summary         *string `json:"summary"`
	ThreadMessageID *int64  `json:"thread_message_id"`
}

func (r UpdateSummaryRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Summary != nil {
		fields["summary"] = *r.Summary
	}
	if r.ThreadMessageID != nil {
		fields["thread_message_id"] = *r.ThreadMessageID
	}
	return fields
}
