package schemas

import (
	"time"

	"github.com/google/uuid"

	"github.com/mitanshu610/chat-threads/internal/domain/thread"
)

type ThreadMessageSchema struct {
	ID              int64                  `json:"id"`
	ThreadUUID      uuid.UUID              `json:"thread_uuid" validate:"required"`
	ParentMessageID *int64                 `json:"parent_message_id"`
	Content         string                 `json:"content"`
	Role            thread.Role            `json:"role" validate:"required"`
	DisplayText     string                 `json:"display_text"`
	IsJSON          bool                   `json:"is_json"`
	IsDisliked      *bool                  `json:"is_disliked"`
	IsDeleted       bool                   `json:"is_deleted"`
	UserID          *int64                 `json:"user_id"`
	QuestionConfig  map[string]interface{} `json:"question_config"`
	PromptDetails   map[string]interface{} `json:"prompt_details"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func NewThreadMessageSchema(row *thread.ThreadMessage) (*ThreadMessageSchema, error) {
	if row == nil {
		return nil, nil
	}
	qc, err := decodeJSONMap(row.QuestionConfig)
	if err != nil {
		return nil, err
	}
	pd, err := decodeJSONMap(row.PromptDetails)
	if err != nil {
		return nil, err
	}
	out := &ThreadMessageSchema{
		ID:              row.ID,
		ThreadUUID:      row.ThreadUUID,
		ParentMessageID: row.ParentMessageID,
		Content:         row.Content,
		Role:            row.Role,
		DisplayText:     row.DisplayText,
		IsJSON:          row.IsJSON,
		IsDisliked:      row.IsDisliked,
		IsDeleted:       row.IsDeleted,
		UserID:          row.UserID,
		QuestionConfig:  qc,
		PromptDetails:   pd,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if err := Validate("ThreadMessageSchema", out); err != nil {
		return nil, err
	}
	return out, nil
}

func NewThreadMessageSchemas(rows []*thread.ThreadMessage) ([]*ThreadMessageSchema, error) {
	out := make([]*ThreadMessageSchema, 0, len(rows))
	for _, row := range rows {
		s, err := NewThreadMessageSchema(row)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

type CreateMessageRequest struct {
	Role            thread.Role            `json:"role" validate:"required,oneof=user system assistant"`
	Content         string                 `json:"content"`
	Product         thread.Product         `json:"product" validate:"required,oneof=co_pilot doc_creator devas mermaid agentix"`
	DisplayText     *string                `json:"display_text"`
	IsJSON          bool                   `json:"is_json"`
	ThreadID        *uuid.UUID             `json:"thread_id"`
	ParentMessageID *int64                 `json:"parent_message_id"`
	RequestedBy     *string                `json:"requested_by"`
	UserID          *int64                 `json:"user_id"`
	QuestionConfig  map[string]interface{} `json:"question_config"`
	PromptDetails   map[string]interface{} `json:"prompt_details"`
}

// Entity builds the row to insert. DisplayText falls back to Content.
func (r CreateMessageRequest) Entity(threadUUID uuid.UUID) (*thread.ThreadMessage, error) {
	qc, err := EncodeJSONMap(r.QuestionConfig)
	if err != nil {
		return nil, err
	}
	pd, err := EncodeJSONMap(r.PromptDetails)
	if err != nil {
		return nil, err
	}
	display := r.Content
	if r.DisplayText != nil && *r.DisplayText != "" {
		display = *r.DisplayText
	}
	var parent *int64
	if r.ParentMessageID != nil && *r.ParentMessageID != 0 {
		parent = r.ParentMessageID
	}
	return &thread.ThreadMessage{
		ThreadUUID:      threadUUID,
		ParentMessageID: parent,
		Content:         r.Content,
		Role:            r.Role,
		DisplayText:     display,
		IsJSON:          r.IsJSON,
		UserID:          r.UserID,
		QuestionConfig:  qc,
		PromptDetails:   pd,
	}, nil
}

// UpdateMessageRequest rewrites a message body. DisplayText falls back to
// Content when nil.
type UpdateMessageRequest struct {
	Content     string  `json:"content"`
	DisplayText *string `json:"display_text"`
	IsDisliked  *bool   `json:"is_disliked"`
}

func (r UpdateMessageRequest) Fields() map[string]interface{} {
	display := r.Content
	if r.DisplayText != nil {
		display = *r.DisplayText
	}
	fields := map[string]interface{}{
		"content":      r.Content,
		"display_text": display,
	}
	if r.IsDisliked != nil {
		fields["is_disliked"] = *r.IsDisliked
	}
	return fields
}

type MessageFilter struct {
	Roles []thread.Role `json:"roles" validate:"omitempty,dive,oneof=user system assistant"`
}
