package schemas

import (
	"time"

	"github.com/google/uuid"

	"github.com/mitanshu610/chat-threads/internal/domain/thread"
)

type ThreadSchema struct {
	ID            int64                  `json:"id"`
	UUID          uuid.UUID              `json:"uuid" validate:"required"`
	Title         string                 `json:"title"`
	Product       thread.Product         `json:"product" validate:"required,oneof=co_pilot doc_creator devas mermaid agentix"`
	UserEmail     string                 `json:"user_email"`
	UserID        *int64                 `json:"user_id"`
	AlternateID   *int64                 `json:"alternate_id"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	LastMessageID *int64                 `json:"last_message_id"`
	IsDeleted     bool                   `json:"is_deleted"`
	Meta          map[string]interface{} `json:"meta"`
	OrgID         *string                `json:"org_id"`
}

// NewThreadSchema maps a persisted row into its transfer shape.
func NewThreadSchema(row *thread.Thread) (*ThreadSchema, error) {
	if row == nil {
		return nil, nil
	}
	meta, err := decodeJSONMap(row.Meta)
	if err != nil {
		return nil, err
	}
	out := &ThreadSchema{
		ID:            row.ID,
		UUID:          row.UUID,
		Title:         row.Title,
		Product:       row.Product,
		UserEmail:     row.UserEmail,
		UserID:        row.UserID,
		AlternateID:   row.AlternateID,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		LastMessageID: row.LastMessageID,
		IsDeleted:     row.IsDeleted,
		Meta:          meta,
		OrgID:         row.OrgID,
	}
	if err := Validate("ThreadSchema", out); err != nil {
		return nil, err
	}
	return out, nil
}

func NewThreadSchemas(rows []*thread.Thread) ([]*ThreadSchema, error) {
	out := make([]*ThreadSchema, 0, len(rows))
	for _, row := range rows {
		s, err := NewThreadSchema(row)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

type CreateThreadRequest struct {
	Title       string                 `json:"title"`
	Product     thread.Product         `json:"product" validate:"required,oneof=co_pilot doc_creator devas mermaid agentix"`
	RequestedBy string                 `json:"requested_by" validate:"required"`
	UserID      *int64                 `json:"user_id"`
	Meta        map[string]interface{} `json:"meta"`
	AlternateID *int64                 `json:"alternate_id"`
	OrgID       *string                `json:"org_id"`
}

// UpdateThreadRequest carries the patchable thread fields. Nil fields are
// left untouched; owner, product, org and uuid are not patchable.
type UpdateThreadRequest struct {
	Title       *string                `json:"title" validate:"omitempty,min=1"`
	UserID      *int64                 `json:"user_id"`
	Meta        map[string]interface{} `json:"meta"`
	AlternateID *int64                 `json:"alternate_id"`
}

// Fields projects the non-nil fields into a column map.
func (r UpdateThreadRequest) Fields() (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if r.Title != nil {
		fields["title"] = *r.Title
	}
	if r.UserID != nil {
		fields["user_id"] = *r.UserID
	}
	if r.Meta != nil {
		raw, err := EncodeJSONMap(r.Meta)
		if err != nil {
			return nil, err
		}
		fields["meta"] = raw
	}
	if r.AlternateID != nil {
		fields["alternate_id"] = *r.AlternateID
	}
	return fields, nil
}

// PageQuery selects one page of a user's threads within a product.
// A nil or empty OrgID selects threads that have no organization.
type PageQuery struct {
	UserEmail string         `json:"user_email" validate:"required"`
	Product   thread.Product `json:"product" validate:"required,oneof=co_pilot doc_creator devas mermaid agentix"`
	Page      int            `json:"page"`
	PageSize  int            `json:"page_size"`
	Query     string         `json:"query"`
	OrgID     *string        `json:"org_id"`
}

type Pagination struct {
	TotalCount  int64 `json:"total_count"`
	TotalPages  int64 `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

type ThreadPage struct {
	Threads    []*ThreadSchema `json:"threads"`
	Pagination Pagination      `json:"pagination"`
}

// NewPagination derives the page block. pageSize <= 0 means a single page
// holding every match.
func NewPagination(totalCount int64, page, pageSize int) Pagination {
	totalPages := int64(1)
	if pageSize > 0 {
		totalPages = (totalCount + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    pageSize,
		HasNext:     int64(page) < totalPages,
		HasPrevious: page > 1,
	}
}
