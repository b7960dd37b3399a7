package threads

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	store "github.com/mitanshu610/chat-threads/internal/db"
	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/platform/apierr"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
	"github.com/mitanshu610/chat-threads/internal/schemas"
)

type ThreadRepo interface {
	Create(dbc dbctx.Context, rows []*types.Thread) ([]*types.Thread, error)
	GetByUUID(dbc dbctx.Context, threadUUID uuid.UUID) (*schemas.ThreadSchema, error)
	Update(dbc dbctx.Context, threadUUID uuid.UUID, fields map[string]interface{}) error
	SetLastMessage(dbc dbctx.Context, threadUUID uuid.UUID, messageID int64) error
	ListMessages(dbc dbctx.Context, threadUUID uuid.UUID, filter *schemas.MessageFilter) ([]*schemas.ThreadMessageSchema, error)
	ListByUserEmail(dbc dbctx.Context, email string, product types.Product) ([]*schemas.ThreadSchema, error)
	ListByAlternateID(dbc dbctx.Context, alternateID int64, product types.Product) ([]*schemas.ThreadSchema, error)
	// ListMessagesByAlternateID narrows to threads owned by userID when it is non-nil.
	ListMessagesByAlternateID(dbc dbctx.Context, alternateID int64, product types.Product, userID *int64) ([]*schemas.ThreadMessageSchema, error)
	SoftDelete(dbc dbctx.Context, threadUUID uuid.UUID) error
	SearchMessages(dbc dbctx.Context, text, email string, product types.Product) ([]*schemas.ThreadSchema, error)
	ListWithPagination(dbc dbctx.Context, q schemas.PageQuery) (*schemas.ThreadPage, error)
}

var threadPatchable = map[string]bool{
	"title":           true,
	"user_id":         true,
	"meta":            true,
	"alternate_id":    true,
	"last_message_id": true,
}

type threadRepo struct {
	db   *gorm.DB
	log  *logger.Logger
	fold string
}

func NewThreadRepo(db *gorm.DB, log *logger.Logger) ThreadRepo {
	return &threadRepo{db: db, log: log.With("repo", "ThreadRepo"), fold: store.CaseFoldFunc(db)}
}

func (r *threadRepo) Create(dbc dbctx.Context, rows []*types.Thread) ([]*types.Thread, error) {
	if len(rows) == 0 {
		return []*types.Thread{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, apierr.MapError("create thread", err)
	}
	return rows, nil
}

func (r *threadRepo) GetByUUID(dbc dbctx.Context, threadUUID uuid.UUID) (*schemas.ThreadSchema, error) {
	if threadUUID == uuid.Nil {
		return nil, apierr.Validation("missing thread uuid", nil)
	}
	var out types.Thread
	err := dbc.DB(r.db).
		Model(&types.Thread{}).
		Where("thread.uuid = ?", threadUUID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apierr.MapError("get thread", err)
	}
	return schemas.NewThreadSchema(&out)
}

func (r *threadRepo) Update(dbc dbctx.Context, threadUUID uuid.UUID, fields map[string]interface{}) error {
	updates, err := patch("update thread", fields, threadPatchable)
	if err != nil {
		return err
	}
	res := dbc.DB(r.db).
		Model(&types.Thread{}).
		Where("thread.uuid = ?", threadUUID).
		Scopes(notDeleted).
		Updates(updates)
	if res.Error != nil {
		return apierr.MapError("update thread", res.Error)
	}
	if res.RowsAffected == 0 {
		return apierr.ThreadUpdate("Thread to update not found")
	}
	return nil
}

// SetLastMessage points the thread at messageID. Soft-deleted threads are
// updated too, since posting to them is allowed.
func (r *threadRepo) SetLastMessage(dbc dbctx.Context, threadUUID uuid.UUID, messageID int64) error {
	res := dbc.DB(r.db).
		Model(&types.Thread{}).
		Where("thread.uuid = ?", threadUUID).
		Updates(map[string]interface{}{"last_message_id": messageID, "updated_at": nowUTC()})
	if res.Error != nil {
		return apierr.MapError("set last message", res.Error)
	}
	if res.RowsAffected == 0 {
		return apierr.ThreadUpdate("Thread to update not found")
	}
	return nil
}

func (r *threadRepo) ListMessages(dbc dbctx.Context, threadUUID uuid.UUID, filter *schemas.MessageFilter) ([]*schemas.ThreadMessageSchema, error) {
	if filter != nil {
		if err := schemas.Validate("list messages", filter); err != nil {
			return nil, err
		}
	}
	q := dbc.DB(r.db).
		Model(&types.ThreadMessage{}).
		Select("thread_message.*").
		Joins("JOIN thread ON thread.uuid = thread_message.thread_uuid").
		Where("thread.uuid = ?", threadUUID)
	if filter != nil && len(filter.Roles) > 0 {
		q = q.Where("thread_message.role IN ?", filter.Roles)
	}
	var rows []*types.ThreadMessage
	if err := q.Order("thread_message.id ASC").Find(&rows).Error; err != nil {
		return nil, apierr.MapError("list messages", err)
	}
	return schemas.NewThreadMessageSchemas(rows)
}

func (r *threadRepo) ListByUserEmail(dbc dbctx.Context, email string, product types.Product) ([]*schemas.ThreadSchema, error) {
	var rows []*types.Thread
	if err := dbc.DB(r.db).
		Model(&types.Thread{}).
		Scopes(ownedBy(email, product), notDeleted, newestFirst).
		Find(&rows).Error; err != nil {
		return nil, apierr.MapError("list threads by email", err)
	}
	return schemas.NewThreadSchemas(rows)
}

func (r *threadRepo) ListByAlternateID(dbc dbctx.Context, alternateID int64, product types.Product) ([]*schemas.ThreadSchema, error) {
	var rows []*types.Thread
	if err := dbc.DB(r.db).
		Model(&types.Thread{}).
		Where("thread.alternate_id = ? AND thread.product = ?", alternateID, product).
		Scopes(notDeleted, newestFirst).
		Find(&rows).Error; err != nil {
		return nil, apierr.MapError("list threads by alternate id", err)
	}
	return schemas.NewThreadSchemas(rows)
}

func (r *threadRepo) ListMessagesByAlternateID(dbc dbctx.Context, alternateID int64, product types.Product, userID *int64) ([]*schemas.ThreadMessageSchema, error) {
	q := dbc.DB(r.db).
		Model(&types.ThreadMessage{}).
		Select("thread_message.*").
		Joins("JOIN thread ON thread.uuid = thread_message.thread_uuid").
		Where("thread.alternate_id = ? AND thread.product = ?", alternateID, product).
		Scopes(notDeleted)
	if userID != nil {
		q = q.Where("thread.user_id = ?", *userID)
	}
	var rows []*types.ThreadMessage
	if err := q.Order("thread_message.id ASC").Find(&rows).Error; err != nil {
		return nil, apierr.MapError("list messages by alternate id", err)
	}
	return schemas.NewThreadMessageSchemas(rows)
}

// SoftDelete flags the thread as deleted. Messages and summaries are left
// as they are.
func (r *threadRepo) SoftDelete(dbc dbctx.Context, threadUUID uuid.UUID) error {
	res := dbc.DB(r.db).
		Model(&types.Thread{}).
		Where("thread.uuid = ?", threadUUID).
		Scopes(notDeleted).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": nowUTC()})
	if res.Error != nil {
		return apierr.MapError("soft delete thread", res.Error)
	}
	if res.RowsAffected == 0 {
		return apierr.ThreadDelete("Thread to delete not found")
	}
	return nil
}

func (r *threadRepo) SearchMessages(dbc dbctx.Context, text, email string, product types.Product) ([]*schemas.ThreadSchema, error) {
	var rows []*types.Thread
	if err := dbc.DB(r.db).
		Model(&types.Thread{}).
		Scopes(ownedBy(email, product), notDeleted, hasMessageContaining(r.fold, text), newestFirst).
		Find(&rows).Error; err != nil {
		return nil, apierr.MapError("search thread messages", err)
	}
	return schemas.NewThreadSchemas(rows)
}

// ListWithPagination runs one count over the filtered set and one page
// query. Ordering is newest first whether or not a search term is given.
func (r *threadRepo) ListWithPagination(dbc dbctx.Context, q schemas.PageQuery) (*schemas.ThreadPage, error) {
	if err := schemas.Validate("list threads with pagination", q); err != nil {
		return nil, err
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if q.PageSize > 0 && page-1 > math.MaxInt/q.PageSize {
		return nil, apierr.Validation(fmt.Sprintf("list threads with pagination: page %d out of range", q.Page), nil)
	}

	filtered := func() *gorm.DB {
		scopes := []func(*gorm.DB) *gorm.DB{ownedBy(q.UserEmail, q.Product), notDeleted, inOrg(q.OrgID)}
		if q.Query != "" {
			scopes = append(scopes, hasMessageContaining(r.fold, q.Query))
		}
		return dbc.DB(r.db).Model(&types.Thread{}).Scopes(scopes...)
	}

	var total int64
	if err := dbc.DB(r.db).
		Table("(?) AS filtered", filtered().Select("thread.id")).
		Count(&total).Error; err != nil {
		return nil, apierr.MapError("count threads", err)
	}

	pageQ := filtered().Scopes(newestFirst)
	if q.PageSize > 0 {
		pageQ = pageQ.Offset((page - 1) * q.PageSize).Limit(q.PageSize)
	}
	var rows []*types.Thread
	if err := pageQ.Find(&rows).Error; err != nil {
		return nil, apierr.MapError("list threads page", err)
	}
	threads, err := schemas.NewThreadSchemas(rows)
	if err != nil {
		return nil, fmt.Errorf("map threads page: %w", err)
	}

	r.log.Debug("threads page loaded",
		"product", q.Product,
		"page", page,
		"page_size", q.PageSize,
		"total", total,
		"search", q.Query != "",
	)
	return &schemas.ThreadPage{
		Threads:    threads,
		Pagination: schemas.NewPagination(total, page, q.PageSize),
	}, nil
}
