package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/mitanshu610/chat-threads/internal/data/repos"
	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/observability"
	"github.com/mitanshu610/chat-threads/internal/platform/apierr"
	"github.com/mitanshu610/chat-threads/internal/platform/ctxutil"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
	"github.com/mitanshu610/chat-threads/internal/schemas"
)

const (
	defaultThreadTitle = "New Chat"
	autoTitleRunes     = 23
	autoTitleSuffix    = "..."
)

type ThreadService interface {
	GetThread(dbc dbctx.Context, threadUUID uuid.UUID) (*schemas.ThreadSchema, error)
	UpdateThread(dbc dbctx.Context, threadUUID uuid.UUID, req schemas.UpdateThreadRequest) error
	CreateThread(dbc dbctx.Context, req schemas.CreateThreadRequest) (*schemas.ThreadSchema, error)
	// CreateThreadMessage posts a message, opening a new thread owned by
	// userEmail when req.ThreadID is nil.
	CreateThreadMessage(dbc dbctx.Context, req schemas.CreateMessageRequest, userEmail string, orgID *string) (*schemas.ThreadMessageSchema, error)
	ListThreadsByEmail(dbc dbctx.Context, email string, product types.Product) ([]*schemas.ThreadSchema, error)
	ListThreadsByAlternateID(dbc dbctx.Context, alternateID int64, product types.Product) ([]*schemas.ThreadSchema, error)
	ListMessagesByAlternateID(dbc dbctx.Context, alternateID int64, product types.Product, userID *int64) ([]*schemas.ThreadMessageSchema, error)
	// UpdateThreadMessage returns nil, nil when the message does not exist.
	UpdateThreadMessage(dbc dbctx.Context, messageID int64, req schemas.UpdateMessageRequest) (*schemas.ThreadMessageSchema, error)
	SoftDeleteThread(dbc dbctx.Context, threadUUID uuid.UUID) error
	GetThreadMessages(dbc dbctx.Context, threadUUID uuid.UUID, filter *schemas.MessageFilter) ([]*schemas.ThreadMessageSchema, error)
	SearchThreadByContent(dbc dbctx.Context, query, email string, product types.Product) ([]*schemas.ThreadSchema, error)
	ListThreadsWithPagination(dbc dbctx.Context, q schemas.PageQuery) (*schemas.ThreadPage, error)
}

type threadService struct {
	tx          dbctx.TxRunner
	log         *logger.Logger
	threadRepo  repos.ThreadRepo
	messageRepo repos.ThreadMessageRepo
}

func NewThreadService(db *gorm.DB, log *logger.Logger, threadRepo repos.ThreadRepo, messageRepo repos.ThreadMessageRepo) ThreadService {
	serviceLog := log.With("service", "ThreadService")
	return &threadService{
		tx:          dbctx.NewGormTxRunner(db),
		log:         serviceLog,
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
	}
}

func (s *threadService) GetThread(dbc dbctx.Context, threadUUID uuid.UUID) (out *schemas.ThreadSchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.GetThread", attribute.String("thread.uuid", threadUUID.String()))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	out, err = s.threadRepo.GetByUUID(dbc, threadUUID)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("GetThread failed", "thread_uuid", threadUUID, "error", err)
	}
	return out, err
}

func (s *threadService) UpdateThread(dbc dbctx.Context, threadUUID uuid.UUID, req schemas.UpdateThreadRequest) (err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.UpdateThread", attribute.String("thread.uuid", threadUUID.String()))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	if err = schemas.Validate("update thread", req); err != nil {
		return err
	}
	fields, err := req.Fields()
	if err != nil {
		return apierr.Validation("update thread: encode meta", err)
	}
	if err = s.threadRepo.Update(dbc, threadUUID, fields); err != nil {
		requestLog(s.log, dbc.Ctx).Warn("UpdateThread failed", "thread_uuid", threadUUID, "error", err)
		return err
	}
	return nil
}

func (s *threadService) CreateThread(dbc dbctx.Context, req schemas.CreateThreadRequest) (out *schemas.ThreadSchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.CreateThread", attribute.String("thread.product", string(req.Product)))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	row, err := s.createThread(dbc, req)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("CreateThread failed", "product", req.Product, "error", err)
		return nil, err
	}
	return schemas.NewThreadSchema(row)
}

func (s *threadService) createThread(dbc dbctx.Context, req schemas.CreateThreadRequest) (*types.Thread, error) {
	if err := schemas.Validate("create thread", req); err != nil {
		return nil, err
	}
	meta, err := schemas.EncodeJSONMap(req.Meta)
	if err != nil {
		return nil, apierr.Validation("create thread: encode meta", err)
	}
	title := req.Title
	if strings.TrimSpace(title) == "" {
		title = defaultThreadTitle
	}
	var orgID *string
	if req.OrgID != nil && strings.TrimSpace(*req.OrgID) != "" {
		v := strings.TrimSpace(*req.OrgID)
		orgID = &v
	}
	row := &types.Thread{
		UUID:        uuid.New(),
		Title:       title,
		UserID:      req.UserID,
		UserEmail:   req.RequestedBy,
		Product:     req.Product,
		AlternateID: req.AlternateID,
		Meta:        meta,
		OrgID:       orgID,
	}
	created, err := s.threadRepo.Create(dbc, []*types.Thread{row})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *threadService) CreateThreadMessage(dbc dbctx.Context, req schemas.CreateMessageRequest, userEmail string, orgID *string) (out *schemas.ThreadMessageSchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.CreateThreadMessage",
		attribute.String("thread.product", string(req.Product)),
		attribute.Bool("thread.auto_create", req.ThreadID == nil),
	)
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	if err = schemas.Validate("create thread message", req); err != nil {
		return nil, err
	}

	post := func(inner dbctx.Context) error {
		threadUUID := uuid.Nil
		if req.ThreadID != nil {
			th, err := s.threadRepo.GetByUUID(inner, *req.ThreadID)
			if err != nil {
				return err
			}
			if th == nil {
				return apierr.New(apierr.CodeInvalidReference, "create thread message: thread not found", nil)
			}
			threadUUID = th.UUID
		} else {
			th, err := s.createThread(inner, schemas.CreateThreadRequest{
				Title:       AutoTitle(req.Content),
				Product:     req.Product,
				RequestedBy: userEmail,
				OrgID:       orgID,
			})
			if err != nil {
				return err
			}
			threadUUID = th.UUID
		}
		row, err := req.Entity(threadUUID)
		if err != nil {
			return apierr.Validation("create thread message: encode json fields", err)
		}
		if _, err := s.messageRepo.Create(inner, []*types.ThreadMessage{row}); err != nil {
			return err
		}
		if err := s.threadRepo.SetLastMessage(inner, threadUUID, row.ID); err != nil {
			return err
		}
		out, err = schemas.NewThreadMessageSchema(row)
		return err
	}

	if err = s.tx.InTx(dbc, post); err != nil {
		requestLog(s.log, dbc.Ctx).Warn("CreateThreadMessage failed", "product", req.Product, "user_email", userEmail, "error", err)
		return nil, err
	}
	return out, nil
}

// AutoTitle derives the title of a thread opened by its first message: the
// first 23 characters of content followed by "...".
func AutoTitle(content string) string {
	runes := []rune(content)
	if len(runes) > autoTitleRunes {
		runes = runes[:autoTitleRunes]
	}
	return string(runes) + autoTitleSuffix
}

func (s *threadService) ListThreadsByEmail(dbc dbctx.Context, email string, product types.Product) (out []*schemas.ThreadSchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.ListThreadsByEmail", attribute.String("thread.product", string(product)))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	out, err = s.threadRepo.ListByUserEmail(dbc, email, product)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("ListThreadsByEmail failed", "user_email", email, "product", product, "error", err)
	}
	return out, err
}

func (s *threadService) ListThreadsByAlternateID(dbc dbctx.Context, alternateID int64, product types.Product) (out []*schemas.ThreadSchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.ListThreadsByAlternateID",
		attribute.Int64("thread.alternate_id", alternateID),
		attribute.String("thread.product", string(product)),
	)
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	out, err = s.threadRepo.ListByAlternateID(dbc, alternateID, product)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("ListThreadsByAlternateID failed", "alternate_id", alternateID, "product", product, "error", err)
	}
	return out, err
}

func (s *threadService) ListMessagesByAlternateID(dbc dbctx.Context, alternateID int64, product types.Product, userID *int64) (out []*schemas.ThreadMessageSchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.ListMessagesByAlternateID",
		attribute.Int64("thread.alternate_id", alternateID),
		attribute.String("thread.product", string(product)),
	)
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	out, err = s.threadRepo.ListMessagesByAlternateID(dbc, alternateID, product, userID)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("ListMessagesByAlternateID failed", "alternate_id", alternateID, "product", product, "error", err)
	}
	return out, err
}

func (s *threadService) UpdateThreadMessage(dbc dbctx.Context, messageID int64, req schemas.UpdateMessageRequest) (out *schemas.ThreadMessageSchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.UpdateThreadMessage", attribute.Int64("message.id", messageID))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	existing, err := s.messageRepo.GetByID(dbc, messageID)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("UpdateThreadMessage lookup failed", "message_id", messageID, "error", err)
		return nil, err
	}
	if existing == nil {
		requestLog(s.log, dbc.Ctx).Debug("UpdateThreadMessage: message not found", "message_id", messageID)
		return nil, nil
	}
	if _, err = s.messageRepo.UpdateFields(dbc, messageID, req.Fields()); err != nil {
		requestLog(s.log, dbc.Ctx).Warn("UpdateThreadMessage failed", "message_id", messageID, "error", err)
		return nil, err
	}
	return s.messageRepo.GetByID(dbc, messageID)
}

func (s *threadService) SoftDeleteThread(dbc dbctx.Context, threadUUID uuid.UUID) (err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.SoftDeleteThread", attribute.String("thread.uuid", threadUUID.String()))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	if err = s.threadRepo.SoftDelete(dbc, threadUUID); err != nil {
		requestLog(s.log, dbc.Ctx).Warn("SoftDeleteThread failed", "thread_uuid", threadUUID, "error", err)
		return err
	}
	requestLog(s.log, dbc.Ctx).Info("Thread soft deleted", "thread_uuid", threadUUID)
	return nil
}

func (s *threadService) GetThreadMessages(dbc dbctx.Context, threadUUID uuid.UUID, filter *schemas.MessageFilter) (out []*schemas.ThreadMessageSchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.GetThreadMessages", attribute.String("thread.uuid", threadUUID.String()))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	out, err = s.threadRepo.ListMessages(dbc, threadUUID, filter)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("GetThreadMessages failed", "thread_uuid", threadUUID, "error", err)
	}
	return out, err
}

func (s *threadService) SearchThreadByContent(dbc dbctx.Context, query, email string, product types.Product) (out []*schemas.ThreadSchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.SearchThreadByContent", attribute.String("thread.product", string(product)))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	out, err = s.threadRepo.SearchMessages(dbc, query, email, product)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("SearchThreadByContent failed", "user_email", email, "product", product, "error", err)
	}
	return out, err
}

func (s *threadService) ListThreadsWithPagination(dbc dbctx.Context, q schemas.PageQuery) (out *schemas.ThreadPage, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadService.ListThreadsWithPagination",
		attribute.String("thread.product", string(q.Product)),
		attribute.Int("page", q.Page),
		attribute.Int("page_size", q.PageSize),
		attribute.Bool("search", q.Query != ""),
	)
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	out, err = s.threadRepo.ListWithPagination(dbc, q)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("ListThreadsWithPagination failed", "user_email", q.UserEmail, "product", q.Product, "error", err)
	}
	return out, err
}

// requestLog tags log with the request and trace ids carried by ctx.
func requestLog(log *logger.Logger, ctx context.Context) *logger.Logger {
	fields := ctxutil.LogFields(ctx)
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}
