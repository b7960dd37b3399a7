package services

import (
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mitanshu610/chat-threads/internal/data/repos"
	"github.com/mitanshu610/chat-threads/internal/observability"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
	"github.com/mitanshu610/chat-threads/internal/schemas"
)

type ThreadSummaryService interface {
	CreateSummary(dbc dbctx.Context, req schemas.CreateSummaryRequest) (*schemas.ThreadMessageSummarySchema, error)
	UpdateSummary(dbc dbctx.Context, summaryUUID uuid.UUID, req schemas.UpdateSummaryRequest) error
	GetSummariesForMessages(dbc dbctx.Context, messageIDs []int64) ([]*schemas.ThreadMessageSummarySchema, error)
}

type threadSummaryService struct {
	log         *logger.Logger
	summaryRepo repos.ThreadMessageSummaryRepo
}

func NewThreadSummaryService(log *logger.Logger, summaryRepo repos.ThreadMessageSummaryRepo) ThreadSummaryService {
	return &threadSummaryService{
		log:         log.With("service", "ThreadSummaryService"),
		summaryRepo: summaryRepo,
	}
}

func (s *threadSummaryService) CreateSummary(dbc dbctx.Context, req schemas.CreateSummaryRequest) (out *schemas.ThreadMessageSummarySchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadSummaryService.CreateSummary", attribute.String("thread.uuid", req.ThreadUUID.String()))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	if err = schemas.Validate("create summary", req); err != nil {
		return nil, err
	}
	row, err := s.summaryRepo.Create(dbc, req.ThreadUUID, req.ThreadMessageID, req.Summary)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("CreateSummary failed", "thread_uuid", req.ThreadUUID, "error", err)
		return nil, err
	}
	return schemas.NewThreadMessageSummarySchema(row)
}

func (s *threadSummaryService) UpdateSummary(dbc dbctx.Context, summaryUUID uuid.UUID, req schemas.UpdateSummaryRequest) (err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadSummaryService.UpdateSummary", attribute.String("summary.uuid", summaryUUID.String()))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	if err = s.summaryRepo.Update(dbc, summaryUUID, req.Fields()); err != nil {
		requestLog(s.log, dbc.Ctx).Warn("UpdateSummary failed", "summary_uuid", summaryUUID, "error", err)
		return err
	}
	return nil
}

func (s *threadSummaryService) GetSummariesForMessages(dbc dbctx.Context, messageIDs []int64) (out []*schemas.ThreadMessageSummarySchema, err error) {
	ctx, span := observability.StartSpan(dbc.Ctx, "ThreadSummaryService.GetSummariesForMessages", attribute.Int("message.count", len(messageIDs)))
	defer observability.End(span, &err)
	dbc.Ctx = ctx

	rows, err := s.summaryRepo.GetByMessageIDs(dbc, messageIDs)
	if err != nil {
		requestLog(s.log, dbc.Ctx).Warn("GetSummariesForMessages failed", "count", len(messageIDs), "error", err)
		return nil, err
	}
	return schemas.NewThreadMessageSummarySchemas(rows)
}
