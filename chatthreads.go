// Package chatthreads persists chat threads, their messages and per-message
// summaries on Postgres or SQLite through gorm.
//
// Consumers either hand over an open *gorm.DB with New, or let Open build
// the connection, tracing and logger from a Config.
package chatthreads

import (
	"context"

	"gorm.io/gorm"

	"github.com/mitanshu610/chat-threads/internal/app"
	"github.com/mitanshu610/chat-threads/internal/db"
	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/platform/apierr"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
	"github.com/mitanshu610/chat-threads/internal/schemas"
	"github.com/mitanshu610/chat-threads/internal/services"
)

type (
	Thread               = types.Thread
	ThreadMessage        = types.ThreadMessage
	ThreadMessageSummary = types.ThreadMessageSummary
	Product              = types.Product
	Role                 = types.Role

	ThreadSchema               = schemas.ThreadSchema
	ThreadMessageSchema        = schemas.ThreadMessageSchema
	ThreadMessageSummarySchema = schemas.ThreadMessageSummarySchema
	CreateThreadRequest        = schemas.CreateThreadRequest
	UpdateThreadRequest        = schemas.UpdateThreadRequest
	CreateMessageRequest       = schemas.CreateMessageRequest
	UpdateMessageRequest       = schemas.UpdateMessageRequest
	CreateSummaryRequest       = schemas.CreateSummaryRequest
	UpdateSummaryRequest       = schemas.UpdateSummaryRequest
	MessageFilter              = schemas.MessageFilter
	PageQuery                  = schemas.PageQuery
	Pagination                 = schemas.Pagination
	ThreadPage                 = schemas.ThreadPage

	ThreadService        = services.ThreadService
	ThreadSummaryService = services.ThreadSummaryService

	// DBContext carries the request context and an optional transaction.
	DBContext = dbctx.Context
	Error     = apierr.Error
	Config    = app.Config
	DBConfig  = db.Config
	Logger    = logger.Logger
)

const (
	ProductCoPilot    = types.ProductCoPilot
	ProductDocCreator = types.ProductDocCreator
	ProductDevas      = types.ProductDevas
	ProductMermaid    = types.ProductMermaid
	ProductAgentix    = types.ProductAgentix

	RoleUser      = types.RoleUser
	RoleSystem    = types.RoleSystem
	RoleAssistant = types.RoleAssistant
)

var (
	ErrThreadUpdate     = apierr.ErrThreadUpdate
	ErrThreadDelete     = apierr.ErrThreadDelete
	ErrSummaryUpdate    = apierr.ErrSummaryUpdate
	ErrValidation       = apierr.ErrValidation
	ErrConflict         = apierr.ErrConflict
	ErrInvalidReference = apierr.ErrInvalidReference
)

type Client struct {
	Threads   ThreadService
	Summaries ThreadSummaryService

	app *app.App
}

// New wires the services over theDB. The caller keeps ownership of theDB;
// a nil log discards output.
func New(theDB *gorm.DB, log *Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	a := app.Wire(theDB, log)
	return &Client{Threads: a.Services.Thread, Summaries: a.Services.Summary, app: a}
}

// Open connects using cfg and owns the connection until Close.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{Threads: a.Services.Thread, Summaries: a.Services.Summary, app: a}, nil
}

func LoadConfig(path string) (Config, error) { return app.LoadConfig(path) }

func DefaultConfig() Config { return app.DefaultConfig() }

// Migrate creates or updates the thread tables on theDB. On Postgres it also
// installs the foreign keys between them.
func Migrate(theDB *gorm.DB) error { return db.AutoMigrate(theDB, logger.Nop()) }

func NewDBContext(ctx context.Context) DBContext { return dbctx.New(ctx) }

// CodeOf returns the numeric error code carried by err, or 0.
func CodeOf(err error) int { return apierr.CodeOf(err) }

func (c *Client) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.app.Close(ctx)
}
