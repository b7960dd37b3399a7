package dbctx

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// A nil Tx means "use the repo's root handle".
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// New returns a Context without a transaction.
func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// WithTx returns a copy of c bound to tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}

// DB resolves the handle a statement should run on, scoped to c.Ctx.
func (c Context) DB(root *gorm.DB) *gorm.DB {
	txx := c.Tx
	if txx == nil {
		txx = root
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return txx.WithContext(ctx)
}

// TxRunner provides the transaction boundary for multi-statement writes.
type TxRunner interface {
	InTx(dbc Context, fn func(dbc Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

// InTx joins dbc.Tx when the caller already holds a transaction and opens a
// new one on the root handle otherwise.
func (r *gormTxRunner) InTx(dbc Context, fn func(dbc Context) error) error {
	if fn == nil {
		return nil
	}
	if dbc.Tx != nil {
		return fn(dbc)
	}
	if r == nil || r.db == nil {
		return errors.New("dbctx: transaction runner has nil db")
	}
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}
