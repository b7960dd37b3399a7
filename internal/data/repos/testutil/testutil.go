package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mitanshu610/chat-threads/internal/db"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.NewWithLevel("test", "warn")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a private in-memory SQLite store with the thread tables migrated.
// Each call gets its own database, closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	svc, err := db.Open(db.Config{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, Logger(tb))
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	tb.Cleanup(func() {
		_ = svc.Close()
	})
	if err := svc.AutoMigrateAll(); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return svc.DB()
}

// Tx begins a transaction rolled back at cleanup. The test store holds a
// single connection, so nothing may use the root handle while tx is open.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func Ctx(tb testing.TB) context.Context {
	tb.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)
	return ctx
}
