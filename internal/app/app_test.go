package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mitanshu610/chat-threads/internal/db"
	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
	"github.com/mitanshu610/chat-threads/internal/schemas"
)

func TestNewWithSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	cfg.DB = db.Config{
		Driver: db.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	require.NoError(t, a.Ping())
	require.NoError(t, a.Migrate())

	dbc := dbctx.New(ctx)
	th, err := a.Services.Thread.CreateThread(dbc, schemas.CreateThreadRequest{
		Product:     types.ProductCoPilot,
		RequestedBy: "app@example.com",
	})
	require.NoError(t, err)

	got, err := a.Repos.Thread.GetByUUID(dbc, th.UUID)
	require.NoError(t, err)
	require.Equal(t, th.UUID, got.UUID)
}

func TestNilApp(t *testing.T) {
	var nilApp *App
	require.NoError(t, nilApp.Close(context.Background()))
	require.Error(t, nilApp.Ping())
}
