package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
)

// SeedThread inserts t after filling blank owner, product and title.
func SeedThread(tb testing.TB, ctx context.Context, tx *gorm.DB, t *types.Thread) *types.Thread {
	tb.Helper()
	if t == nil {
		t = &types.Thread{}
	}
	if t.UserEmail == "" {
		t.UserEmail = "owner@example.com"
	}
	if t.Product == "" {
		t.Product = types.ProductCoPilot
	}
	if t.Title == "" {
		t.Title = "thread"
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed thread: %v", err)
	}
	return t
}

func SeedMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, threadUUID uuid.UUID, role types.Role, content string) *types.ThreadMessage {
	tb.Helper()
	m := &types.ThreadMessage{
		ThreadUUID:     threadUUID,
		Role:           role,
		Content:        content,
		DisplayText:    content,
		QuestionConfig: datatypes.JSON([]byte("{}")),
		PromptDetails:  datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed message: %v", err)
	}
	return m
}

func SeedSummary(tb testing.TB, ctx context.Context, tx *gorm.DB, threadUUID uuid.UUID, messageID *int64, text string) *types.ThreadMessageSummary {
	tb.Helper()
	s := &types.ThreadMessageSummary{
		UUID:            uuid.New(),
		ThreadUUID:      threadUUID,
		ThreadMessageID: messageID,
		Summary:         text,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed summary: %v", err)
	}
	return s
}

// At returns a fixed UTC instant offset by n seconds, for deterministic
// created_at ordering.
func At(n int) time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Second)
}
