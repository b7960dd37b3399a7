package threads

import (
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/mitanshu610/chat-threads/internal/data/repos/testutil"
	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/platform/apierr"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
)

func TestThreadMessageRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := testutil.Ctx(t)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewThreadMessageRepo(db, testutil.Logger(t))

	th := testutil.SeedThread(t, ctx, tx, nil)

	first := &types.ThreadMessage{ThreadUUID: th.UUID, Role: types.RoleUser, Content: "hello", CreatedAt: testutil.At(1)}
	second := &types.ThreadMessage{ThreadUUID: th.UUID, Role: types.RoleAssistant, Content: "hi", DisplayText: "Hi!", CreatedAt: testutil.At(0)}
	rows, err := repo.Create(dbc, []*types.ThreadMessage{first, second})
	if err != nil || len(rows) != 2 {
		t.Fatalf("Create: err=%v len=%d", err, len(rows))
	}
	if first.ID == 0 || second.ID == 0 {
		t.Fatalf("Create: ids not assigned")
	}
	if first.DisplayText != "hello" {
		t.Fatalf("Create: expected display_text to default to content, got %q", first.DisplayText)
	}
	if _, err := repo.Create(dbc, []*types.ThreadMessage{{ThreadUUID: th.UUID, Role: "robot"}}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("Create(bad role): expected validation error, got %v", err)
	}

	got, err := repo.GetByID(dbc, first.ID)
	if err != nil || got == nil || got.Content != "hello" || got.ThreadUUID != th.UUID {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if missing, err := repo.GetByID(dbc, first.ID+1000); err != nil || missing != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", missing, err)
	}

	listed, err := repo.ListByThreadUUID(dbc, th.UUID)
	if err != nil || len(listed) != 2 {
		t.Fatalf("ListByThreadUUID: err=%v len=%d", err, len(listed))
	}
	if listed[0].ID != second.ID {
		t.Fatalf("ListByThreadUUID: expected creation order, got first id %d", listed[0].ID)
	}

	ok, err := repo.UpdateFields(dbc, first.ID, map[string]interface{}{
		"content":         "hello again",
		"is_disliked":     true,
		"question_config": datatypes.JSON([]byte(`{"k":"v"}`)),
	})
	if err != nil || !ok {
		t.Fatalf("UpdateFields: ok=%v err=%v", ok, err)
	}
	got, _ = repo.GetByID(dbc, first.ID)
	if got == nil || got.Content != "hello again" || got.IsDisliked == nil || !*got.IsDisliked || got.QuestionConfig["k"] != "v" {
		t.Fatalf("after UpdateFields: %+v", got)
	}
	if ok, err := repo.UpdateFields(dbc, first.ID+1000, map[string]interface{}{"content": "x"}); err != nil || ok {
		t.Fatalf("UpdateFields(missing): ok=%v err=%v", ok, err)
	}
	if _, err := repo.UpdateFields(dbc, first.ID, map[string]interface{}{"thread_uuid": th.UUID}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("UpdateFields(thread_uuid): expected validation error, got %v", err)
	}
	if _, err := repo.UpdateFields(dbc, first.ID, nil); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("UpdateFields(empty): expected validation error, got %v", err)
	}
}
