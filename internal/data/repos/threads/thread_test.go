package threads

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/mitanshu610/chat-threads/internal/data/repos/testutil"
	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/pkg/pointers"
	"github.com/mitanshu610/chat-threads/internal/platform/apierr"
	"github.com/mitanshu610/chat-threads/internal/platform/dbctx"
	"github.com/mitanshu610/chat-threads/internal/schemas"
)

func TestThreadRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := testutil.Ctx(t)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewThreadRepo(db, testutil.Logger(t))

	th := testutil.SeedThread(t, ctx, tx, &types.Thread{
		UserEmail:   "a@example.com",
		Product:     types.ProductCoPilot,
		AlternateID: pointers.Int64(7),
		UserID:      pointers.Int64(1),
	})

	got, err := repo.GetByUUID(dbc, th.UUID)
	if err != nil || got == nil {
		t.Fatalf("GetByUUID: got=%v err=%v", got, err)
	}
	if got.UserEmail != "a@example.com" || got.Product != types.ProductCoPilot || got.IsDeleted {
		t.Fatalf("GetByUUID: unexpected thread %+v", got)
	}
	if got.Meta == nil || len(got.Meta) != 0 {
		t.Fatalf("GetByUUID: expected empty meta, got %v", got.Meta)
	}
	if missing, err := repo.GetByUUID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByUUID(missing): got=%v err=%v", missing, err)
	}

	if err := repo.Update(dbc, th.UUID, map[string]interface{}{"title": "renamed"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := repo.GetByUUID(dbc, th.UUID); got == nil || got.Title != "renamed" {
		t.Fatalf("after Update: %+v", got)
	}
	if err := repo.Update(dbc, th.UUID, map[string]interface{}{"uuid": uuid.New()}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("Update(uuid): expected validation error, got %v", err)
	}
	if err := repo.Update(dbc, th.UUID, map[string]interface{}{"is_deleted": true}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("Update(is_deleted): expected validation error, got %v", err)
	}
	if err := repo.Update(dbc, uuid.New(), map[string]interface{}{"title": "x"}); !errors.Is(err, apierr.ErrThreadUpdate) {
		t.Fatalf("Update(missing): expected ThreadUpdate, got %v", err)
	}

	if err := repo.SetLastMessage(dbc, th.UUID, 42); err != nil {
		t.Fatalf("SetLastMessage: %v", err)
	}
	if got, _ := repo.GetByUUID(dbc, th.UUID); got == nil || got.LastMessageID == nil || *got.LastMessageID != 42 {
		t.Fatalf("after SetLastMessage: %+v", got)
	}

	if rows, err := repo.ListByUserEmail(dbc, "a@example.com", types.ProductCoPilot); err != nil || len(rows) != 1 {
		t.Fatalf("ListByUserEmail: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByUserEmail(dbc, "a@example.com", types.ProductDevas); err != nil || len(rows) != 0 {
		t.Fatalf("ListByUserEmail(other product): err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByAlternateID(dbc, 7, types.ProductCoPilot); err != nil || len(rows) != 1 {
		t.Fatalf("ListByAlternateID: err=%v len=%d", err, len(rows))
	}

	if err := repo.SoftDelete(dbc, th.UUID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if got, _ := repo.GetByUUID(dbc, th.UUID); got == nil || !got.IsDeleted {
		t.Fatalf("after SoftDelete GetByUUID: %+v", got)
	}
	if err := repo.SoftDelete(dbc, th.UUID); !errors.Is(err, apierr.ErrThreadDelete) {
		t.Fatalf("SoftDelete(again): expected ThreadDelete, got %v", err)
	}
	if err := repo.Update(dbc, th.UUID, map[string]interface{}{"title": "late"}); !errors.Is(err, apierr.ErrThreadUpdate) {
		t.Fatalf("Update(deleted): expected ThreadUpdate, got %v", err)
	}
	if err := repo.SetLastMessage(dbc, th.UUID, 7); err != nil {
		t.Fatalf("SetLastMessage(deleted): %v", err)
	}
	if err := repo.SetLastMessage(dbc, uuid.New(), 7); !errors.Is(err, apierr.ErrThreadUpdate) {
		t.Fatalf("SetLastMessage(missing): expected ThreadUpdate, got %v", err)
	}
	if rows, err := repo.ListByUserEmail(dbc, "a@example.com", types.ProductCoPilot); err != nil || len(rows) != 0 {
		t.Fatalf("ListByUserEmail(after delete): err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByAlternateID(dbc, 7, types.ProductCoPilot); err != nil || len(rows) != 0 {
		t.Fatalf("ListByAlternateID(after delete): err=%v len=%d", err, len(rows))
	}
}

func TestThreadRepoListOrdering(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx(t)
	dbc := dbctx.New(ctx)
	repo := NewThreadRepo(db, testutil.Logger(t))

	older := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "o@example.com", CreatedAt: testutil.At(0)})
	newer := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "o@example.com", CreatedAt: testutil.At(10)})
	tieA := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "o@example.com", CreatedAt: testutil.At(5)})
	tieB := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "o@example.com", CreatedAt: testutil.At(5)})

	rows, err := repo.ListByUserEmail(dbc, "o@example.com", types.ProductCoPilot)
	if err != nil {
		t.Fatalf("ListByUserEmail: %v", err)
	}
	want := []uuid.UUID{newer.UUID, tieB.UUID, tieA.UUID, older.UUID}
	if len(rows) != len(want) {
		t.Fatalf("ListByUserEmail: len=%d want %d", len(rows), len(want))
	}
	for i, id := range want {
		if rows[i].UUID != id {
			t.Fatalf("ListByUserEmail[%d]: got %s want %s", i, rows[i].UUID, id)
		}
	}
}

func TestThreadRepoMessages(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := testutil.Ctx(t)
	dbc := dbctx.New(ctx).WithTx(tx)
	repo := NewThreadRepo(db, testutil.Logger(t))

	mine := testutil.SeedThread(t, ctx, tx, &types.Thread{AlternateID: pointers.Int64(9), UserID: pointers.Int64(1)})
	theirs := testutil.SeedThread(t, ctx, tx, &types.Thread{AlternateID: pointers.Int64(9), UserID: pointers.Int64(2)})
	other := testutil.SeedThread(t, ctx, tx, &types.Thread{AlternateID: pointers.Int64(9), Product: types.ProductDevas})

	m1 := testutil.SeedMessage(t, ctx, tx, mine.UUID, types.RoleUser, "question")
	m2 := testutil.SeedMessage(t, ctx, tx, mine.UUID, types.RoleAssistant, "answer")
	m3 := testutil.SeedMessage(t, ctx, tx, mine.UUID, types.RoleSystem, "note")
	testutil.SeedMessage(t, ctx, tx, theirs.UUID, types.RoleUser, "theirs")
	testutil.SeedMessage(t, ctx, tx, other.UUID, types.RoleUser, "other product")

	all, err := repo.ListMessages(dbc, mine.UUID, nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListMessages: err=%v len=%d", err, len(all))
	}
	if all[0].ID != m1.ID || all[1].ID != m2.ID || all[2].ID != m3.ID {
		t.Fatalf("ListMessages: expected ascending ids, got %d,%d,%d", all[0].ID, all[1].ID, all[2].ID)
	}
	if all[0].DisplayText != "question" || all[0].QuestionConfig == nil {
		t.Fatalf("ListMessages: unexpected mapping %+v", all[0])
	}

	filtered, err := repo.ListMessages(dbc, mine.UUID, &schemas.MessageFilter{Roles: []types.Role{types.RoleUser, types.RoleAssistant}})
	if err != nil || len(filtered) != 2 {
		t.Fatalf("ListMessages(roles): err=%v len=%d", err, len(filtered))
	}
	if _, err := repo.ListMessages(dbc, mine.UUID, &schemas.MessageFilter{Roles: []types.Role{"robot"}}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("ListMessages(bad role): expected validation error, got %v", err)
	}

	byAlt, err := repo.ListMessagesByAlternateID(dbc, 9, types.ProductCoPilot, nil)
	if err != nil || len(byAlt) != 4 {
		t.Fatalf("ListMessagesByAlternateID: err=%v len=%d", err, len(byAlt))
	}
	byUser, err := repo.ListMessagesByAlternateID(dbc, 9, types.ProductCoPilot, pointers.Int64(1))
	if err != nil || len(byUser) != 3 {
		t.Fatalf("ListMessagesByAlternateID(user): err=%v len=%d", err, len(byUser))
	}

	if err := repo.SoftDelete(dbc, mine.UUID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if rows, err := repo.ListMessagesByAlternateID(dbc, 9, types.ProductCoPilot, nil); err != nil || len(rows) != 1 {
		t.Fatalf("ListMessagesByAlternateID(after delete): err=%v len=%d", err, len(rows))
	}
	// Messages of a soft-deleted thread stay readable by uuid.
	if rows, err := repo.ListMessages(dbc, mine.UUID, nil); err != nil || len(rows) != 3 {
		t.Fatalf("ListMessages(after delete): err=%v len=%d", err, len(rows))
	}
}

func TestThreadRepoSearchMessages(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx(t)
	dbc := dbctx.New(ctx)
	repo := NewThreadRepo(db, testutil.Logger(t))

	hit := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "s@example.com"})
	testutil.SeedMessage(t, ctx, db, hit.UUID, types.RoleUser, "How do I configure Kafka?")
	testutil.SeedMessage(t, ctx, db, hit.UUID, types.RoleAssistant, "Kafka needs brokers")

	miss := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "s@example.com"})
	testutil.SeedMessage(t, ctx, db, miss.UUID, types.RoleUser, "unrelated")

	foreign := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "x@example.com"})
	testutil.SeedMessage(t, ctx, db, foreign.UUID, types.RoleUser, "kafka too")

	deleted := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "s@example.com", IsDeleted: true})
	testutil.SeedMessage(t, ctx, db, deleted.UUID, types.RoleUser, "kafka gone")

	rows, err := repo.SearchMessages(dbc, "kafka", "s@example.com", types.ProductCoPilot)
	if err != nil {
		t.Fatalf("SearchMessages: %v", err)
	}
	if len(rows) != 1 || rows[0].UUID != hit.UUID {
		t.Fatalf("SearchMessages: expected only %s once, got %d rows", hit.UUID, len(rows))
	}

	pct := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "s@example.com"})
	testutil.SeedMessage(t, ctx, db, pct.UUID, types.RoleUser, "I am 100% sure")
	plain := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "s@example.com"})
	testutil.SeedMessage(t, ctx, db, plain.UUID, types.RoleUser, "I am 1000 sure")

	rows, err = repo.SearchMessages(dbc, "100%", "s@example.com", types.ProductCoPilot)
	if err != nil {
		t.Fatalf("SearchMessages(%%): %v", err)
	}
	if len(rows) != 1 || rows[0].UUID != pct.UUID {
		t.Fatalf("SearchMessages(%%): expected literal match only, got %d rows", len(rows))
	}

	accented := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: "u@example.com"})
	testutil.SeedMessage(t, ctx, db, accented.UUID, types.RoleUser, "ÉCOLE Straße")
	for _, text := range []string{"ÉCOLE", "école", "École straße", "STRASSE"} {
		rows, err := repo.SearchMessages(dbc, text, "u@example.com", types.ProductCoPilot)
		if err != nil {
			t.Fatalf("SearchMessages(%q): %v", text, err)
		}
		if len(rows) != 1 || rows[0].UUID != accented.UUID {
			t.Fatalf("SearchMessages(%q): expected %s, got %d rows", text, accented.UUID, len(rows))
		}
	}
}

func TestThreadRepoListWithPagination(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx(t)
	dbc := dbctx.New(ctx)
	repo := NewThreadRepo(db, testutil.Logger(t))

	const email = "p@example.com"
	var seeded []*types.Thread
	for i := 0; i < 5; i++ {
		seeded = append(seeded, testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: email, CreatedAt: testutil.At(i)}))
	}
	testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: email, IsDeleted: true})
	testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: email, Product: types.ProductMermaid})

	seen := map[uuid.UUID]bool{}
	for page := 1; page <= 3; page++ {
		res, err := repo.ListWithPagination(dbc, schemas.PageQuery{UserEmail: email, Product: types.ProductCoPilot, Page: page, PageSize: 2})
		if err != nil {
			t.Fatalf("ListWithPagination(page=%d): %v", page, err)
		}
		p := res.Pagination
		if p.TotalCount != 5 || p.TotalPages != 3 || p.CurrentPage != page || p.PageSize != 2 {
			t.Fatalf("ListWithPagination(page=%d): pagination %+v", page, p)
		}
		if p.HasNext != (page < 3) || p.HasPrevious != (page > 1) {
			t.Fatalf("ListWithPagination(page=%d): flags %+v", page, p)
		}
		for _, th := range res.Threads {
			if seen[th.UUID] {
				t.Fatalf("ListWithPagination: thread %s on two pages", th.UUID)
			}
			seen[th.UUID] = true
		}
		if page == 1 && res.Threads[0].UUID != seeded[4].UUID {
			t.Fatalf("ListWithPagination: expected newest first")
		}
	}
	if len(seen) != 5 {
		t.Fatalf("ListWithPagination: pages covered %d threads, want 5", len(seen))
	}

	res, err := repo.ListWithPagination(dbc, schemas.PageQuery{UserEmail: email, Product: types.ProductCoPilot, Page: 0, PageSize: 2})
	if err != nil || res.Pagination.CurrentPage != 1 || len(res.Threads) != 2 || res.Pagination.HasPrevious {
		t.Fatalf("ListWithPagination(page=0): err=%v res=%+v", err, res)
	}

	res, err = repo.ListWithPagination(dbc, schemas.PageQuery{UserEmail: email, Product: types.ProductCoPilot, Page: 1, PageSize: 0})
	if err != nil {
		t.Fatalf("ListWithPagination(pageSize=0): %v", err)
	}
	if len(res.Threads) != 5 || res.Pagination.TotalPages != 1 || res.Pagination.HasNext {
		t.Fatalf("ListWithPagination(pageSize=0): len=%d pagination=%+v", len(res.Threads), res.Pagination)
	}

	empty, err := repo.ListWithPagination(dbc, schemas.PageQuery{UserEmail: "nobody@example.com", Product: types.ProductCoPilot, Page: 1, PageSize: 10})
	if err != nil || empty.Pagination.TotalCount != 0 || empty.Pagination.TotalPages != 0 || empty.Pagination.HasNext || len(empty.Threads) != 0 {
		t.Fatalf("ListWithPagination(empty): err=%v res=%+v", err, empty)
	}

	huge := schemas.PageQuery{UserEmail: email, Product: types.ProductCoPilot, Page: math.MaxInt/2 + 2, PageSize: 2}
	if res, err := repo.ListWithPagination(dbc, huge); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("ListWithPagination(huge page): expected validation error, got res=%+v err=%v", res, err)
	}
	last, err := repo.ListWithPagination(dbc, schemas.PageQuery{UserEmail: email, Product: types.ProductCoPilot, Page: 1000, PageSize: 2})
	if err != nil || len(last.Threads) != 0 || last.Pagination.CurrentPage != 1000 || last.Pagination.HasNext {
		t.Fatalf("ListWithPagination(past end): err=%v res=%+v", err, last)
	}

	if _, err := repo.ListWithPagination(dbc, schemas.PageQuery{Product: types.ProductCoPilot}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("ListWithPagination(no email): expected validation error, got %v", err)
	}
}

func TestThreadRepoListWithPaginationOrgAndSearch(t *testing.T) {
	db := testutil.DB(t)
	ctx := testutil.Ctx(t)
	dbc := dbctx.New(ctx)
	repo := NewThreadRepo(db, testutil.Logger(t))

	const email = "org@example.com"
	personal := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: email, CreatedAt: testutil.At(0)})
	orgA := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: email, OrgID: pointers.String("org-a"), CreatedAt: testutil.At(1)})
	orgA2 := testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: email, OrgID: pointers.String("org-a"), CreatedAt: testutil.At(2)})
	testutil.SeedThread(t, ctx, db, &types.Thread{UserEmail: email, OrgID: pointers.String("org-b")})

	testutil.SeedMessage(t, ctx, db, orgA.UUID, types.RoleUser, "Deploy the SERVICE")
	testutil.SeedMessage(t, ctx, db, orgA.UUID, types.RoleAssistant, "service deployed")
	testutil.SeedMessage(t, ctx, db, orgA2.UUID, types.RoleUser, "nothing here")
	testutil.SeedMessage(t, ctx, db, personal.UUID, types.RoleUser, "service for me")

	cases := []struct {
		name  string
		org   *string
		query string
		want  []uuid.UUID
	}{
		{"nil org", nil, "", []uuid.UUID{personal.UUID}},
		{"empty org", pointers.String(""), "", []uuid.UUID{personal.UUID}},
		{"org-a", pointers.String("org-a"), "", []uuid.UUID{orgA2.UUID, orgA.UUID}},
		{"org-a search", pointers.String("org-a"), "service", []uuid.UUID{orgA.UUID}},
		{"personal search", nil, "SERVICE", []uuid.UUID{personal.UUID}},
		{"no match", pointers.String("org-b"), "service", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := repo.ListWithPagination(dbc, schemas.PageQuery{
				UserEmail: email,
				Product:   types.ProductCoPilot,
				Page:      1,
				PageSize:  10,
				Query:     tc.query,
				OrgID:     tc.org,
			})
			if err != nil {
				t.Fatalf("ListWithPagination: %v", err)
			}
			if res.Pagination.TotalCount != int64(len(tc.want)) || len(res.Threads) != len(tc.want) {
				t.Fatalf("ListWithPagination: total=%d len=%d want %d", res.Pagination.TotalCount, len(res.Threads), len(tc.want))
			}
			for i, id := range tc.want {
				if res.Threads[i].UUID != id {
					t.Fatalf("ListWithPagination[%d]: got %s want %s", i, res.Threads[i].UUID, id)
				}
			}
		})
	}
}
