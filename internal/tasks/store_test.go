package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/storage"
)

const testKey = "academiaplan-tasks-user-1"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type failingKV struct {
	*storage.MemoryKV
	failSave bool
}

func (f *failingKV) Save(ctx context.Context, key string, blob []byte) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.MemoryKV.Save(ctx, key, blob)
}

func setupStore(t *testing.T) (*Store, *storage.MemoryKV, *fakeClock) {
	t.Helper()
	kv := storage.NewMemoryKV()
	clock := &fakeClock{now: time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)}
	seq := 0
	store, err := Open(context.Background(), kv, testKey,
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("task-%d", seq)
		}),
	)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store, kv, clock
}

func assertCompletionInvariant(t *testing.T, items []model.Task) {
	t.Helper()
	for _, item := range items {
		if (item.CompletedAt != nil) != (item.Status == model.StatusCompleted) {
			t.Fatalf("completedAt/status invariant broken: %+v", item)
		}
	}
}

func persisted(t *testing.T, kv storage.KV) []model.Task {
	t.Helper()
	blob, err := kv.Load(context.Background(), testKey)
	if err != nil {
		t.Fatalf("load persisted: %v", err)
	}
	var out []model.Task
	if err := json.Unmarshal(blob, &out); err != nil {
		t.Fatalf("decode persisted: %v", err)
	}
	return out
}

func TestOpenEmptyStore(t *testing.T) {
	store, _, _ := setupStore(t)
	if got := store.List(); len(got) != 0 {
		t.Fatalf("expected empty store, got %d tasks", len(got))
	}
}

func TestOpenRejectsCorruptBlob(t *testing.T) {
	kv := storage.NewMemoryKV()
	_ = kv.Save(context.Background(), testKey, []byte("{not json"))
	if _, err := Open(context.Background(), kv, testKey); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAddAssignsIdentityAndTimestamps(t *testing.T) {
	store, kv, clock := setupStore(t)
	ctx := context.Background()

	pending, err := store.Add(ctx, model.Draft{Title: "Essay draft", Subject: "History", DueDate: model.NewDate(2026, 2, 12)})
	if err != nil {
		t.Fatalf("add pending: %v", err)
	}
	if pending.ID != "task-1" || !pending.CreatedAt.Equal(clock.now) || pending.CompletedAt != nil {
		t.Fatalf("unexpected pending task: %+v", pending)
	}
	if pending.Status != model.StatusPending {
		t.Fatalf("expected default status Pending, got %q", pending.Status)
	}

	done, err := store.Add(ctx, model.Draft{Title: "Quiz", Subject: "Math", Status: model.StatusCompleted})
	if err != nil {
		t.Fatalf("add completed: %v", err)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(clock.now) {
		t.Fatalf("expected completedAt set on completed add: %+v", done)
	}

	saved := persisted(t, kv)
	if len(saved) != 2 || saved[0].ID != "task-1" || saved[1].ID != "task-2" {
		t.Fatalf("unexpected persisted order: %+v", saved)
	}
	assertCompletionInvariant(t, store.List())
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	store, _, _ := setupStore(t)
	_, err := store.Add(context.Background(), model.Draft{Title: "", Subject: "Math"})
	if !errors.Is(err, model.ErrInvalidDraft) {
		t.Fatalf("expected ErrInvalidDraft, got %v", err)
	}
	if len(store.List()) != 0 {
		t.Fatal("invalid draft must not be stored")
	}
}

func TestStatusTransitionsMaintainCompletedAt(t *testing.T) {
	store, _, clock := setupStore(t)
	ctx := context.Background()
	task, err := store.Add(ctx, model.Draft{Title: "Problem set", Subject: "Physics"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	clock.Advance(48 * time.Hour)
	completed, err := store.SetStatus(ctx, task.ID, model.StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.CompletedAt == nil || !completed.CompletedAt.Equal(clock.now) {
		t.Fatalf("expected completedAt at transition time: %+v", completed)
	}
	firstCompletion := *completed.CompletedAt

	clock.Advance(time.Hour)
	again, err := store.SetStatus(ctx, task.ID, model.StatusCompleted)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if !again.CompletedAt.Equal(firstCompletion) {
		t.Fatalf("completedAt must not move when already completed: %v", again.CompletedAt)
	}

	reopened, err := store.SetStatus(ctx, task.ID, model.StatusInProgress)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Fatalf("expected completedAt cleared, got %v", reopened.CompletedAt)
	}
	assertCompletionInvariant(t, store.List())

	if _, err := store.SetStatus(ctx, task.ID, model.Status("Later")); !errors.Is(err, model.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateClearsNotifiedOnlyWhenDueDateChanges(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()
	due := model.NewDate(2026, 2, 10)
	task, err := store.Add(ctx, model.Draft{Title: "Reading", Subject: "Literature", DueDate: due})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := store.MarkNotifiedIf(ctx, task.ID, due); err != nil {
		t.Fatalf("mark notified: %v", err)
	}

	same, err := store.Update(ctx, task.ID, model.Draft{Title: "Reading ch. 2", Subject: "Literature", DueDate: due})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if !same.Notified || same.Title != "Reading ch. 2" {
		t.Fatalf("title edit must keep notified: %+v", same)
	}

	moved, err := store.Update(ctx, task.ID, model.Draft{Title: "Reading ch. 2", Subject: "Literature", DueDate: due.AddDays(3)})
	if err != nil {
		t.Fatalf("update due date: %v", err)
	}
	if moved.Notified {
		t.Fatalf("due date edit must re-arm reminder: %+v", moved)
	}
	if moved.DueDate != due.AddDays(3) {
		t.Fatalf("unexpected due date: %v", moved.DueDate)
	}
}

func TestUpdateAppliesCompletionRules(t *testing.T) {
	store, _, clock := setupStore(t)
	ctx := context.Background()
	task, _ := store.Add(ctx, model.Draft{Title: "Lab", Subject: "Chemistry"})

	clock.Advance(time.Hour)
	done, err := store.Update(ctx, task.ID, model.Draft{Title: "Lab", Subject: "Chemistry", Status: model.StatusCompleted})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(clock.now) {
		t.Fatalf("expected completedAt on completion via edit: %+v", done)
	}
	if !done.CreatedAt.Equal(task.CreatedAt) || done.ID != task.ID {
		t.Fatalf("id and createdAt are immutable: %+v", done)
	}

	back, err := store.Update(ctx, task.ID, model.Draft{Title: "Lab", Subject: "Chemistry", Status: model.StatusPending})
	if err != nil {
		t.Fatalf("update back: %v", err)
	}
	if back.CompletedAt != nil {
		t.Fatalf("expected completedAt removed: %+v", back)
	}
}

func TestUnknownIDReturnsNotFound(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()
	if _, err := store.Update(ctx, "missing", model.Draft{Title: "x", Subject: "y"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if _, err := store.SetStatus(ctx, "missing", model.StatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("set status: expected ErrNotFound, got %v", err)
	}
	if err := store.Remove(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("remove: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
}

func TestRemovePersists(t *testing.T) {
	store, kv, _ := setupStore(t)
	ctx := context.Background()
	a, _ := store.Add(ctx, model.Draft{Title: "A", Subject: "S"})
	b, _ := store.Add(ctx, model.Draft{Title: "B", Subject: "S"})
	c, _ := store.Add(ctx, model.Draft{Title: "C", Subject: "S"})

	if err := store.Remove(ctx, b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	saved := persisted(t, kv)
	if len(saved) != 2 || saved[0].ID != a.ID || saved[1].ID != c.ID {
		t.Fatalf("unexpected persisted tasks after remove: %+v", saved)
	}
}

func TestFilterAndOnDate(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()
	day := model.NewDate(2026, 2, 14)
	_, _ = store.Add(ctx, model.Draft{Title: "A", Subject: "S", DueDate: day})
	_, _ = store.Add(ctx, model.Draft{Title: "B", Subject: "S", Status: model.StatusInProgress})
	_, _ = store.Add(ctx, model.Draft{Title: "C", Subject: "S", DueDate: day, Status: model.StatusCompleted})

	if got := store.Filter(""); len(got) != 3 {
		t.Fatalf("expected all tasks, got %d", len(got))
	}
	inProgress := store.Filter(model.StatusInProgress)
	if len(inProgress) != 1 || inProgress[0].Title != "B" {
		t.Fatalf("unexpected in-progress filter: %+v", inProgress)
	}
	onDay := store.OnDate(day)
	if len(onDay) != 2 || onDay[0].Title != "A" || onDay[1].Title != "C" {
		t.Fatalf("unexpected tasks on date: %+v", onDay)
	}
}

func TestSaveFailureLeavesStateUntouched(t *testing.T) {
	kv := &failingKV{MemoryKV: storage.NewMemoryKV()}
	store, err := Open(context.Background(), kv, testKey)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	task, err := store.Add(context.Background(), model.Draft{Title: "A", Subject: "S"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	kv.failSave = true
	if _, err := store.SetStatus(context.Background(), task.ID, model.StatusCompleted); err == nil {
		t.Fatal("expected save error to propagate")
	}
	got, _ := store.Get(task.ID)
	if got.Status != model.StatusPending || got.CompletedAt != nil {
		t.Fatalf("failed save must not change visible state: %+v", got)
	}
	if _, err := store.Add(context.Background(), model.Draft{Title: "B", Subject: "S"}); err == nil {
		t.Fatal("expected add to fail")
	}
	if len(store.List()) != 1 {
		t.Fatalf("failed add must not be visible, got %d tasks", len(store.List()))
	}
}

func TestReplaceAllAndReload(t *testing.T) {
	store, kv, _ := setupStore(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	items := []model.Task{
		{ID: "x", Title: "Imported", Subject: "Art", Status: model.StatusPending, CreatedAt: created},
	}
	if err := store.ReplaceAll(ctx, items); err != nil {
		t.Fatalf("replace all: %v", err)
	}
	items[0].Title = "mutated after replace"

	reopened, err := Open(ctx, kv, testKey)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reopened.List()
	if len(got) != 1 || got[0].Title != "Imported" || !got[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected reloaded tasks: %+v", got)
	}
}

func TestListReturnsCopies(t *testing.T) {
	store, _, _ := setupStore(t)
	_, _ = store.Add(context.Background(), model.Draft{Title: "A", Subject: "S"})
	items := store.List()
	items[0].Title = "changed"
	if store.List()[0].Title != "A" {
		t.Fatal("List must not expose internal state")
	}
}

func TestMutationsSeeWritesFromAnotherStore(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	seq := 0
	gen := WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("task-%d", seq)
	})
	daemon, err := Open(ctx, kv, testKey, gen)
	if err != nil {
		t.Fatalf("open daemon store: %v", err)
	}
	essay, err := daemon.Add(ctx, model.Draft{Title: "Essay", Subject: "English"})
	if err != nil {
		t.Fatalf("add essay: %v", err)
	}

	cli, err := Open(ctx, kv, testKey, gen)
	if err != nil {
		t.Fatalf("open cli store: %v", err)
	}
	if _, err := cli.Add(ctx, model.Draft{Title: "Lab report", Subject: "Physics"}); err != nil {
		t.Fatalf("add lab report: %v", err)
	}

	if _, err := daemon.SetStatus(ctx, essay.ID, model.StatusInProgress); err != nil {
		t.Fatalf("set status: %v", err)
	}
	reopened, err := Open(ctx, kv, testKey)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reopened.List()
	if len(got) != 2 || got[0].Status != model.StatusInProgress || got[1].Title != "Lab report" {
		t.Fatalf("stale write dropped tasks: %+v", got)
	}

	if err := daemon.Remove(ctx, essay.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := cli.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if left := cli.List(); len(left) != 1 || left[0].Title != "Lab report" {
		t.Fatalf("unexpected tasks after remove: %+v", left)
	}
}

func TestMarkNotifiedIfChecksCurrentState(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()
	due := model.NewDate(2026, 2, 10)

	tests := []struct {
		name   string
		setup  func(id string)
		due    model.Date
		marked bool
	}{
		{name: "eligible", setup: func(string) {}, due: due, marked: true},
		{name: "due date moved", setup: func(id string) {
			_, _ = store.Update(ctx, id, model.Draft{Title: "T", Subject: "S", DueDate: due.AddDays(7)})
		}, due: due, marked: false},
		{name: "completed", setup: func(id string) {
			_, _ = store.SetStatus(ctx, id, model.StatusCompleted)
		}, due: due, marked: false},
		{name: "already notified", setup: func(id string) {
			_, _, _ = store.MarkNotifiedIf(ctx, id, due)
		}, due: due, marked: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task, err := store.Add(ctx, model.Draft{Title: "T", Subject: "S", DueDate: due})
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			tc.setup(task.ID)
			before, _ := store.Get(task.ID)
			got, marked, err := store.MarkNotifiedIf(ctx, task.ID, tc.due)
			if err != nil {
				t.Fatalf("mark: %v", err)
			}
			if marked != tc.marked {
				t.Fatalf("marked = %v, want %v", marked, tc.marked)
			}
			if !marked && got.Notified != before.Notified {
				t.Fatalf("unmarked call changed notified: %+v", got)
			}
		})
	}

	if _, _, err := store.MarkNotifiedIf(ctx, "missing", due); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
