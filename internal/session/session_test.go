package session

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/notify"
	"github.com/sandeepkv93/academiaplan/internal/storage"
	"github.com/sandeepkv93/academiaplan/internal/tasks"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type flakyKV struct {
	*storage.MemoryKV
	failKey string
}

func (f *flakyKV) Save(ctx context.Context, key string, blob []byte) error {
	if key == f.failKey {
		return errors.New("write failed")
	}
	return f.MemoryKV.Save(ctx, key, blob)
}

func openSession(t *testing.T, kv storage.KV, n notify.Notifier, user string) *Session {
	t.Helper()
	s, err := Open(context.Background(), kv, n, Config{
		UserID:        user,
		SweepInterval: time.Hour,
		EventBuffer:   8,
		Clock:         func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func addTask(t *testing.T, s *Session, title string, due model.Date, status model.Status) model.Task {
	t.Helper()
	task, err := s.Tasks.Add(context.Background(), model.Draft{Title: title, Subject: "History", DueDate: due, Status: status})
	if err != nil {
		t.Fatalf("add %s: %v", title, err)
	}
	return task
}

func TestOpenRequiresUser(t *testing.T) {
	if _, err := Open(context.Background(), storage.NewMemoryKV(), nil, Config{UserID: "  "}); !errors.Is(err, ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

func TestSessionsAreNamespacedByUser(t *testing.T) {
	kv := storage.NewMemoryKV()
	alice := openSession(t, kv, nil, "alice")
	addTask(t, alice, "Essay", model.Date{}, model.StatusPending)

	bob := openSession(t, kv, nil, "bob")
	if len(bob.Tasks.List()) != 0 {
		t.Fatal("bob must not see alice's tasks")
	}
	if _, err := kv.Load(context.Background(), "academiaplan-tasks-alice"); err != nil {
		t.Fatalf("expected namespaced key: %v", err)
	}
}

func TestSetNotificationsPermissionDenied(t *testing.T) {
	s := openSession(t, storage.NewMemoryKV(), &notify.Recorder{Grant: false}, "u1")
	got, err := s.SetNotifications(context.Background(), true)
	if !errors.Is(err, notify.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if got.Notifications || s.Settings.Get().Notifications {
		t.Fatal("toggle must stay off when permission is refused")
	}
}

func TestSetNotificationsGranted(t *testing.T) {
	rec := &notify.Recorder{Grant: true}
	s := openSession(t, storage.NewMemoryKV(), rec, "u1")
	got, err := s.SetNotifications(context.Background(), true)
	if err != nil || !got.Notifications {
		t.Fatalf("expected notifications on, got %+v (%v)", got, err)
	}
	if s.Permission() != notify.PermissionGranted {
		t.Fatalf("expected granted permission, got %s", s.Permission())
	}
	addTask(t, s, "Paper", model.DateOf(testNow).AddDays(1), model.StatusPending)
	fired, err := s.SweepOnce(context.Background())
	if err != nil || len(fired) != 1 {
		t.Fatalf("expected one reminder, got %d (%v)", len(fired), err)
	}
	if _, err := s.SetNotifications(context.Background(), false); err != nil {
		t.Fatalf("disable: %v", err)
	}
}

func TestResumeNotificationsAsksAgainOnNewProcess(t *testing.T) {
	kv := storage.NewMemoryKV()
	first := openSession(t, kv, &notify.Recorder{Grant: true}, "u1")
	if _, err := first.SetNotifications(context.Background(), true); err != nil {
		t.Fatalf("enable: %v", err)
	}

	fresh := &notify.Recorder{Grant: true}
	second := openSession(t, kv, fresh, "u1")
	if second.Permission() != notify.PermissionDefault {
		t.Fatalf("new notifier should start undecided, got %s", second.Permission())
	}
	if got := second.ResumeNotifications(context.Background()); got != notify.PermissionGranted {
		t.Fatalf("expected granted after resume, got %s", got)
	}

	off := openSession(t, storage.NewMemoryKV(), &notify.Recorder{Grant: true}, "u2")
	if got := off.ResumeNotifications(context.Background()); got != notify.PermissionDefault {
		t.Fatalf("reminders off must not prompt, got %s", got)
	}
}

func TestSetReminderTimeRejectsUnknownOption(t *testing.T) {
	s := openSession(t, storage.NewMemoryKV(), nil, "u1")
	if _, err := s.SetReminderTime(context.Background(), 5); !errors.Is(err, model.ErrInvalidReminderTime) {
		t.Fatalf("expected ErrInvalidReminderTime, got %v", err)
	}
	got, err := s.SetReminderTime(context.Background(), 168)
	if err != nil || got.ReminderTime != 168 {
		t.Fatalf("unexpected settings %+v (%v)", got, err)
	}
}

func TestDerivedViews(t *testing.T) {
	s := openSession(t, storage.NewMemoryKV(), nil, "u1")
	addTask(t, s, "Done", model.DateOf(testNow), model.StatusCompleted)
	addTask(t, s, "Late", model.DateOf(testNow).AddDays(-1), model.StatusPending)

	if d := s.Dashboard(); d.Total != 2 || d.SuccessRate != 50 {
		t.Fatalf("unexpected dashboard: %+v", d)
	}
	if c := s.Calendar(2026, time.October); c.Overdue != 1 || c.MonthTasks != 2 {
		t.Fatalf("unexpected calendar: %+v", c)
	}
	if r := s.Analytics(); r.Overdue != 1 || r.ActiveSubjects() != 1 {
		t.Fatalf("unexpected report: %+v", r)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := openSession(t, storage.NewMemoryKV(), &notify.Recorder{Grant: true}, "u1")
	addTask(t, src, "Essay", model.DateOf(testNow).AddDays(3), model.StatusPending)
	addTask(t, src, "Lab", model.Date{}, model.StatusCompleted)
	if _, err := src.SetReminderTime(context.Background(), 48); err != nil {
		t.Fatalf("set reminder: %v", err)
	}
	exported, err := src.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := openSession(t, storage.NewMemoryKV(), nil, "u2")
	doc, err := dst.Import(context.Background(), exported)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(doc.Tasks) != 2 || dst.Settings.Get().ReminderTime != 48 {
		t.Fatalf("unexpected import result: %+v", doc)
	}
	again, err := dst.Export()
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if !bytes.Equal(exported, again) {
		t.Fatalf("round trip changed data:\n%s\n---\n%s", exported, again)
	}
}

func TestImportRejectsMalformedDocuments(t *testing.T) {
	cases := map[string]string{
		"tasks object":   `{"tasks": {"id": "1"}, "settings": {}}`,
		"tasks string":   `{"tasks": "nope", "settings": {}}`,
		"missing tasks":  `{"settings": {}}`,
		"settings array": `{"tasks": [], "settings": []}`,
		"not json":       `tasks: []`,
		"bad task":       `{"tasks": [{"dueDate": 12}], "settings": {}}`,
		"duplicate ids":  `{"tasks": [{"id": "a", "title": "One"}, {"id": "a", "title": "Two"}], "settings": {}}`,
	}
	for name, body := range cases {
		s := openSession(t, storage.NewMemoryKV(), nil, "u1")
		existing := addTask(t, s, "Keep", model.Date{}, model.StatusPending)
		if _, err := s.Import(context.Background(), []byte(body)); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("%s: expected ErrInvalidFormat, got %v", name, err)
		}
		list := s.Tasks.List()
		if len(list) != 1 || list[0].ID != existing.ID {
			t.Fatalf("%s: store changed after rejected import: %+v", name, list)
		}
	}
}

func TestImportRestoresTasksWhenSettingsSaveFails(t *testing.T) {
	kv := &flakyKV{MemoryKV: storage.NewMemoryKV()}
	s := openSession(t, kv, nil, "u1")
	keep := addTask(t, s, "Keep", model.Date{}, model.StatusPending)

	kv.failKey = storage.SettingsKey("", "u1")
	body := `{"tasks": [], "settings": {"notifications": false, "reminderTime": 1}}`
	if _, err := s.Import(context.Background(), []byte(body)); err == nil {
		t.Fatal("expected settings save failure")
	}
	list := s.Tasks.List()
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Fatalf("tasks not restored: %+v", list)
	}
	if _, err := s.Tasks.Get(keep.ID); errors.Is(err, tasks.ErrNotFound) {
		t.Fatal("restored task missing")
	}
}

func TestClearAll(t *testing.T) {
	s := openSession(t, storage.NewMemoryKV(), nil, "u1")
	addTask(t, s, "Essay", model.Date{}, model.StatusPending)
	if _, err := s.SetReminderTime(context.Background(), 1); err != nil {
		t.Fatalf("set reminder: %v", err)
	}
	if err := s.ClearAll(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(s.Tasks.List()) != 0 || s.Settings.Get() != model.DefaultSettings() {
		t.Fatalf("expected empty store and default settings")
	}
	out, _ := s.Export()
	if !strings.Contains(string(out), `"tasks": []`) {
		t.Fatalf("expected empty task array in export:\n%s", out)
	}
}

func TestManagerSwitchesUsers(t *testing.T) {
	kv := storage.NewMemoryKV()
	m := NewManager(kv, nil, Config{SweepInterval: time.Hour, Clock: func() time.Time { return testNow }})
	first, err := m.SignIn(context.Background(), "alice")
	if err != nil {
		t.Fatalf("sign in alice: %v", err)
	}
	addTask(t, first, "Alice task", model.Date{}, model.StatusPending)

	second, err := m.SignIn(context.Background(), "bob")
	if err != nil {
		t.Fatalf("sign in bob: %v", err)
	}
	if m.Current() != second {
		t.Fatal("expected bob's session to be current")
	}
	select {
	case _, ok := <-first.Reminders():
		if ok {
			t.Fatal("unexpected reminder from previous session")
		}
	case <-time.After(time.Second):
		t.Fatal("previous session scheduler still running")
	}
	if len(second.Tasks.List()) != 0 {
		t.Fatal("bob must start with an empty list")
	}
	m.SignOut()
	if m.Current() != nil {
		t.Fatal("expected no session after sign out")
	}
	if _, err := m.SignIn(context.Background(), ""); !errors.Is(err, ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

func TestDaemonAndCommandShareOneDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "academiaplan.db")
	openKV := func() *storage.SQLiteKV {
		kv, err := storage.OpenSQLite(path)
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = kv.Close() })
		return kv
	}

	daemon := openSession(t, openKV(), &notify.Recorder{Grant: true}, "u1")
	if _, err := daemon.SetNotifications(ctx, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	tomorrow := model.DateOf(testNow).AddDays(1)
	addTask(t, daemon, "Essay", tomorrow, model.StatusPending)

	command := openSession(t, openKV(), nil, "u1")
	addTask(t, command, "Lab report", tomorrow.AddDays(5), model.StatusPending)

	fired, err := daemon.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(fired) != 1 || !strings.Contains(fired[0].Body, "Essay") {
		t.Fatalf("unexpected reminders: %+v", fired)
	}

	quiz := addTask(t, command, "Quiz", tomorrow, model.StatusPending)
	fired, err = daemon.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(fired) != 1 || fired[0].TaskID != quiz.ID {
		t.Fatalf("task added by another process was not reminded: %+v", fired)
	}

	reader := openSession(t, openKV(), nil, "u1")
	var titles []string
	for _, task := range reader.Tasks.List() {
		titles = append(titles, task.Title)
	}
	if strings.Join(titles, ",") != "Essay,Lab report,Quiz" {
		t.Fatalf("persisted tasks after daemon sweeps: %v", titles)
	}
}

// plainKV hides any write timestamps of the wrapped store.
type plainKV struct {
	storage.KV
}

func TestLastSaved(t *testing.T) {
	ctx := context.Background()
	kv, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "academiaplan.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	s := openSession(t, kv, nil, "u1")
	if _, ok, err := s.LastSaved(ctx); err != nil || ok {
		t.Fatalf("nothing saved yet: ok=%v err=%v", ok, err)
	}
	addTask(t, s, "Essay", model.Date{}, model.StatusPending)
	at, ok, err := s.LastSaved(ctx)
	if err != nil || !ok || at.IsZero() {
		t.Fatalf("expected a save time: %v ok=%v err=%v", at, ok, err)
	}

	untimed := openSession(t, plainKV{storage.NewMemoryKV()}, nil, "u1")
	addTask(t, untimed, "Essay", model.Date{}, model.StatusPending)
	if _, ok, err := untimed.LastSaved(ctx); err != nil || ok {
		t.Fatalf("store without timestamps: ok=%v err=%v", ok, err)
	}
}
