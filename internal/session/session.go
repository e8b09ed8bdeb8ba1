// Package session composes one user's stores, reminder scheduler and
// notifier. A Session is the only handle surfaces need.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/academiaplan/internal/analytics"
	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/notify"
	"github.com/sandeepkv93/academiaplan/internal/scheduler"
	"github.com/sandeepkv93/academiaplan/internal/settings"
	"github.com/sandeepkv93/academiaplan/internal/storage"
	"github.com/sandeepkv93/academiaplan/internal/tasks"
)

var ErrNoUser = errors.New("session: user id is required")

type Config struct {
	App           string
	UserID        string
	SweepInterval time.Duration
	EventBuffer   int
	Clock         func() time.Time
	Logger        *zap.Logger
}

type Session struct {
	userID   string
	app      string
	kv       storage.KV
	Tasks    *tasks.Store
	Settings *settings.Store
	notifier notify.Notifier
	engine   *scheduler.Engine
	now      func() time.Time
	log      *zap.Logger
}

func Open(ctx context.Context, kv storage.KV, notifier notify.Notifier, cfg Config) (*Session, error) {
	userID := strings.TrimSpace(cfg.UserID)
	if userID == "" {
		return nil, ErrNoUser
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("user_id", userID))

	taskStore, err := tasks.Open(ctx, kv, storage.TasksKey(cfg.App, userID),
		tasks.WithClock(now),
		tasks.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	settingsStore, err := settings.Open(ctx, kv, storage.SettingsKey(cfg.App, userID), log)
	if err != nil {
		return nil, err
	}

	s := &Session{
		userID:   userID,
		app:      cfg.App,
		kv:       kv,
		Tasks:    taskStore,
		Settings: settingsStore,
		notifier: notifier,
		now:      now,
		log:      log,
	}
	sweeper := scheduler.Sweeper{Tasks: taskStore, Settings: settingsStore, Notifier: notifier, Log: log}
	s.engine = scheduler.NewEngine(sweeper.Sweep, cfg.EventBuffer,
		scheduler.WithInterval(cfg.SweepInterval),
		scheduler.WithClock(now),
		scheduler.WithLogger(log),
	)
	return s, nil
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) Now() time.Time { return s.now() }

// LastSaved reports the most recent write to this user's tasks or
// settings. ok is false when the store keeps no timestamps or nothing has
// been saved yet.
func (s *Session) LastSaved(ctx context.Context) (at time.Time, ok bool, err error) {
	ts, isTimestamped := s.kv.(storage.Timestamped)
	if !isTimestamped {
		return time.Time{}, false, nil
	}
	for _, key := range []string{storage.TasksKey(s.app, s.userID), storage.SettingsKey(s.app, s.userID)} {
		t, err := ts.UpdatedAt(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return time.Time{}, false, fmt.Errorf("last saved %s: %w", key, err)
		}
		if t.After(at) {
			at, ok = t, true
		}
	}
	return at, ok, nil
}

// Start begins the periodic reminder sweep.
func (s *Session) Start() {
	s.engine.Start()
	s.log.Debug("reminder scheduler started", zap.Duration("interval", s.engine.Interval()))
}

// Close stops the reminder sweep. No reminder fires for this user after
// Close returns.
func (s *Session) Close() {
	s.engine.Stop()
	s.log.Debug("session closed")
}

// Reminders delivers reminders fired by the background sweep.
func (s *Session) Reminders() <-chan scheduler.Reminder {
	return s.engine.C()
}

func (s *Session) DroppedReminders() uint64 {
	return s.engine.Dropped()
}

// SweepOnce runs a single reminder pass now.
func (s *Session) SweepOnce(ctx context.Context) ([]scheduler.Reminder, error) {
	return s.engine.RunOnce(ctx)
}

func (s *Session) Permission() notify.Permission {
	return s.notifier.Permission()
}

// SetNotifications toggles reminders. Turning them on asks for permission
// first; if it is refused the toggle stays off and ErrPermissionDenied is
// returned.
func (s *Session) SetNotifications(ctx context.Context, enabled bool) (model.Settings, error) {
	if enabled && s.notifier.Permission() != notify.PermissionGranted {
		perm, err := s.notifier.RequestPermission(ctx)
		if err != nil {
			return s.Settings.Get(), fmt.Errorf("request notification permission: %w", err)
		}
		if perm != notify.PermissionGranted {
			off := false
			current, err := s.Settings.Update(ctx, model.SettingsPatch{Notifications: &off})
			if err != nil {
				return current, err
			}
			s.log.Info("notification permission refused", zap.String("permission", string(perm)))
			return current, notify.ErrPermissionDenied
		}
	}
	return s.Settings.Update(ctx, model.SettingsPatch{Notifications: &enabled})
}

// ResumeNotifications re-asks for permission when reminders were left on
// by an earlier run but this process has not been granted it yet. A
// refusal is logged and the stored setting is left alone.
func (s *Session) ResumeNotifications(ctx context.Context) notify.Permission {
	if !s.Settings.Get().Notifications || s.notifier.Permission() != notify.PermissionDefault {
		return s.notifier.Permission()
	}
	perm, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		s.log.Warn("request notification permission", zap.Error(err))
	}
	return perm
}

func (s *Session) SetReminderTime(ctx context.Context, hours int) (model.Settings, error) {
	return s.Settings.Update(ctx, model.SettingsPatch{ReminderTime: &hours})
}

func (s *Session) Dashboard() analytics.Summary {
	return analytics.Summarize(s.Tasks.List(), s.Settings.Get(), s.now())
}

func (s *Session) Calendar(year int, month time.Month) analytics.Calendar {
	return analytics.CalendarFor(s.Tasks.List(), s.now(), year, month)
}

func (s *Session) Analytics() analytics.Report {
	return analytics.Analyze(s.Tasks.List(), s.now())
}
