package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/notify"
	"github.com/sandeepkv93/academiaplan/internal/tasks"
	"github.com/sandeepkv93/academiaplan/internal/temporal"
)

const ReminderTitle = "AcademiaPlan Reminder"

// Reminder is one fired notification.
type Reminder struct {
	TaskID  string
	Title   string
	Body    string
	DueDate model.Date
	FiredAt time.Time
}

func ReminderBody(taskTitle string) string {
	return fmt.Sprintf("Task \"%s\" is due soon!", taskTitle)
}

// TaskSource is the task store as the sweep sees it. Reload pulls in
// writes made by other processes before each pass.
type TaskSource interface {
	Reload(ctx context.Context) error
	List() []model.Task
	Get(id string) (model.Task, error)
	MarkNotifiedIf(ctx context.Context, id string, due model.Date) (model.Task, bool, error)
}

type SettingsSource interface {
	Reload(ctx context.Context) error
	Get() model.Settings
}

// Sweeper fires each due-soon reminder at most once. A task is re-armed
// only when its due date changes, which clears its notified marker.
type Sweeper struct {
	Tasks    TaskSource
	Settings SettingsSource
	Notifier notify.Notifier
	Log      *zap.Logger
}

func (s Sweeper) Sweep(ctx context.Context, now time.Time) ([]Reminder, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	if err := s.Settings.Reload(ctx); err != nil {
		return nil, fmt.Errorf("reload settings: %w", err)
	}
	settings := s.Settings.Get()
	if !settings.Notifications || s.Notifier == nil {
		return nil, nil
	}
	if s.Notifier.Permission() != notify.PermissionGranted {
		return nil, nil
	}
	window := settings.WindowHours()

	if err := s.Tasks.Reload(ctx); err != nil {
		return nil, fmt.Errorf("reload tasks: %w", err)
	}

	var fired []Reminder
	for _, candidate := range s.Tasks.List() {
		if err := ctx.Err(); err != nil {
			return fired, err
		}
		if candidate.Notified || !temporal.IsDueSoon(candidate, now, window) {
			continue
		}
		// Earlier notifications in this pass may have blocked long enough
		// for the task to change.
		task, err := s.Tasks.Get(candidate.ID)
		if err != nil || task.Notified || !temporal.IsDueSoon(task, now, window) {
			continue
		}
		body := ReminderBody(task.Title)
		if err := s.Notifier.Notify(ctx, ReminderTitle, body); err != nil {
			log.Warn("reminder delivery failed", zap.String("task_id", task.ID), zap.Error(err))
			continue
		}
		_, marked, err := s.Tasks.MarkNotifiedIf(ctx, task.ID, task.DueDate)
		if err != nil {
			if errors.Is(err, tasks.ErrNotFound) {
				continue
			}
			return fired, fmt.Errorf("mark notified %s: %w", task.ID, err)
		}
		if !marked {
			log.Info("task changed during delivery, reminder left armed", zap.String("task_id", task.ID))
		}
		fired = append(fired, Reminder{
			TaskID:  task.ID,
			Title:   ReminderTitle,
			Body:    body,
			DueDate: task.DueDate,
			FiredAt: now,
		})
	}
	return fired, nil
}
