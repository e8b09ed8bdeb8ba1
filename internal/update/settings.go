package update

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/notify"
)

func (m Model) handleSettingsKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "n":
		current := m.Session.Settings.Get()
		m = m.setNotifications(!current.Notifications)
	case "]", "+":
		m = m.stepReminderWindow(1)
	case "[", "-":
		m = m.stepReminderWindow(-1)
	case "C":
		sess := m.Session
		ctx := m.ctx
		m.Confirm = &Confirm{
			Prompt: "Clear ALL tasks and reset settings? (y/N)",
			Run: func() (string, error) {
				if err := sess.ClearAll(ctx); err != nil {
					return "", err
				}
				return "all data cleared", nil
			},
		}
	}
	return m
}

func (m Model) setNotifications(enabled bool) Model {
	return m.withResult(m.applyNotifications(enabled))
}

func (m Model) applyNotifications(enabled bool) (string, error) {
	next, err := m.Session.SetNotifications(m.ctx, enabled)
	switch {
	case errors.Is(err, notify.ErrPermissionDenied):
		return "", errors.New("notification permission denied; reminders stay off")
	case err != nil:
		return "", err
	case next.Notifications:
		return "reminders on", nil
	default:
		return "reminders off", nil
	}
}

func (m Model) stepReminderWindow(delta int) Model {
	current := m.Session.Settings.Get().ReminderTime
	idx := 0
	for i, opt := range model.ReminderOptions {
		if opt.Hours == current {
			idx = i
		}
	}
	idx += delta
	if idx < 0 || idx >= len(model.ReminderOptions) {
		return m
	}
	return m.withResult(m.applyReminderWindow(model.ReminderOptions[idx].Hours))
}

func (m Model) applyReminderWindow(hours int) (string, error) {
	next, err := m.Session.SetReminderTime(m.ctx, hours)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("reminder window: %s", model.ReminderWindowLabel(next.ReminderTime)), nil
}

func (m Model) withResult(text string, err error) Model {
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: text}
	return m
}
