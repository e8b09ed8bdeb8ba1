package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/academiaplan/internal/scheduler"
	"github.com/sandeepkv93/academiaplan/internal/session"
)

const reminderLogSize = 20

func waitForReminderCmd(ch <-chan scheduler.Reminder) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Reminder: r}
	}
}

func sweepCmd(ctx context.Context, sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		fired, err := sess.SweepOnce(ctx)
		return SweepDoneMsg{Fired: fired, Err: err}
	}
}

func (m *Model) logReminder(r scheduler.Reminder) {
	m.ReminderLog = append(m.ReminderLog, r)
	if len(m.ReminderLog) > reminderLogSize {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-reminderLogSize:]
	}
}

func sweepSummary(fired []scheduler.Reminder) string {
	switch len(fired) {
	case 0:
		return "no reminders due"
	case 1:
		return "1 reminder sent"
	default:
		return fmt.Sprintf("%d reminders sent", len(fired))
	}
}
