package update

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/academiaplan/internal/views"
)

func (m Model) renderLeftPane() string {
	sess := m.Session
	switch m.CurrentView {
	case ViewTasks:
		return views.RenderTasksPanel(views.TasksPanelData{
			Filter:   filterLabel(m.Tasks.Filter),
			Count:    len(m.visibleTasks()),
			ListView: m.taskList.View(),
		})
	case ViewCalendar:
		cal := sess.Calendar(m.Calendar.Year, m.Calendar.Month)
		return views.RenderCalendar(views.CalendarFrom(cal, m.Calendar.Selected))
	case ViewAnalytics:
		return views.RenderAnalytics(views.AnalyticsFrom(sess.Analytics(), ""))
	case ViewSettings:
		return views.RenderSettings(views.SettingsFrom(sess.UserID(), sess.Settings.Get(), sess.Permission()))
	default:
		data := views.DashboardFrom(sess.Dashboard())
		data.RateBar = m.rateBar.ViewAs(float64(data.SuccessRate) / 100)
		return views.RenderDashboard(data)
	}
}

func (m Model) renderRightPane() string {
	parts := []string{m.renderCommandPalette()}
	if m.Confirm != nil {
		parts = append(parts, views.RenderConfirm(m.Confirm.Prompt))
	}
	switch m.CurrentView {
	case ViewCalendar:
		if m.Calendar.Selected > 0 {
			parts = append(parts, views.RenderDayPanel(views.DayPanelData{
				Title:     views.DayTitle(m.Calendar.Year, m.Calendar.Month, m.Calendar.Selected),
				Count:     len(m.dayTable.Rows()),
				TableView: m.dayTable.View(),
			}))
		}
	case ViewAnalytics:
		parts = append(parts, m.insights.View())
	case ViewTasks:
		if task, ok := m.currentTask(); ok {
			parts = append(parts, fmt.Sprintf("id: %s\ncreated: %s", task.ID, task.CreatedAt.Local().Format("Jan 2, 2006 15:04")))
		}
	}
	parts = append(parts, m.renderHelpIfVisible())
	return joinNonEmpty(parts)
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderReminderView() string {
	var lines []string
	if len(m.ReminderLog) > 0 {
		last := m.ReminderLog[len(m.ReminderLog)-1]
		lines = append(lines, views.RenderNotification(last.Title, last.Body))
	}
	if m.Sweeping {
		lines = append(lines, "reminders: "+m.sweepSpinner.View()+" checking")
	}
	return joinNonEmpty(lines)
}

func joinNonEmpty(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
