package views

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/academiaplan/internal/analytics"
	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/notify"
)

func DashboardFrom(s analytics.Summary) DashboardData {
	out := DashboardData{
		Total:       s.Total,
		Completed:   s.Completed,
		Pending:     s.Pending,
		SuccessRate: s.SuccessRate,
		RateBar:     Bar(float64(s.SuccessRate), 30),
		WindowLabel: s.WindowLabel,
	}
	for _, t := range s.DueSoon {
		out.DueSoon = append(out.DueSoon, DueSoonData{Title: t.Title, Subject: t.Subject, Due: t.DueDate.Display()})
	}
	return out
}

// CalendarFrom lays out c with selected (1-based, 0 for none) highlighted.
func CalendarFrom(c analytics.Calendar, selected int) CalendarData {
	out := CalendarData{
		Title:       fmt.Sprintf("%s %d", c.Month, c.Year),
		MonthTasks:  c.MonthTasks,
		DueThisWeek: c.DueThisWeek,
		Overdue:     c.Overdue,
	}
	for _, week := range c.Weeks() {
		row := make([]CalendarCellData, 0, len(week))
		for _, day := range week {
			cell := CalendarCellData{}
			if !day.Date.IsZero() {
				cell.Day = day.Date.Day
				cell.Count = len(day.Tasks)
				cell.Today = day.IsToday
				cell.Selected = day.Date.Day == selected
			}
			row = append(row, cell)
		}
		out.Weeks = append(out.Weeks, row)
	}
	return out
}

func DayTitle(year int, month time.Month, day int) string {
	return "Tasks for " + model.NewDate(year, month, day).Display()
}

func AnalyticsFrom(r analytics.Report, insightsView string) AnalyticsData {
	out := AnalyticsData{
		CompletionRate: r.CompletionRate,
		Average:        r.Average.String(),
		Overdue:        r.Overdue,
		ActiveSubjects: r.ActiveSubjects(),
		InsightsView:   insightsView,
	}
	for _, s := range r.Subjects {
		out.Subjects = append(out.Subjects, SubjectData{Name: s.Subject, Rate: s.Rate, Total: s.Total, Bar: Bar(float64(s.Rate), 30)})
	}
	for _, c := range r.Trend.Cohorts {
		// Heights top out at 80% of the chart; stretch to the full bar.
		out.Trend = append(out.Trend, TrendData{
			Label:     c.Label,
			Completed: c.Completed,
			Total:     c.Total,
			Height:    c.Height(r.Trend.Scale) * 100 / analytics.TrendMaxHeight,
		})
	}
	return out
}

func SettingsFrom(user string, s model.Settings, perm notify.Permission) SettingsData {
	out := SettingsData{
		User:          user,
		Notifications: s.Notifications,
		Permission:    string(perm),
		WindowLabel:   model.ReminderWindowLabel(s.WindowHours()),
	}
	for _, opt := range model.ReminderOptions {
		out.Options = append(out.Options, ReminderOptionData{Label: opt.Label, Selected: opt.Hours == s.ReminderTime})
	}
	return out
}
