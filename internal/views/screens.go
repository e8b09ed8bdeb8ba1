package views

import (
	"fmt"
	"strings"
)

type TaskData struct {
	Subject string
	Status  string
	Due     string
	Overdue bool
}

// TaskLine is the one-line description shown under a task title.
func TaskLine(t TaskData) string {
	parts := []string{t.Subject, t.Status}
	if t.Due != "" {
		due := "due " + t.Due
		if t.Overdue {
			due += " (Overdue)"
		}
		parts = append(parts, due)
	}
	return strings.Join(parts, " | ")
}

type DueSoonData struct {
	Title   string
	Subject string
	Due     string
}

type DashboardData struct {
	Total       int
	Completed   int
	Pending     int
	SuccessRate int
	RateBar     string
	WindowLabel string
	DueSoon     []DueSoonData
}

func RenderDashboard(data DashboardData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard") + "\n")
	fmt.Fprintf(&b, "Total Tasks:   %d\n", data.Total)
	fmt.Fprintf(&b, "Completed:     %d\n", data.Completed)
	fmt.Fprintf(&b, "Pending:       %d\n", data.Pending)
	fmt.Fprintf(&b, "Success Rate:  %d%%\n", data.SuccessRate)
	if data.RateBar != "" {
		b.WriteString(data.RateBar + "\n")
	}
	fmt.Fprintf(&b, "\n%s\n", titleStyle.Render("Upcoming Deadlines ("+data.WindowLabel+")"))
	if len(data.DueSoon) == 0 {
		b.WriteString(mutedStyle.Render("No deadlines in this window."))
		return strings.TrimSpace(b.String())
	}
	for _, d := range data.DueSoon {
		fmt.Fprintf(&b, "- %s [%s] due %s\n", d.Title, d.Subject, d.Due)
	}
	return strings.TrimSpace(b.String())
}

type TasksPanelData struct {
	Filter   string
	Count    int
	ListView string
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "filter: %s | %d task(s)\n", data.Filter, data.Count)
	b.WriteString("actions: [j/k]move [space]cycle [p/i/c]status [x]delete [f]filter\n")
	if data.Count == 0 {
		b.WriteString(mutedStyle.Render("No tasks yet. Add one with /add <title> subject:<name>"))
		return b.String()
	}
	b.WriteString(data.ListView)
	return strings.TrimSpace(b.String())
}

type CalendarCellData struct {
	Day      int
	Count    int
	Today    bool
	Selected bool
}

type CalendarData struct {
	Title       string
	Weeks       [][]CalendarCellData
	MonthTasks  int
	DueThisWeek int
	Overdue     int
}

var weekdayHeader = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func RenderCalendar(data CalendarData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(data.Title) + "\n")
	for _, d := range weekdayHeader {
		fmt.Fprintf(&b, "%-7s", d)
	}
	b.WriteString("\n")
	for _, week := range data.Weeks {
		for _, cell := range week {
			b.WriteString(renderCell(cell))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + titleStyle.Render("Quick Stats") + "\n")
	fmt.Fprintf(&b, "This Month's Tasks: %d\n", data.MonthTasks)
	fmt.Fprintf(&b, "Due This Week:      %d\n", data.DueThisWeek)
	fmt.Fprintf(&b, "Overdue Tasks:      %s", overdueStyle.Render(fmt.Sprint(data.Overdue)))
	return b.String()
}

func renderCell(cell CalendarCellData) string {
	if cell.Day == 0 {
		return strings.Repeat(" ", 7)
	}
	label := fmt.Sprintf("%2d", cell.Day)
	if cell.Count > 0 {
		label += fmt.Sprintf("(%d)", cell.Count)
	}
	padded := fmt.Sprintf("%-6s", label)
	switch {
	case cell.Selected:
		padded = selectedStyle.Render(padded)
	case cell.Today:
		padded = todayStyle.Render(padded)
	}
	return padded + " "
}

type DayPanelData struct {
	Title     string
	Count     int
	TableView string
}

func RenderDayPanel(data DayPanelData) string {
	if data.Count == 0 {
		return titleStyle.Render(data.Title) + "\n" + mutedStyle.Render("No tasks due.")
	}
	return titleStyle.Render(data.Title) + "\n" + data.TableView
}

type SubjectData struct {
	Name  string
	Rate  int
	Total int
	Bar   string
}

type TrendData struct {
	Label     string
	Completed int
	Total     int
	Height    float64
}

type AnalyticsData struct {
	CompletionRate int
	Average        string
	Overdue        int
	ActiveSubjects int
	Subjects       []SubjectData
	Trend          []TrendData
	InsightsView   string
}

func RenderAnalytics(data AnalyticsData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Key Metrics") + "\n")
	fmt.Fprintf(&b, "Completion Rate: %d%%\n", data.CompletionRate)
	fmt.Fprintf(&b, "Avg. Completion: %s\n", data.Average)
	fmt.Fprintf(&b, "Overdue Tasks:   %d\n", data.Overdue)
	fmt.Fprintf(&b, "Active Subjects: %d\n", data.ActiveSubjects)

	b.WriteString("\n" + titleStyle.Render("Subject Performance") + "\n")
	if len(data.Subjects) == 0 {
		b.WriteString(mutedStyle.Render("No data available. Start adding tasks to see analytics!") + "\n")
	}
	for _, s := range data.Subjects {
		fmt.Fprintf(&b, "%s (%d%%)\n%s\n", s.Name, s.Rate, s.Bar)
	}

	b.WriteString("\n" + titleStyle.Render("Weekly Progress") + "\n")
	for _, w := range data.Trend {
		fmt.Fprintf(&b, "%-12s %s %d/%d\n", w.Label, Bar(w.Height, 20), w.Completed, w.Total)
	}
	if data.InsightsView != "" {
		b.WriteString("\n" + data.InsightsView)
	}
	return strings.TrimSpace(b.String())
}

type ReminderOptionData struct {
	Label    string
	Selected bool
}

type SettingsData struct {
	User          string
	Notifications bool
	Permission    string
	WindowLabel   string
	Options       []ReminderOptionData
}

func RenderSettings(data SettingsData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings") + "\n")
	if data.User != "" {
		fmt.Fprintf(&b, "Signed in as: %s\n", data.User)
	}
	state := "off"
	if data.Notifications {
		state = "on"
	}
	fmt.Fprintf(&b, "Reminders:    %s (permission: %s)\n", state, data.Permission)
	fmt.Fprintf(&b, "Remind me:    %s\n", data.WindowLabel)
	for _, opt := range data.Options {
		marker := "( )"
		if opt.Selected {
			marker = "(*)"
		}
		fmt.Fprintf(&b, "  %s %s\n", marker, opt.Label)
	}
	b.WriteString("\nactions: [n]toggle reminders [[/]]window [C]clear all data")
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderConfirm(prompt string) string {
	if prompt == "" {
		return ""
	}
	return overdueStyle.Render(prompt)
}

func RenderNotification(title string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", title, body)
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
