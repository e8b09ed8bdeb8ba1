package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/academiaplan/internal/views"
)

func (m Model) Init() tea.Cmd {
	return waitForReminderCmd(m.Session.Reminders())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.width = typed.Width
		return m, nil
	case spinner.TickMsg:
		if m.Sweeping {
			var cmd tea.Cmd
			m.sweepSpinner, cmd = m.sweepSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case ReminderDueMsg:
		m.logReminder(typed.Reminder)
		m.Status = StatusBar{Text: typed.Reminder.Body}
		return m, waitForReminderCmd(m.Session.Reminders())
	case SweepDoneMsg:
		m.Sweeping = false
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			return m, nil
		}
		for _, r := range typed.Fired {
			m.logReminder(r)
		}
		m.Status = StatusBar{Text: sweepSummary(typed.Fired)}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}

	if m.Confirm != nil {
		pending := m.Confirm
		m.Confirm = nil
		if keyStr != "y" && keyStr != "Y" {
			m.Status = StatusBar{Text: "cancelled"}
			return m, nil
		}
		text, err := pending.Run()
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.clampTaskCursor()
		m.Status = StatusBar{Text: text}
		return m, nil
	}

	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}

	switch keyStr {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Dashboard:
		m.CurrentView = ViewDashboard
		return m, nil
	case m.Keys.Tasks:
		m.CurrentView = ViewTasks
		return m, nil
	case m.Keys.Calendar:
		m.CurrentView = ViewCalendar
		return m, nil
	case m.Keys.Analytics:
		m.CurrentView = ViewAnalytics
		return m, nil
	case m.Keys.Settings:
		m.CurrentView = ViewSettings
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewTasks:
		return m.handleTasksKey(msg), nil
	case ViewCalendar:
		return m.handleCalendarKey(msg), nil
	case ViewSettings:
		return m.handleSettingsKey(msg), nil
	case ViewAnalytics:
		var cmd tea.Cmd
		m.insights, cmd = m.insights.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	tabs := make([]string, 0, len(allViews))
	for _, v := range allViews {
		tabs = append(tabs, string(v))
	}
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("AcademiaPlan | user: %s | %s", m.Session.UserID(), m.now().Format("Mon Jan 2 2006")),
		Tabs:         tabs,
		ActiveTab:    string(m.CurrentView),
		LeftPane:     m.renderLeftPane(),
		RightPane:    m.renderRightPane(),
		StatusLine:   status,
		IsError:      m.Status.IsError,
		Notification: strings.TrimSpace(m.renderReminderView()),
		Footer:       fmt.Sprintf("keys: 1-5 views | / cmd | %s help | %s quit", m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	for _, known := range allViews {
		if v == known {
			return true
		}
	}
	return false
}
