// Package update holds the bubbletea model for the terminal UI. Every
// mutation goes through the session; the model only keeps view state.
package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/scheduler"
	"github.com/sandeepkv93/academiaplan/internal/session"
)

type View string

const (
	ViewDashboard View = "Dashboard"
	ViewTasks     View = "Tasks"
	ViewCalendar  View = "Calendar"
	ViewAnalytics View = "Analytics"
	ViewSettings  View = "Settings"
)

var allViews = []View{ViewDashboard, ViewTasks, ViewCalendar, ViewAnalytics, ViewSettings}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	Tasks     string
	Calendar  string
	Analytics string
	Settings  string
	Help      string
	Quit      string
}

// Confirm is a pending destructive action waiting for "y".
type Confirm struct {
	Prompt string
	Run    func() (string, error)
}

type TasksState struct {
	Cursor int
	Filter model.Status
}

type CalendarState struct {
	Year     int
	Month    time.Month
	Selected int // 1-based day of month, 0 for none
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	Session     *session.Session
	CurrentView View
	Tasks       TasksState
	Calendar    CalendarState
	Palette     CommandPaletteState
	HelpVisible bool
	ReminderLog []scheduler.Reminder
	Status      StatusBar
	Keys        GlobalKeyMap
	Confirm     *Confirm
	Quitting    bool
	LastError   error
	Sweeping    bool

	ctx          context.Context
	width        int
	taskList     list.Model
	dayTable     table.Model
	commandInput textinput.Model
	helpModel    help.Model
	rateBar      progress.Model
	insights     viewport.Model
	sweepSpinner spinner.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type ReminderDueMsg struct {
	Reminder scheduler.Reminder
}

// SweepDoneMsg reports a manual reminder sweep started from the palette.
type SweepDoneMsg struct {
	Fired []scheduler.Reminder
	Err   error
}

func NewModel(sess *session.Session) Model {
	now := sess.Now()
	m := Model{
		Session:     sess,
		CurrentView: ViewDashboard,
		Calendar: CalendarState{
			Year:     now.Year(),
			Month:    now.Month(),
			Selected: now.Day(),
		},
		Keys: GlobalKeyMap{
			Dashboard: "1",
			Tasks:     "2",
			Calendar:  "3",
			Analytics: "4",
			Settings:  "5",
			Help:      "?",
			Quit:      "q",
		},
		ctx:   context.Background(),
		width: 120,
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.taskList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 14)
	m.taskList.Title = "Tasks"
	m.taskList.SetShowHelp(false)
	m.taskList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Title", Width: 22},
		{Title: "Subject", Width: 14},
		{Title: "Status", Width: 12},
	}
	m.dayTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(6))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.rateBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	m.insights = viewport.New(56, 12)

	m.sweepSpinner = spinner.New()
	m.sweepSpinner.Spinner = spinner.Dot
}

func (m Model) now() time.Time {
	return m.Session.Now()
}
