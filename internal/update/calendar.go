package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/academiaplan/internal/temporal"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "h", "left":
		m.shiftCalendarMonth(-1)
	case "l", "right":
		m.shiftCalendarMonth(1)
	case "k", "up":
		m.shiftCalendarDay(-1)
	case "j", "down":
		m.shiftCalendarDay(1)
	case "t":
		now := m.now()
		m.Calendar = CalendarState{Year: now.Year(), Month: now.Month(), Selected: now.Day()}
		m.Status = StatusBar{Text: "calendar: today"}
	}
	return m
}

func (m *Model) shiftCalendarMonth(delta int) {
	first := time.Date(m.Calendar.Year, m.Calendar.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	m.Calendar.Year = first.Year()
	m.Calendar.Month = first.Month()
	m.Calendar.Selected = 1
	m.Status = StatusBar{Text: fmt.Sprintf("calendar: %s %d", m.Calendar.Month, m.Calendar.Year)}
}

func (m *Model) shiftCalendarDay(delta int) {
	first := time.Date(m.Calendar.Year, m.Calendar.Month, 1, 0, 0, 0, 0, time.UTC)
	days := temporal.DaysInMonth(first)
	next := m.Calendar.Selected + delta
	if next < 1 {
		next = 1
	}
	if next > days {
		next = days
	}
	m.Calendar.Selected = next
}
