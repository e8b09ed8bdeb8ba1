package analytics

import (
	"time"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/temporal"
)

type CalendarDay struct {
	Date    model.Date
	IsToday bool
	Tasks   []model.Task
}

// Calendar is one month of the calendar page. Stats are always computed
// against now, while the grid shows the requested month.
type Calendar struct {
	Year        int
	Month       time.Month
	Leading     int
	Days        []CalendarDay
	MonthTasks  int
	DueThisWeek int
	Overdue     int
}

// MonthCalendar lays out the month containing now.
func MonthCalendar(tasks []model.Task, now time.Time) Calendar {
	return CalendarFor(tasks, now, now.Year(), now.Month())
}

// CalendarFor lays out year/month. Leading is the number of blank cells
// before the first day in a Sunday-first grid.
func CalendarFor(tasks []model.Task, now time.Time, year int, month time.Month) Calendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	year, month = first.Year(), first.Month()
	out := Calendar{
		Year:    year,
		Month:   month,
		Leading: int(first.Weekday()),
	}
	today := model.DateOf(now)
	days := temporal.DaysInMonth(first)
	byDay := make(map[model.Date][]model.Task)
	for _, task := range tasks {
		if task.HasDueDate() && task.DueDate.Year == year && task.DueDate.Month == month {
			byDay[task.DueDate] = append(byDay[task.DueDate], task.Clone())
		}
		if temporal.InMonth(task, now) {
			out.MonthTasks++
		}
		if temporal.IsDueThisWeek(task, now) {
			out.DueThisWeek++
		}
		if temporal.IsOverdue(task, now) {
			out.Overdue++
		}
	}
	out.Days = make([]CalendarDay, 0, days)
	for d := 1; d <= days; d++ {
		date := model.NewDate(year, month, d)
		out.Days = append(out.Days, CalendarDay{
			Date:    date,
			IsToday: date == today,
			Tasks:   byDay[date],
		})
	}
	return out
}

// Weeks splits the grid into rows of seven cells. Blank cells have a zero Date.
func (c Calendar) Weeks() [][]CalendarDay {
	cells := make([]CalendarDay, c.Leading, c.Leading+len(c.Days))
	cells = append(cells, c.Days...)
	for len(cells)%7 != 0 {
		cells = append(cells, CalendarDay{})
	}
	rows := make([][]CalendarDay, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		rows = append(rows, cells[i:i+7])
	}
	return rows
}
