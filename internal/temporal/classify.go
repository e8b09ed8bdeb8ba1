// Package temporal classifies tasks against an explicit "now". Nothing in
// here reads the wall clock.
//
// Calendar days are taken in now's location and a due date becomes due at
// midnight at the start of that day. Overdue compares days only while due
// soon compares instants, so a task due today is neither.
package temporal

import (
	"time"

	"github.com/sandeepkv93/academiaplan/internal/model"
)

// DueInstant is the moment task becomes due, evaluated in loc.
func DueInstant(task model.Task, loc *time.Location) time.Time {
	return task.DueDate.In(loc)
}

func isOpenWithDueDate(task model.Task) bool {
	return !task.IsCompleted() && task.HasDueDate()
}

func IsOverdue(task model.Task, now time.Time) bool {
	if !isOpenWithDueDate(task) {
		return false
	}
	return task.DueDate.Before(model.DateOf(now))
}

// IsDueSoon reports whether the due instant lies in (now, now+windowHours].
func IsDueSoon(task model.Task, now time.Time, windowHours int) bool {
	if !isOpenWithDueDate(task) {
		return false
	}
	until := DueInstant(task, now.Location()).Sub(now)
	return until > 0 && until <= time.Duration(windowHours)*time.Hour
}

// IsDueThisWeek reports whether the due instant lies in [now, now+7 days].
func IsDueThisWeek(task model.Task, now time.Time) bool {
	if !isOpenWithDueDate(task) {
		return false
	}
	due := DueInstant(task, now.Location())
	return !due.Before(now) && !due.After(now.AddDate(0, 0, 7))
}

// InMonth reports whether task is due in now's calendar month.
func InMonth(task model.Task, now time.Time) bool {
	if !task.HasDueDate() {
		return false
	}
	return task.DueDate.Year == now.Year() && task.DueDate.Month == now.Month()
}

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WeekBucket returns the Sunday-to-Saturday week weeksAgo whole weeks
// before the week containing now. weeksAgo 0 is the current week.
func WeekBucket(now time.Time, weeksAgo int) Window {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -int(now.Weekday())-7*weeksAgo)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthStart is midnight on the first day of now's month.
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func DaysInMonth(now time.Time) int {
	return MonthStart(now).AddDate(0, 1, -1).Day()
}
