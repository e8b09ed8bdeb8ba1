package temporal

import (
	"testing"
	"time"

	"github.com/sandeepkv93/academiaplan/internal/model"
)

// Wednesday.
var now = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

func taskDue(d model.Date, status model.Status) model.Task {
	return model.Task{ID: "t", Title: "t", Subject: "s", DueDate: d, Status: status}
}

func TestIsOverdue(t *testing.T) {
	today := model.DateOf(now)
	cases := []struct {
		name string
		task model.Task
		want bool
	}{
		{"yesterday pending", taskDue(today.AddDays(-1), model.StatusPending), true},
		{"yesterday in progress", taskDue(today.AddDays(-1), model.StatusInProgress), true},
		{"yesterday completed", taskDue(today.AddDays(-1), model.StatusCompleted), false},
		{"today", taskDue(today, model.StatusPending), false},
		{"tomorrow", taskDue(today.AddDays(1), model.StatusPending), false},
		{"no due date", taskDue(model.Date{}, model.StatusPending), false},
	}
	for _, tc := range cases {
		if got := IsOverdue(tc.task, now); got != tc.want {
			t.Fatalf("%s: IsOverdue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsOverdueUsesDateOnlyComparison(t *testing.T) {
	task := taskDue(model.NewDate(2026, 10, 13), model.StatusPending)
	earlyMorning := time.Date(2026, 10, 14, 0, 0, 1, 0, time.UTC)
	if !IsOverdue(task, earlyMorning) {
		t.Fatal("expected overdue one second into the next day")
	}
	lateNight := time.Date(2026, 10, 13, 23, 59, 59, 0, time.UTC)
	if IsOverdue(task, lateNight) {
		t.Fatal("expected not overdue on the due day itself")
	}
}

func TestIsDueSoonWindowScenario(t *testing.T) {
	task := taskDue(model.DateOf(now).AddDays(2), model.StatusPending)
	if IsDueSoon(task, now, 24) {
		t.Fatal("task two days out must not be due soon within 24h")
	}
	if !IsDueSoon(task, now, 72) {
		t.Fatal("task two days out must be due soon within 72h")
	}
}

func TestIsDueSoonBoundaries(t *testing.T) {
	task := taskDue(model.NewDate(2026, 10, 15), model.StatusPending)
	exact := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	if !IsDueSoon(task, exact, 24) {
		t.Fatal("due exactly at the window edge is due soon")
	}
	atDue := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	if IsDueSoon(task, atDue, 24) {
		t.Fatal("zero time remaining is not due soon")
	}
	// Due today: past the due instant yet not overdue.
	today := taskDue(model.DateOf(now), model.StatusPending)
	if IsDueSoon(today, now, 168) || IsOverdue(today, now) {
		t.Fatal("task due today is neither due soon nor overdue")
	}
}

func TestIsDueSoonNeverForCompleted(t *testing.T) {
	task := taskDue(model.DateOf(now).AddDays(1), model.StatusCompleted)
	for _, opt := range model.ReminderOptions {
		if IsDueSoon(task, now, opt.Hours) {
			t.Fatalf("completed task reported due soon for window %d", opt.Hours)
		}
	}
	if IsDueSoon(taskDue(model.Date{}, model.StatusPending), now, 168) {
		t.Fatal("task without due date cannot be due soon")
	}
}

func TestDueInstantFollowsNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	local := time.Date(2026, 10, 14, 20, 0, 0, 0, loc)
	task := taskDue(model.NewDate(2026, 10, 15), model.StatusPending)
	if !IsDueSoon(task, local, 4) {
		t.Fatal("expected due within 4 hours of local midnight")
	}
	if IsDueSoon(task, local.UTC(), 4) {
		t.Fatal("in UTC the same instant is 13 hours before midnight")
	}
}

func TestIsDueThisWeekAndInMonth(t *testing.T) {
	today := model.DateOf(now)
	if !IsDueThisWeek(taskDue(today.AddDays(7), model.StatusPending), now) {
		t.Fatal("expected due in seven days to count this week")
	}
	if IsDueThisWeek(taskDue(today.AddDays(8), model.StatusPending), now) {
		t.Fatal("eight days out is beyond the week")
	}
	if IsDueThisWeek(taskDue(today.AddDays(3), model.StatusCompleted), now) {
		t.Fatal("completed tasks are not due")
	}
	if !InMonth(taskDue(model.NewDate(2026, 10, 1), model.StatusCompleted), now) {
		t.Fatal("expected Oct 1 in October")
	}
	if InMonth(taskDue(model.NewDate(2025, 10, 14), model.StatusPending), now) {
		t.Fatal("same month of another year is not this month")
	}
}

func TestWeekBucketsAreContiguousSundayWeeks(t *testing.T) {
	var prev Window
	for weeksAgo := 3; weeksAgo >= 0; weeksAgo-- {
		w := WeekBucket(now, weeksAgo)
		if w.Start.Weekday() != time.Sunday {
			t.Fatalf("week %d starts on %s", weeksAgo, w.Start.Weekday())
		}
		if w.Start.Hour() != 0 || w.Start.Minute() != 0 {
			t.Fatalf("week %d does not start at midnight: %s", weeksAgo, w.Start)
		}
		if got := w.End.Sub(w.Start); got != 7*24*time.Hour {
			t.Fatalf("week %d spans %s", weeksAgo, got)
		}
		if weeksAgo < 3 && !prev.End.Equal(w.Start) {
			t.Fatalf("week %d does not follow previous window: %s vs %s", weeksAgo, prev.End, w.Start)
		}
		prev = w
	}
	current := WeekBucket(now, 0)
	if !current.Contains(now) {
		t.Fatal("current week must contain now")
	}
	if current.Start != time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected current week start: %s", current.Start)
	}
	if current.Contains(current.End) {
		t.Fatal("window end is exclusive")
	}
}

func TestWeekBucketOnSunday(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	w := WeekBucket(sunday, 0)
	if w.Start != time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("sunday belongs to the week it starts: %s", w.Start)
	}
}

func TestMonthHelpers(t *testing.T) {
	if DaysInMonth(time.Date(2028, 2, 10, 0, 0, 0, 0, time.UTC)) != 29 {
		t.Fatal("expected leap february")
	}
	if MonthStart(now).Weekday() != time.Thursday {
		t.Fatalf("Oct 1 2026 is a Thursday, got %s", MonthStart(now).Weekday())
	}
}
