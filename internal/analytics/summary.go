// Package analytics derives the dashboard, calendar and analytics views
// from a task list, the settings record and an explicit "now".
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/temporal"
)

type Summary struct {
	Total       int
	Completed   int
	Pending     int
	SuccessRate int
	WindowHours int
	WindowLabel string
	DueSoon     []model.Task
}

// Summarize builds the dashboard figures. Pending counts every task that
// is not Completed, In Progress included.
func Summarize(tasks []model.Task, settings model.Settings, now time.Time) Summary {
	window := settings.WindowHours()
	out := Summary{
		Total:       len(tasks),
		WindowHours: window,
		WindowLabel: model.ReminderWindowLabel(window),
		DueSoon:     []model.Task{},
	}
	for _, task := range tasks {
		if task.IsCompleted() {
			out.Completed++
		}
		if temporal.IsDueSoon(task, now, window) {
			out.DueSoon = append(out.DueSoon, task.Clone())
		}
	}
	out.Pending = out.Total - out.Completed
	out.SuccessRate = Rate(out.Completed, out.Total)
	return out
}

// Rate is round(part/total*100), or 0 for an empty total.
func Rate(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

type SubjectStat struct {
	Subject   string
	Total     int
	Completed int
	Rate      int
}

// SubjectStats groups tasks by subject in order of first appearance.
func SubjectStats(tasks []model.Task) []SubjectStat {
	index := make(map[string]int)
	out := make([]SubjectStat, 0)
	for _, task := range tasks {
		i, ok := index[task.Subject]
		if !ok {
			i = len(out)
			index[task.Subject] = i
			out = append(out, SubjectStat{Subject: task.Subject})
		}
		out[i].Total++
		if task.IsCompleted() {
			out[i].Completed++
		}
	}
	for i := range out {
		out[i].Rate = Rate(out[i].Completed, out[i].Total)
	}
	return out
}

type Completion struct {
	Days      float64
	Samples   int
	Available bool
}

func (c Completion) String() string {
	if !c.Available {
		return "N/A"
	}
	return fmt.Sprintf("%.1fd", c.Days)
}

// AverageCompletion is the mean time from creation to completion, in days,
// over completed tasks carrying both timestamps.
func AverageCompletion(tasks []model.Task) Completion {
	var total time.Duration
	samples := 0
	for _, task := range tasks {
		if !task.IsCompleted() || task.CreatedAt.IsZero() || task.CompletedAt == nil {
			continue
		}
		total += task.CompletedAt.Sub(task.CreatedAt)
		samples++
	}
	if samples == 0 {
		return Completion{}
	}
	days := total.Hours() / 24 / float64(samples)
	return Completion{Days: days, Samples: samples, Available: true}
}

// CountOverdue counts open tasks whose due day has passed.
func CountOverdue(tasks []model.Task, now time.Time) int {
	n := 0
	for _, task := range tasks {
		if temporal.IsOverdue(task, now) {
			n++
		}
	}
	return n
}
