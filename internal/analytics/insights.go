package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/academiaplan/internal/model"
)

type InsightKind string

const (
	Strength    InsightKind = "strength"
	Improvement InsightKind = "improvement"
)

type Insight struct {
	Kind    InsightKind
	Message string
}

// Insights returns strengths first, then areas for improvement.
func Insights(total, rate, overdue int) []Insight {
	out := make([]Insight, 0, 4)
	if rate >= 80 {
		out = append(out, Insight{Kind: Strength, Message: "High completion rate!"})
	}
	if overdue == 0 && total > 0 {
		out = append(out, Insight{Kind: Strength, Message: "No overdue tasks."})
	}
	if rate < 60 && total > 0 {
		out = append(out, Insight{Kind: Improvement, Message: "Focus on task completion."})
	}
	if overdue > 0 {
		out = append(out, Insight{Kind: Improvement, Message: fmt.Sprintf("Address %d overdue tasks.", overdue)})
	}
	return out
}

// Report is the analytics page.
type Report struct {
	Total          int
	Completed      int
	CompletionRate int
	Average        Completion
	Overdue        int
	Subjects       []SubjectStat
	Trend          Trend
	Insights       []Insight
}

func (r Report) ActiveSubjects() int {
	return len(r.Subjects)
}

func Analyze(tasks []model.Task, now time.Time) Report {
	completed := 0
	for _, task := range tasks {
		if task.IsCompleted() {
			completed++
		}
	}
	r := Report{
		Total:          len(tasks),
		Completed:      completed,
		CompletionRate: Rate(completed, len(tasks)),
		Average:        AverageCompletion(tasks),
		Overdue:        CountOverdue(tasks, now),
		Subjects:       SubjectStats(tasks),
		Trend:          WeeklyTrend(tasks, now),
	}
	r.Insights = Insights(r.Total, r.CompletionRate, r.Overdue)
	return r
}

// InsightsMarkdown renders the insights section as markdown.
func (r Report) InsightsMarkdown() string {
	var b strings.Builder
	b.WriteString("## Study Insights\n\n### Strengths\n\n")
	writeInsights(&b, r.Insights, Strength)
	b.WriteString("\n### Areas for Improvement\n\n")
	writeInsights(&b, r.Insights, Improvement)
	return b.String()
}

func writeInsights(b *strings.Builder, insights []Insight, kind InsightKind) {
	wrote := false
	for _, in := range insights {
		if in.Kind != kind {
			continue
		}
		fmt.Fprintf(b, "- %s\n", in.Message)
		wrote = true
	}
	if !wrote {
		b.WriteString("_Nothing to report yet._\n")
	}
}
