package analytics

import (
	"time"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/temporal"
)

// TrendWeeks is the number of cohorts in the weekly trend.
const TrendWeeks = 4

// TrendMaxHeight is the bar height, in percent, of the busiest week.
const TrendMaxHeight = 80.0

var trendLabels = [TrendWeeks]string{"3 Weeks Ago", "2 Weeks Ago", "Last Week", "This Week"}

// Cohort is the set of tasks created within one calendar week.
type Cohort struct {
	Label     string
	Window    temporal.Window
	Completed int
	Total     int
}

// Height is the bar height in percent for c under scale.
func (c Cohort) Height(scale float64) float64 {
	return float64(c.Completed) * scale
}

type Trend struct {
	Cohorts []Cohort
	Scale   float64
}

// WeeklyTrend returns the last four week cohorts, oldest first.
func WeeklyTrend(tasks []model.Task, now time.Time) Trend {
	cohorts := make([]Cohort, 0, TrendWeeks)
	maxCompleted := 1
	for weeksAgo := TrendWeeks - 1; weeksAgo >= 0; weeksAgo-- {
		c := Cohort{
			Label:  trendLabels[TrendWeeks-1-weeksAgo],
			Window: temporal.WeekBucket(now, weeksAgo),
		}
		for _, task := range tasks {
			if task.CreatedAt.IsZero() || !c.Window.Contains(task.CreatedAt) {
				continue
			}
			c.Total++
			if task.IsCompleted() {
				c.Completed++
			}
		}
		if c.Completed > maxCompleted {
			maxCompleted = c.Completed
		}
		cohorts = append(cohorts, c)
	}
	return Trend{Cohorts: cohorts, Scale: TrendMaxHeight / float64(maxCompleted)}
}
