package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/academiaplan/internal/session"
	"github.com/sandeepkv93/academiaplan/internal/views"
)

func (a *App) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, success rate and upcoming deadlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(sess *session.Session) error {
				fmt.Fprintln(cmd.OutOrStdout(), views.RenderDashboard(views.DashboardFrom(sess.Dashboard())))
				return nil
			})
		},
	}
}

func (a *App) calendarCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month grid with per-day task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(sess *session.Session) error {
				now := sess.Now()
				year, mon, selected := now.Year(), now.Month(), now.Day()
				if month != "" {
					t, err := time.Parse("2006-01", month)
					if err != nil {
						return fmt.Errorf("month must be YYYY-MM: %s", month)
					}
					year, mon, selected = t.Year(), t.Month(), 0
				}
				cal := sess.Calendar(year, mon)
				fmt.Fprintln(cmd.OutOrStdout(), views.RenderCalendar(views.CalendarFrom(cal, selected)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to show, YYYY-MM (default current month)")
	return cmd
}

func (a *App) analyticsCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show completion metrics, subject performance, weekly trend and insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(sess *session.Session) error {
				report := sess.Analytics()
				insights := report.InsightsMarkdown()
				if !plain {
					insights = views.RenderMarkdown(insights)
				}
				fmt.Fprintln(cmd.OutOrStdout(), views.RenderAnalytics(views.AnalyticsFrom(report, insights)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print insights as raw markdown")
	return cmd
}
