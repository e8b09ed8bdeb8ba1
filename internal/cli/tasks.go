package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/session"
	"github.com/sandeepkv93/academiaplan/internal/tasks"
	"github.com/sandeepkv93/academiaplan/internal/temporal"
)

func (a *App) addCmd() *cobra.Command {
	var subject, due, status string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := buildDraft(strings.Join(args, " "), subject, status)
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(sess *session.Session) error {
				if draft.DueDate, err = parseDay(due, sess); err != nil {
					return err
				}
				task, err := sess.Tasks.Add(cmd.Context(), draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q (%s)\n", shortID(task.ID), task.Title, task.Subject)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Subject the task belongs to (required)")
	cmd.Flags().StringVarP(&due, "due", "d", "", "Due date, YYYY-MM-DD or today/tomorrow")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (pending, in-progress, completed)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func (a *App) listCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in the order they were added",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter model.Status
			if status != "" && !strings.EqualFold(status, "all") {
				parsed, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = parsed
			}
			return a.withSession(cmd, func(sess *session.Session) error {
				items := sess.Tasks.Filter(filter)
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
					return nil
				}
				printTasks(cmd.OutOrStdout(), sess, items)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show tasks with this status (pending, in-progress, completed, all)")
	return cmd
}

func (a *App) editCmd() *cobra.Command {
	var title, subject, due, status string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title, subject, due date or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(sess *session.Session) error {
				task, err := findTask(sess, args[0])
				if err != nil {
					return err
				}
				draft := model.Draft{Title: task.Title, Subject: task.Subject, DueDate: task.DueDate, Status: task.Status}
				flags := cmd.Flags()
				if flags.Changed("title") {
					draft.Title = title
				}
				if flags.Changed("subject") {
					draft.Subject = subject
				}
				if flags.Changed("due") {
					if draft.DueDate, err = parseDay(due, sess); err != nil {
						return err
					}
				}
				if flags.Changed("status") {
					if draft.Status, err = model.ParseStatus(status); err != nil {
						return err
					}
				}
				updated, err := sess.Tasks.Update(cmd.Context(), task.ID, draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %q\n", shortID(updated.ID), updated.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "New subject")
	cmd.Flags().StringVarP(&due, "due", "d", "", "New due date; empty clears it")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	return cmd
}

func (a *App) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(sess *session.Session) error {
				task, err := findTask(sess, args[0])
				if err != nil {
					return err
				}
				updated, err := sess.Tasks.SetStatus(cmd.Context(), task.ID, status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q is now %s\n", updated.Title, updated.Status)
				return nil
			})
		},
	}
}

func (a *App) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(sess *session.Session) error {
				task, err := findTask(sess, args[0])
				if err != nil {
					return err
				}
				if !yes {
					return fmt.Errorf("refusing to delete %q without --yes", task.Title)
				}
				if err := sess.Tasks.Remove(cmd.Context(), task.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", task.Title)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <date>",
		Short: "Show tasks due on a date (YYYY-MM-DD, today, tomorrow)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(sess *session.Session) error {
				day, err := parseDay(args[0], sess)
				if err != nil {
					return err
				}
				if day.IsZero() {
					return errors.New("a date is required")
				}
				items := sess.Tasks.OnDate(day)
				fmt.Fprintf(cmd.OutOrStdout(), "Tasks for %s\n", day.Display())
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks due.")
					return nil
				}
				printTasks(cmd.OutOrStdout(), sess, items)
				return nil
			})
		},
	}
}

func buildDraft(title, subject, status string) (model.Draft, error) {
	draft := model.Draft{Title: title, Subject: subject}
	if status != "" {
		s, err := model.ParseStatus(status)
		if err != nil {
			return model.Draft{}, err
		}
		draft.Status = s
	}
	return draft, nil
}

// parseDay understands today and tomorrow relative to the session clock.
func parseDay(raw string, sess *session.Session) (model.Date, error) {
	today := model.DateOf(sess.Now())
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	}
	return model.ParseDate(raw)
}

// findTask resolves a full id or a unique id prefix.
func findTask(sess *session.Session, ref string) (model.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return model.Task{}, errors.New("task id is required")
	}
	if task, err := sess.Tasks.Get(ref); err == nil {
		return task, nil
	}
	var found []model.Task
	for _, task := range sess.Tasks.List() {
		if strings.HasPrefix(strings.ToLower(task.ID), ref) {
			found = append(found, task)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", tasks.ErrNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return model.Task{}, fmt.Errorf("id prefix %q matches %d tasks", ref, len(found))
	}
}

func printTasks(w io.Writer, sess *session.Session, items []model.Task) {
	now := sess.Now()
	t := table.New().Headers("ID", "TITLE", "SUBJECT", "DUE", "STATUS")
	for _, task := range items {
		due := task.DueDate.String()
		if temporal.IsOverdue(task, now) {
			due += " (overdue)"
		}
		t.Row(shortID(task.ID), task.Title, task.Subject, due, string(task.Status))
	}
	fmt.Fprintln(w, t.Render())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
