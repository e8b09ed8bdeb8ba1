package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/academiaplan/internal/commands"
	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/notify"
	"github.com/sandeepkv93/academiaplan/internal/session"
)

func (a *App) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change reminder settings",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(sess *session.Session) error {
				printSettings(cmd.OutOrStdout(), sess)
				at, ok, err := sess.LastSaved(cmd.Context())
				if err != nil {
					return err
				}
				if ok {
					fmt.Fprintf(cmd.OutOrStdout(), "last saved:    %s\n", at.In(sess.Now().Location()).Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}

	var window string
	set := &cobra.Command{
		Use:   "set",
		Short: "Change the reminder window",
		Long: `Change the reminder window. Accepted values are the fixed options
1h, 10h, 24h, 48h and 7d (bare numbers are hours).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("reminder-time") {
				return errors.New("nothing to change: pass --reminder-time")
			}
			hours, err := commands.ParseWindow(window)
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(sess *session.Session) error {
				if _, err := sess.SetReminderTime(cmd.Context(), hours); err != nil {
					return err
				}
				printSettings(cmd.OutOrStdout(), sess)
				return nil
			})
		},
	}
	set.Flags().StringVarP(&window, "reminder-time", "r", "", "Reminder lead time (1h, 10h, 24h, 48h, 7d)")

	cmd.AddCommand(get, set)
	return cmd
}

func (a *App) notificationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "notifications <on|off>",
		Short:     "Turn reminder notifications on or off",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch strings.ToLower(args[0]) {
			case "on", "true", "enable":
				enabled = true
			case "off", "false", "disable":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return a.withSession(cmd, func(sess *session.Session) error {
				_, err := sess.SetNotifications(cmd.Context(), enabled)
				if errors.Is(err, notify.ErrPermissionDenied) {
					return errors.New("notification permission denied; reminders stay off")
				}
				if err != nil {
					return err
				}
				printSettings(cmd.OutOrStdout(), sess)
				return nil
			})
		},
	}
}

func printSettings(w io.Writer, sess *session.Session) {
	s := sess.Settings.Get()
	state := "off"
	if s.Notifications {
		state = "on"
	}
	fmt.Fprintf(w, "notifications: %s\n", state)
	fmt.Fprintf(w, "permission:    %s\n", sess.Permission())
	fmt.Fprintf(w, "reminder time: %d (%s)\n", s.ReminderTime, model.ReminderWindowLabel(s.WindowHours()))
}
