package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/academiaplan/internal/notify"
	"github.com/sandeepkv93/academiaplan/internal/session"
	"github.com/sandeepkv93/academiaplan/internal/update"
)

func (a *App) remindCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder scheduler until interrupted",
		Long: `Run the reminder scheduler. Every sweep notifies about tasks due within
the reminder window that have not been reminded yet. With --once a single
sweep runs and the command exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if once {
				return a.withSession(cmd, func(sess *session.Session) error {
					sess.ResumeNotifications(cmd.Context())
					fired, err := sess.SweepOnce(cmd.Context())
					for _, r := range fired {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Title, r.Body)
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s) sent\n", len(fired))
					return nil
				})
			}
			return a.runDaemon(cmd)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single sweep and exit")
	return cmd
}

func (a *App) runDaemon(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := a.setup(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	mgr := session.NewManager(rt.kv, rt.notifier, a.sessionConfig(rt))
	sess, err := mgr.SignIn(ctx, rt.user)
	if err != nil {
		return err
	}
	defer mgr.SignOut()

	if perm := sess.ResumeNotifications(ctx); perm != notify.PermissionGranted {
		rt.log.Warn("reminders will not be delivered", zap.String("permission", string(perm)))
	}
	rt.log.Info("reminder daemon started", zap.Duration("interval", rt.cfg.Reminders.SweepInterval))

	out := cmd.OutOrStdout()
	reminders := sess.Reminders()
	for {
		select {
		case <-ctx.Done():
			rt.log.Info("reminder daemon stopping", zap.Uint64("dropped", sess.DroppedReminders()))
			return nil
		case r, ok := <-reminders:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "%s  %s: %s\n", r.FiredAt.Format("2006-01-02 15:04"), r.Title, r.Body)
		}
	}
}

func (a *App) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI",
		Args:  cobra.NoArgs,
		RunE:  a.runTUI,
	}
}

func (a *App) runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := a.setup(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	mgr := session.NewManager(rt.kv, rt.notifier, a.sessionConfig(rt))
	sess, err := mgr.SignIn(ctx, rt.user)
	if err != nil {
		return err
	}
	defer mgr.SignOut()
	sess.ResumeNotifications(ctx)

	program := tea.NewProgram(update.NewModel(sess), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
