// Package cli is the academiaplan command line. Every command opens the
// signed-in user's session, runs one operation and closes it again;
// remind and tui keep the session running until interrupted.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/academiaplan/internal/config"
	"github.com/sandeepkv93/academiaplan/internal/identity"
	"github.com/sandeepkv93/academiaplan/internal/logger"
	"github.com/sandeepkv93/academiaplan/internal/notify"
	"github.com/sandeepkv93/academiaplan/internal/session"
	"github.com/sandeepkv93/academiaplan/internal/storage"
)

var errNoUser = errors.New("no user id: pass --user or --id-token, or set user in the config file")

// OpenKVFunc opens the persistence backend for cfg. The returned close
// function may be nil.
type OpenKVFunc func(ctx context.Context, cfg config.Config) (storage.KV, func() error, error)

// App carries the injectable pieces of the command line. The zero value
// plus Out/Err is a working production setup.
type App struct {
	Version  string
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
	Clock    func() time.Time
	OpenKV   OpenKVFunc
	Notifier notify.Notifier

	configPath string
	user       string
	idToken    string
	verbose    bool
}

// runtime is everything a command needs after flags are parsed.
type runtime struct {
	cfg      config.Config
	log      *zap.Logger
	kv       storage.KV
	closeKV  func() error
	notifier notify.Notifier
	user     string
}

func (r *runtime) Close() {
	_ = logger.Sync(r.log)
	if r.closeKV != nil {
		if err := r.closeKV(); err != nil {
			r.log.Warn("close store", zap.Error(err))
		}
	}
}

// Execute runs the command line against the real process environment.
func Execute(version string) error {
	app := &App{Version: version, In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	if err := app.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *App) Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "academiaplan",
		Short: "AcademiaPlan - academic task planner",
		Long: `AcademiaPlan tracks coursework tasks by subject and due date, shows
dashboards, a calendar and analytics, and sends reminders before deadlines.

Run without a subcommand to open the terminal UI.`,
		RunE:          a.runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       a.Version,
	}
	root.SetIn(a.in())
	root.SetOut(a.out())
	root.SetErr(a.errOut())

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.academiaplan/config.yaml)")
	root.PersistentFlags().StringVarP(&a.user, "user", "u", "", "User id to act as")
	root.PersistentFlags().StringVar(&a.idToken, "id-token", "", "Identity token (JWT) to take the user id from")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.editCmd(),
		a.statusCmd(),
		a.deleteCmd(),
		a.showCmd(),
		a.dashboardCmd(),
		a.calendarCmd(),
		a.analyticsCmd(),
		a.settingsCmd(),
		a.notificationsCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.clearCmd(),
		a.remindCmd(),
		a.tuiCmd(),
		a.whoamiCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *App) in() io.Reader {
	if a.In == nil {
		return os.Stdin
	}
	return a.In
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) errOut() io.Writer {
	if a.Err == nil {
		return os.Stderr
	}
	return a.Err
}

func (a *App) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if a.verbose {
		cfg.Log.Debug = true
	}
	return cfg, nil
}

// setup loads config, logging and storage. quiet routes logs away from
// the terminal unless a log file is configured.
func (a *App) setup(ctx context.Context, quiet bool) (*runtime, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	log := zap.NewNop()
	if !quiet || cfg.Log.File != "" {
		log, err = logger.New(logger.Options{Debug: cfg.Log.Debug, Format: cfg.Log.Format, File: cfg.Log.File})
		if err != nil {
			return nil, err
		}
	}

	user, err := a.resolveUser(cfg)
	if err != nil {
		return nil, err
	}

	open := a.OpenKV
	if open == nil {
		open = openKV
	}
	kv, closeKV, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	notifier := a.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
		if cfg.Reminders.DesktopNotifications {
			notifier = notify.NewExecNotifier()
		}
	}
	log.Debug("runtime ready", zap.String("driver", cfg.Store.Driver), zap.String("user_id", user))
	return &runtime{cfg: cfg, log: log, kv: kv, closeKV: closeKV, notifier: notifier, user: user}, nil
}

func (a *App) resolveUser(cfg config.Config) (string, error) {
	if u := strings.TrimSpace(a.user); u != "" {
		return u, nil
	}
	if a.idToken != "" {
		profile, err := identity.FromToken(a.idToken)
		if err != nil {
			return "", err
		}
		return profile.Subject, nil
	}
	if u := strings.TrimSpace(cfg.User); u != "" {
		return u, nil
	}
	return "", errNoUser
}

func (a *App) sessionConfig(rt *runtime) session.Config {
	return session.Config{
		App:           rt.cfg.App,
		UserID:        rt.user,
		SweepInterval: rt.cfg.Reminders.SweepInterval,
		EventBuffer:   rt.cfg.Reminders.EventBuffer,
		Clock:         a.Clock,
		Logger:        rt.log,
	}
}

// withSession opens an unstarted session for one-shot commands.
func (a *App) withSession(cmd *cobra.Command, fn func(*session.Session) error) error {
	ctx := cmd.Context()
	rt, err := a.setup(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()
	sess, err := session.Open(ctx, rt.kv, rt.notifier, a.sessionConfig(rt))
	if err != nil {
		return err
	}
	defer sess.Close()
	return fn(sess)
}

func openKV(ctx context.Context, cfg config.Config) (storage.KV, func() error, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return storage.NewMemoryKV(), nil, nil
	case config.DriverRedis:
		kv, err := storage.OpenRedis(ctx, cfg.Store.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	default:
		kv, err := storage.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	}
}
