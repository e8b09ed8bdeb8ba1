// Package config resolves runtime configuration: defaults, then an
// optional YAML file, then ACADEMIAPLAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

const envPrefix = "ACADEMIAPLAN_"

type Config struct {
	App       string          `yaml:"app" mapstructure:"app"`
	User      string          `yaml:"user,omitempty" mapstructure:"user"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Reminders RemindersConfig `yaml:"reminders" mapstructure:"reminders"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

type StoreConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"`
	Path     string `yaml:"path" mapstructure:"path"`
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
}

type RemindersConfig struct {
	SweepInterval        time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
	DesktopNotifications bool          `yaml:"desktop_notifications" mapstructure:"desktop_notifications"`
	EventBuffer          int           `yaml:"event_buffer" mapstructure:"event_buffer"`
}

type LogConfig struct {
	Debug  bool   `yaml:"debug" mapstructure:"debug"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file,omitempty" mapstructure:"file"`
}

func Default() Config {
	return Config{
		App: "academiaplan",
		Store: StoreConfig{
			Driver:   DriverSQLite,
			Path:     filepath.Join(HomeDir(), "academiaplan.db"),
			RedisURL: "redis://localhost:6379/0",
		},
		Reminders: RemindersConfig{
			SweepInterval:        time.Minute,
			DesktopNotifications: true,
			EventBuffer:          64,
		},
		Log: LogConfig{Format: "console"},
	}
}

// HomeDir is the per-user data directory.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".academiaplan"
	}
	return filepath.Join(home, ".academiaplan")
}

func DefaultPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// Load reads path, or the default location when path is empty, and
// applies environment overrides. A missing default file is not an error;
// a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := loadFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

// FromEnv overlays ACADEMIAPLAN_* variables on base. Unparseable values
// are ignored.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("APP"); ok {
		cfg.App = v
	}
	if v, ok := getEnvString("USER"); ok {
		cfg.User = v
	}
	if v, ok := getEnvString("STORE_DRIVER"); ok {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvString("STORE_PATH"); ok {
		cfg.Store.Path = v
	}
	if v, ok := getEnvString("REDIS_URL"); ok {
		cfg.Store.RedisURL = v
	}
	if v, ok := getEnvDuration("SWEEP_INTERVAL"); ok && v > 0 {
		cfg.Reminders.SweepInterval = v
	}
	if v, ok := getEnvBool("DESKTOP_NOTIFICATIONS"); ok {
		cfg.Reminders.DesktopNotifications = v
	}
	if v, ok := getEnvInt("EVENT_BUFFER"); ok && v > 0 {
		cfg.Reminders.EventBuffer = v
	}
	if v, ok := getEnvBool("DEBUG"); ok {
		cfg.Log.Debug = v
	}
	if v, ok := getEnvString("LOG_FORMAT"); ok {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v, ok := getEnvString("LOG_FILE"); ok {
		cfg.Log.File = v
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverSQLite && strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("config: store.path is required for sqlite")
	}
	if c.Store.Driver == DriverRedis && strings.TrimSpace(c.Store.RedisURL) == "" {
		return errors.New("config: store.redis_url is required for redis")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// Write stores c as YAML at path, creating parent directories.
func Write(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(envPrefix + name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(name string) (time.Duration, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, true
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func getEnvBool(name string) (bool, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
