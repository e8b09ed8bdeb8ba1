package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// KV is the persistence port used by the task and settings stores. Load
// returns ErrNotFound when nothing has been saved under key.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
}

// Timestamped is implemented by stores that record when each key was last
// written.
type Timestamped interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

const DefaultApp = "academiaplan"

// TasksKey returns the namespaced key of a user's task collection.
func TasksKey(app, userID string) string {
	return fmt.Sprintf("%s-tasks-%s", appOrDefault(app), userID)
}

// SettingsKey returns the namespaced key of a user's settings record.
func SettingsKey(app, userID string) string {
	return fmt.Sprintf("%s-settings-%s", appOrDefault(app), userID)
}

func appOrDefault(app string) string {
	if app == "" {
		return DefaultApp
	}
	return app
}
