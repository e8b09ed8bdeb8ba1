package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sandeepkv93/academiaplan/internal/model"
	"github.com/sandeepkv93/academiaplan/internal/storage"
)

type Store struct {
	mu      sync.Mutex
	kv      storage.KV
	key     string
	current model.Settings
	log     *zap.Logger
}

// Open loads the record stored under key, falling back to defaults.
func Open(ctx context.Context, kv storage.KV, key string, log *zap.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("settings: nil kv")
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: kv, key: key, current: model.DefaultSettings(), log: log}
	if err := s.reloadLocked(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the stored record, so a long-running process picks up
// changes saved by another one.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Store) reloadLocked(ctx context.Context) error {
	blob, err := s.kv.Load(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.current = model.DefaultSettings()
		return nil
	case err != nil:
		return fmt.Errorf("load settings: %w", err)
	}
	var loaded model.Settings
	if err := json.Unmarshal(blob, &loaded); err != nil {
		return fmt.Errorf("decode settings %s: %w", s.key, err)
	}
	s.current = loaded
	return nil
}

func (s *Store) Get() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update merges patch into the current record and persists it.
func (s *Store) Update(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	if patch.ReminderTime != nil && !model.IsValidReminderHours(*patch.ReminderTime) {
		return model.Settings{}, fmt.Errorf("%w: %d", model.ErrInvalidReminderTime, *patch.ReminderTime)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(ctx); err != nil {
		return model.Settings{}, err
	}
	next := s.current.Apply(patch)
	if err := s.commit(ctx, next); err != nil {
		return model.Settings{}, err
	}
	s.log.Info("settings updated",
		zap.Bool("notifications", next.Notifications),
		zap.Int("reminder_hours", next.ReminderTime),
	)
	return next, nil
}

func (s *Store) ReplaceAll(ctx context.Context, next model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, next)
}

func (s *Store) Reset(ctx context.Context) error {
	return s.ReplaceAll(ctx, model.DefaultSettings())
}

func (s *Store) commit(ctx context.Context, next model.Settings) error {
	blob, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Save(ctx, s.key, blob); err != nil {
		s.log.Error("save settings failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("save settings: %w", err)
	}
	s.current = next
	return nil
}
