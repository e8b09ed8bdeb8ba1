package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sandeepkv93/academiaplan/internal/model"
)

var ErrInvalidFormat = errors.New("session: invalid import format")

// Document is the export/import interchange format.
type Document struct {
	Tasks    []model.Task   `json:"tasks"`
	Settings model.Settings `json:"settings"`
}

func (s *Session) Export() ([]byte, error) {
	doc := Document{Tasks: s.Tasks.List(), Settings: s.Settings.Get()}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return out, nil
}

// ParseDocument checks that tasks is an array and settings an object
// before decoding either, and that no two tasks share an id.
func ParseDocument(data []byte) (Document, error) {
	var raw struct {
		Tasks    json.RawMessage `json:"tasks"`
		Settings json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if !hasPrefix(raw.Tasks, '[') {
		return Document{}, fmt.Errorf("%w: tasks must be an array", ErrInvalidFormat)
	}
	if !hasPrefix(raw.Settings, '{') {
		return Document{}, fmt.Errorf("%w: settings must be an object", ErrInvalidFormat)
	}
	var doc Document
	if err := json.Unmarshal(raw.Tasks, &doc.Tasks); err != nil {
		return Document{}, fmt.Errorf("%w: tasks: %v", ErrInvalidFormat, err)
	}
	if err := json.Unmarshal(raw.Settings, &doc.Settings); err != nil {
		return Document{}, fmt.Errorf("%w: settings: %v", ErrInvalidFormat, err)
	}
	seen := make(map[string]struct{}, len(doc.Tasks))
	for _, task := range doc.Tasks {
		if _, dup := seen[task.ID]; dup {
			return Document{}, fmt.Errorf("%w: duplicate task id %q", ErrInvalidFormat, task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	return doc, nil
}

func hasPrefix(raw json.RawMessage, c byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == c
}

// Import replaces both stores with the document's content. Either both
// are replaced or neither is.
func (s *Session) Import(ctx context.Context, data []byte) (Document, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return Document{}, err
	}
	if err := s.replace(ctx, doc); err != nil {
		return Document{}, err
	}
	s.log.Info("data imported", zap.Int("tasks", len(doc.Tasks)))
	return doc, nil
}

// ClearAll empties the task list and resets settings to defaults.
func (s *Session) ClearAll(ctx context.Context) error {
	if err := s.replace(ctx, Document{Tasks: []model.Task{}, Settings: model.DefaultSettings()}); err != nil {
		return err
	}
	s.log.Info("data cleared")
	return nil
}

func (s *Session) replace(ctx context.Context, doc Document) error {
	previous := s.Tasks.List()
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	if err := s.Tasks.ReplaceAll(ctx, doc.Tasks); err != nil {
		return err
	}
	if err := s.Settings.ReplaceAll(ctx, doc.Settings); err != nil {
		if rbErr := s.Tasks.ReplaceAll(ctx, previous); rbErr != nil {
			s.log.Error("restore tasks after failed settings save", zap.Error(rbErr))
			return errors.Join(err, rbErr)
		}
		return err
	}
	return nil
}
