// Package repository stores short-term conversation history as YAML files.
package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"heygpt/pkg/schema"
)

// HistoryStore appends to and reads from one conversation's history file.
type HistoryStore struct {
	path string
	now  func() time.Time
}

// NewHistoryStore creates a store backed by the file at path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path, now: time.Now}
}

// ConversationPath is the history file for convo inside dir.
func ConversationPath(dir, convo string) string {
	return filepath.Join(dir, convo)
}

// Path returns the history file location.
func (s *HistoryStore) Path() string {
	return s.path
}

// EnsureHistoryFile creates the history file, and its directory, with an
// empty dialogue if it does not exist yet.
func EnsureHistoryFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat history file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create conversation directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create history file %s: %w", path, err)
	}
	if _, err := file.WriteString("dialogue: "); err != nil {
		_ = file.Close()
		return fmt.Errorf("write history file: %w", err)
	}
	return file.Close()
}

// SaveHistory appends entries, stamped with the current time, to the
// dialogue.
func (s *HistoryStore) SaveHistory(entries []schema.HistoryEntry) error {
	for i := range entries {
		if err := schema.ValidateHistoryEntry(&entries[i]); err != nil {
			return fmt.Errorf("history entry %d: %w", i, err)
		}
	}

	lock := NewFileLock(s.path+".lock", "heygpt")
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	script, err := s.read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	stamp := s.now().UTC()
	for _, e := range entries {
		script.Dialogue = append(script.Dialogue, schema.DialogueSegment{
			Role:      e.Author,
			Content:   e.Content,
			CreatedAt: stamp,
		})
	}

	data, err := yaml.Marshal(&script)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create conversation directory: %w", err)
	}
	if err := WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// GetHistory returns the last n segments in chronological order, or every
// segment when fewer than n exist.
func (s *HistoryStore) GetHistory(n int) ([]schema.DialogueSegment, error) {
	script, err := s.read()
	if err != nil {
		return nil, err
	}
	dialogue := script.Dialogue
	if n < 0 {
		n = 0
	}
	if n < len(dialogue) {
		dialogue = dialogue[len(dialogue)-n:]
	}
	return dialogue, nil
}

func (s *HistoryStore) read() (schema.Script, error) {
	var script schema.Script
	data, err := os.ReadFile(s.path)
	if err != nil {
		return script, fmt.Errorf("read history: %w", err)
	}
	if err := yaml.Unmarshal(data, &script); err != nil {
		return script, fmt.Errorf("parse history %s: %w", s.path, err)
	}
	return script, nil
}
