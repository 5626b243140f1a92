package adapter

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// JournalFileName is the name of the journal written into every backup folder.
const JournalFileName = "relocation.yaml"

// JournalStore reads and writes relocation journals.
type JournalStore interface {
	WriteJournal(ctx context.Context, backupPath m.Path, journal m.Journal) error
	ReadJournal(ctx context.Context, backupPath m.Path) (m.Journal, error)
}

// YAMLJournalStore stores journals as YAML next to the moved files.
type YAMLJournalStore struct {
	fs ProjectFSAdapter
}

// NewYAMLJournalStore creates a journal store on fs.
func NewYAMLJournalStore(fs ProjectFSAdapter) *YAMLJournalStore {
	return &YAMLJournalStore{fs: fs}
}

// WriteJournal encodes journal into backupPath.
func (s *YAMLJournalStore) WriteJournal(ctx context.Context, backupPath m.Path, journal m.Journal) error {
	content, err := yaml.Marshal(journal)
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}

	if err := s.fs.WriteFile(ctx, s.fs.JoinPath(string(backupPath), JournalFileName), content, 0o644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}

	return nil
}

// ReadJournal decodes the journal stored in backupPath.
func (s *YAMLJournalStore) ReadJournal(ctx context.Context, backupPath m.Path) (m.Journal, error) {
	content, err := s.fs.ReadFile(ctx, s.fs.JoinPath(string(backupPath), JournalFileName))
	if err != nil {
		return m.Journal{}, fmt.Errorf("read journal: %w", err)
	}

	var journal m.Journal
	if err := yaml.Unmarshal(content, &journal); err != nil {
		return m.Journal{}, fmt.Errorf("parse journal: %w", err)
	}

	return journal, nil
}
