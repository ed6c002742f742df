package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/covid-jp-sync/internal/article"
)

// Storage handles persistence of article snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// snapshotPath returns the path to the snapshot file for a prefecture
// filter
func (s *Storage) snapshotPath(prefecture string) string {
	if prefecture == "" || strings.EqualFold(prefecture, "all") {
		return filepath.Join(s.dataDir, "snapshot.json")
	}
	name := strings.ToLower(strings.ReplaceAll(prefecture, " ", "_"))
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", name))
}

// LoadSnapshot loads a snapshot from disk. A missing file yields an empty
// snapshot.
func (s *Storage) LoadSnapshot(prefecture string) (*article.Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(prefecture))
	if err != nil {
		if os.IsNotExist(err) {
			return article.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot article.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snapshot.Articles == nil {
		snapshot.Articles = make(map[string]*article.Article)
	}

	return &snapshot, nil
}

// SaveSnapshot saves a snapshot to disk
func (s *Storage) SaveSnapshot(snapshot *article.Snapshot, prefecture string) error {
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	// Replaced by rename so readers never see a partial file.
	path := s.snapshotPath(prefecture)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

