package game

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates a requested snapshot is missing from the store.
var ErrNotFound = errors.New("snapshot not found")

// Store persists day snapshots. The core defines the snapshot's logical
// shape; the store owns the encoding.
type Store interface {
	Save(ctx context.Context, id string, snap Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, error)
}

// FileStore writes one directory per snapshot id under Dir, with the state in
// state.yaml.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (fs *FileStore) path(id string) string {
	return filepath.Join(fs.Dir, id, "state.yaml")
}

// Save writes the snapshot, creating the directory as needed.
func (fs *FileStore) Save(ctx context.Context, id string, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("snapshot id is required")
	}
	dir := filepath.Join(fs.Dir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("save snapshot %s: %w", id, err)
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", id, err)
	}
	if err := os.WriteFile(fs.path(id), data, 0644); err != nil {
		return fmt.Errorf("save snapshot %s: %w", id, err)
	}
	return nil
}

// Load reads and decodes a snapshot.
func (fs *FileStore) Load(ctx context.Context, id string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(fs.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, fmt.Errorf("load snapshot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	return snap, nil
}

// List returns the ids of all stored snapshots.
func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(fs.path(entry.Name())); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}
