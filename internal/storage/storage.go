// Package storage persists the planner's JSON data documents (inventory,
// price cache, preferences, consumption model, shopping history).
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Well-known document keys under the data directory.
const (
	KeyInventory        = "inventory.json"
	KeyPriceCache       = "price_cache.json"
	KeyPreferences      = "family_preferences.json"
	KeyConsumptionModel = "consumption_model.json"
	KeyShoppingHistory  = "shopping_history.json"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentStore defines the interface for loading and saving JSON documents.
// Implementations can be local filesystem, S3, etc.
type DocumentStore interface {
	// Load reads the document at key into v. Returns ErrNotFound when the
	// document does not exist.
	Load(ctx context.Context, key string, v any) error

	// Save writes v as the document at key.
	Save(ctx context.Context, key string, v any) error

	// Exists checks whether a document exists at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// LocalStore implements DocumentStore on the local filesystem.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a local document store rooted at basePath.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", basePath, err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Load reads and unmarshals the document at key.
func (s *LocalStore) Load(ctx context.Context, key string, v any) error {
	content, err := os.ReadFile(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to read document %s: %w", key, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", key, err)
	}
	return nil
}

// Save marshals v and writes it at key. The write goes through a temp file
// and a rename so readers never observe a partially written document.
func (s *LocalStore) Save(ctx context.Context, key string, v any) error {
	fullPath := s.keyToPath(key)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write document %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file for %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace document %s: %w", key, err)
	}
	return nil
}

// Exists checks whether a document exists at key.
func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat document %s: %w", key, err)
	}
	return true, nil
}

// BasePath returns the data directory this store is rooted at.
func (s *LocalStore) BasePath() string {
	return s.basePath
}

// keyToPath converts a document key to a filesystem path, preventing
// path traversal outside the base directory.
func (s *LocalStore) keyToPath(key string) string {
	// Rooting the key before cleaning strips any ".." segments.
	cleanKey := filepath.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	return filepath.Join(s.basePath, cleanKey)
}
