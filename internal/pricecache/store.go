package pricecache

import (
	"context"
	"errors"

	"github.com/despensa/planner-service/internal/storage"
)

// Snapshot is the full cache content: market -> normalized product key -> entry.
type Snapshot map[string]map[string]Entry

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for market, entries := range s {
		m := make(map[string]Entry, len(entries))
		for k, e := range entries {
			m[k] = e
		}
		out[market] = m
	}
	return out
}

// Store defines the persistence interface for cache snapshots.
// Implementations: local JSON document, Postgres.
type Store interface {
	// Load reads the persisted snapshot. A store with no data yet returns an
	// empty snapshot, not an error.
	Load(ctx context.Context) (Snapshot, error)

	// Save persists the full snapshot.
	Save(ctx context.Context, snap Snapshot) error
}

// LocalStore persists the snapshot as a JSON document in the data directory.
type LocalStore struct {
	docs storage.DocumentStore
}

// NewLocalStore creates a snapshot store backed by the given document store.
func NewLocalStore(docs storage.DocumentStore) *LocalStore {
	return &LocalStore{docs: docs}
}

func (s *LocalStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.docs.Load(ctx, storage.KeyPriceCache, &snap)
	if errors.Is(err, storage.ErrNotFound) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

func (s *LocalStore) Save(ctx context.Context, snap Snapshot) error {
	return s.docs.Save(ctx, storage.KeyPriceCache, snap)
}
