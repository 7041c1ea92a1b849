package mocks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"shared-save/core/remote"
	"shared-save/core/savefile"
)

// Store is an in-memory remote.Store for tests. It enforces the same expected version
// check as the object store.
type Store struct {
	mu       sync.Mutex
	versions map[string][]*savefile.SaveWorld

	// BeforePublish runs at the start of every Publish while the store is unlocked.
	// A non nil error rejects the publish.
	BeforePublish func(req remote.PublishRequest) error

	// FetchErr, when set, is returned by FetchLatest.
	FetchErr error

	// Published records every accepted request.
	Published []remote.PublishRequest
	// Fetches counts FetchLatest calls.
	Fetches int
	// Attempts counts Publish calls.
	Attempts int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{versions: map[string][]*savefile.SaveWorld{}}
}

// Put appends w as the next version of worldID, as if another player had published it.
func (s *Store) Put(worldID string, w *savefile.SaveWorld) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[worldID] = append(s.versions[worldID], w.Clone())
	return int64(len(s.versions[worldID]))
}

// Latest returns the newest version of worldID and its number.
func (s *Store) Latest(worldID string) (*savefile.SaveWorld, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.versions[worldID]
	if len(versions) == 0 {
		return nil, 0
	}
	return versions[len(versions)-1].Clone(), int64(len(versions))
}

// FetchLatest implements remote.Store.
func (s *Store) FetchLatest(ctx context.Context, worldID string) (*remote.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.Fetches++
	fetchErr := s.FetchErr
	s.mu.Unlock()
	if fetchErr != nil {
		return nil, fetchErr
	}

	world, version := s.Latest(worldID)
	if world == nil {
		return nil, fmt.Errorf("%w: %s", remote.ErrWorldNotFound, worldID)
	}
	return &remote.Snapshot{
		WorldID:   worldID,
		Version:   version,
		ObjectKey: fmt.Sprintf("mem/%s/%d", worldID, version),
		World:     world,
	}, nil
}

// Publish implements remote.Store.
func (s *Store) Publish(ctx context.Context, req remote.PublishRequest) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.Attempts++
	hook := s.BeforePublish
	s.mu.Unlock()

	if hook != nil {
		if err := hook(req); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current := int64(len(s.versions[req.WorldID]))
	if current != req.ExpectedVersion {
		return 0, &remote.StaleBaseError{WorldID: req.WorldID, Expected: req.ExpectedVersion, Current: current}
	}
	s.versions[req.WorldID] = append(s.versions[req.WorldID], req.World.Clone())
	req.Summary = slices.Clone(req.Summary)
	s.Published = append(s.Published, req)
	return current + 1, nil
}
