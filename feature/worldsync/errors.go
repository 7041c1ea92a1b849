package worldsync

import (
	"errors"
	"fmt"
	"strings"

	"shared-save/core/reconcile"
)

// ErrNoBase is returned when a world has no retained base snapshot.
var ErrNoBase = errors.New("no base snapshot retained for this world; run update first")

// ErrWorldExists is returned by Seed when the world was already published.
var ErrWorldExists = errors.New("world already exists in the remote store")

// UnsyncedChangesError is returned by an update that would overwrite local work.
type UnsyncedChangesError struct {
	WorldID string
	// Changes are the craft changes since the retained base.
	Changes reconcile.ChangeSet
	// PlayTimeSeconds is the play time accrued since the retained base.
	PlayTimeSeconds int64
	// NoBase is set when no base is retained and the directory already holds a world.
	NoBase bool
}

func (e *UnsyncedChangesError) Error() string {
	if e.NoBase {
		return fmt.Sprintf("world %s: the directory already holds a world that was never synced; upload it with two-way merge or update with force to replace it", e.WorldID)
	}

	var parts []string
	for _, id := range e.Changes.IDs() {
		switch {
		case hasKey(e.Changes.Added, id):
			parts = append(parts, "added "+e.Changes.Added[id].Name)
		case hasKey(e.Changes.Removed, id):
			parts = append(parts, "removed "+e.Changes.Removed[id].Name)
		default:
			parts = append(parts, "altered "+e.Changes.Altered[id].New.Name)
		}
	}
	if e.PlayTimeSeconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds of play time", e.PlayTimeSeconds))
	}
	return fmt.Sprintf("world %s has changes that were not uploaded (%s); upload first or update with force to discard them", e.WorldID, strings.Join(parts, ", "))
}

func hasKey[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}
