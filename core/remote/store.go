package remote

import (
	"context"

	"shared-save/core/savefile"
)

// Snapshot is one published version of a world.
type Snapshot struct {
	WorldID   string
	Version   int64
	ObjectKey string
	World     *savefile.SaveWorld
}

// PublishRequest describes a new version of a world.
type PublishRequest struct {
	WorldID string
	World   *savefile.SaveWorld
	// ExpectedVersion is the version the world was merged against, 0 for a new world.
	ExpectedVersion int64
	Author          string
	Summary         []string
}

// Store is the shared snapshot store.
type Store interface {
	// FetchLatest returns the newest snapshot of worldID, or ErrWorldNotFound.
	FetchLatest(ctx context.Context, worldID string) (*Snapshot, error)
	// Publish stores req.World as the next version and returns its version number.
	Publish(ctx context.Context, req PublishRequest) (int64, error)
}
