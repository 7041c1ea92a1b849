package worldsync

import (
	"context"
	"fmt"
	"strings"

	"shared-save/core/reconcile"
	"shared-save/core/savefile"
)

// StatusRequest asks what the local world would contribute to the shared snapshot.
type StatusRequest struct {
	WorldDir string
	WorldID  string
	Author   string
	// Remote also merges against the latest shared snapshot, without publishing.
	Remote bool
}

// StatusResult describes the local world relative to its retained base.
type StatusResult struct {
	// BaseVersion is the shared version the local world was last synced to.
	BaseVersion int64
	// Changes is base→local. Without a retained base every local craft counts as added.
	Changes reconcile.ChangeSet
	// PlayedSeconds is the play time accumulated locally since the base.
	PlayedSeconds int64
	NoBase        bool

	// RemoteVersion and Preview are set when the remote snapshot was consulted.
	RemoteVersion int64
	Preview       *reconcile.MergeResult
}

// Status reports local changes and, on request, previews the merge an upload would
// publish. Nothing is written locally or remotely.
func (s *Service) Status(ctx context.Context, req StatusRequest) (*StatusResult, error) {
	if err := s.checkRequest(req.WorldDir, req.WorldID); err != nil {
		return nil, err
	}
	if err := savefile.ValidateWorldDir(req.WorldDir); err != nil {
		return nil, err
	}

	local, base, state, err := s.loadLocal(req.WorldDir, req.WorldID)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{NoBase: base == nil}
	if base == nil {
		result.Changes = reconcile.Diff(savefile.NewWorld(), local)
		result.PlayedSeconds = local.Settings.TotalPlayTimeSeconds
	} else {
		result.BaseVersion = state.Version
		result.Changes = reconcile.Diff(base, local)
		result.PlayedSeconds = max(local.Settings.TotalPlayTimeSeconds-base.Settings.TotalPlayTimeSeconds, 0)
	}

	if !req.Remote {
		return result, nil
	}

	author := strings.TrimSpace(req.Author)
	if author == "" {
		return nil, reconcile.ErrMissingAuthor
	}
	snap, err := s.store.FetchLatest(ctx, req.WorldID)
	if err != nil {
		return nil, fmt.Errorf("fetch latest snapshot: %w", err)
	}
	result.RemoteVersion = snap.Version

	if base != nil {
		result.Preview, err = reconcile.Reconcile(base, local, snap.World, author)
	} else {
		result.Preview, err = reconcile.ReconcileTwoWay(local, snap.World, author)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
