package worldsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shared-save/core/notify"
	"shared-save/core/reconcile"
	"shared-save/core/remote"
	"shared-save/core/savefile"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service moves worlds between a local world directory and the shared store.
type Service struct {
	store    remote.Store
	notifier notify.Notifier
	state    *StateStore
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new sync service.
func NewService(store remote.Store, notifier notify.Notifier, state *StateStore, cfg Config, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if cfg.MaxPublishAttempts <= 0 {
		cfg.MaxPublishAttempts = 3
	}
	return &Service{
		store:    store,
		notifier: notifier,
		state:    state,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UpdateRequest asks to replace a local world with the latest shared snapshot.
type UpdateRequest struct {
	WorldDir string
	WorldID  string
	// Force discards local changes that were never uploaded.
	Force bool
}

// UpdateResult describes a completed update.
type UpdateResult struct {
	Version int64
	Crafts  int
	// PlayTimeSeconds is the shared play time counter of the downloaded snapshot.
	PlayTimeSeconds int64
}

// UploadRequest asks to merge a local world into the shared snapshot.
type UploadRequest struct {
	WorldDir string
	WorldID  string
	Author   string
	// AllowTwoWay merges without a base when none is retained.
	AllowTwoWay bool
}

// UploadResult describes a completed upload.
type UploadResult struct {
	// Version is the published version, or the fetched one when there was nothing to publish.
	Version int64
	Summary []string
	// Attempts counts merge-and-publish rounds.
	Attempts int
	// Unchanged is set when the local world added nothing to the shared snapshot.
	Unchanged bool
	// QuicksavesPurged counts deleted quicksaves.
	QuicksavesPurged int
	TwoWay           bool
}

// SeedRequest asks to publish a local world as the first version of a new shared world.
type SeedRequest struct {
	WorldDir string
	WorldID  string
	Author   string
}

// ReconcileForUpdate downloads the latest shared snapshot into req.WorldDir.
//
// Unless req.Force is set it refuses with *UnsyncedChangesError when the local world has
// changes relative to its retained base. The written copy has its play time counter reset
// to zero and becomes the new base.
func (s *Service) ReconcileForUpdate(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	if err := s.checkRequest(req.WorldDir, req.WorldID); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("world", req.WorldID))

	if !req.Force {
		if err := s.checkUnsynced(req.WorldDir, req.WorldID); err != nil {
			return nil, err
		}
	}

	snap, err := s.store.FetchLatest(ctx, req.WorldID)
	if err != nil {
		return nil, fmt.Errorf("fetch latest snapshot: %w", err)
	}

	fresh := savefile.WithPlayTime(snap.World, 0)
	if err := s.writeLocal(req.WorldDir, req.WorldID, snap.Version, "", fresh); err != nil {
		return nil, err
	}

	log.Info("World updated",
		zap.Int64("version", snap.Version),
		zap.Int("crafts", len(fresh.Crafts)),
		zap.Bool("forced", req.Force))

	return &UpdateResult{
		Version:         snap.Version,
		Crafts:          len(fresh.Crafts),
		PlayTimeSeconds: snap.World.Settings.TotalPlayTimeSeconds,
	}, nil
}

func (s *Service) checkUnsynced(worldDir, worldID string) error {
	if _, err := os.Stat(filepath.Join(worldDir, savefile.SettingsFile)); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	local, err := savefile.ReadDir(worldDir)
	if err != nil {
		return fmt.Errorf("read local world: %w", err)
	}

	_, base, err := s.state.Load(worldID)
	if errors.Is(err, ErrNoBase) {
		return &UnsyncedChangesError{WorldID: worldID, NoBase: true}
	}
	if err != nil {
		return err
	}

	changes := reconcile.Diff(base, local)
	played := local.Settings.TotalPlayTimeSeconds - base.Settings.TotalPlayTimeSeconds
	if !changes.IsEmpty() || played > 0 {
		return &UnsyncedChangesError{WorldID: worldID, Changes: changes, PlayTimeSeconds: max(played, 0)}
	}
	return nil
}

// ReconcileForUpload merges the local world into the latest shared snapshot and publishes
// the result.
//
// When the shared snapshot advances between fetch and publish the merge is recomputed
// against the new snapshot, at most Config.MaxPublishAttempts times. Any other failure
// aborts before anything is written locally or remotely.
func (s *Service) ReconcileForUpload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if err := s.checkRequest(req.WorldDir, req.WorldID); err != nil {
		return nil, err
	}
	if err := savefile.ValidateWorldDir(req.WorldDir); err != nil {
		return nil, err
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		return nil, reconcile.ErrMissingAuthor
	}
	log := s.logger.With(zap.String("world", req.WorldID), zap.String("author", author))

	local, base, _, err := s.loadLocal(req.WorldDir, req.WorldID)
	if err != nil {
		return nil, err
	}
	if base == nil && !req.AllowTwoWay {
		return nil, ErrNoBase
	}

	result := &UploadResult{TwoWay: base == nil}
	var merged *savefile.SaveWorld

	op := func() (int64, error) {
		result.Attempts++

		snap, err := s.store.FetchLatest(ctx, req.WorldID)
		if err != nil {
			return 0, backoff.Permanent(fmt.Errorf("fetch latest snapshot: %w", err))
		}

		var m *reconcile.MergeResult
		if base != nil {
			m, err = reconcile.Reconcile(base, local, snap.World, author)
		} else {
			m, err = reconcile.ReconcileTwoWay(local, snap.World, author)
		}
		if err != nil {
			return 0, backoff.Permanent(err)
		}
		log.Debug("Merged local world",
			zap.Int("attempt", result.Attempts),
			zap.Int64("against", snap.Version),
			zap.Int("local_changes", m.LocalChanges.Len()),
			zap.Int("remote_changes", m.RemoteChanges.Len()))

		merged = m.World
		result.Summary = m.Summary
		if m.World.Equal(snap.World) {
			result.Unchanged = true
			return snap.Version, nil
		}

		version, err := s.store.Publish(ctx, remote.PublishRequest{
			WorldID:         req.WorldID,
			World:           m.World,
			ExpectedVersion: snap.Version,
			Author:          author,
			Summary:         m.Summary,
		})
		var stale *remote.StaleBaseError
		if errors.As(err, &stale) {
			log.Warn("Shared world advanced during upload, merging again",
				zap.Int64("expected", stale.Expected),
				zap.Int64("current", stale.Current),
				zap.Int("attempt", result.Attempts))
			return 0, err
		}
		if err != nil {
			return 0, backoff.Permanent(fmt.Errorf("publish snapshot: %w", err))
		}
		return version, nil
	}

	version, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(time.Duration(s.cfg.RetryDelayMs)*time.Millisecond)),
		backoff.WithMaxTries(uint(s.cfg.MaxPublishAttempts)))
	if err != nil {
		var stale *remote.StaleBaseError
		if errors.As(err, &stale) {
			return nil, fmt.Errorf("gave up after %d attempts: %w", result.Attempts, err)
		}
		return nil, err
	}
	result.Version = version

	uploaded := local
	if s.cfg.RefreshAfterUpload {
		uploaded = merged
	}

	if result.Unchanged {
		// The shared world already holds every local change: adopt it as the base.
		if err := s.settle(req.WorldDir, req.WorldID, version, author, uploaded); err != nil {
			return nil, fmt.Errorf("record base snapshot at version %d: %w", version, err)
		}
		log.Info("Nothing to upload", zap.Int64("version", version))
		return result, nil
	}

	s.announce(ctx, req.WorldID, version, author, result.Summary)

	if err := s.settle(req.WorldDir, req.WorldID, version, author, uploaded); err != nil {
		return nil, fmt.Errorf("version %d was published but the local world could not be refreshed: %w", version, err)
	}

	if s.cfg.PurgeQuicksaves {
		purged, err := savefile.PurgeQuicksaves(req.WorldDir)
		if err != nil {
			log.Warn("Failed to purge quicksaves", zap.Error(err))
		}
		result.QuicksavesPurged = purged
	}

	log.Info("Upload complete",
		zap.Int64("version", version),
		zap.Int("changes", len(result.Summary)),
		zap.Int("attempts", result.Attempts))
	return result, nil
}

// Seed publishes the local world as version 1 of a new shared world.
func (s *Service) Seed(ctx context.Context, req SeedRequest) (int64, error) {
	if err := s.checkRequest(req.WorldDir, req.WorldID); err != nil {
		return 0, err
	}
	if err := savefile.ValidateWorldDir(req.WorldDir); err != nil {
		return 0, err
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		return 0, reconcile.ErrMissingAuthor
	}

	local, err := savefile.ReadDir(req.WorldDir)
	if err != nil {
		return 0, fmt.Errorf("read local world: %w", err)
	}
	summary := []string{fmt.Sprintf("%s: seeded world with %d crafts", author, len(local.Crafts))}

	version, err := s.store.Publish(ctx, remote.PublishRequest{
		WorldID: req.WorldID,
		World:   local,
		Author:  author,
		Summary: summary,
	})
	var stale *remote.StaleBaseError
	if errors.As(err, &stale) {
		return 0, fmt.Errorf("%w: %s is at version %d", ErrWorldExists, req.WorldID, stale.Current)
	}
	if err != nil {
		return 0, fmt.Errorf("publish snapshot: %w", err)
	}

	s.announce(ctx, req.WorldID, version, author, summary)

	if err := s.settle(req.WorldDir, req.WorldID, version, author, local); err != nil {
		return 0, fmt.Errorf("version %d was published but the local world could not be refreshed: %w", version, err)
	}

	s.logger.Info("World seeded", zap.String("world", req.WorldID), zap.Int64("version", version), zap.Int("crafts", len(local.Crafts)))
	return version, nil
}

// loadLocal reads the local world and its retained base concurrently. base and state are
// nil when no base was retained.
func (s *Service) loadLocal(worldDir, worldID string) (local, base *savefile.SaveWorld, state *State, err error) {
	g := new(errgroup.Group)
	g.Go(func() error {
		w, err := savefile.ReadDir(worldDir)
		if err != nil {
			return fmt.Errorf("read local world: %w", err)
		}
		local = w
		return nil
	})
	g.Go(func() error {
		st, b, err := s.state.Load(worldID)
		if errors.Is(err, ErrNoBase) {
			return nil
		}
		state, base = st, b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return local, base, state, nil
}

// settle records the local side after a publish. With RefreshAfterUpload the published
// world is written back with a zeroed play time counter and becomes the base, exactly like
// an update; otherwise the uploaded local copy is kept as base.
func (s *Service) settle(worldDir, worldID string, version int64, author string, uploaded *savefile.SaveWorld) error {
	if s.cfg.RefreshAfterUpload {
		return s.writeLocal(worldDir, worldID, version, author, savefile.WithPlayTime(uploaded, 0))
	}
	return s.state.Save(State{WorldID: worldID, Version: version, Author: author, UpdatedAt: s.now()}, uploaded)
}

func (s *Service) writeLocal(worldDir, worldID string, version int64, author string, w *savefile.SaveWorld) error {
	if err := savefile.WriteDir(worldDir, w); err != nil {
		return fmt.Errorf("write local world: %w", err)
	}
	if err := s.state.Save(State{WorldID: worldID, Version: version, Author: author, UpdatedAt: s.now()}, w); err != nil {
		return fmt.Errorf("record base snapshot: %w", err)
	}
	return nil
}

func (s *Service) announce(ctx context.Context, worldID string, version int64, author string, lines []string) {
	event := notify.Event{
		WorldID:     worldID,
		Version:     version,
		Author:      author,
		Lines:       lines,
		PublishedAt: s.now(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("Failed to announce changes", zap.String("world", worldID), zap.Error(err))
	}
}

func (s *Service) checkRequest(worldDir, worldID string) error {
	if err := ValidateWorldID(worldID); err != nil {
		return err
	}
	if !filepath.IsAbs(worldDir) {
		return fmt.Errorf("world path %q is not absolute", worldDir)
	}
	return nil
}
