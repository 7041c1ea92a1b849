package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"shared-save/core/ledger"
	"shared-save/core/remote"
	"shared-save/core/savefile"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a world or version does not exist.
var ErrNotFound = errors.New("not found")

// ArchiveReader reads stored snapshot archives.
type ArchiveReader interface {
	ReadArchive(ctx context.Context, worldID string, version int64) ([]byte, *ledger.WorldVersion, error)
}

// VersionView is a history entry as returned by the API.
type VersionView struct {
	Version         int64     `json:"version"`
	Author          string    `json:"author"`
	Summary         []string  `json:"summary"`
	PlayTimeSeconds int64     `json:"play_time_seconds"`
	CraftCount      int       `json:"craft_count"`
	SizeBytes       int64     `json:"size_bytes"`
	Pruned          bool      `json:"pruned"`
	CreatedAt       time.Time `json:"created_at"`
}

// CraftView is a craft as listed by the API.
type CraftView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
	Status string `json:"status"`
}

// Service answers history queries.
type Service struct {
	ledger *ledger.Ledger
	reader ArchiveReader
	logger *zap.Logger
}

// NewService creates a new history service.
func NewService(l *ledger.Ledger, reader ArchiveReader, logger *zap.Logger) *Service {
	return &Service{ledger: l, reader: reader, logger: logger}
}

// Worlds returns the head of every published world.
func (s *Service) Worlds(ctx context.Context) ([]ledger.WorldHead, error) {
	return s.ledger.Heads(ctx)
}

// Head returns the head of worldID.
func (s *Service) Head(ctx context.Context, worldID string) (*ledger.WorldHead, error) {
	head, err := s.ledger.Head(ctx, worldID)
	if errors.Is(err, ledger.ErrNoHead) {
		return nil, fmt.Errorf("%w: world %s", ErrNotFound, worldID)
	}
	return head, err
}

// History returns up to limit versions of worldID, newest first.
func (s *Service) History(ctx context.Context, worldID string, limit int) ([]VersionView, error) {
	rows, err := s.ledger.History(ctx, worldID, limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: world %s", ErrNotFound, worldID)
	}

	views := make([]VersionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, VersionView{
			Version:         row.Version,
			Author:          row.Author,
			Summary:         row.Lines(),
			PlayTimeSeconds: row.PlayTimeSeconds,
			CraftCount:      row.CraftCount,
			SizeBytes:       row.SizeBytes,
			Pruned:          row.Pruned,
			CreatedAt:       row.CreatedAt,
		})
	}
	return views, nil
}

// Snapshot returns the archive of a version of worldID; version 0 means the latest.
func (s *Service) Snapshot(ctx context.Context, worldID string, version int64) ([]byte, *ledger.WorldVersion, error) {
	data, row, err := s.reader.ReadArchive(ctx, worldID, version)
	if errors.Is(err, remote.ErrWorldNotFound) {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return data, row, err
}

// Crafts lists the crafts of a version of worldID, ordered by identifier.
func (s *Service) Crafts(ctx context.Context, worldID string, version int64) ([]CraftView, *ledger.WorldVersion, error) {
	data, row, err := s.Snapshot(ctx, worldID, version)
	if err != nil {
		return nil, nil, err
	}
	world, err := savefile.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot %s version %d: %w", worldID, row.Version, err)
	}

	crafts := make([]CraftView, 0, len(world.Crafts))
	for _, c := range world.Crafts {
		crafts = append(crafts, CraftView{ID: c.ID, Name: c.Name, Author: c.Author, Status: string(c.Status)})
	}
	sort.Slice(crafts, func(i, j int) bool { return crafts[i].ID < crafts[j].ID })
	return crafts, row, nil
}
