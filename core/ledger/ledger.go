package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultHistoryLimit is used when History is called with a non positive limit.
	DefaultHistoryLimit = 20
	// MaxHistoryLimit caps a single History page.
	MaxHistoryLimit = 200
)

// Entry describes a version about to be published.
type Entry struct {
	WorldID         string
	ExpectedVersion int64
	ObjectKey       string
	Author          string
	Summary         []string
	PlayTimeSeconds int64
	CraftCount      int
	SizeBytes       int64
}

// Ledger stores world heads and publish history.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a Ledger over db.
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate creates or updates the ledger tables.
func (l *Ledger) Migrate(ctx context.Context) error {
	if err := l.db.WithContext(ctx).AutoMigrate(&WorldHead{}, &WorldVersion{}); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

// Head returns the current head of worldID, or ErrNoHead.
func (l *Ledger) Head(ctx context.Context, worldID string) (*WorldHead, error) {
	var head WorldHead
	err := l.db.WithContext(ctx).Where("world_id = ?", worldID).First(&head).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoHead
	}
	if err != nil {
		return nil, fmt.Errorf("load head of %s: %w", worldID, err)
	}
	return &head, nil
}

// Advance records a new version of e.WorldID if its head is still at e.ExpectedVersion
// (0 for a world that has never been published) and returns the new version number.
func (l *Ledger) Advance(ctx context.Context, e Entry) (int64, error) {
	next := e.ExpectedVersion + 1
	now := l.now()

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if e.ExpectedVersion == 0 {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&WorldHead{
				WorldID:   e.WorldID,
				Version:   next,
				ObjectKey: e.ObjectKey,
				UpdatedAt: now,
			})
			if res.Error != nil {
				return fmt.Errorf("create head: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return l.stale(tx, e)
			}
		} else {
			res := tx.Model(&WorldHead{}).
				Where("world_id = ? AND version = ?", e.WorldID, e.ExpectedVersion).
				Updates(map[string]any{
					"version":    next,
					"object_key": e.ObjectKey,
					"updated_at": now,
				})
			if res.Error != nil {
				return fmt.Errorf("advance head: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return l.stale(tx, e)
			}
		}

		row := WorldVersion{
			WorldID:         e.WorldID,
			Version:         next,
			ObjectKey:       e.ObjectKey,
			Author:          e.Author,
			Summary:         strings.Join(e.Summary, "\n"),
			PlayTimeSeconds: e.PlayTimeSeconds,
			CraftCount:      e.CraftCount,
			SizeBytes:       e.SizeBytes,
			CreatedAt:       now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("record version: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (l *Ledger) stale(tx *gorm.DB, e Entry) error {
	var head WorldHead
	err := tx.Where("world_id = ?", e.WorldID).First(&head).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("load head of %s: %w", e.WorldID, err)
	}
	return &StaleError{WorldID: e.WorldID, Expected: e.ExpectedVersion, Current: head.Version}
}

// History returns up to limit versions of worldID, newest first.
func (l *Ledger) History(ctx context.Context, worldID string, limit int) ([]WorldVersion, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	var rows []WorldVersion
	err := l.db.WithContext(ctx).
		Where("world_id = ?", worldID).
		Order("version DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load history of %s: %w", worldID, err)
	}
	return rows, nil
}

// Version returns a single history entry, or ErrNoHead when it does not exist.
func (l *Ledger) Version(ctx context.Context, worldID string, version int64) (*WorldVersion, error) {
	var row WorldVersion
	err := l.db.WithContext(ctx).Where("world_id = ? AND version = ?", worldID, version).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoHead
	}
	if err != nil {
		return nil, fmt.Errorf("load version %d of %s: %w", version, worldID, err)
	}
	return &row, nil
}

// Prunable returns the versions of worldID older than the newest keep whose snapshots
// have not been pruned yet, oldest first.
func (l *Ledger) Prunable(ctx context.Context, worldID string, keep int) ([]WorldVersion, error) {
	head, err := l.Head(ctx, worldID)
	if err != nil {
		return nil, err
	}

	var rows []WorldVersion
	err = l.db.WithContext(ctx).
		Where("world_id = ? AND version <= ? AND pruned = ?", worldID, head.Version-int64(max(keep, 1)), false).
		Order("version ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load prunable versions of %s: %w", worldID, err)
	}
	return rows, nil
}

// MarkPruned flags the given versions of worldID as having no snapshot object anymore.
func (l *Ledger) MarkPruned(ctx context.Context, worldID string, versions []int64) error {
	if len(versions) == 0 {
		return nil
	}
	err := l.db.WithContext(ctx).Model(&WorldVersion{}).
		Where("world_id = ? AND version IN ?", worldID, versions).
		Update("pruned", true).Error
	if err != nil {
		return fmt.Errorf("mark pruned versions of %s: %w", worldID, err)
	}
	return nil
}

// Heads returns the head of every published world ordered by world id.
func (l *Ledger) Heads(ctx context.Context) ([]WorldHead, error) {
	var heads []WorldHead
	if err := l.db.WithContext(ctx).Order("world_id ASC").Find(&heads).Error; err != nil {
		return nil, fmt.Errorf("load world heads: %w", err)
	}
	return heads, nil
}
