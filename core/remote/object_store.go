package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"shared-save/core/ledger"
	"shared-save/core/savefile"
	"shared-save/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// SnapshotContentType is the content type of stored snapshot archives.
const SnapshotContentType = "application/zstd"

// ObjectStore keeps snapshots in object storage and their versions in the ledger.
type ObjectStore struct {
	client storage.Client
	bucket string
	prefix string
	ledger *ledger.Ledger
	logger *zap.Logger
	newID  func() string
}

// NewObjectStore creates an ObjectStore.
func NewObjectStore(client storage.Client, bucket, prefix string, l *ledger.Ledger, logger *zap.Logger) *ObjectStore {
	return &ObjectStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
		ledger: l,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// ObjectKey returns the object key a snapshot with the given id is stored under.
func (s *ObjectStore) ObjectKey(worldID, id string) string {
	return path.Join(s.prefix, worldID, id+".sfsw")
}

// FetchLatest implements Store.
func (s *ObjectStore) FetchLatest(ctx context.Context, worldID string) (*Snapshot, error) {
	head, err := s.ledger.Head(ctx, worldID)
	if errors.Is(err, ledger.ErrNoHead) {
		return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, worldID)
	}
	if err != nil {
		return nil, err
	}

	data, err := s.read(ctx, head.ObjectKey)
	if err != nil {
		return nil, err
	}
	world, err := savefile.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s version %d: %w", worldID, head.Version, err)
	}

	return &Snapshot{
		WorldID:   worldID,
		Version:   head.Version,
		ObjectKey: head.ObjectKey,
		World:     world,
	}, nil
}

// ReadArchive returns the raw archive of a version of worldID; version 0 means the latest.
func (s *ObjectStore) ReadArchive(ctx context.Context, worldID string, version int64) ([]byte, *ledger.WorldVersion, error) {
	if version <= 0 {
		head, err := s.ledger.Head(ctx, worldID)
		if errors.Is(err, ledger.ErrNoHead) {
			return nil, nil, fmt.Errorf("%w: %s", ErrWorldNotFound, worldID)
		}
		if err != nil {
			return nil, nil, err
		}
		version = head.Version
	}

	row, err := s.ledger.Version(ctx, worldID, version)
	if errors.Is(err, ledger.ErrNoHead) {
		return nil, nil, fmt.Errorf("%w: %s version %d", ErrWorldNotFound, worldID, version)
	}
	if err != nil {
		return nil, nil, err
	}
	if row.Pruned {
		return nil, nil, fmt.Errorf("%w: %s version %d was pruned", ErrWorldNotFound, worldID, version)
	}

	data, err := s.read(ctx, row.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	return data, row, nil
}

func (s *ObjectStore) read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	return data, nil
}

// Publish implements Store.
func (s *ObjectStore) Publish(ctx context.Context, req PublishRequest) (int64, error) {
	data, err := savefile.Serialize(req.World)
	if err != nil {
		return 0, fmt.Errorf("serialize snapshot: %w", err)
	}

	key := s.ObjectKey(req.WorldID, s.newID())
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: SnapshotContentType,
		UserMetadata: map[string]string{
			"world":  req.WorldID,
			"author": req.Author,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("upload snapshot %s: %w", key, err)
	}

	version, err := s.ledger.Advance(ctx, ledger.Entry{
		WorldID:         req.WorldID,
		ExpectedVersion: req.ExpectedVersion,
		ObjectKey:       key,
		Author:          req.Author,
		Summary:         req.Summary,
		PlayTimeSeconds: req.World.Settings.TotalPlayTimeSeconds,
		CraftCount:      len(req.World.Crafts),
		SizeBytes:       int64(len(data)),
	})
	if err != nil {
		s.removeOrphan(ctx, key)

		var stale *ledger.StaleError
		if errors.As(err, &stale) {
			return 0, &StaleBaseError{WorldID: req.WorldID, Expected: stale.Expected, Current: stale.Current}
		}
		return 0, err
	}

	s.logger.Debug("Snapshot published",
		zap.String("world", req.WorldID),
		zap.Int64("version", version),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return version, nil
}

func (s *ObjectStore) removeOrphan(ctx context.Context, key string) {
	// The caller's context may already be cancelled; the cleanup still has to run.
	if err := s.client.RemoveObject(context.WithoutCancel(ctx), s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("Failed to remove orphaned snapshot", zap.String("key", key), zap.Error(err))
	}
}

// Prune deletes the snapshot objects of every version of worldID except the newest keep.
// History rows stay and are flagged as pruned. It returns how many objects were removed.
func (s *ObjectStore) Prune(ctx context.Context, worldID string, keep int) (int, error) {
	rows, err := s.ledger.Prunable(ctx, worldID, keep)
	if errors.Is(err, ledger.ErrNoHead) {
		return 0, fmt.Errorf("%w: %s", ErrWorldNotFound, worldID)
	}
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	versionByKey := make(map[string]int64, len(rows))
	objectsCh := make(chan minio.ObjectInfo, len(rows))
	for _, row := range rows {
		versionByKey[row.ObjectKey] = row.Version
		objectsCh <- minio.ObjectInfo{Key: row.ObjectKey}
	}
	close(objectsCh)

	var errs []error
	for rmErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("remove %s: %w", rmErr.ObjectName, rmErr.Err))
		delete(versionByKey, rmErr.ObjectName)
	}

	versions := make([]int64, 0, len(versionByKey))
	for _, v := range versionByKey {
		versions = append(versions, v)
	}
	if err := s.ledger.MarkPruned(ctx, worldID, versions); err != nil {
		errs = append(errs, err)
	}

	s.logger.Info("Pruned snapshots", zap.String("world", worldID), zap.Int("removed", len(versions)), zap.Int("failed", len(rows)-len(versions)))
	return len(versions), errors.Join(errs...)
}
