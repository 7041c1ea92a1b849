package checks

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"shared-save/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// SnapshotSuffix is the file extension of stored snapshot archives.
const SnapshotSuffix = ".sfsw"

// StorageReport describes the snapshot bucket.
type StorageReport struct {
	Bucket    string   `json:"bucket"`
	Exists    bool     `json:"exists"`
	Snapshots int      `json:"snapshots"`
	Worlds    []string `json:"worlds"`
	Foreign   []string `json:"foreign"`
}

// CheckStorage reports whether bucket exists and which snapshots live under prefix.
// Objects under prefix that are not snapshot archives are listed as foreign.
func CheckStorage(ctx context.Context, client storage.Client, bucket, prefix string) (*StorageReport, error) {
	report := &StorageReport{Bucket: bucket, Worlds: []string{}, Foreign: []string{}}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return report, nil
	}
	report.Exists = true

	listPrefix := strings.Trim(prefix, "/")
	if listPrefix != "" {
		listPrefix += "/"
	}

	worlds := make(map[string]struct{})
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: listPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		rel := strings.TrimPrefix(obj.Key, listPrefix)
		world, name := path.Split(rel)
		world = strings.Trim(world, "/")
		if world == "" || strings.Contains(world, "/") || !strings.HasSuffix(name, SnapshotSuffix) {
			report.Foreign = append(report.Foreign, obj.Key)
			continue
		}
		worlds[world] = struct{}{}
		report.Snapshots++
	}

	for w := range worlds {
		report.Worlds = append(report.Worlds, w)
	}
	sort.Strings(report.Worlds)
	return report, nil
}

// FixStorage creates the bucket when it is missing.
func FixStorage(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	created, err := storage.EnsureBucket(ctx, client, bucket, region)
	if err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	if created {
		logger.Info("Created missing bucket", zap.String("bucket", bucket))
	}
	return nil
}
