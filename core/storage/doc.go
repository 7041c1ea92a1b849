// Package storage wraps the MinIO client used to keep world snapshots in an S3 compatible
// bucket.
//
// Client is the narrow interface the rest of the module depends on; core/storage/mocks
// provides a testify mock of it. EnsureBucket creates the snapshot bucket on first use.
//
//	client, err := storage.NewClient(cfg.Storage)
//	created, err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
