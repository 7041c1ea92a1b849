package integrity

import (
	"context"
	"fmt"

	"shared-save/core/ledger"
	"shared-save/core/storage"
	"shared-save/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	region string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new integrity service. db may be nil, in which case the
// ledger checks fail.
func NewService(client storage.Client, bucket, prefix, region string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		prefix: prefix,
		region: region,
		logger: logger,
		db:     db,
	}
}

// CheckStorage reports on the snapshot bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	return checks.CheckStorage(ctx, s.client, s.bucket, s.prefix)
}

// FixStorage creates the snapshot bucket if needed.
func (s *Service) FixStorage(ctx context.Context) error {
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.logger)
}

// CheckLedger compares the ledger tables with the ledger models.
func (s *Service) CheckLedger() (*checks.LedgerReport, error) {
	return checks.CheckLedgerSchema(s.db)
}

// FixLedger migrates the ledger tables.
func (s *Service) FixLedger(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return ledger.New(s.db).Migrate(ctx)
}

// CheckSnapshots verifies that every world head points to a readable snapshot.
func (s *Service) CheckSnapshots(ctx context.Context) (*checks.SnapshotReport, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	heads, err := ledger.New(s.db).Heads(ctx)
	if err != nil {
		return nil, err
	}
	return checks.CheckSnapshots(ctx, s.client, s.bucket, heads)
}
