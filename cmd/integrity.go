package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"shared-save/core/database"
	"shared-save/core/storage"
	"shared-save/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	fixFlag       bool
	integrityJSON bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the snapshot bucket, ledger schema and stored snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, true, true, true)
	},
}

// storageCheckCmd represents the integrity storage command
var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the snapshot bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, true, false, false)
	},
}

// ledgerCheckCmd represents the integrity ledger command
var ledgerCheckCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Check and migrate the ledger schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, false, true, false)
	},
}

// snapshotCheckCmd represents the integrity snapshots command
var snapshotCheckCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Download and parse the head snapshot of every world",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd, false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(storageCheckCmd, ledgerCheckCmd, snapshotCheckCmd)

	storageCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket if missing")
	ledgerCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Migrate the ledger tables")
	integrityCmd.PersistentFlags().BoolVar(&integrityJSON, "json", false, "Output reports as JSON")
}

func runIntegrityChecks(cmd *cobra.Command, runStorage, runLedger, runSnapshots bool) error {
	ctx := cmd.Context()
	cfg, logg, err := loadSettings()
	if err != nil {
		return err
	}
	defer logg.Sync()

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	// The storage check works without a database.
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		db = conn
	}

	svc := integrity.NewService(client, cfg.Storage.Bucket, cfg.Storage.Prefix, cfg.Storage.Region, logg, db)
	report := map[string]any{}

	if runStorage {
		if err := checkStorage(ctx, svc, logg, report); err != nil {
			return err
		}
	}
	if runLedger {
		if err := checkLedger(ctx, svc, logg, report); err != nil {
			return err
		}
	}
	if runSnapshots {
		logg.Info("Checking world snapshots...")
		snapReport, err := svc.CheckSnapshots(ctx)
		if err != nil {
			return fmt.Errorf("snapshot check failed: %w", err)
		}
		for _, w := range snapReport.Worlds {
			if w.Status == "ok" {
				logg.Info("Snapshot ok", zap.String("world", w.WorldID), zap.Int64("version", w.Version), zap.Int("crafts", w.Crafts))
			} else {
				logg.Warn("Snapshot unusable", zap.String("world", w.WorldID), zap.Int64("version", w.Version), zap.String("status", w.Status), zap.String("error", w.Error))
			}
		}
		report["snapshots"] = snapReport
	}

	if integrityJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}
	return nil
}

func checkStorage(ctx context.Context, svc *integrity.Service, logg *zap.Logger, report map[string]any) error {
	logg.Info("Checking snapshot bucket...")
	storageReport, err := svc.CheckStorage(ctx)
	if err != nil {
		return fmt.Errorf("storage check failed: %w", err)
	}
	report["storage"] = storageReport

	if storageReport.Exists {
		logg.Info("Snapshot bucket is intact.",
			zap.String("bucket", storageReport.Bucket),
			zap.Int("snapshots", storageReport.Snapshots),
			zap.Strings("worlds", storageReport.Worlds))
		if len(storageReport.Foreign) > 0 {
			logg.Warn("Foreign objects under snapshot prefix", zap.Strings("keys", storageReport.Foreign))
		}
		return nil
	}

	logg.Warn("Snapshot bucket missing", zap.String("bucket", storageReport.Bucket))
	if !fixFlag {
		logg.Info("Run 'integrity storage --fix' to create it.")
		return nil
	}
	if err := svc.FixStorage(ctx); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	logg.Info("Snapshot bucket created.")
	return nil
}

func checkLedger(ctx context.Context, svc *integrity.Service, logg *zap.Logger, report map[string]any) error {
	logg.Info("Checking ledger schema...")
	ledgerReport, err := svc.CheckLedger()
	if err != nil {
		logg.Error("Ledger schema check failed", zap.Error(err))
		report["ledger"] = map[string]any{"status": "error", "error": err.Error()}
		return nil
	}

	if !ledgerReport.Matched && fixFlag {
		logg.Info("Migrating ledger tables...")
		if err := svc.FixLedger(ctx); err != nil {
			return fmt.Errorf("failed to migrate ledger: %w", err)
		}
		if ledgerReport, err = svc.CheckLedger(); err != nil {
			return err
		}
	}
	report["ledger"] = ledgerReport

	if ledgerReport.Matched {
		logg.Info("Ledger schema matches the expected definition.")
		return nil
	}
	logg.Warn("Ledger schema mismatches found")
	for table, tblReport := range ledgerReport.Tables {
		if tblReport.Status == "ok" {
			continue
		}
		if len(tblReport.MissingColumns) > 0 {
			logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
		}
		if len(tblReport.TypeMismatches) > 0 {
			logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
		}
	}
	for _, e := range ledgerReport.Errors {
		logg.Error("Inspection Error", zap.String("error", e))
	}
	if !fixFlag {
		logg.Info("Run 'integrity ledger --fix' to migrate.")
	}
	return nil
}
