package checks

import (
	"context"
	"fmt"
	"io"

	"shared-save/core/ledger"
	"shared-save/core/savefile"
	"shared-save/core/storage"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"
)

// snapshotWorkers bounds concurrent snapshot downloads.
const snapshotWorkers = 4

// SnapshotReport is the result of verifying every world head's snapshot.
type SnapshotReport struct {
	Matched bool          `json:"matched"`
	Worlds  []WorldReport `json:"worlds"`
}

// WorldReport describes the head snapshot of a single world.
type WorldReport struct {
	WorldID   string `json:"world_id"`
	Version   int64  `json:"version"`
	ObjectKey string `json:"object_key"`
	Status    string `json:"status"` // "ok", "missing", "corrupt"
	Crafts    int    `json:"crafts"`
	Error     string `json:"error,omitempty"`
}

// CheckSnapshots downloads and parses the snapshot each head points to.
// Problems with a single world are reported in its WorldReport, not returned.
func CheckSnapshots(ctx context.Context, client storage.Client, bucket string, heads []ledger.WorldHead) (*SnapshotReport, error) {
	report := &SnapshotReport{Matched: true, Worlds: make([]WorldReport, len(heads))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotWorkers)
	for i, head := range heads {
		g.Go(func() error {
			report.Worlds[i] = checkHead(ctx, client, bucket, head)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, w := range report.Worlds {
		if w.Status != "ok" {
			report.Matched = false
		}
	}
	return report, nil
}

func checkHead(ctx context.Context, client storage.Client, bucket string, head ledger.WorldHead) WorldReport {
	wr := WorldReport{
		WorldID:   head.WorldID,
		Version:   head.Version,
		ObjectKey: head.ObjectKey,
		Status:    "ok",
	}

	obj, err := client.GetObject(ctx, bucket, head.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		wr.Status, wr.Error = "missing", err.Error()
		return wr
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		wr.Status, wr.Error = "missing", fmt.Sprintf("read: %v", err)
		return wr
	}

	world, err := savefile.Parse(data)
	if err != nil {
		wr.Status, wr.Error = "corrupt", err.Error()
		return wr
	}
	wr.Crafts = len(world.Crafts)
	return wr
}
