package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"shared-save/feature/worldsync"

	"go.uber.org/zap"
)

// syncOptions selects the less common paths of update and upload.
type syncOptions struct {
	force  bool
	twoWay bool
	// interactive lets a refused update or upload ask to continue instead of failing.
	interactive bool
}

func runUpdate(ctx context.Context, rt *runtime, p *prompter, out io.Writer, opts syncOptions) error {
	dir, err := p.worldDir(rt.cfg.Sync.WorldDir)
	if err != nil {
		return err
	}
	req := worldsync.UpdateRequest{WorldDir: dir, WorldID: rt.cfg.Sync.WorldID, Force: opts.force}

	res, err := rt.sync.ReconcileForUpdate(ctx, req)
	var unsynced *worldsync.UnsyncedChangesError
	if errors.As(err, &unsynced) && opts.interactive {
		fmt.Fprintln(out, unsynced.Error())
		if !p.confirm("Updating will discard these changes.") {
			fmt.Fprintln(out, "Update cancelled. Nothing was changed.")
			return nil
		}
		req.Force = true
		res, err = rt.sync.ReconcileForUpdate(ctx, req)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Updated %s to version %d: %d crafts, %s of shared play time.\n",
		req.WorldID, res.Version, res.Crafts, formatPlayTime(res.PlayTimeSeconds))
	return nil
}

func runUpload(ctx context.Context, rt *runtime, p *prompter, out io.Writer, opts syncOptions) error {
	dir, err := p.worldDir(rt.cfg.Sync.WorldDir)
	if err != nil {
		return err
	}
	author, err := p.author(rt.cfg.Sync.Author)
	if err != nil {
		return err
	}
	req := worldsync.UploadRequest{WorldDir: dir, WorldID: rt.cfg.Sync.WorldID, Author: author, AllowTwoWay: opts.twoWay}

	res, err := rt.sync.ReconcileForUpload(ctx, req)
	if errors.Is(err, worldsync.ErrNoBase) && opts.interactive {
		fmt.Fprintln(out, "This world was never updated from the shared save, so removals cannot be detected.")
		if !p.confirm("Merge anyway? Your additions and alterations win and nothing is removed.") {
			fmt.Fprintln(out, "Upload cancelled. Nothing was changed.")
			return nil
		}
		req.AllowTwoWay = true
		res, err = rt.sync.ReconcileForUpload(ctx, req)
	}
	if err != nil {
		return err
	}

	if res.Unchanged {
		fmt.Fprintf(out, "Nothing to upload. %s is at version %d.\n", req.WorldID, res.Version)
		return nil
	}
	fmt.Fprintf(out, "Published %s version %d:\n", req.WorldID, res.Version)
	printSummary(out, res.Summary)
	if res.QuicksavesPurged > 0 {
		fmt.Fprintf(out, "Deleted %d quicksaves.\n", res.QuicksavesPurged)
	}
	rt.logger.Debug("Upload finished", zap.Int("attempts", res.Attempts), zap.Bool("two_way", res.TwoWay))
	return nil
}

func printSummary(out io.Writer, lines []string) {
	if len(lines) == 0 {
		fmt.Fprintln(out, "  (play time only)")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(out, "  • %s\n", line)
	}
}

func formatPlayTime(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}
