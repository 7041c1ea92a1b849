package reconcile

import (
	"strings"

	"shared-save/core/savefile"
)

// Reconcile merges local into remote using base, the snapshot local was last updated from.
//
// The result holds the new shared world and its summary. On any unresolved conflict the
// error is a *ConflictError and no world is produced. Inputs are never modified.
func Reconcile(base, local, remote *savefile.SaveWorld, author string) (*MergeResult, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, ErrMissingAuthor
	}

	localChanges := Diff(base, local)
	remoteChanges := Diff(base, remote)

	plan, err := Resolve(localChanges, remoteChanges, remote, author)
	if err != nil {
		return nil, err
	}

	merged := Apply(remote, plan)
	merged.Settings = MergePlayTime(base.Settings, local.Settings, remote.Settings)

	return &MergeResult{
		World:         merged,
		Summary:       RenderSummary(plan, author),
		Plan:          plan,
		LocalChanges:  localChanges,
		RemoteChanges: remoteChanges,
	}, nil
}

// ReconcileTwoWay merges local into remote without a common base.
//
// Without a base nothing can be told apart from a removal, so only additions and
// alterations found in local are carried over: local wins on every craft it holds that
// differs from remote, and crafts missing from local stay. Play time is the larger of both
// counters.
func ReconcileTwoWay(local, remote *savefile.SaveWorld, author string) (*MergeResult, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, ErrMissingAuthor
	}

	changes := Diff(remote, local)
	changes.Removed = map[string]savefile.Craft{}

	plan, err := Resolve(changes, NewChangeSet(), remote, author)
	if err != nil {
		return nil, err
	}

	merged := Apply(remote, plan)
	merged.Settings = remote.Settings.Clone()
	merged.Settings.TotalPlayTimeSeconds = max(local.Settings.TotalPlayTimeSeconds, remote.Settings.TotalPlayTimeSeconds)

	return &MergeResult{
		World:         merged,
		Summary:       RenderSummary(plan, author),
		Plan:          plan,
		LocalChanges:  changes,
		RemoteChanges: NewChangeSet(),
	}, nil
}
