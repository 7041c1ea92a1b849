package reconcile

import (
	"shared-save/core/savefile"
)

// MergePlayTime returns remote's settings with the play time the local copy accrued since
// base added on top. The counter never drops below zero.
func MergePlayTime(base, local, remote savefile.WorldSettings) savefile.WorldSettings {
	merged := remote.Clone()
	merged.TotalPlayTimeSeconds = max(remote.TotalPlayTimeSeconds+(local.TotalPlayTimeSeconds-base.TotalPlayTimeSeconds), 0)
	return merged
}
