package reconcile

import (
	"shared-save/core/savefile"
)

// Diff computes the changes that turn base into other.
//
// A craft destroyed in other counts as removed. A craft that only other knows about but
// already destroyed never reached the shared world and is skipped. Neither input is modified.
func Diff(base, other *savefile.SaveWorld) ChangeSet {
	changes := NewChangeSet()

	for id, next := range other.Crafts {
		prev, ok := base.Crafts[id]
		if !ok {
			if next.Status != savefile.StatusDestroyed {
				changes.Added[id] = next.Clone()
			}
			continue
		}

		prevAlive := prev.Status != savefile.StatusDestroyed
		nextAlive := next.Status != savefile.StatusDestroyed
		switch {
		case prevAlive && !nextAlive:
			changes.Removed[id] = prev.Clone()
		case !prevAlive && !nextAlive:
			// still gone
		case !prev.Equal(next):
			changes.Altered[id] = Alteration{Old: prev.Clone(), New: next.Clone()}
		}
	}

	for id, prev := range base.Crafts {
		if _, ok := other.Crafts[id]; ok {
			continue
		}
		if prev.Status != savefile.StatusDestroyed {
			changes.Removed[id] = prev.Clone()
		}
	}

	return changes
}
