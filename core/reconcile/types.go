package reconcile

import (
	"fmt"
	"sort"

	"shared-save/core/savefile"
)

// Alteration records both versions of a craft that changed.
type Alteration struct {
	Old savefile.Craft
	New savefile.Craft
}

// ChangeSet is the difference between a base world and a later copy of it.
// The three partitions never share an identifier.
type ChangeSet struct {
	// Added holds crafts that are new relative to the base.
	Added map[string]savefile.Craft
	// Removed holds tombstones: the base version of every craft that is gone or destroyed.
	Removed map[string]savefile.Craft
	// Altered holds crafts present in both with different content.
	Altered map[string]Alteration
}

// NewChangeSet returns an empty change set.
func NewChangeSet() ChangeSet {
	return ChangeSet{
		Added:   map[string]savefile.Craft{},
		Removed: map[string]savefile.Craft{},
		Altered: map[string]Alteration{},
	}
}

// Len returns the number of identifiers touched by the change set.
func (c ChangeSet) Len() int {
	return len(c.Added) + len(c.Removed) + len(c.Altered)
}

// IsEmpty reports whether the change set touches no craft.
func (c ChangeSet) IsEmpty() bool {
	return c.Len() == 0
}

// IDs returns every touched identifier, sorted.
func (c ChangeSet) IDs() []string {
	ids := make([]string, 0, c.Len())
	for id := range c.Added {
		ids = append(ids, id)
	}
	for id := range c.Removed {
		ids = append(ids, id)
	}
	for id := range c.Altered {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks that the partitions are disjoint.
func (c ChangeSet) Validate() error {
	seen := make(map[string]string, c.Len())
	check := func(partition, id string) error {
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("craft %s is both %s and %s", id, prev, partition)
		}
		seen[id] = partition
		return nil
	}
	for id := range c.Added {
		if err := check("added", id); err != nil {
			return err
		}
	}
	for id := range c.Removed {
		if err := check("removed", id); err != nil {
			return err
		}
	}
	for id := range c.Altered {
		if err := check("altered", id); err != nil {
			return err
		}
	}
	return nil
}

// ActionType is the kind of change a plan applies to the remote world.
type ActionType string

const (
	// ActionAdd inserts a craft.
	ActionAdd ActionType = "add"
	// ActionRemove deletes a craft.
	ActionRemove ActionType = "remove"
	// ActionReplace overwrites a craft with a new version.
	ActionReplace ActionType = "replace"
)

// Action is one planned change to the remote world.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// ID is the craft identifier the action writes to.
	ID string `json:"id"`

	// Craft is the version to write. For removals it is the tombstone.
	Craft savefile.Craft `json:"-"`

	// Resolved marks actions that exist because of a resolved conflict.
	// Their summary line comes from the matching Resolution.
	Resolved bool `json:"resolved"`
}

// ResolutionKind names how a conflict was settled.
type ResolutionKind string

const (
	// ResolutionRekeyed means a same-key divergent addition was stored under a new identifier.
	ResolutionRekeyed ResolutionKind = "rekeyed"
	// ResolutionKeptAltered means an alteration won against a removal.
	ResolutionKeptAltered ResolutionKind = "kept_altered"
)

// Resolution records a conflict that was settled automatically.
type Resolution struct {
	Kind ResolutionKind `json:"kind"`
	// ID is the contested identifier.
	ID string `json:"id"`
	// NewID is the identifier assigned by rekeying. Empty otherwise.
	NewID string `json:"new_id,omitempty"`
	// Name is the craft name used in the summary.
	Name string `json:"name"`
}

// Plan is the merged change set, expressed as actions against the remote world.
type Plan struct {
	// Actions contains planned changes in identifier order.
	Actions []Action `json:"actions"`

	// Resolutions contains conflicts that were settled automatically.
	Resolutions []Resolution `json:"resolutions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Altered  int `json:"altered"`
	Rekeyed  int `json:"rekeyed"`
	Resolved int `json:"resolved"`
}

// IsEmpty reports whether the plan changes nothing.
func (p *Plan) IsEmpty() bool {
	return len(p.Actions) == 0 && len(p.Resolutions) == 0
}

// MergeResult is the outcome of a successful reconciliation.
type MergeResult struct {
	// World is the new shared snapshot.
	World *savefile.SaveWorld
	// Summary holds one human readable line per contributed change.
	Summary []string
	// Plan is the plan that was applied onto the remote world.
	Plan *Plan
	// LocalChanges is base→local.
	LocalChanges ChangeSet
	// RemoteChanges is base→remote.
	RemoteChanges ChangeSet
}
