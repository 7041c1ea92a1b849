package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ResolutionTable(t *testing.T) {
	base := world(0, rover, station)

	tests := []struct {
		name        string
		local       ChangeSet
		remote      ChangeSet
		wantActions []Action
		wantRes     []ResolutionKind
	}{
		{
			name:        "local addition accepted and annotated",
			local:       Diff(base, with(base, craft("c9", "Glider", "", `{}`))),
			remote:      NewChangeSet(),
			wantActions: []Action{{Type: ActionAdd, ID: "c9", Craft: craft("c9", "Glider", "pixel", `{}`)}},
		},
		{
			name:   "same addition on both sides",
			local:  Diff(base, with(base, probe)),
			remote: Diff(base, with(base, probe)),
		},
		{
			name:        "removal accepted",
			local:       Diff(base, without(base, "c2")),
			remote:      NewChangeSet(),
			wantActions: []Action{{Type: ActionRemove, ID: "c2", Craft: station}},
		},
		{
			name:   "removed on both sides",
			local:  Diff(base, without(base, "c2")),
			remote: Diff(base, without(base, "c2")),
		},
		{
			name:    "local removal loses to remote alteration",
			local:   Diff(base, without(base, "c1")),
			remote:  Diff(base, with(base, renamed(rover, "Rover Mk2"))),
			wantRes: []ResolutionKind{ResolutionKeptAltered},
		},
		{
			name:        "local alteration wins over remote removal",
			local:       Diff(base, with(base, renamed(rover, "Rover Mk2"))),
			remote:      Diff(base, without(base, "c1")),
			wantActions: []Action{{Type: ActionAdd, ID: "c1", Craft: renamed(rover, "Rover Mk2"), Resolved: true}},
			wantRes:     []ResolutionKind{ResolutionKeptAltered},
		},
		{
			name:        "local alteration accepted",
			local:       Diff(base, with(base, withPayload(station, `{"parts":[4,7]}`))),
			remote:      NewChangeSet(),
			wantActions: []Action{{Type: ActionReplace, ID: "c2", Craft: withPayload(station, `{"parts":[4,7]}`)}},
		},
		{
			name:   "same alteration on both sides",
			local:  Diff(base, with(base, renamed(rover, "Twin"))),
			remote: Diff(base, with(base, renamed(rover, "Twin"))),
		},
		{
			name:        "name and author edits merge",
			local:       Diff(base, with(base, renamed(rover, "Rover Mk2"))),
			remote:      Diff(base, with(base, authored(rover, "ben"))),
			wantActions: []Action{{Type: ActionReplace, ID: "c1", Craft: authored(renamed(rover, "Rover Mk2"), "ben")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remoteWorld := base.Clone()
			for id, c := range tt.remote.Added {
				remoteWorld.Crafts[id] = c
			}

			plan, err := Resolve(tt.local, tt.remote, remoteWorld, "pixel")
			require.NoError(t, err)

			if tt.wantActions == nil {
				tt.wantActions = []Action{}
			}
			assert.Equal(t, tt.wantActions, plan.Actions)

			kinds := make([]ResolutionKind, 0, len(plan.Resolutions))
			for _, r := range plan.Resolutions {
				kinds = append(kinds, r.Kind)
			}
			if tt.wantRes == nil {
				tt.wantRes = []ResolutionKind{}
			}
			assert.Equal(t, tt.wantRes, kinds)
		})
	}
}

func TestResolve_DivergentAdditionIsRekeyed(t *testing.T) {
	base := world(0)
	mine := craft("k", "Mine", "", `{"parts":[1]}`)
	theirs := craft("k", "Theirs", "ben", `{"parts":[2]}`)
	remoteWorld := with(base, theirs, craft("k~ana-pixel", "Squatter", "x", `{}`))

	plan, err := Resolve(Diff(base, with(base, mine)), Diff(base, remoteWorld), remoteWorld, "Ana Pixel")
	require.NoError(t, err)

	require.Len(t, plan.Actions, 1)
	assert.Equal(t, "k~ana-pixel-2", plan.Actions[0].ID)
	assert.Equal(t, "Ana Pixel", plan.Actions[0].Craft.Author)
	assert.True(t, plan.Actions[0].Resolved)

	require.Len(t, plan.Resolutions, 1)
	assert.Equal(t, Resolution{Kind: ResolutionRekeyed, ID: "k", NewID: "k~ana-pixel-2", Name: "Mine"}, plan.Resolutions[0])
	assert.Equal(t, 1, plan.Summary.Rekeyed)
}

func TestResolve_DivergentAlterationFails(t *testing.T) {
	base := world(0, rover, station)
	local := Diff(base, with(base, withPayload(rover, `{"parts":["P1"]}`), renamed(station, "Mine")))
	remoteWorld := with(base, withPayload(rover, `{"parts":["P2"]}`), renamed(station, "Theirs"))

	plan, err := Resolve(local, Diff(base, remoteWorld), remoteWorld, "pixel")
	assert.Nil(t, plan)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{"c1", "c2"}, conflict.IDs())
	assert.Equal(t, []string{"payload"}, conflict.Conflicts[0].Fields)
	assert.Equal(t, []string{"name"}, conflict.Conflicts[1].Fields)
	assert.Contains(t, err.Error(), "Rover")
	assert.Contains(t, err.Error(), "Mine")
}

func TestResolve_PayloadEditAgainstRenameFails(t *testing.T) {
	base := world(0, rover)
	local := Diff(base, with(base, renamed(rover, "Rover Mk2")))
	remoteWorld := with(base, withPayload(rover, `{"parts":[2]}`))

	plan, err := Resolve(local, Diff(base, remoteWorld), remoteWorld, "pixel")
	assert.Nil(t, plan)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{"c1"}, conflict.IDs())
	assert.Equal(t, []string{"payload"}, conflict.Conflicts[0].Fields)
}

func TestResolve_RekeyAvoidsRestoredIdentifier(t *testing.T) {
	lander := craft("k~ana", "Lander", "ana", `{"parts":["old"]}`)
	base := world(0, lander)

	mine := craft("k", "Mine", "", `{"parts":["X"]}`)
	local := Diff(base, with(base, mine, withPayload(lander, `{"parts":["edited"]}`)))

	theirs := craft("k", "Theirs", "ben", `{"parts":["Y"]}`)
	remoteWorld := with(without(base, "k~ana"), theirs)

	plan, err := Resolve(local, Diff(base, remoteWorld), remoteWorld, "ana")
	require.NoError(t, err)

	merged := Apply(remoteWorld, plan)
	assert.Equal(t, []string{"k", "k~ana", "k~ana-2"}, merged.CraftIDs())
	assert.JSONEq(t, `{"parts":["Y"]}`, string(merged.Crafts["k"].Payload))
	assert.JSONEq(t, `{"parts":["edited"]}`, string(merged.Crafts["k~ana"].Payload))
	assert.JSONEq(t, `{"parts":["X"]}`, string(merged.Crafts["k~ana-2"].Payload))
	assert.Contains(t, RenderSummary(plan, "ana"), "ana: added Mine as k~ana-2 (identifier k already taken)")
}

func TestApply_DropsDestroyedCrafts(t *testing.T) {
	remote := world(0, rover, destroyed(station))
	plan := &Plan{Actions: []Action{
		{Type: ActionAdd, ID: "c3", Craft: probe},
		{Type: ActionRemove, ID: "c1", Craft: rover},
	}}

	merged := Apply(remote, plan)
	assert.Equal(t, []string{"c3"}, merged.CraftIDs())
	assert.Len(t, remote.Crafts, 2, "remote is untouched")
}

func TestAuthorSlug(t *testing.T) {
	assert.Equal(t, "ana-pixel", authorSlug("  Ana Pixel!"))
	assert.Equal(t, "local", authorSlug("!!!"))
	assert.Equal(t, "j_doe", authorSlug("J_Doe"))
	assert.Equal(t, "r2-d2", authorSlug("R2-D2"))
}
