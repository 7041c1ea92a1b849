package savefile

import (
	"bytes"
	"encoding/json"
	"maps"
	"sort"
)

const (
	// SettingsFile holds the world settings section.
	SettingsFile = "WorldSettings.txt"
	// CraftsFile holds the craft registry section.
	CraftsFile = "Crafts.txt"
	// PersistentDir holds opaque persistent data.
	PersistentDir = "Persistent"
	// QuicksavesDir holds in-game quicksaves.
	QuicksavesDir = "Quicksaves"

	// MinFormatVersion is the oldest format marker Parse accepts.
	MinFormatVersion = 1
	// MaxFormatVersion is the newest format marker Parse accepts.
	MaxFormatVersion = 2
	// CurrentFormatVersion is written by Seed for brand new worlds.
	CurrentFormatVersion = MaxFormatVersion
)

// Status is the lifecycle tag of a craft.
type Status string

const (
	StatusActive    Status = "active"
	StatusDestroyed Status = "destroyed"
)

// Craft is one placed vehicle or structure.
type Craft struct {
	// ID is the registry key of the craft.
	ID string
	// Name is the display name shown in game.
	Name string
	// Author is the label of the player who created the craft.
	Author string
	// Status is StatusActive or StatusDestroyed.
	Status Status
	// Payload is the canonical JSON object of every other craft field (parts, position, orbit...).
	Payload json.RawMessage
}

// SamePayload reports whether both crafts have structurally equal payloads.
func (c Craft) SamePayload(o Craft) bool {
	return bytes.Equal(c.Payload, o.Payload)
}

// Equal reports whether every modeled field of both crafts matches.
func (c Craft) Equal(o Craft) bool {
	return c.ID == o.ID &&
		c.Name == o.Name &&
		c.Author == o.Author &&
		c.Status == o.Status &&
		c.SamePayload(o)
}

// Clone returns a copy that shares no memory with c.
func (c Craft) Clone() Craft {
	c.Payload = bytes.Clone(c.Payload)
	return c
}

// WorldSettings is the settings section of a world.
type WorldSettings struct {
	// FormatVersion is the save format marker.
	FormatVersion int64
	// TotalPlayTimeSeconds is the accumulated play time of every player.
	TotalPlayTimeSeconds int64
	// Extra holds every other settings field in canonical JSON form.
	Extra map[string]json.RawMessage
}

// Clone returns a copy that shares no memory with s.
func (s WorldSettings) Clone() WorldSettings {
	out := s
	out.Extra = make(map[string]json.RawMessage, len(s.Extra))
	for k, v := range s.Extra {
		out.Extra[k] = bytes.Clone(v)
	}
	return out
}

// Equal reports whether both settings hold the same values.
func (s WorldSettings) Equal(o WorldSettings) bool {
	return s.FormatVersion == o.FormatVersion &&
		s.TotalPlayTimeSeconds == o.TotalPlayTimeSeconds &&
		maps.EqualFunc(s.Extra, o.Extra, func(a, b json.RawMessage) bool { return bytes.Equal(a, b) })
}

// PersistentData is the opaque persistent section, keyed by slash separated path.
type PersistentData map[string][]byte

// Clone returns a copy that shares no memory with p.
func (p PersistentData) Clone() PersistentData {
	out := make(PersistentData, len(p))
	for k, v := range p {
		out[k] = bytes.Clone(v)
	}
	return out
}

// Equal reports whether both sections hold the same files with the same bytes.
func (p PersistentData) Equal(o PersistentData) bool {
	return maps.EqualFunc(p, o, func(a, b []byte) bool { return bytes.Equal(a, b) })
}

// SaveWorld is one complete snapshot of a world.
//
// Values are treated as immutable once built: functions in this module return new
// worlds rather than editing the ones they are given.
type SaveWorld struct {
	Crafts     map[string]Craft
	Settings   WorldSettings
	Persistent PersistentData
}

// Clone returns a deep copy of w.
func (w *SaveWorld) Clone() *SaveWorld {
	out := &SaveWorld{
		Crafts:     make(map[string]Craft, len(w.Crafts)),
		Settings:   w.Settings.Clone(),
		Persistent: w.Persistent.Clone(),
	}
	for id, c := range w.Crafts {
		out.Crafts[id] = c.Clone()
	}
	return out
}

// Equal reports whether both worlds hold the same crafts, settings and persistent data.
func (w *SaveWorld) Equal(o *SaveWorld) bool {
	if w == nil || o == nil {
		return w == o
	}
	return maps.EqualFunc(w.Crafts, o.Crafts, Craft.Equal) &&
		w.Settings.Equal(o.Settings) &&
		w.Persistent.Equal(o.Persistent)
}

// CraftIDs returns the craft identifiers of w in sorted order.
func (w *SaveWorld) CraftIDs() []string {
	ids := make([]string, 0, len(w.Crafts))
	for id := range w.Crafts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WithPlayTime returns a copy of w whose play time counter is set to seconds.
func WithPlayTime(w *SaveWorld, seconds int64) *SaveWorld {
	out := w.Clone()
	out.Settings.TotalPlayTimeSeconds = max(seconds, 0)
	return out
}

// NewWorld returns an empty world at the current format version.
func NewWorld() *SaveWorld {
	return &SaveWorld{
		Crafts: map[string]Craft{},
		Settings: WorldSettings{
			FormatVersion: CurrentFormatVersion,
			Extra:         map[string]json.RawMessage{},
		},
		Persistent: PersistentData{},
	}
}
