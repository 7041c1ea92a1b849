package savefile_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shared-save/core/savefile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsJSON = `{
  "formatVersion": 2,
  "totalPlayTimeSeconds": 3600,
  "difficulty": "normal",
  "planets": {"earth": {"radius": 6371}, "moon": {"radius": 1737}}
}`

const craftsJSON = `{
  "crafts": {
    "station-1": {
      "name": "Orbital Hub",
      "author": "pixel",
      "status": "active",
      "orbit": {"periapsis": 200000, "apoapsis": 210000},
      "parts": [{"n": "Capsule"}, {"n": "Docking Port"}]
    },
    "rover-7": {
      "name": "Moon Rover",
      "parts": [{"n": "Wheel"}],
      "location": {"planet": "moon"}
    }
  }
}`

func worldFiles() map[string][]byte {
	return map[string][]byte{
		savefile.SettingsFile:          []byte(settingsJSON),
		savefile.CraftsFile:            []byte(craftsJSON),
		"Persistent/Astronauts.txt":    []byte("astronaut data \x00 binary"),
		"Persistent/branches/main.txt": []byte("branch"),
		"Quicksaves/q1/Crafts.txt":     []byte("ignored"),
	}
}

func TestParseFiles(t *testing.T) {
	world, err := savefile.ParseFiles(worldFiles())
	require.NoError(t, err)

	assert.Equal(t, int64(2), world.Settings.FormatVersion)
	assert.Equal(t, int64(3600), world.Settings.TotalPlayTimeSeconds)
	assert.JSONEq(t, `"normal"`, string(world.Settings.Extra["difficulty"]))
	assert.NotContains(t, world.Settings.Extra, "formatVersion")

	require.Len(t, world.Crafts, 2)
	hub := world.Crafts["station-1"]
	assert.Equal(t, "station-1", hub.ID)
	assert.Equal(t, "Orbital Hub", hub.Name)
	assert.Equal(t, "pixel", hub.Author)
	assert.Equal(t, savefile.StatusActive, hub.Status)
	assert.JSONEq(t, `{"orbit":{"apoapsis":210000,"periapsis":200000},"parts":[{"n":"Capsule"},{"n":"Docking Port"}]}`, string(hub.Payload))

	rover := world.Crafts["rover-7"]
	assert.Empty(t, rover.Author)
	assert.Equal(t, savefile.StatusActive, rover.Status)

	assert.Len(t, world.Persistent, 2)
	assert.Equal(t, []byte("astronaut data \x00 binary"), world.Persistent["Astronauts.txt"])
	assert.Equal(t, []byte("branch"), world.Persistent["branches/main.txt"])
}

func TestParseFiles_DoesNotMutateInput(t *testing.T) {
	files := worldFiles()
	before := string(files[savefile.CraftsFile])

	world, err := savefile.ParseFiles(files)
	require.NoError(t, err)

	world.Persistent["Astronauts.txt"][0] = 'X'
	assert.Equal(t, before, string(files[savefile.CraftsFile]))
	assert.Equal(t, byte('a'), files["Persistent/Astronauts.txt"][0])
}

func TestParseFiles_PayloadStructuralEquality(t *testing.T) {
	a := worldFiles()
	b := worldFiles()
	b[savefile.CraftsFile] = []byte(`{"crafts":{
	  "station-1":{"parts":[{"n":"Capsule"},{"n":"Docking Port"}],"orbit":{"apoapsis":210000,"periapsis":200000},
	    "status":"active","author":"pixel","name":"Orbital Hub"},
	  "rover-7":{"location":{"planet":"moon"},"name":"Moon Rover","parts":[{"n":"Wheel"}]}}}`)

	wa, err := savefile.ParseFiles(a)
	require.NoError(t, err)
	wb, err := savefile.ParseFiles(b)
	require.NoError(t, err)

	assert.True(t, wa.Crafts["station-1"].SamePayload(wb.Crafts["station-1"]))
	assert.True(t, wa.Equal(wb))
}

func TestParseFiles_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string][]byte)
		section string
	}{
		{"MissingSettings", func(f map[string][]byte) { delete(f, savefile.SettingsFile) }, savefile.SettingsFile},
		{"MissingCrafts", func(f map[string][]byte) { delete(f, savefile.CraftsFile) }, savefile.CraftsFile},
		{"SettingsNotJSON", func(f map[string][]byte) { f[savefile.SettingsFile] = []byte("{nope") }, savefile.SettingsFile},
		{"SettingsMissingPlayTime", func(f map[string][]byte) {
			f[savefile.SettingsFile] = []byte(`{"formatVersion":2}`)
		}, savefile.SettingsFile},
		{"NegativePlayTime", func(f map[string][]byte) {
			f[savefile.SettingsFile] = []byte(`{"formatVersion":2,"totalPlayTimeSeconds":-5}`)
		}, savefile.SettingsFile},
		{"FractionalPlayTime", func(f map[string][]byte) {
			f[savefile.SettingsFile] = []byte(`{"formatVersion":2,"totalPlayTimeSeconds":12.7}`)
		}, savefile.SettingsFile},
		{"ExponentPlayTime", func(f map[string][]byte) {
			f[savefile.SettingsFile] = []byte(`{"formatVersion":2,"totalPlayTimeSeconds":1e30}`)
		}, savefile.SettingsFile},
		{"OverflowingPlayTime", func(f map[string][]byte) {
			f[savefile.SettingsFile] = []byte(`{"formatVersion":2,"totalPlayTimeSeconds":9223372036854775808}`)
		}, savefile.SettingsFile},
		{"FractionalFormatVersion", func(f map[string][]byte) {
			f[savefile.SettingsFile] = []byte(`{"formatVersion":2.5,"totalPlayTimeSeconds":10}`)
		}, savefile.SettingsFile},
		{"OverflowingFormatVersion", func(f map[string][]byte) {
			f[savefile.SettingsFile] = []byte(`{"formatVersion":1e30,"totalPlayTimeSeconds":10}`)
		}, savefile.SettingsFile},
		{"CraftsMissingRegistry", func(f map[string][]byte) { f[savefile.CraftsFile] = []byte(`{}`) }, savefile.CraftsFile},
		{"CraftWithoutName", func(f map[string][]byte) {
			f[savefile.CraftsFile] = []byte(`{"crafts":{"a":{"parts":[]}}}`)
		}, savefile.CraftsFile},
		{"UnknownStatus", func(f map[string][]byte) {
			f[savefile.CraftsFile] = []byte(`{"crafts":{"a":{"name":"A","status":"exploded"}}}`)
		}, savefile.CraftsFile},
		{"TrailingData", func(f map[string][]byte) {
			f[savefile.CraftsFile] = []byte(`{"crafts":{}} {}`)
		}, savefile.CraftsFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := worldFiles()
			tt.mutate(files)

			_, err := savefile.ParseFiles(files)
			require.Error(t, err)
			assert.ErrorIs(t, err, savefile.ErrMalformedSave)

			var malformed *savefile.MalformedSaveError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.section, malformed.Section)
		})
	}
}

func TestParseFiles_UnsupportedVersion(t *testing.T) {
	for _, version := range []string{"0", "3", "99"} {
		t.Run(version, func(t *testing.T) {
			files := worldFiles()
			files[savefile.SettingsFile] = []byte(`{"formatVersion":` + version + `}`)

			_, err := savefile.ParseFiles(files)
			assert.ErrorIs(t, err, savefile.ErrUnsupportedVersion)
			assert.NotErrorIs(t, err, savefile.ErrMalformedSave)
		})
	}
}

func TestParseFiles_VersionOneIgnoresStatus(t *testing.T) {
	files := worldFiles()
	files[savefile.SettingsFile] = []byte(`{"formatVersion":1,"totalPlayTimeSeconds":10.8}`)
	files[savefile.CraftsFile] = []byte(`{"crafts":{"a":{"name":"A","status":"whatever"}}}`)

	world, err := savefile.ParseFiles(files)
	require.NoError(t, err)

	assert.Equal(t, int64(10), world.Settings.TotalPlayTimeSeconds)
	craft := world.Crafts["a"]
	assert.Equal(t, savefile.StatusActive, craft.Status)
	assert.JSONEq(t, `{"status":"whatever"}`, string(craft.Payload))
}

func TestSerializeRoundTrip(t *testing.T) {
	world, err := savefile.ParseFiles(worldFiles())
	require.NoError(t, err)

	data, err := savefile.Serialize(world)
	require.NoError(t, err)

	parsed, err := savefile.Parse(data)
	require.NoError(t, err)
	assert.True(t, world.Equal(parsed))

	// Serialization is deterministic.
	again, err := savefile.Serialize(parsed)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestSerializeRoundTrip_VersionOne(t *testing.T) {
	files := worldFiles()
	files[savefile.SettingsFile] = []byte(`{"formatVersion":1,"totalPlayTimeSeconds":5}`)
	world, err := savefile.ParseFiles(files)
	require.NoError(t, err)

	data, err := savefile.Serialize(world)
	require.NoError(t, err)
	parsed, err := savefile.Parse(data)
	require.NoError(t, err)
	assert.True(t, world.Equal(parsed))
}

func TestSerializeRoundTrip_NewWorld(t *testing.T) {
	world := savefile.NewWorld()
	world.Crafts["a"] = savefile.Craft{ID: "a", Name: "A", Status: savefile.StatusActive, Payload: json.RawMessage(`{}`)}

	data, err := savefile.Serialize(world)
	require.NoError(t, err)
	parsed, err := savefile.Parse(data)
	require.NoError(t, err)
	assert.True(t, world.Equal(parsed))
}

func TestParse_RejectsGarbage(t *testing.T) {
	_, err := savefile.Parse([]byte("definitely not zstd"))
	assert.ErrorIs(t, err, savefile.ErrMalformedSave)
}

func TestWithPlayTime(t *testing.T) {
	world, err := savefile.ParseFiles(worldFiles())
	require.NoError(t, err)

	reset := savefile.WithPlayTime(world, 0)
	assert.Equal(t, int64(0), reset.Settings.TotalPlayTimeSeconds)
	assert.Equal(t, int64(3600), world.Settings.TotalPlayTimeSeconds)

	assert.Equal(t, int64(0), savefile.WithPlayTime(world, -20).Settings.TotalPlayTimeSeconds)
}

func writeFiles(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for name, data := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, data, 0o644))
	}
}

func TestReadWriteDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Shared")
	writeFiles(t, src, worldFiles())

	require.NoError(t, savefile.ValidateWorldDir(src))

	world, err := savefile.ReadDir(src)
	require.NoError(t, err)
	assert.Len(t, world.Crafts, 2)
	assert.Len(t, world.Persistent, 2)

	// Overwrite an existing world: stale persistent files must disappear, quicksaves stay.
	dst := filepath.Join(t.TempDir(), "Other")
	writeFiles(t, dst, map[string][]byte{
		"Persistent/Stale.txt":     []byte("old"),
		"Quicksaves/q1/Crafts.txt": []byte("quick"),
	})
	require.NoError(t, savefile.WriteDir(dst, world))

	_, err = os.Stat(filepath.Join(dst, "Persistent", "Stale.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dst, "Quicksaves", "q1", "Crafts.txt"))
	assert.NoError(t, err)

	reread, err := savefile.ReadDir(dst)
	require.NoError(t, err)
	assert.True(t, world.Equal(reread))
}

func TestReadDir_MissingSections(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{savefile.SettingsFile: []byte(settingsJSON)})

	_, err := savefile.ReadDir(root)
	var malformed *savefile.MalformedSaveError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, savefile.CraftsFile, malformed.Section)
}

func TestValidateWorldDir(t *testing.T) {
	assert.Error(t, savefile.ValidateWorldDir("relative/path"))
	assert.Error(t, savefile.ValidateWorldDir(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, savefile.ValidateWorldDir(t.TempDir()))
}

func TestPurgeQuicksaves(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{
		"Quicksaves/q1/Crafts.txt": []byte("a"),
		"Quicksaves/q2/Crafts.txt": []byte("b"),
		savefile.SettingsFile:      []byte(settingsJSON),
	})

	removed, err := savefile.PurgeQuicksaves(root)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := os.ReadDir(filepath.Join(root, "Quicksaves"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	removed, err = savefile.PurgeQuicksaves(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
