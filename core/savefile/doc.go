// Package savefile models a shared world save and converts it to and from its on-disk and
// archived forms.
//
// A world directory looks like this:
//
//	<world>/
//	  WorldSettings.txt   formatVersion, totalPlayTimeSeconds and passthrough fields
//	  Crafts.txt          {"crafts": {"<id>": {"name": ..., "author": ..., "status": ..., ...}}}
//	  Persistent/         opaque files, carried through merges untouched
//	  Quicksaves/         in-game quicksaves, never part of the model
//
// # Model
//
// SaveWorld is the parsed form. Crafts are keyed by their registry key, which is the
// only stable identifier (names are free text and may repeat). Every craft field other
// than name, author and status is kept as an opaque canonical JSON payload, so two
// payloads are structurally equal exactly when their bytes are equal.
//
// # Snapshots
//
// Serialize and Parse convert a SaveWorld to and from a snapshot archive: a tar stream of
// the world files compressed with zstd. ReadDir and WriteDir do the same for a world
// directory on disk.
//
// # Usage
//
//	world, err := savefile.ReadDir("/path/to/Worlds/Shared")
//	if errors.Is(err, savefile.ErrMalformedSave) {
//	    // report which section is broken
//	}
//	data, err := savefile.Serialize(world)
package savefile
