package worldsync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shared-save/core/savefile"

	"gopkg.in/yaml.v3"
)

const (
	stateFile = "state.yaml"
	baseFile  = "base.sfsw"
)

// State records which shared version a local world was last synced with.
type State struct {
	WorldID   string    `yaml:"world_id"`
	Version   int64     `yaml:"version"`
	Author    string    `yaml:"author,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// StateStore keeps the state file and base snapshot of each world under one directory.
type StateStore struct {
	dir string
}

// NewStateStore creates a StateStore rooted at dir.
func NewStateStore(dir string) *StateStore {
	return &StateStore{dir: dir}
}

// ValidateWorldID rejects identifiers that cannot be used as a path segment or object key part.
func ValidateWorldID(worldID string) error {
	if worldID == "" || worldID == "." || worldID == ".." {
		return fmt.Errorf("invalid world id %q", worldID)
	}
	if strings.ContainsFunc(worldID, func(r rune) bool {
		return !(r == '-' || r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) {
		return fmt.Errorf("invalid world id %q: use letters, digits, '.', '-' or '_'", worldID)
	}
	return nil
}

// Load returns the state and base snapshot of worldID, or ErrNoBase.
func (s *StateStore) Load(worldID string) (*State, *savefile.SaveWorld, error) {
	dir := filepath.Join(s.dir, worldID)

	raw, err := os.ReadFile(filepath.Join(dir, stateFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNoBase
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read sync state: %w", err)
	}
	var state State
	if err := yaml.Unmarshal(raw, &state); err != nil {
		return nil, nil, fmt.Errorf("parse sync state %s: %w", filepath.Join(dir, stateFile), err)
	}

	archive, err := os.ReadFile(filepath.Join(dir, baseFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNoBase
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read base snapshot: %w", err)
	}
	base, err := savefile.Parse(archive)
	if err != nil {
		return nil, nil, fmt.Errorf("base snapshot of %s: %w", worldID, err)
	}
	return &state, base, nil
}

// Save records state and base for state.WorldID. The base is written before the state
// file, so a state file always points at a complete base.
func (s *StateStore) Save(state State, base *savefile.SaveWorld) error {
	dir := filepath.Join(s.dir, state.WorldID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	archive, err := savefile.Serialize(base)
	if err != nil {
		return fmt.Errorf("serialize base snapshot: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, baseFile), archive); err != nil {
		return fmt.Errorf("write base snapshot: %w", err)
	}

	raw, err := yaml.Marshal(&state)
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, stateFile), raw); err != nil {
		return fmt.Errorf("write sync state: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
