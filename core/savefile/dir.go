package savefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ValidateWorldDir checks that path is an absolute world directory containing a settings section.
func ValidateWorldDir(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("world path %q is not absolute", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("world path %q: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("world path %q is not a directory", path)
	}
	if _, err := os.Stat(filepath.Join(path, SettingsFile)); err != nil {
		return fmt.Errorf("world path %q does not look like a world save (missing %s)", path, SettingsFile)
	}
	return nil
}

// ReadDir parses the world directory at root.
func ReadDir(root string) (*SaveWorld, error) {
	files := map[string][]byte{}

	for _, name := range []string{SettingsFile, CraftsFile} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if errors.Is(err, fs.ErrNotExist) {
			// ParseFiles reports the missing section.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		files[name] = data
	}

	persistent := filepath.Join(root, PersistentDir)
	err := filepath.WalkDir(persistent, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", PersistentDir, err)
	}

	return ParseFiles(files)
}

// WriteDir writes w into the world directory at root, replacing its settings, craft
// registry and persistent data. Everything is written to a staging directory first and the
// old sections are moved aside until every swap succeeded, so a failure part way restores
// the existing sections. Quicksaves are not touched.
func WriteDir(root string, w *SaveWorld) error {
	files, err := Files(w)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create world dir: %w", err)
	}

	staging, err := os.MkdirTemp(filepath.Dir(root), "."+filepath.Base(root)+"-incoming-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	for name, data := range files {
		dst := filepath.Join(staging, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
	}

	previous, err := os.MkdirTemp(filepath.Dir(root), "."+filepath.Base(root)+"-previous-")
	if err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	var swapped []sectionSwap
	for _, section := range []string{SettingsFile, CraftsFile, PersistentDir} {
		sw, err := swapSection(root, staging, previous, section)
		if sw.section != "" {
			swapped = append(swapped, sw)
		}
		if err != nil {
			if rbErr := rollback(root, previous, swapped); rbErr != nil {
				return fmt.Errorf("replace %s: %w (previous sections kept in %s: %v)", section, err, previous, rbErr)
			}
			_ = os.RemoveAll(previous)
			return fmt.Errorf("replace %s: %w", section, err)
		}
	}
	_ = os.RemoveAll(previous)
	return nil
}

// rename is swapped in tests to simulate a failing filesystem.
var rename = os.Rename

type sectionSwap struct {
	section string
	// backedUp is set when the old section was moved into the backup dir.
	backedUp bool
	// placed is set when the staged section was moved into the world.
	placed bool
}

// swapSection moves the current section aside, then moves the staged one in. The returned
// swap describes how far it got, even on error.
func swapSection(root, staging, previous, section string) (sectionSwap, error) {
	sw := sectionSwap{section: section}
	src := filepath.Join(staging, section)
	dst := filepath.Join(root, section)

	if _, err := os.Lstat(dst); err == nil {
		if err := rename(dst, filepath.Join(previous, section)); err != nil {
			return sectionSwap{}, err
		}
		sw.backedUp = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return sectionSwap{}, err
	}

	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return sw, nil
	}
	if err := rename(src, dst); err != nil {
		return sw, err
	}
	sw.placed = true
	return sw, nil
}

// rollback restores the backed up sections, newest swap first.
func rollback(root, previous string, swapped []sectionSwap) error {
	var errs []error
	for i := len(swapped) - 1; i >= 0; i-- {
		sw := swapped[i]
		dst := filepath.Join(root, sw.section)
		if sw.placed {
			if err := os.RemoveAll(dst); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		if sw.backedUp {
			if err := os.Rename(filepath.Join(previous, sw.section), dst); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// PurgeQuicksaves deletes every in-game quicksave of the world at root and returns how many were removed.
func PurgeQuicksaves(root string) (int, error) {
	dir := filepath.Join(root, QuicksavesDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list quicksaves: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("remove quicksave %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
