package savefile

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// maxArchiveEntry bounds a single file read from a snapshot archive.
const maxArchiveEntry = 256 << 20

// Files renders w as world files keyed by slash separated relative path.
func Files(w *SaveWorld) (map[string][]byte, error) {
	settings, err := encodeSettings(w.Settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	crafts, err := encodeCrafts(w.Crafts, w.Settings.FormatVersion)
	if err != nil {
		return nil, fmt.Errorf("encode crafts: %w", err)
	}

	files := map[string][]byte{
		SettingsFile: settings,
		CraftsFile:   crafts,
	}
	for rel, data := range w.Persistent {
		files[PersistentDir+"/"+rel] = bytes.Clone(data)
	}
	return files, nil
}

func encodeSettings(s WorldSettings) ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(s.Extra)+2)
	for k, v := range s.Extra {
		fields[k] = v
	}
	fields[fieldFormatVersion] = json.RawMessage(fmt.Sprint(s.FormatVersion))
	fields[fieldPlayTime] = json.RawMessage(fmt.Sprint(s.TotalPlayTimeSeconds))
	return json.MarshalIndent(fields, "", "  ")
}

func encodeCrafts(crafts map[string]Craft, version int64) ([]byte, error) {
	registry := make(map[string]map[string]json.RawMessage, len(crafts))
	for id, c := range crafts {
		fields := map[string]json.RawMessage{}
		if len(c.Payload) > 0 {
			if err := json.Unmarshal(c.Payload, &fields); err != nil {
				return nil, fmt.Errorf("craft %s payload: %w", id, err)
			}
		}
		name, _ := json.Marshal(c.Name)
		fields[fieldName] = name
		if c.Author != "" {
			author, _ := json.Marshal(c.Author)
			fields[fieldAuthor] = author
		}
		if version >= 2 {
			status := c.Status
			if status == "" {
				status = StatusActive
			}
			encoded, _ := json.Marshal(string(status))
			fields[fieldStatus] = encoded
		}
		registry[id] = fields
	}
	return json.MarshalIndent(map[string]any{"crafts": registry}, "", "  ")
}

// Serialize encodes w as a snapshot archive: a tar stream of its files compressed with zstd.
func Serialize(w *SaveWorld) ([]byte, error) {
	files, err := Files(w)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	tw := tar.NewWriter(enc)
	for _, name := range names {
		data := files[name]
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			enc.Close()
			return nil, fmt.Errorf("tar header %s: %w", name, err)
		}
		if _, err := tw.Write(data); err != nil {
			enc.Close()
			return nil, fmt.Errorf("tar write %s: %w", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		enc.Close()
		return nil, fmt.Errorf("tar close: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("zstd close: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse decodes a snapshot archive produced by Serialize.
func Parse(data []byte) (*SaveWorld, error) {
	files, err := readArchive(data)
	if err != nil {
		return nil, err
	}
	return ParseFiles(files)
}

func readArchive(data []byte) (map[string][]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, malformed("archive", "not a zstd stream", err)
	}
	defer dec.Close()

	files := map[string][]byte{}
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("archive", "corrupt tar stream", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := path.Clean(hdr.Name)
		if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return nil, malformed("archive", "entry escapes the world directory: "+hdr.Name, nil)
		}

		content, err := io.ReadAll(io.LimitReader(tr, maxArchiveEntry+1))
		if err != nil {
			return nil, malformed("archive", "read "+name, err)
		}
		if len(content) > maxArchiveEntry {
			return nil, malformed("archive", "entry too large: "+name, nil)
		}
		files[name] = content
	}
	return files, nil
}
