package savefile

import (
	"bytes"
	"encoding/json"
	"strings"

	"shared-save/core/utils"
)

const (
	fieldFormatVersion = "formatVersion"
	fieldPlayTime      = "totalPlayTimeSeconds"

	fieldName   = "name"
	fieldAuthor = "author"
	fieldStatus = "status"
)

// ParseFiles builds a SaveWorld from world files keyed by slash separated relative path.
// Files outside the modeled sections are ignored. The input map is not modified.
func ParseFiles(files map[string][]byte) (*SaveWorld, error) {
	settingsData, ok := files[SettingsFile]
	if !ok {
		return nil, malformed(SettingsFile, "section is missing", nil)
	}
	settings, err := parseSettings(settingsData)
	if err != nil {
		return nil, err
	}

	craftsData, ok := files[CraftsFile]
	if !ok {
		return nil, malformed(CraftsFile, "section is missing", nil)
	}
	crafts, err := parseCrafts(craftsData, settings.FormatVersion)
	if err != nil {
		return nil, err
	}

	persistent := PersistentData{}
	prefix := PersistentDir + "/"
	for name, data := range files {
		if rel, ok := strings.CutPrefix(name, prefix); ok && rel != "" {
			persistent[rel] = bytes.Clone(data)
		}
	}

	return &SaveWorld{
		Crafts:     crafts,
		Settings:   settings,
		Persistent: persistent,
	}, nil
}

func parseSettings(data []byte) (WorldSettings, error) {
	var settings WorldSettings

	doc, err := decodeDocument(data)
	if err != nil {
		return settings, malformed(SettingsFile, "invalid JSON", err)
	}

	// The format marker is checked before the schema: a newer format may legitimately
	// fail the schema we know about.
	if obj, ok := doc.(map[string]any); ok {
		if raw, present := obj[fieldFormatVersion]; present {
			v, err := utils.ExactInt64(raw)
			if err != nil {
				return settings, malformed(SettingsFile, fieldFormatVersion+" must be an integer", err)
			}
			if v < MinFormatVersion || v > MaxFormatVersion {
				return settings, &UnsupportedVersionError{Version: v, Min: MinFormatVersion, Max: MaxFormatVersion}
			}
		}
	}

	if err := validate(SettingsFile, settingsSchema, doc); err != nil {
		return settings, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return settings, malformed(SettingsFile, "invalid JSON object", err)
	}

	obj := doc.(map[string]any)
	if settings.FormatVersion, err = utils.ExactInt64(obj[fieldFormatVersion]); err != nil {
		return settings, malformed(SettingsFile, fieldFormatVersion+" must be an integer", err)
	}
	if settings.TotalPlayTimeSeconds, err = utils.ExactInt64(obj[fieldPlayTime]); err != nil || settings.TotalPlayTimeSeconds < 0 {
		return settings, malformed(SettingsFile, fieldPlayTime+" must be a non-negative integer", err)
	}
	settings.Extra = make(map[string]json.RawMessage, len(fields))
	for key, raw := range fields {
		if key == fieldFormatVersion || key == fieldPlayTime {
			continue
		}
		canon, err := canonicalJSON(raw)
		if err != nil {
			return settings, malformed(SettingsFile, "invalid value for "+key, err)
		}
		settings.Extra[key] = canon
	}

	return settings, nil
}

type craftsFile struct {
	Crafts map[string]map[string]json.RawMessage `json:"crafts"`
}

func parseCrafts(data []byte, version int64) (map[string]Craft, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, malformed(CraftsFile, "invalid JSON", err)
	}
	if err := validate(CraftsFile, craftsSchema, doc); err != nil {
		return nil, err
	}
	hasStatus := version >= 2
	if hasStatus {
		if err := validate(CraftsFile, statusSchema, doc); err != nil {
			return nil, err
		}
	}

	var registry craftsFile
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, malformed(CraftsFile, "invalid craft registry", err)
	}

	crafts := make(map[string]Craft, len(registry.Crafts))
	for id, fields := range registry.Crafts {
		craft := Craft{ID: id, Status: StatusActive}
		payload := make(map[string]json.RawMessage, len(fields))

		for key, raw := range fields {
			switch {
			case key == fieldName:
				_ = json.Unmarshal(raw, &craft.Name)
			case key == fieldAuthor:
				_ = json.Unmarshal(raw, &craft.Author)
			case key == fieldStatus && hasStatus:
				var status string
				_ = json.Unmarshal(raw, &status)
				craft.Status = Status(status)
			default:
				payload[key] = raw
			}
		}

		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, malformed(CraftsFile, "invalid payload for craft "+id, err)
		}
		if craft.Payload, err = canonicalJSON(encoded); err != nil {
			return nil, malformed(CraftsFile, "invalid payload for craft "+id, err)
		}
		crafts[id] = craft
	}

	return crafts, nil
}
