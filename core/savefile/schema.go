package savefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const settingsSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["formatVersion", "totalPlayTimeSeconds"],
  "properties": {
    "formatVersion": {"type": "integer"},
    "totalPlayTimeSeconds": {"type": "integer", "minimum": 0}
  }
}`

const craftsSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["crafts"],
  "properties": {
    "crafts": {
      "type": "object",
      "propertyNames": {"minLength": 1},
      "additionalProperties": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "author": {"type": "string"}
        }
      }
    }
  }
}`

// statusSchemaJSON is applied on top of craftsSchemaJSON from format version 2 on.
const statusSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "crafts": {
      "additionalProperties": {
        "properties": {
          "status": {"enum": ["active", "destroyed"]}
        }
      }
    }
  }
}`

var (
	settingsSchema = jsonschema.MustCompileString("settings.schema.json", settingsSchemaJSON)
	craftsSchema   = jsonschema.MustCompileString("crafts.schema.json", craftsSchemaJSON)
	statusSchema   = jsonschema.MustCompileString("status.schema.json", statusSchemaJSON)
)

// decodeDocument decodes a single JSON document keeping numbers as json.Number.
func decodeDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// canonicalJSON rewrites a JSON value with sorted object keys and no insignificant whitespace.
func canonicalJSON(data []byte) (json.RawMessage, error) {
	v, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func validate(section string, schema *jsonschema.Schema, doc any) error {
	if err := schema.Validate(doc); err != nil {
		return malformed(section, "schema validation failed: "+err.Error(), err)
	}
	return nil
}
