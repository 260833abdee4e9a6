package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const manifestSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "title", "version", "runtime", "entryUrl"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": "string", "minLength": 1},
    "version": {"type": "string", "pattern": "^[0-9]+\\.[0-9]+\\.[0-9]+"},
    "runtime": {"enum": ["wire", "module"]},
    "entryUrl": {"type": "string", "minLength": 1},
    "capabilities": {
      "type": "array",
      "items": {"enum": ["audio", "save-progress", "telemetry"]}
    },
    "sizeHint": {
      "type": "object",
      "required": ["width", "height"],
      "properties": {
        "width": {"type": "integer", "minimum": 1},
        "height": {"type": "integer", "minimum": 1}
      }
    },
    "disabled": {"type": "boolean"},
    "rolloutPercentage": {"type": "integer", "minimum": 0, "maximum": 100}
  }
}`

var manifestSchema = jsonschema.MustCompileString("manifest.schema.json", manifestSchemaJSON)

// validateManifest checks a manifest against the catalog schema. The value
// is round-tripped through JSON because the validator works on decoded JSON
// values, not structs.
func validateManifest(m Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest %q: %v", m.ID, err)
	}

	var doc any
	if err = json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode manifest %q: %v", m.ID, err)
	}

	if err = manifestSchema.Validate(doc); err != nil {
		return fmt.Errorf("manifest %q failed schema validation: %v", m.ID, err)
	}

	return nil
}
