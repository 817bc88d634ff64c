package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// auditReportSchema is the wire contract for oracle responses. Responses
// failing validation are treated exactly like fetch failures: the caller
// falls back to the deterministic baseline.
const auditReportSchema = `{
  "type": "object",
  "required": ["reconciled_garage", "skylights", "has_storm_door", "levels", "basement"],
  "properties": {
    "reconciled_garage": {"type": "integer", "minimum": 0},
    "skylights": {"type": "integer", "minimum": 0},
    "has_storm_door": {"type": "boolean"},
    "structural_evidence": {"type": "boolean"},
    "levels": {
      "type": "object",
      "required": ["L1", "L2"],
      "properties": {
        "L1": {"$ref": "#/definitions/level"},
        "L2": {"$ref": "#/definitions/level"},
        "L3": {"$ref": "#/definitions/level"}
      }
    },
    "basement": {
      "type": "object",
      "required": ["egress_units", "standard_units"],
      "properties": {
        "egress_units": {"type": "integer", "minimum": 0},
        "standard_units": {"type": "integer", "minimum": 0}
      }
    }
  },
  "definitions": {
    "level": {
      "type": "object",
      "required": ["standard", "non_standard"],
      "properties": {
        "standard": {"type": "integer", "minimum": 0},
        "non_standard": {"type": "integer", "minimum": 0},
        "slider_units": {"type": "integer", "minimum": 0},
        "picture_units": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

var compiledSchema = gojsonschema.NewStringLoader(auditReportSchema)

// ParseReport validates raw oracle output against the audit schema and
// decodes it. Invalid JSON and schema violations are both boundary errors.
func ParseReport(raw []byte) (*AuditReport, error) {
	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate audit report: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("audit report rejected by schema: %v", result.Errors())
	}

	var report AuditReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode audit report: %w", err)
	}
	return &report, nil
}
