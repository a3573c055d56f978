package evidence

import "fmt"

// RequiredTopKeys lists the keys that every schema v1.0 evidence record must
// carry at the top level. schema_valid and schema_errors are excluded: they
// are attached after validation runs.
var RequiredTopKeys = []string{
	"schema_version",
	"input_fp_sha256",
	"input_length",
	"output_fp_sha256",
	"output_length",
	"freq_type",
	"mode",
	"scenario",
	"confidence",
	"metrics",
	"audit",
	"llm_used",
	"cache_hit",
	"model",
	"usage",
	"output_source",
	"api_version",
	"pipeline_version_fingerprint",
}

// ValidateRecord checks a record against the v1.0 schema and returns the
// accumulated violation codes. It never aborts: a schema violation is data
// for the audit trail, not a fatal condition.
//
// Violation codes:
//
//	missing:<key>                 a required top-level key is absent
//	missing:confidence.<sub>      confidence lacks final or classifier
//	type:<field>_<reason>         a present key has the wrong type
func ValidateRecord(record EvidenceRecord) []string {
	var violations []string

	for _, key := range RequiredTopKeys {
		if _, ok := record[key]; !ok {
			violations = append(violations, "missing:"+key)
		}
	}

	// confidence must be an object carrying both final and classifier.
	if raw, ok := record["confidence"]; ok {
		conf, ok := raw.(map[string]any)
		if !ok {
			violations = append(violations, "type:confidence_not_object")
		} else {
			for _, sub := range []string{"final", "classifier"} {
				if _, ok := conf[sub]; !ok {
					violations = append(violations, "missing:confidence."+sub)
				} else if !isNumber(conf[sub]) {
					violations = append(violations, fmt.Sprintf("type:confidence.%s_not_number", sub))
				}
			}
		}
	}

	for _, field := range []string{"input_length", "output_length"} {
		if raw, ok := record[field]; ok && !isInteger(raw) {
			violations = append(violations, "type:"+field+"_not_integer")
		}
	}

	// llm_used and cache_hit may be absent or null; a present non-null value
	// must be a boolean.
	for _, field := range []string{"llm_used", "cache_hit"} {
		if raw, ok := record[field]; ok && raw != nil {
			if _, ok := raw.(bool); !ok {
				violations = append(violations, "type:"+field+"_not_boolean")
			}
		}
	}

	for _, field := range []string{"usage", "audit", "metrics"} {
		if raw, ok := record[field]; ok && raw != nil {
			if _, ok := raw.(map[string]any); !ok {
				violations = append(violations, "type:"+field+"_not_object")
			}
		}
	}

	return violations
}

// isInteger reports whether v is an integral numeric value. Records that
// round-tripped through JSON carry float64 values, so a float with no
// fractional part counts as an integer.
func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == float64(int64(n))
	case float32:
		return n == float32(int64(n))
	default:
		return false
	}
}

// isNumber reports whether v is any numeric value.
func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}
