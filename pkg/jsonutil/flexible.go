// Package jsonutil handles loosely typed JSON from external systems.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleStringValue converts a json.RawMessage to a string. Shopify webhook
// payloads send ids as numbers while checkout tokens arrive as strings, so
// callers cannot assume a type up front. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}

// Field extracts one top-level field from a JSON object as a string, using
// the flexible conversion above. Returns empty string when the document is
// not an object or the field is absent.
func Field(doc []byte, name string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return ""
	}
	return FlexibleStringValue(fields[name])
}
