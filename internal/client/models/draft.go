// Package models defines the local draft kept by the CLI while the visitor
// is signed out.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DraftVersion is the schema tag of the persisted draft. Stored drafts with
// any other version are ignored.
const DraftVersion = 1

var ErrIncorrectAssignment = errors.New("value must be name=value")

// DraftDesign is a design created before sign-in. TempID is unique within
// the process only.
type DraftDesign struct {
	TempID     string          `json:"tempId"`
	AssetType  string          `json:"assetType"`
	TemplateID int             `json:"templateId"`
	StyleID    int             `json:"styleId"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  int64           `json:"timestamp"`
}

// Modifications records the accumulated brand delta and the time (unix ms)
// of the last local edit.
type Modifications struct {
	Brand        map[string]any `json:"brand"`
	LastModified int64          `json:"lastModified"`
}

type Draft struct {
	Brand         map[string]any `json:"brand"`
	Designs       []DraftDesign  `json:"designs"`
	Modifications Modifications  `json:"modifications"`
	Version       int            `json:"version"`
}

// NewDraft returns an empty draft of the current version.
func NewDraft() *Draft {
	return &Draft{
		Brand:         map[string]any{},
		Designs:       []DraftDesign{},
		Modifications: Modifications{Brand: map[string]any{}},
		Version:       DraftVersion,
	}
}

// HasBrandData reports whether the brand section has at least one field.
func (d *Draft) HasBrandData() bool {
	return d != nil && len(d.Brand) > 0
}

// HasData reports whether there is anything worth migrating.
func (d *Draft) HasData() bool {
	return d != nil && (len(d.Designs) > 0 || len(d.Brand) > 0)
}

// IntegerFields are assignment names whose values are parsed as integers.
var IntegerFields = map[string]bool{
	"style_id":    true,
	"template_id": true,
	"styleId":     true,
	"templateId":  true,
}

// ParseAssignments turns "name=value" arguments into a map. Only the first
// "=" separates name from value; names are trimmed and must not be empty.
// JSON objects and arrays are decoded and IntegerFields become ints. Every
// other value stays a string, so name=2024 is the name "2024".
func ParseAssignments(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%q: %w", arg, ErrIncorrectAssignment)
		}
		out[name] = decodeValue(name, value)
	}
	return out, nil
}

func decodeValue(name, s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	if IntegerFields[name] {
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n
		}
		return s
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return s
}
