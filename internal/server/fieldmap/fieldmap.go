// Package fieldmap translates top-level field names between the external API
// convention (snake_case) and the internal record convention (camelCase).
//
// Each entity has one table listing every field it knows. Inbound payloads
// may use either name for a field; anything not in the table is dropped.
// Outbound records are always rendered with the external names.
package fieldmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field pairs the external and the internal name of one attribute.
type Field struct {
	External string
	Internal string
}

// Table is an exhaustive bidirectional mapping for one entity.
type Table struct {
	name       string
	fields     []Field
	toInternal map[string]string
	toExternal map[string]string
}

// NewTable builds a table. It panics on duplicate names, which can only
// happen through a programming error in the table literals below.
func NewTable(name string, fields ...Field) *Table {
	t := &Table{
		name:       name,
		fields:     fields,
		toInternal: make(map[string]string, len(fields)),
		toExternal: make(map[string]string, len(fields)),
	}
	for _, f := range fields {
		if _, dup := t.toInternal[f.External]; dup {
			panic(fmt.Sprintf("fieldmap %s: duplicate external name %q", name, f.External))
		}
		if _, dup := t.toExternal[f.Internal]; dup {
			panic(fmt.Sprintf("fieldmap %s: duplicate internal name %q", name, f.Internal))
		}
		t.toInternal[f.External] = f.Internal
		t.toExternal[f.Internal] = f.External
	}
	return t
}

func (t *Table) Name() string { return t.name }

// Internal lists the internal names in declaration order.
func (t *Table) Internal() []string {
	out := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		out = append(out, f.Internal)
	}
	return out
}

// Inbound renames an external payload to internal names. Keys may already
// be internal; when both spellings are present the external one wins.
// Unknown keys are dropped.
func (t *Table) Inbound(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if _, ok := t.toExternal[k]; ok {
			out[k] = v
		}
	}
	for k, v := range in {
		if internal, ok := t.toInternal[k]; ok {
			out[internal] = v
		}
	}
	return out
}

// Outbound renames an internal record to external names, dropping keys the
// table does not know.
func (t *Table) Outbound(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if external, ok := t.toExternal[k]; ok {
			out[external] = v
		}
	}
	return out
}

// Decode reads an external JSON object into dst, a pointer to a record
// whose JSON tags carry internal names.
func (t *Table) Decode(body []byte, dst any) error {
	raw, err := decodeObject(body)
	if err != nil {
		return err
	}
	return t.DecodeMap(raw, dst)
}

// DecodeMap is Decode for an already parsed object.
func (t *Table) DecodeMap(raw map[string]any, dst any) error {
	b, err := json.Marshal(t.Inbound(raw))
	if err != nil {
		return fmt.Errorf("%s: encode mapped payload: %w", t.name, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s: decode mapped payload: %w", t.name, err)
	}
	return nil
}

// Encode renders a record as an object keyed by external names.
func (t *Table) Encode(src any) (map[string]any, error) {
	b, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("%s: encode record: %w", t.name, err)
	}
	raw, err := decodeObject(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.name, err)
	}
	return t.Outbound(raw), nil
}

// EncodeList is Encode over a slice of records.
func EncodeList[T any](t *Table, items []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, err := t.Encode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("invalid JSON object: null")
	}
	return raw, nil
}
