package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a string-keyed field map — the structured encoding shared by
// the persisted layout and the remote-store contract. Values are plain
// JSON scalars plus []string for id lists.
type Record = map[string]any

// marshalRecords converts a collection to JSON TEXT for storage.
// Go's json.Marshal sorts map keys alphabetically, so output is
// deterministic for a given collection.
func marshalRecords(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // names and notes are user text, keep them readable
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalRecords parses stored JSON TEXT back to field maps.
// Uses json.Number so numeric fields survive without float64 precision loss.
func unmarshalRecords(data string) ([]Record, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	return records, nil
}

// stringField reads a string field; ok=false when absent, null, or not a
// string.
func stringField(r Record, key string) (string, bool) {
	v, present := r[key]
	if !present || v == nil {
		return "", false
	}
	s, isStr := v.(string)
	return s, isStr
}

// optStringField reads a nullable string field as a pointer.
func optStringField(r Record, key string) *string {
	if s, ok := stringField(r, key); ok {
		return &s
	}
	return nil
}

// intField reads a numeric field; tolerates json.Number, int, and float64
// so records survive a trip through any JSON-shaped transport.
func intField(r Record, key string) (int64, bool) {
	v, present := r[key]
	if !present || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// boolField reads a boolean field; absent or non-bool reads as false.
func boolField(r Record, key string) bool {
	b, _ := r[key].(bool)
	return b
}

// stringSliceField reads a list-of-ids field. Accepts both []string
// (freshly flattened) and []any of strings (round-tripped through JSON).
func stringSliceField(r Record, key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
