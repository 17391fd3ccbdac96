package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bobmcallan/managed-db-mcp/internal/client"
)

const notAvailable = "N/A"

// field maps one response key to a labelled output line.
// Optional fields render fallback when absent or null; required ones fail.
type field struct {
	label    string
	key      string
	optional bool
	fallback string
}

func required(label, key string) field { return field{label: label, key: key} }

func optional(label, key, fallback string) field {
	return field{label: label, key: key, optional: true, fallback: fallback}
}

// decodeDocument parses a JSON object response body.
func decodeDocument(resp *client.Response) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := resp.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("failed to parse response: expected a JSON object")
	}
	return doc, nil
}

// writeFields renders "Label: value" lines, one per field.
func writeFields(sb *strings.Builder, doc map[string]interface{}, indent string, fields []field) error {
	for i, f := range fields {
		value, err := lookup(doc, f)
		if err != nil {
			return err
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s%s: %s", indent, f.label, value))
	}
	return nil
}

func lookup(doc map[string]interface{}, f field) (string, error) {
	v, ok := doc[f.key]
	if !ok || v == nil {
		if f.optional {
			return f.fallback, nil
		}
		if !ok {
			return "", fmt.Errorf("response missing field %q", f.key)
		}
	}
	return formatValue(v), nil
}

// formatValue renders a decoded JSON value as plain text.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return notAvailable
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		out, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(out)
	}
}

// formatBody renders a response body for display: indented JSON when it
// parses, the trimmed text otherwise.
func formatBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "(empty response)"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
