package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrResponseTooLarge is returned when a reply body exceeds maxResponseSize.
var ErrResponseTooLarge = errors.New("managed-db response too large")

// APIError is returned for any non-2xx reply from the Managed DB API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("managed-db API returned %d: %s", e.StatusCode, e.Detail)
}

// newAPIError extracts a detail message from an error body.
// Priority: JSON "detail" field -> whole JSON body -> raw text -> status text.
func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{StatusCode: statusCode, Detail: extractDetail(statusCode, body)}
}

func extractDetail(statusCode int, body []byte) string {
	trimmed := bytes.TrimSpace(body)

	var parsed interface{}
	if len(trimmed) > 0 && json.Unmarshal(trimmed, &parsed) == nil {
		if obj, ok := parsed.(map[string]interface{}); ok {
			if detail, ok := obj["detail"]; ok {
				if s, ok := detail.(string); ok {
					return s
				}
				if out, err := json.Marshal(detail); err == nil {
					return string(out)
				}
			}
		}
		return string(trimmed)
	}

	if len(trimmed) > 0 {
		return string(trimmed)
	}
	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return "Unknown error"
}
