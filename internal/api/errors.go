package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TransportError reports a failed request: a network error, a non-2xx
// status, or an unreadable response. The core never mutates local state
// when one of these comes back.
type TransportError struct {
	// Op names the operation that failed (e.g. "send-message").
	Op string

	// StatusCode is the HTTP status, 0 for network failures.
	StatusCode int

	// Detail is the server-provided error message, if any.
	Detail string

	// Err is the underlying error, if any.
	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Detail, e.StatusCode)
	default:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// UserMessage returns a message suitable for display: the server detail
// when present, a generic fallback otherwise.
func UserMessage(err error, fallback string) string {
	var te *TransportError
	if errors.As(err, &te) && te.Detail != "" {
		return te.Detail
	}
	return fallback
}

// detailFromBody extracts the most useful error message from an ad hoc
// error payload: a "detail" field, or the first field-level error list
// (the register endpoint returns {"email": ["..."], "password": ["..."]}).
func detailFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if raw, ok := payload["detail"]; ok {
		var detail string
		if err := json.Unmarshal(raw, &detail); err == nil {
			return detail
		}
	}

	for _, field := range []string{"email", "password", "old_password", "title", "content"} {
		raw, ok := payload[field]
		if !ok {
			continue
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			return strings.TrimSpace(list[0])
		}
	}

	return ""
}
