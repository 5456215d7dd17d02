package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/matthewbaird/intake/internal/intake"
)

// FormatError extracts a user-facing message from a failure. It accepts a
// plain string, an error, or a decoded remote error body, looking in turn at
// body.message, each body[].message and message. Anything else yields
// fallback.
func FormatError(v any, fallback string) string {
	switch e := v.(type) {
	case nil:
		return fallback
	case string:
		if e == "" {
			return fallback
		}
		return e
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(e, &decoded); err != nil {
			return fallback
		}
		return FormatError(decoded, fallback)
	case error:
		var verr *intake.ValidationError
		if errors.As(e, &verr) {
			return strings.Join(verr.Messages, " ")
		}
		return e.Error()
	case map[string]any:
		if msg := bodyMessage(e["body"]); msg != "" {
			return msg
		}
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}

func bodyMessage(body any) string {
	switch b := body.(type) {
	case map[string]any:
		msg, _ := b["message"].(string)
		return msg
	case []any:
		var msgs []string
		for _, item := range b {
			if m, ok := item.(map[string]any); ok {
				if msg, _ := m["message"].(string); msg != "" {
					msgs = append(msgs, msg)
				}
			}
		}
		return strings.Join(msgs, ", ")
	}
	return ""
}
