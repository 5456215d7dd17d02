package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matthewbaird/intake/internal/intake"
)

func TestFormatError(t *testing.T) {
	const fallback = "Something went wrong"
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, fallback},
		{"empty string", "", fallback},
		{"string", "boom", "boom"},
		{"error", errors.New("disk full"), "disk full"},
		{"validation error", fmt.Errorf("save: %w", &intake.ValidationError{Messages: []string{"a.", "b."}}), "a. b."},
		{"body message", map[string]any{"body": map[string]any{"message": "from body"}}, "from body"},
		{"body array", map[string]any{"body": []any{
			map[string]any{"message": "first"},
			map[string]any{"other": 1},
			map[string]any{"message": "second"},
		}}, "first, second"},
		{"top-level message", map[string]any{"message": "top"}, "top"},
		{"body wins over message", map[string]any{"body": map[string]any{"message": "body"}, "message": "top"}, "body"},
		{"raw json", json.RawMessage(`{"body":[{"message":"raw"}]}`), "raw"},
		{"invalid raw json", json.RawMessage(`{`), fallback},
		{"unknown shape", 42, fallback},
		{"empty map", map[string]any{}, fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatError(tt.in, fallback))
		})
	}
}
