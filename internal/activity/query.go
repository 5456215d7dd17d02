// Package activity stores and queries the per-entity audit stream: one
// entry for every entity a domain event touches.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/matthewbaird/intake/internal/types"
)

// QueryOptions controls filtering and pagination for entity activity queries.
type QueryOptions struct {
	Since      *time.Time // default: 6 months ago
	Until      *time.Time // default: now
	Categories []string   // "intake", "conflict", "availability", "export", "data"
	EventTypes []string
	Limit      int    // max results (default: 100, max: 500)
	Cursor     string // cursor for pagination
}

// SearchOptions controls filtering for full-text activity search.
type SearchOptions struct {
	EntityType string     // filter to specific entity type
	Since      *time.Time // filter by time
	Categories []string
	Limit      int // max results (default: 20)
}

// Limits.
const (
	DefaultLimit       = 100
	MaxLimit           = 500
	DefaultSearchLimit = 20
)

// DefaultQueryOptions returns QueryOptions with sensible defaults.
func DefaultQueryOptions() QueryOptions {
	sixMonthsAgo := time.Now().AddDate(0, -6, 0)
	now := time.Now()
	return QueryOptions{
		Since: &sixMonthsAgo,
		Until: &now,
		Limit: DefaultLimit,
	}
}

// DefaultSearchOptions returns SearchOptions with sensible defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit: DefaultSearchLimit,
	}
}

func (o QueryOptions) limit() int {
	if o.Limit <= 0 || o.Limit > MaxLimit {
		return DefaultLimit
	}
	return o.Limit
}

func (o SearchOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultSearchLimit
	}
	return o.Limit
}

// cursor marks the last entry of a page. Entries sort by time, then event id,
// both descending, so the pair is unique.
type cursor struct {
	at      time.Time
	eventID string
}

func cursorOf(e types.ActivityEntry) string {
	return e.OccurredAt.UTC().Format(time.RFC3339Nano) + "|" + e.EventID
}

func parseCursor(s string) (cursor, bool) {
	if s == "" {
		return cursor{}, false
	}
	ts, id, _ := strings.Cut(s, "|")
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return cursor{}, false
	}
	return cursor{at: at, eventID: id}, true
}

// after reports whether e sorts after the cursor position.
func (c cursor) after(e types.ActivityEntry) bool {
	if e.OccurredAt.Equal(c.at) {
		return e.EventID < c.eventID
	}
	return e.OccurredAt.Before(c.at)
}

func newer(a, b types.ActivityEntry) bool {
	if a.OccurredAt.Equal(b.OccurredAt) {
		return a.EventID > b.EventID
	}
	return a.OccurredAt.After(b.OccurredAt)
}

// ValidateCursor rejects a malformed pagination cursor.
func ValidateCursor(s string) error {
	if s == "" {
		return nil
	}
	if _, ok := parseCursor(s); !ok {
		return fmt.Errorf("activity: invalid cursor %q", s)
	}
	return nil
}
