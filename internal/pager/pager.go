// Package pager pages and sorts a fully fetched result set in memory, the way
// dashboard drill-down modals browse their records.
package pager

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc"/"desc" in any case; anything else is Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Accessor returns the value of a named column for a record.
type Accessor[T any] func(rec T, field string) any

// Pager holds the state of one paged view. It is not safe for concurrent use.
type Pager[T any] struct {
	all       []T
	pageSize  int
	current   int
	sortField string
	sortDir   Direction
	get       Accessor[T]
	cmp       *Comparator
}

// New returns an empty pager. pageSize values below 1 become 1.
func New[T any](pageSize int, get Accessor[T]) *Pager[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Pager[T]{pageSize: pageSize, current: 1, get: get, cmp: NewComparator()}
}

// SetRecords replaces the result set and returns to page 1. An active sort is
// reapplied.
func (p *Pager[T]) SetRecords(all []T) {
	p.all = make([]T, len(all))
	copy(p.all, all)
	p.current = 1
	if p.sortField != "" {
		p.sort()
	}
}

// Sort stably reorders the records by field. Ties keep their prior order.
func (p *Pager[T]) Sort(field string, dir Direction) {
	p.sortField = field
	p.sortDir = dir
	p.sort()
}

func (p *Pager[T]) sort() {
	sort.SliceStable(p.all, func(i, j int) bool {
		c := p.cmp.Compare(p.get(p.all[i], p.sortField), p.get(p.all[j], p.sortField))
		if p.sortDir == Desc {
			return c > 0
		}
		return c < 0
	})
}

// SortField returns the active sort column.
func (p *Pager[T]) SortField() string { return p.sortField }

// SortDirection returns the active sort direction.
func (p *Pager[T]) SortDirection() Direction { return p.sortDir }

// Total is the number of records.
func (p *Pager[T]) Total() int { return len(p.all) }

// PageSize is the number of records per page.
func (p *Pager[T]) PageSize() int { return p.pageSize }

// CurrentPage is the 1-based page number.
func (p *Pager[T]) CurrentPage() int { return p.current }

// TotalPages is ceil(total / pageSize); 0 when there are no records.
func (p *Pager[T]) TotalPages() int {
	return (len(p.all) + p.pageSize - 1) / p.pageSize
}

// GotoPage moves to page n clamped to [1, TotalPages].
func (p *Pager[T]) GotoPage(n int) {
	last := p.TotalPages()
	if n > last {
		n = last
	}
	if n < 1 {
		n = 1
	}
	p.current = n
}

func (p *Pager[T]) Next()     { p.GotoPage(p.current + 1) }
func (p *Pager[T]) Previous() { p.GotoPage(p.current - 1) }
func (p *Pager[T]) First()    { p.GotoPage(1) }
func (p *Pager[T]) Last()     { p.GotoPage(p.TotalPages()) }

// IsFirstPage reports whether there is no previous page.
func (p *Pager[T]) IsFirstPage() bool { return p.current <= 1 }

// IsLastPage reports whether there is no next page.
func (p *Pager[T]) IsLastPage() bool { return p.current >= p.TotalPages() }

// StartRecord is the 1-based index of the first record shown, or 0.
func (p *Pager[T]) StartRecord() int {
	if len(p.all) == 0 {
		return 0
	}
	return (p.current-1)*p.pageSize + 1
}

// EndRecord is the 1-based index of the last record shown.
func (p *Pager[T]) EndRecord() int {
	return min(p.current*p.pageSize, len(p.all))
}

// PageInfo renders "start-end of total".
func (p *Pager[T]) PageInfo() string {
	return fmt.Sprintf("%d-%d of %d", p.StartRecord(), p.EndRecord(), len(p.all))
}

// ShowPagination reports whether more than one page of records exists.
func (p *Pager[T]) ShowPagination() bool { return len(p.all) > p.pageSize }

// Page returns the records on the current page.
func (p *Pager[T]) Page() []T {
	if len(p.all) == 0 {
		return []T{}
	}
	start := (p.current - 1) * p.pageSize
	end := min(start+p.pageSize, len(p.all))
	out := make([]T, end-start)
	copy(out, p.all[start:end])
	return out
}

// Records returns every record in current sort order.
func (p *Pager[T]) Records() []T {
	out := make([]T, len(p.all))
	copy(out, p.all)
	return out
}

// State is a serialisable snapshot of the pager for API responses.
type State[T any] struct {
	Records        []T       `json:"records"`
	CurrentPage    int       `json:"current_page"`
	TotalPages     int       `json:"total_pages"`
	TotalRecords   int       `json:"total_records"`
	PageSize       int       `json:"page_size"`
	PageInfo       string    `json:"page_info"`
	IsFirstPage    bool      `json:"is_first_page"`
	IsLastPage     bool      `json:"is_last_page"`
	ShowPagination bool      `json:"show_pagination"`
	SortField      string    `json:"sort_field,omitempty"`
	SortDirection  Direction `json:"sort_direction,omitempty"`
}

// Snapshot captures the current page and navigation state.
func (p *Pager[T]) Snapshot() State[T] {
	return State[T]{
		Records:        p.Page(),
		CurrentPage:    p.current,
		TotalPages:     p.TotalPages(),
		TotalRecords:   len(p.all),
		PageSize:       p.pageSize,
		PageInfo:       p.PageInfo(),
		IsFirstPage:    p.IsFirstPage(),
		IsLastPage:     p.IsLastPage(),
		ShowPagination: p.ShowPagination(),
		SortField:      p.sortField,
		SortDirection:  p.sortDir,
	}
}

// Comparator orders column values: strings by case-insensitive collation,
// numbers numerically, times chronologically, booleans false before true.
// nil compares as the empty string. It is not safe for concurrent use.
type Comparator struct {
	coll *collate.Collator
}

// NewComparator returns a Comparator using root-locale collation.
func NewComparator() *Comparator {
	return &Comparator{coll: collate.New(language.Und, collate.IgnoreCase)}
}

// Compare returns -1, 0 or +1.
func (c *Comparator) Compare(a, b any) int {
	if a == nil {
		a = ""
	}
	if b == nil {
		b = ""
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return compareFloat(fa, fb)
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	if r := c.coll.CompareString(sa, sb); r != 0 {
		return r
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
