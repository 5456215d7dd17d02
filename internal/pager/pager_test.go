package pager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name   string
	Amount float64
	Due    any
}

func rowField(r row, field string) any {
	switch field {
	case "Name":
		return r.Name
	case "Amount":
		return r.Amount
	case "Due":
		return r.Due
	}
	return nil
}

func rows(n int) []row {
	out := make([]row, n)
	for i := range out {
		out[i] = row{Name: string(rune('a' + i%26)), Amount: float64(i)}
	}
	return out
}

func TestEmptyPager(t *testing.T) {
	p := New(10, rowField)
	p.SetRecords(nil)

	assert.Equal(t, 0, p.TotalPages())
	assert.Equal(t, 1, p.CurrentPage())
	assert.True(t, p.IsFirstPage())
	assert.True(t, p.IsLastPage())
	assert.Equal(t, "0-0 of 0", p.PageInfo())
	assert.False(t, p.ShowPagination())
	assert.Empty(t, p.Page())
}

func TestNavigationAndClamping(t *testing.T) {
	p := New(10, rowField)
	p.SetRecords(rows(25))

	require.Equal(t, 3, p.TotalPages())
	assert.Equal(t, "1-10 of 25", p.PageInfo())
	assert.True(t, p.ShowPagination())

	p.Next()
	assert.Equal(t, "11-20 of 25", p.PageInfo())
	p.Last()
	assert.Equal(t, "21-25 of 25", p.PageInfo())
	assert.Len(t, p.Page(), 5)
	assert.True(t, p.IsLastPage())

	p.Next()
	assert.Equal(t, 3, p.CurrentPage())
	p.GotoPage(99)
	assert.Equal(t, 3, p.CurrentPage())
	p.GotoPage(-4)
	assert.Equal(t, 1, p.CurrentPage())
	p.Previous()
	assert.True(t, p.IsFirstPage())
}

func TestSetRecordsResetsPage(t *testing.T) {
	p := New(5, rowField)
	p.SetRecords(rows(12))
	p.Last()
	p.SetRecords(rows(12))
	assert.Equal(t, 1, p.CurrentPage())
}

func TestExactPageBoundary(t *testing.T) {
	p := New(10, rowField)
	p.SetRecords(rows(10))
	assert.Equal(t, 1, p.TotalPages())
	assert.False(t, p.ShowPagination())
	assert.True(t, p.IsLastPage())
}

func TestSortIsStableAndCaseInsensitive(t *testing.T) {
	p := New(10, rowField)
	p.SetRecords([]row{
		{Name: "beta", Amount: 1},
		{Name: "Alpha", Amount: 2},
		{Name: "alpha", Amount: 3},
		{Name: "Gamma", Amount: 4},
	})

	p.Sort("Name", Asc)
	got := p.Records()
	assert.Equal(t, []float64{2, 3, 1, 4}, amounts(got))

	p.Sort("Name", Desc)
	assert.Equal(t, "Gamma", p.Records()[0].Name)
	assert.Equal(t, Desc, p.SortDirection())
}

func TestSortDescThenAscRestoresAscending(t *testing.T) {
	p := New(10, rowField)
	p.SetRecords([]row{{Amount: 3}, {Amount: 1}, {Amount: 2}, {Amount: 5}})

	p.Sort("Amount", Desc)
	assert.Equal(t, []float64{5, 3, 2, 1}, amounts(p.Records()))
	p.Sort("Amount", Asc)
	assert.Equal(t, []float64{1, 2, 3, 5}, amounts(p.Records()))
	p.Sort("Amount", Desc)
	p.Sort("Amount", Asc)
	assert.Equal(t, []float64{1, 2, 3, 5}, amounts(p.Records()))
}

func TestSortDescKeepsTieOrder(t *testing.T) {
	p := New(10, rowField)
	p.SetRecords([]row{
		{Name: "first", Amount: 5},
		{Name: "low", Amount: 1},
		{Name: "second", Amount: 5},
	})

	p.Sort("Amount", Desc)
	var names []string
	for _, r := range p.Records() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"first", "second", "low"}, names)
}

func TestSortNumbersAndNil(t *testing.T) {
	p := New(10, rowField)
	p.SetRecords([]row{
		{Amount: 10, Due: "2024-05-01"},
		{Amount: 9, Due: nil},
		{Amount: 100, Due: "2024-01-01"},
	})

	p.Sort("Amount", Asc)
	assert.Equal(t, []float64{9, 10, 100}, amounts(p.Records()))

	p.Sort("Due", Asc)
	assert.Nil(t, p.Records()[0].Due, "nil sorts as the empty string")
}

func TestSortReappliedOnSetRecords(t *testing.T) {
	p := New(10, rowField)
	p.Sort("Amount", Desc)
	p.SetRecords(rows(3))
	assert.Equal(t, []float64{2, 1, 0}, amounts(p.Records()))
}

func TestComparator(t *testing.T) {
	c := NewComparator()
	now := time.Now()
	assert.Equal(t, -1, c.Compare(now, now.Add(time.Hour)))
	assert.Equal(t, 0, c.Compare("ABC", "abc"))
	assert.Equal(t, -1, c.Compare(false, true))
	assert.Equal(t, 1, c.Compare(int64(3), 2.5))
	assert.Equal(t, 0, c.Compare(nil, ""))
}

func TestSnapshot(t *testing.T) {
	p := New(2, rowField)
	p.SetRecords(rows(3))
	p.Sort("Amount", Asc)
	s := p.Snapshot()
	assert.Equal(t, 2, s.TotalPages)
	assert.Equal(t, "1-2 of 3", s.PageInfo)
	assert.Len(t, s.Records, 2)
	assert.Equal(t, "Amount", s.SortField)
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, Asc, ParseDirection("sideways"))
}

func amounts(rs []row) []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = r.Amount
	}
	return out
}
