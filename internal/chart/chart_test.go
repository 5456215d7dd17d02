package chart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestedMax(t *testing.T) {
	assert.Equal(t, 100.0, SuggestedMax([]float64{12, 300}, true))
	assert.Equal(t, 375.0, SuggestedMax([]float64{12, 300}, false))
	assert.Equal(t, 100.0, SuggestedMax(nil, false))
	assert.Equal(t, 100.0, SuggestedMax([]float64{-5, 0}, false))
}

func TestConsistentColors(t *testing.T) {
	palette := []string{"#a", "#b", "#c"}
	got := ConsistentColors([]string{"Family", "Criminal", "Civil", "", "a"}, palette)
	want := []string{"#b", "#c", "#c", "#a", "#b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}

	// Stable regardless of the other labels present.
	assert.Equal(t, "#b", ConsistentColors([]string{"Family"}, palette)[0])

	assert.Equal(t, []string{DefaultColor, DefaultColor}, ConsistentColors([]string{"x", "y"}, nil))
	assert.Equal(t, []string{"#ffc107", "#ffc107"}, ConsistentColors([]string{"x", "y"}, []string{"#ffc107"}))
}

func TestHashWrapsAt32Bits(t *testing.T) {
	assert.Equal(t, int64(2096973700), hashLabel("Family"))
	assert.Equal(t, int64(1098608524), hashLabel("Estate Planning Team"))
}

func TestHorizontalBar(t *testing.T) {
	cfg := HorizontalBar("Payments Received", []string{"Family", "Civil"}, []float64{100, 40}, ColorPayments, false)
	assert.Equal(t, TypeBar, cfg.Type)
	assert.Equal(t, "y", cfg.Options["indexAxis"])
	require.Len(t, cfg.Data.Datasets, 1)
	assert.Equal(t, []string{ColorPayments, ColorPayments}, cfg.Data.Datasets[0].BackgroundColor)
	x := cfg.Options["scales"].(map[string]any)["x"].(map[string]any)
	assert.Equal(t, 125.0, x["suggestedMax"])

	data, err := json.Marshal(HorizontalBar("empty", nil, nil, "", false))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"labels":[]`)
	assert.Contains(t, string(data), `"data":[]`)
}

func TestRankedBarThickness(t *testing.T) {
	few := RankedBar("Completions", []string{"a", "b"}, []float64{1, 2}, "#00d924")
	assert.Equal(t, 22.0, few.Data.Datasets[0].BarThickness)
	assert.Equal(t, 0.8, few.Options["categoryPercentage"])

	labels := make([]string, 12)
	values := make([]float64, 12)
	many := RankedBar("Completions", labels, values, "#00d924")
	assert.Equal(t, 15.0, many.Data.Datasets[0].BarThickness)
	assert.Equal(t, 0.7, many.Options["barPercentage"])
}

func TestCollectionRate(t *testing.T) {
	cfg := CollectionRate(82.5)
	assert.Equal(t, TypeDoughnut, cfg.Type)
	assert.Equal(t, []float64{82.5, 17.5}, cfg.Data.Datasets[0].Data)
	assert.Equal(t, "70%", cfg.Data.Datasets[0].Cutout)

	over := CollectionRate(120)
	assert.Equal(t, []float64{120, 0}, over.Data.Datasets[0].Data)
}

func TestBuilderTypes(t *testing.T) {
	assert.Equal(t, TypeBar, HorizontalBar("x", nil, nil, "#000", false).Type)
	assert.Equal(t, TypeDoughnut, Doughnut(nil, nil, "50%").Type)
	line := Line("Sales Qualified Leads", nil, nil, "#0070d2")
	assert.Equal(t, TypeLine, line.Type)
	assert.Equal(t, []string{}, line.Data.Labels)
	assert.Equal(t, []float64{}, line.Data.Datasets[0].Data)
}

func TestFloor(t *testing.T) {
	assert.Equal(t, []float64{1, 2, -3}, Floor([]float64{1.9, 2.01, -2.5}))
}

func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	cfg := Line("Sales Qualified Leads", []string{"Jan"}, []float64{3}, "#0070d2")

	require.NoError(t, r.Create(ctx, "sql", cfg))
	assert.ErrorIs(t, r.Create(ctx, "sql", cfg), ErrExists)

	cfg.Data.Labels = []string{"Jan", "Feb"}
	require.NoError(t, r.Update(ctx, "sql", cfg))
	m, ok := r.Get("sql")
	require.True(t, ok)
	assert.Equal(t, 2, m.Revision)
	assert.Equal(t, []string{"Jan", "Feb"}, m.Config.Data.Labels)

	require.NoError(t, r.Destroy(ctx, "sql"))
	assert.ErrorIs(t, r.Destroy(ctx, "sql"), ErrNotFound)
	assert.ErrorIs(t, r.Update(ctx, "sql", cfg), ErrNotFound)
	assert.Empty(t, r.IDs())
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	require.NoError(t, Upsert(ctx, r, "b", CollectionRate(10)))
	require.NoError(t, Upsert(ctx, r, "b", CollectionRate(20)))
	require.NoError(t, Upsert(ctx, r, "a", CollectionRate(30)))
	m, _ := r.Get("b")
	assert.Equal(t, 2, m.Revision)
	assert.Equal(t, []string{"a", "b"}, r.IDs())
}
