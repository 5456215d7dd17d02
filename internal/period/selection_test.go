package period

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionBlanksPresetForCustomDates(t *testing.T) {
	s := NewSelection("Last Month", false)
	assert.True(t, s.IsValid())

	s.SetStart("2024-01-01")
	assert.Equal(t, "", s.Preset)
	assert.True(t, s.HasCustomRange())
	assert.False(t, s.IsValid())
	assert.Equal(t, "Custom dates selected", s.Placeholder())

	s.SetEnd("2024-01-31")
	assert.True(t, s.IsValid())
	r, err := s.Range(now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01..2024-01-31", r.String())
	_, ok := s.ResolvedPreset()
	assert.False(t, ok)

	s.SetStart("")
	assert.Equal(t, "", s.Preset, "end date still set")
	s.SetEnd("")
	assert.Equal(t, "Last Month", s.Preset)
	assert.Equal(t, "", s.Placeholder())
}

func TestSelectionKeepsCustomLabel(t *testing.T) {
	s := NewSelection("This Week", true)
	s.SetPreset(CustomOption)
	s.SetEnd("2024-05-10")
	assert.Equal(t, CustomOption, s.Preset)

	// Half-entered custom ranges resolve through the default.
	r, err := s.Range(now)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-12..2024-05-18", r.String())

	s.Clear()
	assert.Equal(t, "This Week", s.Preset)
	assert.False(t, s.HasCustomRange())
}

func TestSelectionPresetDropsCustomDates(t *testing.T) {
	s := NewSelection("Last Month", false)
	s.SetStart("2024-01-01")
	s.SetEnd("2024-01-31")
	s.SetPreset("This Year")
	assert.False(t, s.HasCustomRange())
	p, ok := s.ResolvedPreset()
	assert.True(t, ok)
	assert.Equal(t, ThisYear, p)
}

func TestSelectionInvertedRange(t *testing.T) {
	s := NewSelection("Last Month", false)
	s.SetStart("2024-02-01")
	s.SetEnd("2024-01-01")
	_, err := s.Range(now)
	assert.ErrorIs(t, err, ErrInvertedRange)
}
