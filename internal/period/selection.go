package period

import (
	"strings"
	"time"
)

// CustomOption is the picklist value that marks a hand-entered range.
const CustomOption = "Custom"

// Selection is a dashboard date filter: either a preset or a pair of custom
// dates. Entering a custom date takes the preset out of play until both
// custom dates are cleared again.
type Selection struct {
	Preset string `json:"date_filter"`
	Start  string `json:"start_date,omitempty"`
	End    string `json:"end_date,omitempty"`

	// Default is the preset restored once no custom date remains.
	Default string `json:"-"`
	// KeepCustomLabel leaves Preset as "Custom" while custom dates are in
	// use instead of blanking it.
	KeepCustomLabel bool `json:"-"`
}

// NewSelection starts at def.
func NewSelection(def string, keepCustomLabel bool) Selection {
	return Selection{Preset: def, Default: def, KeepCustomLabel: keepCustomLabel}
}

// SetPreset picks a preset and drops any custom dates. Choosing "Custom"
// keeps the dates that are already entered.
func (s *Selection) SetPreset(p string) {
	s.Preset = p
	if p != CustomOption {
		s.Start, s.End = "", ""
	}
}

// SetStart sets the custom start date ("" clears it).
func (s *Selection) SetStart(d string) { s.setCustom(&s.Start, d) }

// SetEnd sets the custom end date ("" clears it).
func (s *Selection) SetEnd(d string) { s.setCustom(&s.End, d) }

func (s *Selection) setCustom(field *string, d string) {
	*field = strings.TrimSpace(d)
	switch {
	case s.HasCustomRange():
		if s.KeepCustomLabel {
			s.Preset = CustomOption
		} else {
			s.Preset = ""
		}
	case s.Preset == "" || s.Preset == CustomOption:
		s.Preset = s.Default
	}
}

// Clear drops both custom dates and restores the default preset.
func (s *Selection) Clear() {
	s.Start, s.End = "", ""
	s.Preset = s.Default
}

// HasCustomRange reports whether either custom date is set.
func (s Selection) HasCustomRange() bool { return s.Start != "" || s.End != "" }

// HasBothCustomDates reports whether both custom dates are set.
func (s Selection) HasBothCustomDates() bool { return s.Start != "" && s.End != "" }

// IsValid reports whether the selection can be resolved: both custom dates
// when any is entered, otherwise a non-empty preset.
func (s Selection) IsValid() bool {
	if s.HasCustomRange() {
		return s.HasBothCustomDates()
	}
	return s.Preset != ""
}

// IsCustom reports whether the selection resolves through the custom dates.
func (s Selection) IsCustom() bool { return s.HasBothCustomDates() }

// Placeholder is the hint shown in the preset picker while custom dates
// are in use.
func (s Selection) Placeholder() string {
	if s.HasCustomRange() {
		return "Custom dates selected"
	}
	return ""
}

// Range resolves the selection in now's location. A half-entered custom
// range falls back to the preset, or the default when the preset is blank.
func (s Selection) Range(now time.Time) (Range, error) {
	if s.HasBothCustomDates() {
		return Custom(s.Start, s.End, now.Location())
	}
	p := s.Preset
	if p == "" || p == CustomOption {
		p = s.Default
	}
	return Resolve(p, now), nil
}

// ResolvedPreset is the preset the selection resolves through, or false for
// a custom range.
func (s Selection) ResolvedPreset() (Preset, bool) {
	if s.HasBothCustomDates() {
		return Today, false
	}
	p := s.Preset
	if p == "" || p == CustomOption {
		p = s.Default
	}
	return Parse(p), true
}
