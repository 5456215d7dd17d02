// Package progress estimates how much of an intake section has been filled,
// counting only the fields currently presented.
package progress

import (
	"fmt"
	"math"

	"github.com/matthewbaird/intake/internal/intake"
	"github.com/matthewbaird/intake/internal/rules"
)

// Section summarises one questionnaire section for a record.
type Section struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Shown   bool   `json:"shown"`
	Visible int    `json:"visible"`
	Filled  int    `json:"filled"`
	Percent int    `json:"percent"`
}

// Estimator combines the field catalog with the visibility rules.
type Estimator struct {
	catalog *intake.Catalog
	rules   *rules.Set
}

// New binds the catalog's section gates into the rule set.
func New(c *intake.Catalog, set *rules.Set) (*Estimator, error) {
	gated, err := set.WithGates(c.Gates())
	if err != nil {
		return nil, fmt.Errorf("bind section gates: %w", err)
	}
	return &Estimator{catalog: c, rules: gated}, nil
}

// Rules returns the gate-aware rule set.
func (e *Estimator) Rules() *rules.Set { return e.rules }

// VisibleFields lists the fields of section n presented for rec, in
// catalog order.
func (e *Estimator) VisibleFields(rec *intake.Record, n int) []string {
	sec, ok := e.catalog.Section(n)
	if !ok {
		return nil
	}
	ev := e.rules.Evaluate(rec)
	return visible(ev, sec)
}

// Percent returns the 0–100 completion of section n, or 0 when nothing in
// the section is presented.
func (e *Estimator) Percent(rec *intake.Record, n int) int {
	return e.Section(rec, n).Percent
}

// Section computes the progress summary of section n.
func (e *Estimator) Section(rec *intake.Record, n int) Section {
	sec, ok := e.catalog.Section(n)
	if !ok {
		return Section{Number: n}
	}
	return summarise(e.rules.Evaluate(rec), sec, rec)
}

// All summarises every section.
func (e *Estimator) All(rec *intake.Record) []Section {
	ev := e.rules.Evaluate(rec)
	out := make([]Section, 0, len(e.catalog.Sections))
	for _, sec := range e.catalog.Sections {
		out = append(out, summarise(ev, sec, rec))
	}
	return out
}

// ShownSections lists the numbers of sections whose gate holds.
func (e *Estimator) ShownSections(rec *intake.Record) []int {
	ev := e.rules.Evaluate(rec)
	var out []int
	for _, sec := range e.catalog.Sections {
		if sec.Gate == "" || ev.Satisfied(sec.Gate) {
			out = append(out, sec.Number)
		}
	}
	return out
}

func summarise(ev *rules.Evaluation, sec intake.Section, rec *intake.Record) Section {
	s := Section{
		Number: sec.Number,
		Name:   sec.Name,
		Shown:  sec.Gate == "" || ev.Satisfied(sec.Gate),
	}
	fields := visible(ev, sec)
	s.Visible = len(fields)
	for _, f := range fields {
		if rec.Filled(f) {
			s.Filled++
		}
	}
	if s.Visible > 0 {
		s.Percent = int(math.Round(float64(s.Filled) / float64(s.Visible) * 100))
	}
	return s
}

func visible(ev *rules.Evaluation, sec intake.Section) []string {
	var out []string
	for _, f := range sec.Fields {
		if ev.Visible(f) {
			out = append(out, f)
		}
	}
	return out
}
