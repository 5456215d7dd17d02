// Package rules evaluates the declarative visibility table for the intake
// questionnaire. Each rule is a conjunction of field conditions plus other
// rules it requires; fields a rule reveals are shown only while it holds.
package rules

import (
	_ "embed"
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed rules.cue
var source []byte

// Condition tests one field. Exactly one operator is set.
type Condition struct {
	Field       string   `json:"field"`
	Eq          *string  `json:"eq,omitempty"`
	In          []string `json:"in,omitempty"`
	Includes    *string  `json:"includes,omitempty"`
	IncludesAny []string `json:"includes_any,omitempty"`
}

// Rule is one visibility predicate.
type Rule struct {
	ID       string      `json:"id"`
	Section  int         `json:"section"`
	When     []Condition `json:"when"`
	Requires []string    `json:"requires"`
	Reveals  []string    `json:"reveals"`
}

// Lookup is the read side of an intake record.
type Lookup interface {
	Text(field string) string
	List(field string) []string
}

// Set is a validated, acyclic rule table.
type Set struct {
	rules      map[string]*Rule
	ids        []string
	revealedBy map[string][]string // field → rules revealing it
	gates      map[string]string   // field → section gate rule
}

// Load compiles the embedded rule table.
func Load() (*Set, error) {
	return Parse(source)
}

// MustLoad panics if the embedded rule table is broken.
func MustLoad() *Set {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// Parse compiles CUE rule source and checks it for unknown references and
// cycles.
func Parse(src []byte) (*Set, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename("rules.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile rules: %s", cueerrors.Details(err, nil))
	}
	var doc struct {
		Rules map[string]*Rule `json:"rules"`
	}
	if err := v.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return New(doc.Rules)
}

// New builds a Set from rules keyed by ID.
func New(rules map[string]*Rule) (*Set, error) {
	s := &Set{
		rules:      make(map[string]*Rule, len(rules)),
		revealedBy: make(map[string][]string),
		gates:      make(map[string]string),
	}
	for id, r := range rules {
		if r.ID == "" {
			r.ID = id
		}
		if r.ID != id {
			return nil, fmt.Errorf("rules: rule keyed %q has id %q", id, r.ID)
		}
		if len(r.When) == 0 {
			return nil, fmt.Errorf("rules: %s has no conditions", id)
		}
		for i, c := range r.When {
			if n := c.operators(); n != 1 {
				return nil, fmt.Errorf("rules: %s condition %d on %s has %d operators, want 1", id, i, c.Field, n)
			}
		}
		s.rules[id] = r
		s.ids = append(s.ids, id)
	}
	sort.Strings(s.ids)
	for _, id := range s.ids {
		r := s.rules[id]
		for _, req := range r.Requires {
			if _, ok := s.rules[req]; !ok {
				return nil, fmt.Errorf("rules: %s requires unknown rule %s", id, req)
			}
		}
		for _, f := range r.Reveals {
			s.revealedBy[f] = append(s.revealedBy[f], id)
		}
	}
	if err := s.checkAcyclic(); err != nil {
		return nil, err
	}
	return s, nil
}

// WithGates returns a copy of s in which every field listed in gates is also
// hidden while its section gate rule fails.
func (s *Set) WithGates(gates map[string]string) (*Set, error) {
	c := &Set{
		rules:      s.rules,
		ids:        s.ids,
		revealedBy: s.revealedBy,
		gates:      make(map[string]string, len(gates)),
	}
	for f, g := range gates {
		if _, ok := s.rules[g]; !ok {
			return nil, fmt.Errorf("rules: field %s gated by unknown rule %s", f, g)
		}
		c.gates[f] = g
	}
	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}
	return c, nil
}

// Rule returns the rule with the given ID.
func (s *Set) Rule(id string) (*Rule, bool) {
	r, ok := s.rules[id]
	return r, ok
}

// IDs lists every rule ID in sorted order.
func (s *Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len reports the number of rules.
func (s *Set) Len() int { return len(s.ids) }

// ControllingFields lists the fields a rule reads, including those read by
// the rules it requires, in sorted order.
func (s *Set) ControllingFields(id string) []string {
	seen := make(map[string]bool)
	s.collectFields(id, seen, make(map[string]bool))
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (s *Set) collectFields(id string, fields, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	r := s.rules[id]
	if r == nil {
		return
	}
	for _, c := range r.When {
		fields[c.Field] = true
	}
	for _, req := range r.Requires {
		s.collectFields(req, fields, visited)
	}
}

func (c Condition) operators() int {
	n := 0
	if c.Eq != nil {
		n++
	}
	if c.In != nil {
		n++
	}
	if c.Includes != nil {
		n++
	}
	if c.IncludesAny != nil {
		n++
	}
	return n
}
