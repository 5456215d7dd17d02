package rules

import "strings"

// Evaluation memoises rule results for one record snapshot. It must not be
// reused after the record changes.
type Evaluation struct {
	set    *Set
	rec    Lookup
	result map[string]bool
}

// Evaluate starts an evaluation of rec.
func (s *Set) Evaluate(rec Lookup) *Evaluation {
	return &Evaluation{set: s, rec: rec, result: make(map[string]bool)}
}

// Satisfied reports whether rule id holds for rec. Unknown rules never hold.
func (s *Set) Satisfied(rec Lookup, id string) bool {
	return s.Evaluate(rec).Satisfied(id)
}

// Visible reports whether field is presented for rec.
func (s *Set) Visible(rec Lookup, field string) bool {
	return s.Evaluate(rec).Visible(field)
}

// Satisfied reports whether rule id holds.
func (e *Evaluation) Satisfied(id string) bool {
	if v, ok := e.result[id]; ok {
		return v
	}
	r, ok := e.set.rules[id]
	if !ok {
		return false
	}
	// Acyclicity is checked at load, so recursion terminates.
	ok = true
	for _, req := range r.Requires {
		if !e.Satisfied(req) {
			ok = false
			break
		}
	}
	if ok {
		for _, c := range r.When {
			if !c.holds(e.rec) {
				ok = false
				break
			}
		}
	}
	e.result[id] = ok
	return ok
}

// Visible reports whether field is presented: its section gate (if any) holds
// and, when some rule reveals it, at least one such rule holds.
func (e *Evaluation) Visible(field string) bool {
	if g, ok := e.set.gates[field]; ok && !e.Satisfied(g) {
		return false
	}
	revealers := e.set.revealedBy[field]
	if len(revealers) == 0 {
		return true
	}
	for _, id := range revealers {
		if e.Satisfied(id) {
			return true
		}
	}
	return false
}

// SatisfiedRules lists every rule that holds, in ID order.
func (e *Evaluation) SatisfiedRules() []string {
	var out []string
	for _, id := range e.set.ids {
		if e.Satisfied(id) {
			out = append(out, id)
		}
	}
	return out
}

func (c Condition) holds(rec Lookup) bool {
	switch {
	case c.Eq != nil:
		return rec.Text(c.Field) == *c.Eq
	case c.In != nil:
		v := rec.Text(c.Field)
		for _, want := range c.In {
			if v == want {
				return true
			}
		}
		return false
	case c.Includes != nil:
		return includes(rec.List(c.Field), *c.Includes)
	case c.IncludesAny != nil:
		items := rec.List(c.Field)
		for _, want := range c.IncludesAny {
			if includes(items, want) {
				return true
			}
		}
		return false
	}
	return false
}

func includes(items []string, want string) bool {
	for _, it := range items {
		if strings.TrimSpace(it) == want {
			return true
		}
	}
	return false
}
