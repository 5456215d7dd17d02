package rules

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError reports a dependency cycle among rules or fields.
type CycleError struct {
	Kind string   // "rule" or "field"
	Path []string // members of the strongly connected component, sorted
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("rules: %s dependency cycle: %s", e.Kind, strings.Join(e.Path, " -> "))
}

type graph map[string][]string

// checkAcyclic rejects a rule that transitively requires itself, and a field
// whose visibility transitively depends on its own value.
func (s *Set) checkAcyclic() error {
	requires := make(graph)
	for _, id := range s.ids {
		requires[id] = append([]string(nil), s.rules[id].Requires...)
	}
	if cyc := firstCycle(requires); cyc != nil {
		return &CycleError{Kind: "rule", Path: cyc}
	}

	fields := make(graph)
	addEdges := func(ruleID string, targets []string) {
		for _, ctl := range s.ControllingFields(ruleID) {
			fields[ctl] = append(fields[ctl], targets...)
		}
	}
	for _, id := range s.ids {
		addEdges(id, s.rules[id].Reveals)
	}
	byGate := make(map[string][]string)
	for f, g := range s.gates {
		byGate[g] = append(byGate[g], f)
	}
	for g, fs := range byGate {
		sort.Strings(fs)
		addEdges(g, fs)
	}
	if cyc := firstCycle(fields); cyc != nil {
		return &CycleError{Kind: "field", Path: cyc}
	}
	return nil
}

// firstCycle returns the members of the first strongly connected component
// that forms a cycle, visiting nodes in sorted order, or nil for a DAG.
func firstCycle(g graph) []string {
	nodes := make([]string, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	var (
		index   int
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		found   []string
	)

	var strongConnect func(v string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, seen := indices[w]; !seen {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] != indices[v] {
			return
		}
		var scc []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		if found == nil && (len(scc) > 1 || selfLoop(g, v)) {
			sort.Strings(scc)
			found = scc
		}
	}

	for _, n := range nodes {
		if _, seen := indices[n]; !seen {
			strongConnect(n)
		}
		if found != nil {
			return found
		}
	}
	return nil
}

func selfLoop(g graph, v string) bool {
	for _, w := range g[v] {
		if w == v {
			return true
		}
	}
	return false
}
