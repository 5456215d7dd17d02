package leads

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/matthewbaird/intake/internal/types"
)

// Matter statuses.
const (
	MatterOpen    = "Open"
	MatterPending = "Pending"
	MatterClosed  = "Closed"
)

// PipelineStage is one bar pair of the matter pipeline widget.
type PipelineStage struct {
	Stage           string `json:"stage"`
	OpenCount       int    `json:"openCount"`
	PendingCount    int    `json:"pendingCount"`
	TotalCount      int    `json:"totalCount"`
	OpenBarStyle    string `json:"openBarStyle"`
	PendingBarStyle string `json:"pendingBarStyle"`
	OpenTooltip     string `json:"openTooltip"`
	PendingTooltip  string `json:"pendingTooltip"`
}

func practiceMatch(want string, m types.Matter) bool { return matchValue(want, m.PracticeArea) }

// OpenMatters lists the open matters in a practice area, by name.
func OpenMatters(matters []types.Matter, practiceArea string) []types.Matter {
	var out []types.Matter
	for _, m := range matters {
		if m.Status == MatterOpen && practiceMatch(practiceArea, m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Pipeline counts open and pending matters per stage. Bar widths are scaled
// to the busiest stage.
func Pipeline(matters []types.Matter, practiceArea string) []PipelineStage {
	byStage := make(map[string]*PipelineStage)
	var order []string
	for _, m := range matters {
		if !practiceMatch(practiceArea, m) || (m.Status != MatterOpen && m.Status != MatterPending) {
			continue
		}
		stage := strings.TrimSpace(m.Stage)
		if stage == "" {
			stage = Unknown
		}
		ps, ok := byStage[stage]
		if !ok {
			ps = &PipelineStage{Stage: stage}
			byStage[stage] = ps
			order = append(order, stage)
		}
		if m.Status == MatterOpen {
			ps.OpenCount++
		} else {
			ps.PendingCount++
		}
		ps.TotalCount++
	}
	sort.Strings(order)

	maxTotal := 1
	for _, ps := range byStage {
		maxTotal = max(maxTotal, ps.TotalCount)
	}
	out := make([]PipelineStage, 0, len(order))
	for _, s := range order {
		ps := byStage[s]
		ps.OpenBarStyle = barStyle(ps.OpenCount, maxTotal)
		ps.PendingBarStyle = barStyle(ps.PendingCount, maxTotal)
		ps.OpenTooltip = fmt.Sprintf("Open: %d", ps.OpenCount)
		ps.PendingTooltip = fmt.Sprintf("Pending: %d", ps.PendingCount)
		out = append(out, *ps)
	}
	return out
}

func barStyle(n, maxTotal int) string {
	return "width: " + strconv.FormatFloat(float64(n)/float64(maxTotal)*100, 'f', -1, 64) + "%"
}

// TreeColumns are the matter tree grid columns.
var TreeColumns = []Column{
	{Label: "Name", FieldName: "label", Type: "text"},
	{Label: "Status", FieldName: "status", Type: "text"},
	{Label: "Responsible Attorney", FieldName: "responsibleAttorney", Type: "text"},
}

// TreeNode is a row of the matter tree grid.
type TreeNode struct {
	Name                string     `json:"name"`
	Label               string     `json:"label"`
	Status              string     `json:"status,omitempty"`
	ResponsibleAttorney string     `json:"responsibleAttorney,omitempty"`
	Children            []TreeNode `json:"_children,omitempty"`
}

// Tree groups the matters that are not closed under their practice area.
func Tree(matters []types.Matter, practiceArea string) []TreeNode {
	byArea := make(map[string][]TreeNode)
	for _, m := range matters {
		if m.Status == MatterClosed || !practiceMatch(practiceArea, m) {
			continue
		}
		area := strings.TrimSpace(m.PracticeArea)
		if area == "" {
			area = Unknown
		}
		byArea[area] = append(byArea[area], TreeNode{
			Name:                m.ID,
			Label:               m.Name,
			Status:              m.Status,
			ResponsibleAttorney: m.ResponsibleAttorney,
		})
	}
	areas := make([]string, 0, len(byArea))
	for a := range byArea {
		areas = append(areas, a)
	}
	sort.Strings(areas)

	out := make([]TreeNode, 0, len(areas))
	for _, a := range areas {
		children := byArea[a]
		sort.SliceStable(children, func(i, j int) bool { return children[i].Label < children[j].Label })
		out = append(out, TreeNode{
			Name:     a,
			Label:    fmt.Sprintf("%s (%d)", a, len(children)),
			Children: children,
		})
	}
	return out
}
