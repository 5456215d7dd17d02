// Package conflict runs conflict-of-interest checks: it scores known parties
// against a prospective client's name, email, phone and business name and
// keeps a per-lead history of the checks performed.
package conflict

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrCriteriaRequired = errors.New("conflict: enter a name, email, phone or business name")
	ErrLeadRequired     = errors.New("conflict: no lead selected")
)

// Toast titles and fallback message shown by the console.
const (
	ErrorTitle          = "Error Performing Conflict Check"
	UnknownErrorMessage = "An unknown error occurred."
	SearchErrorTitle    = "Error Searching Leads"
	SearchErrorMessage  = "Unable to search for leads. Please try again."
)

// Criteria are the search terms of one check.
type Criteria struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BusinessName string `json:"businessName"`
}

// Empty reports whether no term was entered.
func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Email) == "" &&
		strings.TrimSpace(c.Phone) == "" && strings.TrimSpace(c.BusinessName) == ""
}

// Summary joins the name, email and business name for modal titles. Phone
// is left out.
func (c Criteria) Summary() string {
	var parts []string
	for _, s := range []string{c.Name, c.Email, c.BusinessName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Party is someone the firm knows: a lead, client, contact or opposing party.
type Party struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

// Risk levels.
const (
	RiskCritical = "Critical"
	RiskHigh     = "High"
	RiskMedium   = "Medium"
	RiskLow      = "Low"
)

// Match is a party that matched at least one criterion.
type Match struct {
	RecordID       string `json:"recordId"`
	RecordURL      string `json:"nameUrl"`
	RecordName     string `json:"name"`
	RecordType     string `json:"recordType"`
	RiskLevel      string `json:"riskLevel"`
	RiskLevelClass string `json:"riskLevelClass"`
	RiskScore      int    `json:"riskScore"`
	MatchReason    string `json:"matchReason"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

// Per-criterion scores. Each further matching criterion adds bonusPerMatch.
const (
	scoreEmail      = 100
	scorePhone      = 90
	scoreExact      = 80
	scorePartial    = 50
	bonusPerMatch   = 5
	maxScore        = 100
	minPhoneDigits  = 7
	minPartialToken = 3
)

// Level buckets a score.
func Level(score int) string {
	switch {
	case score >= 90:
		return RiskCritical
	case score >= 70:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	}
	return RiskLow
}

// LevelClass is the CSS class for a risk level.
func LevelClass(level string) string {
	switch level {
	case RiskCritical:
		return "slds-text-color_error slds-text-title_bold"
	case RiskHigh:
		return "slds-text-color_warning slds-text-title_bold"
	case RiskMedium:
		return "slds-text-color_default"
	case RiskLow:
		return "slds-text-color_weak"
	}
	return ""
}

// RecordURL links to a party record.
func RecordURL(id string) string { return "/lightning/r/" + id + "/view" }

// Score rates p against c. ok is false when nothing matched.
func Score(c Criteria, p Party) (score int, reasons []string, ok bool) {
	var scores []int
	hit := func(s int, reason string) {
		scores = append(scores, s)
		reasons = append(reasons, reason)
	}

	if e := normalize(c.Email); e != "" && e == normalize(p.Email) {
		hit(scoreEmail, "Email match")
	}
	if ph := digits(c.Phone); len(ph) >= minPhoneDigits && ph == digits(p.Phone) {
		hit(scorePhone, "Phone match")
	}
	switch nameMatch(c.Name, p.Name) {
	case exact:
		hit(scoreExact, "Exact name match")
	case partial:
		hit(scorePartial, "Partial name match")
	}
	company := p.Company
	if company == "" && p.Type != "Lead" {
		company = p.Name
	}
	switch nameMatch(c.BusinessName, company) {
	case exact:
		hit(scoreExact, "Exact business name match")
	case partial:
		hit(scorePartial, "Partial business name match")
	}

	if len(scores) == 0 {
		return 0, nil, false
	}
	best := 0
	for _, s := range scores {
		best = max(best, s)
	}
	return min(maxScore, best+bonusPerMatch*(len(scores)-1)), reasons, true
}

// Find scores every party and returns the matches, highest risk first.
func Find(c Criteria, parties []Party) ([]Match, error) {
	if c.Empty() {
		return nil, ErrCriteriaRequired
	}
	matches := []Match{}
	for _, p := range parties {
		score, reasons, ok := Score(c, p)
		if !ok {
			continue
		}
		level := Level(score)
		matches = append(matches, Match{
			RecordID:       p.ID,
			RecordURL:      RecordURL(p.ID),
			RecordName:     p.Name,
			RecordType:     p.Type,
			RiskLevel:      level,
			RiskLevelClass: LevelClass(level),
			RiskScore:      score,
			MatchReason:    strings.Join(reasons, "; "),
			Email:          p.Email,
			Phone:          p.Phone,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].RiskScore > matches[j].RiskScore })
	return matches, nil
}

// CountText is the results header.
func CountText(n int) string {
	if n == 1 {
		return "1 Potential Conflict Found"
	}
	return fmt.Sprintf("%d Potential Conflicts Found", n)
}

// HighestRisk is the top score among matches, or 0.
func HighestRisk(matches []Match) int {
	best := 0
	for _, m := range matches {
		best = max(best, m.RiskScore)
	}
	return best
}

// CurrentTitle is the modal title for a check that was just run.
func CurrentTitle(c Criteria) string {
	return "Current Conflict Check Results - " + c.Summary()
}

type nameKind int

const (
	none nameKind = iota
	partial
	exact
)

func nameMatch(query, candidate string) nameKind {
	q, c := normalize(query), normalize(candidate)
	if q == "" || c == "" {
		return none
	}
	if q == c {
		return exact
	}
	if contains(c, q) || contains(q, c) {
		return partial
	}
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(c) {
		if len([]rune(t)) >= minPartialToken {
			tokens[t] = true
		}
	}
	for _, t := range strings.Fields(q) {
		if tokens[t] {
			return partial
		}
	}
	return none
}

// contains reports whether sub, at least minPartialToken runes long, is
// inside s.
func contains(s, sub string) bool {
	return len([]rune(sub)) >= minPartialToken && strings.Contains(s, sub)
}

// normalize composes, case-folds and collapses whitespace.
func normalize(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// digits keeps the national number: a leading US country code is dropped.
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	return d
}
