package conflict

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the American date-time format used in the history list.
const DateLayout = "01/02/2006 03:04 PM"

// SavedMatch is a match as kept in the history. Contact details are not
// stored.
type SavedMatch struct {
	RecordURL   string `json:"recordUrl"`
	RecordName  string `json:"recordName"`
	RecordType  string `json:"recordType"`
	RiskLevel   string `json:"riskLevel"`
	RiskScore   int    `json:"riskScore"`
	MatchReason string `json:"matchReason"`
}

// Log is one recorded check.
type Log struct {
	ID                 string       `json:"id"`
	PerformedDate      time.Time    `json:"performedDate"`
	PerformedBy        string       `json:"performedBy,omitempty"`
	SearchName         string       `json:"searchName,omitempty"`
	SearchEmail        string       `json:"searchEmail,omitempty"`
	SearchPhone        string       `json:"searchPhone,omitempty"`
	SearchBusinessName string       `json:"searchBusinessName,omitempty"`
	MatchCount         int          `json:"matchCount"`
	HighestRiskScore   int          `json:"highestRiskScore"`
	Matches            []SavedMatch `json:"matches"`

	// Note carries free-text history converted from older leads.
	Note string `json:"note,omitempty"`

	FormattedDate string `json:"formattedDate,omitempty"`
}

// Criteria returns the terms the check ran with.
func (l Log) Criteria() Criteria {
	return Criteria{Name: l.SearchName, Email: l.SearchEmail, Phone: l.SearchPhone, BusinessName: l.SearchBusinessName}
}

// Title is the modal title for a past check.
func (l Log) Title() string {
	return "Conflict Check Results - " + l.FormattedDate + " - " + l.Criteria().Summary()
}

// Rows reshapes the saved matches for the results table.
func (l Log) Rows() []Match {
	rows := make([]Match, 0, len(l.Matches))
	for _, m := range l.Matches {
		rows = append(rows, Match{
			RecordURL:      m.RecordURL,
			RecordName:     m.RecordName,
			RecordType:     m.RecordType,
			RiskLevel:      m.RiskLevel,
			RiskLevelClass: LevelClass(m.RiskLevel),
			RiskScore:      m.RiskScore,
			MatchReason:    m.MatchReason,
		})
	}
	return rows
}

// NewLog records a check run at t.
func NewLog(id string, t time.Time, by string, c Criteria, matches []Match) Log {
	l := Log{
		ID:                 id,
		PerformedDate:      t.UTC(),
		PerformedBy:        by,
		SearchName:         c.Name,
		SearchEmail:        c.Email,
		SearchPhone:        c.Phone,
		SearchBusinessName: c.BusinessName,
		MatchCount:         len(matches),
		HighestRiskScore:   HighestRisk(matches),
		Matches:            make([]SavedMatch, 0, len(matches)),
	}
	for _, m := range matches {
		l.Matches = append(l.Matches, SavedMatch{
			RecordURL:   m.RecordURL,
			RecordName:  m.RecordName,
			RecordType:  m.RecordType,
			RiskLevel:   m.RiskLevel,
			RiskScore:   m.RiskScore,
			MatchReason: m.MatchReason,
		})
	}
	return l
}

// History is a lead's stored checks. Older leads hold free text instead of
// structured logs; Text is set for those.
type History struct {
	Logs []Log  `json:"logs"`
	Text string `json:"text,omitempty"`
}

// Empty reports whether there is nothing to show.
func (h History) Empty() bool { return len(h.Logs) == 0 && strings.TrimSpace(h.Text) == "" }

// Find returns the log with id.
func (h History) Find(id string) (Log, bool) {
	for _, l := range h.Logs {
		if l.ID == id {
			return l, true
		}
	}
	return Log{}, false
}

// ParseHistory reads a stored history. Anything that is not a JSON array of
// logs is kept as legacy text. Dates are formatted in loc.
func ParseHistory(raw string, loc *time.Location) History {
	s := strings.TrimSpace(raw)
	if s == "" {
		return History{Logs: []Log{}}
	}
	var logs []Log
	if strings.HasPrefix(s, "[") && json.Unmarshal([]byte(s), &logs) == nil {
		for i := range logs {
			logs[i].FormattedDate = FormatDate(logs[i].PerformedDate, loc)
		}
		return History{Logs: logs}
	}
	return History{Logs: []Log{}, Text: raw}
}

// AppendHistory adds l at the head of the stored history and returns the new
// stored form. Legacy text survives as a note on the oldest entry.
func AppendHistory(raw string, l Log) (string, error) {
	h := ParseHistory(raw, time.UTC)
	logs := append([]Log{l}, h.Logs...)
	if h.Text != "" {
		logs = append(logs, Log{ID: "legacy", Note: strings.TrimSpace(h.Text), Matches: []SavedMatch{}})
	}
	for i := range logs {
		logs[i].FormattedDate = ""
	}
	b, err := json.Marshal(logs)
	if err != nil {
		return "", fmt.Errorf("encode conflict history: %w", err)
	}
	return string(b), nil
}

// FormatDate renders t as MM/DD/YYYY hh:mm AM/PM in loc, or "" for the zero
// time.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
