package conflict

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/intake/internal/types"
)

// MinSearchLength is the shortest lead search term that runs a query.
const MinSearchLength = 2

// Directory lists the parties a check runs against.
type Directory interface {
	Parties(ctx context.Context) ([]Party, error)
}

// Leads is the lead storage a check reads and writes history on.
type Leads interface {
	GetLead(ctx context.Context, id string) (types.Lead, error)
	SaveConflictHistory(ctx context.Context, leadID, history string) error
	SearchLeads(ctx context.Context, term string, limit int) ([]types.Lead, error)
}

// Service runs checks for a selected lead.
type Service struct {
	Directory Directory
	Leads     Leads
	// Location formats history dates. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

// Result is the outcome of one check.
type Result struct {
	LeadID      string  `json:"leadId"`
	Matches     []Match `json:"results"`
	CountText   string  `json:"conflictCountText"`
	HighestRisk int     `json:"currentResultsHighestRisk"`
	Title       string  `json:"modalTitle"`
	History     History `json:"history"`
	// Saved is false when the history could not be written back.
	Saved bool `json:"saved"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Check runs c for leadID and saves it to the lead's history. A failure to
// save is logged and does not fail the check.
func (s *Service) Check(ctx context.Context, leadID, actor string, c Criteria) (Result, error) {
	if strings.TrimSpace(leadID) == "" {
		return Result{}, ErrLeadRequired
	}
	if c.Empty() {
		return Result{}, ErrCriteriaRequired
	}
	parties, err := s.Directory.Parties(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list parties: %w", err)
	}
	others := parties[:0:0]
	for _, p := range parties {
		if p.ID != leadID {
			others = append(others, p)
		}
	}
	matches, err := Find(c, others)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		LeadID:      leadID,
		Matches:     matches,
		CountText:   CountText(len(matches)),
		HighestRisk: HighestRisk(matches),
		Title:       CurrentTitle(c),
	}
	entry := NewLog(uuid.NewString(), s.now(), actor, c, matches)
	if err := s.save(ctx, leadID, entry); err != nil {
		log.Printf("conflict: save history for lead %s: %v", leadID, err)
	} else {
		res.Saved = true
	}
	if h, err := s.History(ctx, leadID); err == nil {
		res.History = h
	} else {
		log.Printf("conflict: reload history for lead %s: %v", leadID, err)
		res.History = History{Logs: []Log{}}
	}
	return res, nil
}

func (s *Service) save(ctx context.Context, leadID string, entry Log) error {
	lead, err := s.Leads.GetLead(ctx, leadID)
	if err != nil {
		return fmt.Errorf("get lead: %w", err)
	}
	raw, err := AppendHistory(lead.ConflictHistory, entry)
	if err != nil {
		return err
	}
	return s.Leads.SaveConflictHistory(ctx, leadID, raw)
}

// History loads and parses a lead's stored checks.
func (s *Service) History(ctx context.Context, leadID string) (History, error) {
	lead, err := s.Leads.GetLead(ctx, leadID)
	if err != nil {
		return History{}, fmt.Errorf("get lead: %w", err)
	}
	return ParseHistory(lead.ConflictHistory, s.Location), nil
}

// LeadResult is one hit of the lead picker.
type LeadResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// SearchLeads looks up leads for the picker. Terms shorter than two
// characters return nothing without querying.
func (s *Service) SearchLeads(ctx context.Context, term string, limit int) ([]LeadResult, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSearchLength {
		return []LeadResult{}, nil
	}
	leads, err := s.Leads.SearchLeads(ctx, term, limit)
	if err != nil {
		return nil, fmt.Errorf("search leads: %w", err)
	}
	out := make([]LeadResult, 0, len(leads))
	for _, l := range leads {
		out = append(out, LeadResult{ID: l.ID, Name: l.Name(), Email: l.Email, Phone: l.Phone})
	}
	return out, nil
}
