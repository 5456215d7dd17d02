package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matthewbaird/intake/internal/activity"
	"github.com/matthewbaird/intake/internal/event"
	"github.com/matthewbaird/intake/internal/invoicing"
	"github.com/matthewbaird/intake/internal/leads"
	"github.com/matthewbaird/intake/internal/live"
	"github.com/matthewbaird/intake/internal/timekeeping"
)

// Live query names.
const (
	QueryLeadsDashboard       = "leads.dashboard"
	QueryReceivablesDashboard = "receivables.dashboard"
	QueryInvoicesDashboard    = "invoices.dashboard"
	QueryAvailabilityBoard    = "availability.board"
	QueryTeamTime             = "time.team"
	QueryUserTime             = "time.user"
	QueryEntityActivity       = "activity.entity"
)

type agingParams struct {
	AsOf string `json:"as_of"` // YYYY-MM-DD
	Team string `json:"team"`
}

type activityParams struct {
	EntityType string   `json:"entity_type"`
	EntityID   string   `json:"entity_id"`
	EventTypes []string `json:"event_types"`
	Limit      int      `json:"limit"`
}

// RegisterQueries registers every dashboard read the live socket offers.
// Params decode over each dashboard's opening filter.
func RegisterQueries(reg *live.Registry, svc *Services, acts activity.Store) {
	reg.Register(live.Query{
		Name:    QueryLeadsDashboard,
		Watches: []string{event.EntityLead, event.EntityIntake, event.EntityMatter},
		Fetch: func(ctx context.Context, params json.RawMessage) (any, error) {
			f := leads.NewFilter()
			if err := live.DecodeOnto(params, &f); err != nil {
				return nil, err
			}
			return svc.Leads.Dashboard(ctx, f)
		},
	})

	reg.Register(live.Query{
		Name:    QueryReceivablesDashboard,
		Watches: []string{event.EntityInvoice, event.EntityPayment},
		Fetch: func(ctx context.Context, params json.RawMessage) (any, error) {
			p, err := live.Decode[agingParams](params)
			if err != nil {
				return nil, err
			}
			f := svc.Receivables.DefaultFilter()
			if p.AsOf != "" {
				at, err := time.ParseInLocation(time.DateOnly, p.AsOf, time.Local)
				if err != nil {
					return nil, fmt.Errorf("parsing as_of: %w", err)
				}
				f.AsOf = at
			}
			if p.Team != "" {
				f.Team = p.Team
			}
			return svc.Receivables.Dashboard(ctx, f)
		},
	})

	reg.Register(live.Query{
		Name:    QueryInvoicesDashboard,
		Watches: []string{event.EntityInvoice, event.EntityPayment},
		Fetch: func(ctx context.Context, params json.RawMessage) (any, error) {
			f := invoicing.NewFilter()
			if err := live.DecodeOnto(params, &f); err != nil {
				return nil, err
			}
			return svc.Invoices.Dashboard(ctx, f)
		},
	})

	reg.Register(live.Query{
		Name:    QueryAvailabilityBoard,
		Watches: []string{event.TypeAvailabilityChanged, event.EntityUser},
		Fetch: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return svc.Availability.Board(ctx)
		},
	})

	timeQuery := func(name string, scope timekeeping.Scope) live.Query {
		return live.Query{
			Name:    name,
			Watches: []string{event.EntityTime, event.EntityUser, event.EntityInvoice, event.EntityPayment},
			Fetch: func(ctx context.Context, params json.RawMessage) (any, error) {
				f := timekeeping.NewFilter()
				if err := live.DecodeOnto(params, &f); err != nil {
					return nil, err
				}
				return svc.Time.Dashboard(ctx, f, scope)
			},
		}
	}
	reg.Register(timeQuery(QueryTeamTime, timekeeping.ScopeTeam))
	reg.Register(timeQuery(QueryUserTime, timekeeping.ScopeUser))

	reg.Register(live.Query{
		Name: QueryEntityActivity,
		Watches: []string{
			event.TypeIntakeCreated, event.TypeIntakeUpdated, event.TypeConflictCheckPerformed,
			event.TypeAvailabilityChanged, event.TypeExportGenerated, event.TypeRecordsChanged,
		},
		Fetch: func(ctx context.Context, params json.RawMessage) (any, error) {
			p, err := live.Decode[activityParams](params)
			if err != nil {
				return nil, err
			}
			if p.EntityType == "" || p.EntityID == "" {
				return nil, fmt.Errorf("entity_type and entity_id are required")
			}
			opts := activity.QueryOptions{EventTypes: p.EventTypes, Limit: p.Limit}
			entries, next, total, err := acts.QueryByEntity(ctx, p.EntityType, p.EntityID, opts)
			if err != nil {
				return nil, err
			}
			return map[string]any{"entries": entries, "next_cursor": next, "total_count": total}, nil
		},
	})
}
