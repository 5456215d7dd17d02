package leads

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matthewbaird/intake/internal/chart"
	"github.com/matthewbaird/intake/internal/csvexport"
	"github.com/matthewbaird/intake/internal/types"
)

// LeadStore lists leads.
type LeadStore interface {
	ListLeads(ctx context.Context) ([]types.Lead, error)
}

// MatterStore lists matters.
type MatterStore interface {
	ListMatters(ctx context.Context) ([]types.Matter, error)
}

// Dashboard is every homepage widget for one filter.
type Dashboard struct {
	Filter            Filter             `json:"filter"`
	FilterLabel       string             `json:"filterLabel"`
	LeadCount         int                `json:"leadCount"`
	Metrics           Metrics            `json:"leadMetrics"`
	SourceConversion  []SourceConversion `json:"leadConversionBySource"`
	TotalBySource     []Count            `json:"totalLeadsBySource"`
	ByLandingPage     []Count            `json:"leadsByLandingPage"`
	ByPracticeArea    []Count            `json:"leadsByPracticeArea"`
	IntakeCompletions []IntakeCompletion `json:"intakeCompletions"`
	AttorneyRates     []CloseRate        `json:"closeRateByAttorney"`
	SpecialistRates   []CloseRate        `json:"intakeSpecialistCloseRate"`
	SQLTrend          []TrendPoint       `json:"sqlTrend"`
	TotalSQLs         int                `json:"totalSQLs"`
	Pipeline          []PipelineStage    `json:"matterPipeline"`
	Tree              []TreeNode         `json:"matterTree"`

	Charts    map[string]chart.Config `json:"charts"`
	HelpTexts map[string]string       `json:"helpTexts"`
}

// Chart IDs.
const (
	ChartSQLTrend          = "sqlTrendChart"
	ChartIntakeCompletions = "intakeChart"
)

// Build computes the dashboard from fetched records.
func Build(leads []types.Lead, matters []types.Matter, f Filter, now time.Time) Dashboard {
	d := Dashboard{
		Filter:            f,
		FilterLabel:       f.Label(),
		LeadCount:         LeadCount(leads, f, now),
		Metrics:           ComputeMetrics(leads, f, now),
		SourceConversion:  ConversionBySource(leads, f, now),
		TotalBySource:     TotalBySource(leads, f, now),
		ByLandingPage:     ByLandingPage(leads, f, now),
		ByPracticeArea:    ByPracticeArea(leads, f, now),
		IntakeCompletions: IntakeCompletions(leads, f, now),
		AttorneyRates:     CloseRateByAttorney(leads, f, now),
		SpecialistRates:   CloseRateByIntakeSpecialist(leads, f, now),
		SQLTrend:          SQLTrend(leads, f, now),
		Pipeline:          Pipeline(matters, f.PracticeArea),
		Tree:              Tree(matters, f.PracticeArea),
		HelpTexts:         HelpTexts(),
	}
	d.TotalSQLs = TotalSQLs(d.SQLTrend)
	d.Charts = map[string]chart.Config{
		ChartSQLTrend:          SQLTrendChart(d.SQLTrend),
		ChartIntakeCompletions: IntakeCompletionsChart(d.IntakeCompletions),
	}
	return d
}

// Service serves the homepage from the lead and matter stores.
type Service struct {
	Leads   LeadStore
	Matters MatterStore
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// fetch loads leads and matters concurrently.
func (s *Service) fetch(ctx context.Context) ([]types.Lead, []types.Matter, error) {
	var (
		leads   []types.Lead
		matters []types.Matter
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if leads, err = s.Leads.ListLeads(gctx); err != nil {
			return fmt.Errorf("list leads: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if matters, err = s.Matters.ListMatters(gctx); err != nil {
			return fmt.Errorf("list matters: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return leads, matters, nil
}

// Dashboard computes every widget for f.
func (s *Service) Dashboard(ctx context.Context, f Filter) (Dashboard, error) {
	leads, matters, err := s.fetch(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Build(leads, matters, f, s.now()), nil
}

// Modal opens a drill-down.
func (s *Service) Modal(ctx context.Context, q Query) (*Modal, error) {
	if _, err := ParseKind(string(q.Kind)); err != nil {
		return nil, err
	}
	leads, matters, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Open(q, leads, matters, s.now())
}

// Export renders report r for f and names its file.
func (s *Service) Export(ctx context.Context, r Report, f Filter) (string, csvexport.Table, error) {
	leads, _, err := s.fetch(ctx)
	if err != nil {
		return "", csvexport.Table{}, err
	}
	now := s.now()
	var t csvexport.Table
	switch r {
	case ReportNewLeads, ReportSalesMarketing:
		var rows []Row
		for _, l := range selectLeads(leads, f, now, KindLeads, "") {
			rows = append(rows, LeadRow(l))
		}
		t = LeadTable(rows)
	case ReportLeadMetrics:
		t = MetricsTable(ComputeMetrics(leads, f, now))
	case ReportIntakeCompletions:
		t = IntakeCompletionsTable(IntakeCompletions(leads, f, now))
	case ReportIntakeSpecialistCloseRate:
		t = CloseRateTable("Intake Specialist", CloseRateByIntakeSpecialist(leads, f, now))
	case ReportCloseRateByAttorney:
		t = CloseRateTable("Intake Attorney", CloseRateByAttorney(leads, f, now))
	case ReportLeadConversionBySource:
		t = ConversionTable(ConversionBySource(leads, f, now))
	case ReportTotalLeadsBySource:
		t = CountTable("Lead Source", TotalBySource(leads, f, now))
	case ReportLeadsByLandingPage:
		t = CountTable("Landing Page", ByLandingPage(leads, f, now))
	case ReportLeadsByPracticeArea:
		t = CountTable("Practice Area", ByPracticeArea(leads, f, now))
	case ReportSQLLeadsTrend:
		t = TrendTable(SQLTrend(leads, f, now))
	default:
		return "", csvexport.Table{}, fmt.Errorf("leads: unknown report %q", r)
	}
	return Filename(r, f), t, nil
}
