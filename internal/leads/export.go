package leads

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matthewbaird/intake/internal/chart"
	"github.com/matthewbaird/intake/internal/csvexport"
)

// Chart colours.
const (
	ColorSQLTrend          = "#0070d2"
	ColorIntakeCompletions = "#00d924"
)

// SQLTrendChart plots the trend as a line.
func SQLTrendChart(points []TrendPoint) chart.Config {
	labels := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.PeriodLabel)
		values = append(values, float64(p.SQLCount))
	}
	return chart.Line("Sales Qualified Leads", labels, values, ColorSQLTrend)
}

// IntakeCompletionsChart ranks the intake specialists.
func IntakeCompletionsChart(rows []IntakeCompletion) chart.Config {
	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.OwnerName)
		values = append(values, float64(r.IntakeCount))
	}
	return chart.RankedBar("Intake Specialist Completions", labels, values, ColorIntakeCompletions)
}

// Report names an exportable widget.
type Report string

const (
	ReportNewLeads                  Report = "new-leads"
	ReportLeadMetrics               Report = "lead-metrics"
	ReportIntakeCompletions         Report = "intake-completions"
	ReportIntakeSpecialistCloseRate Report = "intake-specialist-close-rate"
	ReportCloseRateByAttorney       Report = "close-rate-by-attorney"
	ReportLeadConversionBySource    Report = "lead-conversion-by-source"
	ReportTotalLeadsBySource        Report = "total-leads-by-source"
	ReportLeadsByLandingPage        Report = "leads-by-landing-page"
	ReportLeadsByPracticeArea       Report = "leads-by-practice-area"
	ReportSQLLeadsTrend             Report = "sql-leads-trend"
	ReportSalesMarketing            Report = "sales-marketing-export"
)

// Reports lists the exportable widgets.
func Reports() []Report {
	return []Report{
		ReportNewLeads, ReportLeadMetrics, ReportIntakeCompletions, ReportIntakeSpecialistCloseRate,
		ReportCloseRateByAttorney, ReportLeadConversionBySource, ReportTotalLeadsBySource,
		ReportLeadsByLandingPage, ReportLeadsByPracticeArea, ReportSQLLeadsTrend, ReportSalesMarketing,
	}
}

// ParseReport validates a report name.
func ParseReport(s string) (Report, error) {
	for _, r := range Reports() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("leads: unknown report %q", s)
}

// Filename is the download name: "new-leads-this_month.csv". The sales and
// marketing export is not tied to a date filter.
func Filename(r Report, f Filter) string {
	if r == ReportSalesMarketing {
		return string(r) + ".csv"
	}
	return string(r) + "-" + strings.ToLower(f.dateFilter()) + ".csv"
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

// CountTable renders a tally under the given label header.
func CountTable(label string, counts []Count) csvexport.Table {
	t := csvexport.Table{Headers: []string{label, "Lead Count"}}
	for _, c := range counts {
		t.AddRow(c.Label, itoa(c.Count))
	}
	return t
}

// MetricsTable renders the metric tiles as name/value pairs.
func MetricsTable(m Metrics) csvexport.Table {
	t := csvexport.Table{Headers: []string{"Metric", "Value"}}
	t.AddRow("New Leads", itoa(m.NewLeads))
	t.AddRow("First Call Leads", itoa(m.FirstCallLeads))
	t.AddRow("Intake Spec. Post-Consults", itoa(m.IntakeSpecialistCalls))
	t.AddRow("Intake Atty. Post-Consults", itoa(m.IntakeAttorneyCalls))
	t.AddRow("Intake Attorney No Shows", itoa(m.IntakeAttorneyNoShows))
	t.AddRow("Closed by Intake Spec.", itoa(m.TotalClosedByIS))
	t.AddRow("Closed by Intake Atty.", itoa(m.TotalClosedByIA))
	return t
}

// CloseRateTable renders close rates under the given person header.
func CloseRateTable(person string, rates []CloseRate) csvexport.Table {
	t := csvexport.Table{Headers: []string{person, "At Bat Leads", "Closed Leads", "Close Rate (%)"}}
	for _, r := range rates {
		t.AddRow(r.Name, itoa(r.AtBatLeads), itoa(r.ClosedLeads), ftoa(r.CloseRate))
	}
	return t
}

// ConversionTable renders the conversion by source.
func ConversionTable(rows []SourceConversion) csvexport.Table {
	t := csvexport.Table{Headers: []string{"Lead Source", "Total Leads", "Converted Leads", "Conversion Rate (%)"}}
	for _, r := range rows {
		t.AddRow(r.Source, itoa(r.TotalLeads), itoa(r.ConvertedLeads), ftoa(r.ConversionRate))
	}
	return t
}

// IntakeCompletionsTable renders the top intake specialists.
func IntakeCompletionsTable(rows []IntakeCompletion) csvexport.Table {
	t := csvexport.Table{Headers: []string{"Intake Specialist", "Intakes Completed"}}
	for _, r := range rows {
		t.AddRow(r.OwnerName, itoa(r.IntakeCount))
	}
	return t
}

// TrendTable renders the SQL trend.
func TrendTable(points []TrendPoint) csvexport.Table {
	t := csvexport.Table{Headers: []string{"Period", "SQL Count"}}
	for _, p := range points {
		t.AddRow(p.PeriodLabel, itoa(p.SQLCount))
	}
	return t
}

// LeadTable renders lead rows with every column the modals show.
func LeadTable(rows []Row) csvexport.Table {
	t := csvexport.Table{Headers: []string{
		"Lead Name", "Created Date", "Status", "Owner", "Intake Attorney", "Preferred Office",
		"Practice Area", "Team Lead", "Post Consult Completed Date", "Intake Completion Date",
		"Date FA was Signed", "Date FA was Sent", "Date First Payment", "First Call",
	}}
	for _, r := range rows {
		t.AddRow(
			r.Name,
			dateCell(r.CreatedDate),
			r.Status,
			r.OwnerName,
			r.IntakeAttorneyName,
			r.PreferredOfficeLocation,
			r.PracticeArea,
			r.TeamLead,
			dateCell(r.PostConsultCompleted),
			dateCell(r.IntakeCompleted),
			dateCell(r.DateFASigned),
			dateCell(r.MatterDateFASent),
			dateCell(r.DateFirstPayment),
			strconv.FormatBool(r.FirstCall),
		)
	}
	return t
}
