package leads

// Widget help texts.
const (
	SQLTrendHelp                  = `A Sales Qualified Lead (SQL) is a PC who came from a marketing channel that is not in a "test market," and scheduled and completed an initial call with sales. A Lead whose disqualification status reason is "Hired Another Firm" or "Firm Availability" also counts as an SQL`
	LeadMetricsHelp               = "Key metrics tracking lead activity and conversions. Click any metric to see detailed records. Date logic for each component can differ. The first column in the popup shows which date field is controlling the date ranges for the component."
	LeadsByPracticeAreaHelp       = "Number of leads for each practice area are based on Created Date of Intake Form, sorted by volume highest to lowest. Practice Areas will only show if there's at least one record in the filter range. Zeros will not display."
	IntakeCompletionsHelp         = "Number of intake forms completed by each Intake Specialist based on Intake Completion Date. Top 10 specialists shown."
	IntakeSpecialistCloseRateHelp = "Percentage of leads closed by each Intake Specialist. 'Closed' means Date FA was Sent AND Date First Payment have values. Only counts 'at bat' leads (Post Consult Complete is checked AND client was reached - not a No Show). Toggle 'Incl. Attorney' to include/exclude leads with attorney involvement."
	IntakeAttorneyCloseRateHelp   = "Percentage of leads closed by each Intake Attorney. 'Closed' means Date FA was Sent AND Date First Payment have values. Only counts 'at bat' leads (Post Consult Complete is checked AND client was reached - not a No Show)."
	LeadConversionBySourceHelp    = "Conversion rate by lead source where converted means lead status is 'Closed - Converted' or 'Qualified'."
	TotalLeadsBySourceHelp        = "Total number of leads from each source, sorted by volume highest to lowest. Shows all sources."
	LeadsByLandingPageHelp        = "Number of leads from each website landing page based on Created Date, sorted by volume highest to lowest. Shows all landing pages."
)

// HelpTexts keys the help texts by widget.
func HelpTexts() map[string]string {
	return map[string]string{
		"sqlTrend":                  SQLTrendHelp,
		"leadMetrics":               LeadMetricsHelp,
		"leadsByPracticeArea":       LeadsByPracticeAreaHelp,
		"intakeCompletions":         IntakeCompletionsHelp,
		"intakeSpecialistCloseRate": IntakeSpecialistCloseRateHelp,
		"intakeAttorneyCloseRate":   IntakeAttorneyCloseRateHelp,
		"leadConversionBySource":    LeadConversionBySourceHelp,
		"totalLeadsBySource":        TotalLeadsBySourceHelp,
		"leadsByLandingPage":        LeadsByLandingPageHelp,
	}
}
