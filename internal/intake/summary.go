package intake

import (
	"strings"
)

// Summary is the read-only digest of a lead's intake answers.
type Summary struct {
	LeadName string           `json:"leadName"`
	Sections []SummarySection `json:"sections"`
}

// HasData reports whether any section has content.
func (s Summary) HasData() bool { return len(s.Sections) > 0 }

// SummarySection is one visible block of answers.
type SummarySection struct {
	Title string        `json:"title"`
	Items []SummaryItem `json:"items"`

	// WebOnly sections appear on the page but not in the emailed digest.
	WebOnly bool `json:"webOnly,omitempty"`
}

// SummaryItem is one answered question.
type SummaryItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Derived summary values that do not map to a single field.
const (
	keyAccommodations = "accommodations"
	keyHowHearDetails = "howHearDetails"
)

type summaryField struct {
	label string
	key   string
	// shared fields fall back to the latest intake's details when the lead
	// form leaves them blank.
	shared bool
}

type summaryDef struct {
	title   string
	matter  string // legal matter type that enables the section
	always  bool   // shown whenever matter is selected
	webOnly bool
	fields  []summaryField
}

func item(label, key string) summaryField       { return summaryField{label: label, key: key} }
func sharedItem(label, key string) summaryField { return summaryField{label: label, key: key, shared: true} }

var summaryDefs = []summaryDef{
	{title: "General Information", fields: []summaryField{
		sharedItem("Issue Description", FieldIssueDescription),
		sharedItem("Desired Outcome", FieldDesiredOutcome),
	}},
	{title: "Contact & Communication Preferences", fields: []summaryField{
		item("Preferred Pronouns", "Preferred_Pronouns__c"),
		item("Work Phone", "Work_Phone_Custom__c"),
		item("Can Text", "Can_Text_You__c"),
		item("Can Email Follow Up", "Can_Email_Follow_Up__c"),
		item("Preferred Communication Method", "Preferred_Method_Communication__c"),
		item("Preferred Language", "Preferred_Language__c"),
	}},
	{title: "Personal Information", fields: []summaryField{
		item("Date of Birth", "Date_Of_Birth__c"),
		item("Occupation/Employer", "Occupation_Employer__c"),
	}},
	{title: "Referral Information", fields: []summaryField{
		item("How Did You Hear About Us", FieldHowDidYouHear),
		item("Details", keyHowHearDetails),
		item("Worked With Us Before", "Worked_With_Us_Before__c"),
		item("Previous Attorney/Office", "Previous_Attorney_Office__c"),
	}},
	{title: "Attorney History", fields: []summaryField{
		item("Spoken With Other Attorneys", "Spoken_With_Other_Attorneys__c"),
		item("Prior Attorney Name/Firm", "Prior_Attorney_Name_Firm__c"),
		item("Reason Not Hired Prior Attorney", "Reason_No_Hire_Prior_Attorney__c"),
		item("Currently Represented", "Currently_Represented__c"),
		item("Reason Seeking New Attorney", "Reason_Seeking_New_Attorney__c"),
	}},
	{title: "Office Preferences", webOnly: true, fields: []summaryField{
		item("Preferred Office Location", FieldOfficeLocation),
		item("Accommodations Needed", keyAccommodations),
		item("Availability", "Specific_Availability_Times_Days__c"),
	}},
	{title: "Conflicts & Prior Representation", fields: []summaryField{
		item("Other Parties Involved", "Other_Parties_Involved__c"),
		item("Previous Legal Matters With Parties", "Legal_Matters_With_Parties_Before__c"),
		item("Aware of Conflicts", "Aware_Of_Conflicts__c"),
		item("Represented Other Parties in Case", "Represented_Other_Parties_In_Case__c"),
	}},
	{title: "Criminal Law Details", matter: "Criminal Law", fields: []summaryField{
		item("Charges/Allegations", "CL_Charges_Allegations__c"),
		item("Case Status", "CL_Case_Status__c"),
	}},
	{title: "Family Law Details", matter: "Family Law", always: true, fields: []summaryField{
		item("Currently Married", "FL_Currently_Married__c"),
		item("Marriage Date", "FL_Marriage_Date__c"),
		item("Marriage Location", "FL_Marriage_Location__c"),
		sharedItem("Relationship Status", "FL_Relationship_Status__c"),
		item("Spouse/Children Together", "FL_Spouse_Children_Together__c"),
		item("Previously Filed Family Case", "FL_Previously_Filed_Family_Case__c"),
		sharedItem("Seeking Action", "FL_Seeking_Action__c"),
		item("Property Division", "FL_Divorce_Property_Division__c"),
		item("Property Division - Real Estate", "FL_Property_Division_Real_Estate__c"),
		item("Property Division - Bank Accounts", "FL_Property_Division_Bank_Accounts__c"),
		item("Property Division - Other Assets", "FL_Property_Division_Other_Assets__c"),
		item("Divorce Contested Status", "FL_Divorce_Contested_Status__c"),
		sharedItem("Children Involved", "FL_Children_Involved__c"),
		item("Children Details", "FL_Children_Details__c"),
		item("Existing Custody Orders", "FL_Existing_Custody_Orders__c"),
		item("Child Safety Concerns", "FL_Child_Safety_Concerns__c"),
		item("CPS Reports Made", "FL_CPS_Reports_Made__c"),
		item("CPS Reports Details", "FL_CPS_Reports_Details__c"),
		item("Need Mediation Prep", "FL_Need_Mediation_Prep__c"),
		item("Prepared for Mediation", "FL_Prepared_For_Mediation__c"),
	}},
	{title: "Employment Law Details", matter: "Employment Law", fields: []summaryField{
		sharedItem("Issue Type", "EMPL_Issue_Type__c"),
		sharedItem("Current Status", "EMPL_Current_Status__c"),
	}},
	{title: "Real Estate Details", matter: "Real Estate", fields: []summaryField{
		sharedItem("Property Address", "RE_Property_Address__c"),
		sharedItem("Transaction Type", "RE_Transaction_Type__c"),
	}},
	{title: "Business Law Details", matter: "Business Law", fields: []summaryField{
		sharedItem("Business Name", "BUS_Business_Name__c"),
		sharedItem("Issue Type", "BUS_Issue_Type__c"),
	}},
	{title: "Construction & Construction Defect Details", matter: "Construction & Construction Defect", fields: []summaryField{
		sharedItem("Property Type", "CONST_Property_Type__c"),
		sharedItem("Issue Description", "CONST_Issue_Description__c"),
	}},
	{title: "HOA Details", matter: "HOA", fields: []summaryField{
		sharedItem("Property Address", "HOA_Property_Address__c"),
		sharedItem("Issue Type", "HOA_Issue_Type__c"),
	}},
	{title: "Landlord-Tenant Details", matter: "Landlord-Tenant", always: true, fields: []summaryField{
		item("Role", "LT_Role__c"),
		item("Property Address", "LT_Property_Address__c"),
		sharedItem("Stage", "LT_Stage__c"),
		sharedItem("Monthly Rent Amount", "LT_Monthly_Rent_Amount__c"),
		sharedItem("Lease Term Type", "LT_Lease_Term_Type__c"),
		sharedItem("Written Lease Agreement", "LT_Written_Lease__c"),
		sharedItem("Property Owner Name", "LT_Property_Owner_Name__c"),
		sharedItem("Property Ownership Type", "LT_Ownership_Type__c"),
		sharedItem("Entity Name", "LT_Entity_Name__c"),
		sharedItem("Entity State of Formation", "LT_Entity_State__c"),
		sharedItem("Landlord Services Needed", "LT_Landlord_Services__c"),
		sharedItem("Issue Nature", "LT_Issue_Nature__c"),
		sharedItem("Eviction Action Filed", "LT_Eviction_Filed__c"),
		sharedItem("Writ of Restitution Requested", "LT_Writ_Requested__c"),
		sharedItem("Court Representation Needed", "LT_Court_Representation__c"),
		sharedItem("Tenant Asserting Defenses", "LT_Tenant_Defenses__c"),
		sharedItem("Tenant Defense Details", "LT_Tenant_Defenses_Details__c"),
		sharedItem("Settlement Discussion", "LT_Settlement_Discussion__c"),
		item("Partial Rent Accepted", "LT_Partial_Rent_Accepted__c"),
		item("Mediation Attempted", "LT_Mediation_Attempted__c"),
		item("Notice Issued", "LT_Notice_Issued__c"),
		item("Previous Eviction", "LT_Previous_Eviction__c"),
		item("Pursue Goal", "LT_Pursue_Goal__c"),
		item("Case Number", "LT_Case_Number__c"),
		item("Filing County", "LT_Filing_County__c"),
		item("Court Location", "LT_Court_Location__c"),
		item("Filing Date", "LT_Filing_Date__c"),
		item("Notice Type", "LT_Notice_Type__c"),
		item("Notice Date", "LT_Notice_Date__c"),
		item("Notice Received Date", "LT_Notice_Received_Date__c"),
		item("Served Date", "LT_Served_Date__c"),
		item("Current Status", "LT_Current_Status__c"),
		item("Issue Nature Other", "LT_Issue_Nature_Other__c"),
		item("Mediation Outcome", "LT_Mediation_Outcome__c"),
		item("Previous Eviction Details", "LT_Previous_Eviction_Details__c"),
		sharedItem("Tenant Lease Type", "LT_Tenant_Lease_Type__c"),
		sharedItem("Tenant Lease Term", "LT_Tenant_Lease_Term__c"),
		sharedItem("Lease Signed by All Adults", "LT_Lease_All_Signed__c"),
		sharedItem("Lease Concerns", "LT_Lease_Concerns__c"),
		sharedItem("Lease Concerns Details", "LT_Lease_Concerns_Details__c"),
		sharedItem("Received Notices from Landlord", "LT_Received_Notices__c"),
		sharedItem("Verbal Threats of Eviction", "LT_Verbal_Threats__c"),
		sharedItem("Notice Unjust or Retaliatory", "LT_Notice_Unjust__c"),
		sharedItem("Notice Unjust Details", "LT_Notice_Unjust_Details__c"),
		sharedItem("Habitability Issues", "LT_Habitability_Issues__c"),
		sharedItem("Habitability Details", "LT_Habitability_Details__c"),
		sharedItem("Rent Withheld", "LT_Rent_Withheld__c"),
		sharedItem("Repair Requested", "LT_Repair_Requested__c"),
		sharedItem("Harassment/Discrimination", "LT_Harassment__c"),
		sharedItem("Harassment Details", "LT_Harassment_Details__c"),
		sharedItem("Served with Eviction", "LT_Served_Eviction__c"),
	}},
	{title: "Guardian & Conservatorship Details", matter: "Guardian and Conservatorship", fields: []summaryField{
		sharedItem("Proposed Ward", "GC_Ward_Full_Name__c"),
		sharedItem("Proceeding Type", "GC_Proceeding_Type__c"),
		sharedItem("Reason", "GC_Reason__c"),
	}},
	{title: "Defamation Details", matter: "Defamation", fields: []summaryField{
		sharedItem("Involvement Type", "DEF_Involvement_Type__c"),
		sharedItem("Statement Maker", "DEF_Statement_Maker_Name__c"),
	}},
}

// Legal matter section.
const (
	MatterSectionTitle = "Legal Matter Type(s)"
	FieldMatterOther   = "Legal_Matter_Type_Other_Specify__c"
)

var howHearDetails = []struct{ label, field string }{
	{"Advertisement", "How_Hear_Advertisement_Specify__c"},
	{"Referral", "How_Hear_Referral_Specify__c"},
	{"Social Media", "How_Hear_Social_Media_Specify__c"},
	{"Other", "How_Hear_Other_Specify__c"},
}

type summarizer struct {
	form       *Record
	additional *Record
}

func text(r *Record, field string) string {
	if r == nil {
		return ""
	}
	return r.Text(field)
}

func (s summarizer) value(sf summaryField) string {
	switch sf.key {
	case keyAccommodations:
		if text(s.form, FieldRequireAccommodat) != "Yes" {
			return "No"
		}
		if v := text(s.form, FieldAccommodations); v != "" {
			return v
		}
		return "Yes"
	case keyHowHearDetails:
		var parts []string
		for _, d := range howHearDetails {
			if v := text(s.form, d.field); v != "" {
				parts = append(parts, d.label+": "+v)
			}
		}
		return strings.Join(parts, "; ")
	}
	if v := text(s.form, sf.key); v != "" || !sf.shared {
		return v
	}
	return text(s.additional, sf.key)
}

// set reports whether a field counts towards showing its section. A "No" for
// accommodations counts as unanswered.
func (s summarizer) set(sf summaryField) bool {
	v := s.value(sf)
	if sf.key == keyAccommodations {
		return v != "No"
	}
	return v != ""
}

func (s summarizer) visible(def summaryDef, matters string) bool {
	if def.matter != "" {
		if !strings.Contains(matters, def.matter) {
			return false
		}
		if def.always {
			return true
		}
	}
	// Matter sections need one of their first two fields; the rest accept
	// any field.
	fields := def.fields
	if def.matter != "" && len(fields) > 2 {
		fields = fields[:2]
	}
	for _, sf := range fields {
		if s.set(sf) {
			return true
		}
	}
	return false
}

// Summarize builds the digest for leadName from the answers on the lead's
// intake form, falling back to the latest intake's details for shared
// fields. Either record may be nil.
func Summarize(leadName string, form, additional *Record) Summary {
	s := summarizer{form: form, additional: additional}
	out := Summary{LeadName: leadName, Sections: []SummarySection{}}

	matters := text(form, FieldLegalMatterType)
	if matters != "" {
		sec := SummarySection{Title: MatterSectionTitle, Items: []SummaryItem{{Label: "Legal Matters", Value: matters}}}
		if other := text(form, FieldMatterOther); other != "" {
			sec.Items = append(sec.Items, SummaryItem{Label: "Other", Value: other})
		}
		out.Sections = append(out.Sections, sec)
	}

	for _, def := range summaryDefs {
		if !s.visible(def, matters) {
			continue
		}
		sec := SummarySection{Title: def.title, Items: []SummaryItem{}, WebOnly: def.webOnly}
		for _, sf := range def.fields {
			if v := s.value(sf); v != "" {
				sec.Items = append(sec.Items, SummaryItem{Label: sf.label, Value: v})
			}
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}
