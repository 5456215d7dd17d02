package intake

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed fields.cue
var fieldsSource []byte

// Well-known field names.
const (
	FieldName              = "Name"
	FieldLead              = "Lead__c"
	FieldClient            = "Client__c"
	FieldIntakeAttorney    = "Intake_Attorney__c"
	FieldTypeOfLaw         = "Type_of_Law__c"
	FieldTypeOfCivilLaw    = "Type_of_Civil_Law__c"
	FieldCategory          = "Category__c"
	FieldSubcategory       = "Subcategory__c"
	FieldLegalMatterType   = "Legal_Matter_Type__c"
	FieldDetailsJSON       = "Intake_Details_JSON__c"
	FieldOfficeLocation    = "Preferred_Office_Location__c"
	FieldHowDidYouHear     = "How_Did_You_Hear__c"
	FieldIssueDescription  = "Issue_Description__c"
	FieldDesiredOutcome    = "Desired_Outcome__c"
	FieldNatureOfMatter    = "Nature_of_Matter__c"
	FieldRequireAccommodat = "Require_Appointment_Accommodations__c"
	FieldAccommodations    = "Appointment_Accommodations_Specify__c"
)

// Section is one page of the questionnaire.
type Section struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Gate   string   `json:"gate,omitempty"` // rule that must hold for the section to show
	Fields []string `json:"fields"`
}

// Catalog describes every intake field and how it is stored.
type Catalog struct {
	Sections []Section

	kinds   map[string]Kind
	section map[string]int
	core    []string
	columns []string
	order   []string
}

type catalogDoc struct {
	Sections    []Section `json:"sections"`
	Dates       []string  `json:"dates"`
	MultiSelect []string  `json:"multiSelect"`
	Core        []string  `json:"core"`
	Columns     []string  `json:"columns"`
}

// LoadCatalog compiles the embedded field catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(fieldsSource)
}

// MustLoadCatalog panics if the embedded catalog is broken.
func MustLoadCatalog() *Catalog {
	c, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCatalog compiles CUE catalog source.
func ParseCatalog(src []byte) (*Catalog, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename("fields.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog: %s", cueerrors.Details(err, nil))
	}
	var doc catalogDoc
	if err := v.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		Sections: doc.Sections,
		kinds:    make(map[string]Kind),
		section:  make(map[string]int),
		core:     doc.Core,
		columns:  doc.Columns,
	}
	for _, f := range doc.Core {
		c.add(f, 0)
	}
	for i, s := range doc.Sections {
		if s.Number != i+1 {
			return nil, fmt.Errorf("catalog: section %q has number %d, want %d", s.Name, s.Number, i+1)
		}
		for _, f := range s.Fields {
			if prev, dup := c.section[f]; dup && prev != 0 {
				return nil, fmt.Errorf("catalog: field %s listed in sections %d and %d", f, prev, s.Number)
			}
			c.add(f, s.Number)
		}
	}
	for _, f := range doc.Dates {
		if _, ok := c.kinds[f]; !ok {
			return nil, fmt.Errorf("catalog: date field %s is not in any section", f)
		}
		c.kinds[f] = KindDate
	}
	for _, f := range doc.MultiSelect {
		c.add(f, -1)
		c.kinds[f] = KindList
	}
	for _, f := range doc.Columns {
		if _, ok := c.kinds[f]; !ok {
			return nil, fmt.Errorf("catalog: column %s is not a known field", f)
		}
	}
	return c, nil
}

// add registers a field once, keeping the first placement.
func (c *Catalog) add(field string, section int) {
	if _, ok := c.kinds[field]; ok {
		if section > 0 {
			c.section[field] = section
		}
		return
	}
	c.kinds[field] = KindText
	c.order = append(c.order, field)
	if section >= 0 {
		c.section[field] = section
	}
}

// Kind reports how a field is represented; unknown fields are text.
func (c *Catalog) Kind(field string) Kind {
	return c.kinds[field]
}

// Known reports whether the catalog lists field.
func (c *Catalog) Known(field string) bool {
	_, ok := c.kinds[field]
	return ok
}

// IsMultiSelect reports whether field holds a list.
func (c *Catalog) IsMultiSelect(field string) bool {
	return c.kinds[field] == KindList
}

// Section returns the section with the given 1-based number.
func (c *Catalog) Section(n int) (Section, bool) {
	if n < 1 || n > len(c.Sections) {
		return Section{}, false
	}
	return c.Sections[n-1], true
}

// SectionOf returns the section number a field is presented in, or 0.
func (c *Catalog) SectionOf(field string) int {
	return c.section[field]
}

// Fields lists every catalog field in declaration order.
func (c *Catalog) Fields() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Columns lists the fields persisted as table columns.
func (c *Catalog) Columns() []string {
	out := make([]string, len(c.columns))
	copy(out, c.columns)
	return out
}

// Gates maps each gated field to the rule controlling its section.
func (c *Catalog) Gates() map[string]string {
	gates := make(map[string]string)
	for _, s := range c.Sections {
		if s.Gate == "" {
			continue
		}
		for _, f := range s.Fields {
			gates[f] = s.Gate
		}
	}
	return gates
}

// NewRecord returns a record with every catalog field at its zero value:
// empty text, or an empty list for multi-select fields.
func (c *Catalog) NewRecord() *Record {
	r := NewRecord()
	for _, f := range c.order {
		if f == FieldDetailsJSON {
			continue
		}
		if c.kinds[f] == KindList {
			r.Set(f, List())
		} else {
			r.Set(f, Text(""))
		}
	}
	return r
}

// Normalize converts v to the representation the catalog expects for field.
func (c *Catalog) Normalize(field string, v Value) Value {
	if c.IsMultiSelect(field) {
		if v.IsList {
			return v
		}
		return List(StringToArray(v.Text)...)
	}
	if v.IsList {
		return Text(ArrayToString(v.List))
	}
	return v
}
