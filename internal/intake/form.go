package intake

import (
	"github.com/matthewbaird/intake/internal/taxonomy"
)

// Form is the working state of one intake being edited: the record plus the
// catalog and taxonomy it is interpreted against.
type Form struct {
	Record *Record

	catalog  *Catalog
	taxonomy *taxonomy.Taxonomy
}

// NewForm starts a blank intake for a lead. Every catalog field is present at
// its zero value and Legal_Matter_Type__c is an empty list.
func NewForm(c *Catalog, t *taxonomy.Taxonomy, leadID string) (*Form, error) {
	if leadID == "" {
		return nil, &ValidationError{Messages: []string{MsgNoLead}}
	}
	r := c.NewRecord()
	r.Set(FieldLead, Text(leadID))
	r.Set(FieldLegalMatterType, List())
	return &Form{Record: r, catalog: c, taxonomy: t}, nil
}

// LoadForm wraps an existing record, normalising multi-select fields.
func LoadForm(c *Catalog, t *taxonomy.Taxonomy, r *Record) *Form {
	for _, f := range r.Fields() {
		v, _ := r.Get(f)
		r.Set(f, c.Normalize(f, v))
	}
	return &Form{Record: r, catalog: c, taxonomy: t}
}

// Change applies a single field edit and clears every downstream taxonomy
// selection the edit invalidates:
//
//	Type_of_Law__c       → Type_of_Civil_Law__c (unless Civil), Category__c, Subcategory__c, Legal_Matter_Type__c
//	Type_of_Civil_Law__c → Category__c, Subcategory__c, Legal_Matter_Type__c
//	Category__c          → Subcategory__c; Legal_Matter_Type__c becomes the implied matter type
//
// Re-selecting the current value of a taxonomy field is a no-op. Edits to any
// other field never clear siblings.
func (f *Form) Change(field string, v Value) {
	v = f.catalog.Normalize(field, v)
	prev, had := f.Record.Get(field)
	unchanged := had && prev.String() == v.String()
	f.Record.Set(field, v)
	if unchanged {
		return
	}

	switch field {
	case FieldTypeOfLaw:
		if v.Text != taxonomy.Civil {
			f.Record.Set(FieldTypeOfCivilLaw, Text(""))
		}
		f.clearCategory()
	case FieldTypeOfCivilLaw:
		f.clearCategory()
	case FieldCategory:
		f.Record.Set(FieldSubcategory, Text(""))
		if mt, ok := f.taxonomy.MatterType(v.Text); ok && v.Text != "" {
			f.Record.Set(FieldLegalMatterType, List(mt))
		} else {
			f.Record.Set(FieldLegalMatterType, List())
		}
	}
}

func (f *Form) clearCategory() {
	f.Record.Set(FieldCategory, Text(""))
	f.Record.Set(FieldSubcategory, Text(""))
	f.Record.Set(FieldLegalMatterType, List())
}

// ShowCivilType reports whether the civil subtype picker applies.
func (f *Form) ShowCivilType() bool {
	return f.Record.Text(FieldTypeOfLaw) == taxonomy.Civil
}

// ShowCategory reports whether the category picker applies: criminal matters,
// or civil matters once a subtype is chosen.
func (f *Form) ShowCategory() bool {
	switch f.Record.Text(FieldTypeOfLaw) {
	case taxonomy.Criminal:
		return true
	case taxonomy.Civil:
		return f.Record.Text(FieldTypeOfCivilLaw) != ""
	}
	return false
}

// ShowSubcategory reports whether the subcategory picker applies.
func (f *Form) ShowSubcategory() bool {
	return f.Record.Text(FieldTypeOfLaw) == taxonomy.Civil && f.Record.Text(FieldCategory) != ""
}

// CategoryOptions lists the categories valid for the current selection.
func (f *Form) CategoryOptions() []string {
	return f.taxonomy.Categories(f.Record.Text(FieldTypeOfLaw), f.Record.Text(FieldTypeOfCivilLaw))
}

// SubcategoryOptions lists the subcategories valid for the current selection.
func (f *Form) SubcategoryOptions() []string {
	return f.taxonomy.Subcategories(
		f.Record.Text(FieldTypeOfLaw),
		f.Record.Text(FieldTypeOfCivilLaw),
		f.Record.Text(FieldCategory),
	)
}

// Consistent reports whether every downstream selection is valid for its
// upstream selection.
func (f *Form) Consistent() bool {
	typeOfLaw := f.Record.Text(FieldTypeOfLaw)
	civil := f.Record.Text(FieldTypeOfCivilLaw)
	category := f.Record.Text(FieldCategory)
	sub := f.Record.Text(FieldSubcategory)

	if typeOfLaw != taxonomy.Civil && civil != "" {
		return false
	}
	if category != "" && !contains(f.CategoryOptions(), category) {
		return false
	}
	if sub != "" && !contains(f.SubcategoryOptions(), sub) {
		return false
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
