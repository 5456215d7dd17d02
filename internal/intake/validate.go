package intake

import (
	"strings"
)

// User-facing validation messages.
const (
	MsgNoLead      = "No lead selected. Please select a lead first."
	MsgTypeOfLaw   = "Select a type of law."
	MsgCivilType   = "Select a type of civil law."
	MsgCategory    = "Select a category valid for the chosen type of law."
	MsgSubcategory = "Select a subcategory valid for the chosen category."
	MsgReview      = "Please review all fields and complete the required ones."
	MsgSaved       = "Intake record saved."
)

// ValidationError aggregates every problem found in a record. Nothing is saved
// when it is returned.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// Summary is the single toast line shown for a failed save.
func (e *ValidationError) Summary() string {
	return MsgReview
}

// Validate checks the required taxonomy selection and that every downstream
// choice is valid for its upstream value.
func (f *Form) Validate() error {
	var msgs []string
	r := f.Record
	if r.Text(FieldLead) == "" {
		msgs = append(msgs, MsgNoLead)
	}
	typeOfLaw := r.Text(FieldTypeOfLaw)
	if typeOfLaw == "" {
		msgs = append(msgs, MsgTypeOfLaw)
	}
	if f.ShowCivilType() && r.Text(FieldTypeOfCivilLaw) == "" {
		msgs = append(msgs, MsgCivilType)
	}
	if c := r.Text(FieldCategory); c != "" && !contains(f.CategoryOptions(), c) {
		msgs = append(msgs, MsgCategory)
	}
	if s := r.Text(FieldSubcategory); s != "" && !contains(f.SubcategoryOptions(), s) {
		msgs = append(msgs, MsgSubcategory)
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}
