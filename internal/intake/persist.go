package intake

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Split divides a record into the values stored in real columns and the
// remainder, which is encoded into the Intake_Details_JSON__c column. Lists
// are joined with "; ". Empty extension values are omitted and the details
// column is left empty when nothing remains.
func Split(r *Record, realFields map[string]bool) (map[string]string, error) {
	cols := make(map[string]string)
	extra := make(map[string]Value)
	for _, f := range r.Fields() {
		if f == FieldDetailsJSON {
			continue
		}
		v, _ := r.Get(f)
		if realFields[f] {
			cols[f] = v.String()
			continue
		}
		if !v.IsEmpty() {
			extra[f] = v
		}
	}
	if len(extra) > 0 {
		b, err := json.Marshal(extra)
		if err != nil {
			return nil, fmt.Errorf("encode intake details: %w", err)
		}
		cols[FieldDetailsJSON] = string(b)
	} else if realFields[FieldDetailsJSON] {
		cols[FieldDetailsJSON] = ""
	}
	return cols, nil
}

// Hydrate rebuilds a record from stored columns. Keys from the details blob
// are merged over the column values; a blob that fails to parse is logged and
// treated as empty. Multi-select fields come back as lists.
func (c *Catalog) Hydrate(cols map[string]string) *Record {
	r := NewRecord()
	keys := make([]string, 0, len(cols))
	for k := range cols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == FieldDetailsJSON {
			continue
		}
		r.Set(k, c.Normalize(k, Text(cols[k])))
	}
	for k, v := range parseDetails(cols[FieldDetailsJSON]) {
		r.Set(k, c.Normalize(k, v))
	}
	return r
}

func parseDetails(blob string) map[string]Value {
	if blob == "" {
		return map[string]Value{}
	}
	var extra map[string]Value
	if err := json.Unmarshal([]byte(blob), &extra); err != nil {
		log.Printf("intake: parse details blob: %v", err)
		return map[string]Value{}
	}
	return extra
}

// ListMatterTypes renders Legal_Matter_Type__c for intake list rows.
func ListMatterTypes(stored string) string {
	items := StringToArray(stored)
	if len(items) == 0 {
		return "N/A"
	}
	return strings.Join(items, ", ")
}
