// Package taxonomy resolves the legal-matter taxonomy used by the intake form:
// Type of Law → Civil subtype → Category → Subcategory, plus the legal matter
// type implied by each category.
package taxonomy

import (
	_ "embed"
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed taxonomy.cue
var source []byte

// Types of law.
const (
	Criminal = "Criminal"
	Civil    = "Civil"
)

// Taxonomy is the decoded option tree.
type Taxonomy struct {
	TypesOfLaw         []string
	CivilSubtypes      []string
	CriminalCategories []string                       // categories under Criminal
	CivilCategories    map[string][]string            // civil subtype → categories
	SubcategoryTree    map[string]map[string][]string // civil subtype → category → subcategories
	MatterTypes        map[string]string              // category → legal matter type
	OfficeLocations    []string
}

type document struct {
	TypesOfLaw    []string `json:"typesOfLaw"`
	CivilSubtypes []string `json:"civilSubtypes"`
	Categories    struct {
		Criminal []string            `json:"Criminal"`
		Civil    map[string][]string `json:"Civil"`
	} `json:"categories"`
	Subcategories   map[string]map[string][]string `json:"subcategories"`
	MatterTypes     map[string]string              `json:"matterTypes"`
	OfficeLocations []string                       `json:"officeLocations"`
}

// Load compiles the embedded taxonomy and checks it for dangling keys.
func Load() (*Taxonomy, error) {
	return Parse(source)
}

// Parse compiles CUE taxonomy source.
func Parse(src []byte) (*Taxonomy, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename("taxonomy.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile taxonomy: %s", cueerrors.Details(err, nil))
	}
	var doc document
	if err := v.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	t := &Taxonomy{
		TypesOfLaw:         doc.TypesOfLaw,
		CivilSubtypes:      doc.CivilSubtypes,
		CriminalCategories: doc.Categories.Criminal,
		CivilCategories:    doc.Categories.Civil,
		SubcategoryTree:    doc.Subcategories,
		MatterTypes:        doc.MatterTypes,
		OfficeLocations:    doc.OfficeLocations,
	}
	if err := t.Check(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustLoad is Load for package initialisation; it panics on a broken taxonomy.
func MustLoad() *Taxonomy {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Check reports subcategory or matter-type keys that name a category absent
// from the category tree.
func (t *Taxonomy) Check() error {
	var dangling []string
	for subtype, byCategory := range t.SubcategoryTree {
		known := t.CivilCategories[subtype]
		if known == nil {
			dangling = append(dangling, fmt.Sprintf("subcategories[%q]", subtype))
			continue
		}
		for category := range byCategory {
			if !contains(known, category) {
				dangling = append(dangling, fmt.Sprintf("subcategories[%q][%q]", subtype, category))
			}
		}
	}
	for category := range t.MatterTypes {
		if !t.knownCategory(category) {
			dangling = append(dangling, fmt.Sprintf("matterTypes[%q]", category))
		}
	}
	if len(dangling) > 0 {
		sort.Strings(dangling)
		return fmt.Errorf("taxonomy: dangling keys %v", dangling)
	}
	return nil
}

// Categories returns the category options for a type of law and, for civil
// matters, a civil subtype. Unknown keys resolve to an empty list.
func (t *Taxonomy) Categories(typeOfLaw, civilSubtype string) []string {
	switch typeOfLaw {
	case Criminal:
		return clone(t.CriminalCategories)
	case Civil:
		return clone(t.CivilCategories[civilSubtype])
	}
	return []string{}
}

// Subcategories returns the subcategory options. Only civil categories carry
// subcategories.
func (t *Taxonomy) Subcategories(typeOfLaw, civilSubtype, category string) []string {
	if typeOfLaw != Civil {
		return []string{}
	}
	return clone(t.SubcategoryTree[civilSubtype][category])
}

// MatterType returns the single legal matter type implied by a category.
func (t *Taxonomy) MatterType(category string) (string, bool) {
	mt, ok := t.MatterTypes[category]
	return mt, ok
}

// MatterTypeOptions lists the distinct matter types in sorted order.
func (t *Taxonomy) MatterTypeOptions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, mt := range t.MatterTypes {
		if !seen[mt] {
			seen[mt] = true
			out = append(out, mt)
		}
	}
	sort.Strings(out)
	return out
}

func (t *Taxonomy) knownCategory(category string) bool {
	if contains(t.CriminalCategories, category) {
		return true
	}
	for _, cats := range t.CivilCategories {
		if contains(cats, category) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clone(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
