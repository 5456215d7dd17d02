package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tx, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Criminal", "Civil"}, tx.TypesOfLaw)
	assert.Equal(t, []string{"Pre-Litigation", "Litigation", "Transactional"}, tx.CivilSubtypes)
	assert.Len(t, tx.CriminalCategories, 16)
	assert.Len(t, tx.OfficeLocations, 8)
}

func TestCategories(t *testing.T) {
	tx := MustLoad()

	assert.Contains(t, tx.Categories(Criminal, ""), "DUI Defense")
	assert.Contains(t, tx.Categories(Civil, "Litigation"), "Immigration")
	assert.NotContains(t, tx.Categories(Civil, "Pre-Litigation"), "Immigration")

	assert.Empty(t, tx.Categories(Civil, "Appellate"))
	assert.Empty(t, tx.Categories("Admiralty", ""))
	assert.NotNil(t, tx.Categories("Admiralty", ""))
}

func TestCategoriesReturnsCopy(t *testing.T) {
	tx := MustLoad()
	cats := tx.Categories(Criminal, "")
	cats[0] = "mutated"
	assert.NotEqual(t, "mutated", tx.Categories(Criminal, "")[0])
}

func TestSubcategories(t *testing.T) {
	tx := MustLoad()

	assert.Equal(t,
		[]string{"Removal Defense", "Bond Hearings", "Other"},
		tx.Subcategories(Civil, "Litigation", "Immigration"))
	assert.Equal(t,
		[]string{"Demand Letter (Support)", "Other"},
		tx.Subcategories(Civil, "Pre-Litigation", "Family"))

	assert.Empty(t, tx.Subcategories(Criminal, "", "Felony"))
	assert.Empty(t, tx.Subcategories(Civil, "Transactional", "Probate"))
	assert.Empty(t, tx.Subcategories(Civil, "Nope", "Business"))
}

func TestEveryCategoryHasOneMatterType(t *testing.T) {
	tx := MustLoad()

	all := append([]string{}, tx.CriminalCategories...)
	for _, cats := range tx.CivilCategories {
		all = append(all, cats...)
	}
	for _, c := range all {
		mt, ok := tx.MatterType(c)
		if !ok {
			t.Errorf("category %q has no matter type", c)
			continue
		}
		if mt == "" {
			t.Errorf("category %q maps to empty matter type", c)
		}
	}

	mt, ok := tx.MatterType("Felony")
	assert.True(t, ok)
	assert.Equal(t, "Criminal Law", mt)

	_, ok = tx.MatterType("Maritime")
	assert.False(t, ok)
}

func TestCheckRejectsDanglingKeys(t *testing.T) {
	src := []byte(`
typesOfLaw: ["Criminal", "Civil"]
civilSubtypes: ["Litigation"]
categories: {
	Criminal: ["Felony"]
	Civil: Litigation: ["Business"]
}
subcategories: Litigation: {
	Business: ["Other"]
	Maritime: ["Other"]
}
matterTypes: {
	Felony: "Criminal Law"
	Business: "Business Law"
}
officeLocations: []
`)
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `subcategories["Litigation"]["Maritime"]`)
}

func TestParseRejectsInvalidCUE(t *testing.T) {
	_, err := Parse([]byte(`typesOfLaw: [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile taxonomy")
}

func TestMatterTypeOptions(t *testing.T) {
	tx := MustLoad()
	opts := tx.MatterTypeOptions()
	assert.Contains(t, opts, "Criminal Law")
	assert.Contains(t, opts, "Family Law")
	assert.IsIncreasing(t, opts)
}
