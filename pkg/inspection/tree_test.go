package inspection

import (
	"errors"
	"testing"

	"dealerinspect/models"
)

func TestTreeIndexLookups(t *testing.T) {
	cfg := newInspectionConfig(t)
	sec := mustAddSection(t, cfg, CategoryAfterGrooming, "Final Checks")
	f := mustAddField(t, cfg, sec.SectionID, "Wax Applied", models.FieldTypeBoolean)
	calc, err := AddCalculation(cfg, CategoryAfterGrooming, CalculationParams{
		Name:    "Grooming Total",
		Formula: []models.FormulaToken{fieldTok(f.FieldID, 0)},
	})
	if err != nil {
		t.Fatalf("AddCalculation() error = %v", err)
	}

	ix := mustIndex(t, cfg)

	if got := ix.Category(CategoryAfterGrooming); got == nil || got.CategoryID != CategoryAfterGrooming {
		t.Errorf("Category lookup failed")
	}
	cat, gotSec := ix.Section(sec.SectionID)
	if gotSec == nil || cat.CategoryID != CategoryAfterGrooming {
		t.Errorf("Section lookup returned wrong parent: %+v", cat)
	}
	gotCat, gotSec2, gotField := ix.Field(f.FieldID)
	if gotField == nil || gotSec2.SectionID != sec.SectionID || gotCat.CategoryID != CategoryAfterGrooming {
		t.Errorf("Field lookup returned wrong ancestry")
	}
	gotCat2, gotCalc := ix.Calculation(calc.CalculationID)
	if gotCalc == nil || gotCat2.CategoryID != CategoryAfterGrooming {
		t.Errorf("Calculation lookup returned wrong parent")
	}

	if ix.Category("nope") != nil {
		t.Errorf("unknown category must be nil")
	}
	if _, s := ix.Section("nope"); s != nil {
		t.Errorf("unknown section must be nil")
	}
	if _, _, fld := ix.Field("nope"); fld != nil {
		t.Errorf("unknown field must be nil")
	}
	if !ix.HasSection(sec.SectionID) || ix.HasSection("nope") {
		t.Errorf("HasSection answers wrong")
	}
}

func TestTreeIndexRejectsDuplicateIDs(t *testing.T) {
	tests := []struct {
		name string
		cfg  *models.InspectionConfig
	}{
		{
			name: "duplicate category id",
			cfg: &models.InspectionConfig{Categories: models.CategoryList{
				{CategoryID: "dup"}, {CategoryID: "dup"},
			}},
		},
		{
			name: "duplicate section id across categories",
			cfg: &models.InspectionConfig{Categories: models.CategoryList{
				{CategoryID: "a", Sections: []models.Section{{SectionID: "dup"}}},
				{CategoryID: "b", Sections: []models.Section{{SectionID: "dup"}}},
			}},
		},
		{
			name: "duplicate field id across sections",
			cfg: &models.InspectionConfig{Categories: models.CategoryList{
				{CategoryID: "a", Sections: []models.Section{
					{SectionID: "s1", Fields: []models.Field{{FieldID: "dup"}}},
					{SectionID: "s2", Fields: []models.Field{{FieldID: "dup"}}},
				}},
			}},
		},
		{
			name: "duplicate calculation id",
			cfg: &models.InspectionConfig{Categories: models.CategoryList{
				{CategoryID: "a", Calculations: []models.Calculation{
					{CalculationID: "dup"}, {CalculationID: "dup"},
				}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTreeIndex(tt.cfg)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("NewTreeIndex() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestNewNodeIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewNodeID()
		if id == "" || seen[id] {
			t.Fatalf("NewNodeID() produced empty or repeated id %q", id)
		}
		seen[id] = true
	}
}
