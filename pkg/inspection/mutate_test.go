package inspection

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"dealerinspect/models"
)

// fakeDropdowns is an in-memory DropdownLookup keyed by id and name.
type fakeDropdowns struct {
	masters []models.DropdownMaster
}

func (f *fakeDropdowns) FindDropdown(companyID uuid.UUID, idOrName string) (*models.DropdownMaster, error) {
	for i := range f.masters {
		m := &f.masters[i]
		if m.CompanyID != companyID || !m.IsActive {
			continue
		}
		if m.ID.String() == idOrName || m.Name == idOrName {
			return m, nil
		}
	}
	return nil, nil
}

func newInspectionConfig(t *testing.T) *models.InspectionConfig {
	t.Helper()
	cfg := &models.InspectionConfig{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Purpose:   models.PurposeInspection,
		Name:      "Standard Inspection",
	}
	if err := SeedCategories(cfg); err != nil {
		t.Fatalf("SeedCategories() error = %v", err)
	}
	return cfg
}

func mustAddSection(t *testing.T, cfg *models.InspectionConfig, categoryID, name string) *models.Section {
	t.Helper()
	sec, err := AddSection(cfg, categoryID, SectionParams{Name: name})
	if err != nil {
		t.Fatalf("AddSection(%s) error = %v", name, err)
	}
	return sec
}

func mustAddField(t *testing.T, cfg *models.InspectionConfig, sectionID, name string, ft models.FieldType) *models.Field {
	t.Helper()
	f, err := AddField(cfg, sectionID, FieldParams{Name: name, FieldType: ft}, nil)
	if err != nil {
		t.Fatalf("AddField(%s) error = %v", name, err)
	}
	return f
}

func TestSeedCategories(t *testing.T) {
	cfg := newInspectionConfig(t)
	wantIDs := []string{CategoryAtArrival, CategoryAfterReconditioning, CategoryAfterGrooming}
	if len(cfg.Categories) != len(wantIDs) {
		t.Fatalf("seeded %d categories, want %d", len(cfg.Categories), len(wantIDs))
	}
	for i, id := range wantIDs {
		if cfg.Categories[i].CategoryID != id {
			t.Errorf("category[%d] = %s, want %s", i, cfg.Categories[i].CategoryID, id)
		}
		if cfg.Categories[i].DisplayOrder != i {
			t.Errorf("category[%d].DisplayOrder = %d, want %d", i, cfg.Categories[i].DisplayOrder, i)
		}
	}

	tradeIn := &models.InspectionConfig{Purpose: models.PurposeTradeIn}
	if err := SeedCategories(tradeIn); err != nil {
		t.Fatalf("SeedCategories(trade_in) error = %v", err)
	}
	if len(tradeIn.Categories) != 1 || tradeIn.Categories[0].CategoryID != CategoryTradeIn {
		t.Errorf("trade-in seeding = %+v, want single %s category", tradeIn.Categories, CategoryTradeIn)
	}

	if err := SeedCategories(cfg); err == nil {
		t.Errorf("SeedCategories() must reject an already-seeded configuration")
	}
	if err := SeedCategories(&models.InspectionConfig{Purpose: "auction"}); err == nil {
		t.Errorf("SeedCategories() must reject an unknown purpose")
	}
}

func TestSeededCategoryProtection(t *testing.T) {
	cfg := newInspectionConfig(t)

	if err := DeleteCategory(cfg, CategoryAtArrival); err == nil {
		t.Errorf("DeleteCategory(%s) must be rejected", CategoryAtArrival)
	}
	name := "Renamed"
	if err := UpdateCategory(cfg, CategoryAtArrival, CategoryUpdate{Name: &name}); err == nil {
		t.Errorf("renaming a seeded category must be rejected")
	}
	// description and active flag stay editable
	desc := "vehicles fresh off the truck"
	inactive := false
	if err := UpdateCategory(cfg, CategoryAtArrival, CategoryUpdate{Description: &desc, IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateCategory() error = %v", err)
	}
	if cfg.Categories[0].Description != desc || cfg.Categories[0].IsActive {
		t.Errorf("seeded category description/active not applied: %+v", cfg.Categories[0])
	}
}

func TestAddAndDeleteCategory(t *testing.T) {
	cfg := newInspectionConfig(t)

	cat, err := AddCategory(cfg, CategoryParams{Name: "Detailing"})
	if err != nil {
		t.Fatalf("AddCategory() error = %v", err)
	}
	if cat.CategoryID == "" {
		t.Fatalf("AddCategory() returned empty id")
	}
	if cat.DisplayOrder != 3 {
		t.Errorf("new category DisplayOrder = %d, want 3", cat.DisplayOrder)
	}
	if _, err := AddCategory(cfg, CategoryParams{Name: "   "}); err == nil {
		t.Errorf("AddCategory() must reject a blank name")
	}

	if err := DeleteCategory(cfg, cat.CategoryID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if len(cfg.Categories) != 3 {
		t.Errorf("category count after delete = %d, want 3", len(cfg.Categories))
	}
	var nf *NotFoundError
	if err := DeleteCategory(cfg, cat.CategoryID); !errors.As(err, &nf) {
		t.Errorf("second delete error = %v, want NotFoundError", err)
	}
}

func TestReorderSections(t *testing.T) {
	cfg := newInspectionConfig(t)
	a := mustAddSection(t, cfg, CategoryAtArrival, "Exterior")
	b := mustAddSection(t, cfg, CategoryAtArrival, "Interior")
	c := mustAddSection(t, cfg, CategoryAtArrival, "Engine Bay")
	aID, bID, cID := a.SectionID, b.SectionID, c.SectionID

	if err := ReorderSections(cfg, CategoryAtArrival, []string{cID, aID, bID}); err != nil {
		t.Fatalf("ReorderSections() error = %v", err)
	}
	cat := cfg.Category(CategoryAtArrival)
	gotIDs := []string{cat.Sections[0].SectionID, cat.Sections[1].SectionID, cat.Sections[2].SectionID}
	wantIDs := []string{cID, aID, bID}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Errorf("section[%d] = %s, want %s", i, gotIDs[i], wantIDs[i])
		}
		if cat.Sections[i].DisplayOrder != i {
			t.Errorf("section[%d].DisplayOrder = %d, want %d", i, cat.Sections[i].DisplayOrder, i)
		}
	}

	rejects := []struct {
		name string
		ids  []string
	}{
		{"missing id", []string{cID, aID}},
		{"extra id", []string{cID, aID, bID, "stray"}},
		{"unknown id", []string{cID, aID, "stray"}},
		{"repeated id", []string{cID, aID, aID}},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			before := []string{cat.Sections[0].SectionID, cat.Sections[1].SectionID, cat.Sections[2].SectionID}
			var verr *ValidationError
			if err := ReorderSections(cfg, CategoryAtArrival, tt.ids); !errors.As(err, &verr) {
				t.Fatalf("ReorderSections() error = %v, want ValidationError", err)
			}
			after := []string{cat.Sections[0].SectionID, cat.Sections[1].SectionID, cat.Sections[2].SectionID}
			for i := range before {
				if before[i] != after[i] {
					t.Errorf("rejected reorder still changed stored order")
				}
			}
		})
	}
}

func TestReorderFields(t *testing.T) {
	cfg := newInspectionConfig(t)
	sec := mustAddSection(t, cfg, CategoryAtArrival, "Exterior")
	f1 := mustAddField(t, cfg, sec.SectionID, "Paint", models.FieldTypeText)
	f2 := mustAddField(t, cfg, sec.SectionID, "Panels", models.FieldTypeNumber)
	id1, id2 := f1.FieldID, f2.FieldID

	if err := ReorderFields(cfg, sec.SectionID, []string{id2, id1}); err != nil {
		t.Fatalf("ReorderFields() error = %v", err)
	}
	_, got := mustIndex(t, cfg).Section(sec.SectionID)
	if got.Fields[0].FieldID != id2 || got.Fields[0].DisplayOrder != 0 {
		t.Errorf("field order not rewritten: %+v", got.Fields)
	}
	if err := ReorderFields(cfg, sec.SectionID, []string{id1}); err == nil {
		t.Errorf("partial id list must be rejected")
	}
}

func mustIndex(t *testing.T, cfg *models.InspectionConfig) *TreeIndex {
	t.Helper()
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		t.Fatalf("NewTreeIndex() error = %v", err)
	}
	return ix
}

func TestAddFieldDropdownBinding(t *testing.T) {
	cfg := newInspectionConfig(t)
	sec := mustAddSection(t, cfg, CategoryAtArrival, "Exterior")

	master := models.DropdownMaster{
		ID:        uuid.New(),
		CompanyID: cfg.CompanyID,
		Name:      "paint_condition",
		IsActive:  true,
	}
	lookup := &fakeDropdowns{masters: []models.DropdownMaster{master}}

	f, err := AddField(cfg, sec.SectionID, FieldParams{
		Name:           "Paint Condition",
		FieldType:      models.FieldTypeDropdown,
		DropdownConfig: &models.DropdownConfig{DropdownName: "paint_condition"},
	}, lookup)
	if err != nil {
		t.Fatalf("AddField() error = %v", err)
	}
	if f.DropdownConfig == nil || f.DropdownConfig.DropdownID != master.ID.String() {
		t.Errorf("binding not completed from master: %+v", f.DropdownConfig)
	}
	if f.DropdownConfig.DropdownName != master.Name {
		t.Errorf("DropdownName = %q, want %q", f.DropdownConfig.DropdownName, master.Name)
	}

	var verr *ValidationError
	_, err = AddField(cfg, sec.SectionID, FieldParams{
		Name:      "Unbound",
		FieldType: models.FieldTypeDropdown,
	}, lookup)
	if !errors.As(err, &verr) {
		t.Errorf("dropdown field without binding: error = %v, want ValidationError", err)
	}

	var nf *NotFoundError
	_, err = AddField(cfg, sec.SectionID, FieldParams{
		Name:           "Ghost",
		FieldType:      models.FieldTypeDropdown,
		DropdownConfig: &models.DropdownConfig{DropdownName: "no_such_list"},
	}, lookup)
	if !errors.As(err, &nf) {
		t.Errorf("unknown master: error = %v, want NotFoundError", err)
	}

	// inactive masters are not valid binding targets
	lookup.masters[0].IsActive = false
	_, err = AddField(cfg, sec.SectionID, FieldParams{
		Name:           "Inactive",
		FieldType:      models.FieldTypeDropdown,
		DropdownConfig: &models.DropdownConfig{DropdownName: "paint_condition"},
	}, lookup)
	if !errors.As(err, &nf) {
		t.Errorf("inactive master: error = %v, want NotFoundError", err)
	}
}

func TestUpdateFieldTypeChange(t *testing.T) {
	cfg := newInspectionConfig(t)
	sec := mustAddSection(t, cfg, CategoryAtArrival, "Exterior")
	f := mustAddField(t, cfg, sec.SectionID, "Condition", models.FieldTypeText)

	master := models.DropdownMaster{
		ID:        uuid.New(),
		CompanyID: cfg.CompanyID,
		Name:      "tyre_condition",
		IsActive:  true,
	}
	lookup := &fakeDropdowns{masters: []models.DropdownMaster{master}}

	// switching to dropdown without a binding is rejected
	dd := models.FieldTypeDropdown
	if err := UpdateField(cfg, f.FieldID, FieldUpdate{FieldType: &dd}, lookup); err == nil {
		t.Fatalf("type change to dropdown without binding must be rejected")
	}

	if err := UpdateField(cfg, f.FieldID, FieldUpdate{
		FieldType:      &dd,
		DropdownConfig: &models.DropdownConfig{DropdownName: "tyre_condition"},
	}, lookup); err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	_, _, got := mustIndex(t, cfg).Field(f.FieldID)
	if got.FieldType != models.FieldTypeDropdown || got.DropdownConfig == nil {
		t.Fatalf("type change not applied: %+v", got)
	}
	if got.DropdownConfig.DropdownID != master.ID.String() {
		t.Errorf("binding id = %q, want master id", got.DropdownConfig.DropdownID)
	}

	// switching back to text drops the binding
	text := models.FieldTypeText
	if err := UpdateField(cfg, f.FieldID, FieldUpdate{FieldType: &text}, lookup); err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	_, _, got = mustIndex(t, cfg).Field(f.FieldID)
	if got.DropdownConfig != nil {
		t.Errorf("binding must be cleared when leaving the dropdown type")
	}

	// a binding on a non-dropdown field is rejected
	num := models.FieldTypeNumber
	err := UpdateField(cfg, f.FieldID, FieldUpdate{
		FieldType:      &num,
		DropdownConfig: &models.DropdownConfig{DropdownName: "tyre_condition"},
	}, lookup)
	if err == nil {
		t.Errorf("dropdown_config on a number field must be rejected")
	}
}

func TestDeleteFieldReportsDanglingCalculations(t *testing.T) {
	cfg := newInspectionConfig(t)
	sec := mustAddSection(t, cfg, CategoryAfterReconditioning, "Reconditioning Costs")
	parts := mustAddField(t, cfg, sec.SectionID, "Parts", models.FieldTypeCurrency)
	labour := mustAddField(t, cfg, sec.SectionID, "Labour", models.FieldTypeCurrency)

	_, err := AddCalculation(cfg, CategoryAfterReconditioning, CalculationParams{
		Name: "Total Recon Cost",
		Formula: []models.FormulaToken{
			fieldTok(parts.FieldID, 0), opTok("+", 1), fieldTok(labour.FieldID, 2),
		},
	})
	if err != nil {
		t.Fatalf("AddCalculation() error = %v", err)
	}

	warnings, err := DeleteField(cfg, parts.FieldID)
	if err != nil {
		t.Fatalf("DeleteField() error = %v", err)
	}
	if len(warnings) != 1 || warnings[0] != "Total Recon Cost" {
		t.Errorf("warnings = %v, want [Total Recon Cost]", warnings)
	}
	// the calculation stays; its dangling reference evaluates as zero
	cat := cfg.Category(CategoryAfterReconditioning)
	if len(cat.Calculations) != 1 {
		t.Fatalf("calculation was deleted along with the field")
	}
	got, err := Evaluate(cat.Calculations[0].Formula, map[string]float64{labour.FieldID: 50})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != 50 {
		t.Errorf("dangling reference value = %v, want 50", got)
	}
}

func TestDeleteSectionReportsWarningsOnce(t *testing.T) {
	cfg := newInspectionConfig(t)
	sec := mustAddSection(t, cfg, CategoryAfterReconditioning, "Reconditioning Costs")
	parts := mustAddField(t, cfg, sec.SectionID, "Parts", models.FieldTypeCurrency)
	labour := mustAddField(t, cfg, sec.SectionID, "Labour", models.FieldTypeCurrency)

	// one calculation referencing both fields of the doomed section
	_, err := AddCalculation(cfg, CategoryAfterReconditioning, CalculationParams{
		Name: "Total Recon Cost",
		Formula: []models.FormulaToken{
			fieldTok(parts.FieldID, 0), opTok("+", 1), fieldTok(labour.FieldID, 2),
		},
	})
	if err != nil {
		t.Fatalf("AddCalculation() error = %v", err)
	}

	warnings, err := DeleteSection(cfg, sec.SectionID)
	if err != nil {
		t.Fatalf("DeleteSection() error = %v", err)
	}
	if len(warnings) != 1 || warnings[0] != "Total Recon Cost" {
		t.Errorf("warnings = %v, want the calculation named once", warnings)
	}
	if cfg.Category(CategoryAfterReconditioning).Sections != nil &&
		len(cfg.Category(CategoryAfterReconditioning).Sections) != 0 {
		t.Errorf("section not removed")
	}
}

func TestCalculationLifecycle(t *testing.T) {
	cfg := newInspectionConfig(t)
	sec := mustAddSection(t, cfg, CategoryAtArrival, "Costs")
	f := mustAddField(t, cfg, sec.SectionID, "Estimate", models.FieldTypeCurrency)

	calc, err := AddCalculation(cfg, CategoryAtArrival, CalculationParams{
		Name:    "Arrival Total",
		Formula: []models.FormulaToken{fieldTok(f.FieldID, 0)},
	})
	if err != nil {
		t.Fatalf("AddCalculation() error = %v", err)
	}
	if calc.InternalName != "arrival_total" {
		t.Errorf("InternalName = %q, want arrival_total", calc.InternalName)
	}
	if !calc.IsActive {
		t.Errorf("new calculation must start active")
	}

	// a broken replacement formula is rejected and the old one survives
	broken := []models.FormulaToken{fieldTok(f.FieldID, 0), opTok("+", 1)}
	if err := UpdateCalculation(cfg, calc.CalculationID, CalculationUpdate{Formula: &broken}); err == nil {
		t.Fatalf("UpdateCalculation() accepted a broken formula")
	}
	_, kept := mustIndex(t, cfg).Calculation(calc.CalculationID)
	if len(kept.Formula) != 1 {
		t.Errorf("rejected update still replaced the formula")
	}

	if err := SetCalculationActive(cfg, calc.CalculationID, false); err != nil {
		t.Fatalf("SetCalculationActive() error = %v", err)
	}
	_, kept = mustIndex(t, cfg).Calculation(calc.CalculationID)
	if kept.IsActive {
		t.Errorf("calculation not deactivated")
	}

	if err := DeleteCalculation(cfg, calc.CalculationID); err != nil {
		t.Fatalf("DeleteCalculation() error = %v", err)
	}
	if err := DeleteCalculation(cfg, calc.CalculationID); err == nil {
		t.Errorf("second delete must report not found")
	}

	if _, err := AddCalculation(cfg, CategoryAtArrival, CalculationParams{
		Name:    "No Formula",
		Formula: nil,
	}); err == nil {
		t.Errorf("AddCalculation() must reject an empty formula")
	}
}

func TestDeleteSectionRenumbersSurvivors(t *testing.T) {
	cfg := newInspectionConfig(t)
	a := mustAddSection(t, cfg, CategoryAtArrival, "A")
	mustAddSection(t, cfg, CategoryAtArrival, "B")
	if _, err := DeleteSection(cfg, a.SectionID); err != nil {
		t.Fatalf("DeleteSection() error = %v", err)
	}
	cat := cfg.Category(CategoryAtArrival)
	if len(cat.Sections) != 1 || cat.Sections[0].DisplayOrder != 0 {
		t.Errorf("surviving section not renumbered: %+v", cat.Sections)
	}
}
