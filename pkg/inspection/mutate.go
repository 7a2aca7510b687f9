package inspection

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dealerinspect/models"
)

// Seeded category ids for inspection configurations. These three are created
// with every inspection configuration and are never renamed or deleted.
const (
	CategoryAtArrival           = "at_arrival"
	CategoryAfterReconditioning = "after_reconditioning"
	CategoryAfterGrooming       = "after_grooming"
	CategoryTradeIn             = "trade_in"
)

// ValidatePurpose checks the purpose enum.
func ValidatePurpose(purpose string) error {
	if purpose != models.PurposeInspection && purpose != models.PurposeTradeIn {
		return invalid("invalid purpose %q", purpose)
	}
	return nil
}

// SeedCategories populates a freshly created configuration with its fixed
// categories: the three inspection stages, or the single flat trade-in
// category.
func SeedCategories(cfg *models.InspectionConfig) error {
	if err := ValidatePurpose(cfg.Purpose); err != nil {
		return err
	}
	if len(cfg.Categories) > 0 {
		return invalid("configuration already has categories")
	}
	seed := func(id, name string, order int) models.Category {
		return models.Category{
			CategoryID:   id,
			Name:         name,
			IsActive:     true,
			DisplayOrder: order,
			Sections:     []models.Section{},
			Calculations: []models.Calculation{},
		}
	}
	if cfg.Purpose == models.PurposeTradeIn {
		cfg.Categories = models.CategoryList{seed(CategoryTradeIn, "Trade-In", 0)}
		return nil
	}
	cfg.Categories = models.CategoryList{
		seed(CategoryAtArrival, "At Arrival", 0),
		seed(CategoryAfterReconditioning, "After Reconditioning", 1),
		seed(CategoryAfterGrooming, "After Grooming", 2),
	}
	return nil
}

func isSeededCategory(id string) bool {
	switch id {
	case CategoryAtArrival, CategoryAfterReconditioning, CategoryAfterGrooming, CategoryTradeIn:
		return true
	}
	return false
}

// DropdownLookup resolves an active, company-owned dropdown master by id or
// name. Implementations return (nil, nil) when no active match exists.
type DropdownLookup interface {
	FindDropdown(companyID uuid.UUID, idOrName string) (*models.DropdownMaster, error)
}

// CategoryParams carries the caller-editable attributes of a category.
type CategoryParams struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddCategory appends a new category at the end of the tree.
func AddCategory(cfg *models.InspectionConfig, p CategoryParams) (*models.Category, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, invalid("category name is required")
	}
	cat := models.Category{
		CategoryID:   NewNodeID(),
		Name:         p.Name,
		Description:  p.Description,
		IsActive:     true,
		DisplayOrder: len(cfg.Categories),
		Sections:     []models.Section{},
		Calculations: []models.Calculation{},
	}
	cfg.Categories = append(cfg.Categories, cat)
	return &cfg.Categories[len(cfg.Categories)-1], nil
}

// CategoryUpdate holds optional new values; nil means leave unchanged.
type CategoryUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateCategory edits a category in place. Seeded categories cannot be
// renamed, only described or toggled.
func UpdateCategory(cfg *models.InspectionConfig, categoryID string, u CategoryUpdate) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	cat := ix.Category(categoryID)
	if cat == nil {
		return notFound("category", categoryID)
	}
	if u.Name != nil {
		if isSeededCategory(categoryID) {
			return invalid("seeded category %s cannot be renamed", categoryID)
		}
		if strings.TrimSpace(*u.Name) == "" {
			return invalid("category name is required")
		}
		cat.Name = *u.Name
	}
	if u.Description != nil {
		cat.Description = *u.Description
	}
	if u.IsActive != nil {
		cat.IsActive = *u.IsActive
	}
	return nil
}

// DeleteCategory removes a non-seeded category and everything under it.
func DeleteCategory(cfg *models.InspectionConfig, categoryID string) error {
	if isSeededCategory(categoryID) {
		return invalid("seeded category %s cannot be deleted", categoryID)
	}
	for i := range cfg.Categories {
		if cfg.Categories[i].CategoryID == categoryID {
			cfg.Categories = append(cfg.Categories[:i], cfg.Categories[i+1:]...)
			renumberCategories(cfg)
			return nil
		}
	}
	return notFound("category", categoryID)
}

// SectionParams carries the caller-editable attributes of a section.
type SectionParams struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	IsCollapsible bool   `json:"is_collapsible"`
	IsExpanded    bool   `json:"is_expanded"`
	IsWorkshop    bool   `json:"is_workshop"`
}

// AddSection appends a new section to a category.
func AddSection(cfg *models.InspectionConfig, categoryID string, p SectionParams) (*models.Section, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, invalid("section name is required")
	}
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return nil, err
	}
	cat := ix.Category(categoryID)
	if cat == nil {
		return nil, notFound("category", categoryID)
	}
	sec := models.Section{
		SectionID:     NewNodeID(),
		Name:          p.Name,
		Description:   p.Description,
		DisplayOrder:  len(cat.Sections),
		IsCollapsible: p.IsCollapsible,
		IsExpanded:    p.IsExpanded,
		IsWorkshop:    p.IsWorkshop,
		Fields:        []models.Field{},
	}
	cat.Sections = append(cat.Sections, sec)
	return &cat.Sections[len(cat.Sections)-1], nil
}

// SectionUpdate holds optional new values; nil means leave unchanged.
type SectionUpdate struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	IsCollapsible *bool   `json:"is_collapsible"`
	IsExpanded    *bool   `json:"is_expanded"`
}

// UpdateSection edits a section in place, located by id across the tree.
func UpdateSection(cfg *models.InspectionConfig, sectionID string, u SectionUpdate) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	_, sec := ix.Section(sectionID)
	if sec == nil {
		return notFound("section", sectionID)
	}
	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			return invalid("section name is required")
		}
		sec.Name = *u.Name
	}
	if u.Description != nil {
		sec.Description = *u.Description
	}
	if u.IsCollapsible != nil {
		sec.IsCollapsible = *u.IsCollapsible
	}
	if u.IsExpanded != nil {
		sec.IsExpanded = *u.IsExpanded
	}
	return nil
}

// DeleteSection removes a section and all its fields. Calculations that
// referenced those fields are left in place; their names come back as
// warnings so the caller can surface them.
func DeleteSection(cfg *models.InspectionConfig, sectionID string) ([]string, error) {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return nil, err
	}
	cat, sec := ix.Section(sectionID)
	if sec == nil {
		return nil, notFound("section", sectionID)
	}
	var warnings []string
	for _, f := range sec.Fields {
		warnings = append(warnings, danglingCalculations(cfg, f.FieldID)...)
	}
	for i := range cat.Sections {
		if cat.Sections[i].SectionID == sectionID {
			cat.Sections = append(cat.Sections[:i], cat.Sections[i+1:]...)
			break
		}
	}
	renumberSections(cat)
	return dedupe(warnings), nil
}

// ReorderSections rewrites the section order of a category. The submitted id
// list must be exactly the existing set; anything missing, extra or repeated
// rejects the mutation with no change to stored order.
func ReorderSections(cfg *models.InspectionConfig, categoryID string, ids []string) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	cat := ix.Category(categoryID)
	if cat == nil {
		return notFound("category", categoryID)
	}
	reordered, err := reorder(len(cat.Sections), ids, func(i int) string { return cat.Sections[i].SectionID })
	if err != nil {
		return err
	}
	next := make([]models.Section, len(cat.Sections))
	for to, from := range reordered {
		next[to] = cat.Sections[from]
		next[to].DisplayOrder = to
	}
	cat.Sections = next
	return nil
}

// FieldParams carries the caller-supplied definition of a new field.
type FieldParams struct {
	Name           string                  `json:"name"`
	FieldType      models.FieldType        `json:"field_type"`
	IsRequired     bool                    `json:"is_required"`
	Validation     *models.FieldValidation `json:"validation"`
	Placeholder    string                  `json:"placeholder"`
	HelpText       string                  `json:"help_text"`
	HasImage       bool                    `json:"has_image"`
	HasNotes       bool                    `json:"has_notes"`
	DropdownConfig *models.DropdownConfig  `json:"dropdown_config"`
}

// AddField appends a new field to a section. Dropdown-typed fields must carry
// a binding to an active dropdown master of the same company; the binding's
// dropdown_id is filled in from the master on success.
func AddField(cfg *models.InspectionConfig, sectionID string, p FieldParams, dropdowns DropdownLookup) (*models.Field, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, invalid("field name is required")
	}
	if !models.KnownFieldType(p.FieldType) {
		return nil, invalid("unknown field type %q", string(p.FieldType))
	}
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return nil, err
	}
	_, sec := ix.Section(sectionID)
	if sec == nil {
		return nil, notFound("section", sectionID)
	}
	dc, err := resolveDropdownBinding(cfg, p.FieldType, p.DropdownConfig, dropdowns)
	if err != nil {
		return nil, err
	}
	f := models.Field{
		FieldID:        NewNodeID(),
		Name:           p.Name,
		FieldType:      p.FieldType,
		IsRequired:     p.IsRequired,
		Validation:     p.Validation,
		DisplayOrder:   len(sec.Fields),
		Placeholder:    p.Placeholder,
		HelpText:       p.HelpText,
		HasImage:       p.HasImage,
		HasNotes:       p.HasNotes,
		DropdownConfig: dc,
	}
	sec.Fields = append(sec.Fields, f)
	return &sec.Fields[len(sec.Fields)-1], nil
}

// FieldUpdate holds optional new values; nil means leave unchanged.
type FieldUpdate struct {
	Name           *string                 `json:"name"`
	FieldType      *models.FieldType       `json:"field_type"`
	IsRequired     *bool                   `json:"is_required"`
	Validation     *models.FieldValidation `json:"validation"`
	Placeholder    *string                 `json:"placeholder"`
	HelpText       *string                 `json:"help_text"`
	HasImage       *bool                   `json:"has_image"`
	HasNotes       *bool                   `json:"has_notes"`
	DropdownConfig *models.DropdownConfig  `json:"dropdown_config"`
}

// UpdateField edits a field located by id across the whole tree. Changing the
// type to dropdown makes the binding mandatory and re-validates it before the
// write commits.
func UpdateField(cfg *models.InspectionConfig, fieldID string, u FieldUpdate, dropdowns DropdownLookup) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	_, _, f := ix.Field(fieldID)
	if f == nil {
		return notFound("field", fieldID)
	}
	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			return invalid("field name is required")
		}
		f.Name = *u.Name
	}
	newType := f.FieldType
	if u.FieldType != nil {
		if !models.KnownFieldType(*u.FieldType) {
			return invalid("unknown field type %q", string(*u.FieldType))
		}
		newType = *u.FieldType
	}
	binding := f.DropdownConfig
	if u.DropdownConfig != nil {
		binding = u.DropdownConfig
	}
	if newType == models.FieldTypeDropdown {
		dc, err := resolveDropdownBinding(cfg, newType, binding, dropdowns)
		if err != nil {
			return err
		}
		f.DropdownConfig = dc
	} else {
		f.DropdownConfig = nil
		if u.DropdownConfig != nil {
			return invalid("dropdown_config only applies to dropdown fields")
		}
	}
	f.FieldType = newType
	if u.IsRequired != nil {
		f.IsRequired = *u.IsRequired
	}
	if u.Validation != nil {
		f.Validation = u.Validation
	}
	if u.Placeholder != nil {
		f.Placeholder = *u.Placeholder
	}
	if u.HelpText != nil {
		f.HelpText = *u.HelpText
	}
	if u.HasImage != nil {
		f.HasImage = *u.HasImage
	}
	if u.HasNotes != nil {
		f.HasNotes = *u.HasNotes
	}
	return nil
}

// DeleteField removes a field located by id across the whole tree. A formula
// that referenced the field keeps its token (the evaluator reads it as 0);
// the affected calculation names are returned as warnings.
func DeleteField(cfg *models.InspectionConfig, fieldID string) ([]string, error) {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return nil, err
	}
	_, sec, f := ix.Field(fieldID)
	if f == nil {
		return nil, notFound("field", fieldID)
	}
	warnings := danglingCalculations(cfg, fieldID)
	for i := range sec.Fields {
		if sec.Fields[i].FieldID == fieldID {
			sec.Fields = append(sec.Fields[:i], sec.Fields[i+1:]...)
			break
		}
	}
	renumberFields(sec)
	return warnings, nil
}

// ReorderFields rewrites the field order of a section; same totality rules as
// ReorderSections.
func ReorderFields(cfg *models.InspectionConfig, sectionID string, ids []string) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	_, sec := ix.Section(sectionID)
	if sec == nil {
		return notFound("section", sectionID)
	}
	reordered, err := reorder(len(sec.Fields), ids, func(i int) string { return sec.Fields[i].FieldID })
	if err != nil {
		return err
	}
	next := make([]models.Field, len(sec.Fields))
	for to, from := range reordered {
		next[to] = sec.Fields[from]
		next[to].DisplayOrder = to
	}
	sec.Fields = next
	return nil
}

// CalculationParams carries the caller-supplied definition of a calculation.
type CalculationParams struct {
	Name         string                `json:"name"`
	InternalName string                `json:"internal_name"`
	Formula      []models.FormulaToken `json:"formula"`
}

// AddCalculation appends a calculation to a category after validating its
// formula against the structural invariants.
func AddCalculation(cfg *models.InspectionConfig, categoryID string, p CalculationParams) (*models.Calculation, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, invalid("calculation name is required")
	}
	if err := ValidateFormula(p.Formula); err != nil {
		return nil, err
	}
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return nil, err
	}
	cat := ix.Category(categoryID)
	if cat == nil {
		return nil, notFound("category", categoryID)
	}
	internal := p.InternalName
	if internal == "" {
		internal = internalName(p.Name)
	}
	calc := models.Calculation{
		CalculationID: NewNodeID(),
		Name:          p.Name,
		InternalName:  internal,
		IsActive:      true,
		Formula:       p.Formula,
	}
	cat.Calculations = append(cat.Calculations, calc)
	return &cat.Calculations[len(cat.Calculations)-1], nil
}

// CalculationUpdate holds optional new values; nil means leave unchanged.
type CalculationUpdate struct {
	Name    *string                `json:"name"`
	Formula *[]models.FormulaToken `json:"formula"`
}

// UpdateCalculation edits a calculation; a replacement formula is validated
// before it is accepted.
func UpdateCalculation(cfg *models.InspectionConfig, calculationID string, u CalculationUpdate) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	_, calc := ix.Calculation(calculationID)
	if calc == nil {
		return notFound("calculation", calculationID)
	}
	if u.Formula != nil {
		if err := ValidateFormula(*u.Formula); err != nil {
			return err
		}
		calc.Formula = *u.Formula
	}
	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			return invalid("calculation name is required")
		}
		calc.Name = *u.Name
	}
	return nil
}

// SetCalculationActive toggles a calculation without touching its formula.
func SetCalculationActive(cfg *models.InspectionConfig, calculationID string, active bool) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	_, calc := ix.Calculation(calculationID)
	if calc == nil {
		return notFound("calculation", calculationID)
	}
	calc.IsActive = active
	return nil
}

// DeleteCalculation removes a calculation from its category.
func DeleteCalculation(cfg *models.InspectionConfig, calculationID string) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	cat, calc := ix.Calculation(calculationID)
	if calc == nil {
		return notFound("calculation", calculationID)
	}
	for i := range cat.Calculations {
		if cat.Calculations[i].CalculationID == calculationID {
			cat.Calculations = append(cat.Calculations[:i], cat.Calculations[i+1:]...)
			return nil
		}
	}
	return notFound("calculation", calculationID)
}

// resolveDropdownBinding validates and completes a dropdown binding. For
// non-dropdown types it passes nil through. The returned binding always has
// DropdownID set to the master's id.
func resolveDropdownBinding(cfg *models.InspectionConfig, t models.FieldType, dc *models.DropdownConfig, dropdowns DropdownLookup) (*models.DropdownConfig, error) {
	if t != models.FieldTypeDropdown {
		return nil, nil
	}
	if dc == nil || (dc.DropdownID == "" && dc.DropdownName == "") {
		return nil, invalid("dropdown field requires a dropdown_config binding")
	}
	if dropdowns == nil {
		return nil, invalid("dropdown binding cannot be validated without a dropdown lookup")
	}
	ref := dc.DropdownID
	if ref == "" {
		ref = dc.DropdownName
	}
	master, err := dropdowns.FindDropdown(cfg.CompanyID, ref)
	if err != nil {
		return nil, fmt.Errorf("dropdown lookup: %w", err)
	}
	if master == nil {
		return nil, notFound("dropdown", ref)
	}
	bound := *dc
	bound.DropdownID = master.ID.String()
	bound.DropdownName = master.Name
	return &bound, nil
}

// danglingCalculations returns the names of calculations whose formulas
// reference the given field.
func danglingCalculations(cfg *models.InspectionConfig, fieldID string) []string {
	var names []string
	for ci := range cfg.Categories {
		for _, calc := range cfg.Categories[ci].Calculations {
			for _, tok := range calc.Formula {
				if tok.TokenType == models.TokenField && tok.FieldID == fieldID {
					names = append(names, calc.Name)
					break
				}
			}
		}
	}
	return names
}

// reorder validates that ids is an exact permutation of the existing id set
// and returns, per target position, the current index to move from.
func reorder(n int, ids []string, idAt func(int) string) ([]int, error) {
	if len(ids) != n {
		return nil, invalid("reorder list has %d ids, expected %d", len(ids), n)
	}
	current := make(map[string]int, n)
	for i := 0; i < n; i++ {
		current[idAt(i)] = i
	}
	seen := make(map[string]bool, n)
	out := make([]int, n)
	for to, id := range ids {
		from, ok := current[id]
		if !ok {
			return nil, invalid("reorder list contains unknown id %s", id)
		}
		if seen[id] {
			return nil, invalid("reorder list repeats id %s", id)
		}
		seen[id] = true
		out[to] = from
	}
	return out, nil
}

func renumberCategories(cfg *models.InspectionConfig) {
	for i := range cfg.Categories {
		cfg.Categories[i].DisplayOrder = i
	}
}

func renumberSections(cat *models.Category) {
	for i := range cat.Sections {
		cat.Sections[i].DisplayOrder = i
	}
}

func renumberFields(sec *models.Section) {
	for i := range sec.Fields {
		sec.Fields[i].DisplayOrder = i
	}
}

func internalName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

func dedupe(in []string) []string {
	if len(in) < 2 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
