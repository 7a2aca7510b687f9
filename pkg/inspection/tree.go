package inspection

import (
	"github.com/google/uuid"

	"dealerinspect/models"
)

// NewNodeID returns a fresh id for a tree node (category, section, field or
// calculation). Ids are stable once assigned and never reused.
func NewNodeID() string {
	return uuid.NewString()
}

// TreeIndex maps node ids to their positions inside a configuration tree so
// lookups do not rescan the nested arrays. Positions are indexes rather than
// pointers; any structural mutation (append, delete, reorder) invalidates the
// index and callers must rebuild it.
type TreeIndex struct {
	cfg          *models.InspectionConfig
	categories   map[string]int
	sections     map[string][2]int
	fields       map[string][3]int
	calculations map[string][2]int
}

// NewTreeIndex builds the id index for cfg. Duplicate ids anywhere in the
// tree violate a structural invariant and yield a ValidationError.
func NewTreeIndex(cfg *models.InspectionConfig) (*TreeIndex, error) {
	ix := &TreeIndex{
		cfg:          cfg,
		categories:   make(map[string]int),
		sections:     make(map[string][2]int),
		fields:       make(map[string][3]int),
		calculations: make(map[string][2]int),
	}
	for ci := range cfg.Categories {
		cat := &cfg.Categories[ci]
		if _, dup := ix.categories[cat.CategoryID]; dup {
			return nil, invalid("duplicate category id %s", cat.CategoryID)
		}
		ix.categories[cat.CategoryID] = ci
		for si := range cat.Sections {
			sec := &cat.Sections[si]
			if _, dup := ix.sections[sec.SectionID]; dup {
				return nil, invalid("duplicate section id %s", sec.SectionID)
			}
			ix.sections[sec.SectionID] = [2]int{ci, si}
			for fi := range sec.Fields {
				f := &sec.Fields[fi]
				if _, dup := ix.fields[f.FieldID]; dup {
					return nil, invalid("duplicate field id %s", f.FieldID)
				}
				ix.fields[f.FieldID] = [3]int{ci, si, fi}
			}
		}
		for li := range cat.Calculations {
			calc := &cat.Calculations[li]
			if _, dup := ix.calculations[calc.CalculationID]; dup {
				return nil, invalid("duplicate calculation id %s", calc.CalculationID)
			}
			ix.calculations[calc.CalculationID] = [2]int{ci, li}
		}
	}
	return ix, nil
}

// Category returns the category with the given id, or nil.
func (ix *TreeIndex) Category(id string) *models.Category {
	ci, ok := ix.categories[id]
	if !ok {
		return nil
	}
	return &ix.cfg.Categories[ci]
}

// Section returns a section and its owning category, or nils.
func (ix *TreeIndex) Section(id string) (*models.Category, *models.Section) {
	pos, ok := ix.sections[id]
	if !ok {
		return nil, nil
	}
	cat := &ix.cfg.Categories[pos[0]]
	return cat, &cat.Sections[pos[1]]
}

// Field returns a field together with its owning section and category.
// Fields carry no parent pointer in the wire format; this is the only lookup
// path.
func (ix *TreeIndex) Field(id string) (*models.Category, *models.Section, *models.Field) {
	pos, ok := ix.fields[id]
	if !ok {
		return nil, nil, nil
	}
	cat := &ix.cfg.Categories[pos[0]]
	sec := &cat.Sections[pos[1]]
	return cat, sec, &sec.Fields[pos[2]]
}

// Calculation returns a calculation and its owning category, or nils.
func (ix *TreeIndex) Calculation(id string) (*models.Category, *models.Calculation) {
	pos, ok := ix.calculations[id]
	if !ok {
		return nil, nil
	}
	cat := &ix.cfg.Categories[pos[0]]
	return cat, &cat.Calculations[pos[1]]
}

// HasSection reports whether a section id exists anywhere in the tree.
func (ix *TreeIndex) HasSection(id string) bool {
	_, ok := ix.sections[id]
	return ok
}
