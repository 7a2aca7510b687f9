package inspection

import (
	"fmt"
	"strings"

	"dealerinspect/models"
)

// Label of the category synthesized when a workshop section from a snapshot
// has no matching category in the configuration.
const workshopCategoryName = "Workshop Additions"

// Legacy snapshots tagged workshop sections by id prefix before the explicit
// is_workshop flag existed. Still honored on merge so old vehicles render.
const legacyWorkshopPrefix = "ws_"

func isWorkshopResultSection(s models.ResultSection) bool {
	return s.IsWorkshop || strings.HasPrefix(s.SectionID, legacyWorkshopPrefix)
}

// Merge overlays the workshop sections found in a vehicle's saved snapshot
// onto a resolved configuration, so ad-hoc fields added during servicing stay
// visible on re-render. Sections are matched by id; a section whose id
// already exists anywhere in the configuration is never appended again, which
// makes the merge idempotent.
//
// The returned slice lists every workshop section now present, in tree order;
// callers serving the flat trade-in shape surface it directly.
func Merge(cfg *models.InspectionConfig, vehicle *models.Vehicle) ([]models.Section, error) {
	if vehicle != nil {
		switch cfg.Purpose {
		case models.PurposeTradeIn:
			sections, err := vehicle.TradeInSnapshot()
			if err != nil {
				return nil, fmt.Errorf("parse trade-in snapshot: %w", err)
			}
			if err := mergeFlat(cfg, sections); err != nil {
				return nil, err
			}
		default:
			cats, err := vehicle.InspectionSnapshot()
			if err != nil {
				return nil, fmt.Errorf("parse inspection snapshot: %w", err)
			}
			if err := mergeCategories(cfg, cats); err != nil {
				return nil, err
			}
		}
	}
	return workshopSections(cfg), nil
}

// mergeCategories handles the nested inspection shape: workshop sections are
// appended to the snapshot's category when the configuration has it, else to
// a synthesized workshop category at the end of the tree.
func mergeCategories(cfg *models.InspectionConfig, snapshot []models.ResultCategory) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	var synthesized *models.Category
	for _, rc := range snapshot {
		for _, rs := range rc.Sections {
			if !isWorkshopResultSection(rs) || ix.HasSection(rs.SectionID) {
				continue
			}
			target := ix.Category(rc.CategoryID)
			if target == nil {
				if synthesized == nil {
					cat, err := AddCategory(cfg, CategoryParams{Name: workshopCategoryName})
					if err != nil {
						return err
					}
					synthesized = cat
				}
				target = synthesized
			}
			appendWorkshopSection(target, rs)
			// rebuild so later snapshot entries see the appended section
			ix, err = NewTreeIndex(cfg)
			if err != nil {
				return err
			}
			if synthesized != nil {
				synthesized = ix.Category(synthesized.CategoryID)
			}
		}
	}
	return nil
}

// mergeFlat handles the trade-in shape: the snapshot is a flat section list
// and workshop sections append to the single trade-in category.
func mergeFlat(cfg *models.InspectionConfig, snapshot []models.ResultSection) error {
	ix, err := NewTreeIndex(cfg)
	if err != nil {
		return err
	}
	target := ix.Category(CategoryTradeIn)
	if target == nil {
		if len(cfg.Categories) == 0 {
			cat, err := AddCategory(cfg, CategoryParams{Name: workshopCategoryName})
			if err != nil {
				return err
			}
			target = cat
		} else {
			target = &cfg.Categories[0]
		}
	}
	for _, rs := range snapshot {
		if !isWorkshopResultSection(rs) {
			continue
		}
		if _, existing := ix.Section(rs.SectionID); existing != nil {
			continue
		}
		appendWorkshopSection(target, rs)
		ix, err = NewTreeIndex(cfg)
		if err != nil {
			return err
		}
		target = ix.Category(target.CategoryID)
	}
	return nil
}

// appendWorkshopSection converts a snapshot section back into a definition
// section and appends it. Entered values stay in the snapshot; only the
// shape (ids, names, types) carries over.
func appendWorkshopSection(cat *models.Category, rs models.ResultSection) {
	sec := models.Section{
		SectionID:    rs.SectionID,
		Name:         rs.Name,
		DisplayOrder: len(cat.Sections),
		IsExpanded:   true,
		IsWorkshop:   true,
		Fields:       make([]models.Field, 0, len(rs.Fields)),
	}
	for i, rf := range rs.Fields {
		ft := rf.FieldType
		if !models.KnownFieldType(ft) {
			ft = models.FieldTypeText
		}
		sec.Fields = append(sec.Fields, models.Field{
			FieldID:      rf.FieldID,
			Name:         rf.Name,
			FieldType:    ft,
			DisplayOrder: i,
			HasNotes:     true,
		})
	}
	cat.Sections = append(cat.Sections, sec)
}

// workshopSections collects every workshop-tagged section in tree order.
func workshopSections(cfg *models.InspectionConfig) []models.Section {
	var out []models.Section
	for ci := range cfg.Categories {
		for _, sec := range cfg.Categories[ci].Sections {
			if sec.IsWorkshop || strings.HasPrefix(sec.SectionID, legacyWorkshopPrefix) {
				out = append(out, sec)
			}
		}
	}
	return out
}
