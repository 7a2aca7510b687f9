package models

import "testing"

func TestActiveValues(t *testing.T) {
	m := DropdownMaster{
		Name: "paint_condition",
		Values: DropdownValueList{
			{ID: "v3", Value: "poor", DisplayOrder: 2, IsActive: true},
			{ID: "v1", Value: "excellent", DisplayOrder: 0, IsActive: true},
			{ID: "v2", Value: "good", DisplayOrder: 1, IsActive: false},
		},
	}
	got := m.ActiveValues()
	if len(got) != 2 {
		t.Fatalf("ActiveValues() = %d entries, want 2", len(got))
	}
	if got[0].ID != "v1" || got[1].ID != "v3" {
		t.Errorf("order = [%s %s], want [v1 v3]", got[0].ID, got[1].ID)
	}
}

func TestDropdownValueListScanNil(t *testing.T) {
	var l DropdownValueList
	if err := l.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if l == nil || len(l) != 0 {
		t.Errorf("Scan(nil) = %+v, want empty list", l)
	}
}
