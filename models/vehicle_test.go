package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestVehicleSnapshots(t *testing.T) {
	v := &Vehicle{}
	cats, err := v.InspectionSnapshot()
	if err != nil || cats != nil {
		t.Errorf("empty column: cats = %v, err = %v", cats, err)
	}

	v.InspectionResult = []byte(`[{"category_id":"at_arrival","name":"At Arrival","sections":[{"section_id":"s1","name":"Exterior","is_workshop":true,"fields":[{"field_id":"f1","name":"Paint","field_type":"text","value":"ok"}]}]}]`)
	cats, err = v.InspectionSnapshot()
	if err != nil {
		t.Fatalf("InspectionSnapshot() error = %v", err)
	}
	if len(cats) != 1 || !cats[0].Sections[0].IsWorkshop {
		t.Errorf("snapshot = %+v", cats)
	}

	v.TradeInResult = []byte(`[{"section_id":"s1","name":"Valuation","fields":[]}]`)
	secs, err := v.TradeInSnapshot()
	if err != nil {
		t.Fatalf("TradeInSnapshot() error = %v", err)
	}
	if len(secs) != 1 || secs[0].Name != "Valuation" {
		t.Errorf("trade-in snapshot = %+v", secs)
	}

	v.InspectionResult = []byte(`{"not":"an array"}`)
	if _, err := v.InspectionSnapshot(); err == nil {
		t.Errorf("malformed snapshot must error")
	}
}

func TestVehicleLastConfigID(t *testing.T) {
	insp := uuid.New()
	trade := uuid.New()
	v := &Vehicle{LastInspectionConfigID: &insp, LastTradeInConfigID: &trade}

	if got := v.LastConfigID(PurposeInspection); got == nil || *got != insp {
		t.Errorf("inspection back-reference = %v", got)
	}
	if got := v.LastConfigID(PurposeTradeIn); got == nil || *got != trade {
		t.Errorf("trade-in back-reference = %v", got)
	}
	if got := (&Vehicle{}).LastConfigID(PurposeInspection); got != nil {
		t.Errorf("unset back-reference must be nil")
	}
}
