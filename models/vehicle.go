package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vehicle is one stock unit. Its result columns hold the filled-in inspection
// and trade-in snapshots verbatim as submitted by the client; the server never
// regenerates them from a configuration, it only renders them against one.
type Vehicle struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;index:idx_vehicles_company_stock_type,unique;not null" json:"company_id"`
	StockID   string    `gorm:"size:50;index:idx_vehicles_company_stock_type,unique;not null" json:"stock_id"`
	Type      string    `gorm:"size:20;index:idx_vehicles_company_stock_type,unique;not null" json:"type"`

	Make           string `gorm:"size:100" json:"make,omitempty"`
	Model          string `gorm:"size:100" json:"model,omitempty"`
	Year           int    `json:"year,omitempty"`
	VIN            string `gorm:"column:vin;size:50" json:"vin,omitempty"`
	RegistrationNo string `gorm:"size:50" json:"registration_no,omitempty"`
	Odometer       int    `json:"odometer,omitempty"`

	InspectionResult datatypes.JSON `gorm:"type:jsonb" json:"inspection_result,omitempty"`
	TradeInResult    datatypes.JSON `gorm:"type:jsonb" json:"trade_in_result,omitempty"`

	// Back-references to the configuration each snapshot was rendered against,
	// so subsequent views replay the exact same configuration version.
	LastInspectionConfigID *uuid.UUID `gorm:"type:uuid" json:"last_inspection_config_id,omitempty"`
	LastTradeInConfigID    *uuid.UUID `gorm:"column:last_tradein_config_id;type:uuid" json:"last_tradein_config_id,omitempty"`

	ReportPdfURL string `gorm:"size:500" json:"report_pdf_url,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for Vehicle
func (Vehicle) TableName() string {
	return "vehicles"
}

// ResultField is one filled-in field inside a result snapshot.
type ResultField struct {
	FieldID   string          `json:"field_id"`
	Name      string          `json:"name"`
	FieldType FieldType       `json:"field_type"`
	Value     json.RawMessage `json:"value,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Images    []string        `json:"images,omitempty"`
	Videos    []string        `json:"videos,omitempty"`
}

// ResultSection mirrors a configuration section with entered values.
type ResultSection struct {
	SectionID  string        `json:"section_id"`
	Name       string        `json:"name"`
	IsWorkshop bool          `json:"is_workshop"`
	Fields     []ResultField `json:"fields"`
}

// ResultCategory mirrors a configuration category with entered values.
type ResultCategory struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Sections   []ResultSection `json:"sections"`
}

// InspectionSnapshot parses the saved inspection result. An empty column
// yields an empty slice.
func (v *Vehicle) InspectionSnapshot() ([]ResultCategory, error) {
	return parseCategories(v.InspectionResult)
}

// TradeInSnapshot parses the saved trade-in result. The trade-in shape is
// flat: an array of sections with no category level.
func (v *Vehicle) TradeInSnapshot() ([]ResultSection, error) {
	if len(v.TradeInResult) == 0 {
		return nil, nil
	}
	var sections []ResultSection
	if err := json.Unmarshal(v.TradeInResult, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// LastConfigID returns the stored config back-reference for a purpose.
func (v *Vehicle) LastConfigID(purpose string) *uuid.UUID {
	if purpose == PurposeTradeIn {
		return v.LastTradeInConfigID
	}
	return v.LastInspectionConfigID
}

func parseCategories(raw datatypes.JSON) ([]ResultCategory, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var cats []ResultCategory
	if err := json.Unmarshal(raw, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}
