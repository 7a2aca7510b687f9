package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DropdownValue is one selectable option inside a dropdown master list.
type DropdownValue struct {
	ID           string `json:"id"`
	Value        string `json:"value"`
	DisplayValue string `json:"display_value"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
	IsDefault    bool   `json:"is_default"`
}

// DropdownValueList is the JSONB column type for a master's option list.
type DropdownValueList []DropdownValue

// Scan implements the sql.Scanner interface for DropdownValueList
func (l *DropdownValueList) Scan(value interface{}) error {
	if value == nil {
		*l = DropdownValueList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into DropdownValueList", value)
	}
	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface for DropdownValueList
func (l DropdownValueList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]DropdownValue{})
	}
	return json.Marshal(l)
}

// GormDataType defines the data type for GORM
func (DropdownValueList) GormDataType() string {
	return "jsonb"
}

// DropdownMaster is a company-scoped reusable option list that dropdown-typed
// configuration fields bind to by id.
type DropdownMaster struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID         `gorm:"type:uuid;index:idx_dropdowns_company_name,unique;not null" json:"company_id"`
	Name        string            `gorm:"size:100;index:idx_dropdowns_company_name,unique;not null" json:"name"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool              `gorm:"default:true" json:"is_active"`
	Values      DropdownValueList `gorm:"type:jsonb;not null;default:'[]'" json:"values"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *DropdownMaster) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for DropdownMaster
func (DropdownMaster) TableName() string {
	return "dropdown_masters"
}

// ActiveValues returns the option list filtered to active entries, in
// display order. The stored order of Values is not trusted.
func (d *DropdownMaster) ActiveValues() []DropdownValue {
	out := make([]DropdownValue, 0, len(d.Values))
	for _, v := range d.Values {
		if v.IsActive {
			out = append(out, v)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].DisplayOrder < out[j-1].DisplayOrder; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
