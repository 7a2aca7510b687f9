package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purpose values for a configuration document.
const (
	PurposeInspection = "inspection"
	PurposeTradeIn    = "trade_in"
)

// FieldType enumerates the supported field kinds.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeCurrency    FieldType = "currency"
	FieldTypeDate        FieldType = "date"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeDropdown    FieldType = "dropdown"
	FieldTypeImage       FieldType = "image"
	FieldTypeVideo       FieldType = "video"
	FieldTypeMultiplier  FieldType = "multiplier" // quantity x unit price
	FieldTypeCalculation FieldType = "calculation"
)

// KnownFieldType reports whether t is one of the supported field types.
func KnownFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeCurrency, FieldTypeDate,
		FieldTypeBoolean, FieldTypeDropdown, FieldTypeImage, FieldTypeVideo,
		FieldTypeMultiplier, FieldTypeCalculation:
		return true
	}
	return false
}

// FieldValidation is the optional rule set attached to a field.
type FieldValidation struct {
	MinValue  *float64 `json:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// DropdownConfig binds a dropdown-typed field to a company DropdownMaster.
// CustomOptions are inline options not backed by the master list.
type DropdownConfig struct {
	DropdownID    string          `json:"dropdown_id"`
	DropdownName  string          `json:"dropdown_name,omitempty"`
	AllowMultiple bool            `json:"allow_multiple"`
	CustomOptions []DropdownValue `json:"custom_options,omitempty"`
}

// Field is one data-entry element inside a section. Field ids are unique
// across the whole configuration tree, not just within their section.
type Field struct {
	FieldID        string           `json:"field_id"`
	Name           string           `json:"name"`
	FieldType      FieldType        `json:"field_type"`
	IsRequired     bool             `json:"is_required"`
	Validation     *FieldValidation `json:"validation,omitempty"`
	DisplayOrder   int              `json:"display_order"`
	Placeholder    string           `json:"placeholder,omitempty"`
	HelpText       string           `json:"help_text,omitempty"`
	HasImage       bool             `json:"has_image"`
	HasNotes       bool             `json:"has_notes"`
	DropdownConfig *DropdownConfig  `json:"dropdown_config,omitempty"`
}

// Section groups fields. IsWorkshop marks sections injected during vehicle
// servicing rather than authored in the base configuration.
type Section struct {
	SectionID     string  `json:"section_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	DisplayOrder  int     `json:"display_order"`
	IsCollapsible bool    `json:"is_collapsible"`
	IsExpanded    bool    `json:"is_expanded"`
	IsWorkshop    bool    `json:"is_workshop"`
	Fields        []Field `json:"fields"`
}

// Formula token kinds.
type TokenType string

const (
	TokenField    TokenType = "field"
	TokenOperator TokenType = "operator"
)

// FormulaToken is one element of a calculation formula. Order determines the
// evaluation sequence; the array position of a token carries no meaning.
type FormulaToken struct {
	TokenType TokenType `json:"token_type"`
	FieldID   string    `json:"field_id,omitempty"`
	Operator  string    `json:"operator,omitempty"`
	Order     int       `json:"order"`
}

// Calculation is a derived numeric output defined per category.
type Calculation struct {
	CalculationID string         `json:"calculation_id"`
	Name          string         `json:"name"`
	InternalName  string         `json:"internal_name"`
	IsActive      bool           `json:"is_active"`
	Formula       []FormulaToken `json:"formula"`
}

// Category is the top level of the configuration tree.
type Category struct {
	CategoryID   string        `json:"category_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	IsActive     bool          `json:"is_active"`
	DisplayOrder int           `json:"display_order"`
	Sections     []Section     `json:"sections"`
	Calculations []Calculation `json:"calculations"`
}

// CategoryList is the JSONB column type holding the whole document tree.
type CategoryList []Category

// Scan implements the sql.Scanner interface for CategoryList
func (l *CategoryList) Scan(value interface{}) error {
	if value == nil {
		*l = CategoryList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into CategoryList", value)
	}
	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface for CategoryList
func (l CategoryList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Category{})
	}
	return json.Marshal(l)
}

// GormDataType defines the data type for GORM
func (CategoryList) GormDataType() string {
	return "jsonb"
}

// ConfigSettings holds the global knobs of a configuration.
type ConfigSettings struct {
	MaxPhotosPerField         int  `json:"max_photos_per_field"`
	MaxVideosPerField         int  `json:"max_videos_per_field"`
	AutosaveSeconds           int  `json:"autosave_seconds"`
	RequireCustomerSignature  bool `json:"require_customer_signature"`
	RequireInspectorSignature bool `json:"require_inspector_signature"`
}

// Scan implements the sql.Scanner interface for ConfigSettings
func (s *ConfigSettings) Scan(value interface{}) error {
	if value == nil {
		*s = ConfigSettings{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into ConfigSettings", value)
	}
	return json.Unmarshal(bytes, s)
}

// Value implements the driver.Valuer interface for ConfigSettings
func (s ConfigSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// GormDataType defines the data type for GORM
func (ConfigSettings) GormDataType() string {
	return "jsonb"
}

// InspectionConfig is one configuration document: the admin-authored template
// of categories/sections/fields and calculations for one company and purpose.
// Historical vehicle snapshots reference rows here by id, so in-use
// configurations are only ever deactivated, never hard-deleted.
type InspectionConfig struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	Company     *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Purpose     string    `gorm:"size:20;index;not null" json:"purpose"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Version     string    `gorm:"size:50;not null;default:'1.0.0'" json:"version"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	// At most one default per company and purpose; enforced by the mutation
	// API and backed by a partial unique index.
	IsDefault bool `gorm:"default:false" json:"is_default"`

	CreatedBy  *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	Settings   *ConfigSettings `gorm:"type:jsonb" json:"settings,omitempty"`
	Categories CategoryList    `gorm:"type:jsonb;not null;default:'[]'" json:"categories"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *InspectionConfig) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for InspectionConfig
func (InspectionConfig) TableName() string {
	return "inspection_configs"
}

// Category returns the category with the given id, or nil.
func (c *InspectionConfig) Category(categoryID string) *Category {
	for i := range c.Categories {
		if c.Categories[i].CategoryID == categoryID {
			return &c.Categories[i]
		}
	}
	return nil
}
