package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// S3Config is the company's attachment storage settings, stored as JSONB and
// handed to clients with resolved configurations. The backend never uploads
// with these credentials.
type S3Config struct {
	Bucket      string `json:"bucket"`
	Region      string `json:"region"`
	AccessKeyID string `json:"access_key_id,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
	PathPrefix  string `json:"path_prefix,omitempty"`
}

// Scan implements the sql.Scanner interface for S3Config
func (s *S3Config) Scan(value interface{}) error {
	if value == nil {
		*s = S3Config{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into S3Config", value)
	}
	return json.Unmarshal(bytes, s)
}

// Value implements the driver.Valuer interface for S3Config
func (s S3Config) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// GormDataType defines the data type for GORM
func (S3Config) GormDataType() string {
	return "jsonb"
}

// Company is the tenant boundary. Every other row carries its id, and the JWT
// company claim is the only way a request acquires one.
type Company struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Email    string    `gorm:"size:100" json:"email,omitempty"`
	Phone    string    `gorm:"size:20" json:"phone,omitempty"`
	Address  string    `gorm:"type:text" json:"address,omitempty"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	S3Config *S3Config `gorm:"type:jsonb" json:"s3_config,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for Company
func (Company) TableName() string {
	return "companies"
}
