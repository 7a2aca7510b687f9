package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"dealerinspect/config"
	"dealerinspect/middleware"
	"dealerinspect/models"
	"dealerinspect/pkg/inspection"
)

type createConfigReq struct {
	Purpose     string                 `json:"purpose"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Version     string                 `json:"version"`
	Settings    *models.ConfigSettings `json:"settings"`
}

// CreateConfig creates a configuration document seeded with its fixed
// categories. The first configuration of a purpose becomes the company
// default automatically.
// POST /api/v1/configs
func CreateConfig(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	userID := middleware.UserID(r)

	var req createConfigReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := inspection.ValidatePurpose(req.Purpose); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, &inspection.ValidationError{Invariant: "configuration name is required"})
		return
	}

	cfg := models.InspectionConfig{
		CompanyID:   companyID,
		Purpose:     req.Purpose,
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
		IsActive:    true,
		CreatedBy:   &userID,
		Settings:    req.Settings,
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if err := inspection.SeedCategories(&cfg); err != nil {
		writeError(w, err)
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.InspectionConfig{}).
			Where("company_id = ? AND purpose = ?", companyID, req.Purpose).
			Count(&count).Error; err != nil {
			return err
		}
		cfg.IsDefault = count == 0
		return tx.Create(&cfg).Error
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"config": cfg})
}

// GetConfigs lists the company's configurations for a purpose.
// GET /api/v1/configs?purpose=inspection&active=true
func GetConfigs(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	q := config.DB.Where("company_id = ?", companyID)
	if purpose := r.URL.Query().Get("purpose"); purpose != "" {
		if err := inspection.ValidatePurpose(purpose); err != nil {
			writeError(w, err)
			return
		}
		q = q.Where("purpose = ?", purpose)
	}
	if r.URL.Query().Get("active") == "true" {
		q = q.Where("is_active = true")
	}

	var configs []models.InspectionConfig
	if err := q.Order("created_at DESC").Find(&configs).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"configs": configs,
		"count":   len(configs),
	})
}

// GetConfig returns one configuration document, active or not.
// GET /api/v1/configs/{id}
func GetConfig(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

type configUpdateReq struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Version     *string                `json:"version"`
	IsActive    *bool                  `json:"is_active"`
	Settings    *models.ConfigSettings `json:"settings"`
}

// UpdateConfig edits top-level configuration attributes. The category tree is
// only editable through the structural mutation endpoints.
// PUT /api/v1/configs/{id}
func UpdateConfig(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}

	var req configUpdateReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			writeError(w, &inspection.ValidationError{Invariant: "configuration name is required"})
			return
		}
		cfg.Name = *req.Name
	}
	if req.Description != nil {
		cfg.Description = *req.Description
	}
	if req.Version != nil {
		cfg.Version = *req.Version
	}
	if req.IsActive != nil {
		if !*req.IsActive && cfg.IsDefault {
			writeError(w, &inspection.ValidationError{Invariant: "default configuration cannot be deactivated"})
			return
		}
		cfg.IsActive = *req.IsActive
	}
	if req.Settings != nil {
		cfg.Settings = req.Settings
	}
	if err := config.DB.Save(cfg).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// DeleteConfig deactivates a configuration. In-use configurations are never
// hard-deleted; historical vehicle snapshots reference them by id.
// DELETE /api/v1/configs/{id}
func DeleteConfig(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	if cfg.IsDefault {
		writeError(w, &inspection.ValidationError{Invariant: "default configuration cannot be deactivated"})
		return
	}
	cfg.IsActive = false
	if err := config.DB.Save(cfg).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// SetDefaultConfig marks a configuration as the company default for its
// purpose and atomically clears the previous default in the same transaction.
// The partial unique index backs this up under concurrent writes.
// POST /api/v1/configs/{id}/default
func SetDefaultConfig(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	if !cfg.IsActive {
		writeError(w, &inspection.ValidationError{Invariant: "inactive configuration cannot be the default"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.InspectionConfig{}).
			Where("company_id = ? AND purpose = ? AND is_default = true AND id <> ?",
				companyID, cfg.Purpose, cfg.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		cfg.IsDefault = true
		return tx.Save(cfg).Error
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// loadConfig fetches the configuration addressed by the route, scoped to the
// caller's company. Every mutation goes through this; a bare document id is
// never trusted.
func loadConfig(w http.ResponseWriter, r *http.Request, companyID uuid.UUID) (*models.InspectionConfig, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, &inspection.ValidationError{Invariant: "invalid configuration id"})
		return nil, false
	}
	var cfg models.InspectionConfig
	if err := config.DB.Where("id = ? AND company_id = ?", id, companyID).First(&cfg).Error; err != nil {
		writeError(w, &inspection.NotFoundError{Entity: "configuration", ID: id.String()})
		return nil, false
	}
	return &cfg, true
}

// saveTree persists the whole document after a structural mutation. One
// document, one write; the row replace is the atomicity guarantee.
func saveTree(w http.ResponseWriter, cfg *models.InspectionConfig) bool {
	if err := config.DB.Save(cfg).Error; err != nil {
		writeError(w, err)
		return false
	}
	return true
}
