package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"dealerinspect/config"
	"dealerinspect/middleware"
	"dealerinspect/models"
	"dealerinspect/pkg/inspection"
)

// GetDropdowns lists the company's dropdown masters.
// GET /api/v1/dropdowns?active=true
func GetDropdowns(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	q := config.DB.Where("company_id = ?", companyID)
	if r.URL.Query().Get("active") == "true" {
		q = q.Where("is_active = true")
	}

	var dropdowns []models.DropdownMaster
	if err := q.Order("name ASC").Find(&dropdowns).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dropdowns": dropdowns,
		"count":     len(dropdowns),
	})
}

// GetDropdown returns one dropdown master.
// GET /api/v1/dropdowns/{id}
func GetDropdown(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	d, ok := loadDropdown(w, r, companyID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dropdown": d})
}

type dropdownReq struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Values      models.DropdownValueList `json:"values"`
}

// CreateDropdown adds a dropdown master to the company.
// POST /api/v1/dropdowns
func CreateDropdown(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	var req dropdownReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, &inspection.ValidationError{Invariant: "dropdown name is required"})
		return
	}
	if err := validateValues(req.Values); err != nil {
		writeError(w, err)
		return
	}

	d := models.DropdownMaster{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		Values:      req.Values,
	}
	if err := config.DB.Create(&d).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "dropdown name already exists", http.StatusConflict)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"dropdown": d})
}

type dropdownUpdateReq struct {
	Name        *string                   `json:"name"`
	Description *string                   `json:"description"`
	IsActive    *bool                     `json:"is_active"`
	Values      *models.DropdownValueList `json:"values"`
}

// UpdateDropdown edits a dropdown master, including full replacement of its
// value list.
// PUT /api/v1/dropdowns/{id}
func UpdateDropdown(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	d, ok := loadDropdown(w, r, companyID)
	if !ok {
		return
	}

	var req dropdownUpdateReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			writeError(w, &inspection.ValidationError{Invariant: "dropdown name is required"})
			return
		}
		d.Name = *req.Name
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	if req.Values != nil {
		if err := validateValues(*req.Values); err != nil {
			writeError(w, err)
			return
		}
		d.Values = *req.Values
	}
	if err := config.DB.Save(d).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dropdown": d})
}

// DeleteDropdown deactivates a dropdown master. Deactivation rather than
// deletion: historical configurations keep rendering their bound options.
// DELETE /api/v1/dropdowns/{id}
func DeleteDropdown(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	d, ok := loadDropdown(w, r, companyID)
	if !ok {
		return
	}
	d.IsActive = false
	if err := config.DB.Save(d).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func loadDropdown(w http.ResponseWriter, r *http.Request, companyID uuid.UUID) (*models.DropdownMaster, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, &inspection.ValidationError{Invariant: "invalid dropdown id"})
		return nil, false
	}
	var d models.DropdownMaster
	if err := config.DB.Where("id = ? AND company_id = ?", id, companyID).First(&d).Error; err != nil {
		writeError(w, &inspection.NotFoundError{Entity: "dropdown", ID: id.String()})
		return nil, false
	}
	return &d, true
}

func validateValues(values models.DropdownValueList) error {
	seen := make(map[string]bool, len(values))
	defaults := 0
	for _, v := range values {
		if v.ID == "" || v.Value == "" {
			return &inspection.ValidationError{Invariant: "dropdown values need id and value"}
		}
		if seen[v.ID] {
			return &inspection.ValidationError{Invariant: "duplicate dropdown value id " + v.ID}
		}
		seen[v.ID] = true
		if v.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return &inspection.ValidationError{Invariant: "at most one default dropdown value"}
	}
	return nil
}
