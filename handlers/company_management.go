package handlers

import (
	"net/http"

	"dealerinspect/config"
	"dealerinspect/middleware"
	"dealerinspect/models"
	"dealerinspect/pkg/inspection"
)

// GetCompany returns the caller's own company record.
// GET /api/v1/company
func GetCompany(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	var company models.Company
	if err := config.DB.Where("id = ?", companyID).First(&company).Error; err != nil {
		writeError(w, &inspection.NotFoundError{Entity: "company", ID: companyID.String()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"company": company})
}

type companyUpdateReq struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateCompany edits the caller's company profile.
// PUT /api/v1/company
func UpdateCompany(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	var req companyUpdateReq
	if !decodeJSON(w, r, &req) {
		return
	}

	var company models.Company
	if err := config.DB.Where("id = ?", companyID).First(&company).Error; err != nil {
		writeError(w, &inspection.NotFoundError{Entity: "company", ID: companyID.String()})
		return
	}
	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Email != nil {
		company.Email = *req.Email
	}
	if req.Phone != nil {
		company.Phone = *req.Phone
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if err := config.DB.Save(&company).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"company": company})
}

// UpdateS3Settings replaces the company's attachment storage settings. The
// backend never uploads with these; they are surfaced to clients alongside
// resolved configurations.
// PUT /api/v1/company/s3
func UpdateS3Settings(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	var s3 models.S3Config
	if !decodeJSON(w, r, &s3) {
		return
	}
	if s3.Bucket == "" {
		writeError(w, &inspection.ValidationError{Invariant: "bucket is required"})
		return
	}

	var company models.Company
	if err := config.DB.Where("id = ?", companyID).First(&company).Error; err != nil {
		writeError(w, &inspection.NotFoundError{Entity: "company", ID: companyID.String()})
		return
	}
	company.S3Config = &s3
	if err := config.DB.Save(&company).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"s3_config": company.S3Config})
}
