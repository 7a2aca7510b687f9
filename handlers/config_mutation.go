// Structural mutation endpoints for configuration documents. Each handler
// loads the document scoped to the caller's company, applies exactly one
// engine operation, and writes the whole document back.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"dealerinspect/config"
	"dealerinspect/middleware"
	"dealerinspect/pkg/inspection"
)

// AddCategory appends a category to the tree.
// POST /api/v1/configs/{id}/categories
func AddCategory(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var p inspection.CategoryParams
	if !decodeJSON(w, r, &p) {
		return
	}
	cat, err := inspection.AddCategory(cfg, p)
	if err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"category": cat})
}

// UpdateCategory edits a category.
// PUT /api/v1/configs/{id}/categories/{categoryId}
func UpdateCategory(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var u inspection.CategoryUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	if err := inspection.UpdateCategory(cfg, mux.Vars(r)["categoryId"], u); err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// DeleteCategory removes a non-seeded category and its contents.
// DELETE /api/v1/configs/{id}/categories/{categoryId}
func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	if err := inspection.DeleteCategory(cfg, mux.Vars(r)["categoryId"]); err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddSection appends a section to a category.
// POST /api/v1/configs/{id}/categories/{categoryId}/sections
func AddSection(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var p inspection.SectionParams
	if !decodeJSON(w, r, &p) {
		return
	}
	sec, err := inspection.AddSection(cfg, mux.Vars(r)["categoryId"], p)
	if err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"section": sec})
}

// UpdateSection edits a section located by id anywhere in the tree.
// PUT /api/v1/configs/{id}/sections/{sectionId}
func UpdateSection(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var u inspection.SectionUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	if err := inspection.UpdateSection(cfg, mux.Vars(r)["sectionId"], u); err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// DeleteSection removes a section and all its fields. Calculations left with
// dangling field references are reported as warnings, not deleted.
// DELETE /api/v1/configs/{id}/sections/{sectionId}
func DeleteSection(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	warnings, err := inspection.DeleteSection(cfg, mux.Vars(r)["sectionId"])
	if err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "deleted",
		"warnings": warnings,
	})
}

type reorderReq struct {
	IDs []string `json:"ids"`
}

// ReorderSections rewrites a category's section order from an explicit id
// permutation.
// PUT /api/v1/configs/{id}/categories/{categoryId}/sections/reorder
func ReorderSections(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var req reorderReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := inspection.ReorderSections(cfg, mux.Vars(r)["categoryId"], req.IDs); err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// AddField appends a field to a section; dropdown bindings are validated
// against the company's active masters before the write commits.
// POST /api/v1/configs/{id}/sections/{sectionId}/fields
func AddField(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var p inspection.FieldParams
	if !decodeJSON(w, r, &p) {
		return
	}
	f, err := inspection.AddField(cfg, mux.Vars(r)["sectionId"], p, inspection.NewStores(config.DB))
	if err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"field": f})
}

// UpdateField edits a field located by id anywhere in the tree.
// PUT /api/v1/configs/{id}/fields/{fieldId}
func UpdateField(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var u inspection.FieldUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	if err := inspection.UpdateField(cfg, mux.Vars(r)["fieldId"], u, inspection.NewStores(config.DB)); err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// DeleteField removes a field located by id anywhere in the tree and reports
// calculations whose formulas now hold a dangling reference.
// DELETE /api/v1/configs/{id}/fields/{fieldId}
func DeleteField(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	warnings, err := inspection.DeleteField(cfg, mux.Vars(r)["fieldId"])
	if err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "deleted",
		"warnings": warnings,
	})
}

// ReorderFields rewrites a section's field order from an explicit id
// permutation.
// PUT /api/v1/configs/{id}/sections/{sectionId}/fields/reorder
func ReorderFields(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var req reorderReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := inspection.ReorderFields(cfg, mux.Vars(r)["sectionId"], req.IDs); err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// AddCalculation appends a calculation to a category after validating its
// formula.
// POST /api/v1/configs/{id}/categories/{categoryId}/calculations
func AddCalculation(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var p inspection.CalculationParams
	if !decodeJSON(w, r, &p) {
		return
	}
	calc, err := inspection.AddCalculation(cfg, mux.Vars(r)["categoryId"], p)
	if err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"calculation": calc})
}

// UpdateCalculation edits a calculation; replacement formulas are validated
// first.
// PUT /api/v1/configs/{id}/calculations/{calculationId}
func UpdateCalculation(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var u inspection.CalculationUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	if err := inspection.UpdateCalculation(cfg, mux.Vars(r)["calculationId"], u); err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

type calcActiveReq struct {
	IsActive bool `json:"is_active"`
}

// SetCalculationActive toggles a calculation.
// PUT /api/v1/configs/{id}/calculations/{calculationId}/active
func SetCalculationActive(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	var req calcActiveReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := inspection.SetCalculationActive(cfg, mux.Vars(r)["calculationId"], req.IsActive); err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// DeleteCalculation removes a calculation.
// DELETE /api/v1/configs/{id}/calculations/{calculationId}
func DeleteCalculation(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	cfg, ok := loadConfig(w, r, companyID)
	if !ok {
		return
	}
	if err := inspection.DeleteCalculation(cfg, mux.Vars(r)["calculationId"]); err != nil {
		writeError(w, err)
		return
	}
	if !saveTree(w, cfg) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
