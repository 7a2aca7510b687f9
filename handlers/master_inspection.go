// The master inspection surface: resolve a configuration for a form render,
// merge workshop sections from the vehicle's saved snapshot, evaluate live
// totals, and save the filled-in result back onto the vehicle.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"dealerinspect/config"
	"dealerinspect/middleware"
	"dealerinspect/models"
	"dealerinspect/pkg/inspection"
)

// masterInspectionResponse is the exact payload shape the form UI binds to.
// Field names and nesting are load-bearing; do not rename.
type masterInspectionResponse struct {
	Config           *models.InspectionConfig `json:"config"`
	S3Config         *models.S3Config         `json:"s3Config"`
	Dropdowns        []models.DropdownMaster  `json:"dropdowns"`
	Company          companyRef               `json:"company"`
	WorkshopSections []models.Section         `json:"workshopSections,omitempty"`
}

type companyRef struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	LastConfigID *uuid.UUID `json:"lastConfigId"`
}

// GetMasterInspection resolves the configuration a form should render
// against. Precedence: explicit config_id, then the vehicle's last-used
// configuration, then the company's active default.
// GET /api/v1/masterinspection?purpose=inspection&config_id=&stock_id=
func GetMasterInspection(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	q := r.URL.Query()

	req := inspection.ResolveRequest{
		CompanyID: companyID,
		Purpose:   q.Get("purpose"),
		StockID:   q.Get("stock_id"),
	}
	if raw := q.Get("config_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, &inspection.ValidationError{Invariant: "invalid config_id"})
			return
		}
		req.ConfigID = &id
	}

	stores := inspection.NewStores(config.DB)
	resolver := inspection.NewResolver(stores, stores, stores, stores)
	resolved, err := resolver.Resolve(req)
	if err != nil {
		writeError(w, err)
		return
	}

	workshop, err := inspection.Merge(resolved.Config, resolved.Vehicle)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := masterInspectionResponse{
		Config:    resolved.Config,
		S3Config:  resolved.Company.S3Config,
		Dropdowns: resolved.Dropdowns,
		Company: companyRef{
			ID:   resolved.Company.ID,
			Name: resolved.Company.Name,
		},
	}
	if resolved.Vehicle != nil {
		resp.Company.LastConfigID = resolved.Vehicle.LastConfigID(req.Purpose)
	}
	if req.Purpose == models.PurposeTradeIn {
		resp.WorkshopSections = workshop
	}
	writeJSON(w, http.StatusOK, resp)
}

type saveResultReq struct {
	InspectionResult json.RawMessage `json:"inspection_result"`
	TradeInResult    json.RawMessage `json:"trade_in_result"`
	ReportPdfURL     string          `json:"reportPdfUrl"`
	ConfigID         string          `json:"config_id"`
}

// SaveMasterInspection persists a filled-in result snapshot verbatim onto the
// vehicle record. The last-used config back-reference is updated only when a
// config_id is supplied.
// POST /api/v1/masterinspection/save?purpose=inspection&stock_id=S123
func SaveMasterInspection(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	q := r.URL.Query()
	purpose := q.Get("purpose")
	stockID := q.Get("stock_id")

	if err := inspection.ValidatePurpose(purpose); err != nil {
		writeError(w, err)
		return
	}
	if stockID == "" {
		writeError(w, &inspection.ValidationError{Invariant: "stock_id is required"})
		return
	}

	var req saveResultReq
	if !decodeJSON(w, r, &req) {
		return
	}

	stores := inspection.NewStores(config.DB)
	vehicle, err := stores.GetVehicle(companyID, stockID, purpose)
	if err != nil {
		writeError(w, err)
		return
	}
	if vehicle == nil {
		writeError(w, &inspection.NotFoundError{Entity: "vehicle", ID: stockID})
		return
	}

	if purpose == models.PurposeTradeIn {
		if len(req.TradeInResult) == 0 {
			writeError(w, &inspection.ValidationError{Invariant: "trade_in_result is required"})
			return
		}
		vehicle.TradeInResult = []byte(req.TradeInResult)
	} else {
		if len(req.InspectionResult) == 0 {
			writeError(w, &inspection.ValidationError{Invariant: "inspection_result is required"})
			return
		}
		vehicle.InspectionResult = []byte(req.InspectionResult)
	}
	if req.ReportPdfURL != "" {
		vehicle.ReportPdfURL = req.ReportPdfURL
	}
	if req.ConfigID != "" {
		configID, err := uuid.Parse(req.ConfigID)
		if err != nil {
			writeError(w, &inspection.ValidationError{Invariant: "invalid config_id"})
			return
		}
		// the back-reference must point at a configuration this company owns
		cfg, err := stores.GetConfig(companyID, configID)
		if err != nil {
			writeError(w, err)
			return
		}
		if cfg == nil {
			writeError(w, &inspection.NotFoundError{Entity: "configuration", ID: req.ConfigID})
			return
		}
		if purpose == models.PurposeTradeIn {
			vehicle.LastTradeInConfigID = &configID
		} else {
			vehicle.LastInspectionConfigID = &configID
		}
	}

	if err := config.DB.Save(vehicle).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vehicle": vehicle})
}

type evaluateReq struct {
	ConfigID   string             `json:"config_id"`
	CategoryID string             `json:"category_id"`
	Values     map[string]float64 `json:"values"`
}

// EvaluateCalculations computes a category's active calculations against the
// submitted field values. Stateless; the form calls this on every change.
// POST /api/v1/masterinspection/evaluate
func EvaluateCalculations(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	var req evaluateReq
	if !decodeJSON(w, r, &req) {
		return
	}
	configID, err := uuid.Parse(req.ConfigID)
	if err != nil {
		writeError(w, &inspection.ValidationError{Invariant: "invalid config_id"})
		return
	}

	stores := inspection.NewStores(config.DB)
	cfg, err := stores.GetConfig(companyID, configID)
	if err != nil {
		writeError(w, err)
		return
	}
	if cfg == nil {
		writeError(w, &inspection.NotFoundError{Entity: "configuration", ID: req.ConfigID})
		return
	}
	cat := cfg.Category(req.CategoryID)
	if cat == nil {
		writeError(w, &inspection.NotFoundError{Entity: "category", ID: req.CategoryID})
		return
	}

	results, err := inspection.EvaluateCategory(cat, req.Values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
