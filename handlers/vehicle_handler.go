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

// GetVehicles lists the company's vehicles.
// GET /api/v1/vehicles?type=inspection
func GetVehicles(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	q := config.DB.Where("company_id = ?", companyID)
	if t := r.URL.Query().Get("type"); t != "" {
		if err := inspection.ValidatePurpose(t); err != nil {
			writeError(w, err)
			return
		}
		q = q.Where("type = ?", t)
	}

	var vehicles []models.Vehicle
	if err := q.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// GetVehicle returns one vehicle.
// GET /api/v1/vehicles/{id}
func GetVehicle(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	v, ok := loadVehicle(w, r, companyID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vehicle": v})
}

type vehicleReq struct {
	StockID        string `json:"stock_id"`
	Type           string `json:"type"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	VIN            string `json:"vin"`
	RegistrationNo string `json:"registration_no"`
	Odometer       int    `json:"odometer"`
}

// CreateVehicle registers a stock unit.
// POST /api/v1/vehicles
func CreateVehicle(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	var req vehicleReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.StockID) == "" {
		writeError(w, &inspection.ValidationError{Invariant: "stock_id is required"})
		return
	}
	if err := inspection.ValidatePurpose(req.Type); err != nil {
		writeError(w, err)
		return
	}

	v := models.Vehicle{
		CompanyID:      companyID,
		StockID:        req.StockID,
		Type:           req.Type,
		Make:           req.Make,
		Model:          req.Model,
		Year:           req.Year,
		VIN:            req.VIN,
		RegistrationNo: req.RegistrationNo,
		Odometer:       req.Odometer,
	}
	if err := config.DB.Create(&v).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "stock_id already exists", http.StatusConflict)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"vehicle": v})
}

type vehicleUpdateReq struct {
	Make           *string `json:"make"`
	Model          *string `json:"model"`
	Year           *int    `json:"year"`
	VIN            *string `json:"vin"`
	RegistrationNo *string `json:"registration_no"`
	Odometer       *int    `json:"odometer"`
}

// UpdateVehicle edits vehicle attributes. Result snapshots and config
// back-references are only writable through the save endpoint.
// PUT /api/v1/vehicles/{id}
func UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	v, ok := loadVehicle(w, r, companyID)
	if !ok {
		return
	}

	var req vehicleUpdateReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Make != nil {
		v.Make = *req.Make
	}
	if req.Model != nil {
		v.Model = *req.Model
	}
	if req.Year != nil {
		v.Year = *req.Year
	}
	if req.VIN != nil {
		v.VIN = *req.VIN
	}
	if req.RegistrationNo != nil {
		v.RegistrationNo = *req.RegistrationNo
	}
	if req.Odometer != nil {
		v.Odometer = *req.Odometer
	}
	if err := config.DB.Save(v).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vehicle": v})
}

// DeleteVehicle soft-deletes a vehicle.
// DELETE /api/v1/vehicles/{id}
func DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, &inspection.ValidationError{Invariant: "invalid vehicle id"})
		return
	}
	res := config.DB.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Vehicle{})
	if res.Error != nil {
		writeError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, &inspection.NotFoundError{Entity: "vehicle", ID: id.String()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func loadVehicle(w http.ResponseWriter, r *http.Request, companyID uuid.UUID) (*models.Vehicle, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, &inspection.ValidationError{Invariant: "invalid vehicle id"})
		return nil, false
	}
	var v models.Vehicle
	if err := config.DB.Where("id = ? AND company_id = ?", id, companyID).First(&v).Error; err != nil {
		writeError(w, &inspection.NotFoundError{Entity: "vehicle", ID: id.String()})
		return nil, false
	}
	return &v, true
}
