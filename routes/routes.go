package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"dealerinspect/handlers"
	"dealerinspect/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/health", handleHealth).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handleProfile).Methods("GET")

	registerCompanyRoutes(api)
	registerVehicleRoutes(api)
	registerMasterInspectionRoutes(api)

	// =====================================================
	// Admin Routes (configuration and master-data mutation)
	// =====================================================
	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.RequireAdmin)

	registerUserRoutes(admin)
	registerDropdownRoutes(admin)
	registerConfigRoutes(admin)

	return r
}

func registerCompanyRoutes(api *mux.Router) {
	api.HandleFunc("/company", handlers.GetCompany).Methods("GET")

	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/company", handlers.UpdateCompany).Methods("PUT")
	admin.HandleFunc("/company/s3", handlers.UpdateS3Settings).Methods("PUT")
}

func registerUserRoutes(admin *mux.Router) {
	admin.HandleFunc("/users", handlers.GetUsers).Methods("GET")
	admin.HandleFunc("/users", handlers.CreateUser).Methods("POST")
	admin.HandleFunc("/users/{id}", handlers.UpdateUser).Methods("PUT")
	admin.HandleFunc("/users/{id}", handlers.DeleteUser).Methods("DELETE")
}

func registerDropdownRoutes(admin *mux.Router) {
	admin.HandleFunc("/dropdowns", handlers.GetDropdowns).Methods("GET")
	admin.HandleFunc("/dropdowns", handlers.CreateDropdown).Methods("POST")
	admin.HandleFunc("/dropdowns/{id}", handlers.GetDropdown).Methods("GET")
	admin.HandleFunc("/dropdowns/{id}", handlers.UpdateDropdown).Methods("PUT")
	admin.HandleFunc("/dropdowns/{id}", handlers.DeleteDropdown).Methods("DELETE")
}

func registerConfigRoutes(admin *mux.Router) {
	// configuration lifecycle
	admin.HandleFunc("/configs", handlers.GetConfigs).Methods("GET")
	admin.HandleFunc("/configs", handlers.CreateConfig).Methods("POST")
	admin.HandleFunc("/configs/{id}", handlers.GetConfig).Methods("GET")
	admin.HandleFunc("/configs/{id}", handlers.UpdateConfig).Methods("PUT")
	admin.HandleFunc("/configs/{id}", handlers.DeleteConfig).Methods("DELETE")
	admin.HandleFunc("/configs/{id}/default", handlers.SetDefaultConfig).Methods("POST")

	// structural mutation of the configuration tree
	admin.HandleFunc("/configs/{id}/categories", handlers.AddCategory).Methods("POST")
	admin.HandleFunc("/configs/{id}/categories/{categoryId}", handlers.UpdateCategory).Methods("PUT")
	admin.HandleFunc("/configs/{id}/categories/{categoryId}", handlers.DeleteCategory).Methods("DELETE")

	admin.HandleFunc("/configs/{id}/categories/{categoryId}/sections", handlers.AddSection).Methods("POST")
	admin.HandleFunc("/configs/{id}/categories/{categoryId}/sections/reorder", handlers.ReorderSections).Methods("PUT")
	admin.HandleFunc("/configs/{id}/sections/{sectionId}", handlers.UpdateSection).Methods("PUT")
	admin.HandleFunc("/configs/{id}/sections/{sectionId}", handlers.DeleteSection).Methods("DELETE")

	admin.HandleFunc("/configs/{id}/sections/{sectionId}/fields", handlers.AddField).Methods("POST")
	admin.HandleFunc("/configs/{id}/sections/{sectionId}/fields/reorder", handlers.ReorderFields).Methods("PUT")
	admin.HandleFunc("/configs/{id}/fields/{fieldId}", handlers.UpdateField).Methods("PUT")
	admin.HandleFunc("/configs/{id}/fields/{fieldId}", handlers.DeleteField).Methods("DELETE")

	admin.HandleFunc("/configs/{id}/categories/{categoryId}/calculations", handlers.AddCalculation).Methods("POST")
	admin.HandleFunc("/configs/{id}/calculations/{calculationId}", handlers.UpdateCalculation).Methods("PUT")
	admin.HandleFunc("/configs/{id}/calculations/{calculationId}/active", handlers.SetCalculationActive).Methods("PUT")
	admin.HandleFunc("/configs/{id}/calculations/{calculationId}", handlers.DeleteCalculation).Methods("DELETE")
}

func registerVehicleRoutes(api *mux.Router) {
	api.HandleFunc("/vehicles", handlers.GetVehicles).Methods("GET")
	api.HandleFunc("/vehicles", handlers.CreateVehicle).Methods("POST")
	api.HandleFunc("/vehicles/{id}", handlers.GetVehicle).Methods("GET")
	api.HandleFunc("/vehicles/{id}", handlers.UpdateVehicle).Methods("PUT")
	api.HandleFunc("/vehicles/{id}", handlers.DeleteVehicle).Methods("DELETE")
	api.HandleFunc("/vehicles/{id}/results/export", handlers.ExportVehicleResults).Methods("GET")
}

func registerMasterInspectionRoutes(api *mux.Router) {
	api.HandleFunc("/masterinspection", handlers.GetMasterInspection).Methods("GET")
	api.HandleFunc("/masterinspection/save", handlers.SaveMasterInspection).Methods("POST")
	api.HandleFunc("/masterinspection/evaluate", handlers.EvaluateCalculations).Methods("POST")
}

func handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user_id":    claims.UserID,
		"company_id": claims.CompanyID,
		"name":       claims.Name,
		"email":      claims.Email,
		"role":       claims.Role,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
