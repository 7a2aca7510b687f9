package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"dealerinspect/config"
	"dealerinspect/middleware"
	"dealerinspect/models"
	"dealerinspect/pkg/inspection"
)

// GetUsers lists the company's users.
// GET /api/v1/users
func GetUsers(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	var users []models.User
	if err := config.DB.
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

type createUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser adds a user to the caller's company.
// POST /api/v1/users
func CreateUser(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)

	var req createUserReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, &inspection.ValidationError{Invariant: "email and password are required"})
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		writeError(w, &inspection.ValidationError{Invariant: "unknown role " + role})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}
	u := models.User{
		CompanyID:    companyID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := config.DB.Create(&u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": u})
}

type updateUserReq struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

// UpdateUser edits a user within the caller's company.
// PUT /api/v1/users/{id}
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, &inspection.ValidationError{Invariant: "invalid user id"})
		return
	}

	var u models.User
	if err := config.DB.Where("id = ? AND company_id = ?", userID, companyID).First(&u).Error; err != nil {
		writeError(w, &inspection.NotFoundError{Entity: "user", ID: userID.String()})
		return
	}

	var req updateUserReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Role != nil {
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleUser {
			writeError(w, &inspection.ValidationError{Invariant: "unknown role " + *req.Role})
			return
		}
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, err)
			return
		}
		u.PasswordHash = string(hash)
	}
	if err := config.DB.Save(&u).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

// DeleteUser soft-deletes a user within the caller's company.
// DELETE /api/v1/users/{id}
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r)
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, &inspection.ValidationError{Invariant: "invalid user id"})
		return
	}
	if userID == middleware.UserID(r) {
		writeError(w, &inspection.ValidationError{Invariant: "cannot delete your own account"})
		return
	}

	res := config.DB.Where("id = ? AND company_id = ?", userID, companyID).Delete(&models.User{})
	if res.Error != nil {
		writeError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, &inspection.NotFoundError{Entity: "user", ID: userID.String()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
