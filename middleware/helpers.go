package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// GetClaims pulls the validated JWT claims out of the request context.
// Returns nil on unauthenticated requests.
func GetClaims(r *http.Request) *Claims {
	claims, _ := r.Context().Value(userClaimsKey).(*Claims)
	return claims
}

// CompanyID returns the caller's tenant id. The zero uuid means the request
// never went through JWTMiddleware.
func CompanyID(r *http.Request) uuid.UUID {
	claims := GetClaims(r)
	if claims == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(claims.CompanyID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// UserID returns the caller's user id, or the zero uuid.
func UserID(r *http.Request) uuid.UUID {
	claims := GetClaims(r)
	if claims == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil
	}
	return id
}
