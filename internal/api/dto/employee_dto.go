package dto

import "github.com/spec-kit/asset-service/internal/domain"

// CreateEmployeeRequest payload. Dates are YYYY-MM-DD strings.
type CreateEmployeeRequest struct {
	FullName   string              `json:"fullName"`
	Email      string              `json:"email"`
	Password   string              `json:"password"`
	Role       domain.EmployeeRole `json:"role"`
	HiredFrom  string              `json:"hiredFrom"`
	HiredUntil *string             `json:"hiredUntil,omitempty"`
}

// EmployeeResponse response.
type EmployeeResponse struct {
	ID         string              `json:"id"`
	FullName   string              `json:"fullName"`
	Email      string              `json:"email"`
	Role       domain.EmployeeRole `json:"role"`
	HiredFrom  string              `json:"hiredFrom"`
	HiredUntil *string             `json:"hiredUntil,omitempty"`
}
