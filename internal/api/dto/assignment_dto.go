package dto

import "github.com/spec-kit/asset-service/internal/domain"

// CreateAssignmentRequest payload. AssignedFrom is a YYYY-MM-DD string.
type CreateAssignmentRequest struct {
	EmployeeID   string `json:"employeeId"`
	AssetID      string `json:"assetId"`
	AssignedFrom string `json:"assignedFrom"`
}

// EndAssignmentRequest payload.
type EndAssignmentRequest struct {
	AssignedUntil string `json:"assignedUntil"`
}

// AssignmentResponse response. IsActive is derived from the absence of
// an end date, never stored.
type AssignmentResponse struct {
	ID               string           `json:"id"`
	AssetID          string           `json:"assetId"`
	AssetType        domain.AssetType `json:"assetType"`
	Vendor           string           `json:"vendor"`
	Model            string           `json:"model"`
	SerialNumber     string           `json:"serialNumber"`
	EmployeeID       string           `json:"employeeId"`
	EmployeeFullName string           `json:"employeeFullName"`
	AssignedFrom     string           `json:"assignedFrom"`
	AssignedUntil    *string          `json:"assignedUntil,omitempty"`
	IsActive         bool             `json:"isActive"`
}
