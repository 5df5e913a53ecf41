package dto

import "github.com/spec-kit/asset-service/internal/domain"

// CreateAssetRequest payload.
type CreateAssetRequest struct {
	AssetType    domain.AssetType `json:"assetType"`
	Vendor       string           `json:"vendor"`
	Model        string           `json:"model"`
	SerialNumber string           `json:"serialNumber"`
}

// AssetResponse response. Assigned* fields are present only when an
// open assignment exists for the asset.
type AssetResponse struct {
	ID                   string           `json:"id"`
	AssetType            domain.AssetType `json:"assetType"`
	Vendor               string           `json:"vendor"`
	Model                string           `json:"model"`
	SerialNumber         string           `json:"serialNumber"`
	IsActive             bool             `json:"isActive"`
	AssignedEmployeeID   *string          `json:"assignedEmployeeId,omitempty"`
	AssignedEmployeeName *string          `json:"assignedEmployeeFullName,omitempty"`
	AssignedEmployeeMail *string          `json:"assignedEmployeeEmail,omitempty"`
}

// EmployeeAssetResponse is the asset-centric view of an employee's
// currently-open assignment.
type EmployeeAssetResponse struct {
	AssetType    domain.AssetType `json:"assetType"`
	Vendor       string           `json:"vendor"`
	Model        string           `json:"model"`
	SerialNumber string           `json:"serialNumber"`
	AssignedFrom string           `json:"assignedFrom"`
}
