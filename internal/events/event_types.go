package events

import (
	"time"

	"github.com/spec-kit/asset-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEmployeeCreated   EventType = "employee_created"
	EventAssetCreated      EventType = "asset_created"
	EventAssetDeactivated  EventType = "asset_deactivated"
	EventAssignmentCreated EventType = "assignment_created"
	EventAssignmentEnded   EventType = "assignment_ended"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	EmployeeID string              `json:"employee_id"`
	Role       domain.EmployeeRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EmployeeCreatedPayload payload.
type EmployeeCreatedPayload struct {
	Email string              `json:"email"`
	Role  domain.EmployeeRole `json:"role"`
}

// AssetCreatedPayload payload.
type AssetCreatedPayload struct {
	AssetType    domain.AssetType `json:"asset_type"`
	SerialNumber string           `json:"serial_number"`
}

// AssetDeactivatedPayload payload.
type AssetDeactivatedPayload struct {
	SerialNumber string `json:"serial_number"`
}

// AssignmentCreatedPayload payload.
type AssignmentCreatedPayload struct {
	AssetID      string    `json:"asset_id"`
	EmployeeID   string    `json:"employee_id"`
	AssignedFrom time.Time `json:"assigned_from"`
}

// AssignmentEndedPayload payload.
type AssignmentEndedPayload struct {
	AssetID       string    `json:"asset_id"`
	EmployeeID    string    `json:"employee_id"`
	AssignedUntil time.Time `json:"assigned_until"`
}
