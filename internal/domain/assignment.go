package domain

import "time"

// Assignment binds one asset to one employee over a half-open date
// interval. A nil AssignedUntil means the assignment is open: the asset
// is currently held by the employee. Rows are permanent history; the
// only mutation ever applied is setting AssignedUntil once.
type Assignment struct {
	ID            string
	AssetID       string
	EmployeeID    string
	AssignedFrom  time.Time
	AssignedUntil *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOpen derives the active status from the absence of an end date.
// This is the sole definition of "currently assigned"; it is never
// stored as a separate column.
func (a Assignment) IsOpen() bool {
	return a.AssignedUntil == nil
}
