package domain

import "time"

// EmployeeRole enumerates access levels for employees.
type EmployeeRole string

const (
	EmployeeRoleAdmin EmployeeRole = "ADMIN"
	EmployeeRoleStaff EmployeeRole = "STAFF"
)

// Valid reports whether the role is a known value.
func (r EmployeeRole) Valid() bool {
	return r == EmployeeRoleAdmin || r == EmployeeRoleStaff
}

// Employee is the identity record for a member of the organization.
type Employee struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         EmployeeRole
	HiredFrom    time.Time
	HiredUntil   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
