package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/events"
	"github.com/spec-kit/asset-service/internal/repository"
	apperrors "github.com/spec-kit/asset-service/pkg/util"
)

// Hasher produces an opaque hash for a plaintext password.
type Hasher func(password string) (string, error)

// EmployeeService is the directory service over employee identity
// records.
type EmployeeService struct {
	employees  repository.EmployeeRepository
	dispatcher events.Dispatcher
	hash       Hasher
	now        func() time.Time
}

// EmployeeDependencies bundles collaborators.
type EmployeeDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	Dispatcher   events.Dispatcher
	Hasher       Hasher
	Now          func() time.Time
}

// NewEmployeeService creates the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &EmployeeService{
		employees:  deps.EmployeeRepo,
		dispatcher: deps.Dispatcher,
		hash:       deps.Hasher,
		now:        now,
	}
}

// EmployeeCreateInput carries the create parameters.
type EmployeeCreateInput struct {
	FullName   string
	Email      string
	Password   string
	Role       domain.EmployeeRole
	HiredFrom  time.Time
	HiredUntil *time.Time
}

// Create registers a new employee. The email uniqueness check runs
// before the password is hashed, so a rejected request never touches
// the credential.
func (s *EmployeeService) Create(ctx context.Context, actor *domain.Employee, input EmployeeCreateInput) (*domain.Employee, error) {
	exists, err := s.employees.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("email already in use", map[string]any{"email": input.Email})
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	employee := &domain.Employee{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		HiredFrom:    input.HiredFrom,
		HiredUntil:   input.HiredUntil,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			// Raced with another create past the exists-check; the
			// unique constraint decides.
			return nil, apperrors.NewConflict("email already in use", map[string]any{"email": input.Email})
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.EventEmployeeCreated, employee.ID, events.EmployeeCreatedPayload{
		Email: employee.Email,
		Role:  employee.Role,
	})
	return employee, nil
}

// GetByID returns a single employee.
func (s *EmployeeService) GetByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
		}
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// List returns all employees.
func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

func (s *EmployeeService) publish(ctx context.Context, actor *domain.Employee, eventType events.EventType, subjectID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: s.now(),
		Payload:   payload,
	}
	if actor != nil {
		event.Actor = events.Actor{EmployeeID: actor.ID, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}
