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

// historyLimit bounds unpaged history reads. History is returned
// newest-first, so when an owner exceeds the cap the oldest rows are
// the ones dropped.
const historyLimit = 1000

// AssignmentService is the assignment lifecycle engine. It is the only
// component that writes assignment rows, and the sole authority for
// deriving "currently assigned" from the presence of an open row.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	employees   repository.EmployeeRepository
	assets      repository.AssetRepository
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	EmployeeRepo   repository.EmployeeRepository
	AssetRepo      repository.AssetRepository
	Dispatcher     events.Dispatcher
	Now            func() time.Time
}

// NewAssignmentService creates the engine.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AssignmentService{
		assignments: deps.AssignmentRepo,
		employees:   deps.EmployeeRepo,
		assets:      deps.AssetRepo,
		dispatcher:  deps.Dispatcher,
		now:         now,
	}
}

// AssignmentCreateInput carries the create parameters.
type AssignmentCreateInput struct {
	EmployeeID   string
	AssetID      string
	AssignedFrom time.Time
}

// Create binds an asset to an employee starting at the given date. The
// exclusivity and active-asset checks run inside one transactional scope
// in the repository, so concurrent creates for the same asset cannot
// both succeed: the loser surfaces as a conflict.
func (s *AssignmentService) Create(ctx context.Context, actor *domain.Employee, input AssignmentCreateInput) (*repository.AssignmentRecord, error) {
	if _, err := s.employees.GetByID(ctx, input.EmployeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": input.EmployeeID})
		}
		return nil, apperrors.MapError(err)
	}
	if input.AssignedFrom.After(s.now()) {
		return nil, apperrors.NewValidationError("assigned_from cannot be in the future", nil)
	}

	assignment := &domain.Assignment{
		AssetID:      input.AssetID,
		EmployeeID:   input.EmployeeID,
		AssignedFrom: input.AssignedFrom,
	}
	if err := s.assignments.CreateOpen(ctx, assignment); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": input.AssetID})
		case errors.Is(err, repository.ErrAssetInactive):
			return nil, apperrors.NewInvalidState("cannot assign inactive asset", map[string]any{"asset_id": input.AssetID})
		case errors.Is(err, repository.ErrAssetAlreadyAssigned):
			return nil, apperrors.NewConflict("asset already assigned to another employee", map[string]any{"asset_id": input.AssetID})
		}
		return nil, apperrors.MapError(err)
	}

	record, err := s.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.EventAssignmentCreated, assignment.ID, events.AssignmentCreatedPayload{
		AssetID:      assignment.AssetID,
		EmployeeID:   assignment.EmployeeID,
		AssignedFrom: assignment.AssignedFrom,
	})
	return record, nil
}

// End closes an open assignment. Closure is one-shot: a row whose end
// date is already set can never be closed again, and the end date may
// not precede the start date.
func (s *AssignmentService) End(ctx context.Context, actor *domain.Employee, assignmentID string, assignedUntil time.Time) (*repository.AssignmentRecord, error) {
	record, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{"assignment_id": assignmentID})
		}
		return nil, apperrors.MapError(err)
	}
	if record.AssignedUntil != nil {
		return nil, apperrors.NewInvalidState("assignment already ended", map[string]any{"assignment_id": assignmentID})
	}
	if assignedUntil.Before(record.AssignedFrom) {
		return nil, apperrors.NewInvalidState("end date before start date", map[string]any{"assignment_id": assignmentID})
	}

	record.AssignedUntil = &assignedUntil
	if err := s.assignments.Close(ctx, &record.Assignment); err != nil {
		switch {
		case errors.Is(err, repository.ErrAssignmentClosed):
			// Raced with another close between the read above and the
			// write; the row was not mutated again.
			return nil, apperrors.NewInvalidState("assignment already ended", map[string]any{"assignment_id": assignmentID})
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("assignment", map[string]any{"assignment_id": assignmentID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.EventAssignmentEnded, record.ID, events.AssignmentEndedPayload{
		AssetID:       record.AssetID,
		EmployeeID:    record.EmployeeID,
		AssignedUntil: assignedUntil,
	})
	return record, nil
}

// List returns assignments matching the filter plus the total count for
// pagination.
func (s *AssignmentService) List(ctx context.Context, filter repository.AssignmentFilter) ([]repository.AssignmentRecord, int64, error) {
	records, err := s.assignments.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	total, err := s.assignments.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return records, total, nil
}

// HistoryByEmployee returns the full assignment history for an employee.
func (s *AssignmentService) HistoryByEmployee(ctx context.Context, employeeID string) ([]repository.AssignmentRecord, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.history(ctx, repository.AssignmentFilter{EmployeeID: &employeeID})
}

// HistoryByEmployeeEmail resolves the employee by email first; used for
// the caller's own history derived from the authenticated identity.
func (s *AssignmentService) HistoryByEmployeeEmail(ctx context.Context, email string) ([]repository.AssignmentRecord, error) {
	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	return s.history(ctx, repository.AssignmentFilter{EmployeeID: &employee.ID})
}

// HistoryByAsset returns the full assignment history for an asset.
func (s *AssignmentService) HistoryByAsset(ctx context.Context, assetID string) ([]repository.AssignmentRecord, error) {
	if _, err := s.assets.GetByID(ctx, assetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": assetID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.history(ctx, repository.AssignmentFilter{AssetID: &assetID})
}

// OpenAssetsByEmployeeEmail lists the employee's currently-open
// assignments, used to answer "what do I currently hold".
func (s *AssignmentService) OpenAssetsByEmployeeEmail(ctx context.Context, email string) ([]repository.AssignmentRecord, error) {
	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	records, err := s.assignments.ListOpenByEmployee(ctx, employee.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

func (s *AssignmentService) history(ctx context.Context, filter repository.AssignmentFilter) ([]repository.AssignmentRecord, error) {
	filter.SortBy = "assignedFrom"
	filter.SortDesc = true
	filter.Limit = historyLimit
	records, err := s.assignments.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

func (s *AssignmentService) publish(ctx context.Context, actor *domain.Employee, eventType events.EventType, subjectID string, payload any) {
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
