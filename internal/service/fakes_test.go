package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/events"
	"github.com/spec-kit/asset-service/internal/repository"
)

type fakeEmployeeStore struct {
	mu        sync.Mutex
	employees map[string]*domain.Employee
	existsErr error
	// existsOverride forces the ExistsByEmail answer regardless of stored
	// rows, so a duplicate insert can land after a negative exists check.
	existsOverride *bool
	updated        []*domain.Employee
}

func newFakeEmployeeStore() *fakeEmployeeStore {
	return &fakeEmployeeStore{employees: map[string]*domain.Employee{}}
}

func (f *fakeEmployeeStore) add(employee *domain.Employee) *domain.Employee {
	f.mu.Lock()
	defer f.mu.Unlock()
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	f.employees[employee.ID] = employee
	return employee
}

func (f *fakeEmployeeStore) Create(ctx context.Context, employee *domain.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.employees {
		if existing.Email == employee.Email {
			return repository.ErrEmailTaken
		}
	}
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	f.employees[employee.ID] = employee
	return nil
}

func (f *fakeEmployeeStore) Update(ctx context.Context, employee *domain.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.employees[employee.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.employees[employee.ID] = employee
	f.updated = append(f.updated, employee)
	return nil
}

func (f *fakeEmployeeStore) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	employee, ok := f.employees[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *employee
	return &copied, nil
}

func (f *fakeEmployeeStore) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, employee := range f.employees {
		if employee.Email == email {
			copied := *employee
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeEmployeeStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.existsOverride != nil {
		return *f.existsOverride, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, employee := range f.employees {
		if employee.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEmployeeStore) List(ctx context.Context) ([]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Employee, 0, len(f.employees))
	for _, employee := range f.employees {
		out = append(out, *employee)
	}
	return out, nil
}

type fakeAssetStore struct {
	mu     sync.Mutex
	assets map[string]*domain.Asset
	// existsOverride forces the ExistsBySerialNumber answer so a duplicate
	// insert can land after a negative exists check.
	existsOverride *bool
	// assignments is set by newFakeAssignmentStore. Deactivate consults it
	// for open rows under the same locks CreateOpen takes, mirroring the
	// row-lock serialization of the SQL implementation.
	assignments *fakeAssignmentStore
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{assets: map[string]*domain.Asset{}}
}

func (f *fakeAssetStore) add(asset *domain.Asset) *domain.Asset {
	f.mu.Lock()
	defer f.mu.Unlock()
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	f.assets[asset.ID] = asset
	return asset
}

func (f *fakeAssetStore) Create(ctx context.Context, asset *domain.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.assets {
		if existing.SerialNumber == asset.SerialNumber {
			return repository.ErrSerialNumberTaken
		}
	}
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	f.assets[asset.ID] = asset
	return nil
}

func (f *fakeAssetStore) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asset, ok := f.assets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *asset
	return &copied, nil
}

func (f *fakeAssetStore) GetBySerialNumber(ctx context.Context, serial string) (*domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, asset := range f.assets {
		if asset.SerialNumber == serial {
			copied := *asset
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAssetStore) ExistsBySerialNumber(ctx context.Context, serial string) (bool, error) {
	if f.existsOverride != nil {
		return *f.existsOverride, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, asset := range f.assets {
		if asset.SerialNumber == serial {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAssetStore) Deactivate(ctx context.Context, id string) error {
	// Lock order matches CreateOpen: assignment store first, then assets.
	if f.assignments != nil {
		f.assignments.mu.Lock()
		defer f.assignments.mu.Unlock()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	asset, ok := f.assets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if f.assignments != nil {
		for _, assignment := range f.assignments.assignments {
			if assignment.AssetID == id && assignment.AssignedUntil == nil {
				return repository.ErrAssetAlreadyAssigned
			}
		}
	}
	asset.IsActive = false
	return nil
}

func (f *fakeAssetStore) ListWithFilter(ctx context.Context, filter repository.AssetFilter) ([]domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Asset, 0, len(f.assets))
	for _, asset := range f.assets {
		if filter.IsActive != nil && asset.IsActive != *filter.IsActive {
			continue
		}
		if filter.AssetType != nil && asset.AssetType != *filter.AssetType {
			continue
		}
		out = append(out, *asset)
	}
	return out, nil
}

func (f *fakeAssetStore) CountWithFilter(ctx context.Context, filter repository.AssetFilter) (int64, error) {
	assets, err := f.ListWithFilter(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(assets)), nil
}

// fakeAssignmentStore enforces the same atomicity the SQL implementation
// gets from the asset row lock: the inactive check, the open-row check
// and the insert all run under one mutex.
type fakeAssignmentStore struct {
	mu          sync.Mutex
	assignments map[string]*domain.Assignment
	assets      *fakeAssetStore
	employees   *fakeEmployeeStore
}

func newFakeAssignmentStore(assets *fakeAssetStore, employees *fakeEmployeeStore) *fakeAssignmentStore {
	store := &fakeAssignmentStore{
		assignments: map[string]*domain.Assignment{},
		assets:      assets,
		employees:   employees,
	}
	assets.assignments = store
	return store
}

func (f *fakeAssignmentStore) CreateOpen(ctx context.Context, assignment *domain.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.assets.mu.Lock()
	asset, ok := f.assets.assets[assignment.AssetID]
	f.assets.mu.Unlock()
	if !ok {
		return pgx.ErrNoRows
	}
	if !asset.IsActive {
		return repository.ErrAssetInactive
	}
	for _, existing := range f.assignments {
		if existing.AssetID == assignment.AssetID && existing.AssignedUntil == nil {
			return repository.ErrAssetAlreadyAssigned
		}
	}

	assignment.ID = uuid.NewString()
	assignment.CreatedAt = time.Now()
	copied := *assignment
	f.assignments[assignment.ID] = &copied
	return nil
}

func (f *fakeAssignmentStore) record(assignment domain.Assignment) repository.AssignmentRecord {
	rec := repository.AssignmentRecord{Assignment: assignment}
	if asset, ok := f.assets.assets[assignment.AssetID]; ok {
		rec.AssetType = asset.AssetType
		rec.Vendor = asset.Vendor
		rec.Model = asset.Model
		rec.SerialNumber = asset.SerialNumber
	}
	if employee, ok := f.employees.employees[assignment.EmployeeID]; ok {
		rec.EmployeeFullName = employee.FullName
		rec.EmployeeEmail = employee.Email
	}
	return rec
}

func (f *fakeAssignmentStore) GetByID(ctx context.Context, id string) (*repository.AssignmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.assignments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	rec := f.record(*assignment)
	return &rec, nil
}

func (f *fakeAssignmentStore) Close(ctx context.Context, assignment *domain.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.assignments[assignment.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.AssignedUntil != nil {
		return repository.ErrAssignmentClosed
	}
	stored.AssignedUntil = assignment.AssignedUntil
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAssignmentStore) matches(assignment *domain.Assignment, filter repository.AssignmentFilter) bool {
	if filter.Active != nil && assignment.IsOpen() != *filter.Active {
		return false
	}
	if filter.EmployeeID != nil && assignment.EmployeeID != *filter.EmployeeID {
		return false
	}
	if filter.AssetID != nil && assignment.AssetID != *filter.AssetID {
		return false
	}
	return true
}

func (f *fakeAssignmentStore) ListWithFilter(ctx context.Context, filter repository.AssignmentFilter) ([]repository.AssignmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []repository.AssignmentRecord{}
	for _, assignment := range f.assignments {
		if f.matches(assignment, filter) {
			out = append(out, f.record(*assignment))
		}
	}
	if filter.SortBy == "assignedFrom" {
		sort.Slice(out, func(i, j int) bool {
			if filter.SortDesc {
				return out[i].AssignedFrom.After(out[j].AssignedFrom)
			}
			return out[i].AssignedFrom.Before(out[j].AssignedFrom)
		})
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = out[:0]
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeAssignmentStore) CountWithFilter(ctx context.Context, filter repository.AssignmentFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, assignment := range f.assignments {
		if f.matches(assignment, filter) {
			total++
		}
	}
	return total, nil
}

func (f *fakeAssignmentStore) FindOpenByAsset(ctx context.Context, assetID string) (*repository.AssignmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, assignment := range f.assignments {
		if assignment.AssetID == assetID && assignment.AssignedUntil == nil {
			rec := f.record(*assignment)
			return &rec, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAssignmentStore) ListOpenByEmployee(ctx context.Context, employeeID string) ([]repository.AssignmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []repository.AssignmentRecord{}
	for _, assignment := range f.assignments {
		if assignment.EmployeeID == employeeID && assignment.AssignedUntil == nil {
			out = append(out, f.record(*assignment))
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}
