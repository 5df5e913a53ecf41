package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/events"
)

func newEmployeeService(store *fakeEmployeeStore, dispatcher *recordingDispatcher, hasher Hasher) *EmployeeService {
	return NewEmployeeService(EmployeeDependencies{
		EmployeeRepo: store,
		Dispatcher:   dispatcher,
		Hasher:       hasher,
		Now:          func() time.Time { return testClock },
	})
}

func TestCreateEmployeeSuccess(t *testing.T) {
	store := newFakeEmployeeStore()
	dispatcher := &recordingDispatcher{}
	service := newEmployeeService(store, dispatcher, func(password string) (string, error) {
		return "hashed:" + password, nil
	})

	employee, err := service.Create(context.Background(), nil, EmployeeCreateInput{
		FullName:  "Ada Lovelace",
		Email:     "ada@example.com",
		Password:  "s3cret",
		Role:      domain.EmployeeRoleStaff,
		HiredFrom: testClock.AddDate(-1, 0, 0),
	})
	require.NoError(t, err)
	require.NotEmpty(t, employee.ID)
	require.Equal(t, "hashed:s3cret", employee.PasswordHash)

	published := dispatcher.published()
	require.Len(t, published, 1)
	require.Equal(t, events.EventEmployeeCreated, published[0].Type)
	require.Equal(t, employee.ID, published[0].SubjectID)
}

func TestCreateEmployeeDuplicateEmailSkipsHashing(t *testing.T) {
	store := newFakeEmployeeStore()
	store.add(&domain.Employee{Email: "ada@example.com"})
	hasherCalled := false
	service := newEmployeeService(store, &recordingDispatcher{}, func(password string) (string, error) {
		hasherCalled = true
		return password, nil
	})

	_, err := service.Create(context.Background(), nil, EmployeeCreateInput{
		FullName:  "Someone Else",
		Email:     "ada@example.com",
		Password:  "s3cret",
		Role:      domain.EmployeeRoleStaff,
		HiredFrom: testClock,
	})
	requireCode(t, err, "CONFLICT")
	require.False(t, hasherCalled)
}

// A duplicate email landing between the exists check and the insert
// must still surface as a conflict, decided by the unique constraint.
func TestCreateEmployeeEmailRaceConflicts(t *testing.T) {
	store := newFakeEmployeeStore()
	store.add(&domain.Employee{Email: "ada@example.com"})
	noRow := false
	store.existsOverride = &noRow
	service := newEmployeeService(store, &recordingDispatcher{}, func(password string) (string, error) {
		return password, nil
	})

	_, err := service.Create(context.Background(), nil, EmployeeCreateInput{
		FullName:  "Someone Else",
		Email:     "ada@example.com",
		Password:  "s3cret",
		Role:      domain.EmployeeRoleStaff,
		HiredFrom: testClock,
	})
	requireCode(t, err, "CONFLICT")
}

func TestGetEmployeeNotFound(t *testing.T) {
	service := newEmployeeService(newFakeEmployeeStore(), &recordingDispatcher{}, nil)
	_, err := service.GetByID(context.Background(), "missing")
	requireCode(t, err, "NOT_FOUND")
}

func TestListEmployees(t *testing.T) {
	store := newFakeEmployeeStore()
	store.add(&domain.Employee{Email: "ada@example.com"})
	store.add(&domain.Employee{Email: "grace@example.com"})
	service := newEmployeeService(store, &recordingDispatcher{}, nil)

	employees, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, employees, 2)
}
