package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/asset-service/internal/domain"
)

// Sentinel errors surfaced by CreateOpen. The service layer maps these
// to the caller-facing error taxonomy.
var (
	ErrAssetInactive        = errors.New("asset inactive")
	ErrAssetAlreadyAssigned = errors.New("asset already assigned")
	ErrAssignmentClosed     = errors.New("assignment already closed")
)

const uniqueViolationCode = "23505"

// AssignmentFilter captures admin listing parameters. Active filters on
// the presence of an end date: true means assigned_until IS NULL, false
// means assigned_until IS NOT NULL.
type AssignmentFilter struct {
	Active     *bool
	EmployeeID *string
	AssetID    *string
	SortBy     string
	SortDesc   bool
	Limit      int
	Offset     int
}

// AssignmentRecord is an assignment row joined with the display
// attributes of its asset and employee.
type AssignmentRecord struct {
	domain.Assignment
	AssetType        domain.AssetType
	Vendor           string
	Model            string
	SerialNumber     string
	EmployeeFullName string
	EmployeeEmail    string
}

// AssignmentRepository encapsulates assignment persistence. It is the
// sole writer of assignment rows.
type AssignmentRepository interface {
	// CreateOpen persists a new open assignment. The existence check,
	// active check and insert run in one transaction holding a row lock
	// on the asset, so concurrent creates for the same asset serialize.
	CreateOpen(ctx context.Context, assignment *domain.Assignment) error
	GetByID(ctx context.Context, id string) (*AssignmentRecord, error)
	// Close sets assigned_until on the row. The write only matches an
	// open row; a row already closed yields ErrAssignmentClosed, so a
	// racing second close cannot mutate the row again.
	Close(ctx context.Context, assignment *domain.Assignment) error
	ListWithFilter(ctx context.Context, filter AssignmentFilter) ([]AssignmentRecord, error)
	CountWithFilter(ctx context.Context, filter AssignmentFilter) (int64, error)
	FindOpenByAsset(ctx context.Context, assetID string) (*AssignmentRecord, error)
	ListOpenByEmployee(ctx context.Context, employeeID string) ([]AssignmentRecord, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) CreateOpen(ctx context.Context, assignment *domain.Assignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Lock the asset row first: two concurrent creates for the same
	// asset queue here, and the loser re-reads state the winner wrote.
	var isActive bool
	const lockQuery = `SELECT is_active FROM assets WHERE id=$1 FOR UPDATE`
	if err := tx.QueryRow(ctx, lockQuery, assignment.AssetID).Scan(&isActive); err != nil {
		return err
	}
	if !isActive {
		return ErrAssetInactive
	}

	var openExists bool
	const openQuery = `SELECT EXISTS (SELECT 1 FROM assignments WHERE asset_id=$1 AND assigned_until IS NULL)`
	if err := tx.QueryRow(ctx, openQuery, assignment.AssetID).Scan(&openExists); err != nil {
		return err
	}
	if openExists {
		return ErrAssetAlreadyAssigned
	}

	const insertQuery = `
        INSERT INTO assignments (asset_id, employee_id, assigned_from)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertQuery,
		assignment.AssetID,
		assignment.EmployeeID,
		assignment.AssignedFrom,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt); err != nil {
		// The partial unique index is the hard exclusivity guarantee; a
		// racing writer that slipped past the check surfaces here.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrAssetAlreadyAssigned
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*AssignmentRecord, error) {
	query := assignmentSelect + ` WHERE asg.id=$1`
	var record AssignmentRecord
	if err := scanAssignmentRecord(r.pool.QueryRow(ctx, query, id), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Close sets assigned_until on an open row. The IS NULL guard makes the
// check-and-write atomic: of two concurrent closes only one matches, the
// other distinguishes missing row from already-closed.
func (r *assignmentRepository) Close(ctx context.Context, assignment *domain.Assignment) error {
	const query = `UPDATE assignments SET assigned_until=$1, updated_at=NOW()
        WHERE id=$2 AND assigned_until IS NULL`
	cmd, err := r.pool.Exec(ctx, query, assignment.AssignedUntil, assignment.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		const existsQuery = `SELECT EXISTS (SELECT 1 FROM assignments WHERE id=$1)`
		if err := r.pool.QueryRow(ctx, existsQuery, assignment.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrAssignmentClosed
		}
		return pgx.ErrNoRows
	}
	return nil
}

const assignmentSelect = `
        SELECT asg.id, asg.asset_id, asg.employee_id, asg.assigned_from, asg.assigned_until,
               asg.created_at, asg.updated_at,
               a.asset_type, a.vendor, a.model, a.serial_number,
               e.full_name, e.email
        FROM assignments asg
        JOIN assets a ON a.id = asg.asset_id
        JOIN employees e ON e.id = asg.employee_id`

func (r *assignmentRepository) ListWithFilter(ctx context.Context, filter AssignmentFilter) ([]AssignmentRecord, error) {
	where, args := buildAssignmentWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		assignmentSelect, where, assignmentOrderClause(filter), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignmentRecords(rows)
}

func (r *assignmentRepository) CountWithFilter(ctx context.Context, filter AssignmentFilter) (int64, error) {
	where, args := buildAssignmentWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM assignments asg WHERE %s`, where)

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *assignmentRepository) FindOpenByAsset(ctx context.Context, assetID string) (*AssignmentRecord, error) {
	query := assignmentSelect + ` WHERE asg.asset_id=$1 AND asg.assigned_until IS NULL`
	var record AssignmentRecord
	if err := scanAssignmentRecord(r.pool.QueryRow(ctx, query, assetID), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *assignmentRepository) ListOpenByEmployee(ctx context.Context, employeeID string) ([]AssignmentRecord, error) {
	query := assignmentSelect + ` WHERE asg.employee_id=$1 AND asg.assigned_until IS NULL ORDER BY asg.assigned_from`
	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignmentRecords(rows)
}

// buildAssignmentWhere renders every filter combination through one
// parameterized builder instead of one query per combination.
func buildAssignmentWhere(filter AssignmentFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Active != nil {
		if *filter.Active {
			clauses = append(clauses, "asg.assigned_until IS NULL")
		} else {
			clauses = append(clauses, "asg.assigned_until IS NOT NULL")
		}
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		clauses = append(clauses, fmt.Sprintf("asg.employee_id=$%d", len(args)))
	}
	if filter.AssetID != nil {
		args = append(args, *filter.AssetID)
		clauses = append(clauses, fmt.Sprintf("asg.asset_id=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func assignmentOrderClause(filter AssignmentFilter) string {
	column, ok := assignmentSortColumns[filter.SortBy]
	if !ok {
		column = "asg.created_at"
	}
	if filter.SortDesc {
		return column + " DESC"
	}
	return column + " ASC"
}

var assignmentSortColumns = map[string]string{
	"id":            "asg.id",
	"assignedFrom":  "asg.assigned_from",
	"assignedUntil": "asg.assigned_until",
	"createdAt":     "asg.created_at",
}

func scanAssignmentRecords(rows pgx.Rows) ([]AssignmentRecord, error) {
	var result []AssignmentRecord
	for rows.Next() {
		var record AssignmentRecord
		if err := scanAssignmentRecord(rows, &record); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func scanAssignmentRecord(row pgx.Row, record *AssignmentRecord) error {
	return row.Scan(
		&record.ID,
		&record.AssetID,
		&record.EmployeeID,
		&record.AssignedFrom,
		&record.AssignedUntil,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.AssetType,
		&record.Vendor,
		&record.Model,
		&record.SerialNumber,
		&record.EmployeeFullName,
		&record.EmployeeEmail,
	)
}
