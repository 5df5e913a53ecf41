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

// ErrSerialNumberTaken is surfaced when an insert loses the race on the
// serial_number unique constraint.
var ErrSerialNumberTaken = errors.New("serial number taken")

// openAssignmentExists is the subquery deriving "currently assigned"
// from the presence of an open assignment row.
const openAssignmentExists = `EXISTS (SELECT 1 FROM assignments asg WHERE asg.asset_id = a.id AND asg.assigned_until IS NULL)`

// AssetFilter captures admin search parameters. Nil fields are ignored,
// so every combination of active/type/assigned resolves through this
// single builder.
type AssetFilter struct {
	IsActive  *bool
	AssetType *domain.AssetType
	Assigned  *bool
	SortBy    string
	SortDesc  bool
	Limit     int
	Offset    int
}

// AssetRepository encapsulates asset persistence.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	GetBySerialNumber(ctx context.Context, serial string) (*domain.Asset, error)
	ExistsBySerialNumber(ctx context.Context, serial string) (bool, error)
	// Deactivate retires the asset unless an open assignment exists, in
	// which case it returns ErrAssetAlreadyAssigned. Check and write are
	// serialized against CreateOpen via the asset row lock.
	Deactivate(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter AssetFilter) ([]domain.Asset, error)
	CountWithFilter(ctx context.Context, filter AssetFilter) (int64, error)
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository instantiates repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (asset_type, vendor, model, serial_number, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		asset.AssetType,
		asset.Vendor,
		asset.Model,
		asset.SerialNumber,
		asset.IsActive,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrSerialNumberTaken
		}
		return err
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	const query = `
        SELECT id, asset_type, vendor, model, serial_number, is_active, created_at, updated_at
        FROM assets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *assetRepository) GetBySerialNumber(ctx context.Context, serial string) (*domain.Asset, error) {
	const query = `
        SELECT id, asset_type, vendor, model, serial_number, is_active, created_at, updated_at
        FROM assets WHERE serial_number=$1`
	return r.fetchSingle(ctx, query, serial)
}

func (r *assetRepository) ExistsBySerialNumber(ctx context.Context, serial string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM assets WHERE serial_number=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, serial).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Deactivate flips is_active to false. The open-assignment check and
// the update run in one transaction holding the asset row lock, the
// same protocol CreateOpen uses, so a concurrent create cannot slip an
// open assignment in between the check and the write. The transition is
// one-way; rows already inactive are updated idempotently.
func (r *assetRepository) Deactivate(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var isActive bool
	const lockQuery = `SELECT is_active FROM assets WHERE id=$1 FOR UPDATE`
	if err := tx.QueryRow(ctx, lockQuery, id).Scan(&isActive); err != nil {
		return err
	}

	var openExists bool
	const openQuery = `SELECT EXISTS (SELECT 1 FROM assignments WHERE asset_id=$1 AND assigned_until IS NULL)`
	if err := tx.QueryRow(ctx, openQuery, id).Scan(&openExists); err != nil {
		return err
	}
	if openExists {
		return ErrAssetAlreadyAssigned
	}

	const updateQuery = `UPDATE assets SET is_active=FALSE, updated_at=NOW() WHERE id=$1`
	if _, err := tx.Exec(ctx, updateQuery, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *assetRepository) ListWithFilter(ctx context.Context, filter AssetFilter) ([]domain.Asset, error) {
	where, args := buildAssetWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT id, asset_type, vendor, model, serial_number, is_active, created_at, updated_at
        FROM assets a WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		where, assetOrderClause(filter), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		var asset domain.Asset
		if err := scanAsset(rows, &asset); err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

func (r *assetRepository) CountWithFilter(ctx context.Context, filter AssetFilter) (int64, error) {
	where, args := buildAssetWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM assets a WHERE %s`, where)

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func buildAssetWhere(filter AssetFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("a.is_active=$%d", len(args)))
	}
	if filter.AssetType != nil {
		args = append(args, *filter.AssetType)
		clauses = append(clauses, fmt.Sprintf("a.asset_type=$%d", len(args)))
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			clauses = append(clauses, openAssignmentExists)
		} else {
			clauses = append(clauses, "NOT "+openAssignmentExists)
		}
	}
	return strings.Join(clauses, " AND "), args
}

func assetOrderClause(filter AssetFilter) string {
	column, ok := assetSortColumns[filter.SortBy]
	if !ok {
		column = "a.created_at"
	}
	if filter.SortDesc {
		return column + " DESC"
	}
	return column + " ASC"
}

var assetSortColumns = map[string]string{
	"id":           "a.id",
	"assetType":    "a.asset_type",
	"vendor":       "a.vendor",
	"model":        "a.model",
	"serialNumber": "a.serial_number",
	"createdAt":    "a.created_at",
}

func (r *assetRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Asset, error) {
	var asset domain.Asset
	if err := scanAsset(r.pool.QueryRow(ctx, query, arg), &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func scanAsset(row pgx.Row, asset *domain.Asset) error {
	return row.Scan(
		&asset.ID,
		&asset.AssetType,
		&asset.Vendor,
		&asset.Model,
		&asset.SerialNumber,
		&asset.IsActive,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
}
