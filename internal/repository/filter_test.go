package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/asset-service/internal/domain"
)

func TestBuildAssetWhereEmptyFilter(t *testing.T) {
	where, args := buildAssetWhere(AssetFilter{})
	require.Equal(t, "1=1", where)
	require.Empty(t, args)
}

func TestBuildAssetWhereAllFields(t *testing.T) {
	active := true
	assigned := false
	laptop := domain.AssetTypeLaptop

	where, args := buildAssetWhere(AssetFilter{
		IsActive:  &active,
		AssetType: &laptop,
		Assigned:  &assigned,
	})
	require.Equal(t, "1=1 AND a.is_active=$1 AND a.asset_type=$2 AND NOT "+openAssignmentExists, where)
	require.Equal(t, []any{true, laptop}, args)
}

func TestBuildAssetWhereAssignedUsesExistsSubquery(t *testing.T) {
	assigned := true
	where, args := buildAssetWhere(AssetFilter{Assigned: &assigned})
	require.Equal(t, "1=1 AND "+openAssignmentExists, where)
	require.Empty(t, args)
}

func TestAssetOrderClause(t *testing.T) {
	require.Equal(t, "a.created_at ASC", assetOrderClause(AssetFilter{}))
	require.Equal(t, "a.serial_number DESC", assetOrderClause(AssetFilter{SortBy: "serialNumber", SortDesc: true}))
	// unknown sort keys fall back instead of reaching the SQL string
	require.Equal(t, "a.created_at ASC", assetOrderClause(AssetFilter{SortBy: "; DROP TABLE assets"}))
}

func TestBuildAssignmentWhereEmptyFilter(t *testing.T) {
	where, args := buildAssignmentWhere(AssignmentFilter{})
	require.Equal(t, "1=1", where)
	require.Empty(t, args)
}

func TestBuildAssignmentWhereActive(t *testing.T) {
	active := true
	where, args := buildAssignmentWhere(AssignmentFilter{Active: &active})
	require.Equal(t, "1=1 AND asg.assigned_until IS NULL", where)
	require.Empty(t, args)

	inactive := false
	where, _ = buildAssignmentWhere(AssignmentFilter{Active: &inactive})
	require.Equal(t, "1=1 AND asg.assigned_until IS NOT NULL", where)
}

func TestBuildAssignmentWhereCombined(t *testing.T) {
	active := true
	employeeID := "emp-1"
	assetID := "asset-1"

	where, args := buildAssignmentWhere(AssignmentFilter{
		Active:     &active,
		EmployeeID: &employeeID,
		AssetID:    &assetID,
	})
	require.Equal(t, "1=1 AND asg.assigned_until IS NULL AND asg.employee_id=$1 AND asg.asset_id=$2", where)
	require.Equal(t, []any{"emp-1", "asset-1"}, args)
}

func TestAssignmentOrderClause(t *testing.T) {
	require.Equal(t, "asg.created_at ASC", assignmentOrderClause(AssignmentFilter{}))
	require.Equal(t, "asg.assigned_from DESC", assignmentOrderClause(AssignmentFilter{SortBy: "assignedFrom", SortDesc: true}))
	require.Equal(t, "asg.created_at ASC", assignmentOrderClause(AssignmentFilter{SortBy: "bogus"}))
}
