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

// AssetService manages the asset lifecycle: creation, one-way
// deactivation and occupant-joined reads.
type AssetService struct {
	assets      repository.AssetRepository
	assignments repository.AssignmentRepository
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// AssetDependencies bundles collaborators.
type AssetDependencies struct {
	AssetRepo      repository.AssetRepository
	AssignmentRepo repository.AssignmentRepository
	Dispatcher     events.Dispatcher
	Now            func() time.Time
}

// NewAssetService creates the service.
func NewAssetService(deps AssetDependencies) *AssetService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AssetService{
		assets:      deps.AssetRepo,
		assignments: deps.AssignmentRepo,
		dispatcher:  deps.Dispatcher,
		now:         now,
	}
}

// AssetCreateInput carries the create parameters.
type AssetCreateInput struct {
	AssetType    domain.AssetType
	Vendor       string
	Model        string
	SerialNumber string
}

// AssetHolder identifies the employee holding an asset via an open
// assignment.
type AssetHolder struct {
	EmployeeID string
	FullName   string
	Email      string
}

// AssetDetail joins an asset with its current holder, computed per call
// from the open assignment rather than any cached column.
type AssetDetail struct {
	Asset  domain.Asset
	Holder *AssetHolder
}

// Create registers a new asset. Serial numbers are globally unique,
// matched case-sensitively.
func (s *AssetService) Create(ctx context.Context, actor *domain.Employee, input AssetCreateInput) (*domain.Asset, error) {
	exists, err := s.assets.ExistsBySerialNumber(ctx, input.SerialNumber)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("serial number already in use", map[string]any{"serial_number": input.SerialNumber})
	}

	asset := &domain.Asset{
		AssetType:    input.AssetType,
		Vendor:       input.Vendor,
		Model:        input.Model,
		SerialNumber: input.SerialNumber,
		IsActive:     true,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		if errors.Is(err, repository.ErrSerialNumberTaken) {
			// Raced with another create past the exists-check; the
			// unique constraint decides.
			return nil, apperrors.NewConflict("serial number already in use", map[string]any{"serial_number": input.SerialNumber})
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.EventAssetCreated, asset.ID, events.AssetCreatedPayload{
		AssetType:    asset.AssetType,
		SerialNumber: asset.SerialNumber,
	})
	return asset, nil
}

// Deactivate retires an asset. An asset with an open assignment cannot
// be retired; the transition is one-way.
func (s *AssetService) Deactivate(ctx context.Context, actor *domain.Employee, assetID string) error {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("asset", map[string]any{"asset_id": assetID})
		}
		return apperrors.MapError(err)
	}

	// The open-assignment check lives inside the repository transaction,
	// serialized with assignment creation via the asset row lock.
	if err := s.assets.Deactivate(ctx, assetID); err != nil {
		switch {
		case errors.Is(err, repository.ErrAssetAlreadyAssigned):
			return apperrors.NewInvalidState("cannot deactivate an asset with an open assignment", map[string]any{"asset_id": assetID})
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NewNotFound("asset", map[string]any{"asset_id": assetID})
		}
		return apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.EventAssetDeactivated, assetID, events.AssetDeactivatedPayload{
		SerialNumber: asset.SerialNumber,
	})
	return nil
}

// GetByID returns the asset joined with its current holder, if any.
func (s *AssetService) GetByID(ctx context.Context, assetID string) (*AssetDetail, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": assetID})
		}
		return nil, apperrors.MapError(err)
	}
	detail, err := s.withHolder(ctx, *asset)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// List returns assets matching the filter, each joined with its current
// holder, plus the total count for pagination.
func (s *AssetService) List(ctx context.Context, filter repository.AssetFilter) ([]AssetDetail, int64, error) {
	assets, err := s.assets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	total, err := s.assets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}

	details := make([]AssetDetail, 0, len(assets))
	for _, asset := range assets {
		detail, err := s.withHolder(ctx, asset)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, *detail)
	}
	return details, total, nil
}

func (s *AssetService) withHolder(ctx context.Context, asset domain.Asset) (*AssetDetail, error) {
	detail := AssetDetail{Asset: asset}
	open, err := s.assignments.FindOpenByAsset(ctx, asset.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &detail, nil
		}
		return nil, apperrors.MapError(err)
	}
	detail.Holder = &AssetHolder{
		EmployeeID: open.EmployeeID,
		FullName:   open.EmployeeFullName,
		Email:      open.EmployeeEmail,
	}
	return &detail, nil
}

func (s *AssetService) publish(ctx context.Context, actor *domain.Employee, eventType events.EventType, subjectID string, payload any) {
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
