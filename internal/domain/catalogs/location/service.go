package location

import (
	"context"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
)

// Service provides business logic for the Location catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Location]
	repo Repository
}

// NewService creates a new Location service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Location]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "location",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkHierarchy)
	base.Hooks().OnBeforeUpdate(svc.checkHierarchy)

	return svc
}

// checkHierarchy enforces the zone > rack > shelf > bin parent chain.
// A location's parent must exist, belong to the same warehouse, and have
// the immediately preceding type.
func (s *Service) checkHierarchy(ctx context.Context, loc *Location) error {
	requiredParent, needsParent := loc.RequiredParentType()
	if !needsParent {
		return nil
	}

	if loc.ParentID == nil {
		return apperror.NewValidation("location requires a parent").
			WithDetail("type", string(loc.Type)).
			WithDetail("requiredParentType", string(requiredParent))
	}

	parentID, err := id.Parse(*loc.ParentID)
	if err != nil {
		return apperror.NewValidation("invalid parent location id").
			WithDetail("field", "parentId").
			WithDetail("value", *loc.ParentID)
	}

	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("location", *loc.ParentID)
		}
		return err
	}

	if parent.WarehouseID != loc.WarehouseID {
		return apperror.NewValidation("parent location belongs to another warehouse").
			WithDetail("field", "parentId").
			WithDetail("parentWarehouseId", parent.WarehouseID.String())
	}

	if parent.Type != requiredParent {
		return apperror.NewValidation("parent location has wrong type").
			WithDetail("type", string(loc.Type)).
			WithDetail("parentType", string(parent.Type)).
			WithDetail("requiredParentType", string(requiredParent))
	}

	return nil
}

// GetDefaultForWarehouse resolves the warehouse's default location, the
// active location with the lowest code.
func (s *Service) GetDefaultForWarehouse(ctx context.Context, warehouseID id.ID) (*Location, error) {
	loc, err := s.repo.GetDefaultForWarehouse(ctx, warehouseID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("location", warehouseID.String()).
				WithDetail("reason", "warehouse has no active locations")
		}
		return nil, err
	}
	return loc, nil
}

// ListByWarehouse retrieves all locations of a warehouse.
func (s *Service) ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]*Location, error) {
	return s.repo.ListByWarehouse(ctx, warehouseID)
}
