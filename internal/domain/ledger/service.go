package ledger

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/core/apperror"
	appctx "stockroom/internal/core/context"
	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/internal/core/types"
	"stockroom/pkg/logger"
)

// Service provides the stock ledger operations. Every mutation writes the
// stock item, the product counter and the movement record in one
// transaction; a failure of any sub-write rolls back all of them.
//
// Calls nest: when a caller (order receive/ship) already opened a
// transaction, RunInTransaction joins it, so a multi-line operation
// commits or rolls back as a single unit.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new stock ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Receive increases stock of a product at a location and appends an IN movement.
func (s *Service) Receive(ctx context.Context, productID, locationID id.ID, qty types.Quantity, reference string) (entity.StockMovement, error) {
	if err := validateOperands(productID, locationID, qty); err != nil {
		return entity.StockMovement{}, err
	}

	var movement entity.StockMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		if err := s.repo.AddItemQuantity(ctx, productID, locationID, qty, now); err != nil {
			return fmt.Errorf("add stock item quantity: %w", err)
		}
		if err := s.repo.AdjustProductStock(ctx, productID, qty); err != nil {
			return fmt.Errorf("adjust product stock: %w", err)
		}

		movement = entity.NewStockMovement(entity.MovementIn, productID, nil, &locationID, qty, reference, appctx.GetUserID(ctx))
		if err := s.repo.CreateMovement(ctx, movement); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.StockMovement{}, err
	}

	logger.Info(ctx, "stock received",
		"product_id", productID,
		"location_id", locationID,
		"quantity", qty.String(),
		"reference", reference,
	)
	return movement, nil
}

// Issue decreases stock of a product at a location and appends an OUT movement.
// Fails with InsufficientStock when the location holds less than requested;
// nothing is written in that case.
func (s *Service) Issue(ctx context.Context, productID, locationID id.ID, qty types.Quantity, reference string) (entity.StockMovement, error) {
	if err := validateOperands(productID, locationID, qty); err != nil {
		return entity.StockMovement{}, err
	}

	var movement entity.StockMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.deduct(ctx, productID, locationID, qty); err != nil {
			return err
		}
		if err := s.repo.AdjustProductStock(ctx, productID, qty.Neg()); err != nil {
			return fmt.Errorf("adjust product stock: %w", err)
		}

		movement = entity.NewStockMovement(entity.MovementOut, productID, &locationID, nil, qty, reference, appctx.GetUserID(ctx))
		if err := s.repo.CreateMovement(ctx, movement); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.StockMovement{}, err
	}

	logger.Info(ctx, "stock issued",
		"product_id", productID,
		"location_id", locationID,
		"quantity", qty.String(),
		"reference", reference,
	)
	return movement, nil
}

// Transfer moves stock between two locations of the same product, recorded
// as a single TRANSFER movement. The product's total stock is unchanged, so
// the cached counter is not touched.
func (s *Service) Transfer(ctx context.Context, productID, fromLocationID, toLocationID id.ID, qty types.Quantity, reference string) (entity.StockMovement, error) {
	if err := validateOperands(productID, fromLocationID, qty); err != nil {
		return entity.StockMovement{}, err
	}
	if id.IsNil(toLocationID) {
		return entity.StockMovement{}, apperror.NewValidation("destination location is required").
			WithDetail("field", "toLocationId")
	}
	if fromLocationID == toLocationID {
		return entity.StockMovement{}, apperror.NewValidation("source and destination locations must differ").
			WithDetail("locationId", fromLocationID.String())
	}

	var movement entity.StockMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		if _, err := s.deduct(ctx, productID, fromLocationID, qty); err != nil {
			return err
		}
		if err := s.repo.AddItemQuantity(ctx, productID, toLocationID, qty, now); err != nil {
			return fmt.Errorf("add stock item quantity: %w", err)
		}

		movement = entity.NewStockMovement(entity.MovementTransfer, productID, &fromLocationID, &toLocationID, qty, reference, appctx.GetUserID(ctx))
		if err := s.repo.CreateMovement(ctx, movement); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return entity.StockMovement{}, err
	}

	logger.Info(ctx, "stock transferred",
		"product_id", productID,
		"from_location_id", fromLocationID,
		"to_location_id", toLocationID,
		"quantity", qty.String(),
		"reference", reference,
	)
	return movement, nil
}

// deduct locks the (product, location) row, checks availability and writes
// the decremented quantity. Returns the remaining quantity.
func (s *Service) deduct(ctx context.Context, productID, locationID id.ID, qty types.Quantity) (types.Quantity, error) {
	item, err := s.repo.GetItemForUpdate(ctx, productID, locationID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, apperror.NewInsufficientStock(productID.String(), qty.Float64(), 0)
		}
		return 0, fmt.Errorf("get stock item: %w", err)
	}

	if item.Quantity < qty {
		return 0, apperror.NewInsufficientStock(productID.String(), qty.Float64(), item.Quantity.Float64())
	}

	remaining := item.Quantity - qty
	if err := s.repo.SetItemQuantity(ctx, productID, locationID, remaining, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("set stock item quantity: %w", err)
	}
	return remaining, nil
}

// CheckAvailability verifies, under a row lock, that the location holds at
// least the required quantity of each request. Callers run it inside their
// own transaction before issuing, so a passing check cannot be invalidated
// by a concurrent shipment.
func (s *Service) CheckAvailability(ctx context.Context, requests []AvailabilityRequest) error {
	for _, req := range requests {
		item, err := s.repo.GetItemForUpdate(ctx, req.ProductID, req.LocationID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewInsufficientStock(req.ProductID.String(), req.Required.Float64(), 0)
			}
			return fmt.Errorf("get stock item for %s: %w", req.ProductID, err)
		}
		if item.Quantity < req.Required {
			return apperror.NewInsufficientStock(req.ProductID.String(), req.Required.Float64(), item.Quantity.Float64())
		}
	}
	return nil
}

// AvailabilityRequest is one line of a pre-shipment stock check.
type AvailabilityRequest struct {
	ProductID  id.ID
	LocationID id.ID
	Required   types.Quantity
}

// GetQuantity returns the current quantity at a location; zero when the
// product has never been stocked there.
func (s *Service) GetQuantity(ctx context.Context, productID, locationID id.ID) (types.Quantity, error) {
	item, err := s.repo.GetItem(ctx, productID, locationID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return item.Quantity, nil
}

// GetProductStock returns all stock rows of a product.
func (s *Service) GetProductStock(ctx context.Context, productID id.ID) ([]entity.StockItem, error) {
	return s.repo.ListItemsByProduct(ctx, productID)
}

// GetLocationStock returns all stock rows at a location.
func (s *Service) GetLocationStock(ctx context.Context, locationID id.ID) ([]entity.StockItem, error) {
	return s.repo.ListItemsByLocation(ctx, locationID)
}

// GetMovementHistory returns movement records, newest first.
func (s *Service) GetMovementHistory(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.ListMovements(ctx, filter)
}

// Drift describes one product whose cached stock disagrees with the stock
// item rows or the movement log.
type Drift struct {
	ProductID   id.ID          `json:"productId"`
	SKU         string         `json:"sku"`
	CachedStock types.Quantity `json:"cachedStock"`
	ItemSum     types.Quantity `json:"itemSum"`
	MovementNet types.Quantity `json:"movementNet"`
}

// Fault renders the drift as a consistency fault error.
func (d Drift) Fault() *apperror.AppError {
	return apperror.NewConsistencyFault("cached stock drifted from ledger").
		WithDetail("product_id", d.ProductID.String()).
		WithDetail("sku", d.SKU).
		WithDetail("cached_stock", d.CachedStock.String()).
		WithDetail("item_sum", d.ItemSum.String()).
		WithDetail("movement_net", d.MovementNet.String())
}

// Reconcile compares, per product, the cached counter against the sum of
// stock item rows and the net of the movement log. Any disagreement is a
// bug somewhere, not a recoverable runtime condition; the caller decides
// how loudly to report it.
func (s *Service) Reconcile(ctx context.Context) ([]Drift, error) {
	totals, err := s.repo.ListStockTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stock totals: %w", err)
	}

	var drifts []Drift
	for _, t := range totals {
		if t.CachedStock == t.ItemSum && t.CachedStock == t.MovementNet {
			continue
		}
		drifts = append(drifts, Drift{
			ProductID:   t.ProductID,
			SKU:         t.SKU,
			CachedStock: t.CachedStock,
			ItemSum:     t.ItemSum,
			MovementNet: t.MovementNet,
		})
	}

	if len(drifts) > 0 {
		logger.Error(ctx, "stock ledger drift detected", "products", len(drifts))
	}
	return drifts, nil
}

func validateOperands(productID, locationID id.ID, qty types.Quantity) error {
	if id.IsNil(productID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if id.IsNil(locationID) {
		return apperror.NewValidation("location is required").
			WithDetail("field", "locationId")
	}
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", qty.String())
	}
	return nil
}
