package purchase

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/core/entity"
	"stockroom/internal/core/id"
	"stockroom/internal/core/numerator"
	"stockroom/internal/core/tx"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/internal/domain/catalogs/location"
	"stockroom/pkg/logger"
)

// StockReceiver is the slice of the stock ledger the purchase side needs.
type StockReceiver interface {
	Receive(ctx context.Context, productID, locationID id.ID, qty types.Quantity, reference string) (entity.StockMovement, error)
}

// LocationResolver resolves the default receiving location of a warehouse.
type LocationResolver interface {
	GetDefaultForWarehouse(ctx context.Context, warehouseID id.ID) (*location.Location, error)
}

// Service provides business operations for purchase orders.
type Service struct {
	repo      Repository
	ledger    StockReceiver
	locations LocationResolver
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*PurchaseOrder]
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	ledger StockReceiver,
	locations LocationResolver,
	num numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		locations: locations,
		numerator: num,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*PurchaseOrder](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*PurchaseOrder] {
	return s.hooks
}

// Create creates a new purchase order document.
func (s *Service) Create(ctx context.Context, doc *PurchaseOrder) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PO"), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "purchase order created",
		"id", doc.ID,
		"number", doc.Number)
	return nil
}

// GetByID retrieves a purchase order with items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	doc.Items = items
	return doc, nil
}

// AddItem adds or merges a line on a draft order and saves it.
func (s *Service) AddItem(ctx context.Context, docID, productID id.ID, qty types.Quantity, unitCost types.Money) (*PurchaseOrder, error) {
	return s.mutateLines(ctx, docID, func(doc *PurchaseOrder) error {
		return doc.AddItem(productID, qty, unitCost)
	})
}

// UpdateItem replaces a line's quantity and cost on a draft order.
func (s *Service) UpdateItem(ctx context.Context, docID, productID id.ID, qty types.Quantity, unitCost types.Money) (*PurchaseOrder, error) {
	return s.mutateLines(ctx, docID, func(doc *PurchaseOrder) error {
		return doc.UpdateItem(productID, qty, unitCost)
	})
}

// RemoveItem deletes a line from a draft order.
func (s *Service) RemoveItem(ctx context.Context, docID, productID id.ID) (*PurchaseOrder, error) {
	return s.mutateLines(ctx, docID, func(doc *PurchaseOrder) error {
		return doc.RemoveItem(productID)
	})
}

// mutateLines applies a line mutation under the header row lock and persists
// the result. The total is recomputed by the mutation itself.
func (s *Service) mutateLines(ctx context.Context, docID id.ID, mutate func(*PurchaseOrder) error) (*PurchaseOrder, error) {
	var doc *PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		items, err := s.repo.GetItems(ctx, docID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		doc.Items = items

		if err := mutate(doc); err != nil {
			return err
		}

		if err := s.repo.SaveItems(ctx, docID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}
	return doc, nil
}

// Advance moves the order to the next status.
func (s *Service) Advance(ctx context.Context, docID id.ID, next Status) (*PurchaseOrder, error) {
	var doc *PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.Advance(next); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}

	logger.Info(ctx, "purchase order advanced",
		"id", doc.ID,
		"number", doc.Number,
		"status", string(doc.Status))
	return doc, nil
}

// Receive books all outstanding line quantities into the warehouse's
// default location and marks the order RECEIVED. Legal from CONFIRMED or
// PARTIAL. Each line's receive watermark keeps a re-run from
// double-receiving already-booked lines; the whole operation commits as
// one transaction, so a failure on any line rolls back all of them.
func (s *Service) Receive(ctx context.Context, docID, warehouseID id.ID) (*PurchaseOrder, error) {
	var doc *PurchaseOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		items, err := s.repo.GetItems(ctx, docID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}
		doc.Items = items

		if err := Lifecycle.Require(doc.Status, "receive", StatusConfirmed, StatusPartial); err != nil {
			return err
		}

		loc, err := s.locations.GetDefaultForWarehouse(ctx, warehouseID)
		if err != nil {
			return err
		}

		for i := range doc.Items {
			outstanding := doc.Items[i].Outstanding()
			if outstanding.IsZero() {
				continue
			}
			if _, err := s.ledger.Receive(ctx, doc.Items[i].ProductID, loc.ID, outstanding, doc.Number); err != nil {
				return fmt.Errorf("receive line %d: %w", doc.Items[i].LineNo, err)
			}
			doc.Items[i].ReceivedQty = doc.Items[i].Quantity
		}

		doc.Status = StatusReceived
		now := time.Now().UTC()
		doc.ReceivedDate = &now

		if err := s.repo.SaveItems(ctx, docID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}

	logger.Info(ctx, "purchase order received",
		"id", doc.ID,
		"number", doc.Number,
		"warehouse_id", warehouseID)
	return doc, nil
}

// Delete removes a draft order, lines first, then the header.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := Lifecycle.Require(doc.Status, "delete", StatusDraft); err != nil {
			return err
		}
		return s.repo.Delete(ctx, docID)
	})
}

// List retrieves purchase orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return s.repo.List(ctx, filter)
}
