package sales

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
	"stockroom/internal/domain/ledger"
	"stockroom/pkg/logger"
)

// StockIssuer is the slice of the stock ledger the sales side needs.
type StockIssuer interface {
	CheckAvailability(ctx context.Context, requests []ledger.AvailabilityRequest) error
	Issue(ctx context.Context, productID, locationID id.ID, qty types.Quantity, reference string) (entity.StockMovement, error)
}

// LocationResolver resolves the default shipping location of a warehouse.
type LocationResolver interface {
	GetDefaultForWarehouse(ctx context.Context, warehouseID id.ID) (*location.Location, error)
}

// Service provides business operations for sales orders.
type Service struct {
	repo      Repository
	ledger    StockIssuer
	locations LocationResolver
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*SalesOrder]
}

// NewService creates a new sales order service.
func NewService(
	repo Repository,
	stockLedger StockIssuer,
	locations LocationResolver,
	num numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    stockLedger,
		locations: locations,
		numerator: num,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*SalesOrder](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*SalesOrder] {
	return s.hooks
}

// Create creates a new sales order document.
func (s *Service) Create(ctx context.Context, doc *SalesOrder) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SO"), time.Now())
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

	logger.Info(ctx, "sales order created",
		"id", doc.ID,
		"number", doc.Number)
	return nil
}

// GetByID retrieves a sales order with items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*SalesOrder, error) {
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

// AddItem adds or merges a line and saves the order.
func (s *Service) AddItem(ctx context.Context, docID, productID id.ID, qty types.Quantity, unitPrice types.Money) (*SalesOrder, error) {
	return s.mutateLines(ctx, docID, func(doc *SalesOrder) error {
		return doc.AddItem(productID, qty, unitPrice)
	})
}

// RemoveItem deletes a line and saves the order.
func (s *Service) RemoveItem(ctx context.Context, docID, productID id.ID) (*SalesOrder, error) {
	return s.mutateLines(ctx, docID, func(doc *SalesOrder) error {
		return doc.RemoveItem(productID)
	})
}

func (s *Service) mutateLines(ctx context.Context, docID id.ID, mutate func(*SalesOrder) error) (*SalesOrder, error) {
	var doc *SalesOrder
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
func (s *Service) Advance(ctx context.Context, docID id.ID, next Status) (*SalesOrder, error) {
	var doc *SalesOrder
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

	logger.Info(ctx, "sales order advanced",
		"id", doc.ID,
		"number", doc.Number,
		"status", string(doc.Status))
	return doc, nil
}

// Ship issues every line from the warehouse's default location and marks
// the order SHIPPED. Legal only from CONFIRMED. Availability is verified
// for all lines under row locks before any issue is made, so either the
// whole order ships or nothing moves.
func (s *Service) Ship(ctx context.Context, docID, warehouseID id.ID) (*SalesOrder, error) {
	var doc *SalesOrder
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

		if err := Lifecycle.Require(doc.Status, "ship", StatusConfirmed); err != nil {
			return err
		}

		loc, err := s.locations.GetDefaultForWarehouse(ctx, warehouseID)
		if err != nil {
			return err
		}

		requests := make([]ledger.AvailabilityRequest, 0, len(doc.Items))
		for _, item := range doc.Items {
			requests = append(requests, ledger.AvailabilityRequest{
				ProductID:  item.ProductID,
				LocationID: loc.ID,
				Required:   item.Quantity,
			})
		}
		if err := s.ledger.CheckAvailability(ctx, requests); err != nil {
			return err
		}

		for _, item := range doc.Items {
			if _, err := s.ledger.Issue(ctx, item.ProductID, loc.ID, item.Quantity, doc.Number); err != nil {
				return fmt.Errorf("issue line %d: %w", item.LineNo, err)
			}
		}

		doc.Status = StatusShipped
		now := time.Now().UTC()
		doc.ShippedDate = &now

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

	logger.Info(ctx, "sales order shipped",
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

// List retrieves sales orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesOrder], error) {
	return s.repo.List(ctx, filter)
}
