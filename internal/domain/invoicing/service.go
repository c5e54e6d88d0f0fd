package invoicing

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/numerator"
	"stockroom/internal/core/tx"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/pkg/logger"
)

// Service provides business operations for invoices.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	policy    RevertPolicy
	hooks     *domain.HookRegistry[*Invoice]
}

// NewService creates a new invoice service. The revert policy governs
// whether a PAID invoice retreats when a correction reopens its balance;
// an empty value means HoldPaid.
func NewService(repo Repository, num numerator.Generator, txManager tx.Manager, policy RevertPolicy) *Service {
	if policy == "" {
		policy = HoldPaid
	}
	return &Service{
		repo:      repo,
		numerator: num,
		txManager: txManager,
		policy:    policy,
		hooks:     domain.NewHookRegistry[*Invoice](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

// Create creates a new invoice document.
func (s *Service) Create(ctx context.Context, doc *Invoice) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("INV"), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	doc.RecalculateTotals()

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

	logger.Info(ctx, "invoice created",
		"id", doc.ID,
		"number", doc.Number,
		"type", string(doc.Type))
	return nil
}

// GetByID retrieves an invoice with items and payments.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := s.loadParts(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) loadParts(ctx context.Context, doc *Invoice) error {
	items, err := s.repo.GetItems(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("get items: %w", err)
	}
	doc.Items = items

	payments, err := s.repo.GetPayments(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("get payments: %w", err)
	}
	doc.Payments = payments
	return nil
}

// AddItem appends a line on a draft invoice and saves it.
func (s *Service) AddItem(ctx context.Context, docID id.ID, description string, qty types.Quantity, unitPrice, taxRate types.Money) (*Invoice, error) {
	return s.mutate(ctx, docID, func(doc *Invoice) error {
		return doc.AddItem(description, qty, unitPrice, taxRate)
	})
}

// RemoveItem deletes a line from a draft invoice.
func (s *Service) RemoveItem(ctx context.Context, docID, lineID id.ID) (*Invoice, error) {
	return s.mutate(ctx, docID, func(doc *Invoice) error {
		return doc.RemoveItem(lineID)
	})
}

// SetDiscount changes the header discount on a draft invoice and
// recomputes totals.
func (s *Service) SetDiscount(ctx context.Context, docID id.ID, discount types.Money) (*Invoice, error) {
	return s.mutate(ctx, docID, func(doc *Invoice) error {
		if err := Lifecycle.Require(doc.Status, "set_discount", StatusDraft); err != nil {
			return err
		}
		if discount.IsNegative() {
			return apperror.NewValidation("discount cannot be negative").
				WithDetail("field", "discount")
		}
		doc.Discount = discount
		doc.RecalculateTotals()
		return nil
	})
}

// RecordPayment adds a payment and re-derives the payment status.
func (s *Service) RecordPayment(ctx context.Context, docID id.ID, amount types.Money, method PaymentMethod, reference string) (*Invoice, error) {
	var payment *Payment
	doc, err := s.mutateWithPayments(ctx, docID, func(doc *Invoice) error {
		var err error
		payment, err = doc.RecordPayment(amount, method, reference, s.policy)
		return err
	}, func(ctx context.Context) error {
		return s.repo.CreatePayment(ctx, *payment)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment recorded",
		"invoice_id", doc.ID,
		"number", doc.Number,
		"amount", amount.String(),
		"status", string(doc.Status))
	return doc, nil
}

// VoidPayment removes a payment and re-derives the payment status.
func (s *Service) VoidPayment(ctx context.Context, docID, paymentID id.ID) (*Invoice, error) {
	doc, err := s.mutateWithPayments(ctx, docID, func(doc *Invoice) error {
		return doc.VoidPayment(paymentID, s.policy)
	}, func(ctx context.Context) error {
		return s.repo.DeletePayment(ctx, paymentID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment voided",
		"invoice_id", doc.ID,
		"payment_id", paymentID,
		"status", string(doc.Status))
	return doc, nil
}

// Advance explicitly sets a lifecycle status (send, cancel, refund).
func (s *Service) Advance(ctx context.Context, docID id.ID, next Status) (*Invoice, error) {
	return s.mutateWithPayments(ctx, docID, func(doc *Invoice) error {
		return doc.Advance(next)
	}, nil)
}

// MarkOverdue sweeps unpaid invoices whose due date has passed and moves
// them to OVERDUE. Returns the number of invoices updated.
func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListDueBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due invoices: %w", err)
	}

	var updated int
	for _, doc := range due {
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			locked, err := s.repo.GetForUpdate(ctx, doc.ID)
			if err != nil {
				return err
			}
			if !locked.MarkOverdue(now) {
				return nil
			}
			updated++
			return s.repo.Update(ctx, locked)
		})
		if err != nil {
			return updated, err
		}
	}

	if updated > 0 {
		logger.Info(ctx, "invoices marked overdue", "count", updated)
	}
	return updated, nil
}

// Delete removes a draft invoice with its lines.
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

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}

// mutate runs a line mutation under the header row lock and persists the
// header and lines.
func (s *Service) mutate(ctx context.Context, docID id.ID, mutateFn func(*Invoice) error) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := s.loadParts(ctx, doc); err != nil {
			return err
		}

		if err := mutateFn(doc); err != nil {
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

// mutateWithPayments is like mutate but does not rewrite lines; it applies
// an optional extra persistence step (payment insert or delete) in the
// same transaction.
func (s *Service) mutateWithPayments(ctx context.Context, docID id.ID, mutateFn func(*Invoice) error, persist func(context.Context) error) (*Invoice, error) {
	var doc *Invoice
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := s.loadParts(ctx, doc); err != nil {
			return err
		}

		if err := mutateFn(doc); err != nil {
			return err
		}

		if persist != nil {
			if err := persist(ctx); err != nil {
				return err
			}
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
