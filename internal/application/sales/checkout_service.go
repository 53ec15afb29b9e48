package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retail/stockview/internal/domain/identity"
	"github.com/retail/stockview/internal/domain/sales"
	"github.com/retail/stockview/internal/domain/shared"
	"github.com/retail/stockview/internal/infrastructure/logger"
)

// SaleDraft is the sale handed to the recorder at checkout.
type SaleDraft struct {
	CashierID string
	Lines     []sales.CartLine
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	CreatedAt time.Time
}

// SaleRecorder persists a completed sale. Implementations own transport
// and storage; an error means the sale was not recorded.
type SaleRecorder interface {
	RecordSale(ctx context.Context, draft SaleDraft) error
}

// CheckoutService turns a cart into a recorded sale. The cart is cleared
// optimistically so the terminal is immediately ready for the next
// customer; if recording fails the previous cart contents are restored.
type CheckoutService struct {
	recorder SaleRecorder
	taxRate  decimal.Decimal
}

// NewCheckoutService creates a CheckoutService with the given tax rate.
func NewCheckoutService(recorder SaleRecorder, taxRate decimal.Decimal) *CheckoutService {
	return &CheckoutService{recorder: recorder, taxRate: taxRate}
}

// Checkout records the cart as a sale. Returns the recorded draft on
// success. On failure the cart is restored to its pre-checkout state and
// the recorder's error is returned.
func (s *CheckoutService) Checkout(ctx context.Context, sess *identity.Session, cart *sales.Cart) (*SaleDraft, error) {
	if !sess.CanSell() {
		return nil, shared.ErrForbidden
	}
	if cart.IsEmpty() {
		return nil, shared.ErrEmptyCart
	}
	ctx = logger.WithUserID(ctx, sess.UserID.String())

	draft := SaleDraft{
		CashierID: sess.UserID.String(),
		Lines:     cart.Lines(),
		Subtotal:  cart.Subtotal(),
		Tax:       cart.Tax(s.taxRate),
		Total:     cart.Total(s.taxRate),
		CreatedAt: time.Now(),
	}

	snapshot := cart.Snapshot()
	cart.Clear()

	if err := s.recorder.RecordSale(ctx, draft); err != nil {
		cart.Restore(snapshot)
		logger.FromContext(ctx).Warn("sale recording failed, cart restored",
			zap.Int("lines", len(snapshot)),
			zap.String("total", draft.Total.StringFixed(2)),
			zap.Error(err))
		return nil, err
	}

	logger.FromContext(ctx).Info("sale recorded",
		zap.Int("lines", len(draft.Lines)),
		zap.String("total", draft.Total.StringFixed(2)))
	return &draft, nil
}
