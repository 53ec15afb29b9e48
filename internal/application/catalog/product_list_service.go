package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/retail/stockview/internal/domain/identity"
	"github.com/retail/stockview/internal/domain/shared"
	"github.com/retail/stockview/internal/infrastructure/logger"
)

// ProductSummary is one catalog entry as shown in the product list.
type ProductSummary struct {
	ID   string
	Name string
	SKU  string
}

// ProductRemover deletes a product upstream. An error means the product
// still exists.
type ProductRemover interface {
	RemoveProduct(ctx context.Context, productID string) error
}

// ProductListService maintains the locally cached product list with
// optimistic deletes: the row disappears from the visible list before the
// remote call resolves, and reappears if the call fails.
type ProductListService struct {
	remover ProductRemover
	list    *shared.StagedList[ProductSummary]
}

// NewProductListService creates a service seeded with the given products.
func NewProductListService(remover ProductRemover, products []ProductSummary) *ProductListService {
	return &ProductListService{
		remover: remover,
		list:    shared.NewStagedList(products),
	}
}

// Products returns the currently visible product list.
func (s *ProductListService) Products() []ProductSummary {
	return s.list.Items()
}

// Reload replaces the cached list after a fresh upstream fetch.
func (s *ProductListService) Reload(products []ProductSummary) {
	s.list.Reset(products)
}

// Remove deletes the product, applying the change to the visible list
// first. When the upstream delete fails the staged removal is rolled back
// and the original list is visible again.
func (s *ProductListService) Remove(ctx context.Context, sess *identity.Session, productID string) error {
	if !sess.CanManageProducts() {
		return shared.ErrForbidden
	}

	removed := s.list.StageRemove(func(p ProductSummary) bool {
		return p.ID == productID
	})
	if removed == 0 {
		_ = s.list.Rollback()
		return shared.ErrNotFound
	}

	if err := s.remover.RemoveProduct(ctx, productID); err != nil {
		_ = s.list.Rollback()
		logger.FromContext(ctx).Warn("product delete failed, list restored",
			zap.String("product_id", productID),
			zap.Error(err))
		return err
	}
	return s.list.Commit()
}
