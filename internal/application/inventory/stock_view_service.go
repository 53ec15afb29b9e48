package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/retail/stockview/internal/domain/identity"
	"github.com/retail/stockview/internal/domain/inventory"
	"github.com/retail/stockview/internal/domain/shared"
	"github.com/retail/stockview/internal/infrastructure/logger"
)

// Product is the catalog identity a stock row is attached to.
type Product struct {
	ID   string
	Name string
}

// ProductLister supplies the product catalog. Implementations own all
// transport concerns; the service only consumes the materialized list.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// StockLister supplies the raw batch records for one product. An error
// from one product is treated as "no batches for this product" and does
// not fail the run.
type StockLister interface {
	ListBatches(ctx context.Context, productID string) ([]inventory.RawBatchRecord, error)
}

// Options tunes the stock view.
type Options struct {
	PageSize          int
	LowStockThreshold int
	NearExpiryWindow  time.Duration
	FetchConcurrency  int
}

// DefaultOptions returns the stock view defaults.
func DefaultOptions() Options {
	return Options{
		PageSize:          inventory.DefaultPageSize,
		LowStockThreshold: 5,
		NearExpiryWindow:  30 * 24 * time.Hour,
		FetchConcurrency:  8,
	}
}

// StockViewService builds the merged stock-by-product view: it fans out
// one stock fetch per product, stamps each raw record with its product
// identity, folds everything through the BatchAggregator and serves the
// result as filtered, paginated pages.
type StockViewService struct {
	products   ProductLister
	stock      StockLister
	aggregator *inventory.BatchAggregator
	opts       Options
}

// NewStockViewService creates a new StockViewService.
func NewStockViewService(products ProductLister, stock StockLister, opts Options) *StockViewService {
	if opts.PageSize <= 0 {
		opts.PageSize = inventory.DefaultPageSize
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = DefaultOptions().FetchConcurrency
	}
	if opts.NearExpiryWindow <= 0 {
		opts.NearExpiryWindow = DefaultOptions().NearExpiryWindow
	}
	return &StockViewService{
		products:   products,
		stock:      stock,
		aggregator: inventory.NewBatchAggregator(),
		opts:       opts,
	}
}

// LoadMergedStock fetches every product's batches and aggregates them
// into merged rows. Per-product fetch failures are logged and skipped so
// a partially unavailable upstream still yields a partial view.
func (s *StockViewService) LoadMergedStock(ctx context.Context, sess *identity.Session) ([]inventory.MergedBatchRow, error) {
	if !sess.CanViewInventory() {
		return nil, shared.ErrForbidden
	}
	ctx = logger.WithRunID(ctx, sess.ID.String())
	ctx = logger.WithUserID(ctx, sess.UserID.String())
	log := logger.FromContext(ctx)

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu         sync.Mutex
		allRecords []inventory.RawBatchRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FetchConcurrency)
	for _, product := range products {
		product := product
		g.Go(func() error {
			records, err := s.stock.ListBatches(gctx, product.ID)
			if err != nil {
				// no stock for this product, keep going
				log.Warn("stock fetch failed",
					zap.String("product_id", product.ID),
					zap.String("product_name", product.Name),
					zap.Error(err))
				return nil
			}
			stamped := make([]inventory.RawBatchRecord, 0, len(records))
			for _, rec := range records {
				if rec == nil {
					continue
				}
				stamped = append(stamped, rec.WithProduct(product.ID, product.Name))
			}
			mu.Lock()
			allRecords = append(allRecords, stamped...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := s.aggregator.Aggregate(allRecords)
	log.Debug("stock aggregated",
		zap.Int("products", len(products)),
		zap.Int("raw_records", len(allRecords)),
		zap.Int("merged_rows", len(rows)))
	return rows, nil
}

// SearchPage loads the merged stock, applies the keyword filter and
// returns the requested page. The page index is clamped, never rejected.
func (s *StockViewService) SearchPage(ctx context.Context, sess *identity.Session, query string, pageIndex int) (*StockPageResponse, error) {
	rows, err := s.LoadMergedStock(ctx, sess)
	if err != nil {
		return nil, err
	}
	filtered := s.aggregator.Filter(rows, query)
	page := s.aggregator.Paginate(filtered, pageIndex, s.opts.PageSize)
	resp := toPageResponse(page)
	return &resp, nil
}

// Summary loads the merged stock and reduces it to the dashboard summary:
// valuation totals plus low-stock and near-expiry row counts.
func (s *StockViewService) Summary(ctx context.Context, sess *identity.Session) (*StockSummaryResponse, error) {
	rows, err := s.LoadMergedStock(ctx, sess)
	if err != nil {
		return nil, err
	}
	valuation := inventory.Valuation(rows)
	threshold := decimal.NewFromInt(int64(s.opts.LowStockThreshold))
	return &StockSummaryResponse{
		TotalQuantity: valuation.TotalQuantity.String(),
		TotalValue:    valuation.TotalValue.StringFixed(2),
		ProductCount:  valuation.ProductCount,
		BatchCount:    valuation.BatchCount,
		LowStockRows:  len(inventory.LowStock(rows, threshold)),
		ExpiringRows:  len(inventory.ExpiringWithin(rows, time.Now(), s.opts.NearExpiryWindow)),
	}, nil
}
