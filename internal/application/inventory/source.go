package inventory

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/retail/stockview/internal/domain/inventory"
	"github.com/retail/stockview/internal/infrastructure/logger"
	"github.com/retail/stockview/internal/infrastructure/payload"
)

// DocumentFetcher retrieves raw response bodies from the upstream retail
// API. It is the only seam that knows about transport; everything past it
// works on normalized records.
type DocumentFetcher interface {
	FetchProducts(ctx context.Context) ([]byte, error)
	FetchStock(ctx context.Context, productID string) ([]byte, error)
}

// PayloadSource adapts raw upstream documents into the ProductLister and
// StockLister contracts, unwrapping whichever envelope shape the endpoint
// happened to use.
type PayloadSource struct {
	fetcher DocumentFetcher
}

// NewPayloadSource creates a PayloadSource over the fetcher.
func NewPayloadSource(fetcher DocumentFetcher) *PayloadSource {
	return &PayloadSource{fetcher: fetcher}
}

// ListProducts fetches and normalizes the product catalog, which
// upstream serves as a paged response. Entries without a resolvable id
// are dropped here: a product we cannot identify cannot have its stock
// fetched.
func (p *PayloadSource) ListProducts(ctx context.Context) ([]Product, error) {
	body, err := p.fetcher.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	env := payload.UnwrapPage(body, inventory.DefaultPageSize)
	if env.TotalPages > 1 {
		logger.FromContext(ctx).Warn("product catalog is paged, view covers one page",
			zap.Int("page", env.Page),
			zap.Int("total_pages", env.TotalPages),
			zap.Int("total_elements", env.TotalElements))
	}
	products := make([]Product, 0, len(env.Content))
	for _, item := range env.Content {
		id := scalarString(item["id"])
		if id == "" {
			id = scalarString(item["productId"])
		}
		if id == "" {
			continue
		}
		name := scalarString(item["name"])
		if name == "" {
			name = scalarString(item["productName"])
		}
		products = append(products, Product{ID: id, Name: name})
	}
	return products, nil
}

// ListBatches fetches and normalizes one product's raw batch records.
func (p *PayloadSource) ListBatches(ctx context.Context, productID string) ([]inventory.RawBatchRecord, error) {
	body, err := p.fetcher.FetchStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	items := payload.UnwrapList(body)
	records := make([]inventory.RawBatchRecord, 0, len(items))
	for _, item := range items {
		records = append(records, inventory.RawBatchRecord(item))
	}
	return records, nil
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	}
	return ""
}
