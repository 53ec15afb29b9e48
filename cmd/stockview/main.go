package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	inventoryapp "github.com/retail/stockview/internal/application/inventory"
	"github.com/retail/stockview/internal/domain/identity"
	"github.com/retail/stockview/internal/infrastructure/config"
	"github.com/retail/stockview/internal/infrastructure/logger"
)

func main() {
	query := flag.String("q", "", "filter rows by product, batch or location")
	page := flag.Int("page", 0, "zero-based page index")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: stockview [flags] <stock-document.json>\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Merges the document's raw stock batches into one row per product/batch.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	fetcher, err := newFileFetcher(flag.Arg(0))
	if err != nil {
		log.Fatal("Failed to read stock document", zap.Error(err))
	}

	source := inventoryapp.NewPayloadSource(fetcher)
	service := inventoryapp.NewStockViewService(source, source, inventoryapp.Options{
		PageSize:          cfg.Stock.PageSize,
		LowStockThreshold: cfg.Stock.LowStockThreshold,
		NearExpiryWindow:  time.Duration(cfg.Stock.NearExpiryDays) * 24 * time.Hour,
		FetchConcurrency:  cfg.Stock.FetchConcurrency,
	})

	sess := identity.NewSession(uuid.New(), "local", identity.RoleAdmin)
	ctx := logger.WithContext(context.Background(), log)

	pageResp, err := service.SearchPage(ctx, sess, *query, *page)
	if err != nil {
		log.Fatal("Failed to build stock view", zap.Error(err))
	}
	summary, err := service.Summary(ctx, sess)
	if err != nil {
		log.Fatal("Failed to build stock summary", zap.Error(err))
	}

	printPage(pageResp)
	printSummary(summary)
}

func printPage(page *inventoryapp.StockPageResponse) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tBATCH\tQTY\tCOST\tTOTAL\tEXPIRY\tLOCATION(S)")
	for _, row := range page.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			orDash(row.ProductName),
			orDash(deref(row.BatchNumber)),
			row.Quantity,
			row.CostPrice,
			row.TotalCost,
			expiryDisplay(row.ExpiryDate),
			orDash(deref(row.Locations)),
		)
	}
	_ = w.Flush()
	fmt.Printf("\nPage %d of %d (%d rows total)\n", page.Page+1, page.TotalPages, page.Total)
}

func printSummary(s *inventoryapp.StockSummaryResponse) {
	fmt.Printf("\nProducts: %d  Batches: %d  Units: %s  Value: %s\n",
		s.ProductCount, s.BatchCount, s.TotalQuantity, s.TotalValue)
	if s.LowStockRows > 0 {
		fmt.Printf("Low stock rows: %d\n", s.LowStockRows)
	}
	if s.ExpiringRows > 0 {
		fmt.Printf("Rows expiring soon: %d\n", s.ExpiringRows)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func expiryDisplay(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// fileFetcher serves a stock document from disk through the
// DocumentFetcher contract. The document holds the product list under
// "products" (any of the usual envelope shapes), each product optionally
// carrying its raw batch records under "batches".
type fileFetcher struct {
	products json.RawMessage
	batches  map[string]json.RawMessage
}

func newFileFetcher(path string) (*fileFetcher, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse stock document: %w", err)
	}
	products, ok := doc["products"]
	if !ok {
		return nil, fmt.Errorf("stock document has no products key")
	}

	var entries []struct {
		ID      any             `json:"id"`
		Batches json.RawMessage `json:"batches"`
	}
	if err := json.Unmarshal(products, &entries); err != nil {
		return nil, fmt.Errorf("parse products: %w", err)
	}

	f := &fileFetcher{
		products: products,
		batches:  make(map[string]json.RawMessage, len(entries)),
	}
	for _, entry := range entries {
		if id := idString(entry.ID); id != "" && entry.Batches != nil {
			f.batches[id] = entry.Batches
		}
	}
	return f, nil
}

func idString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	}
	return ""
}

func (f *fileFetcher) FetchProducts(_ context.Context) ([]byte, error) {
	return f.products, nil
}

func (f *fileFetcher) FetchStock(_ context.Context, productID string) ([]byte, error) {
	batches, ok := f.batches[productID]
	if !ok {
		return nil, fmt.Errorf("no stock for product %s", productID)
	}
	return batches, nil
}
