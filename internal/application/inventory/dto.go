package inventory

import (
	"time"

	"github.com/retail/stockview/internal/domain/inventory"
)

// StockRowResponse is one merged stock row, display-formatted.
type StockRowResponse struct {
	Key         string     `json:"key"`
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	BatchNumber *string    `json:"batch_number"`
	Quantity    string     `json:"quantity"`
	CostPrice   string     `json:"cost_price"`
	TotalCost   string     `json:"total_cost"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	Locations   *string    `json:"locations"`
	MergedCount int        `json:"merged_count"`
}

// StockPageResponse is one page of merged rows plus pagination metadata.
type StockPageResponse struct {
	Rows       []StockRowResponse `json:"rows"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

// StockSummaryResponse is the dashboard summary over the merged stock.
type StockSummaryResponse struct {
	TotalQuantity string `json:"total_quantity"`
	TotalValue    string `json:"total_value"`
	ProductCount  int    `json:"product_count"`
	BatchCount    int    `json:"batch_count"`
	LowStockRows  int    `json:"low_stock_rows"`
	ExpiringRows  int    `json:"expiring_rows"`
}

// toRowResponse formats a merged row for display: money fields fixed to
// two decimals, empty batch/locations rendered as null.
func toRowResponse(row inventory.MergedBatchRow) StockRowResponse {
	resp := StockRowResponse{
		Key:         row.Key,
		ProductID:   row.ProductID,
		ProductName: row.ProductName,
		Quantity:    row.Quantity.String(),
		CostPrice:   row.CostPrice.StringFixed(2),
		TotalCost:   row.TotalCost.StringFixed(2),
		ExpiryDate:  row.ExpiryDate,
		MergedCount: row.MergedCount,
	}
	if row.BatchNumber != "" {
		b := row.BatchNumber
		resp.BatchNumber = &b
	}
	if len(row.Locations) > 0 {
		loc := row.LocationDisplay()
		resp.Locations = &loc
	}
	return resp
}

func toPageResponse(page inventory.StockPage) StockPageResponse {
	rows := make([]StockRowResponse, 0, len(page.Rows))
	for _, row := range page.Rows {
		rows = append(rows, toRowResponse(row))
	}
	return StockPageResponse{
		Rows:       rows,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}
