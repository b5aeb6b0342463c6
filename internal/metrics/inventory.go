package metrics

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/AngelCh415/reporting-api/internal/models"
	"github.com/AngelCh415/reporting-api/internal/predicate"
)

const InventoryCollection = "inventory"

const (
	StockOverstock  = "Overstock"
	StockUnderstock = "Understock"
)

var inventoryAttrs = []attr{
	{param: "country", field: "country", kind: fuzzy},
	{param: "platform", field: "platform", kind: fuzzy},
	{param: "sku", field: "sku", kind: list},
	{param: "product_category", field: "product_category", kind: exact},
}

type InventoryReport struct {
	Items  Page[models.Record]    `json:"items"`
	Totals models.InventoryTotals `json:"totals"`
}

var inventoryTotalFields = []Field{F("quantity"), F("value", "total_value", "value")}

func (s *Service) scanInventory(ctx context.Context, p predicate.Predicate) ([]models.Record, error) {
	recs, err := s.ds.Scan(ctx, InventoryCollection, p)
	if err != nil {
		return nil, fmt.Errorf("scan inventory: %w", err)
	}
	if recs == nil {
		recs = []models.Record{}
	}
	return recs, nil
}

func inventoryTotals(recs []models.Record) models.InventoryTotals {
	t := Aggregate(recs, inventoryTotalFields)
	return models.InventoryTotals{TotalItems: len(recs), TotalQuantity: round2(t["quantity"]), TotalValue: round2(t["value"])}
}

func (s *Service) Inventory(ctx context.Context, v url.Values) (*InventoryReport, error) {
	recs, err := s.scanInventory(ctx, attrs(v, inventoryAttrs))
	if err != nil {
		return nil, err
	}
	return &InventoryReport{Items: pageOf(recs, v), Totals: inventoryTotals(recs)}, nil
}

// CountSummary son solo los totales, sin filas.
func (s *Service) CountSummary(ctx context.Context, v url.Values) (models.InventoryTotals, error) {
	recs, err := s.scanInventory(ctx, attrs(v, inventoryAttrs))
	if err != nil {
		return models.InventoryTotals{}, err
	}
	return inventoryTotals(recs), nil
}

type ExecutiveSummary struct {
	EstimatedStorageCostNextMonth float64 `json:"estimated_storage_cost_next_month"`
	DOS2                          float64 `json:"DOS_2"`
	AFNWarehouseQuantity          float64 `json:"afn_warehouse_quantity"`
	AFNFulfillableQuantity        float64 `json:"afn_fulfillable_quantity"`
	AFNUnsellableQuantity         float64 `json:"afn_unsellable_quantity"`
	FCTransfer                    float64 `json:"fctransfer"`
	CustomerReserved              float64 `json:"customer_reserved"`
	FCProcessing                  float64 `json:"fc_processing"`
	InvAge0To90Days               float64 `json:"inv_age_0_to_90_days"`
	InvAge91To270Days             float64 `json:"inv_age_91_to_270_days"`
	InstockRatePercent            float64 `json:"instock_rate_percent"`
	ActiveSKUOutOfStockCount      int     `json:"active_sku_out_of_stock_count"`
}

var executiveFields = []Field{
	F("estimated_storage_cost_next_month"),
	F("afn_warehouse_quantity"),
	F("afn_fulfillable_quantity"),
	F("afn_unsellable_quantity"),
	F("fc_transfer"),
	F("customer_reserved"),
	F("fc_processing"),
	F("inv_age_0_to_30_days"),
	F("inv_age_31_to_60_days"),
	F("inv_age_61_to_90_days"),
	F("inv_age_91_to_180_days"),
	F("inv_age_181_to_270_days"),
}

// mean promedia solo los registros con valor numérico en field.
func mean(recs []models.Record, field string) float64 {
	var sum float64
	n := 0
	for _, r := range recs {
		if f, ok := models.Float(r[field]); ok {
			sum += f
			n++
		}
	}
	return safeDivF(sum, float64(n))
}

func activeOutOfStock() predicate.Predicate {
	return predicate.All{
		predicate.Equals{Field: "stock_status", Value: StockUnderstock},
		predicate.NumberCompare{Field: "dos_2", Op: predicate.OpEq, Value: 0},
	}
}

func (s *Service) Executive(ctx context.Context, v url.Values) (*ExecutiveSummary, error) {
	recs, err := s.scanInventory(ctx, attrs(v, inventoryAttrs))
	if err != nil {
		return nil, err
	}
	t := Aggregate(recs, executiveFields)
	oos := activeOutOfStock()
	count := 0
	for _, r := range recs {
		if oos.Match(r) {
			count++
		}
	}
	return &ExecutiveSummary{
		EstimatedStorageCostNextMonth: round2(t["estimated_storage_cost_next_month"]),
		DOS2:                          round2(mean(recs, "dos_2")),
		AFNWarehouseQuantity:          round2(t["afn_warehouse_quantity"]),
		AFNFulfillableQuantity:        round2(t["afn_fulfillable_quantity"]),
		AFNUnsellableQuantity:         round2(t["afn_unsellable_quantity"]),
		FCTransfer:                    round2(t["fc_transfer"]),
		CustomerReserved:              round2(t["customer_reserved"]),
		FCProcessing:                  round2(t["fc_processing"]),
		InvAge0To90Days:               round2(t["inv_age_0_to_30_days"] + t["inv_age_31_to_60_days"] + t["inv_age_61_to_90_days"]),
		InvAge91To270Days:             round2(t["inv_age_91_to_180_days"] + t["inv_age_181_to_270_days"]),
		InstockRatePercent:            round2(mean(recs, "instock_rate_percent")),
		ActiveSKUOutOfStockCount:      count,
	}, nil
}

// StockStatusCounts cuenta registros por stock_status; sin estado va como "Unknown".
func (s *Service) StockStatusCounts(ctx context.Context, v url.Values) (map[string]int, error) {
	recs, err := s.scanInventory(ctx, attrs(v, inventoryAttrs))
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, r := range recs {
		st := r.Str("stock_status")
		if st == "" {
			st = "Unknown"
		}
		out[st]++
	}
	return out, nil
}

// StockList devuelve las filas de un estado; activeOnly pide understock con dos_2 == 0.
func (s *Service) StockList(ctx context.Context, status string, activeOnly bool, v url.Values) (Page[models.Record], error) {
	p := attrs(v, inventoryAttrs)
	if activeOnly {
		p = p.And(activeOutOfStock())
	} else {
		p = p.And(predicate.Equals{Field: "stock_status", Value: status})
	}
	recs, err := s.scanInventory(ctx, p)
	if err != nil {
		return Page[models.Record]{}, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Str("sku") < recs[j].Str("sku") })
	return pageOf(recs, v), nil
}

func (s *Service) InventoryDropdowns(ctx context.Context, v url.Values) (map[string][]string, error) {
	out := map[string][]string{}
	for key, field := range map[string]string{"skuList": "sku", "categoryList": "product_category", "productNameList": "product_name"} {
		vals, err := s.ds.Distinct(ctx, InventoryCollection, field, attrs(v, inventoryAttrs))
		if err != nil {
			return nil, fmt.Errorf("distinct inventory.%s: %w", field, err)
		}
		out[key] = vals
	}
	return out, nil
}
