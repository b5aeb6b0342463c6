package models

import (
	"fmt"
	"strings"
	"time"
)

// Record es un documento tal cual sale del store de un tenant.
type Record map[string]any

// Str devuelve el primer campo no vacío entre keys, recortado.
func (r Record) Str(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case fmt.Stringer:
			s = x.String()
		default:
			s = fmt.Sprint(x)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Num devuelve el primer campo presente entre keys, coercionado con Number.
func (r Record) Num(keys ...string) float64 {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return Number(v)
		}
	}
	return 0
}

// DailyPoint es una fila del desglose diario de órdenes.
type DailyPoint struct {
	Date          string  `json:"date"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalSales    float64 `json:"totalSales"`
	OrderCount    int     `json:"orderCount"`
	AOV           float64 `json:"aov"`
}

type SkuRollup struct {
	SKU              string  `json:"sku"`
	ProductName      string  `json:"product_name,omitempty"`
	ProductCategory  string  `json:"product_category,omitempty"`
	SoldQty          float64 `json:"sold_qty"`
	Revenue          float64 `json:"revenue"`
	LastPurchaseDate string  `json:"last_purchase_date,omitempty"`
}

type RegionRow struct {
	State         string           `json:"state"`
	City          string           `json:"city"`
	TotalSales    float64          `json:"totalSales"`
	TotalQuantity float64          `json:"totalQuantity"`
	TotalOrders   int              `json:"totalOrders"`
	Comparison    RegionComparison `json:"comparison"`
}

type RegionComparison struct {
	PreviousSales         float64 `json:"previousSales"`
	PreviousQuantity      float64 `json:"previousQuantity"`
	PreviousOrders        int     `json:"previousOrders"`
	SalesChangePercent    string  `json:"salesChangePercent"`
	QuantityChangePercent string  `json:"quantityChangePercent"`
	OrdersChangePercent   string  `json:"ordersChangePercent"`
}

type InventoryTotals struct {
	TotalItems    int     `json:"totalItems"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalValue    float64 `json:"totalValue"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func RangeOf(from, to time.Time) DateRange {
	return DateRange{Start: from.Format("2006-01-02"), End: to.Format("2006-01-02")}
}
