package metrics

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/AngelCh415/reporting-api/internal/models"
	"github.com/AngelCh415/reporting-api/internal/period"
	"github.com/AngelCh415/reporting-api/internal/predicate"
)

const (
	OrdersCollection = "orders"
	orderDateField   = "purchase_date"
)

var (
	quantityField = F(TotalQuantity, "quantity")
	salesField    = F(TotalSales, "total_sales", "totalSales")
	orderAttrs    = []attr{
		{param: "sku", field: "sku", kind: list},
		{param: "platform", field: "platform", kind: fuzzy},
		{param: "country", field: "country", kind: fuzzy},
		{param: "state", field: "state", kind: exact},
		{param: "city", field: "city", kind: exact},
		{param: "product_category", field: "product_category", kind: exact},
		{param: "product_name", field: "product_name", kind: exact},
	}
)

type OrderComparison struct {
	CurrentPeriod         models.DateRange `json:"currentPeriod"`
	PreviousPeriod        models.DateRange `json:"previousPeriod"`
	PreviousTotalQuantity float64          `json:"previousTotalQuantity"`
	PreviousTotalSales    float64          `json:"previousTotalSales"`
	PreviousTotalOrders   int              `json:"previousTotalOrders"`
	PreviousAOV           float64          `json:"previousAOV"`
	QuantityChangePercent string           `json:"quantityChangePercent"`
	SalesChangePercent    string           `json:"salesChangePercent"`
	OrdersChangePercent   string           `json:"ordersChangePercent"`
	AOVChangePercent      string           `json:"aovChangePercent"`
}

type OrderReport struct {
	TotalQuantity float64             `json:"totalQuantity"`
	TotalSales    float64             `json:"totalSales"`
	TotalOrders   int                 `json:"totalOrders"`
	AOV           float64             `json:"aov"`
	Items         []models.DailyPoint `json:"items"`
	Comparison    OrderComparison     `json:"comparison"`
}

// orderSelector acepta purchase_date como alias viejo de filterType.
func orderSelector(v url.Values, def string) period.Selector {
	filter := v.Get("filterType")
	if filter == "" {
		filter = v.Get("purchase_date")
	}
	return period.Selector{
		Filter:     filter,
		StartMonth: v.Get("startMonth"),
		EndMonth:   v.Get("endMonth"),
		FromDate:   v.Get("fromDate"),
		ToDate:     v.Get("toDate"),
	}.OrDefault(def)
}

func (s *Service) scanOrders(ctx context.Context, w period.Window, base predicate.All) ([]models.Record, error) {
	p := base.And(predicate.ForWindow(orderDateField, w, predicate.DayString))
	recs, err := s.ds.Scan(ctx, OrdersCollection, p)
	if err != nil {
		return nil, fmt.Errorf("scan orders %s: %w", w, err)
	}
	return recs, nil
}

func (s *Service) orderWindows(ctx context.Context, v url.Values, def string) (period.Pair, []models.Record, []models.Record, error) {
	pair, err := period.Resolve(orderSelector(v, def), s.now())
	if err != nil {
		return period.Pair{}, nil, nil, err
	}
	base := attrs(v, orderAttrs)
	cur, prev, err := bothWindows(ctx, pair, func(ctx context.Context, w period.Window) ([]models.Record, error) {
		return s.scanOrders(ctx, w, base)
	})
	return pair, cur, prev, err
}

func orderTotals(recs []models.Record) Derived {
	t := Aggregate(recs, []Field{quantityField, salesField})
	return DeriveOrders(t[TotalQuantity], t[TotalSales], DistinctOrders(recs))
}

func (s *Service) Orders(ctx context.Context, v url.Values) (*OrderReport, error) {
	pair, cur, prev, err := s.orderWindows(ctx, v, "currentmonth")
	if err != nil {
		return nil, err
	}
	c, p := orderTotals(cur), orderTotals(prev)
	pct := Compare(c, p, NotAvailable)
	return &OrderReport{
		TotalQuantity: c[TotalQuantity],
		TotalSales:    c[TotalSales],
		TotalOrders:   int(c[TotalOrders]),
		AOV:           c[AOV],
		Items:         dailyBreakdown(cur, pair.Current),
		Comparison: OrderComparison{
			CurrentPeriod:         models.RangeOf(pair.Current.Start, pair.Current.End),
			PreviousPeriod:        models.RangeOf(pair.Previous.Start, pair.Previous.End),
			PreviousTotalQuantity: p[TotalQuantity],
			PreviousTotalSales:    p[TotalSales],
			PreviousTotalOrders:   int(p[TotalOrders]),
			PreviousAOV:           p[AOV],
			QuantityChangePercent: pct[TotalQuantity+"ChangePercent"],
			SalesChangePercent:    pct[TotalSales+"ChangePercent"],
			OrdersChangePercent:   pct[TotalOrders+"ChangePercent"],
			AOVChangePercent:      pct[AOV+"ChangePercent"],
		},
	}, nil
}

// dailyBreakdown agrupa por día calendario; registros sin fecha legible o fuera de w se ignoran.
func dailyBreakdown(recs []models.Record, w period.Window) []models.DailyPoint {
	type dayAgg struct {
		qty, sales float64
		ids        map[string]struct{}
	}
	days := map[time.Time]*dayAgg{}
	for _, r := range recs {
		d, ok := models.Date(r[orderDateField])
		if !ok || !w.Contains(d) {
			continue
		}
		a, ok := days[d]
		if !ok {
			a = &dayAgg{ids: map[string]struct{}{}}
			days[d] = a
		}
		a.qty += r.Num(quantityField.From...)
		a.sales += r.Num(salesField.From...)
		if id := OrderID(r); id != "" {
			a.ids[id] = struct{}{}
		}
	}
	keys := make([]time.Time, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]models.DailyPoint, 0, len(keys))
	for _, d := range keys {
		a := days[d]
		out = append(out, models.DailyPoint{
			Date:          d.Format("2006-01-02"),
			TotalQuantity: round2(a.qty),
			TotalSales:    round2(a.sales),
			OrderCount:    len(a.ids),
			AOV:           round2(safeDivF(a.sales, float64(len(a.ids)))),
		})
	}
	return out
}

// OrderList agrupa la ventana actual por SKU, última compra primero.
func (s *Service) OrderList(ctx context.Context, v url.Values) (Page[models.SkuRollup], error) {
	pair, err := period.Resolve(orderSelector(v, "currentmonth"), s.now())
	if err != nil {
		return Page[models.SkuRollup]{}, err
	}
	recs, err := s.scanOrders(ctx, pair.Current, attrs(v, orderAttrs))
	if err != nil {
		return Page[models.SkuRollup]{}, err
	}

	bySku := map[string]*models.SkuRollup{}
	last := map[string]time.Time{}
	for _, r := range recs {
		sku := r.Str("sku")
		if sku == "" {
			continue
		}
		row, ok := bySku[sku]
		if !ok {
			row = &models.SkuRollup{SKU: sku, ProductName: r.Str("product_name"), ProductCategory: r.Str("product_category")}
			bySku[sku] = row
		}
		row.SoldQty += r.Num(quantityField.From...)
		row.Revenue += r.Num(salesField.From...)
		if d, ok := models.Date(r[orderDateField]); ok && d.After(last[sku]) {
			last[sku] = d
		}
	}

	rows := make([]models.SkuRollup, 0, len(bySku))
	for sku, row := range bySku {
		row.SoldQty = round2(row.SoldQty)
		row.Revenue = round2(row.Revenue)
		if d := last[sku]; !d.IsZero() {
			row.LastPurchaseDate = d.Format("2006-01-02")
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].LastPurchaseDate != rows[j].LastPurchaseDate {
			return rows[i].LastPurchaseDate > rows[j].LastPurchaseDate
		}
		return rows[i].SKU < rows[j].SKU
	})
	return pageOf(rows, v), nil
}

// OrderValues lista valores distintos de field en orders, filtrados por los atributos de v.
func (s *Service) OrderValues(ctx context.Context, field string, v url.Values) ([]string, error) {
	vals, err := s.ds.Distinct(ctx, OrdersCollection, field, attrs(v, orderAttrs))
	if err != nil {
		return nil, fmt.Errorf("distinct orders.%s: %w", field, err)
	}
	return vals, nil
}

func (s *Service) OrderDropdowns(ctx context.Context, v url.Values) (map[string][]string, error) {
	skus, err := s.OrderValues(ctx, "sku", v)
	if err != nil {
		return nil, err
	}
	cats, err := s.OrderValues(ctx, "product_category", v)
	if err != nil {
		return nil, err
	}
	return map[string][]string{"skuList": skus, "categoryList": cats}, nil
}
