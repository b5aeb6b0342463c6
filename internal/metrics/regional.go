package metrics

import (
	"context"
	"net/url"
	"sort"

	"github.com/AngelCh415/reporting-api/internal/models"
	"github.com/AngelCh415/reporting-api/internal/period"
)

type RegionalReport struct {
	Regional []models.RegionRow  `json:"regional"`
	Daily    []models.DailyPoint `json:"daily"`
	Period   period.Pair         `json:"period"`
}

type regionKey struct{ state, city string }

type regionAgg struct {
	sales, qty float64
	ids        map[string]struct{}
}

func byRegion(recs []models.Record) map[regionKey]*regionAgg {
	out := map[regionKey]*regionAgg{}
	for _, r := range recs {
		k := regionKey{state: r.Str("state"), city: r.Str("city")}
		a, ok := out[k]
		if !ok {
			a = &regionAgg{ids: map[string]struct{}{}}
			out[k] = a
		}
		a.sales += r.Num(salesField.From...)
		a.qty += r.Num(quantityField.From...)
		if id := OrderID(r); id != "" {
			a.ids[id] = struct{}{}
		}
	}
	return out
}

// RegionalSales compara ventas por estado+ciudad. Solo salen regiones con ventas en la ventana actual.
func (s *Service) RegionalSales(ctx context.Context, v url.Values) (*RegionalReport, error) {
	pair, cur, prev, err := s.orderWindows(ctx, v, "previousmonth")
	if err != nil {
		return nil, err
	}
	curAgg, prevAgg := byRegion(cur), byRegion(prev)

	rows := make([]models.RegionRow, 0, len(curAgg))
	for k, c := range curAgg {
		p, ok := prevAgg[k]
		if !ok {
			p = &regionAgg{}
		}
		row := models.RegionRow{
			State:         k.state,
			City:          k.city,
			TotalSales:    round2(c.sales),
			TotalQuantity: round2(c.qty),
			TotalOrders:   len(c.ids),
			Comparison: models.RegionComparison{
				PreviousSales:    round2(p.sales),
				PreviousQuantity: round2(p.qty),
				PreviousOrders:   len(p.ids),
			},
		}
		row.Comparison.SalesChangePercent = PercentChange(row.TotalSales, row.Comparison.PreviousSales, NotAvailable)
		row.Comparison.QuantityChangePercent = PercentChange(row.TotalQuantity, row.Comparison.PreviousQuantity, NotAvailable)
		row.Comparison.OrdersChangePercent = PercentChange(float64(row.TotalOrders), float64(row.Comparison.PreviousOrders), NotAvailable)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSales != rows[j].TotalSales {
			return rows[i].TotalSales > rows[j].TotalSales
		}
		if rows[i].State != rows[j].State {
			return rows[i].State < rows[j].State
		}
		return rows[i].City < rows[j].City
	})

	return &RegionalReport{Regional: rows, Daily: dailyBreakdown(cur, pair.Current), Period: pair}, nil
}
