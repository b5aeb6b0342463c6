package metrics

import (
	"context"
	"fmt"
	"net/url"

	"github.com/AngelCh415/reporting-api/internal/apperr"
	"github.com/AngelCh415/reporting-api/internal/period"
	"github.com/AngelCh415/reporting-api/internal/predicate"
)

const (
	AdsCollection  = "ads_sales_and_spend"
	adsBucketField = "year_month"
)

var (
	adFields = []Field{F(AdSales, "ad_sales"), F(AdSpend, "ad_spend"), F(Revenue, "total_revenue")}
	adAttrs  = []attr{
		{param: "platform", field: "platform", kind: exact},
		{param: "country", field: "country", kind: exact},
		{param: "sku", field: "sku", kind: list},
	}
)

// AdSalesAdSpend: filterType | startMonth+endMonth, por defecto el mes en curso.
func (s *Service) AdSalesAdSpend(ctx context.Context, v url.Values) (*Comparison, error) {
	sel := period.Selector{
		Filter:     v.Get("filterType"),
		StartMonth: v.Get("startMonth"),
		EndMonth:   v.Get("endMonth"),
	}.OrDefault("currentmonth")
	return s.adComparison(ctx, sel, attrs(v, adAttrs))
}

// AdData: range=custom usa startDate/endDate como meses; si no, range es el selector.
// Por defecto el mes anterior.
func (s *Service) AdData(ctx context.Context, v url.Values) (*Comparison, error) {
	sel := period.Selector{Filter: v.Get("range")}
	if norm(sel.Filter) == "custom" {
		if v.Get("startDate") == "" || v.Get("endDate") == "" {
			return nil, apperr.InvalidSelector("range=custom requires startDate and endDate")
		}
		sel = period.Selector{StartMonth: v.Get("startDate"), EndMonth: v.Get("endDate")}
	}
	return s.adComparison(ctx, sel.OrDefault("previousmonth"), attrs(v, adAttrs))
}

func (s *Service) adComparison(ctx context.Context, sel period.Selector, base predicate.All) (*Comparison, error) {
	pair, err := period.Resolve(sel, s.now())
	if err != nil {
		return nil, err
	}
	// ads solo tiene year_month: comparar por días caería en el mismo bucket
	pair = pair.ByMonth()
	sources := make([]string, 0, len(adFields))
	for _, f := range adFields {
		sources = append(sources, f.From[0])
	}
	cur, prev, err := bothWindows(ctx, pair, func(ctx context.Context, w period.Window) (Derived, error) {
		p := base.And(predicate.ForWindow(adsBucketField, w, predicate.MonthBucket))
		sums, err := s.ds.SumFields(ctx, AdsCollection, p, sources)
		if err != nil {
			return nil, fmt.Errorf("sum ads %s: %w", w, err)
		}
		t := make(Totals, len(adFields))
		for _, f := range adFields {
			t[f.Name] = sums[f.From[0]]
		}
		return DeriveAds(t), nil
	})
	if err != nil {
		return nil, err
	}
	return NewComparison(pair, cur, prev, ZeroPercent), nil
}
