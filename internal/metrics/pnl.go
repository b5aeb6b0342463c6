package metrics

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/AngelCh415/reporting-api/internal/apperr"
	"github.com/AngelCh415/reporting-api/internal/models"
	"github.com/AngelCh415/reporting-api/internal/period"
	"github.com/AngelCh415/reporting-api/internal/predicate"
)

const (
	PNLCollection  = "pnl"
	pnlBucketField = "year_month"
)

var pnlAttrs = []attr{
	{param: "sku", field: "sku", kind: list},
	{param: "category", field: "product_category", kind: exact},
	{param: "productName", field: "product_name", kind: exact},
	{param: "country", field: "country", kind: exact},
	{param: "platform", field: "platform", kind: exact},
}

type PnLReport struct {
	Rows    Page[models.Record] `json:"rows"`
	Summary *Comparison         `json:"summary,omitempty"`
}

// pnlSelector: date (un mes) > startMonth/endMonth > range. ok=false si no se pidió periodo.
func pnlSelector(v url.Values) (period.Selector, bool) {
	if d := v.Get("date"); d != "" {
		return period.Selector{StartMonth: d, EndMonth: d}, true
	}
	sel := period.Selector{StartMonth: v.Get("startMonth"), EndMonth: v.Get("endMonth"), Filter: v.Get("range")}
	return sel, !sel.Empty()
}

func cm3Filter(v url.Values) (predicate.Predicate, error) {
	switch t := norm(v.Get("cm3Type")); t {
	case "", "all":
		return nil, nil
	case "gainer":
		return predicate.NumberCompare{Field: "cm3", Op: predicate.OpGte, Value: 0}, nil
	case "drainer":
		return predicate.NumberCompare{Field: "cm3", Op: predicate.OpLt, Value: 0}, nil
	default:
		return nil, apperr.InvalidParam("cm3Type", v.Get("cm3Type"))
	}
}

func sortByCM3(rows []models.Record, order string) error {
	switch norm(order) {
	case "":
		return nil
	case "ascending", "asc":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Num("cm3") < rows[j].Num("cm3") })
	case "descending", "desc":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Num("cm3") > rows[j].Num("cm3") })
	default:
		return apperr.InvalidParam("sortOrder", order)
	}
	return nil
}

func (s *Service) PnL(ctx context.Context, v url.Values) (*PnLReport, error) {
	cm3, err := cm3Filter(v)
	if err != nil {
		return nil, err
	}
	base := attrs(v, pnlAttrs).And(cm3)

	var (
		rows    []models.Record
		summary *Comparison
	)
	if sel, ok := pnlSelector(v); ok {
		pair, err := period.Resolve(sel, s.now())
		if err != nil {
			return nil, err
		}
		pair = pair.ByMonth()
		cur, prev, err := bothWindows(ctx, pair, func(ctx context.Context, w period.Window) ([]models.Record, error) {
			return s.scanPnL(ctx, base.And(predicate.ForWindow(pnlBucketField, w, predicate.MonthBucket)))
		})
		if err != nil {
			return nil, err
		}
		rows = cur
		summary = NewComparison(pair, Passthrough(Aggregate(cur, s.pnlFields)), Passthrough(Aggregate(prev, s.pnlFields)), ZeroPercent)
	} else {
		if rows, err = s.scanPnL(ctx, base); err != nil {
			return nil, err
		}
	}

	if err := sortByCM3(rows, v.Get("sortOrder")); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Record{}
	}
	return &PnLReport{Rows: pageOf(rows, v), Summary: summary}, nil
}

func (s *Service) scanPnL(ctx context.Context, p predicate.Predicate) ([]models.Record, error) {
	recs, err := s.ds.Scan(ctx, PNLCollection, p)
	if err != nil {
		return nil, fmt.Errorf("scan pnl: %w", err)
	}
	return recs, nil
}
