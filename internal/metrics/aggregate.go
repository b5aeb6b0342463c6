package metrics

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/reporting-api/internal/models"
	"github.com/AngelCh415/reporting-api/internal/period"
)

// Totals es nombre de métrica -> suma de una ventana.
type Totals map[string]float64

// Field suma el primer campo presente de From bajo el nombre Name.
type Field struct {
	Name string
	From []string
}

func F(name string, from ...string) Field {
	if len(from) == 0 {
		from = []string{name}
	}
	return Field{Name: name, From: from}
}

// Aggregate suma cada campo; faltantes o no numéricos cuentan 0.
func Aggregate(recs []models.Record, fields []Field) Totals {
	acc := make([]decimal.Decimal, len(fields))
	for _, r := range recs {
		for i, f := range fields {
			acc[i] = acc[i].Add(decimal.NewFromFloat(r.Num(f.From...)))
		}
	}
	out := make(Totals, len(fields))
	for i, f := range fields {
		out[f.Name] = acc[i].InexactFloat64()
	}
	return out
}

var orderIDFields = []string{"orderID", "orderId", "order_id"}

func OrderID(r models.Record) string { return r.Str(orderIDFields...) }

// DistinctOrders cuenta ids de orden únicos; ids vacíos no cuentan.
func DistinctOrders(recs []models.Record) int {
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if id := OrderID(r); id != "" {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// bothWindows corre fn para la ventana actual y la previa en paralelo.
func bothWindows[T any](ctx context.Context, pair period.Pair, fn func(context.Context, period.Window) (T, error)) (cur, prev T, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		cur, e = fn(gctx, pair.Current)
		return e
	})
	g.Go(func() error {
		var e error
		prev, e = fn(gctx, pair.Previous)
		return e
	})
	err = g.Wait()
	return cur, prev, err
}
