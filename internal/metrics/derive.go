package metrics

import (
	"github.com/shopspring/decimal"
)

// Derived son los totales más los ratios calculados, redondeados a 2 decimales.
type Derived map[string]float64

const (
	AdSales        = "adSales"
	AdSpend        = "adSpend"
	Revenue        = "revenue"
	ACOS           = "ACOS"
	TACOS          = "TACOS"
	ROAS           = "ROAS"
	OrganicRevenue = "organicRevenue"

	TotalQuantity = "totalQuantity"
	TotalSales    = "totalSales"
	TotalOrders   = "totalOrders"
	AOV           = "aov"
)

// DeriveAds espera adSales, adSpend y revenue en t.
func DeriveAds(t Totals) Derived {
	sales, spend, rev := t[AdSales], t[AdSpend], t[Revenue]
	return Derived{
		AdSales:        round2(sales),
		AdSpend:        round2(spend),
		Revenue:        round2(rev),
		ACOS:           round2(safeDivF(spend, sales) * 100),
		TACOS:          round2(safeDivF(spend, rev) * 100),
		ROAS:           round2(safeDivF(sales, spend)),
		OrganicRevenue: round2(rev - sales),
	}
}

// DeriveOrders: AOV usa la cantidad de órdenes distintas como denominador.
func DeriveOrders(quantity, sales float64, orders int) Derived {
	return Derived{
		TotalQuantity: round2(quantity),
		TotalSales:    round2(sales),
		TotalOrders:   float64(orders),
		AOV:           round2(safeDivF(sales, float64(orders))),
	}
}

// Passthrough redondea sin derivar nada (CM1/CM2/CM3 ya vienen calculados).
func Passthrough(t Totals) Derived {
	out := make(Derived, len(t))
	for k, v := range t {
		out[k] = round2(v)
	}
	return out
}

func safeDivF(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round2(f float64) float64 { return decimal.NewFromFloat(f).Round(2).InexactFloat64() }
