package metrics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/reporting-api/internal/period"
)

// Sentinel es lo que se reporta cuando la ventana previa vale 0.
type Sentinel string

const (
	// NotAvailable: órdenes y ventas regionales.
	NotAvailable Sentinel = "N/A"
	// ZeroPercent: ads y PNL.
	ZeroPercent Sentinel = "0.00"
)

// PercentChange = (curr-prev)/prev*100 con 2 decimales fijos.
func PercentChange(curr, prev float64, s Sentinel) string {
	if prev == 0 {
		return string(s)
	}
	c, p := decimal.NewFromFloat(curr), decimal.NewFromFloat(prev)
	return c.Sub(p).Div(p).Mul(decimal.NewFromInt(100)).StringFixed(2)
}

// Compare arma el cambio porcentual de cada métrica de curr bajo la clave <métrica>ChangePercent.
func Compare(curr, prev Derived, s Sentinel) map[string]string {
	out := make(map[string]string, len(curr))
	for k, v := range curr {
		out[percentKey(k)] = PercentChange(v, prev[k], s)
	}
	return out
}

// percentKey: ACOS -> acosChangePercent, adSales -> adSalesChangePercent.
func percentKey(metric string) string {
	if strings.ToUpper(metric) == metric {
		metric = strings.ToLower(metric)
	}
	return metric + "ChangePercent"
}

type Comparison struct {
	Current  Derived           `json:"current"`
	Previous Derived           `json:"previous"`
	Percent  map[string]string `json:"percent"`
	Period   period.Pair       `json:"period"`
}

func NewComparison(pair period.Pair, curr, prev Derived, s Sentinel) *Comparison {
	return &Comparison{Current: curr, Previous: prev, Percent: Compare(curr, prev, s), Period: pair}
}
