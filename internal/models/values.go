package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Float coerciona v a número. ok=false para nil, vacíos, strings no numéricos, NaN o Inf.
func Float(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case decimal.Decimal:
		f = x.InexactFloat64()
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", ""))
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Number es Float con 0 para todo lo que no es número.
func Number(v any) float64 {
	f, _ := Float(v)
	return f
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2-Jan-2006", "2006-01-02 15:04:05", "2006-01"}

// Date lee una fecha en cualquiera de los encodings que conviven en los tenants
// (nativa, ISO, DD-MMM-YYYY, bucket YYYY-MM) y la devuelve como medianoche UTC.
func Date(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return day(x), !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		for _, l := range dateLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return day(t), true
			}
		}
	}
	return time.Time{}, false
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
