package metrics

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/reporting-api/internal/predicate"
	"github.com/AngelCh415/reporting-api/internal/store"
)

type Options struct {
	// Now es el reloj; "hoy" sale de aquí.
	Now       func() time.Time
	PNLFields []string
}

// Service arma los reportes de un tenant sobre el DataSource que recibe.
type Service struct {
	ds        store.DataSource
	now       func() time.Time
	pnlFields []Field
}

var defaultPNLFields = []string{"revenue", "cm1", "cm2", "cm3"}

func NewService(ds store.DataSource, opt Options) *Service {
	now := opt.Now
	if now == nil {
		now = time.Now
	}
	names := opt.PNLFields
	if len(names) == 0 {
		names = defaultPNLFields
	}
	fields := make([]Field, 0, len(names))
	for _, n := range names {
		fields = append(fields, F(n))
	}
	return &Service{ds: ds, now: now, pnlFields: fields}
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func csvList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type matchKind int

const (
	fuzzy matchKind = iota // substring sin mayúsculas
	exact
	list // lista separada por comas
)

type attr struct {
	param string
	field string
	kind  matchKind
}

// attrs arma el AND de los filtros de atributo presentes en v.
func attrs(v url.Values, defs []attr) predicate.All {
	out := predicate.All{}
	for _, a := range defs {
		raw := strings.TrimSpace(v.Get(a.param))
		if raw == "" {
			continue
		}
		switch a.kind {
		case fuzzy:
			out = out.And(predicate.Contains{Field: a.field, Text: raw})
		case exact:
			out = out.And(predicate.Equals{Field: a.field, Value: raw})
		case list:
			if vals := csvList(raw); len(vals) > 0 {
				out = out.And(predicate.In{Field: a.field, Values: vals})
			}
		}
	}
	return out
}

// Page es una ventana de resultados con el total antes de paginar.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func pageOf[T any](rows []T, v url.Values) Page[T] {
	limit := atoiDef(v.Get("limit"), 0)
	offset := atoiDef(v.Get("offset"), 0)
	limit, offset = clampLimitOffset(limit, offset, len(rows))
	return Page[T]{Items: paginate(rows, limit, offset), Total: len(rows), Limit: limit, Offset: offset}
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // tope sano
	if offset > n {
		offset = n
	}
	return limit, offset
}
