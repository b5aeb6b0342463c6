package predicate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/AngelCh415/reporting-api/internal/models"
)

// Predicate filtra registros de una colección. Cada variante se evalúa en memoria
// con Match y el store de Mongo la traduce a un documento de filtro.
type Predicate interface {
	Match(r models.Record) bool
}

// ValueRange compara una fecha nativa, inclusive en ambos extremos.
type ValueRange struct {
	Field    string
	From, To time.Time
}

func (p ValueRange) Match(r models.Record) bool {
	t, ok := r[p.Field].(time.Time)
	return ok && !t.Before(p.From) && !t.After(p.To)
}

// StringPattern matchea fechas legacy guardadas como string.
type StringPattern struct {
	Field   string
	Pattern string
	re      *regexp.Regexp
}

func NewStringPattern(field, pattern string) StringPattern {
	return StringPattern{Field: field, Pattern: pattern, re: regexp.MustCompile(pattern)}
}

func (p StringPattern) Match(r models.Record) bool {
	s, ok := r[p.Field].(string)
	if !ok {
		return false
	}
	re := p.re
	if re == nil {
		re = regexp.MustCompile(p.Pattern)
	}
	return re.MatchString(strings.TrimSpace(s))
}

// BucketSet es pertenencia exacta contra claves YYYY-MM.
type BucketSet struct {
	Field string
	Keys  []string
}

func (p BucketSet) Match(r models.Record) bool {
	s, ok := r[p.Field].(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	for _, k := range p.Keys {
		if k == s {
			return true
		}
	}
	return false
}

// Any es OR; vacío no matchea nada.
type Any []Predicate

func (p Any) Match(r models.Record) bool {
	for _, q := range p {
		if q.Match(r) {
			return true
		}
	}
	return false
}

// All es AND; vacío matchea todo.
type All []Predicate

func (p All) Match(r models.Record) bool {
	for _, q := range p {
		if !q.Match(r) {
			return false
		}
	}
	return true
}

// And devuelve una copia de p con q agregado (nil se ignora). Nunca comparte el array de p.
func (p All) And(q Predicate) All {
	out := make(All, 0, len(p)+1)
	out = append(out, p...)
	if q != nil {
		out = append(out, q)
	}
	return out
}

type Equals struct {
	Field string
	Value string
}

func (p Equals) Match(r models.Record) bool { return sameValue(r[p.Field], p.Value) }

type In struct {
	Field  string
	Values []string
}

func (p In) Match(r models.Record) bool {
	for _, v := range p.Values {
		if sameValue(r[p.Field], v) {
			return true
		}
	}
	return false
}

// sameValue imita la igualdad tipada de Mongo con store.Filter: strings tal cual,
// números por valor (want "12" matchea 12 y 12.0, no " 12").
func sameValue(v any, want string) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x == want
	}
	n, isNum := models.Float(v)
	if !isNum {
		return fmt.Sprint(v) == want
	}
	w, ok := NumericValue(want)
	return ok && w == n
}

// NumericValue interpreta want como número literal (sin comas ni espacios).
func NumericValue(want string) (float64, bool) {
	if want == "" || strings.TrimSpace(want) != want || strings.Contains(want, ",") {
		return 0, false
	}
	return models.Float(want)
}

// Contains busca Text como literal, sin distinguir mayúsculas.
type Contains struct {
	Field string
	Text  string
}

func (p Contains) Match(r models.Record) bool {
	return strings.Contains(strings.ToLower(r.Str(p.Field)), strings.ToLower(p.Text))
}

type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLt  Op = "lt"
)

type NumberCompare struct {
	Field string
	Op    Op
	Value float64
}

func (p NumberCompare) Match(r models.Record) bool {
	v, ok := models.Float(r[p.Field])
	if !ok {
		return false
	}
	switch p.Op {
	case OpEq:
		return v == p.Value
	case OpGte:
		return v >= p.Value
	case OpLt:
		return v < p.Value
	}
	return false
}

func (p NumberCompare) String() string { return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value) }
