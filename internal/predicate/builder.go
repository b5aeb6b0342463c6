package predicate

import (
	"strconv"
	"strings"

	"github.com/AngelCh415/reporting-api/internal/period"
)

// Encoding is how a collection writes its date field when it is not a native date.
type Encoding int

const (
	// DayString: "5-Mar-2025" / "05-Mar-2025".
	DayString Encoding = iota
	// MonthBucket: "2025-03".
	MonthBucket
)

// ForWindow builds the window check for field: native range OR legacy string form.
func ForWindow(field string, w period.Window, enc Encoding) Predicate {
	vr := ValueRange{Field: field, From: w.Start, To: w.LastInstant()}
	if enc == MonthBucket {
		return Any{vr, BucketSet{Field: field, Keys: BucketKeys(w)}}
	}
	return Any{vr, DayPattern(field, w)}
}

// MonthTokens devuelve un token Mmm-YYYY por mes tocado; nunca cruza años.
func MonthTokens(w period.Window) []string {
	months := w.MonthsTouched()
	out := make([]string, 0, len(months))
	for _, ym := range months {
		out = append(out, ym.Token())
	}
	return out
}

func BucketKeys(w period.Window) []string {
	months := w.MonthsTouched()
	out := make([]string, 0, len(months))
	for _, ym := range months {
		out = append(out, ym.Key())
	}
	return out
}

// DayPattern arma ^(?:\d{1,2}-(?:Mmm-YYYY|...)|(?:0?5|...)-Mmm-YYYY)$.
// Los meses completos van con \d{1,2}; los parciales enumeran sus días.
func DayPattern(field string, w period.Window) StringPattern {
	var full, parts []string
	for _, ym := range w.MonthsTouched() {
		if w.Covers(ym) {
			full = append(full, ym.Token())
			continue
		}
		from, to := ym.FirstDay(), ym.LastDay()
		if w.Start.After(from) {
			from = w.Start
		}
		if w.End.Before(to) {
			to = w.End
		}
		var days []string
		for d := from.Day(); d <= to.Day(); d++ {
			if d < 10 {
				days = append(days, "0?"+strconv.Itoa(d))
			} else {
				days = append(days, strconv.Itoa(d))
			}
		}
		parts = append(parts, "(?:"+strings.Join(days, "|")+")-"+ym.Token())
	}
	if len(full) > 0 {
		parts = append([]string{`\d{1,2}-(?:` + strings.Join(full, "|") + ")"}, parts...)
	}
	return NewStringPattern(field, "^(?:"+strings.Join(parts, "|")+")$")
}
