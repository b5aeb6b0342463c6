package period

import (
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/reporting-api/internal/apperr"
)

const dateLayout = "2006-01-02"

// Selector is one request's period vocabulary. Explicit bounds win over Filter.
type Selector struct {
	Filter     string
	StartMonth string
	EndMonth   string
	FromDate   string
	ToDate     string
}

func (s Selector) explicitMonths() bool { return s.StartMonth != "" || s.EndMonth != "" }
func (s Selector) explicitDays() bool   { return s.FromDate != "" || s.ToDate != "" }

// Empty es true si no se pidió ningún periodo.
func (s Selector) Empty() bool {
	return strings.TrimSpace(s.Filter) == "" && !s.explicitMonths() && !s.explicitDays()
}

// OrDefault completa Filter cuando la petición no trae periodo alguno.
func (s Selector) OrDefault(filter string) Selector {
	if s.Empty() {
		s.Filter = filter
	}
	return s
}

// Resolve maps sel to a window pair relative to today (taken as a UTC calendar day).
func Resolve(sel Selector, today time.Time) (Pair, error) {
	cur, err := current(sel, dayUTC(today))
	if err != nil {
		return Pair{}, err
	}
	return Pair{Current: cur, Previous: cur.preceding()}, nil
}

func current(sel Selector, today time.Time) (Window, error) {
	switch {
	case sel.explicitMonths():
		if sel.StartMonth == "" || sel.EndMonth == "" {
			return Window{}, apperr.InvalidSelector("startMonth and endMonth must be given together")
		}
		from, err := ParseMonth(sel.StartMonth)
		if err != nil {
			return Window{}, err
		}
		to, err := ParseMonth(sel.EndMonth)
		if err != nil {
			return Window{}, err
		}
		if to.Before(from) {
			return Window{}, apperr.InvalidSelector("endMonth %s is before startMonth %s", sel.EndMonth, sel.StartMonth)
		}
		n := (to.Year-from.Year)*12 + int(to.Month) - int(from.Month) + 1
		return monthWindow(from, n), nil

	case sel.explicitDays():
		if sel.FromDate == "" || sel.ToDate == "" {
			return Window{}, apperr.InvalidSelector("fromDate and toDate must be given together")
		}
		from, err := ParseDay(sel.FromDate)
		if err != nil {
			return Window{}, err
		}
		to, err := ParseDay(sel.ToDate)
		if err != nil {
			return Window{}, err
		}
		if to.Before(from) {
			return Window{}, apperr.InvalidSelector("toDate %s is before fromDate %s", sel.ToDate, sel.FromDate)
		}
		return dayWindow(from, to), nil
	}

	this := MonthOf(today)
	switch strings.ToLower(strings.TrimSpace(sel.Filter)) {
	case "currentmonth", "currentmonths":
		return monthWindow(this, 1), nil
	case "previousmonth", "lastmonth":
		return monthWindow(this.Add(-1), 1), nil
	case "currentyear", "year":
		return monthWindow(YearMonth{Year: this.Year, Month: time.January}, 12), nil
	case "6months", "last6months":
		return monthWindow(this.Add(-5), 6), nil
	case "today":
		return dayWindow(today, today), nil
	case "week":
		// domingo a sábado
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return dayWindow(start, start.AddDate(0, 0, 6)), nil
	case "last30days":
		return dayWindow(today.AddDate(0, 0, -29), today), nil
	case "monthtodate":
		return dayWindow(this.FirstDay(), today), nil
	case "yeartodate":
		return dayWindow(time.Date(this.Year, time.January, 1, 0, 0, 0, 0, time.UTC), today), nil
	case "":
		return Window{}, apperr.InvalidSelector("a period selector is required")
	default:
		return Window{}, apperr.InvalidSelector("unknown filter %q", sel.Filter)
	}
}

// ParseMonth acepta MM-YYYY (también M-YYYY) y YYYY-MM.
func ParseMonth(s string) (YearMonth, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return YearMonth{}, apperr.InvalidSelector("month %q must be MM-YYYY", s)
	}
	ms, ys := parts[0], parts[1]
	if len(ms) == 4 {
		ms, ys = ys, ms
	}
	if len(ys) != 4 || len(ms) == 0 || len(ms) > 2 {
		return YearMonth{}, apperr.InvalidSelector("month %q must be MM-YYYY", s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 1 || m > 12 {
		return YearMonth{}, apperr.InvalidSelector("month %q has an invalid month", s)
	}
	y, err := strconv.Atoi(ys)
	if err != nil || y < 1 {
		return YearMonth{}, apperr.InvalidSelector("month %q has an invalid year", s)
	}
	return YearMonth{Year: y, Month: time.Month(m)}, nil
}

// ParseDay acepta YYYY-MM-DD o RFC3339; el resultado es medianoche UTC.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return dayUTC(t), nil
	}
	return time.Time{}, apperr.InvalidSelector("date %q must be YYYY-MM-DD", s)
}
