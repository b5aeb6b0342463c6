package period

import (
	"encoding/json"
	"fmt"
	"time"
)

type Granularity int

const (
	Month Granularity = iota
	Day
)

func (g Granularity) String() string {
	if g == Day {
		return "day"
	}
	return "month"
}

// YearMonth identifica un mes calendario.
type YearMonth struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) YearMonth {
	t = t.UTC()
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) Add(n int) YearMonth {
	idx := ym.Year*12 + int(ym.Month) - 1 + n
	return YearMonth{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay usa el día 0 del mes siguiente; time.Date normaliza longitudes y años.
func (ym YearMonth) LastDay() time.Time {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC)
}

// Key es la clave de bucket YYYY-MM.
func (ym YearMonth) Key() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

// Token es el sufijo de las fechas legacy DD-MMM-YYYY, p.ej. "Mar-2025".
func (ym YearMonth) Token() string { return fmt.Sprintf("%s-%04d", ym.Month.String()[:3], ym.Year) }

func (ym YearMonth) Before(o YearMonth) bool {
	return ym.Year < o.Year || (ym.Year == o.Year && ym.Month < o.Month)
}

// Window is a closed interval of UTC calendar days. Start and End are midnights.
type Window struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthWindow(from YearMonth, n int) Window {
	return Window{Start: from.FirstDay(), End: from.Add(n - 1).LastDay(), Granularity: Month}
}

func dayWindow(from, to time.Time) Window {
	return Window{Start: dayUTC(from), End: dayUTC(to), Granularity: Day}
}

const secondsPerDay = 24 * 60 * 60

// Days cuenta días inclusive. Sin time.Duration: satura a los ~292 años.
func (w Window) Days() int {
	return int((w.End.Unix()-w.Start.Unix())/secondsPerDay) + 1
}

// Months cuenta meses calendario tocados, inclusive.
func (w Window) Months() int {
	s, e := MonthOf(w.Start), MonthOf(w.End)
	return (e.Year-s.Year)*12 + int(e.Month) - int(s.Month) + 1
}

// Until is the exclusive upper bound (midnight after End).
func (w Window) Until() time.Time { return w.End.AddDate(0, 0, 1) }

// LastInstant is End at 23:59:59.999, the inclusive bound used against stored dates.
func (w Window) LastInstant() time.Time { return w.Until().Add(-time.Millisecond) }

func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Start) && t.Before(w.Until())
}

// MonthsTouched enumera cada mes calendario del intervalo, en orden.
func (w Window) MonthsTouched() []YearMonth {
	first, last := MonthOf(w.Start), MonthOf(w.End)
	var out []YearMonth
	for ym := first; !last.Before(ym); ym = ym.Add(1) {
		out = append(out, ym)
	}
	return out
}

// Covers dice si ym cae completo dentro de la ventana.
func (w Window) Covers(ym YearMonth) bool {
	return !ym.FirstDay().Before(w.Start) && !ym.LastDay().After(w.End)
}

// preceding devuelve la ventana contigua anterior con el mismo largo.
func (w Window) preceding() Window {
	if w.Granularity == Month {
		n := w.Months()
		return monthWindow(MonthOf(w.Start).Add(-n), n)
	}
	end := w.Start.AddDate(0, 0, -1)
	return dayWindow(end.AddDate(0, 0, -(w.Days()-1)), end)
}

func (w Window) String() string {
	return w.Start.Format(dateLayout) + ".." + w.End.Format(dateLayout)
}

func (w Window) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start       string `json:"start"`
		End         string `json:"end"`
		Granularity string `json:"granularity"`
	}{w.Start.Format(dateLayout), w.End.Format(dateLayout), w.Granularity.String()})
}

type Pair struct {
	Current  Window `json:"current"`
	Previous Window `json:"previous"`
}

// ByMonth lleva una ventana por días a los meses completos que toca, y la previa
// a la misma cantidad de meses anteriores. Para colecciones con solo clave YYYY-MM.
func (p Pair) ByMonth() Pair {
	if p.Current.Granularity == Month {
		return p
	}
	cur := monthWindow(MonthOf(p.Current.Start), p.Current.Months())
	return Pair{Current: cur, Previous: cur.preceding()}
}
