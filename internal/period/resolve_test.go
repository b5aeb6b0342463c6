package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/reporting-api/internal/apperr"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func assertWindow(t *testing.T, w Window, start, end string) {
	t.Helper()
	assert.Equal(t, start, w.Start.Format(dateLayout), "start of %s", w)
	assert.Equal(t, end, w.End.Format(dateLayout), "end of %s", w)
}

func TestResolveNamedSelectors(t *testing.T) {
	today := day("2025-03-15") // sábado

	cases := []struct {
		filter           string
		curStart, curEnd string
		preStart, preEnd string
	}{
		{"currentmonth", "2025-03-01", "2025-03-31", "2025-02-01", "2025-02-28"},
		{"previousmonth", "2025-02-01", "2025-02-28", "2025-01-01", "2025-01-31"},
		{"lastmonth", "2025-02-01", "2025-02-28", "2025-01-01", "2025-01-31"},
		{"currentyear", "2025-01-01", "2025-12-31", "2024-01-01", "2024-12-31"},
		{"6months", "2024-10-01", "2025-03-31", "2024-04-01", "2024-09-30"},
		{"last6months", "2024-10-01", "2025-03-31", "2024-04-01", "2024-09-30"},
		{"today", "2025-03-15", "2025-03-15", "2025-03-14", "2025-03-14"},
		{"week", "2025-03-09", "2025-03-15", "2025-03-02", "2025-03-08"},
		{"last30days", "2025-02-14", "2025-03-15", "2025-01-15", "2025-02-13"},
		{"monthtodate", "2025-03-01", "2025-03-15", "2025-02-14", "2025-02-28"},
		{"yeartodate", "2025-01-01", "2025-03-15", "2024-10-19", "2024-12-31"},
	}
	for _, tc := range cases {
		t.Run(tc.filter, func(t *testing.T) {
			p, err := Resolve(Selector{Filter: tc.filter}, today)
			require.NoError(t, err)
			assertWindow(t, p.Current, tc.curStart, tc.curEnd)
			assertWindow(t, p.Previous, tc.preStart, tc.preEnd)
		})
	}
}

func TestResolveExplicitMonths(t *testing.T) {
	p, err := Resolve(Selector{StartMonth: "01-2025", EndMonth: "03-2025", Filter: "today"}, day("2025-06-01"))
	require.NoError(t, err)
	assert.Equal(t, Month, p.Current.Granularity)
	assert.Equal(t, 3, p.Current.Months())
	assertWindow(t, p.Current, "2025-01-01", "2025-03-31")
	assertWindow(t, p.Previous, "2024-10-01", "2024-12-31")

	// YYYY-MM también vale
	p, err = Resolve(Selector{StartMonth: "2024-11", EndMonth: "2025-01"}, day("2025-06-01"))
	require.NoError(t, err)
	assertWindow(t, p.Current, "2024-11-01", "2025-01-31")
	assertWindow(t, p.Previous, "2024-08-01", "2024-10-31")
}

func TestResolveExplicitDays(t *testing.T) {
	p, err := Resolve(Selector{FromDate: "2024-02-20", ToDate: "2024-03-05"}, day("2025-01-01"))
	require.NoError(t, err)
	assert.Equal(t, Day, p.Current.Granularity)
	assert.Equal(t, 15, p.Current.Days())
	assertWindow(t, p.Current, "2024-02-20", "2024-03-05")
	assertWindow(t, p.Previous, "2024-02-05", "2024-02-19")
	assert.Equal(t, "2024-03-05T23:59:59.999Z", p.Current.LastInstant().Format(time.RFC3339Nano))
}

func TestResolveRejectsBadInput(t *testing.T) {
	bad := []Selector{
		{},
		{Filter: "fortnight"},
		{StartMonth: "13-2025", EndMonth: "01-2026"},
		{StartMonth: "ab-2025", EndMonth: "03-2025"},
		{StartMonth: "03-2025", EndMonth: "01-2025"},
		{StartMonth: "03-2025"},
		{FromDate: "2025-03-10", ToDate: "2025-03-01"},
		{FromDate: "yesterday", ToDate: "2025-03-01"},
		{ToDate: "2025-03-01"},
	}
	for _, sel := range bad {
		_, err := Resolve(sel, day("2025-03-15"))
		require.Error(t, err, "%+v", sel)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidSelector), "%+v: %v", sel, err)
	}
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "currentmonth", Selector{}.OrDefault("currentmonth").Filter)
	assert.Equal(t, "week", Selector{Filter: "week"}.OrDefault("currentmonth").Filter)
	assert.Empty(t, Selector{FromDate: "2025-01-01", ToDate: "2025-01-02"}.OrDefault("currentmonth").Filter)
}

// Para cualquier día del año (bisiesto incluido) la ventana previa es contigua y del mismo largo.
func TestPreviousWindowIsAdjacentAndSameSpan(t *testing.T) {
	filters := []string{"currentmonth", "previousmonth", "currentyear", "6months", "today", "week", "last30days", "monthtodate", "yeartodate"}
	for d := day("2023-12-01"); d.Before(day("2025-03-01")); d = d.AddDate(0, 0, 1) {
		for _, f := range filters {
			p, err := Resolve(Selector{Filter: f}, d)
			require.NoError(t, err)

			cur, prev := p.Current, p.Previous
			require.False(t, cur.End.Before(cur.Start))
			require.Equal(t, cur.Start.AddDate(0, 0, -1), prev.End, "%s on %s", f, d)
			if cur.Granularity == Month {
				require.Equal(t, cur.Months(), prev.Months(), "%s on %s", f, d)
				require.Equal(t, 1, prev.Start.Day())
			} else {
				require.Equal(t, cur.Days(), prev.Days(), "%s on %s", f, d)
			}

			again, _ := Resolve(Selector{Filter: f}, d)
			require.Equal(t, p, again)
		}
	}
}

func TestResolveIgnoresClockZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2025, 3, 31, 22, 0, 0, 0, loc) // ya es 1 de abril en UTC
	p, err := Resolve(Selector{Filter: "currentmonth"}, late)
	require.NoError(t, err)
	assertWindow(t, p.Current, "2025-04-01", "2025-04-30")
}

func TestMonthsTouchedAcrossYears(t *testing.T) {
	w := monthWindow(YearMonth{Year: 2024, Month: time.November}, 3)
	var tokens []string
	for _, ym := range w.MonthsTouched() {
		tokens = append(tokens, ym.Token())
	}
	assert.Equal(t, []string{"Nov-2024", "Dec-2024", "Jan-2025"}, tokens)
	assert.Equal(t, "2025-01", w.MonthsTouched()[2].Key())
}

func TestLongExplicitSpanKeepsSameLength(t *testing.T) {
	p, err := Resolve(Selector{FromDate: "1700-01-01", ToDate: "2025-01-01"}, day("2025-03-15"))
	require.NoError(t, err)
	assert.Equal(t, 118705, p.Current.Days())
	assert.Equal(t, p.Current.Days(), p.Previous.Days())
	assert.Equal(t, day("1699-12-31"), p.Previous.End)
}

func TestByMonthSnapsDayWindows(t *testing.T) {
	today := day("2025-03-15")
	cases := []struct {
		filter                   string
		cur0, cur1, prev0, prev1 string
	}{
		{"today", "2025-03-01", "2025-03-31", "2025-02-01", "2025-02-28"},
		{"week", "2025-03-01", "2025-03-31", "2025-02-01", "2025-02-28"},
		{"monthtodate", "2025-03-01", "2025-03-31", "2025-02-01", "2025-02-28"},
		{"last30days", "2025-02-01", "2025-03-31", "2024-12-01", "2025-01-31"},
		{"yeartodate", "2025-01-01", "2025-03-31", "2024-10-01", "2024-12-31"},
	}
	for _, tc := range cases {
		p, err := Resolve(Selector{Filter: tc.filter}, today)
		require.NoError(t, err)
		m := p.ByMonth()
		assert.Equal(t, Month, m.Current.Granularity, tc.filter)
		assertWindow(t, m.Current, tc.cur0, tc.cur1)
		assertWindow(t, m.Previous, tc.prev0, tc.prev1)
	}

	monthly, err := Resolve(Selector{Filter: "previousmonth"}, today)
	require.NoError(t, err)
	assert.Equal(t, monthly, monthly.ByMonth())
}
