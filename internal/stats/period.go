// Package stats resolves statistics periods and aggregates orders and POS
// receipts over them.
package stats

import (
	"strconv"
	"strings"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"golang.org/x/text/cases"
)

// Period is a resolved statistics window.
type Period struct {
	Kind  entity.PeriodKind
	Label string
	// Range is the half-open window the statistics cover.
	Range entity.TimeRange
	// Compare is the preceding window used for trends.
	Compare entity.TimeRange
	// Buckets hold the sub-ranges with zeroed metrics.
	Buckets []entity.Bucket
	// Weeks is only set for a labelled month.
	Weeks []entity.WeekBreakdown
}

const weeksPerMonth = 4

// fold case-folds s. A Caser keeps state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// ParseKind parses a period kind. An empty string defaults to month.
func ParseKind(s string) (entity.PeriodKind, error) {
	switch k := entity.PeriodKind(fold(strings.TrimSpace(s))); k {
	case "":
		return entity.PeriodMonth, nil
	case entity.PeriodDay, entity.PeriodWeek, entity.PeriodMonth, entity.PeriodYear:
		return k, nil
	default:
		return "", gerr.Validation("period", "unknown period %q", s)
	}
}

// Resolve maps kind and an optional label to a concrete window. Without a
// label the window runs from the start of the current unit up to and
// including now. All calendar arithmetic happens in now's location.
func Resolve(kind entity.PeriodKind, label string, now time.Time) (Period, error) {
	label = strings.TrimSpace(label)
	var (
		p   Period
		err error
	)
	if label == "" {
		p, err = resolveRelative(kind, now)
	} else {
		p, err = resolveLabel(kind, label, now)
	}
	if err != nil {
		return Period{}, err
	}
	p.Kind = kind
	p.Compare = entity.TimeRange{From: previousStart(kind, p.Range.From), To: p.Range.From}
	return p, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func resolveRelative(kind entity.PeriodKind, now time.Time) (Period, error) {
	// The end is pushed past now so records stamped exactly now are counted.
	end := now.Add(time.Nanosecond)
	today := midnight(now)
	var start time.Time

	switch kind {
	case entity.PeriodDay:
		start = today
	case entity.PeriodWeek:
		start = today.AddDate(0, 0, -int(today.Weekday()))
	case entity.PeriodMonth:
		start = today.AddDate(0, 0, 1-today.Day())
	case entity.PeriodYear:
		start = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
	default:
		return Period{}, gerr.Validation("period", "unknown period %q", kind)
	}

	return Period{
		Range:   entity.TimeRange{From: start, To: end},
		Buckets: bucketsFor(kind, start),
	}, nil
}

func resolveLabel(kind entity.PeriodKind, label string, now time.Time) (Period, error) {
	today := midnight(now)
	loc := today.Location()

	switch kind {
	case entity.PeriodDay:
		wd, ok := parseWeekday(label)
		if !ok {
			return Period{}, gerr.Validation("value", "unknown weekday %q", label)
		}
		diff := (int(today.Weekday()) - int(wd) + 7) % 7
		start := today.AddDate(0, 0, -diff)
		return Period{
			Label:   wd.String(),
			Range:   entity.TimeRange{From: start, To: start.AddDate(0, 0, 1)},
			Buckets: bucketsFor(kind, start),
		}, nil

	case entity.PeriodWeek:
		n, ok := parseWeekNumber(label)
		if !ok {
			return Period{}, gerr.Validation("value", "week must be \"Week 1\" to \"Week %d\", got %q", weeksPerMonth, label)
		}
		start := time.Date(today.Year(), today.Month(), (n-1)*7+1, 0, 0, 0, 0, loc)
		return Period{
			Label:   "Week " + strconv.Itoa(n),
			Range:   entity.TimeRange{From: start, To: start.AddDate(0, 0, 7)},
			Buckets: bucketsFor(kind, start),
		}, nil

	case entity.PeriodMonth:
		m, ok := parseMonth(label)
		if !ok {
			return Period{}, gerr.Validation("value", "unknown month %q", label)
		}
		start := time.Date(today.Year(), m, 1, 0, 0, 0, 0, loc)
		return Period{
			Label:   m.String(),
			Range:   entity.TimeRange{From: start, To: start.AddDate(0, 1, 0)},
			Buckets: bucketsFor(kind, start),
			Weeks:   monthWeeks(start),
		}, nil

	case entity.PeriodYear:
		y, ok := parseYear(label)
		if !ok {
			return Period{}, gerr.Validation("value", "year must have four digits, got %q", label)
		}
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return Period{
			Label:   strconv.Itoa(y),
			Range:   entity.TimeRange{From: start, To: start.AddDate(1, 0, 0)},
			Buckets: bucketsFor(kind, start),
		}, nil
	}
	return Period{}, gerr.Validation("period", "unknown period %q", kind)
}

// previousStart steps back one unit from start. Day and week are fixed
// lengths, month and year use calendar arithmetic.
func previousStart(kind entity.PeriodKind, start time.Time) time.Time {
	switch kind {
	case entity.PeriodDay:
		return start.AddDate(0, 0, -1)
	case entity.PeriodWeek:
		return start.AddDate(0, 0, -7)
	case entity.PeriodMonth:
		return start.AddDate(0, -1, 0)
	default:
		return start.AddDate(-1, 0, 0)
	}
}

// bucketsFor splits the unit starting at start into its natural sub-ranges.
func bucketsFor(kind entity.PeriodKind, start time.Time) []entity.Bucket {
	var out []entity.Bucket
	add := func(label string, from, to time.Time) {
		out = append(out, entity.Bucket{Label: label, Range: entity.TimeRange{From: from, To: to}})
	}
	y, m, d := start.Date()
	loc := start.Location()

	switch kind {
	case entity.PeriodDay:
		// Elapsed hours: a day with a clock change has 23 or 25 buckets.
		end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
		for from := time.Date(y, m, d, 0, 0, 0, 0, loc); from.Before(end); {
			to := from.Add(time.Hour)
			if to.After(end) {
				to = end
			}
			add(strconv.Itoa(from.Hour())+":00", from, to)
			from = to
		}
	case entity.PeriodWeek:
		for i := 0; i < 7; i++ {
			from := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
			add(from.Weekday().String()[:3], from, from.AddDate(0, 0, 1))
		}
	case entity.PeriodMonth:
		for _, w := range monthWeeks(start) {
			add("Week "+strconv.Itoa(w.WeekNumber), w.Range.From, w.Range.To)
		}
	case entity.PeriodYear:
		for i := 0; i < 12; i++ {
			from := time.Date(y, time.January+time.Month(i), 1, 0, 0, 0, 0, loc)
			add(from.Month().String()[:3], from, from.AddDate(0, 1, 0))
		}
	}
	return out
}

// monthWeeks splits the month starting at start into four weeks of seven
// days. The fourth week runs to the last day of the month.
func monthWeeks(start time.Time) []entity.WeekBreakdown {
	y, m, _ := start.Date()
	loc := start.Location()
	lastDay := time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()

	weeks := make([]entity.WeekBreakdown, 0, weeksPerMonth)
	for n := 1; n <= weeksPerMonth; n++ {
		first := (n-1)*7 + 1
		last := n * 7
		if n == weeksPerMonth {
			last = lastDay
		}
		weeks = append(weeks, entity.WeekBreakdown{
			WeekNumber: n,
			Label:      "Week " + strconv.Itoa(n) + " (" + strconv.Itoa(first) + "-" + strconv.Itoa(last) + ")",
			StartDay:   first,
			EndDay:     last,
			Range: entity.TimeRange{
				From: time.Date(y, m, first, 0, 0, 0, 0, loc),
				To:   time.Date(y, m, last+1, 0, 0, 0, 0, loc),
			},
		})
	}
	return weeks
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = fold(s)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := fold(wd.String())
		if s == name || s == name[:3] {
			return wd, true
		}
	}
	return 0, false
}

func parseMonth(s string) (time.Month, bool) {
	s = fold(s)
	for m := time.January; m <= time.December; m++ {
		name := fold(m.String())
		if s == name || s == name[:3] {
			return m, true
		}
	}
	return 0, false
}

// parseWeekNumber accepts "Week N" and a bare "N".
func parseWeekNumber(s string) (int, bool) {
	fields := strings.Fields(fold(s))
	switch {
	case len(fields) == 2 && fields[0] == "week":
		s = fields[1]
	case len(fields) == 1:
		s = fields[0]
	default:
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > weeksPerMonth {
		return 0, false
	}
	return n, true
}

func parseYear(s string) (int, bool) {
	if len(s) != 4 || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1 {
		return 0, false
	}
	return y, true
}
