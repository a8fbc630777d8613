package candidate

import (
	"strings"
	"time"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01", "2006"}

// parseDate tries each accepted layout in turn.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isOpenEnd(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "present", "current", "now":
		return true
	}
	return false
}

// Duration returns the years spent in the position. Dates win over the
// explicit Years field; unparseable input contributes 0.
func (e Experience) Duration(now time.Time) float64 {
	start, ok := parseDate(e.StartDate)
	if !ok {
		return e.Years
	}
	end := now
	if !isOpenEnd(e.EndDate) {
		if end, ok = parseDate(e.EndDate); !ok {
			return e.Years
		}
	}
	if end.Before(start) {
		return 0
	}
	return calendarYears(start, end)
}

// calendarYears counts whole anniversaries from start to end, plus the
// elapsed fraction of the year that follows the last one. 2018-01-01 to
// 2023-01-01 is exactly 5.
func calendarYears(start, end time.Time) float64 {
	years := end.Year() - start.Year()
	anchor := start.AddDate(years, 0, 0)
	if anchor.After(end) {
		years--
		anchor = start.AddDate(years, 0, 0)
	}
	next := start.AddDate(years+1, 0, 0)
	return float64(years) + float64(end.Sub(anchor))/float64(next.Sub(anchor))
}

// TotalYears sums Duration over all experience entries.
func (r Record) TotalYears(now time.Time) float64 {
	var total float64
	for _, e := range r.Experience {
		total += e.Duration(now)
	}
	return total
}
