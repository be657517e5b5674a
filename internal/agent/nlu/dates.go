package nlu

import (
	"regexp"
	"strconv"
	"time"
)

var dateLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"2/1/2006",
	"2006/1/2",
	"2 1 2006",
	"2006.1.2",
}

var looseDate = regexp.MustCompile(`(\d{4})[-/]?(\d{2})[-/]?(\d{2})`)

// ParseDate tries the fixed layouts first, then scans for a YYYY-?MM-?DD run.
func ParseDate(v any) (time.Time, bool) {
	s := Normalize(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	m := looseDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
