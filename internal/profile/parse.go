package profile

import (
	"strconv"
	"strings"
	"time"
)

// currencyRunes are stripped from values before float parsing, along with
// thousands separators and inner whitespace.
var currencyRunes = "$€£¥"

// parseFloat converts a raw cell to a float. The second return reports
// whether currency or separator stripping was needed.
func parseFloat(v string) (float64, bool, bool) {
	v = strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, false, true
	}

	stripped := v
	for _, r := range currencyRunes {
		stripped = strings.ReplaceAll(stripped, string(r), "")
	}
	stripped = strings.ReplaceAll(stripped, ",", "")
	stripped = strings.ReplaceAll(stripped, " ", "")
	if stripped == v {
		return 0, false, false
	}
	f, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, false, false
	}
	return f, true, true
}

// dateFormats is the permissive set of layouts the profiler accepts.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"02.01.2006",
	"2006-01",
	"Jan-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2006",
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// tryDates parses the values as dates. Succeeds when at least half of the
// non-null values parse. Granularity is "day" when distinct days clearly
// outnumber distinct months, "month" otherwise.
func tryDates(nonNull []string) (bool, *DateStats) {
	var parsed []time.Time
	for _, v := range nonNull {
		if t, ok := parseDate(v); ok {
			parsed = append(parsed, t)
		}
	}

	if len(parsed) < 2 || float64(len(parsed)) < float64(len(nonNull))*parseShare {
		return false, nil
	}

	min, max := parsed[0], parsed[0]
	days := map[string]bool{}
	months := map[string]bool{}
	for _, t := range parsed {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
		days[t.Format("2006-01-02")] = true
		months[t.Format("2006-01")] = true
	}

	granularity := "month"
	if len(months) > 0 && float64(len(days))/float64(len(months)) >= 1.5 {
		granularity = "day"
	}

	return true, &DateStats{
		Min:         min.Format("2006-01-02"),
		Max:         max.Format("2006-01-02"),
		Granularity: granularity,
		ValidPct:    round1(float64(len(parsed)) / float64(len(nonNull)) * 100),
	}
}
