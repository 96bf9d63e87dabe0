package orchestrator

import (
	"regexp"
	"strings"
)

var (
	// the OS strategy also accepts YYYY/MM/DD
	osDayPattern      = regexp.MustCompile(`\b(20\d{2})[-/](\d{2})[-/](\d{2})\b`)
	genericDayPattern = regexp.MustCompile(`\b(20\d{2}-\d{2}-\d{2})\b`)
)

// osDay returns the first YYYY-MM-DD or YYYY/MM/DD day in query, normalized to dashes
func osDay(query string) string {
	m := osDayPattern.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2] + "-" + m[3]
}

// genericDay returns the first YYYY-MM-DD day in query
func genericDay(query string) string {
	m := genericDayPattern.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return m[1]
}

// dayOf returns the leading YYYY-MM-DD of an ISO-ish timestamp, or ""
func dayOf(ts string) string {
	ts = strings.TrimSpace(ts)
	if len(ts) < 10 || strings.Count(ts[:10], "-") != 2 {
		return ""
	}
	return ts[:10]
}
