// Package format holds the pure display-formatting and status-classification
// helpers shared by the HTTP handlers, the chart renderer, and the PDF
// document renderer. All functions are total: malformed input degrades to a
// sentinel value, never a panic or error.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultWorkdayHours is the workday convention used to convert technical
// debt minutes into days (1 day = 8h = 480min).
const DefaultWorkdayHours = 8

// Duration renders a millisecond duration compactly, e.g. "1h 3m 20s".
// Sub-minute durations keep their leftover milliseconds. Negative or missing
// values render as "-".
func Duration(ms *int64) string {
	if ms == nil || *ms < 0 {
		return "-"
	}
	v := *ms
	if v == 0 {
		return "0ms"
	}
	if v < 1000 {
		return fmt.Sprintf("%dms", v)
	}

	msPart := v % 1000
	seconds := (v / 1000) % 60
	minutes := (v / 60000) % 60
	hours := v / 3600000

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	if v < 60000 && msPart > 0 {
		parts = append(parts, fmt.Sprintf("%dms", msPart))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// Timestamp renders an epoch-millisecond timestamp as a short local
// date/time string. Missing values render as "-".
func Timestamp(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return time.UnixMilli(*ms).Format("Jan 2, 2006 3:04 PM")
}

// Debt converts technical-debt minutes into a d/h/min string using the given
// workday length, e.g. Debt(500, 8) == "1d 20min". Negative minutes render
// as "-".
func Debt(minutes int, hoursPerDay int) string {
	if minutes < 0 {
		return "-"
	}
	if minutes == 0 {
		return "0min"
	}
	if hoursPerDay <= 0 {
		hoursPerDay = DefaultWorkdayHours
	}
	minsPerDay := hoursPerDay * 60

	days := minutes / minsPerDay
	rem := minutes % minsPerDay
	hours := rem / 60
	rem = rem % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if rem > 0 {
		parts = append(parts, fmt.Sprintf("%dmin", rem))
	}
	return strings.Join(parts, " ")
}

// DebtString parses a raw minutes value (quality servers return it as a
// string) and formats it via Debt. Unparsable input renders as "-".
func DebtString(raw string, hoursPerDay int) string {
	minutes, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "-"
	}
	return Debt(minutes, hoursPerDay)
}

// Percentage parses a raw numeric value and renders it with a percent sign,
// e.g. "91.5%". Unparsable input renders as "-".
func Percentage(raw string, decimals int) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "-"
	}
	return strconv.FormatFloat(f, 'f', decimals, 64) + "%"
}

// GroupDigits renders an integer-looking raw value with thousands
// separators ("12345" -> "12,345"). Unparsable input renders as "-".
func GroupDigits(raw string) string {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return "-"
	}
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// metricLabels maps known quality-metric keys to display labels.
var metricLabels = map[string]string{
	"bugs":                     "Bugs",
	"vulnerabilities":          "Vulnerabilities",
	"security_hotspots":        "Security Hotspots",
	"code_smells":              "Code Smells",
	"coverage":                 "Coverage",
	"duplicated_lines_density": "Duplication Density",
	"ncloc":                    "Lines of Code",
	"sqale_rating":             "Maintainability Rating",
	"security_rating":          "Security Rating",
	"reliability_rating":       "Reliability Rating",
	"alert_status":             "Quality Gate",
	"sqale_index":              "Technical Debt",
}

// MetricLabel returns the display label for a quality-metric key. Unknown
// keys pass through unchanged.
func MetricLabel(key string) string {
	if label, ok := metricLabels[key]; ok {
		return label
	}
	return key
}
