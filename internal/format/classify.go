package format

import "strings"

// Severity is the ordinal colour class used across badges, chart slices, and
// the exported document.
type Severity string

const (
	SeverityOk       Severity = "ok"
	SeverityWarn     Severity = "warn"
	SeverityFail     Severity = "fail"
	SeverityProgress Severity = "progress"
	SeverityUnknown  Severity = "unknown"
)

// RGB returns the severity colour used in the rendered document.
func (s Severity) RGB() (r, g, b int) {
	switch s {
	case SeverityOk:
		return 40, 167, 69
	case SeverityWarn:
		return 253, 126, 20
	case SeverityFail:
		return 220, 53, 69
	case SeverityProgress:
		return 13, 110, 253
	default:
		return 108, 117, 125
	}
}

var (
	okStatuses   = set("synced", "healthy", "succeeded", "ok", "passed", "stable", "a", "success")
	warnStatuses = set("progressing", "degraded", "unstable", "outofsync", "b", "c", "warn", "warning", "suspended")
	failStatuses = set("failed", "error", "aborted", "d", "e", "failure", "missing")
)

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// Classify maps a status or result string to a Severity by case-insensitive
// membership. building=true always forces Progress regardless of the string.
func Classify(status string, building bool) Severity {
	if building {
		return SeverityProgress
	}
	s := strings.ToLower(strings.TrimSpace(status))
	switch {
	case okStatuses[s]:
		return SeverityOk
	case warnStatuses[s]:
		return SeverityWarn
	case failStatuses[s]:
		return SeverityFail
	default:
		return SeverityUnknown
	}
}

// ClassifyRating maps an A-E letter rating to a label and severity.
// Unrecognized letters pass through as the label with SeverityUnknown.
func ClassifyRating(letter string) (string, Severity) {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "A":
		return "A", SeverityOk
	case "B":
		return "B", SeverityWarn
	case "C":
		return "C", SeverityWarn
	case "D":
		return "D", SeverityFail
	case "E":
		return "E", SeverityFail
	}
	if letter == "" {
		return "-", SeverityUnknown
	}
	return letter, SeverityUnknown
}

// ClassifyGateStatus maps a quality-gate status to a label and severity.
func ClassifyGateStatus(status string) (string, Severity) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "OK":
		return "Passed", SeverityOk
	case "ERROR":
		return "Failed", SeverityFail
	case "WARN":
		return "Warning", SeverityWarn
	}
	if status == "" {
		return "Unknown", SeverityUnknown
	}
	return status, SeverityUnknown
}

// ClassifyBuildResult maps a build-server result string to a label and
// severity. A running build is always Running/Progress, whatever the
// result field says.
func ClassifyBuildResult(result string, building bool) (string, Severity) {
	if building {
		return "Running", SeverityProgress
	}
	switch strings.ToUpper(strings.TrimSpace(result)) {
	case "SUCCESS":
		return "Success", SeverityOk
	case "FAILURE":
		return "Failed", SeverityFail
	case "UNSTABLE":
		return "Unstable", SeverityWarn
	case "ABORTED":
		return "Aborted", SeverityFail
	case "NOT_BUILT":
		return "Not Built", SeverityUnknown
	}
	if result == "" {
		return "Unknown", SeverityUnknown
	}
	return result, SeverityUnknown
}
