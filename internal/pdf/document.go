// Package pdf renders an aggregate report as a paginated PDF document.
// Rendering is deterministic for a given report: the page sequence is fixed,
// sections are included based solely on data presence, and a missing section
// degrades to a placeholder line rather than failing the document.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/devsecops-monitor/monitor/internal/format"
	"github.com/devsecops-monitor/monitor/internal/model"
)

const (
	pageWidth     = 210.0
	marginLeft    = 15.0
	marginTop     = 15.0
	marginRight   = 15.0
	bodyWidth     = pageWidth - marginLeft - marginRight
	bottomLimit   = 270.0
	recentBuilds  = 5
	recentDeploys = 5
)

// Filename returns the download filename for a report generated at t,
// e.g. "devops_report_2026-08-29_14-03-12.pdf".
func Filename(t time.Time) string {
	return "devops_report_" + t.Format("2006-01-02_15-04-05") + ".pdf"
}

// Renderer produces report documents. The zero value uses the default
// workday convention for technical-debt formatting.
type Renderer struct {
	WorkdayHours int
}

func (r Renderer) workday() int {
	if r.WorkdayHours > 0 {
		return r.WorkdayHours
	}
	return format.DefaultWorkdayHours
}

// Render writes the full document for rep to w.
func (r Renderer) Render(w io.Writer, rep *model.Report) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("DevSecOps Monitor Report", false)
	// Pin the document timestamps so identical reports render to identical
	// bytes.
	doc.SetCreationDate(rep.GeneratedAt)
	doc.SetModificationDate(rep.GeneratedAt)
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(false, 0)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 8, fmt.Sprintf("Page %d / {nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	r.titlePage(doc, rep)
	r.overviewPage(doc, rep)
	r.chartPage(doc, "Build Status", rep.BuildChartPNG, "build-status")
	r.chartPage(doc, "Application Health", rep.HealthChartPNG, "app-health")

	doc.AddPage()
	r.applicationsSection(doc, rep.Applications)
	r.metricsSection(doc, rep.Quality)
	r.buildsSection(doc, rep.Builds)

	if doc.Err() {
		return fmt.Errorf("render document: %w", doc.Error())
	}
	return doc.Output(w)
}

func (r Renderer) titlePage(doc *fpdf.Fpdf, rep *model.Report) {
	doc.AddPage()
	doc.SetY(100)
	doc.SetFont("Helvetica", "B", 26)
	doc.SetTextColor(17, 17, 17)
	doc.CellFormat(bodyWidth, 12, "DevSecOps Monitor Report", "", 1, "C", false, 0, "")
	doc.Ln(4)
	ms := rep.GeneratedAt.UnixMilli()
	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(85, 85, 85)
	doc.CellFormat(bodyWidth, 8, "Generated: "+format.Timestamp(&ms), "", 1, "C", false, 0, "")
}

func (r Renderer) overviewPage(doc *fpdf.Fpdf, rep *model.Report) {
	doc.AddPage()
	r.sectionHeader(doc, "Overview")
	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(51, 51, 51)
	doc.MultiCell(bodyWidth, 5.5,
		"This report aggregates the current state of the delivery pipeline from "+
			"three systems: the build server (recent build history), the static "+
			"analysis server (code-quality metrics and quality gate), and the "+
			"GitOps deployment controller (application sync and health status). "+
			"The following pages show status charts where available, then a "+
			"detailed breakdown per system.", "", "L", false)
	doc.Ln(4)

	if len(rep.SourceErrors) > 0 {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetTextColor(220, 53, 69)
		doc.CellFormat(bodyWidth, 6, "Some data could not be collected:", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.SetTextColor(85, 85, 85)
		for _, se := range rep.SourceErrors {
			doc.CellFormat(bodyWidth, 5, fmt.Sprintf("  - %s: %s", se.Source, se.Reason), "", 1, "L", false, 0, "")
		}
	}
}

func (r Renderer) chartPage(doc *fpdf.Fpdf, title string, png []byte, name string) {
	if len(png) == 0 {
		return
	}
	doc.AddPage()
	r.sectionHeader(doc, title)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	doc.ImageOptions(name, marginLeft+10, 50, bodyWidth-20, 0, false, opts, 0, "")
}

// --- Deployment applications ---

func (r Renderer) applicationsSection(doc *fpdf.Fpdf, apps []model.Application) {
	r.sectionHeader(doc, "Deployment Applications")
	if len(apps) == 0 {
		r.placeholder(doc, "No deployment application data available.")
		return
	}
	for i := range apps {
		r.applicationCard(doc, &apps[i])
	}
}

func (r Renderer) applicationCard(doc *fpdf.Fpdf, app *model.Application) {
	history := app.History
	if len(history) > recentDeploys {
		history = history[:recentDeploys]
	}
	cardHeight := 12.5 + 4*4.5 // header row plus the four fixed lines
	if app.SourcePath != "" && app.SourcePath != "." {
		cardHeight += 4.5
	}
	if len(history) > 0 {
		cardHeight += 4.5 + float64(len(history))*4.5
	}
	cardHeight += 2 // bottom padding
	r.ensureSpace(doc, cardHeight+4)

	top := doc.GetY()
	doc.SetFillColor(250, 250, 250)
	doc.SetDrawColor(220, 220, 220)
	doc.Rect(marginLeft, top, bodyWidth, cardHeight, "FD")

	doc.SetXY(marginLeft+3, top+2.5)
	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(17, 17, 17)
	doc.CellFormat(90, 6, app.Name, "", 0, "L", false, 0, "")

	r.badge(doc, orDash(app.SyncStatus), format.Classify(app.SyncStatus, false))
	doc.SetX(doc.GetX() + 2)
	r.badge(doc, orDash(app.HealthStatus), format.Classify(app.HealthStatus, false))
	doc.Ln(7)

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(68, 68, 68)
	line := func(label, value string) {
		doc.SetX(marginLeft + 3)
		doc.SetFont("Helvetica", "B", 9)
		doc.CellFormat(26, 4.5, label, "", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.CellFormat(bodyWidth-32, 4.5, value, "", 1, "L", false, 0, "")
	}

	project := app.Project
	if project == "" {
		project = "default"
	}
	line("Project:", project)
	line("Repo:", shortenRepoURL(app.SourceRepoURL))
	target := app.SourceTargetRevision
	if target == "" {
		target = "HEAD"
	}
	line("Target:", fmt.Sprintf("%s (%s)", target, shortRevision(app.SourceRevision)))
	if app.SourcePath != "" && app.SourcePath != "." {
		line("Path:", app.SourcePath)
	}
	line("Destination:", fmt.Sprintf("%s / %s",
		orDash(stripScheme(app.DestinationServer)), orDash(app.DestinationNamespace)))

	if len(history) > 0 {
		doc.SetX(marginLeft + 3)
		doc.SetFont("Helvetica", "B", 9)
		doc.CellFormat(bodyWidth-6, 4.5, "Recent deployments:", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 8.5)
		doc.SetTextColor(102, 102, 102)
		for _, h := range history {
			deployed := "-"
			if h.DeployedAt != nil {
				ms := h.DeployedAt.UnixMilli()
				deployed = format.Timestamp(&ms)
			}
			doc.SetX(marginLeft + 6)
			doc.CellFormat(bodyWidth-12, 4.5,
				fmt.Sprintf("#%d  %s  %s", h.ID, shortRevision(h.Revision), deployed),
				"", 1, "L", false, 0, "")
		}
		doc.SetTextColor(68, 68, 68)
	}

	doc.SetY(top + cardHeight + 3)
}

// --- Code-quality metrics ---

// metricOrder fixes the display priority of the tabular metrics. Rating and
// gate keys render as badges ahead of the table and are excluded here.
var metricOrder = []string{
	"bugs", "vulnerabilities", "security_hotspots", "code_smells",
	"coverage", "duplicated_lines_density", "ncloc", "sqale_index",
}

var badgeKeys = []string{"alert_status", "sqale_rating", "security_rating", "reliability_rating"}

var badgeTitles = map[string]string{
	"alert_status":       "Quality Gate",
	"sqale_rating":       "Maintainability",
	"security_rating":    "Security",
	"reliability_rating": "Reliability",
}

func (r Renderer) metricsSection(doc *fpdf.Fpdf, quality *model.QualityData) {
	r.ensureSpace(doc, 60)
	title := "Code Quality Metrics"
	if quality != nil && quality.ProjectKey != "" {
		title += ": " + quality.ProjectKey
	}
	r.sectionHeader(doc, title)

	if quality == nil || len(quality.Metrics) == 0 {
		r.placeholder(doc, "No code quality data available.")
		return
	}

	// Badge row: quality gate first, then the three letter ratings.
	doc.SetX(marginLeft)
	for _, key := range badgeKeys {
		value, ok := quality.Metrics[key]
		if !ok {
			continue
		}
		var label string
		var sev format.Severity
		if key == "alert_status" {
			label, sev = format.ClassifyGateStatus(value)
		} else {
			label, sev = format.ClassifyRating(value)
		}
		doc.SetFont("Helvetica", "", 8.5)
		doc.SetTextColor(102, 102, 102)
		doc.CellFormat(doc.GetStringWidth(badgeTitles[key])+2, 6, badgeTitles[key], "", 0, "L", false, 0, "")
		r.badge(doc, label, sev)
		doc.SetX(doc.GetX() + 4)
	}
	doc.Ln(9)

	doc.SetDrawColor(204, 204, 204)
	doc.Line(marginLeft, doc.GetY(), marginLeft+bodyWidth, doc.GetY())
	doc.Ln(2)

	for i, key := range tabularKeys(quality.Metrics) {
		r.metricRow(doc, key, quality.Metrics[key], i%2 == 1)
	}
}

// tabularKeys returns the metric keys to render as rows: the fixed-priority
// list first, then any unlisted keys in lexical order.
func tabularKeys(metrics map[string]string) []string {
	listed := make(map[string]bool, len(metricOrder)+len(badgeKeys))
	for _, k := range badgeKeys {
		listed[k] = true
	}

	var keys []string
	for _, k := range metricOrder {
		listed[k] = true
		if _, ok := metrics[k]; ok {
			keys = append(keys, k)
		}
	}

	var extra []string
	for k := range metrics {
		if !listed[k] {
			extra = append(extra, k)
		}
	}
	// Keys outside the priority list trail in lexical order.
	sort.Strings(extra)
	return append(keys, extra...)
}

func (r Renderer) metricRow(doc *fpdf.Fpdf, key, value string, zebra bool) {
	r.ensureSpace(doc, 7)
	display, sev := r.metricDisplay(key, value)

	doc.SetX(marginLeft)
	if zebra {
		doc.SetFillColor(245, 245, 245)
	} else {
		doc.SetFillColor(255, 255, 255)
	}
	doc.SetFont("Helvetica", "", 9.5)
	doc.SetTextColor(51, 51, 51)
	doc.CellFormat(bodyWidth*0.6, 6.5, format.MetricLabel(key), "", 0, "L", true, 0, "")

	cr, cg, cb := sev.RGB()
	if sev == format.SeverityUnknown {
		cr, cg, cb = 51, 51, 51
	}
	doc.SetTextColor(cr, cg, cb)
	doc.SetFont("Helvetica", "B", 9.5)
	doc.CellFormat(bodyWidth*0.4, 6.5, display, "", 1, "R", true, 0, "")
}

// metricDisplay formats one metric value and picks its colour class. A value
// that cannot be parsed degrades to "-" for that field only.
func (r Renderer) metricDisplay(key, value string) (string, format.Severity) {
	switch key {
	case "bugs", "vulnerabilities", "security_hotspots", "code_smells":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return "-", format.SeverityUnknown
		}
		sev := format.SeverityOk
		switch {
		case key == "code_smells":
			sev = format.SeverityUnknown
		case n > 0 && key == "security_hotspots":
			sev = format.SeverityWarn
		case n > 0:
			sev = format.SeverityFail
		}
		return strconv.Itoa(n), sev
	case "coverage", "duplicated_lines_density":
		return format.Percentage(value, 1), format.SeverityUnknown
	case "ncloc":
		return format.GroupDigits(value), format.SeverityUnknown
	case "sqale_index":
		return format.DebtString(value, r.workday()), format.SeverityUnknown
	}
	if value == "" {
		return "-", format.SeverityUnknown
	}
	return value, format.SeverityUnknown
}

// --- Build history ---

func (r Renderer) buildsSection(doc *fpdf.Fpdf, builds *model.BuildData) {
	r.ensureSpace(doc, 40)
	title := "Build History"
	if builds != nil && builds.JobName != "" {
		title += ": " + builds.JobName
	}
	r.sectionHeader(doc, title)

	if builds == nil || len(builds.Builds) == 0 {
		r.placeholder(doc, "No build data available.")
		return
	}

	recent := builds.Builds
	if len(recent) > recentBuilds {
		recent = recent[:recentBuilds]
	}
	for i := range recent {
		r.buildCard(doc, &recent[i])
	}
}

func (r Renderer) buildCard(doc *fpdf.Fpdf, b *model.Build) {
	const cardHeight = 21.0
	r.ensureSpace(doc, cardHeight+4)

	top := doc.GetY()
	label, sev := format.ClassifyBuildResult(b.Result, b.Building)

	doc.SetFillColor(250, 250, 250)
	doc.SetDrawColor(220, 220, 220)
	doc.Rect(marginLeft, top, bodyWidth, cardHeight, "FD")

	// Accent bar coloured by result severity.
	ar, ag, ab := sev.RGB()
	doc.SetFillColor(ar, ag, ab)
	doc.Rect(marginLeft, top, 2, cardHeight, "F")

	doc.SetXY(marginLeft+5, top+2.5)
	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(17, 17, 17)
	doc.CellFormat(24, 6, fmt.Sprintf("#%d", b.Number), "", 0, "L", false, 0, "")
	r.badge(doc, label, sev)
	doc.Ln(7.5)

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(68, 68, 68)
	doc.SetX(marginLeft + 5)
	doc.CellFormat(58, 5, "Duration: "+format.Duration(b.DurationMs), "", 0, "L", false, 0, "")
	doc.CellFormat(62, 5, "Started: "+format.Timestamp(b.StartTimeMs), "", 0, "L", false, 0, "")
	if !b.Building {
		doc.CellFormat(58, 5, "Finished: "+format.Timestamp(b.EndTimeMs), "", 0, "L", false, 0, "")
	}
	doc.Ln(5)

	doc.SetY(top + cardHeight + 3)
}

// --- shared drawing helpers ---

func (r Renderer) sectionHeader(doc *fpdf.Fpdf, title string) {
	doc.SetX(marginLeft)
	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(17, 17, 17)
	doc.CellFormat(bodyWidth, 9, title, "", 1, "L", false, 0, "")
	doc.SetDrawColor(17, 17, 17)
	doc.Line(marginLeft, doc.GetY(), marginLeft+bodyWidth, doc.GetY())
	doc.Ln(4)
}

func (r Renderer) placeholder(doc *fpdf.Fpdf, text string) {
	doc.SetX(marginLeft)
	doc.SetFont("Helvetica", "I", 10)
	doc.SetTextColor(108, 117, 125)
	doc.CellFormat(bodyWidth, 6, text, "", 1, "L", false, 0, "")
	doc.Ln(4)
}

func (r Renderer) badge(doc *fpdf.Fpdf, label string, sev format.Severity) {
	br, bg, bb := sev.RGB()
	doc.SetFillColor(br, bg, bb)
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 8.5)
	w := doc.GetStringWidth(label) + 6
	doc.CellFormat(w, 6, label, "", 0, "C", true, 0, "")
	doc.SetTextColor(17, 17, 17)
}

func (r Renderer) ensureSpace(doc *fpdf.Fpdf, needed float64) {
	if doc.GetY()+needed > bottomLimit {
		doc.AddPage()
	}
}

func shortenRepoURL(repoURL string) string {
	if repoURL == "" {
		return "-"
	}
	trimmed := strings.TrimSuffix(stripScheme(repoURL), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) <= 2 {
		return trimmed
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func shortRevision(rev string) string {
	if rev == "" {
		return "-"
	}
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func stripScheme(s string) string {
	s = strings.TrimPrefix(s, "https://")
	return strings.TrimPrefix(s, "http://")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
