// Package chart renders the report's chart pages as static PNG images.
// It stands in for the browser dashboard's live chart widgets: the document
// renderer only sees image bytes and has no dependency on how they were
// produced. An empty dataset yields no image, and the matching document
// page is simply omitted.
package chart

import (
	"bytes"
	"fmt"
	"sort"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/devsecops-monitor/monitor/internal/format"
	"github.com/devsecops-monitor/monitor/internal/model"
)

// Snapshotter produces static raster images for the report's chart pages.
// Implementations return (nil, nil) when there is nothing to draw.
type Snapshotter interface {
	BuildStatus(builds []model.Build) ([]byte, error)
	ApplicationHealth(apps []model.Application) ([]byte, error)
}

// Renderer is the go-chart backed Snapshotter.
type Renderer struct{}

// resultOrder fixes the bar order so the image is stable across runs.
var resultOrder = []string{"Success", "Failed", "Unstable", "Aborted", "Not Built", "Running"}

// BuildStatus renders a bar chart of build counts per classified result.
func (Renderer) BuildStatus(builds []model.Build) ([]byte, error) {
	if len(builds) == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	severities := make(map[string]format.Severity)
	for _, b := range builds {
		label, sev := format.ClassifyBuildResult(b.Result, b.Building)
		counts[label]++
		severities[label] = sev
	}

	var bars []gochart.Value
	addBar := func(label string) {
		n, ok := counts[label]
		if !ok {
			return
		}
		delete(counts, label)
		bars = append(bars, gochart.Value{
			Label: fmt.Sprintf("%s (%d)", label, n),
			Value: float64(n),
			Style: gochart.Style{FillColor: severityColor(severities[label])},
		})
	}
	for _, label := range resultOrder {
		addBar(label)
	}
	extras := make([]string, 0, len(counts))
	for label := range counts {
		extras = append(extras, label)
	}
	sort.Strings(extras)
	for _, label := range extras {
		addBar(label)
	}

	graph := gochart.BarChart{
		Title:    "Build Status",
		Width:    640,
		Height:   400,
		BarWidth: 60,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render build status chart: %w", err)
	}
	return buf.Bytes(), nil
}

// ApplicationHealth renders a donut chart of application counts per health
// status.
func (Renderer) ApplicationHealth(apps []model.Application) ([]byte, error) {
	if len(apps) == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	var order []string
	for _, app := range apps {
		status := app.HealthStatus
		if status == "" {
			status = "Unknown"
		}
		if _, seen := counts[status]; !seen {
			order = append(order, status)
		}
		counts[status]++
	}

	values := make([]gochart.Value, 0, len(order))
	for _, status := range order {
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%d)", status, counts[status]),
			Value: float64(counts[status]),
			Style: gochart.Style{FillColor: severityColor(format.Classify(status, false))},
		})
	}

	graph := gochart.DonutChart{
		Title:  "Application Health",
		Width:  480,
		Height: 400,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render application health chart: %w", err)
	}
	return buf.Bytes(), nil
}

func severityColor(sev format.Severity) drawing.Color {
	r, g, b := sev.RGB()
	return drawing.Color{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}
