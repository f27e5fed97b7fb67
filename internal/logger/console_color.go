package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/teachtree/internal/models"
)

// colorScheme defines consistent colors for different metric types.
// Green: counts the pipeline produced
// Red: dropped input
// Yellow: empty results
// Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
}

func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
	}
}

// formatMetric formats "label: value", coloring both when enabled
func formatMetric(label string, value int, valueColor *color.Color, scheme *colorScheme, enabled bool) string {
	if !enabled {
		return fmt.Sprintf("%s: %d", label, value)
	}
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), valueColor.Sprintf("%d", value))
}

// formatSummaryMetrics renders the count line of a pipeline summary.
// Format: "events: N, runs: N, patterns: N, leaves: N, nodes: N[, skipped: N]"
// A zero pattern count is shown in yellow, skipped lines in red.
func formatSummaryMetrics(s models.PipelineSummary, enabled bool) string {
	scheme := newColorScheme()

	patternColor := scheme.success
	if s.Patterns == 0 {
		patternColor = scheme.warn
	}

	parts := []string{
		formatMetric("events", s.Events, scheme.success, scheme, enabled),
		formatMetric("runs", s.Runs, scheme.success, scheme, enabled),
		formatMetric("patterns", s.Patterns, patternColor, scheme, enabled),
		formatMetric("leaves", s.Leaves, scheme.success, scheme, enabled),
		formatMetric("nodes", s.Nodes, scheme.success, scheme, enabled),
	}
	if s.Skipped > 0 {
		parts = append(parts, formatMetric("skipped", s.Skipped, scheme.fail, scheme, enabled))
	}
	return strings.Join(parts, ", ")
}
