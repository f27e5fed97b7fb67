package behavioral

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/teachtree/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ErrUnknownFormat is returned for export formats that have no exporter
var ErrUnknownFormat = errors.New("unsupported export format")

// PatternReport is the exportable result of mining one transcript
type PatternReport struct {
	Source   string                 `json:"source"`   // Transcript name
	Events   int                    `json:"events"`   // Raw event count
	Runs     int                    `json:"runs"`     // Merged run count
	Patterns []models.PatternRecord `json:"patterns"` // Rows in display order
}

// Validate checks the report for internally inconsistent rows
func (r *PatternReport) Validate() error {
	if r.Events < 0 || r.Runs < 0 {
		return errors.New("event and run counts cannot be negative")
	}
	for i, p := range r.Patterns {
		if p.Length != len(p.Pattern) {
			return fmt.Errorf("pattern %d: length %d does not match %d abbreviations", i, p.Length, len(p.Pattern))
		}
		if p.Count <= 0 {
			return fmt.Errorf("pattern %d: count must be positive", i)
		}
	}
	return nil
}

// Exporter defines the interface for exporting a pattern report
type Exporter interface {
	Export(report *PatternReport) (string, error)
}

// JSONExporter exports reports in JSON format
type JSONExporter struct {
	Pretty bool // Enable pretty printing with indentation
}

// Export converts the report to a JSON string
func (je *JSONExporter) Export(report *PatternReport) (string, error) {
	if err := checkReport(report); err != nil {
		return "", err
	}

	var data []byte
	var err error
	if je.Pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return string(data), nil
}

// MarkdownExporter exports reports as a Markdown document
type MarkdownExporter struct {
	IncludeTimestamp bool // Include export timestamp in header
}

// Export converts the report to Markdown
func (me *MarkdownExporter) Export(report *PatternReport) (string, error) {
	if err := checkReport(report); err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("# Behaviour Pattern Report\n\n")
	if report.Source != "" {
		sb.WriteString(fmt.Sprintf("**Source**: %s\n\n", report.Source))
	}
	if me.IncludeTimestamp {
		sb.WriteString(fmt.Sprintf("**Generated**: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Events**: %d\n", report.Events))
	sb.WriteString(fmt.Sprintf("- **Runs**: %d\n", report.Runs))
	sb.WriteString(fmt.Sprintf("- **Patterns**: %d\n", len(report.Patterns)))
	sb.WriteString("\n")

	sb.WriteString("## Patterns\n\n")
	if len(report.Patterns) == 0 {
		sb.WriteString("_No patterns met the frequency threshold._\n")
		return sb.String(), nil
	}

	sb.WriteString("| Length | Count | Avg Score | Pattern |\n")
	sb.WriteString("|--------|-------|-----------|---------|\n")
	for _, p := range report.Patterns {
		sb.WriteString(fmt.Sprintf("| %d | %d | %s | %s |\n", p.Length, p.Count, formatScore(p), p.Key()))
	}

	return sb.String(), nil
}

// CSVExporter exports reports as CSV, one pattern per row
type CSVExporter struct{}

// Export converts the report to CSV
func (ce *CSVExporter) Export(report *PatternReport) (string, error) {
	if err := checkReport(report); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("length,count,avg_score,pattern\n")
	for _, p := range report.Patterns {
		score := ""
		if p.HasScore() {
			score = fmt.Sprintf("%.4f", p.Score())
		}
		sb.WriteString(fmt.Sprintf("%d,%d,%s,%s\n", p.Length, p.Count, score, escapeCSV(p.Key())))
	}

	return sb.String(), nil
}

// HTMLExporter renders the Markdown report to an HTML fragment
type HTMLExporter struct {
	IncludeTimestamp bool
}

// Export converts the report to HTML via its Markdown form
func (he *HTMLExporter) Export(report *PatternReport) (string, error) {
	md, err := (&MarkdownExporter{IncludeTimestamp: he.IncludeTimestamp}).Export(report)
	if err != nil {
		return "", err
	}

	renderer := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	return buf.String(), nil
}

func checkReport(report *PatternReport) error {
	if report == nil {
		return errors.New("report cannot be nil")
	}
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}
	return nil
}

func formatScore(p models.PatternRecord) string {
	if !p.HasScore() {
		return "-"
	}
	return fmt.Sprintf("%.2f", p.Score())
}

// escapeCSV escapes special characters in CSV fields
func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		s = strings.ReplaceAll(s, "\"", "\"\"")
		return "\"" + s + "\""
	}
	return s
}

// NewExporter returns the exporter for format: json, markdown (or md), csv, html
func NewExporter(format string) (Exporter, error) {
	switch normalizeFormat(format) {
	case "json":
		return &JSONExporter{Pretty: true}, nil
	case "markdown":
		return &MarkdownExporter{IncludeTimestamp: true}, nil
	case "csv":
		return &CSVExporter{}, nil
	case "html":
		return &HTMLExporter{IncludeTimestamp: true}, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: json, markdown, csv, html)", ErrUnknownFormat, format)
	}
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "md" {
		return "markdown"
	}
	return format
}

// ExportToString exports the report in the specified format
func ExportToString(report *PatternReport, format string) (string, error) {
	exporter, err := NewExporter(format)
	if err != nil {
		return "", err
	}
	return exporter.Export(report)
}

// ExportToFile exports the report to path, writing through a temporary file
// so readers never see a partial export.
func ExportToFile(report *PatternReport, path string, format string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	content, err := ExportToString(report, format)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	return WriteFileAtomic(path, []byte(content))
}

// WriteFileAtomic writes data to a sibling temp file and renames it into place
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	return nil
}
