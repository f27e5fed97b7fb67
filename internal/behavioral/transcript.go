package behavioral

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/harrison/teachtree/internal/models"
)

// TranscriptOptions configures detail formatting behavior
type TranscriptOptions struct {
	ColorOutput    bool // Enable ANSI color codes
	TruncateLength int  // Max dialogue width in terminal columns (0 = no truncation)
	ShowTimestamps bool // Prefix each run with its mm:ss span
}

// DefaultTranscriptOptions returns sensible defaults
func DefaultTranscriptOptions() TranscriptOptions {
	return TranscriptOptions{
		ColorOutput:    true,
		TruncateLength: 0,
		ShowTimestamps: true,
	}
}

// FormatDetails formats the matched runs of a pattern as a readable excerpt
func FormatDetails(pattern string, details []models.DetailRecord, opts TranscriptOptions) string {
	if len(details) == 0 {
		return fmt.Sprintf("No occurrence of %s in transcript", pattern)
	}

	var sb strings.Builder

	header := fmt.Sprintf("━━━ %s ━━━", pattern)
	if opts.ColorOutput {
		header = color.YellowString(header)
	}
	sb.WriteString(header + "\n")

	for _, d := range details {
		sb.WriteString(FormatDetailEntry(d, opts))
	}
	return sb.String()
}

// FormatDetailEntry formats a single detail record as one transcript line
func FormatDetailEntry(d models.DetailRecord, opts TranscriptOptions) string {
	span := ""
	if opts.ShowTimestamps {
		span = fmt.Sprintf("[%s-%s] ", formatClock(d.StartTime), formatClock(d.EndTime))
	}

	text := d.Text
	if opts.TruncateLength > 0 {
		text = runewidth.Truncate(text, opts.TruncateLength, "...")
	}

	tag := fmt.Sprintf("%s %s", d.Abbr, d.Label)
	if !opts.ColorOutput {
		return fmt.Sprintf("%s%s: %s\n", span, tag, text)
	}

	body := color.WhiteString(text)
	if text == TextSilent || text == TextInaudible {
		body = color.HiBlackString(text)
	}
	return fmt.Sprintf("%s%s: %s\n", color.HiBlackString(span), abbrColor(d.Abbr).Sprint(tag), body)
}

// formatClock renders seconds as mm:ss
func formatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// abbrColor groups teacher behaviours as warm, student behaviours as cool
func abbrColor(abbr string) *color.Color {
	switch abbr {
	case AbbrTeacherQuestion, AbbrTeacherLecture:
		return color.New(color.FgYellow)
	case AbbrTeacherFeedback, AbbrTeacherInstruction:
		return color.New(color.FgCyan)
	case AbbrStudentSpeech, AbbrStudentDiscussion:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgWhite, color.Faint)
	}
}
