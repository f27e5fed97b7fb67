// Package logger provides console logging for teachtree.
//
// The ConsoleLogger prints timestamped, level-filtered lines plus two
// structured records: the pipeline summary written after every
// preprocess → mine → build pass, and one line per visibility change.
// Implementations are thread-safe.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/teachtree/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs pipeline progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	now         func() time.Time
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
		now:         time.Now,
	}
}

// SetColorOutput forces color on or off regardless of the writer
func (cl *ConsoleLogger) SetColorOutput(enabled bool) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.colorOutput = enabled
}

// Level returns the active log level
func (cl *ConsoleLogger) Level() string {
	return cl.logLevel
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// Honours NO_COLOR and non-TTY stdout
		return !color.NoColor
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel logs a message at the specified level if filtering allows it.
// Format: "[HH:MM:SS] [LEVEL] <message>"
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := cl.timestamp()
	if cl.colorOutput {
		level = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

// LogPipelineSummary logs the result of a preprocess → mine → build pass at INFO level.
// Format:
//
//	[HH:MM:SS] === Pipeline Summary (<source>) ===
//	[HH:MM:SS] events: N, runs: N, patterns: N, leaves: N, nodes: N
//	[HH:MM:SS] Visible: [====      ] v/n (p%)
//	[HH:MM:SS] Duration: <d>
func (cl *ConsoleLogger) LogPipelineSummary(summary models.PipelineSummary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := cl.timestamp()
	header := "=== Pipeline Summary ==="
	if summary.Source != "" {
		header = fmt.Sprintf("=== Pipeline Summary (%s) ===", summary.Source)
	}
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, header)
	fmt.Fprintf(&b, "[%s] %s\n", ts, formatSummaryMetrics(summary, cl.colorOutput))

	bar := NewProgressBar(summary.Nodes, 10, cl.colorOutput)
	bar.Update(summary.Visible)
	fmt.Fprintf(&b, "[%s] Visible: %s\n", ts, bar.Render())
	if !summary.Scored {
		fmt.Fprintf(&b, "[%s] Scoring: disabled\n", ts)
	}
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(summary.Duration))

	io.WriteString(cl.writer, b.String())
}

// LogVisibility logs one visibility change at DEBUG level.
// Format: "[HH:MM:SS] <action> <node>: <visible>/<total> visible"
func (cl *ConsoleLogger) LogVisibility(action, nodeID string, visible, total int) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	if cl.colorOutput {
		switch action {
		case "expanded":
			action = color.New(color.FgGreen).Sprint(action)
		case "collapsed":
			action = color.New(color.FgYellow).Sprint(action)
		}
		nodeID = color.New(color.FgCyan).Sprint(nodeID)
	}
	fmt.Fprintf(cl.writer, "[%s] %s %s: %d/%d visible\n", cl.timestamp(), action, nodeID, visible, total)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func (cl *ConsoleLogger) timestamp() string {
	return cl.now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "250ms", "5s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogPipelineSummary(models.PipelineSummary) {}
func (n *NoOpLogger) LogVisibility(string, string, int, int) {}
