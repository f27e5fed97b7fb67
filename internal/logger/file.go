package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/teachtree/internal/models"
)

// LatestLogName is the symlink that always points at the newest run log
const LatestLogName = "latest.log"

// FileLogger writes the same records as ConsoleLogger, without colour, to a
// timestamped run log (run-YYYYMMDD-HHMMSS.log) and keeps latest.log pointing
// at it. It is thread-safe and supports log level filtering.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLoggerWithDir creates a FileLogger in logDir at the default "info" level.
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates logDir if needed, opens a new run log
// and repoints the latest.log symlink. Runs started within the same second
// share one file.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	started := time.Now()
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", started.Format("20060102-150405")))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, LatestLogName)
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== Teachtree Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", started.Format(time.RFC3339)))

	return fl, nil
}

// RunFile returns the path of the current run log
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", logTimestamp(), level, message))
}

// LogPipelineSummary records a preprocess → mine → build pass at INFO level,
// in the console layout without colour.
func (fl *FileLogger) LogPipelineSummary(summary models.PipelineSummary) {
	if !fl.shouldLog("info") {
		return
	}

	ts := logTimestamp()
	header := "=== Pipeline Summary ==="
	if summary.Source != "" {
		header = fmt.Sprintf("=== Pipeline Summary (%s) ===", summary.Source)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, header)
	fmt.Fprintf(&b, "[%s] %s\n", ts, formatSummaryMetrics(summary, false))

	bar := NewProgressBar(summary.Nodes, 10, false)
	bar.Update(summary.Visible)
	fmt.Fprintf(&b, "[%s] Visible: %s\n", ts, bar.Render())
	if !summary.Scored {
		fmt.Fprintf(&b, "[%s] Scoring: disabled\n", ts)
	}
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(summary.Duration))

	fl.writeRunLog(b.String())
}

// LogVisibility records one visibility change at DEBUG level.
// Format: "[HH:MM:SS] <action> <node>: <visible>/<total> visible"
func (fl *FileLogger) LogVisibility(action, nodeID string, visible, total int) {
	if !fl.shouldLog("debug") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] %s %s: %d/%d visible\n", logTimestamp(), action, nodeID, visible, total))
}

// Close flushes and closes the run log file. Later writes are dropped.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog appends to the run log and flushes, so a watching tail sees
// each record as it happens.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}

func logTimestamp() string {
	return time.Now().Format("15:04:05")
}
