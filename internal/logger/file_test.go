package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/teachtree/internal/models"
)

func readRunLog(t *testing.T, fl *FileLogger) string {
	t.Helper()
	data, err := os.ReadFile(fl.RunFile())
	require.NoError(t, err)
	return string(data)
}

func TestFileLoggerCreatesRunLog(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	fl, err := NewFileLoggerWithDir(logDir)
	require.NoError(t, err)
	defer fl.Close()

	assert.DirExists(t, logDir)
	name := filepath.Base(fl.RunFile())
	assert.True(t, strings.HasPrefix(name, "run-"), "got %s", name)
	assert.True(t, strings.HasSuffix(name, ".log"), "got %s", name)

	content := readRunLog(t, fl)
	assert.Contains(t, content, "=== Teachtree Run Log ===")
	assert.Contains(t, content, "Started at: ")
}

func TestFileLoggerLatestSymlink(t *testing.T) {
	logDir := t.TempDir()

	first, err := NewFileLoggerWithDir(logDir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewFileLoggerWithDir(logDir)
	require.NoError(t, err)
	defer second.Close()

	target, err := os.Readlink(filepath.Join(logDir, LatestLogName))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(second.RunFile()), target)
}

func TestFileLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		contains []string
		excludes []string
	}{
		{
			name:     "info drops debug",
			level:    "info",
			contains: []string{"[INFO] loaded", "[WARN] skipped line 3", "[ERROR] broken"},
			excludes: []string{"[DEBUG] mined", "[TRACE] detail", "expanded root-TQ-0"},
		},
		{
			name:     "debug keeps visibility",
			level:    "debug",
			contains: []string{"[DEBUG] mined", "expanded root-TQ-0: 3/6 visible"},
			excludes: []string{"[TRACE] detail"},
		},
		{
			name:     "error only",
			level:    "error",
			contains: []string{"[ERROR] broken"},
			excludes: []string{"[INFO] loaded", "[WARN] skipped line 3"},
		},
		{
			name:     "invalid level falls back to info",
			level:    "loud",
			contains: []string{"[INFO] loaded"},
			excludes: []string{"[DEBUG] mined"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl, err := NewFileLoggerWithDirAndLevel(t.TempDir(), tt.level)
			require.NoError(t, err)
			defer fl.Close()

			fl.LogTrace("detail")
			fl.LogDebug("mined")
			fl.LogInfo("loaded")
			fl.LogWarn("skipped line 3")
			fl.LogError("broken")
			fl.LogVisibility("expanded", "root-TQ-0", 3, 6)

			content := readRunLog(t, fl)
			for _, want := range tt.contains {
				assert.Contains(t, content, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, content, unwanted)
			}
		})
	}
}

func TestFileLoggerPipelineSummary(t *testing.T) {
	fl, err := NewFileLoggerWithDir(t.TempDir())
	require.NoError(t, err)
	defer fl.Close()

	fl.LogPipelineSummary(models.PipelineSummary{
		Source:   "lesson01",
		Events:   10,
		Runs:     10,
		Patterns: 3,
		Leaves:   2,
		Nodes:    6,
		Visible:  6,
		Skipped:  1,
		Duration: 250 * time.Millisecond,
	})

	content := readRunLog(t, fl)
	assert.Contains(t, content, "=== Pipeline Summary (lesson01) ===")
	assert.Contains(t, content, "events: 10, runs: 10, patterns: 3, leaves: 2, nodes: 6, skipped: 1")
	assert.Contains(t, content, "Visible: [==========] 6/6 (100%)")
	assert.Contains(t, content, "Scoring: disabled")
	assert.Contains(t, content, "Duration: 250ms")
	assert.NotContains(t, content, "\x1b[", "run logs carry no colour codes")
}

func TestFileLoggerClose(t *testing.T) {
	fl, err := NewFileLoggerWithDir(t.TempDir())
	require.NoError(t, err)

	fl.LogInfo("before close")
	require.NoError(t, fl.Close())
	require.NoError(t, fl.Close(), "closing twice is harmless")

	assert.NotPanics(t, func() { fl.LogInfo("after close") })

	content := readRunLog(t, fl)
	assert.Contains(t, content, "before close")
	assert.NotContains(t, content, "after close")
}

func TestFileLoggerConcurrentWrites(t *testing.T) {
	fl, err := NewFileLoggerWithDir(t.TempDir())
	require.NoError(t, err)
	defer fl.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fl.LogInfo("rebuild")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, strings.Count(readRunLog(t, fl), "[INFO] rebuild\n"))
}
