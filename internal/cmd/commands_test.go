package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternsCommand(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "root-to-leaf chains",
			args:     []string{"--no-score"},
			contains: []string{"lesson01: 2 chains", "Length  Count  Score  Pattern", "3       2      -      TQ → SS → TF", "2       2      -      SS → TF"},
			excludes: []string{"TQ → SS\n"},
		},
		{
			name:     "all chains",
			args:     []string{"--no-score", "--all"},
			contains: []string{"lesson01: 3 chains", "2       3      -      TQ → SS"},
		},
		{
			name:     "search",
			args:     []string{"--no-score", "--all", "--search", "TF"},
			contains: []string{"lesson01: 2 chains"},
			excludes: []string{"2       3      -      TQ → SS"},
		},
		{
			name:     "length window",
			args:     []string{"--no-score", "--all", "--min-length", "3"},
			contains: []string{"lesson01: 1 chains", "TQ → SS → TF"},
		},
		{
			name:     "higher threshold",
			args:     []string{"--no-score", "--min-count", "3"},
			contains: []string{"lesson01: 1 chains", "2       3      -      TQ → SS"},
		},
		{
			name:     "nothing mined",
			args:     []string{"--min-count", "9"},
			contains: []string{"lesson01: 0 chains", "No patterns found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := f.run(t, append([]string{"patterns", f.transcript}, tt.args...)...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, stdout, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, stdout, unwanted)
			}
		})
	}
}

func TestPatternsCommandScored(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "patterns", f.transcript)
	require.NoError(t, err)

	for _, line := range strings.Split(stdout, "\n") {
		if strings.HasSuffix(line, "TQ → SS → TF") {
			assert.NotContains(t, line, " - ", "scored chains show a number")
		}
	}
}

func TestPatternsCommandInvalidFilter(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.run(t, "patterns", f.transcript, "--sort", "colour")
	assert.ErrorContains(t, err, "invalid filter")
}

func TestTreeCommand(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "tree", f.transcript, "--no-score")
	require.NoError(t, err)

	assert.Contains(t, stdout, "ROOT (3 patterns)\n")
	assert.Contains(t, stdout, "TQ 教师提问 ×5 [root-TQ-0]\n")
	assert.Contains(t, stdout, "SS 学生发言 ×5 [root-TQ-0-SS-1]\n")
	assert.Contains(t, stdout, "TF 教师反馈 ×2 [root-TQ-0-SS-1-TF-2]\n")
	assert.Contains(t, stdout, "SS 学生发言 ×2 [root-SS-0]\n")
	assert.NotContains(t, stdout, "] +", "both roots start fully expanded")
}

func TestTreeCommandStatePersists(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "tree", f.transcript, "--no-score", "--toggle", "root-TQ-0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[root-TQ-0] +")
	assert.NotContains(t, stdout, "root-TQ-0-SS-1")

	stdout, _, err = f.run(t, "tree", f.transcript, "--no-score")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[root-TQ-0] +", "collapse survives between runs")

	stdout, _, err = f.run(t, "tree", f.transcript, "--no-score", "--toggle", "root-TQ-0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[root-TQ-0-SS-1] +", "expanding reveals one level")
	assert.NotContains(t, stdout, "root-TQ-0-SS-1-TF-2")

	stdout, _, err = f.run(t, "tree", f.transcript, "--no-score", "--reset")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "] +")
	assert.Contains(t, stdout, "root-TQ-0-SS-1-TF-2")
}

func TestTreeCommandSelect(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.run(t, "tree", f.transcript, "--no-score", "--toggle", "root-SS-0")
	require.NoError(t, err)

	stdout, _, err := f.run(t, "tree", f.transcript, "--no-score", "--select", "SS->TF")
	require.NoError(t, err)
	assert.Contains(t, stdout, "* SS 学生发言 ×2 [root-SS-0]")
	assert.Contains(t, stdout, "* TF 教师反馈 ×2 [root-SS-0-TF-1]")

	stdout, _, err = f.run(t, "tree", f.transcript, "--no-score", "--clear-selection")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "* ")
	assert.Contains(t, stdout, "[root-SS-0-TF-1]", "clearing keeps the revealed nodes")
}

func TestTreeCommandUnknownToggle(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := f.run(t, "tree", f.transcript, "--toggle", "root-XX-0")
	require.NoError(t, err)
	assert.Contains(t, stderr, `unknown node "root-XX-0"`)
	assert.Contains(t, stdout, "[root-TQ-0]")
}

func TestTreeCommandJSON(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "tree", f.transcript, "--no-score", "--json")
	require.NoError(t, err)

	var view struct {
		ID       string `json:"id"`
		Count    int    `json:"count"`
		Children []struct {
			ID    string `json:"id"`
			Count int    `json:"count"`
			Leaf  bool   `json:"leaf"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, "root", view.ID)
	assert.Equal(t, 3, view.Count)
	require.Len(t, view.Children, 2)

	counts := map[string]int{}
	for _, c := range view.Children {
		counts[c.ID] = c.Count
		assert.False(t, c.Leaf)
	}
	assert.Equal(t, map[string]int{"root-TQ-0": 5, "root-SS-0": 2}, counts)
}

func TestTreeCommandNoState(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.run(t, "tree", f.transcript, "--no-state", "--toggle", "root-TQ-0")
	require.NoError(t, err)

	_, err = os.Stat(f.stateDir)
	assert.True(t, os.IsNotExist(err) || isEmptyDir(t, f.stateDir), "nothing saved by --no-state")

	stdout, _, err := f.run(t, "tree", f.transcript)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "] +")
}

func isEmptyDir(t *testing.T, dir string) bool {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries) == 0
}

func TestStateCommands(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "state", "show", f.transcript)
	require.NoError(t, err)
	assert.Equal(t, "No saved state for lesson01\n", stdout)

	_, _, err = f.run(t, "tree", f.transcript, "--toggle", "root-TQ-0", "--select", "SS → TF")
	require.NoError(t, err)

	stdout, _, err = f.run(t, "state", "show", f.transcript)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Snapshot: ")
	assert.Contains(t, stdout, "Visible nodes: 3\n  root-SS-0\n  root-SS-0-TF-1\n  root-TQ-0\n")
	assert.Contains(t, stdout, "Highlight: SS → TF\n")

	stdout, _, err = f.run(t, "state", "clear", f.transcript)
	require.NoError(t, err)
	assert.Equal(t, "Cleared saved state for lesson01\n", stdout)

	stdout, _, err = f.run(t, "state", "show", f.transcript)
	require.NoError(t, err)
	assert.Equal(t, "No saved state for lesson01\n", stdout)
}

func TestStateCommandsDisabled(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.config, "log_level: warn\nstate:\n  backend: none\n")

	for _, sub := range []string{"show", "clear"} {
		stdout, _, err := f.run(t, "state", sub, f.transcript)
		require.NoError(t, err)
		assert.Equal(t, "State persistence is disabled (state.backend: none)\n", stdout)
	}
}

func TestStateCommandsSQLite(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.config, "log_level: warn\nstate:\n  backend: sqlite\n  path: "+f.stateDir+"\n")

	_, _, err := f.run(t, "tree", f.transcript, "--toggle", "root-SS-0")
	require.NoError(t, err)

	stdout, _, err := f.run(t, "state", "show", f.transcript)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Visible nodes: 4\n")
	assert.FileExists(t, filepath.Join(f.stateDir, "state.db"))
}

func TestDetailsCommand(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "first occurrence",
			args: []string{"TQ → SS → TF"},
			want: "━━━ TQ → SS → TF ━━━\n" +
				"[00:00-00:05] TQ 教师提问: 什么是分数？\n" +
				"[00:05-00:15] SS 学生发言: 一半\n" +
				"[00:15-00:18] TF 教师反馈: 很好\n",
		},
		{
			name: "ascii separator without timestamps",
			args: []string{"TL->CS", "--no-timestamps"},
			want: "━━━ TL → CS ━━━\n" +
				"TL 教师讲授: 今天学习分数\n" +
				"CS 课堂沉寂: silent\n",
		},
		{
			name: "truncated",
			args: []string{"TL->CS", "--truncate", "7"},
			want: "━━━ TL → CS ━━━\n" +
				"[00:43-01:40] TL 教师讲授: 今天...\n" +
				"[01:40-01:50] CS 课堂沉寂: silent\n",
		},
		{
			name: "no occurrence",
			args: []string{"SD → CS"},
			want: "No occurrence of SD → CS in transcript\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := f.run(t, append([]string{"details", f.transcript}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestDetailsCommandErrors(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.run(t, "details", f.transcript, " → ")
	assert.ErrorContains(t, err, "has no behaviour codes")

	_, _, err = f.run(t, "details", f.transcript, "TQ", "--truncate=-1")
	assert.ErrorContains(t, err, "cannot be negative")

	_, _, err = f.run(t, "details", f.transcript)
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	f := newFixture(t)

	t.Run("csv to stdout", func(t *testing.T) {
		stdout, _, err := f.run(t, "export", f.transcript, "--no-score", "-f", "csv")
		require.NoError(t, err)
		assert.Equal(t, "length,count,avg_score,pattern\n3,2,,TQ → SS → TF\n2,2,,SS → TF\n", stdout)
	})

	t.Run("all chains as json", func(t *testing.T) {
		stdout, _, err := f.run(t, "export", f.transcript, "--all", "--format", "JSON")
		require.NoError(t, err)

		var report struct {
			Source   string `json:"source"`
			Events   int    `json:"events"`
			Runs     int    `json:"runs"`
			Patterns []struct {
				Pattern  []string `json:"pattern"`
				Count    int      `json:"count"`
				AvgScore *float64 `json:"avg_score"`
			} `json:"patterns"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &report))
		assert.Equal(t, "lesson01", report.Source)
		assert.Equal(t, 10, report.Events)
		assert.Equal(t, 10, report.Runs)
		require.Len(t, report.Patterns, 3)
		assert.Equal(t, []string{"TQ", "SS"}, report.Patterns[1].Pattern)
		for _, p := range report.Patterns {
			require.NotNil(t, p.AvgScore)
			assert.GreaterOrEqual(t, *p.AvgScore, 0.3)
		}
	})

	t.Run("markdown to file", func(t *testing.T) {
		out := filepath.Join(f.dir, "report.md")
		stdout, stderr, err := f.run(t, "export", f.transcript, "-f", "md", "-o", out, "--log-level", "info")
		require.NoError(t, err)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "exported md to "+out)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# Behaviour Pattern Report")
		assert.Contains(t, string(data), "TQ → SS → TF")
	})

	t.Run("html", func(t *testing.T) {
		stdout, _, err := f.run(t, "export", f.transcript, "-f", "html")
		require.NoError(t, err)
		assert.Contains(t, stdout, "<table>")
	})

	t.Run("tree json follows saved state", func(t *testing.T) {
		_, _, err := f.run(t, "tree", f.transcript, "--toggle", "root-TQ-0")
		require.NoError(t, err)

		stdout, _, err := f.run(t, "export", f.transcript, "-f", "tree-json")
		require.NoError(t, err)
		assert.Contains(t, stdout, `"id": "root-TQ-0"`)
		assert.NotContains(t, stdout, `"id": "root-TQ-0-SS-1"`)
		assert.Contains(t, stdout, `"collapsible": true`)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := f.run(t, "export", f.transcript, "-f", "xml")
		assert.ErrorContains(t, err, "unsupported export format")
	})
}

func TestStatsCommand(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "stats", f.transcript)
	require.NoError(t, err)

	assert.Contains(t, stdout, "=== Behaviour Statistics: lesson01 ===\n\n")
	assert.Contains(t, stdout, "Events: 10\nRuns: 10\nCoded time: 2:10\n")
	assert.Contains(t, stdout, "Teacher share: 61.5%\n")
	assert.Contains(t, stdout, "Student share: 30.8%\n")
	assert.Contains(t, stdout, "Code  Events  Runs  Time      Share   Label\n")
	assert.Contains(t, stdout, "TL    1       1     0:57       43.8%  教师讲授\n")
	assert.Contains(t, stdout, "SS    3       3     0:40       30.8%  学生发言\n")

	tl := strings.Index(stdout, "TL    ")
	tf := strings.Index(stdout, "TF    ")
	require.True(t, tl > 0 && tf > 0)
	assert.Less(t, tl, tf, "categories are ordered by duration")
}

func TestStatsCommandJSON(t *testing.T) {
	f := newFixture(t)

	stdout, _, err := f.run(t, "stats", f.transcript, "--json", "--top", "2")
	require.NoError(t, err)

	var stats struct {
		TotalEvents   int `json:"total_events"`
		TotalDuration int `json:"total_duration"`
		Categories    []struct {
			Abbr     string `json:"abbr"`
			Duration int    `json:"duration"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 10, stats.TotalEvents)
	assert.Equal(t, 130, stats.TotalDuration)
	require.Len(t, stats.Categories, 2)
	assert.Equal(t, "TL", stats.Categories[0].Abbr)
	assert.Equal(t, 57, stats.Categories[0].Duration)
	assert.Equal(t, "SS", stats.Categories[1].Abbr)
}
