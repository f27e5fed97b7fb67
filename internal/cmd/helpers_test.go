package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// lessonLines is a ten-event lesson: two question/answer/feedback rounds,
// a lecture, a silence and a final question/answer
var lessonLines = []string{
	`{"id":"e01_0_5","label":"教师提问","text":"老师：什么是分数？"}`,
	`{"id":"e02_5_15","label":"学生发言","text":"学生：一半"}`,
	`{"id":"e03_15_18","label":"教师反馈","text":"老师：很好"}`,
	`{"id":"e04_18_25","label":"教师提问","text":"老师：三分之一呢？"}`,
	`{"id":"e05_25_40","label":"学生发言","text":"学生：三份里的一份"}`,
	`{"id":"e06_40_43","label":"教师反馈","text":"老师：对"}`,
	`{"id":"e07_43_100","label":"教师讲授","text":"老师：今天学习分数"}`,
	`{"id":"e08_100_110","label":"课堂沉寂","text":"silent"}`,
	`{"id":"e09_110_115","label":"教师提问","text":"老师：谁来总结？"}`,
	`{"id":"e10_115_130","label":"学生发言","text":"学生：分数表示部分"}`,
}

type fixture struct {
	dir        string
	config     string
	transcript string
	stateDir   string
}

// newFixture writes lesson01.jsonl and a config whose file state store
// lives in the test's temp directory
func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	f := &fixture{
		dir:        dir,
		config:     filepath.Join(dir, "config.yaml"),
		transcript: filepath.Join(dir, "lesson01.jsonl"),
		stateDir:   filepath.Join(dir, "state"),
	}

	writeFile(t, f.transcript, strings.Join(lessonLines, "\n")+"\n")
	writeFile(t, f.config, fmt.Sprintf("log_level: warn\nstate:\n  backend: file\n  path: %s\n", f.stateDir))
	return f
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// run executes the root command with args and returns stdout and stderr
func (f *fixture) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--config", f.config))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// lockedBuffer is a bytes.Buffer safe for one writer and concurrent readers
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
