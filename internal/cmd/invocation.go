package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/teachtree/internal/behavioral"
	"github.com/harrison/teachtree/internal/config"
	"github.com/harrison/teachtree/internal/logger"
	"github.com/harrison/teachtree/internal/models"
	"github.com/harrison/teachtree/internal/session"
	"github.com/harrison/teachtree/internal/store"
	"github.com/harrison/teachtree/internal/visibility"
)

// invocation bundles the resolved configuration and I/O of one command run
type invocation struct {
	cfg     *config.Config
	log     session.Logger
	fileLog *logger.FileLogger // nil unless log_dir is set
	out     io.Writer
	color   bool
}

// loadInvocation resolves config (--config, else $TEACHTREE_HOME/config.yaml,
// else .teachtree/config.yaml, then global flag overrides) and sets up the
// stderr logger. Output colour follows the stdout terminal.
func loadInvocation(cmd *cobra.Command) (*invocation, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else if os.Getenv(config.HomeEnv) != "" {
		var home string
		home, err = config.GetHome()
		if err != nil {
			return nil, err
		}
		cfg, err = config.LoadConfig(filepath.Join(home, "config.yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", home, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var logLevelPtr *string
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir, _ = cmd.Flags().GetString("log-dir")
	}
	var maxLengthPtr, minCountPtr, topRootsPtr *int
	if cmd.Flags().Changed("max-pattern-length") {
		v, _ := cmd.Flags().GetInt("max-pattern-length")
		maxLengthPtr = &v
	}
	if cmd.Flags().Changed("min-count") {
		v, _ := cmd.Flags().GetInt("min-count")
		minCountPtr = &v
	}
	if cmd.Flags().Changed("top-roots") {
		v, _ := cmd.Flags().GetInt("top-roots")
		topRootsPtr = &v
	}
	var scoringPtr *bool
	if noScore, _ := cmd.Flags().GetBool("no-score"); noScore {
		scoring := false
		scoringPtr = &scoring
	}

	cfg.MergeWithFlags(logLevelPtr, maxLengthPtr, minCountPtr, topRootsPtr, scoringPtr)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	out := cmd.OutOrStdout()

	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if noColor {
		consoleLog.SetColorOutput(false)
	}

	inv := &invocation{
		cfg:   cfg,
		log:   consoleLog,
		out:   out,
		color: !noColor && isTerminalWriter(out),
	}

	if logDir := cfg.ResolveLogDir(workingDir()); logDir != "" {
		fileLog, err := logger.NewFileLoggerWithDirAndLevel(logDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create file logger: %w", err)
		}
		fileLog.LogInfo(fmt.Sprintf("teachtree %s", strings.Join(os.Args[1:], " ")))
		inv.fileLog = fileLog
		inv.log = &multiLogger{loggers: []session.Logger{consoleLog, fileLog}}
	}

	return inv, nil
}

// close releases the run log, if any
func (r *invocation) close() {
	if r.fileLog != nil {
		r.fileLog.Close()
	}
}

// workingDir returns the current directory, or "." when it cannot be read
func workingDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// multiLogger implements session.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []session.Logger
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogPipelineSummary forwards to all loggers
func (ml *multiLogger) LogPipelineSummary(summary models.PipelineSummary) {
	for _, l := range ml.loggers {
		l.LogPipelineSummary(summary)
	}
}

// LogVisibility forwards to all loggers
func (ml *multiLogger) LogVisibility(action, nodeID string, visible, total int) {
	for _, l := range ml.loggers {
		l.LogVisibility(action, nodeID, visible, total)
	}
}

// isTerminalWriter reports whether w is a terminal that accepts colour
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return !color.NoColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// vocabulary returns the default vocabulary extended by config entries
func (r *invocation) vocabulary() *behavioral.Vocabulary {
	return behavioral.DefaultVocabulary().With(r.cfg.Vocabulary)
}

// sessionOptions maps the config onto session options
func (r *invocation) sessionOptions() session.Options {
	opts := session.DefaultOptions()
	opts.Mining = behavioral.MiningOptions{
		MaxPatternLength: r.cfg.Mining.MaxPatternLength,
		MinPatternCount:  r.cfg.Mining.MinPatternCount,
		Score:            r.cfg.Mining.Scoring,
	}
	opts.TopRootsExpanded = r.cfg.View.TopRootsExpanded
	opts.Vocabulary = r.vocabulary()
	opts.Logger = r.log
	return opts
}

// loadTranscript parses path, failing when no event survived
func (r *invocation) loadTranscript(path string) (*behavioral.Transcript, error) {
	tr, err := behavioral.ParseTranscriptFile(path)
	if err != nil {
		return nil, err
	}
	if len(tr.Events) == 0 && len(tr.Skipped) > 0 {
		return nil, fmt.Errorf("no valid events in %s (%d lines skipped)", path, len(tr.Skipped))
	}
	return tr, nil
}

// openSession parses the transcript at path and runs the pipeline over it
func (r *invocation) openSession(path string) (*session.Session, error) {
	tr, err := r.loadTranscript(path)
	if err != nil {
		return nil, err
	}
	return session.FromTranscript(tr, r.sessionOptions()), nil
}

// openStore opens the configured snapshot store; nil when persistence is off
func (r *invocation) openStore() (visibility.Store, error) {
	if r.cfg.State.Backend == store.BackendNone {
		return nil, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	s, err := store.Open(r.cfg.State.Backend, r.cfg.ResolveStatePath(cwd))
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return s, nil
}

// stateKey is the snapshot key of a transcript: its file name without extension
func stateKey(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
