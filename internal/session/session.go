// Package session wires the behavioural pipeline to the visibility state.
//
// A Session owns one transcript's events and everything derived from them:
// merged runs, mined patterns, the aggregation tree and its visibility
// controller. Rebuild replaces all derived data at once; interactions
// (toggle, select) and rebuilds are serialised by one mutex.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/teachtree/internal/behavioral"
	"github.com/harrison/teachtree/internal/logger"
	"github.com/harrison/teachtree/internal/models"
	"github.com/harrison/teachtree/internal/tree"
	"github.com/harrison/teachtree/internal/visibility"
)

// Logger is the subset of logging the session needs
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogPipelineSummary(summary models.PipelineSummary)
	LogVisibility(action, nodeID string, visible, total int)
}

// Options configures a Session
type Options struct {
	Source           string                   // Transcript name, used in logs and reports
	Mining           behavioral.MiningOptions // N-gram window, threshold and scoring
	TopRootsExpanded int                      // Root categories expanded initially; 0 expands none
	Vocabulary       *behavioral.Vocabulary   // nil uses the default vocabulary
	Logger           Logger                   // nil discards log output
}

// DefaultOptions returns the standard session configuration
func DefaultOptions() Options {
	return Options{
		Mining:           behavioral.DefaultMiningOptions(),
		TopRootsExpanded: visibility.DefaultTopRoots,
	}
}

// Session is the pipeline state for one transcript
type Session struct {
	mu       sync.Mutex
	id       string
	source   string
	miner    *behavioral.PatternMiner
	vocab    *behavioral.Vocabulary
	logger   Logger
	skipped  int // Malformed lines in the transcript behind the current build
	events   []models.RawEvent
	runs     []models.MergedRun
	patterns []models.PatternRecord
	leaves   []models.PatternRecord
	tree     *tree.Tree
	ctrl     *visibility.Controller
}

// New runs the pipeline over events and returns a session in the initial
// visibility state.
func New(events []models.RawEvent, opts Options) *Session {
	return newSession(events, opts, 0)
}

// FromTranscript creates a session from a parsed transcript. Skipped lines
// are reported as warnings and counted in the pipeline summary.
func FromTranscript(tr *behavioral.Transcript, opts Options) *Session {
	if opts.Source == "" {
		opts.Source = tr.Name
	}
	if opts.Logger != nil {
		warnSkipped(opts.Logger, tr)
	}
	return newSession(tr.Events, opts, len(tr.Skipped))
}

func warnSkipped(log Logger, tr *behavioral.Transcript) {
	for _, skipped := range tr.Skipped {
		log.LogWarn(fmt.Sprintf("skipped transcript %s", skipped.Error()))
	}
}

func newSession(events []models.RawEvent, opts Options, skipped int) *Session {
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = behavioral.DefaultVocabulary()
	}
	var log Logger = logger.NewNoOpLogger()
	if opts.Logger != nil {
		log = opts.Logger
	}

	s := &Session{
		id:      uuid.NewString(),
		source:  opts.Source,
		miner:   behavioral.NewPatternMiner(opts.Mining, vocab),
		vocab:   vocab,
		logger:  log,
		skipped: skipped,
	}

	start := s.build(events)
	s.ctrl = visibility.NewController(s.tree, opts.TopRootsExpanded)
	s.logSummary(start)
	return s
}

// build recomputes every derived structure from events. Callers hold mu or
// own s exclusively.
func (s *Session) build(events []models.RawEvent) time.Time {
	start := time.Now()

	s.events = append([]models.RawEvent(nil), events...)
	s.runs = behavioral.Preprocess(s.events, s.vocab)
	s.patterns = s.miner.Mine(s.runs, s.events)
	s.tree = tree.Build(s.patterns, s.vocab)
	s.leaves = s.tree.ExtractRootToLeafPatterns(s.patterns)

	s.logger.LogDebug(fmt.Sprintf("mined %d patterns from %d runs", len(s.patterns), len(s.runs)))
	return start
}

func (s *Session) logSummary(start time.Time) {
	s.logger.LogPipelineSummary(models.PipelineSummary{
		Source:   s.source,
		Events:   len(s.events),
		Runs:     len(s.runs),
		Patterns: len(s.patterns),
		Leaves:   len(s.leaves),
		Nodes:    s.tree.Len(),
		Visible:  s.ctrl.Visible().Len() + 1,
		Skipped:  s.skipped,
		Scored:   s.miner.Options().Score,
		Duration: time.Since(start),
	})
}

// ID returns the session's unique id
func (s *Session) ID() string {
	return s.id
}

// Source returns the transcript name
func (s *Session) Source() string {
	return s.source
}

// Rebuild replaces the events and recomputes runs, patterns and tree.
// Visible ids that still exist are kept, otherwise the initial state applies.
// In-memory events have no skipped lines.
func (s *Session) Rebuild(events []models.RawEvent) {
	s.rebuild(events, 0)
}

// RebuildTranscript is Rebuild for a freshly parsed transcript; its skipped
// lines are warned about and replace the previous skipped count.
func (s *Session) RebuildTranscript(tr *behavioral.Transcript) {
	warnSkipped(s.logger, tr)
	s.rebuild(tr.Events, len(tr.Skipped))
}

func (s *Session) rebuild(events []models.RawEvent, skipped int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.skipped = skipped
	start := s.build(events)
	s.ctrl.Rebuild(s.tree)
	s.logSummary(start)
}

// Toggle expands or collapses the node with id
func (s *Session) Toggle(id string) visibility.Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	action := s.ctrl.Toggle(id)
	if action == visibility.NoOp {
		s.logger.LogWarn(fmt.Sprintf("toggle: unknown node %q", id))
		return action
	}
	s.logVisibility(action.String(), id)
	return action
}

// SelectPattern reveals and highlights the chain abbrs, returning the
// matched node ids
func (s *Session) SelectPattern(abbrs []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.ctrl.SelectPattern(abbrs)
	if len(ids) < len(abbrs) {
		s.logger.LogDebug(fmt.Sprintf("select: matched %d of %d steps of %s", len(ids), len(abbrs), models.JoinPattern(abbrs)))
	}
	s.logVisibility("selected", models.JoinPattern(abbrs))
	return ids
}

// ClearSelection drops the highlight path
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.ClearSelection()
}

// ExpandAll makes every node visible
func (s *Session) ExpandAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.ExpandAll()
	s.logVisibility("expanded", tree.RootID)
}

// Reset returns visibility to the initial state
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Reset()
	s.logVisibility("reset", tree.RootID)
}

// logVisibility reports the visible/total node counts, root included.
// Callers hold mu.
func (s *Session) logVisibility(action, nodeID string) {
	s.logger.LogVisibility(action, nodeID, s.ctrl.Visible().Len()+1, s.tree.Len())
}

// Details returns the detail records of the first occurrence of abbrs
func (s *Session) Details(abbrs []string) []models.DetailRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return behavioral.ExtractPatternDetails(abbrs, s.events, s.vocab)
}

// Events returns a copy of the raw events
func (s *Session) Events() []models.RawEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RawEvent(nil), s.events...)
}

// Runs returns a copy of the merged runs
func (s *Session) Runs() []models.MergedRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MergedRun(nil), s.runs...)
}

// Patterns returns every mined pattern in mining order
func (s *Session) Patterns() []models.PatternRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PatternRecord(nil), s.patterns...)
}

// LeafPatterns returns the patterns that are complete root-to-leaf chains
func (s *Session) LeafPatterns() []models.PatternRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PatternRecord(nil), s.leaves...)
}

// Tree returns the current aggregation tree
func (s *Session) Tree() *tree.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Vocabulary returns the vocabulary in use
func (s *Session) Vocabulary() *behavioral.Vocabulary {
	return s.vocab
}

// Visible returns a copy of the visible id set
func (s *Session) Visible() visibility.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Visible()
}

// Highlight returns the current highlight path
func (s *Session) Highlight() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Highlight()
}

// View returns the filtered tree for renderers
func (s *Session) View() *tree.ViewNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.View()
}

// Report returns the exportable pattern list; all=false keeps only
// root-to-leaf chains
func (s *Session) Report(all bool) *behavioral.PatternReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	patterns := s.leaves
	if all {
		patterns = s.patterns
	}
	return &behavioral.PatternReport{
		Source:   s.source,
		Events:   len(s.events),
		Runs:     len(s.runs),
		Patterns: append([]models.PatternRecord{}, patterns...),
	}
}
