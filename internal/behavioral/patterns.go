package behavioral

import (
	"github.com/harrison/teachtree/internal/models"
)

// Mining defaults
const (
	DefaultMaxPatternLength = 15
	DefaultMinPatternCount  = 2
)

// MiningOptions controls n-gram extraction
type MiningOptions struct {
	MaxPatternLength int  // Largest window length (values <= 0 use the default)
	MinPatternCount  int  // Minimum frequency to keep a pattern (values <= 0 use the default)
	Score            bool // Compute the duration-aware average score
}

// DefaultMiningOptions returns the standard mining configuration
func DefaultMiningOptions() MiningOptions {
	return MiningOptions{
		MaxPatternLength: DefaultMaxPatternLength,
		MinPatternCount:  DefaultMinPatternCount,
		Score:            true,
	}
}

func (o MiningOptions) normalized() MiningOptions {
	if o.MaxPatternLength <= 0 {
		o.MaxPatternLength = DefaultMaxPatternLength
	}
	if o.MinPatternCount <= 0 {
		o.MinPatternCount = DefaultMinPatternCount
	}
	return o
}

// PatternMiner extracts recurring behaviour chains from a merged sequence
type PatternMiner struct {
	opts  MiningOptions
	vocab *Vocabulary
}

// NewPatternMiner creates a miner. A nil vocabulary uses DefaultVocabulary.
func NewPatternMiner(opts MiningOptions, vocab *Vocabulary) *PatternMiner {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &PatternMiner{
		opts:  opts.normalized(),
		vocab: vocab,
	}
}

// Options returns the effective options
func (pm *PatternMiner) Options() MiningOptions {
	return pm.opts
}

// patternData accumulates one n-gram while sliding windows
type patternData struct {
	abbrs     []string
	frequency int
}

// Mine slides every window length from 2 to MaxPatternLength across runs and
// returns the patterns seen at least MinPatternCount times, ordered by length
// then count (both descending), first-seen order for ties.
// events is only consulted when scoring is enabled.
func (pm *PatternMiner) Mine(runs []models.MergedRun, events []models.RawEvent) []models.PatternRecord {
	abbrs := models.Abbreviations(runs)

	maxLen := pm.opts.MaxPatternLength
	if len(abbrs) < maxLen {
		maxLen = len(abbrs)
	}

	patternMap := make(map[string]*patternData)
	order := make([]string, 0)

	for n := 2; n <= maxLen; n++ {
		for i := 0; i+n <= len(abbrs); i++ {
			window := abbrs[i : i+n]
			key := models.JoinPattern(window)

			data, exists := patternMap[key]
			if !exists {
				data = &patternData{abbrs: append([]string(nil), window...)}
				patternMap[key] = data
				order = append(order, key)
			}
			data.frequency++
		}
	}

	var scorer *Scorer
	if pm.opts.Score {
		scorer = NewScorer(events, pm.vocab)
	}

	patterns := make([]models.PatternRecord, 0)
	for _, key := range order {
		data := patternMap[key]
		if data.frequency < pm.opts.MinPatternCount {
			continue
		}

		record := models.PatternRecord{
			Pattern: data.abbrs,
			Length:  len(data.abbrs),
			Count:   data.frequency,
		}
		if scorer != nil {
			record.AvgScore = models.Float(scorer.Score(data.abbrs))
		}
		patterns = append(patterns, record)
	}

	models.SortPatterns(patterns)
	return patterns
}

// MinePatterns is a convenience wrapper: preprocess events and mine them.
func MinePatterns(events []models.RawEvent, opts MiningOptions, vocab *Vocabulary) []models.PatternRecord {
	miner := NewPatternMiner(opts, vocab)
	return miner.Mine(Preprocess(events, miner.vocab), events)
}
