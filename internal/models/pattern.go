package models

import (
	"sort"
	"strings"
)

// PatternSeparator joins abbreviations into a pattern key
const PatternSeparator = " → "

// PatternRecord is one mined n-gram that survived the frequency filter
type PatternRecord struct {
	Pattern  []string `json:"pattern"`             // Ordered abbreviations
	Length   int      `json:"length"`              // len(Pattern)
	Count    int      `json:"count"`               // Occurrences in the merged sequence
	AvgScore *float64 `json:"avg_score,omitempty"` // Mean occurrence score, nil when scoring is off
}

// Key returns the pattern joined with PatternSeparator
func (p PatternRecord) Key() string {
	return JoinPattern(p.Pattern)
}

// HasScore reports whether the record carries a score
func (p PatternRecord) HasScore() bool {
	return p.AvgScore != nil
}

// Score returns the average score, or 0 when unscored
func (p PatternRecord) Score() float64 {
	if p.AvgScore == nil {
		return 0
	}
	return *p.AvgScore
}

// Share is one entry of a node's child distribution
type Share struct {
	Abbr       string  `json:"abbr"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// JoinPattern joins abbreviations with PatternSeparator
func JoinPattern(abbrs []string) string {
	return strings.Join(abbrs, PatternSeparator)
}

// SplitPattern parses a pattern key. Both "→" and "->" are accepted as
// separators and surrounding whitespace is ignored. Empty parts are dropped.
func SplitPattern(key string) []string {
	normalized := strings.ReplaceAll(key, "->", "→")
	parts := strings.Split(normalized, "→")

	abbrs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		abbrs = append(abbrs, p)
	}
	return abbrs
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// SortPatterns orders patterns by length then count, both descending.
// The sort is stable so equal rows keep their relative order.
func SortPatterns(patterns []PatternRecord) {
	sort.SliceStable(patterns, func(i, j int) bool {
		if patterns[i].Length != patterns[j].Length {
			return patterns[i].Length > patterns[j].Length
		}
		return patterns[i].Count > patterns[j].Count
	})
}
