package models

import (
	"errors"
)

// RawEvent is one labelled line of a classroom transcript
type RawEvent struct {
	ID    string `json:"id"`    // Source id, ends in _<start>_<end> seconds (e.g. "T01_0012_0019")
	Label string `json:"label"` // Behaviour category
	Text  string `json:"text"`  // Dialogue, or "silent" / "inaudible"
}

// Validate checks if the event has the fields the pipeline keys on
func (e *RawEvent) Validate() error {
	if e.ID == "" {
		return errors.New("event id is required")
	}
	if e.Label == "" {
		return errors.New("event label is required")
	}
	return nil
}

// MergedRun is a maximal span of consecutive events sharing one abbreviation
type MergedRun struct {
	Abbr      string `json:"abbr"`       // Abbreviation shared by every folded event
	Label     string `json:"label"`      // Label of the first folded event
	Count     int    `json:"count"`      // Number of original events folded in
	StartTime int    `json:"start_time"` // Earliest start offset in seconds
	EndTime   int    `json:"end_time"`   // Latest end offset in seconds
}

// Duration returns EndTime - StartTime in seconds
func (r MergedRun) Duration() int {
	return r.EndTime - r.StartTime
}

// Abbreviations returns the abbreviation sequence of the runs
func Abbreviations(runs []MergedRun) []string {
	abbrs := make([]string, len(runs))
	for i, r := range runs {
		abbrs[i] = r.Abbr
	}
	return abbrs
}

// DetailRecord describes one matched run of a pattern occurrence
type DetailRecord struct {
	SourceID  string `json:"source_id"`  // Id of the first event in the run
	Label     string `json:"label"`      // Label of the first event in the run
	Abbr      string `json:"abbr"`       // Run abbreviation
	StartTime int    `json:"start_time"` // Start of the first event
	EndTime   int    `json:"end_time"`   // End of the last event
	Text      string `json:"text"`       // Joined dialogue of the run
}
