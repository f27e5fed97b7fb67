package behavioral

import (
	"github.com/harrison/teachtree/internal/models"
)

// Preprocess folds consecutive events with the same abbreviation into runs.
// Start and end times are taken from ids that carry a parseable timestamp;
// a run without any stays at 0/0. The result is never nil.
func Preprocess(events []models.RawEvent, vocab *Vocabulary) []models.MergedRun {
	runs := make([]models.MergedRun, 0)
	timed := make([]bool, 0)

	for _, event := range events {
		abbr := vocab.Abbreviate(event.Label)
		ts, ok := ParseTimestamp(event.ID)

		last := len(runs) - 1
		if last < 0 || runs[last].Abbr != abbr {
			run := models.MergedRun{Abbr: abbr, Label: event.Label, Count: 1}
			if ok {
				run.StartTime, run.EndTime = ts.Start, ts.End
			}
			runs = append(runs, run)
			timed = append(timed, ok)
			continue
		}

		runs[last].Count++
		if !ok {
			continue
		}
		if !timed[last] {
			runs[last].StartTime, runs[last].EndTime = ts.Start, ts.End
			timed[last] = true
			continue
		}
		if ts.Start < runs[last].StartTime {
			runs[last].StartTime = ts.Start
		}
		if ts.End > runs[last].EndTime {
			runs[last].EndTime = ts.End
		}
	}

	return runs
}

// segment is a run that keeps its member events, used where the raw
// dialogue or per-event durations matter.
type segment struct {
	abbr     string
	start    int // start of the first member
	end      int // end of the last member
	duration int // sum of member durations
	events   []models.RawEvent
}

// segmentEvents merges events the same way as Preprocess but retains members.
func segmentEvents(events []models.RawEvent, vocab *Vocabulary) []segment {
	segments := make([]segment, 0)

	for _, event := range events {
		abbr := vocab.Abbreviate(event.Label)
		ts, _ := ParseTimestamp(event.ID)

		last := len(segments) - 1
		if last < 0 || segments[last].abbr != abbr {
			segments = append(segments, segment{
				abbr:     abbr,
				start:    ts.Start,
				end:      ts.End,
				duration: ts.Duration,
				events:   []models.RawEvent{event},
			})
			continue
		}

		segments[last].end = ts.End
		segments[last].duration += ts.Duration
		segments[last].events = append(segments[last].events, event)
	}

	return segments
}

// matchSegments returns the start index of every window of segments whose
// abbreviations equal abbrs.
func matchSegments(segments []segment, abbrs []string) []int {
	if len(abbrs) == 0 {
		return nil
	}

	var starts []int
	for i := 0; i+len(abbrs) <= len(segments); i++ {
		matched := true
		for j, abbr := range abbrs {
			if segments[i+j].abbr != abbr {
				matched = false
				break
			}
		}
		if matched {
			starts = append(starts, i)
		}
	}
	return starts
}
