package behavioral

import (
	"sort"

	"github.com/harrison/teachtree/internal/models"
)

// TranscriptStats contains summary statistics of one transcript
type TranscriptStats struct {
	TotalEvents   int            `json:"total_events"`
	TotalRuns     int            `json:"total_runs"`
	TotalDuration int            `json:"total_duration"` // Sum of event durations in seconds
	TeacherShare  float64        `json:"teacher_share"`  // Fraction of duration in teacher behaviours (T*)
	StudentShare  float64        `json:"student_share"`  // Fraction of duration in SS and SD
	Categories    []CategoryStat `json:"categories"`
}

// CategoryStat contains statistics for one abbreviation
type CategoryStat struct {
	Abbr          string  `json:"abbr"`
	Label         string  `json:"label"`
	Events        int     `json:"events"`
	Runs          int     `json:"runs"`
	Duration      int     `json:"duration"`
	DurationShare float64 `json:"duration_share"`
}

// CalculateStats aggregates event, run and duration counts per abbreviation.
// Categories are ordered by duration, then run count, then first appearance.
func CalculateStats(events []models.RawEvent, vocab *Vocabulary) *TranscriptStats {
	stats := &TranscriptStats{Categories: []CategoryStat{}}
	if len(events) == 0 {
		return stats
	}

	byAbbr := make(map[string]*CategoryStat)
	var order []string
	var teacher, student int

	for _, seg := range segmentEvents(events, vocab) {
		cat, ok := byAbbr[seg.abbr]
		if !ok {
			cat = &CategoryStat{Abbr: seg.abbr, Label: vocab.FullName(seg.abbr)}
			byAbbr[seg.abbr] = cat
			order = append(order, seg.abbr)
		}
		cat.Runs++
		cat.Events += len(seg.events)
		cat.Duration += seg.duration

		stats.TotalRuns++
		stats.TotalEvents += len(seg.events)
		stats.TotalDuration += seg.duration

		switch {
		case isStudentAbbr(seg.abbr):
			student += seg.duration
		case isTeacherAbbr(seg.abbr):
			teacher += seg.duration
		}
	}

	for _, abbr := range order {
		cat := byAbbr[abbr]
		if stats.TotalDuration > 0 {
			cat.DurationShare = float64(cat.Duration) / float64(stats.TotalDuration)
		}
		stats.Categories = append(stats.Categories, *cat)
	}
	if stats.TotalDuration > 0 {
		stats.TeacherShare = float64(teacher) / float64(stats.TotalDuration)
		stats.StudentShare = float64(student) / float64(stats.TotalDuration)
	}

	sort.SliceStable(stats.Categories, func(i, j int) bool {
		a, b := stats.Categories[i], stats.Categories[j]
		if a.Duration != b.Duration {
			return a.Duration > b.Duration
		}
		return a.Runs > b.Runs
	})

	return stats
}

// GetTopCategories returns the top N categories
func (ts *TranscriptStats) GetTopCategories(limit int) []CategoryStat {
	if limit <= 0 || limit > len(ts.Categories) {
		return ts.Categories
	}
	return ts.Categories[:limit]
}

func isStudentAbbr(abbr string) bool {
	return abbr == AbbrStudentSpeech || abbr == AbbrStudentDiscussion
}

func isTeacherAbbr(abbr string) bool {
	switch abbr {
	case AbbrTeacherQuestion, AbbrTeacherLecture, AbbrTeacherFeedback,
		AbbrTeacherInstruction, AbbrTeacherBoard, AbbrTeacherPatrol:
		return true
	}
	return false
}
