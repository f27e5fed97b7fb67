package behavioral

import (
	"github.com/harrison/teachtree/internal/models"
)

// Scoring weights and thresholds (seconds)
const (
	baseScore = 0.5
	minScore  = 0.3
	maxScore  = 1.0

	studentShareWeight = 0.3

	longLectureSeconds = 120
	longLecturePenalty = 0.15
	longSilenceSeconds = 30
	longSilencePenalty = 0.10

	goldenInteractionBonus = 0.25
	deepDiscussionSeconds  = 60
	deepDiscussionBonus    = 0.15
	fullSpeechSeconds      = 20
	fullSpeechBonus        = 0.10

	lateFeedbackSeconds = 120
	lateFeedbackPenalty = 0.10
)

// goldenInteraction is question, student answer, teacher feedback
var goldenInteraction = []string{AbbrTeacherQuestion, AbbrStudentSpeech, AbbrTeacherFeedback}

// Scorer rates pattern occurrences using their durations in the transcript
type Scorer struct {
	segments []segment
}

// NewScorer merges events into timed runs once so many patterns can be scored
func NewScorer(events []models.RawEvent, vocab *Vocabulary) *Scorer {
	return &Scorer{segments: segmentEvents(events, vocab)}
}

// Score returns the mean occurrence score of abbrs in the transcript.
// A pattern that never occurs scores the neutral base.
func (s *Scorer) Score(abbrs []string) float64 {
	starts := matchSegments(s.segments, abbrs)
	if len(starts) == 0 {
		return baseScore
	}

	total := 0.0
	for _, start := range starts {
		total += scoreOccurrence(s.segments[start : start+len(abbrs)])
	}
	return total / float64(len(starts))
}

// ScorePattern scores a single pattern against events
func ScorePattern(abbrs []string, events []models.RawEvent, vocab *Vocabulary) float64 {
	return NewScorer(events, vocab).Score(abbrs)
}

// scoreOccurrence rates one literal occurrence of a pattern
func scoreOccurrence(match []segment) float64 {
	score := baseScore

	totalDuration := 0
	durations := make(map[string]int)
	abbrs := make([]string, len(match))
	for i, seg := range match {
		totalDuration += seg.duration
		durations[seg.abbr] += seg.duration
		abbrs[i] = seg.abbr
	}

	// Student-centred share of the occurrence time. Untimed runs contribute nothing.
	if totalDuration > 0 {
		studentTime := durations[AbbrStudentSpeech] + durations[AbbrStudentDiscussion]
		score += studentShareWeight * float64(studentTime) / float64(totalDuration)
	}

	for _, seg := range match {
		if seg.abbr == AbbrTeacherLecture && seg.duration > longLectureSeconds {
			score -= longLecturePenalty
		}
		if seg.abbr == AbbrClassSilence && seg.duration > longSilenceSeconds {
			score -= longSilencePenalty
		}
	}

	if containsSequence(abbrs, goldenInteraction) {
		score += goldenInteractionBonus
	}
	if durations[AbbrStudentDiscussion] > deepDiscussionSeconds {
		score += deepDiscussionBonus
	}
	if durations[AbbrStudentSpeech] > fullSpeechSeconds {
		score += fullSpeechBonus
	}

	for i := 0; i+1 < len(match); i++ {
		if match[i].abbr == AbbrStudentSpeech && match[i+1].abbr == AbbrTeacherFeedback {
			if match[i+1].start-match[i].end > lateFeedbackSeconds {
				score -= lateFeedbackPenalty
			}
		}
	}

	return clamp(score, minScore, maxScore)
}

// containsSequence reports whether needle occurs contiguously in haystack
func containsSequence(haystack, needle []string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		matched := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
