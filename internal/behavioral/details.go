package behavioral

import (
	"strings"

	"github.com/harrison/teachtree/internal/models"
)

// Non-verbal sentinels used in transcript text
const (
	TextSilent    = "silent"
	TextInaudible = "inaudible"
)

// speakerPrefixes are stripped from dialogue before display
var speakerPrefixes = []string{"老师：", "学生："}

// ExtractPatternDetails finds the first occurrence of abbrs in the merged
// transcript and returns one record per matched run. Later occurrences are
// not reported. No match (or an empty pattern) yields an empty slice.
func ExtractPatternDetails(abbrs []string, events []models.RawEvent, vocab *Vocabulary) []models.DetailRecord {
	details := make([]models.DetailRecord, 0)

	segments := segmentEvents(events, vocab)
	starts := matchSegments(segments, abbrs)
	if len(starts) == 0 {
		return details
	}

	for _, seg := range segments[starts[0] : starts[0]+len(abbrs)] {
		first := seg.events[0]
		last := seg.events[len(seg.events)-1]
		firstTS, _ := ParseTimestamp(first.ID)
		lastTS, _ := ParseTimestamp(last.ID)

		details = append(details, models.DetailRecord{
			SourceID:  first.ID,
			Label:     first.Label,
			Abbr:      seg.abbr,
			StartTime: firstTS.Start,
			EndTime:   lastTS.End,
			Text:      mergeDialogue(seg.events),
		})
	}

	return details
}

// mergeDialogue joins member dialogue with speaker prefixes removed and
// non-verbal members dropped. An all non-verbal run reports its sentinel.
func mergeDialogue(events []models.RawEvent) string {
	texts := make([]string, 0, len(events))
	for _, event := range events {
		text := stripSpeaker(event.Text)
		if text == TextSilent || text == TextInaudible {
			continue
		}
		texts = append(texts, text)
	}

	if len(texts) > 0 {
		return strings.Join(texts, " ")
	}
	if events[0].Text == TextInaudible {
		return TextInaudible
	}
	return TextSilent
}

func stripSpeaker(text string) string {
	for _, prefix := range speakerPrefixes {
		if strings.HasPrefix(text, prefix) {
			return strings.TrimPrefix(text, prefix)
		}
	}
	return text
}
