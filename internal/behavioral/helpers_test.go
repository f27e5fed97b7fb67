package behavioral

import (
	"fmt"

	"github.com/harrison/teachtree/internal/models"
)

func ev(id, label, text string) models.RawEvent {
	return models.RawEvent{ID: id, Label: label, Text: text}
}

// labelled builds one 5-second event per label, 10 seconds apart
func labelled(labels ...string) []models.RawEvent {
	events := make([]models.RawEvent, len(labels))
	for i, label := range labels {
		events[i] = ev(fmt.Sprintf("E%02d_%d_%d", i, i*10, i*10+5), label, "")
	}
	return events
}

func keys(patterns []models.PatternRecord) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.Key()
	}
	return out
}
