package behavioral

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harrison/teachtree/internal/models"
)

// SortField selects the pattern table column to sort on
type SortField string

// SortOrder selects ascending or descending order
type SortOrder string

// Sort fields and orders accepted by the pattern table
const (
	SortByLength SortField = "length"
	SortByCount  SortField = "count"
	SortByScore  SortField = "score"

	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// FilterCriteria defines dimensions for narrowing and ordering a pattern table
type FilterCriteria struct {
	Search    string    // Case-insensitive substring of the pattern key
	MinLength int       // Minimum chain length (0 = no bound)
	MaxLength int       // Maximum chain length (0 = no bound)
	MinCount  int       // Minimum frequency (0 = no bound)
	SortField SortField // Column to sort on (empty keeps the mined order)
	SortOrder SortOrder // asc or desc (empty = desc)
}

// Validate checks if the filter criteria are valid
func (fc *FilterCriteria) Validate() error {
	if fc.MinLength < 0 || fc.MaxLength < 0 || fc.MinCount < 0 {
		return fmt.Errorf("length and count bounds cannot be negative")
	}
	if fc.MaxLength > 0 && fc.MinLength > fc.MaxLength {
		return fmt.Errorf("min length (%d) cannot exceed max length (%d)", fc.MinLength, fc.MaxLength)
	}

	switch fc.SortField {
	case "", SortByLength, SortByCount, SortByScore:
	default:
		return fmt.Errorf("invalid sort field '%s': must be one of: length, count, score", fc.SortField)
	}

	switch fc.SortOrder {
	case "", Ascending, Descending:
	default:
		return fmt.Errorf("invalid sort order '%s': must be asc or desc", fc.SortOrder)
	}

	return nil
}

// ApplyFiltersToPatterns returns the patterns matching criteria (AND logic),
// sorted as requested. The input slice is not modified. Invalid criteria
// return an unfiltered copy.
func ApplyFiltersToPatterns(patterns []models.PatternRecord, criteria FilterCriteria) []models.PatternRecord {
	if err := criteria.Validate(); err != nil {
		return append([]models.PatternRecord(nil), patterns...)
	}

	search := strings.ToLower(strings.TrimSpace(criteria.Search))

	filtered := make([]models.PatternRecord, 0, len(patterns))
	for _, p := range patterns {
		if criteria.MinLength > 0 && p.Length < criteria.MinLength {
			continue
		}
		if criteria.MaxLength > 0 && p.Length > criteria.MaxLength {
			continue
		}
		if criteria.MinCount > 0 && p.Count < criteria.MinCount {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Key()), search) {
			continue
		}
		filtered = append(filtered, p)
	}

	if criteria.SortField != "" {
		SortPatternsBy(filtered, criteria.SortField, criteria.SortOrder)
	}
	return filtered
}

// SortPatternsBy stably sorts patterns on one column
func SortPatternsBy(patterns []models.PatternRecord, field SortField, order SortOrder) {
	value := func(p models.PatternRecord) float64 {
		switch field {
		case SortByCount:
			return float64(p.Count)
		case SortByScore:
			return p.Score()
		default:
			return float64(p.Length)
		}
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		if order == Ascending {
			return value(patterns[i]) < value(patterns[j])
		}
		return value(patterns[i]) > value(patterns[j])
	})
}
