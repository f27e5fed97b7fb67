package behavioral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/teachtree/internal/models"
)

func TestPreprocessMergesConsecutiveAbbreviations(t *testing.T) {
	events := []models.RawEvent{
		ev("q1_0_5", "教师提问", "老师：什么是分数？"),
		ev("q2_5_9", "教师提问", "老师：谁来说说"),
		ev("s1_10_20", "学生发言", "学生：一半"),
		ev("q3_20_25", "教师提问", "老师：很好"),
	}

	runs := Preprocess(events, DefaultVocabulary())

	require.Len(t, runs, 3)
	assert.Equal(t, models.MergedRun{Abbr: "TQ", Label: "教师提问", Count: 2, StartTime: 0, EndTime: 9}, runs[0])
	assert.Equal(t, models.MergedRun{Abbr: "SS", Label: "学生发言", Count: 1, StartTime: 10, EndTime: 20}, runs[1])
	assert.Equal(t, models.MergedRun{Abbr: "TQ", Label: "教师提问", Count: 1, StartTime: 20, EndTime: 25}, runs[2])
	assert.Equal(t, 9, runs[0].Duration())
}

func TestPreprocessCountsSumToEvents(t *testing.T) {
	events := labelled("教师讲授", "教师讲授", "课堂沉寂", "教师讲授", "学生讨论", "学生讨论", "学生讨论")

	runs := Preprocess(events, DefaultVocabulary())

	total := 0
	for i, run := range runs {
		total += run.Count
		if i > 0 {
			assert.NotEqual(t, runs[i-1].Abbr, run.Abbr, "adjacent runs never share an abbreviation")
		}
	}
	assert.Equal(t, len(events), total)
	assert.Equal(t, []string{"TL", "CS", "TL", "SD"}, models.Abbreviations(runs))
}

func TestPreprocessUnknownLabelPassesThrough(t *testing.T) {
	runs := Preprocess([]models.RawEvent{ev("x_0_3", "小组合作", "")}, DefaultVocabulary())

	require.Len(t, runs, 1)
	assert.Equal(t, "小组合作", runs[0].Abbr)
	assert.Equal(t, "小组合作", runs[0].Label)
}

func TestPreprocessTimestamps(t *testing.T) {
	t.Run("untimed run stays at zero", func(t *testing.T) {
		runs := Preprocess([]models.RawEvent{ev("first", "教师讲授", ""), ev("second", "教师讲授", "")}, DefaultVocabulary())
		require.Len(t, runs, 1)
		assert.Equal(t, 0, runs[0].StartTime)
		assert.Equal(t, 0, runs[0].EndTime)
	})

	t.Run("timestamps come from parseable members only", func(t *testing.T) {
		runs := Preprocess([]models.RawEvent{
			ev("untimed", "教师讲授", ""),
			ev("l_30_40", "教师讲授", ""),
			ev("l_12_20", "教师讲授", ""),
		}, DefaultVocabulary())
		require.Len(t, runs, 1)
		assert.Equal(t, 3, runs[0].Count)
		assert.Equal(t, 12, runs[0].StartTime)
		assert.Equal(t, 40, runs[0].EndTime)
	})
}

func TestPreprocessEmptyAndPure(t *testing.T) {
	runs := Preprocess(nil, DefaultVocabulary())
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	events := labelled("教师提问", "学生发言")
	snapshot := append([]models.RawEvent(nil), events...)
	first := Preprocess(events, DefaultVocabulary())
	second := Preprocess(events, DefaultVocabulary())

	assert.Equal(t, snapshot, events, "input must not be modified")
	assert.Equal(t, first, second)
}
