package session

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/teachtree/internal/models"
	"github.com/harrison/teachtree/internal/tree"
	"github.com/harrison/teachtree/internal/visibility"
)

var lessonLabels = []string{"教师提问", "学生发言", "教师反馈", "教师讲授", "课堂沉寂"}

// randomLesson builds n timed events with labels drawn from lessonLabels
func randomLesson(rng *rand.Rand, n int) []models.RawEvent {
	events := make([]models.RawEvent, n)
	start := 0
	for i := range events {
		end := start + 1 + rng.Intn(40)
		events[i] = models.RawEvent{
			ID:    fmt.Sprintf("E%03d_%d_%d", i, start, end),
			Label: lessonLabels[rng.Intn(len(lessonLabels))],
		}
		start = end + rng.Intn(5)
	}
	return events
}

func TestMinedTreeInvariants(t *testing.T) {
	for seed := int64(1); seed <= 60; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			events := randomLesson(rng, 20+rng.Intn(60))

			opts := DefaultOptions()
			opts.Mining.MaxPatternLength = 2 + rng.Intn(6)
			s := New(events, opts)

			patterns := s.Patterns()
			tr := s.Tree()

			for _, p := range patterns {
				if p.HasScore() {
					assert.GreaterOrEqual(t, p.Score(), 0.3, p.Key())
					assert.LessOrEqual(t, p.Score(), 1.0, p.Key())
				}
			}

			assertConservation(t, tr, patterns)
			assertDistributions(t, tr)

			ids := tr.IDs()
			s.Rebuild(events)
			assert.Equal(t, ids, s.Tree().IDs(), "rebuilding the same events keeps node ids")

			assertToggleRoundTrip(t, s)
		})
	}
}

// assertConservation checks every node count against the summed counts of
// the patterns sharing its prefix
func assertConservation(t *testing.T, tr *tree.Tree, patterns []models.PatternRecord) {
	t.Helper()

	prefixCounts := make(map[string]int)
	for _, p := range patterns {
		for depth := 1; depth <= len(p.Pattern); depth++ {
			prefixCounts[models.JoinPattern(p.Pattern[:depth])] += p.Count
		}
	}

	assert.Equal(t, len(patterns), tr.Root().Count)
	for i := 1; i < tr.Len(); i++ {
		key := models.JoinPattern(tr.Path(i))
		assert.Equal(t, prefixCounts[key], tr.Node(i).Count, "node %s", tr.Node(i).ID)
	}
}

func assertDistributions(t *testing.T, tr *tree.Tree) {
	t.Helper()

	for i := 0; i < tr.Len(); i++ {
		n := tr.Node(i)
		if n.IsLeaf() {
			assert.Empty(t, n.ChildDistribution, "leaf %s", n.ID)
			continue
		}
		total := 0.0
		for _, share := range n.ChildDistribution {
			total += share.Percentage
		}
		assert.InDelta(t, 100.0, total, 0.001, "node %s", n.ID)
	}
}

// assertToggleRoundTrip collapses each inner node, then checks that
// expanding and collapsing it again restores the same visible set
func assertToggleRoundTrip(t *testing.T, s *Session) {
	t.Helper()

	tr := s.Tree()
	for i := 0; i < tr.Len(); i++ {
		n := tr.Node(i)
		if n.IsLeaf() {
			continue
		}
		if s.Toggle(n.ID) == visibility.Expanded {
			require.Equal(t, visibility.Collapsed, s.Toggle(n.ID), n.ID)
		}

		collapsed := s.Visible()
		require.Equal(t, visibility.Expanded, s.Toggle(n.ID), n.ID)
		require.Equal(t, visibility.Collapsed, s.Toggle(n.ID), n.ID)
		assert.True(t, collapsed.Equal(s.Visible()), "node %s", n.ID)
	}
}
