package visibility

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/teachtree/internal/models"
	"github.com/harrison/teachtree/internal/tree"
)

func chain(count int, abbrs ...string) models.PatternRecord {
	return models.PatternRecord{Pattern: abbrs, Length: len(abbrs), Count: count}
}

// sampleTree has root children A (5), B (2) and C (1)
func sampleTree() *tree.Tree {
	return tree.Build([]models.PatternRecord{
		chain(2, "A", "B", "C"),
		chain(3, "A", "B"),
		chain(2, "B", "C"),
		chain(1, "C", "D"),
	}, nil)
}

func TestInitialVisible(t *testing.T) {
	tr := sampleTree()

	tests := []struct {
		name string
		k    int
		want []string
	}{
		{name: "none", k: 0, want: []string{}},
		{name: "top one", k: 1, want: []string{"root-A-0", "root-A-0-B-1", "root-A-0-B-1-C-2"}},
		{name: "top two", k: 2, want: []string{"root-A-0", "root-A-0-B-1", "root-A-0-B-1-C-2", "root-B-0", "root-B-0-C-1"}},
		{name: "more than roots", k: 9, want: tr.IDs()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, InitialVisible(tr, tt.k).IDs())
		})
	}
}

func TestInitialVisibleTiesKeepFirstSeen(t *testing.T) {
	tr := tree.Build([]models.PatternRecord{chain(1, "X"), chain(1, "Y"), chain(1, "Z")}, nil)

	assert.Equal(t, []string{"root-X-0", "root-Y-0"}, InitialVisible(tr, 2).IDs())
}

func TestNewControllerDefaults(t *testing.T) {
	c := NewController(sampleTree(), -1)
	assert.Equal(t, 5, c.Visible().Len())
	assert.Empty(t, c.Highlight())

	empty := NewController(tree.Build(nil, nil), 2)
	assert.Zero(t, empty.Visible().Len())
	assert.Equal(t, NoOp, empty.Toggle("root-A-0"))
}

func TestToggle(t *testing.T) {
	c := NewController(sampleTree(), 2)

	assert.Equal(t, Collapsed, c.Toggle("root-A-0"))
	assert.True(t, c.IsVisible("root-A-0"), "the toggled node stays visible")
	assert.False(t, c.IsVisible("root-A-0-B-1"))
	assert.False(t, c.IsVisible("root-A-0-B-1-C-2"))

	assert.Equal(t, Expanded, c.Toggle("root-A-0"))
	assert.True(t, c.IsVisible("root-A-0-B-1"))
	assert.False(t, c.IsVisible("root-A-0-B-1-C-2"), "expansion reveals one level")

	assert.Equal(t, Expanded, c.Toggle("root-A-0-B-1"))
	assert.True(t, c.IsVisible("root-A-0-B-1-C-2"))
	assert.Equal(t, 5, c.Visible().Len())
}

func TestToggleLeafAndUnknown(t *testing.T) {
	c := NewController(sampleTree(), 2)
	before := c.Visible()

	assert.Equal(t, Collapsed, c.Toggle("root-A-0-B-1-C-2"))
	assert.True(t, before.Equal(c.Visible()), "a leaf has nothing to collapse")

	assert.Equal(t, NoOp, c.Toggle("root-Q-0"))
	assert.True(t, before.Equal(c.Visible()))
}

func TestToggleRoot(t *testing.T) {
	c := NewController(sampleTree(), 2)

	assert.Equal(t, Expanded, c.Toggle(tree.RootID))
	assert.True(t, c.IsVisible("root-C-0"))
	assert.False(t, c.IsVisible("root-C-0-D-1"))

	assert.Equal(t, Collapsed, c.Toggle(tree.RootID))
	assert.Zero(t, c.Visible().Len())
	assert.Equal(t, 1, c.View().Size())
}

func TestSelectPattern(t *testing.T) {
	c := NewController(sampleTree(), 0)

	ids := c.SelectPattern([]string{"C", "D"})

	assert.Equal(t, []string{"root-C-0", "root-C-0-D-1"}, ids)
	assert.Equal(t, []string{"root-C-0", "root-C-0-D-1"}, c.Visible().IDs())
	assert.Equal(t, []string{"C", "D"}, c.Highlight())

	v := c.View()
	require.Len(t, v.Children, 1)
	assert.True(t, v.Children[0].Highlighted)
	assert.True(t, v.Children[0].Children[0].Highlighted)
}

func TestSelectPatternPrefixOnly(t *testing.T) {
	c := NewController(sampleTree(), 0)

	ids := c.SelectPattern([]string{"A", "Q"})

	assert.Equal(t, []string{"root-A-0"}, ids)
	assert.True(t, c.IsVisible("root-A-0"))
	assert.Equal(t, []string{"A", "Q"}, c.Highlight())
	assert.False(t, c.View().Children[0].Highlighted, "an incomplete chain is not lit")
}

func TestSelectPatternNeverHides(t *testing.T) {
	c := NewController(sampleTree(), 2)
	before := c.Visible()

	c.SelectPattern([]string{"A", "B"})

	for _, id := range before.IDs() {
		assert.True(t, c.IsVisible(id), id)
	}

	c.ClearSelection()
	assert.Empty(t, c.Highlight())
	assert.True(t, before.Equal(c.Visible()))
}

func TestRebuild(t *testing.T) {
	t.Run("surviving ids are kept", func(t *testing.T) {
		c := NewController(sampleTree(), 2)
		c.Toggle("root-A-0")

		c.Rebuild(tree.Build([]models.PatternRecord{chain(3, "A", "B"), chain(2, "B", "C")}, nil))

		assert.Equal(t, []string{"root-A-0", "root-B-0", "root-B-0-C-1"}, c.Visible().IDs())
		assert.Equal(t, 5, c.Tree().Len())
	})

	t.Run("no survivors falls back to the initial rule", func(t *testing.T) {
		c := NewController(sampleTree(), 1)

		c.Rebuild(tree.Build([]models.PatternRecord{chain(4, "E", "F"), chain(2, "G")}, nil))

		assert.Equal(t, []string{"root-E-0", "root-E-0-F-1"}, c.Visible().IDs())
	})
}

func TestResetAndExpandAll(t *testing.T) {
	c := NewController(sampleTree(), 2)
	initial := c.Visible()

	c.ExpandAll()
	assert.Equal(t, 7, c.Visible().Len())
	assert.Equal(t, 8, c.View().Size())

	c.SelectPattern([]string{"C"})
	c.Reset()
	assert.True(t, initial.Equal(c.Visible()))
	assert.Empty(t, c.Highlight())
}

func TestSnapshotRestore(t *testing.T) {
	c := NewController(sampleTree(), 2)
	c.Toggle("root-A-0")
	c.SelectPattern([]string{"B"})

	snap := c.Snapshot()
	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, []string{"root-A-0", "root-B-0", "root-B-0-C-1"}, snap.Visible)
	assert.Equal(t, []string{"B"}, snap.Highlight)
	assert.False(t, snap.SavedAt.IsZero())

	other := NewController(sampleTree(), 2)
	require.True(t, other.Restore(snap))
	assert.True(t, c.Visible().Equal(other.Visible()))
	assert.Equal(t, []string{"B"}, other.Highlight())
}

func TestRestoreStaleOrForeignSnapshot(t *testing.T) {
	c := NewController(sampleTree(), 2)
	initial := c.Visible()

	assert.False(t, c.Restore(Snapshot{Version: SnapshotVersion, Visible: []string{"root-Q-0"}}))
	assert.True(t, initial.Equal(c.Visible()))

	c.SelectPattern([]string{"A", "B"})
	assert.False(t, c.Restore(Snapshot{Version: SnapshotVersion, Visible: []string{"root-Q-0"}, Highlight: []string{"Q", "R"}}))
	assert.Empty(t, c.Highlight(), "a fallback restore starts without a highlight")
	assert.True(t, initial.Equal(c.Visible()))

	c.Toggle("root-A-0")
	collapsed := c.Visible()
	assert.False(t, c.Restore(Snapshot{Version: SnapshotVersion + 1, Visible: []string{"root-C-0"}}))
	assert.True(t, collapsed.Equal(c.Visible()), "foreign versions are ignored")
}

func TestControllerConcurrentUse(t *testing.T) {
	c := NewController(sampleTree(), 2)
	ids := c.Tree().IDs()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Toggle(ids[(i+j)%len(ids)])
				c.SelectPattern([]string{"A", "B"})
				_ = c.View()
				_ = c.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	for _, id := range c.Visible().IDs() {
		assert.True(t, c.Tree().Has(id))
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "expanded", Expanded.String())
	assert.Equal(t, "collapsed", Collapsed.String())
	assert.Equal(t, "noop", NoOp.String())
}
