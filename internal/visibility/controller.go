// Package visibility tracks which aggregation-tree nodes are expanded.
//
// Every non-root node is either hidden or visible; the root is implicit and
// never part of the set. The Controller owns the one mutable set and
// serialises toggle, select, rebuild and restore behind a mutex so a
// concurrent caller cannot interleave a rebuild with an interaction.
package visibility

import (
	"sort"
	"sync"

	"github.com/harrison/teachtree/internal/tree"
)

// DefaultTopRoots is the number of highest-frequency root children expanded on load
const DefaultTopRoots = 2

// Action is the outcome of a toggle
type Action int

const (
	// NoOp means the id is unknown to the tree
	NoOp Action = iota
	// Expanded means the node's direct children were added
	Expanded
	// Collapsed means every descendant of the node was removed
	Collapsed
)

func (a Action) String() string {
	switch a {
	case Expanded:
		return "expanded"
	case Collapsed:
		return "collapsed"
	default:
		return "noop"
	}
}

// Controller is the visibility state machine over one tree
type Controller struct {
	mu        sync.Mutex
	tree      *tree.Tree
	visible   Set
	highlight []string
	topRoots  int
}

// NewController creates a controller in the initial state.
// A negative topRoots uses DefaultTopRoots.
func NewController(t *tree.Tree, topRoots int) *Controller {
	if topRoots < 0 {
		topRoots = DefaultTopRoots
	}
	return &Controller{
		tree:     t,
		visible:  InitialVisible(t, topRoots),
		topRoots: topRoots,
	}
}

// InitialVisible returns the top-k root children by count (first-seen order
// for ties) together with all of their descendants.
func InitialVisible(t *tree.Tree, k int) Set {
	visible := make(Set)

	roots := append([]int(nil), t.Root().Children...)
	sort.SliceStable(roots, func(i, j int) bool {
		return t.Node(roots[i]).Count > t.Node(roots[j]).Count
	})
	if k < len(roots) {
		roots = roots[:k]
	}

	for _, r := range roots {
		t.Walk(r, func(i int) bool {
			visible.Add(t.Node(i).ID)
			return true
		})
	}
	return visible
}

// Tree returns the current tree
func (c *Controller) Tree() *tree.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

// Toggle collapses id when all of its direct children are visible (removing
// every descendant, id itself stays) and otherwise expands it by one level.
// A node without children counts as fully expanded, so toggling it changes
// nothing.
func (c *Controller) Toggle(id string) Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.tree.Lookup(id)
	if !ok {
		return NoOp
	}
	node := c.tree.Node(i)

	allVisible := true
	for _, child := range node.Children {
		if !c.visible.Contains(c.tree.Node(child).ID) {
			allVisible = false
			break
		}
	}

	if allVisible {
		for _, d := range c.tree.Descendants(i) {
			c.visible.Remove(c.tree.Node(d).ID)
		}
		return Collapsed
	}

	for _, child := range node.Children {
		c.visible.Add(c.tree.Node(child).ID)
	}
	return Expanded
}

// SelectPattern reveals every node on the matched prefix of abbrs in the
// full tree and makes abbrs the highlight path. Nothing is ever hidden.
// It returns the ids that were matched.
func (c *Controller) SelectPattern(abbrs []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := c.tree.FindPathNodeIDs(abbrs)
	for _, id := range ids {
		c.visible.Add(id)
	}
	c.highlight = append([]string(nil), abbrs...)
	return ids
}

// ClearSelection drops the highlight path, leaving visibility untouched
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.highlight = nil
}

// Highlight returns a copy of the highlight path
func (c *Controller) Highlight() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.highlight...)
}

// Rebuild swaps in a new tree. Visible ids that still exist are kept; if none
// survive the initial rule is reapplied.
func (c *Controller) Rebuild(t *tree.Tree) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tree = t
	c.visible = c.retain(c.visible.IDs())
}

// retain keeps the ids present in the current tree, falling back to the
// initial set when the intersection is empty. Callers hold mu.
func (c *Controller) retain(ids []string) Set {
	kept := make(Set)
	for _, id := range ids {
		if id != tree.RootID && c.tree.Has(id) {
			kept.Add(id)
		}
	}
	if kept.Len() == 0 {
		return InitialVisible(c.tree, c.topRoots)
	}
	return kept
}

// Reset returns to the initial state and clears the highlight
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = InitialVisible(c.tree, c.topRoots)
	c.highlight = nil
}

// ExpandAll makes every node visible
func (c *Controller) ExpandAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = NewSet(c.tree.IDs()...)
}

// Visible returns a copy of the visible set
func (c *Controller) Visible() Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible.Clone()
}

// IsVisible reports whether id is visible
func (c *Controller) IsVisible(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible.Contains(id)
}

// View returns the renderer-facing filtered tree for the current state
func (c *Controller) View() *tree.ViewNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tree.Filter(c.tree, c.visible, c.highlight)
}
