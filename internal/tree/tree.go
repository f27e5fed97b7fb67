// Package tree aggregates mined behaviour chains into a shared-prefix tree.
//
// Nodes live in a contiguous arena addressed by integer index, with a
// separate id -> index lookup. Node ids are derived from the path alone
// ("root-TQ-0-SS-1"), so rebuilding from the same patterns yields the same
// ids and visibility state survives a rebuild.
package tree

import (
	"fmt"

	"github.com/harrison/teachtree/internal/models"
)

// Root sentinel
const (
	RootID    = "root"
	RootAbbr  = "ROOT"
	RootLabel = "根节点"
	RootIndex = 0
)

// Node is one aggregation node of the tree
type Node struct {
	ID                string         `json:"id"`
	Abbr              string         `json:"abbr"`
	Label             string         `json:"label"`
	Count             int            `json:"count"`
	Depth             int            `json:"depth"`
	Parent            int            `json:"-"` // -1 for the root
	Children          []int          `json:"-"` // arena indexes, first-seen order
	AvgScore          *float64       `json:"avg_score,omitempty"`
	ChildDistribution []models.Share `json:"child_distribution,omitempty"`

	scoreTotal float64 // Σ score*count
	scoreCount int     // Σ count over scored patterns
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is an arena of nodes; index 0 is the root
type Tree struct {
	nodes []Node
	index map[string]int
}

// childID derives a node id from its parent id, abbreviation and depth
func childID(parentID, abbr string, depth int) string {
	return fmt.Sprintf("%s-%s-%d", parentID, abbr, depth-1)
}

func newTree(patternCount int) *Tree {
	t := &Tree{
		nodes: []Node{{
			ID:     RootID,
			Abbr:   RootAbbr,
			Label:  RootLabel,
			Count:  patternCount,
			Depth:  0,
			Parent: -1,
		}},
		index: map[string]int{RootID: RootIndex},
	}
	return t
}

// Root returns the root sentinel
func (t *Tree) Root() *Node {
	return &t.nodes[RootIndex]
}

// Node returns the node at arena index i
func (t *Tree) Node(i int) *Node {
	return &t.nodes[i]
}

// Len returns the number of nodes including the root
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Lookup returns the arena index for id
func (t *Tree) Lookup(id string) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// Get returns the node with id, or nil
func (t *Tree) Get(id string) *Node {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	return &t.nodes[i]
}

// Has reports whether id names a node of the tree
func (t *Tree) Has(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Child returns the index of the child of parent with abbr
func (t *Tree) Child(parent int, abbr string) (int, bool) {
	for _, c := range t.nodes[parent].Children {
		if t.nodes[c].Abbr == abbr {
			return c, true
		}
	}
	return 0, false
}

// Walk visits nodes below start in pre-order (children in first-seen order),
// start included. Returning false from fn skips the node's subtree.
// The traversal uses an explicit stack.
func (t *Tree) Walk(start int, fn func(i int) bool) {
	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(i) {
			continue
		}
		children := t.nodes[i].Children
		for c := len(children) - 1; c >= 0; c-- {
			stack = append(stack, children[c])
		}
	}
}

// Descendants returns the indexes of every node strictly below i, pre-order
func (t *Tree) Descendants(i int) []int {
	var out []int
	t.Walk(i, func(j int) bool {
		if j != i {
			out = append(out, j)
		}
		return true
	})
	return out
}

// IDs returns every non-root id in pre-order
func (t *Tree) IDs() []string {
	ids := make([]string, 0, len(t.nodes)-1)
	for _, i := range t.Descendants(RootIndex) {
		ids = append(ids, t.nodes[i].ID)
	}
	return ids
}

// Path returns the abbreviations from the root down to node i (root excluded)
func (t *Tree) Path(i int) []string {
	var rev []string
	for j := i; j > RootIndex; j = t.nodes[j].Parent {
		rev = append(rev, t.nodes[j].Abbr)
	}

	path := make([]string, len(rev))
	for k := range rev {
		path[k] = rev[len(rev)-1-k]
	}
	return path
}
