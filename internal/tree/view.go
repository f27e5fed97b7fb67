package tree

import (
	"github.com/harrison/teachtree/internal/models"
)

// Membership reports whether a node id is currently visible
type Membership interface {
	Contains(id string) bool
}

// ViewNode is the renderer-facing copy of a visible node
type ViewNode struct {
	ID                string         `json:"id"`
	Abbr              string         `json:"abbr"`
	Label             string         `json:"label"`
	Count             int            `json:"count"`
	Depth             int            `json:"depth"`
	Pattern           string         `json:"pattern,omitempty"` // Root-to-node chain
	AvgScore          *float64       `json:"avg_score,omitempty"`
	ChildDistribution []models.Share `json:"child_distribution,omitempty"`
	Leaf              bool           `json:"leaf"`        // No children in the full tree
	Collapsible       bool           `json:"collapsible"` // Some children are hidden
	Highlighted       bool           `json:"highlighted"`
	Style             Style          `json:"style"`
	Children          []*ViewNode    `json:"children,omitempty"`
}

// Filter derives the subtree of visible nodes plus the root, keeping
// parent/child order. A hidden node hides its whole subtree. Nodes are
// highlighted only when the complete highlight chain is visible.
func Filter(t *Tree, visible Membership, highlight []string) *ViewNode {
	lit := make(map[int]bool)
	if len(highlight) > 0 {
		path := t.FindPath(highlight)
		complete := len(path) == len(highlight)
		for _, i := range path {
			if !visible.Contains(t.nodes[i].ID) {
				complete = false
				break
			}
		}
		if complete {
			for _, i := range path {
				lit[i] = true
			}
		}
	}

	return t.viewNode(RootIndex, visible, lit)
}

// viewNode recurses at most MaxPatternLength levels deep
func (t *Tree) viewNode(i int, visible Membership, lit map[int]bool) *ViewNode {
	n := &t.nodes[i]
	v := &ViewNode{
		ID:                n.ID,
		Abbr:              n.Abbr,
		Label:             n.Label,
		Count:             n.Count,
		Depth:             n.Depth,
		AvgScore:          n.AvgScore,
		ChildDistribution: n.ChildDistribution,
		Leaf:              n.IsLeaf(),
		Highlighted:       lit[i],
		Style:             styleFor(n, lit[i]),
	}
	if i != RootIndex {
		v.Pattern = models.JoinPattern(t.Path(i))
	}

	for _, c := range n.Children {
		if !visible.Contains(t.nodes[c].ID) {
			v.Collapsible = true
			continue
		}
		v.Children = append(v.Children, t.viewNode(c, visible, lit))
	}
	return v
}

// Size returns the number of nodes in the view, root included
func (v *ViewNode) Size() int {
	if v == nil {
		return 0
	}
	total := 1
	for _, c := range v.Children {
		total += c.Size()
	}
	return total
}
