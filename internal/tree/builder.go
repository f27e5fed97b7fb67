package tree

import (
	"github.com/harrison/teachtree/internal/models"
)

// Namer resolves an abbreviation to its display label
type Namer interface {
	FullName(abbr string) string
}

// childKey identifies a child by parent and abbreviation
type childKey struct {
	parent int
	abbr   string
}

// Builder inserts mined patterns into a shared-prefix tree
type Builder struct {
	namer Namer
}

// NewBuilder creates a builder. A nil namer labels nodes with their abbreviation.
func NewBuilder(namer Namer) *Builder {
	return &Builder{namer: namer}
}

// Build aggregates patterns into a new tree. Insertion order only affects
// child order; counts, scores and distributions do not depend on it.
// An empty pattern list yields a root with no children.
func (b *Builder) Build(patterns []models.PatternRecord) *Tree {
	t := newTree(len(patterns))
	children := make(map[childKey]int)

	for _, p := range patterns {
		current := RootIndex

		for depth, abbr := range p.Pattern {
			key := childKey{parent: current, abbr: abbr}
			child, ok := children[key]
			if !ok {
				child = t.addChild(current, abbr, b.label(abbr), depth+1)
				children[key] = child
			}

			node := &t.nodes[child]
			node.Count += p.Count
			if p.HasScore() {
				node.scoreTotal += p.Score() * float64(p.Count)
				node.scoreCount += p.Count
			}

			current = child
		}
	}

	t.enrich()
	return t
}

// Build is shorthand for NewBuilder(namer).Build(patterns)
func Build(patterns []models.PatternRecord, namer Namer) *Tree {
	return NewBuilder(namer).Build(patterns)
}

func (b *Builder) label(abbr string) string {
	if b.namer == nil {
		return abbr
	}
	return b.namer.FullName(abbr)
}

func (t *Tree) addChild(parent int, abbr, label string, depth int) int {
	id := childID(t.nodes[parent].ID, abbr, depth)
	t.nodes = append(t.nodes, Node{
		ID:     id,
		Abbr:   abbr,
		Label:  label,
		Depth:  depth,
		Parent: parent,
	})

	i := len(t.nodes) - 1
	t.nodes[parent].Children = append(t.nodes[parent].Children, i)
	t.index[id] = i
	return i
}

// enrich computes the weighted average score and the child distribution of
// every node. Arena order needs no recursion.
func (t *Tree) enrich() {
	for i := range t.nodes {
		node := &t.nodes[i]

		if node.scoreCount > 0 {
			avg := node.scoreTotal / float64(node.scoreCount)
			node.AvgScore = &avg
		}

		if len(node.Children) == 0 {
			continue
		}

		total := 0
		for _, c := range node.Children {
			total += t.nodes[c].Count
		}

		node.ChildDistribution = make([]models.Share, len(node.Children))
		for k, c := range node.Children {
			share := models.Share{Abbr: t.nodes[c].Abbr, Count: t.nodes[c].Count}
			if total > 0 {
				share.Percentage = float64(t.nodes[c].Count) / float64(total) * 100
			}
			node.ChildDistribution[k] = share
		}
	}
}
