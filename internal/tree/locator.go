package tree

import (
	"github.com/harrison/teachtree/internal/models"
)

// FindPath matches abbrs against the tree from the root and returns the
// arena indexes of the matched prefix. A chain that leaves the tree early
// yields the strict prefix that was found; an unmatched first step yields
// an empty slice.
func (t *Tree) FindPath(abbrs []string) []int {
	path := make([]int, 0, len(abbrs))
	current := RootIndex
	for _, abbr := range abbrs {
		child, ok := t.Child(current, abbr)
		if !ok {
			break
		}
		path = append(path, child)
		current = child
	}
	return path
}

// FindPathNodeIDs returns the ids of the nodes on the matched prefix of abbrs
func (t *Tree) FindPathNodeIDs(abbrs []string) []string {
	path := t.FindPath(abbrs)
	ids := make([]string, len(path))
	for k, i := range path {
		ids[k] = t.nodes[i].ID
	}
	return ids
}

// LeafPaths returns every root-to-leaf abbreviation chain in pre-order
func (t *Tree) LeafPaths() [][]string {
	var paths [][]string
	t.Walk(RootIndex, func(i int) bool {
		if i != RootIndex && t.nodes[i].IsLeaf() {
			paths = append(paths, t.Path(i))
		}
		return true
	})
	return paths
}

// ExtractRootToLeafPatterns keeps the patterns whose chain is a complete
// root-to-leaf path of the tree, ordered by length then count (descending).
// Chains that only reach an inner node are not returned.
func (t *Tree) ExtractRootToLeafPatterns(patterns []models.PatternRecord) []models.PatternRecord {
	leaves := make(map[string]bool)
	for _, path := range t.LeafPaths() {
		leaves[models.JoinPattern(path)] = true
	}

	out := make([]models.PatternRecord, 0)
	for _, p := range patterns {
		if leaves[p.Key()] {
			out = append(out, p)
		}
	}

	models.SortPatterns(out)
	return out
}
