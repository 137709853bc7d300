package engine

import (
	stderrors "errors"

	"github.com/smilemakc/bars/internal/domain"
)

// ValidateParentTree checks the §3 invariant that the node parent
// relation is exactly one level deep: a child's parent must itself be
// a parent (no parent of its own), and no node may be its own parent.
// It rejects any chain longer than one hop while collecting the parent
// edges, then runs Kahn's algorithm over them as a general cycle check.
func ValidateParentTree(cfg *domain.Aerodrome) error {
	n := len(cfg.Nodes)

	indeg := make([]int, n)
	out := make([][]int, n)

	for i, node := range cfg.Nodes {
		if node.Parent == nil {
			continue
		}
		p := node.Parent.Int()
		if p < 0 || p >= n {
			return stderrors.New("node parent index out of range")
		}
		if p == i {
			return stderrors.New("node cannot be its own parent")
		}
		if cfg.Nodes[p].Parent != nil {
			return stderrors.New("node parent tree deeper than one level")
		}
		out[p] = append(out[p], i)
		indeg[i]++
	}

	queue := make([]int, 0, n)
	for i, d := range indeg {
		if d == 0 {
			queue = append(queue, i)
		}
	}

	visited := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		visited++
		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if visited != n {
		return stderrors.New("node parent relation has a cycle")
	}
	return nil
}
