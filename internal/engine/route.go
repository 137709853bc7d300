package engine

import (
	"github.com/smilemakc/bars/internal/domain"
)

// maxChainHops is the hard anti-loop guard on chain reconstruction
// (§4.6).
const maxChainHops = 1000

// RouteResult is what SolveRoute found: a chain of consecutive block
// assignments to commit, or a reason it couldn't.
type RouteResult struct {
	Assignments []RouteAssignment
	// Overflowed is true if the 1000-hop reconstruction guard tripped.
	Overflowed bool
	// Ambiguous is true if a non-terminal chain element was visited by
	// more than one path (§4.6's "routing error").
	Ambiguous bool
}

// RouteAssignment is one block that should be set to Route(from, to).
type RouteAssignment struct {
	Block domain.BlockRef
	From  domain.NodeRef
	To    domain.NodeRef
}

// OK reports whether the solve succeeded and produced assignments to
// commit.
func (r RouteResult) OK() bool {
	return !r.Overflowed && !r.Ambiguous && len(r.Assignments) > 0
}

type nodeSideKey struct {
	node domain.NodeRef
	side side
}

type queued struct {
	node     domain.NodeRef
	dir      side
	distance int
}

// SolveRoute runs the bidirectional side-aware BFS of §4.6 between two
// router nodes and returns the block-reservation chain to commit. It
// never mutates state; the caller (aerodrome façade) applies the
// result via the cascade.
func SolveRoute(cfg *domain.Aerodrome, idx *Index, st *State, orgn, dest domain.NodeRef) RouteResult {
	profile := cfg.Profiles[st.Profile]

	queue := []queued{
		{node: orgn, dir: sideA, distance: 0},
		{node: orgn, dir: sideB, distance: 0},
	}
	visited := map[nodeSideKey]bool{
		{orgn, sideA}: true,
		{orgn, sideB}: true,
	}
	chain := map[nodeSideKey]nodeSideKey{}
	revisited := map[nodeSideKey]bool{}

	var list []nodeSideKey

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		cond := profile.Nodes[item.node.Int()]
		if cond.IsFixed(domain.NodeOn) {
			continue
		}
		transparent := cond.IsFixed(domain.NodeOff)

		if item.node == dest {
			if list == nil {
				cur := nodeSideKey{item.node, item.dir}
				hops := 0
				for {
					list = append(list, cur)
					hops++
					if hops > maxChainHops {
						return RouteResult{Overflowed: true}
					}
					prev, ok := chain[cur]
					if !ok {
						break
					}
					cur = prev
				}
				if item.distance > 1 {
					continue
				}
				break
			}
			return RouteResult{Ambiguous: true}
		}

		for _, c := range idx.NodeConns[item.node][boolIndex(item.dir)] {
			nextKey := nodeSideKey{node: c.node, side: !c.side}
			dist := item.distance
			if !transparent {
				dist++
			}
			next := queued{node: c.node, dir: !c.side, distance: dist}

			if !visited[nextKey] {
				visited[nextKey] = true
				chain[nextKey] = nodeSideKey{item.node, item.dir}
				if transparent {
					queue = append([]queued{next}, queue...)
				} else {
					queue = append(queue, next)
				}
			} else {
				revisited[nextKey] = true
			}
		}
	}

	if list == nil {
		return RouteResult{}
	}

	for _, key := range list[:len(list)-1] {
		if revisited[key] {
			return RouteResult{Ambiguous: true}
		}
	}

	// list runs dest -> ... -> origin; consecutive pairs (node2, node1)
	// name the block on node1's side as Route(node1, node2).
	var assignments []RouteAssignment
	for i := 0; i < len(list)-1; i++ {
		node2 := list[i].node
		node1 := list[i+1].node
		dir1 := list[i+1].side

		block := idx.NodeBlocks[node1][boolIndex(dir1)]
		assignments = append(assignments, RouteAssignment{Block: block, From: node1, To: node2})
	}

	return RouteResult{Assignments: assignments}
}

func boolIndex(s side) int {
	if s {
		return 1
	}
	return 0
}
