// Package engine is the per-aerodrome state engine: derived index
// tables (C3), the edge evaluator (C5), the route solver (C6), the
// block cascade and reset timers (C7), and the patch/scenery buffer
// (C4). Everything here is built once from an immutable
// domain.Aerodrome and is otherwise a pure function of the dual-state
// cells the aerodrome façade owns.
package engine

import "github.com/smilemakc/bars/internal/domain"

// side identifies which of a parent node's (at most two) block
// attachments a connection belongs to.
type side = bool

const (
	sideA side = false
	sideB side = true
)

// conn is one entry of a node-side adjacency list: the peer parent
// node and which of the peer's sides it was reached on.
type conn struct {
	node domain.NodeRef
	side side
}

// Index holds every lookup table derived once from an Aerodrome's
// configuration (§4.2). It never changes after construction.
type Index struct {
	// Children maps a parent node to its child nodes.
	Children map[domain.NodeRef][]domain.NodeRef

	// NodeBlocks maps a parent node to the (at most two) blocks it
	// belongs to; unused slots repeat the first block found, mirroring
	// the original's fixed [usize; 2] array semantics. The route solver
	// never reads a single-sided node's second slot, because traversal
	// of side B on such a node finds no connections; NodeState and the
	// router-edge evaluator do read it and see the same block twice.
	NodeBlocks map[domain.NodeRef][2]domain.BlockRef

	// NodeConns maps a (parent node, side) pair to the peer connections
	// reachable from it, already filtered against the owning block's
	// NonRoutes.
	NodeConns map[domain.NodeRef][2][]conn

	// NodeDependencies maps a node to the elements whose condition
	// reads it.
	NodeDependencies map[domain.NodeRef][]domain.ElementRef

	// EdgeDependencies maps an edge to the elements whose condition
	// reads it.
	EdgeDependencies map[domain.EdgeRef][]domain.ElementRef

	// NodeByID and BlockByID resolve the wire-form string ids used by
	// server patches (§4.9) and the façade's operator commands back to
	// indices.
	NodeByID  map[string]domain.NodeRef
	BlockByID map[string]domain.BlockRef
	// ProfileByID resolves a profile id to its index in Aerodrome.Profiles.
	ProfileByID map[string]int
}

// Build derives all index tables from an aerodrome's static
// configuration. It is called once, at aerodrome construction.
func Build(cfg *domain.Aerodrome) *Index {
	idx := &Index{
		Children:         make(map[domain.NodeRef][]domain.NodeRef),
		NodeBlocks:       make(map[domain.NodeRef][2]domain.BlockRef),
		NodeConns:        make(map[domain.NodeRef][2][]conn),
		NodeDependencies: make(map[domain.NodeRef][]domain.ElementRef),
		EdgeDependencies: make(map[domain.EdgeRef][]domain.ElementRef),
		NodeByID:         make(map[string]domain.NodeRef, len(cfg.Nodes)),
		BlockByID:        make(map[string]domain.BlockRef, len(cfg.Blocks)),
		ProfileByID:      make(map[string]int, len(cfg.Profiles)),
	}

	for i, node := range cfg.Nodes {
		idx.NodeByID[node.ID] = domain.NodeRef(i)
		if node.Parent != nil {
			idx.Children[*node.Parent] = append(idx.Children[*node.Parent], domain.NodeRef(i))
		}
	}

	for i, block := range cfg.Blocks {
		idx.BlockByID[block.ID] = domain.BlockRef(i)
	}

	for i, profile := range cfg.Profiles {
		idx.ProfileByID[profile.ID] = i
	}

	borders := make(map[domain.NodeRef]int, len(cfg.Nodes))

	for bi, block := range cfg.Blocks {
		blockRef := domain.BlockRef(bi)

		// pairs records every parent node in this block with whether it
		// had already appeared in an earlier block (its "border" slot).
		type nodeSide struct {
			node domain.NodeRef
			side side
		}
		pairs := make([]nodeSide, len(block.Nodes))
		for i, n := range block.Nodes {
			pairs[i] = nodeSide{node: n, side: borders[n] > 0}
		}

		for i, n := range block.Nodes {
			slot := borders[n]

			nb := idx.NodeBlocks[n]
			nb[1] = blockRef
			if slot < 2 {
				nb[slot] = blockRef
			}
			idx.NodeBlocks[n] = nb

			here := idx.NodeConns[n]
			var list []conn
			if slot < 2 {
				list = here[slot]
			}
			for j, other := range pairs {
				if j == i || other.node == n {
					continue
				}
				forbidden := false
				for _, nr := range block.NonRoutes {
					if nr.From == n && nr.To == other.node {
						forbidden = true
						break
					}
				}
				if forbidden {
					continue
				}
				list = append(list, conn{node: other.node, side: other.side})
			}
			if slot < 2 {
				here[slot] = list
				idx.NodeConns[n] = here
			}

			borders[n] = slot + 1
		}
	}

	for i, elem := range cfg.Elements {
		switch elem.Condition.Kind {
		case domain.ElementNode:
			n := elem.Condition.Node
			idx.NodeDependencies[n] = append(idx.NodeDependencies[n], domain.ElementRef(i))
		case domain.ElementEdge:
			e := elem.Condition.Edge
			idx.EdgeDependencies[e] = append(idx.EdgeDependencies[e], domain.ElementRef(i))
		}
	}

	return idx
}
