package engine

import "github.com/smilemakc/bars/internal/domain"

// Patch is the outbound optimistic-state message mirrored from the
// accumulated Buffer: which profile (if any), and which nodes/blocks
// this tick touched.
type Patch struct {
	ProfilePending bool
	ProfileID      string

	Nodes  map[domain.NodeRef]bool
	Blocks map[domain.BlockRef]domain.BlockState
}

// Scenery is the element-id -> boolean diff to hand the renderer.
type Scenery map[domain.ElementRef]bool

// TakePending computes and returns the (Patch, Scenery) pair for this
// tick and clears the buffer (§4.3). cfg/idx/st/ev are needed to
// compute element values; elementValue resolves an Element's
// condition to its current boolean.
func TakePending(cfg *domain.Aerodrome, idx *Index, ev *EdgeEvaluator, st *State, buf *Buffer) (Patch, Scenery) {
	patch := Patch{
		ProfilePending: buf.ProfilePending,
		ProfileID:      buf.ProfileID,
		Nodes:          buf.NodePatch,
		Blocks:         buf.BlockPatch,
	}

	scenery := make(Scenery)

	curEdges := ev.CalculateEdges(cfg, idx, st)

	if buf.ProfilePending {
		for i, elem := range cfg.Elements {
			scenery[domain.ElementRef(i)] = elementValue(cfg, idx, ev, st, curEdges, elem)
		}
	} else {
		seen := make(map[domain.NodeRef]bool, len(buf.PendingNodes))
		for _, n := range buf.PendingNodes {
			if seen[n] {
				continue
			}
			seen[n] = true
			for _, eref := range idx.NodeDependencies[n] {
				scenery[eref] = elementValue(cfg, idx, ev, st, curEdges, cfg.Elements[eref.Int()])
			}
		}

		for i, cur := range curEdges {
			var prev domain.EdgeState
			if i < len(st.PrevEdges) {
				prev = st.PrevEdges[i]
			}
			if cur == prev {
				continue
			}
			for _, eref := range idx.EdgeDependencies[domain.EdgeRef(i)] {
				scenery[eref] = elementValue(cfg, idx, ev, st, curEdges, cfg.Elements[eref.Int()])
			}
		}
	}

	st.PrevEdges = curEdges
	buf.reset()

	return patch, scenery
}

func elementValue(cfg *domain.Aerodrome, idx *Index, ev *EdgeEvaluator, st *State, curEdges []domain.EdgeState, elem domain.Element) bool {
	switch elem.Condition.Kind {
	case domain.ElementFixed:
		return elem.Condition.Fixed
	case domain.ElementNode:
		return bool(NodeState(cfg, idx, st, elem.Condition.Node))
	default: // ElementEdge
		e := elem.Condition.Edge
		if e.Int() < len(curEdges) {
			return bool(curEdges[e.Int()])
		}
		return bool(ev.Evaluate(cfg, idx, st, e))
	}
}
