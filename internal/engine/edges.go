package engine

import "github.com/smilemakc/bars/internal/domain"

// State is the live, mutable per-aerodrome state the edge evaluator,
// route solver, and cascade all read and write: the active profile,
// and the dual-state cells for every node and block. The aerodrome
// façade owns one of these; engine functions are free functions over
// it so the algorithms stay independently testable.
type State struct {
	Profile int

	Nodes  []domain.DualState[bool]
	Blocks []domain.DualState[domain.BlockState]

	// NodeTimers and BlockTimers are flat, roughly deadline-ordered
	// lists (§4.7); Tick drains both from the head while due.
	NodeTimers  []NodeTimer
	BlockTimers []BlockTimer

	// PrevEdges is the edge-state vector as of the previous tick, used
	// by the patch buffer to detect which edges changed (§4.3).
	PrevEdges []domain.EdgeState
}

// NodeTimer re-raises a Direct node to true once Deadline (unix
// seconds) has passed.
type NodeTimer struct {
	Node     domain.NodeRef
	Deadline int64
}

// BlockTimer resets a block to Clear once Deadline (unix seconds) has
// passed.
type BlockTimer struct {
	Block    domain.BlockRef
	Deadline int64
}

// NodeState returns a node's effective lit/unlit value under the
// active profile (§4.8).
func NodeState(cfg *domain.Aerodrome, idx *Index, st *State, n domain.NodeRef) domain.NodeState {
	cond := cfg.Profiles[st.Profile].Nodes[n.Int()]

	switch cond.Kind {
	case domain.NodeFixed:
		return cond.FixedState
	case domain.NodeDirect:
		return domain.NodeState(st.Nodes[n.Int()].Effective())
	default: // NodeRouter
		blocks := idx.NodeBlocks[n]
		for _, b := range blocks {
			bs := st.Blocks[b.Int()].Effective()
			switch bs.Kind {
			case domain.BlockClear:
				return domain.NodeOn
			case domain.BlockRelax:
				continue
			default: // BlockRoute
				if bs.A != n && bs.B != n {
					return domain.NodeOn
				}
			}
		}
		return domain.NodeOff
	}
}

// routeCandidates returns every (a, b) pair of child nodes (or a parent
// acting as its own child) spanning the block's current Route
// endpoints, excluding pairs the block forbids (§4.5's candidates(b)).
func routeCandidates(cfg *domain.Aerodrome, idx *Index, st *State, block domain.BlockRef) []domain.BlockRoute {
	bs := st.Blocks[block.Int()].Effective()
	if bs.Kind != domain.BlockRoute {
		return nil
	}
	ap, bp := bs.A, bs.B

	ac := idx.Children[ap]
	if ac == nil {
		ac = []domain.NodeRef{ap}
	}
	bc := idx.Children[bp]
	if bc == nil {
		bc = []domain.NodeRef{bp}
	}

	nonRoutes := cfg.Blocks[block.Int()].NonRoutes

	var out []domain.BlockRoute
	for _, a := range ac {
		for _, b := range bc {
			forbidden := false
			for _, nr := range nonRoutes {
				if nr.From == a && nr.To == b {
					forbidden = true
					break
				}
			}
			if !forbidden {
				out = append(out, domain.BlockRoute{From: a, To: b})
			}
		}
	}
	return out
}

// EdgeEvaluator computes per-edge boolean state (§4.5), delegating
// Direct conditions to an ExprEvaluator.
type EdgeEvaluator struct {
	Expr *ExprEvaluator
}

// NewEdgeEvaluator creates an evaluator with its own expression cache.
func NewEdgeEvaluator() *EdgeEvaluator {
	return &EdgeEvaluator{Expr: NewExprEvaluator()}
}

// Evaluate computes edge e's boolean state under the active profile.
func (ev *EdgeEvaluator) Evaluate(cfg *domain.Aerodrome, idx *Index, st *State, e domain.EdgeRef) domain.EdgeState {
	cond := cfg.Profiles[st.Profile].Edges[e.Int()]

	switch cond.Kind {
	case domain.EdgeFixed:
		return cond.FixedState

	case domain.EdgeDirect:
		state, err := ev.Expr.Evaluate(st.Profile, e, cond.Expression, func(n domain.NodeRef) domain.NodeState {
			return NodeState(cfg, idx, st, n)
		})
		if err != nil {
			// Malformed expressions can't occur from a well-formed
			// config; treat as Off rather than panicking the tick loop.
			return domain.EdgeOff
		}
		return state

	default: // EdgeRouter
		return ev.evaluateRouter(cfg, idx, st, cond)
	}
}

func (ev *EdgeEvaluator) evaluateRouter(cfg *domain.Aerodrome, idx *Index, st *State, cond domain.EdgeCondition) domain.EdgeState {
	bs := st.Blocks[cond.Block.Int()].Effective()

	switch bs.Kind {
	case domain.BlockClear:
		return domain.EdgeOff
	case domain.BlockRelax:
		return domain.EdgeOn
	}

	ap, bp := bs.A, bs.B
	cands := routeCandidates(cfg, idx, st, cond.Block)

	switch len(cands) {
	case 0:
		return domain.EdgeOff
	case 1:
		c := cands[0]
		for _, r := range cond.Routes {
			if r == c {
				return domain.EdgeOn
			}
		}
		return domain.EdgeOff
	}

	// This heuristic works for the common topologies only; see §4.5/§9.
	matchesFrom := make(map[domain.NodeRef]bool, len(cond.Routes))
	matchesTo := make(map[domain.NodeRef]bool, len(cond.Routes))
	for _, r := range cond.Routes {
		matchesFrom[r.From] = true
		matchesTo[r.To] = true
	}

	candFrom := make(map[domain.NodeRef]bool, len(cands))
	candTo := make(map[domain.NodeRef]bool, len(cands))
	for _, c := range cands {
		candFrom[c.From] = true
		candTo[c.To] = true
	}

	restrict := func(parent domain.NodeRef, candSet map[domain.NodeRef]bool, pickFrom bool) {
		nb := idx.NodeBlocks[parent]
		adjacent := nb[0]
		if adjacent == cond.Block {
			adjacent = nb[1]
		}

		abs := st.Blocks[adjacent.Int()].Effective()
		switch abs.Kind {
		case domain.BlockClear:
			// no restriction
		case domain.BlockRelax:
			for k := range candSet {
				delete(candSet, k)
			}
		default: // BlockRoute
			points := routeCandidates(cfg, idx, st, adjacent)
			for k := range candSet {
				delete(candSet, k)
			}
			if abs.A == parent {
				for _, p := range points {
					candSet[p.From] = true
				}
			} else if abs.B == parent {
				for _, p := range points {
					candSet[p.To] = true
				}
			}
		}
	}

	restrict(ap, candFrom, true)
	restrict(bp, candTo, false)

	for k := range candFrom {
		if !matchesFrom[k] {
			return domain.EdgeOff
		}
	}
	for k := range candTo {
		if !matchesTo[k] {
			return domain.EdgeOff
		}
	}
	return domain.EdgeOn
}

// CalculateEdges computes the full per-tick edge-state vector.
func (ev *EdgeEvaluator) CalculateEdges(cfg *domain.Aerodrome, idx *Index, st *State) []domain.EdgeState {
	out := make([]domain.EdgeState, len(cfg.Edges))
	for i := range cfg.Edges {
		out[i] = ev.Evaluate(cfg, idx, st, domain.EdgeRef(i))
	}
	return out
}
