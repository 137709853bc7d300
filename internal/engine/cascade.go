package engine

import "github.com/smilemakc/bars/internal/domain"

// Buffer is the accumulating patch/scenery state (§4.3) that the
// operator-command functions below write into; the aerodrome façade
// owns one alongside its State and flushes it each tick via
// TakePending.
type Buffer struct {
	ProfilePending bool
	ProfileID      string

	NodePatch  map[domain.NodeRef]bool
	BlockPatch map[domain.BlockRef]domain.BlockState

	// PendingNodes is the touched-node list in insertion order;
	// duplicates are allowed and expected.
	PendingNodes []domain.NodeRef
}

// NewBuffer returns an empty patch/scenery buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		NodePatch:  make(map[domain.NodeRef]bool),
		BlockPatch: make(map[domain.BlockRef]domain.BlockState),
	}
}

func (b *Buffer) touchNode(n domain.NodeRef, v bool) {
	b.NodePatch[n] = v
	b.PendingNodes = append(b.PendingNodes, n)
}

func (b *Buffer) touchBlock(bl domain.BlockRef, v domain.BlockState) {
	b.BlockPatch[bl] = v
}

func (b *Buffer) reset() {
	b.ProfilePending = false
	b.ProfileID = ""
	b.NodePatch = make(map[domain.NodeRef]bool)
	b.BlockPatch = make(map[domain.BlockRef]domain.BlockState)
	b.PendingNodes = nil
}

// SetNode implements the operator command of the same name (§4.4): it
// only affects Direct nodes, predicts the value, and arms or clears
// the node's reset timer.
func SetNode(cfg *domain.Aerodrome, st *State, buf *Buffer, now int64, n domain.NodeRef, state bool) {
	cond := cfg.Profiles[st.Profile].Nodes[n.Int()]
	if cond.Kind != domain.NodeDirect {
		return
	}

	cell := st.Nodes[n.Int()]
	cell.Predict(state)
	st.Nodes[n.Int()] = cell

	buf.touchNode(n, state)

	st.NodeTimers = removeNodeTimer(st.NodeTimers, n)
	if !state && !cond.Reset.None {
		st.NodeTimers = append(st.NodeTimers, NodeTimer{Node: n, Deadline: now + int64(cond.Reset.Seconds)})
	}
}

func removeNodeTimer(timers []NodeTimer, n domain.NodeRef) []NodeTimer {
	out := timers[:0]
	for _, t := range timers {
		if t.Node != n {
			out = append(out, t)
		}
	}
	return out
}

func removeBlockTimer(timers []BlockTimer, b domain.BlockRef) []BlockTimer {
	out := timers[:0]
	for _, t := range timers {
		if t.Block != b {
			out = append(out, t)
		}
	}
	return out
}

// SetBlock implements the operator command of the same name (§4.4/§4.7):
// a stack-based flood from b through every block reachable via a
// transparent (Fixed-Off) parent node, writing state to each block
// found along the way and arming a reset timer per block when the
// active profile's block condition specifies one and state isn't
// Clear.
func SetBlock(cfg *domain.Aerodrome, idx *Index, st *State, buf *Buffer, now int64, b domain.BlockRef, state domain.BlockState) {
	stack := []domain.BlockRef{b}
	visited := map[domain.BlockRef]bool{}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[cur] {
			continue
		}
		visited[cur] = true

		cell := st.Blocks[cur.Int()]
		cell.Predict(state)
		st.Blocks[cur.Int()] = cell
		buf.touchBlock(cur, state)

		cond := cfg.Profiles[st.Profile].Blocks[cur.Int()]
		st.BlockTimers = removeBlockTimer(st.BlockTimers, cur)
		if !state.Clear() && !cond.Reset.None {
			st.BlockTimers = append(st.BlockTimers, BlockTimer{Block: cur, Deadline: now + int64(cond.Reset.Seconds)})
		}

		for _, n := range cfg.Blocks[cur.Int()].Nodes {
			if !cfg.Profiles[st.Profile].Nodes[n.Int()].IsFixed(domain.NodeOff) {
				continue
			}
			for _, adj := range idx.NodeBlocks[n] {
				if adj != cur && !visited[adj] {
					stack = append(stack, adj)
				}
			}
		}
	}
}

// SetDefaultState implements §4.7's set_default_state: it resets every
// node and block to the active profile's default and, on a full
// refresh, populates the patch buffer so §4.3 emits every element.
func SetDefaultState(cfg *domain.Aerodrome, idx *Index, ev *EdgeEvaluator, st *State, buf *Buffer, fullRefresh bool) {
	profile := cfg.Profiles[st.Profile]

	for i, cond := range profile.Nodes {
		n := domain.NodeRef(i)
		var v bool
		switch cond.Kind {
		case domain.NodeFixed:
			v = bool(cond.FixedState)
		case domain.NodeDirect:
			v = !cond.Reset.None
		default:
			v = true
		}
		st.Nodes[i] = domain.DualState[bool]{Current: v}
		if fullRefresh {
			buf.touchNode(n, v)
		}
	}

	for i := range profile.Blocks {
		st.Blocks[i] = domain.DualState[domain.BlockState]{Current: domain.ClearState}
		if fullRefresh {
			buf.touchBlock(domain.BlockRef(i), domain.ClearState)
		}
	}

	if fullRefresh {
		buf.ProfilePending = true
		buf.ProfileID = profile.ID
		for i := range st.Nodes {
			buf.PendingNodes = append(buf.PendingNodes, domain.NodeRef(i))
		}
	} else {
		st.PrevEdges = ev.CalculateEdges(cfg, idx, st)
	}

	st.NodeTimers = nil
	st.BlockTimers = nil
}

// Tick drains both timer queues of entries whose deadline has passed,
// applying set_node(n, true) or set_block(b, Clear) respectively
// (§4.7). now is a unix-seconds timestamp supplied by the caller so
// the engine never reads the clock itself.
func Tick(cfg *domain.Aerodrome, idx *Index, st *State, buf *Buffer, now int64) {
	for len(st.NodeTimers) > 0 && st.NodeTimers[0].Deadline <= now {
		t := st.NodeTimers[0]
		st.NodeTimers = st.NodeTimers[1:]
		SetNode(cfg, st, buf, now, t.Node, true)
	}
	for len(st.BlockTimers) > 0 && st.BlockTimers[0].Deadline <= now {
		t := st.BlockTimers[0]
		st.BlockTimers = st.BlockTimers[1:]
		SetBlock(cfg, idx, st, buf, now, t.Block, domain.ClearState)
	}
}
