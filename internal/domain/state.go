package domain

// NodeState is the logical on/off value of a lighting node.
type NodeState bool

const (
	NodeOff NodeState = false
	NodeOn  NodeState = true
)

// EdgeState is the derived boolean value of a visual edge.
type EdgeState bool

const (
	EdgeOff EdgeState = false
	EdgeOn  EdgeState = true
)

// ResetCondition controls whether, and after how long, a Direct node or
// a Block automatically reverts once taken off its armed value.
type ResetCondition struct {
	// Seconds is the reset delay, used only when None is false. Go has
	// no sum type, so the None flag disambiguates "0 seconds" (a
	// degenerate but legal timer) from "never resets"; the zero value
	// ResetCondition{} is therefore a 0-second timer, not "no timer".
	None    bool
	Seconds uint32
}

// NoReset is the condition for an entity that never auto-resets.
var NoReset = ResetCondition{None: true}

// TimeSecs builds a reset condition that fires after d seconds.
func TimeSecs(d uint32) ResetCondition {
	return ResetCondition{None: false, Seconds: d}
}

// BlockStateKind discriminates a Block's mutually-exclusive states.
type BlockStateKind uint8

const (
	BlockClear BlockStateKind = iota
	BlockRelax
	BlockRoute
)

// BlockState is the routing state of a Block: Clear, Relax, or a
// reservation between two parent nodes.
type BlockState struct {
	Kind BlockStateKind
	// A, B are only meaningful when Kind == BlockRoute, and name the
	// parent nodes (not children) the reservation spans.
	A, B NodeRef
}

// Clear reports whether the state is BlockClear.
func (s BlockState) Clear() bool { return s.Kind == BlockClear }

// Route builds a Route(a, b) block state.
func Route(a, b NodeRef) BlockState { return BlockState{Kind: BlockRoute, A: a, B: b} }

// RelaxState is the Relax block state value.
var RelaxState = BlockState{Kind: BlockRelax}

// ClearState is the Clear block state value (the zero value).
var ClearState = BlockState{Kind: BlockClear}

// Equal reports whether two block states are the same value, including
// endpoint identity for Route states.
func (s BlockState) Equal(o BlockState) bool {
	if s.Kind != o.Kind {
		return false
	}
	if s.Kind != BlockRoute {
		return true
	}
	return s.A == o.A && s.B == o.B
}

// DualState holds a confirmed current value alongside an optimistic
// pending prediction awaiting server confirmation (§4.1).
type DualState[T any] struct {
	Current T
	Pending *T
}

// Effective returns the pending value if set, else the current value.
func (d DualState[T]) Effective() T {
	if d.Pending != nil {
		return *d.Pending
	}
	return d.Current
}

// Predict sets the pending value to v.
func (d *DualState[T]) Predict(v T) {
	d.Pending = &v
}

// CommitServer applies a server-confirmed current value. If pending
// equals v already, the prediction landed and pending is cleared and
// contradicted is false. In every other case — including no pending
// value at all — contradicted is true, telling the caller to drop any
// timer armed against this entity (§3 invariant: "timers ... cleared
// whenever that entity's state is directly written").
func CommitServer[T comparable](d *DualState[T], v T) (contradicted bool) {
	d.Current = v
	if d.Pending != nil && *d.Pending == v {
		d.Pending = nil
		return false
	}
	return true
}
