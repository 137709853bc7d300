// Package aerodrome is the per-aerodrome façade (§4.4) that operator
// commands and the server-patch reducer (§4.9) go through: it owns one
// engine.Index, one engine.State, and one engine.Buffer, and
// translates between wire-form string ids and the engine's typed
// refs. The client package holds one of these per tracked ICAO.
package aerodrome

import (
	"github.com/smilemakc/bars/internal/domain"
	"github.com/smilemakc/bars/internal/domain/errors"
	"github.com/smilemakc/bars/internal/engine"
	"github.com/smilemakc/bars/internal/ipc"
)

// ActivityState mirrors the operator's control/observe toggle (§4.9
// Control message).
type ActivityState int

const (
	Observing ActivityState = iota
	Controlling
)

// Aerodrome is one tracked airport's complete live state.
type Aerodrome struct {
	ICAO   string
	Config *domain.Aerodrome
	Idx    *engine.Index
	Edges  *engine.EdgeEvaluator
	State  *engine.State
	Buf    *engine.Buffer

	Activity ActivityState
	Aircraft []string
}

// New builds an Aerodrome from decoded static configuration, deriving
// index tables and initializing engine state to profile 0's defaults.
func New(icao string, cfg *domain.Aerodrome, now int64) (*Aerodrome, error) {
	if len(cfg.Profiles) == 0 {
		return nil, errors.New(errors.ErrCodeUnknownProfile, "aerodrome has no profiles", nil)
	}
	if err := engine.ValidateParentTree(cfg); err != nil {
		return nil, errors.New(errors.ErrCodeDecodeFailed, "invalid node parent tree", err)
	}

	idx := engine.Build(cfg)
	ev := engine.NewEdgeEvaluator()

	a := &Aerodrome{
		ICAO:   icao,
		Config: cfg,
		Idx:    idx,
		Edges:  ev,
		State: &engine.State{
			Nodes:  make([]domain.DualState[bool], len(cfg.Nodes)),
			Blocks: make([]domain.DualState[domain.BlockState], len(cfg.Blocks)),
		},
		Buf: engine.NewBuffer(),
	}

	engine.SetDefaultState(cfg, idx, ev, a.State, a.Buf, true)
	return a, nil
}

// SetProfile implements the set_profile operator command (§4.4).
func (a *Aerodrome) SetProfile(id string, now int64) error {
	i, ok := a.Idx.ProfileByID[id]
	if !ok {
		return errors.New(errors.ErrCodeUnknownProfile, "unknown profile id "+id, nil)
	}

	a.State.Profile = i
	a.Buf.ProfilePending = true
	a.Buf.ProfileID = id

	engine.SetDefaultState(a.Config, a.Idx, a.Edges, a.State, a.Buf, true)
	return nil
}

// ApplyPreset implements apply_preset (§4.4). Matching the original
// source, this replaces the pending patch maps rather than merging
// into them.
func (a *Aerodrome) ApplyPreset(name string, now int64) error {
	profile := a.Config.Profiles[a.State.Profile]

	var preset *domain.Preset
	for i := range profile.Presets {
		if profile.Presets[i].Name == name {
			preset = &profile.Presets[i]
			break
		}
	}
	if preset == nil {
		return errors.New(errors.ErrCodeUnknownProfile, "unknown preset "+name, nil)
	}

	a.Buf.NodePatch = make(map[domain.NodeRef]bool)
	a.Buf.BlockPatch = make(map[domain.BlockRef]domain.BlockState)
	a.Buf.PendingNodes = nil

	for _, pn := range preset.Nodes {
		if pn.Node.Int() < 0 || pn.Node.Int() >= len(a.State.Nodes) {
			continue
		}
		cell := a.State.Nodes[pn.Node.Int()]
		cell.Predict(bool(pn.State))
		a.State.Nodes[pn.Node.Int()] = cell
		a.Buf.NodePatch[pn.Node] = bool(pn.State)
		a.Buf.PendingNodes = append(a.Buf.PendingNodes, pn.Node)
	}

	for _, pb := range preset.Blocks {
		if pb.Block.Int() < 0 || pb.Block.Int() >= len(a.State.Blocks) {
			continue
		}
		cell := a.State.Blocks[pb.Block.Int()]
		cell.Predict(pb.State)
		a.State.Blocks[pb.Block.Int()] = cell
		a.Buf.BlockPatch[pb.Block] = pb.State
	}

	a.State.NodeTimers = nil
	a.State.BlockTimers = nil
	return nil
}

// SetNode implements set_node by wire id.
func (a *Aerodrome) SetNode(id string, state bool, now int64) error {
	n, ok := a.Idx.NodeByID[id]
	if !ok {
		return errors.New(errors.ErrCodeDecodeFailed, "unknown node id "+id, nil)
	}
	engine.SetNode(a.Config, a.State, a.Buf, now, n, state)
	return nil
}

// SetBlock implements set_block by wire id.
func (a *Aerodrome) SetBlock(id string, state domain.BlockState, now int64) error {
	b, ok := a.Idx.BlockByID[id]
	if !ok {
		return errors.New(errors.ErrCodeDecodeFailed, "unknown block id "+id, nil)
	}
	engine.SetBlock(a.Config, a.Idx, a.State, a.Buf, now, b, state)
	return nil
}

// SetRoute implements set_route: it runs the solver and, on success,
// commits every assignment through SetBlock so the cascade and timer
// rules still apply uniformly.
func (a *Aerodrome) SetRoute(orgnID, destID string, now int64) (engine.RouteResult, error) {
	orgn, ok := a.Idx.NodeByID[orgnID]
	if !ok {
		return engine.RouteResult{}, errors.New(errors.ErrCodeDecodeFailed, "unknown node id "+orgnID, nil)
	}
	dest, ok := a.Idx.NodeByID[destID]
	if !ok {
		return engine.RouteResult{}, errors.New(errors.ErrCodeDecodeFailed, "unknown node id "+destID, nil)
	}

	result := engine.SolveRoute(a.Config, a.Idx, a.State, orgn, dest)
	if !result.OK() {
		return result, nil
	}

	for _, asn := range result.Assignments {
		engine.SetBlock(a.Config, a.Idx, a.State, a.Buf, now, asn.Block, domain.Route(asn.From, asn.To))
	}
	return result, nil
}

// Tick drains due timers and flushes the patch/scenery pair for this
// tick (§4.3, §4.7).
func (a *Aerodrome) Tick(now int64) (engine.Patch, engine.Scenery) {
	engine.Tick(a.Config, a.Idx, a.State, a.Buf, now)
	return engine.TakePending(a.Config, a.Idx, a.Edges, a.State, a.Buf)
}

// ApplyServerPatch implements the §4.9 server-patch reducer. It
// returns warnings for unknown ids, which never abort the rest of the
// patch.
func (a *Aerodrome) ApplyServerPatch(p ipc.Patch) []string {
	var warnings []string

	if p.Profile != nil {
		if i, ok := a.Idx.ProfileByID[*p.Profile]; ok {
			a.State.Profile = i
			a.State.NodeTimers = nil
			a.State.BlockTimers = nil
		} else {
			warnings = append(warnings, "unknown profile id "+*p.Profile)
		}
	}

	for id, state := range p.Nodes {
		n, ok := a.Idx.NodeByID[id]
		if !ok {
			warnings = append(warnings, "unknown node id "+id)
			continue
		}
		cell := a.State.Nodes[n.Int()]
		if domain.CommitServer(&cell, state) {
			a.State.NodeTimers = removeTimerByNode(a.State.NodeTimers, n)
		}
		a.State.Nodes[n.Int()] = cell
	}

	for id, wire := range p.Blocks {
		b, ok := a.Idx.BlockByID[id]
		if !ok {
			warnings = append(warnings, "unknown block id "+id)
			continue
		}
		bs, err := blockStateFromWire(a.Idx, wire)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		cell := a.State.Blocks[b.Int()]
		if domain.CommitServer(&cell, bs) {
			a.State.BlockTimers = removeTimerByBlock(a.State.BlockTimers, b)
		}
		a.State.Blocks[b.Int()] = cell
	}

	return warnings
}

func blockStateFromWire(idx *engine.Index, w ipc.BlockWire) (domain.BlockState, error) {
	switch w.Kind {
	case ipc.BlockWireClear:
		return domain.ClearState, nil
	case ipc.BlockWireRelax:
		return domain.RelaxState, nil
	case ipc.BlockWireRoute:
		from, ok := idx.NodeByID[w.From]
		if !ok {
			return domain.BlockState{}, errors.New(errors.ErrCodeDecodeFailed, "unknown route node id "+w.From, nil)
		}
		to, ok := idx.NodeByID[w.To]
		if !ok {
			return domain.BlockState{}, errors.New(errors.ErrCodeDecodeFailed, "unknown route node id "+w.To, nil)
		}
		return domain.Route(from, to), nil
	default:
		return domain.BlockState{}, errors.New(errors.ErrCodeDecodeFailed, "unknown block state kind", nil)
	}
}

func removeTimerByNode(timers []engine.NodeTimer, n domain.NodeRef) []engine.NodeTimer {
	out := timers[:0]
	for _, t := range timers {
		if t.Node != n {
			out = append(out, t)
		}
	}
	return out
}

func removeTimerByBlock(timers []engine.BlockTimer, b domain.BlockRef) []engine.BlockTimer {
	out := timers[:0]
	for _, t := range timers {
		if t.Block != b {
			out = append(out, t)
		}
	}
	return out
}

// SetControl implements the Control message (§4.9).
func (a *Aerodrome) SetControl(controlling bool) {
	if controlling {
		a.Activity = Controlling
	} else {
		a.Activity = Observing
	}
}

// SetAircraft implements the Aircraft message (§4.9): it replaces the
// tracked callsign set wholesale.
func (a *Aerodrome) SetAircraft(callsigns []string) {
	a.Aircraft = callsigns
}
