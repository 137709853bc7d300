// Package client is the top-level façade (C9): a multi-aerodrome
// registry that pumps inbound channel messages and flushes each
// tracked aerodrome's outbound patch and scenery once per tick. The host (a UI
// loop or a timer) drives Tick; nothing here spawns its own goroutine
// beyond what the channel's transport already runs (§5).
package client

import (
	"github.com/rs/zerolog"

	"github.com/smilemakc/bars/internal/aerodrome"
	"github.com/smilemakc/bars/internal/codec"
	"github.com/smilemakc/bars/internal/domain"
	"github.com/smilemakc/bars/internal/engine"
	"github.com/smilemakc/bars/internal/infrastructure/monitoring"
	"github.com/smilemakc/bars/internal/ipc"
)

// Client owns the channel and every tracked aerodrome.
type Client struct {
	channel *ipc.Channel
	log     zerolog.Logger

	observers *monitoring.ObserverManager

	aerodromes map[string]*aerodrome.Aerodrome
	tracked    map[string]bool
}

// New wraps an already-dialed channel.
func New(ch *ipc.Channel, log zerolog.Logger) *Client {
	return &Client{
		channel:    ch,
		log:        log,
		observers:  monitoring.NewObserverManager(),
		aerodromes: make(map[string]*aerodrome.Aerodrome),
		tracked:    make(map[string]bool),
	}
}

// AddObserver registers an AerodromeObserver for every tracked
// aerodrome's events.
func (c *Client) AddObserver(o monitoring.AerodromeObserver) {
	c.observers.Add(o)
}

// Get returns the aerodrome for icao, if it has a configuration yet.
func (c *Client) Get(icao string) (*aerodrome.Aerodrome, bool) {
	a, ok := c.aerodromes[icao]
	return a, ok
}

// Track requests the server start (or stop) sending updates for icao.
// Untracking immediately discards all local state for it (§5: "no
// drain").
func (c *Client) Track(icao string, track bool) error {
	if !track {
		delete(c.aerodromes, icao)
		delete(c.tracked, icao)
	} else {
		c.tracked[icao] = true
	}
	return c.channel.Send(ipc.Upstream{Kind: ipc.UpstreamTrack, ICAO: icao, Track: track})
}

// Control requests control (or observer) mode for icao.
func (c *Client) Control(icao string, controlling bool) error {
	return c.channel.Send(ipc.Upstream{Kind: ipc.UpstreamControl, ICAO: icao, Control: controlling})
}

// Tick drains every queued inbound message, applies timers, and
// flushes one outbound (patch, scenery) pair per tracked aerodrome
// (§5). now is a caller-supplied unix-seconds timestamp.
func (c *Client) Tick(now int64) {
	for {
		msg, ok := c.channel.Poll()
		if !ok {
			break
		}
		c.applyDownstream(msg, now)
	}

	for icao, a := range c.aerodromes {
		patch, scenery := a.Tick(now)

		if wire := toWirePatch(a, patch); wire != nil {
			if err := c.channel.Send(ipc.Upstream{Kind: ipc.UpstreamPatch, ICAO: icao, Patch: wire}); err != nil {
				c.log.Warn().Err(err).Str("icao", icao).Msg("failed to send upstream patch")
			}
		}

		if len(scenery) > 0 {
			wireScenery := make(ipc.Scenery, len(scenery))
			for e, v := range scenery {
				wireScenery[a.Config.Elements[e.Int()].ID] = v
			}
			if err := c.channel.Send(ipc.Upstream{Kind: ipc.UpstreamScenery, ICAO: icao, Scenery: wireScenery}); err != nil {
				c.log.Warn().Err(err).Str("icao", icao).Msg("failed to send upstream scenery")
			}
		}

		c.observers.NotifyFlush(icao, len(patch.Nodes), len(patch.Blocks), len(scenery))
	}
}

func (c *Client) applyDownstream(msg ipc.Downstream, now int64) {
	switch msg.Kind {
	case ipc.DownstreamConfig:
		a, err := decodeAerodromeConfig(msg.ICAO, msg.Data, now)
		if err != nil {
			c.log.Error().Err(err).Str("icao", msg.ICAO).Msg("failed to decode aerodrome config")
			return
		}
		c.aerodromes[a.ICAO] = a

	case ipc.DownstreamControl:
		if a, ok := c.aerodromes[msg.ICAO]; ok {
			a.SetControl(msg.Control)
		}

	case ipc.DownstreamPatch:
		if a, ok := c.aerodromes[msg.ICAO]; ok && msg.Patch != nil {
			for _, w := range a.ApplyServerPatch(*msg.Patch) {
				c.log.Warn().Str("icao", msg.ICAO).Msg(w)
			}
		}

	case ipc.DownstreamAircraft:
		if a, ok := c.aerodromes[msg.ICAO]; ok {
			a.SetAircraft(msg.Aircraft)
		}

	case ipc.DownstreamError:
		message := ""
		if msg.Message != nil {
			message = *msg.Message
		}
		c.observers.NotifyMessage(msg.ICAO, message)
		if msg.Disconnect {
			delete(c.aerodromes, msg.ICAO)
			delete(c.tracked, msg.ICAO)
			c.observers.NotifyDisconnect(msg.ICAO)
		}
	}
}

func decodeAerodromeConfig(icao string, data []byte, now int64) (*aerodrome.Aerodrome, error) {
	cfg, err := codec.DecodeBare(data)
	if err != nil {
		return nil, err
	}
	// Binary Config frames carry no ICAO of their own; fall back to the
	// one inside the decoded configuration.
	if icao == "" {
		icao = cfg.ICAO
	}
	return aerodrome.New(icao, cfg, now)
}

// toWirePatch translates an engine.Patch (typed refs) into the wire
// form (string ids), or nil if the patch is empty (§5: upstream
// patches carry only locally-originated changes, so an empty tick
// sends nothing).
func toWirePatch(a *aerodrome.Aerodrome, p engine.Patch) *ipc.Patch {
	if !p.ProfilePending && len(p.Nodes) == 0 && len(p.Blocks) == 0 {
		return nil
	}

	wire := &ipc.Patch{}
	if p.ProfilePending {
		id := p.ProfileID
		wire.Profile = &id
	}
	if len(p.Nodes) > 0 {
		wire.Nodes = make(map[string]bool, len(p.Nodes))
		for n, v := range p.Nodes {
			wire.Nodes[a.Config.Nodes[n.Int()].ID] = v
		}
	}
	if len(p.Blocks) > 0 {
		wire.Blocks = make(map[string]ipc.BlockWire, len(p.Blocks))
		for b, v := range p.Blocks {
			wire.Blocks[a.Config.Blocks[b.Int()].ID] = blockStateToWire(a, v)
		}
	}
	return wire
}

func blockStateToWire(a *aerodrome.Aerodrome, s domain.BlockState) ipc.BlockWire {
	switch s.Kind {
	case domain.BlockClear:
		return ipc.BlockWire{Kind: ipc.BlockWireClear}
	case domain.BlockRelax:
		return ipc.BlockWire{Kind: ipc.BlockWireRelax}
	default:
		return ipc.BlockWire{
			Kind: ipc.BlockWireRoute,
			From: a.Config.Nodes[s.A.Int()].ID,
			To:   a.Config.Nodes[s.B.Int()].ID,
		}
	}
}
