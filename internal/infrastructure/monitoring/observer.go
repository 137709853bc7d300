// Package monitoring adapts the observer pattern the original
// execution engine used for workflow telemetry into the much smaller
// surface an aerodrome needs: user-facing messages from the server,
// and the patch/scenery flush at the end of each tick.
package monitoring

import (
	"sync"

	"github.com/rs/zerolog"
)

// AerodromeObserver reacts to events a tracked aerodrome raises.
// Implementations must not block; Client calls these synchronously
// from tick().
type AerodromeObserver interface {
	// OnMessage is called when the server surfaces a message for the
	// operator (§4.9 Error{message}).
	OnMessage(icao, message string)

	// OnDisconnect is called when the server disconnects an aerodrome
	// (§4.9 Error{disconnect: true}).
	OnDisconnect(icao string)

	// OnFlush is called once per tick with the number of scenery
	// elements changed, after TakePending runs.
	OnFlush(icao string, patchedNodes, patchedBlocks, sceneryChanges int)
}

// ObserverManager fans a tracked aerodrome's events out to every
// registered observer.
type ObserverManager struct {
	mu        sync.RWMutex
	observers []AerodromeObserver
}

// NewObserverManager returns an empty manager.
func NewObserverManager() *ObserverManager {
	return &ObserverManager{}
}

// Add registers an observer.
func (m *ObserverManager) Add(o AerodromeObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// NotifyMessage fans out OnMessage.
func (m *ObserverManager) NotifyMessage(icao, message string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.observers {
		o.OnMessage(icao, message)
	}
}

// NotifyDisconnect fans out OnDisconnect.
func (m *ObserverManager) NotifyDisconnect(icao string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.observers {
		o.OnDisconnect(icao)
	}
}

// NotifyFlush fans out OnFlush.
func (m *ObserverManager) NotifyFlush(icao string, patchedNodes, patchedBlocks, sceneryChanges int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.observers {
		o.OnFlush(icao, patchedNodes, patchedBlocks, sceneryChanges)
	}
}

// ZerologObserver is the default AerodromeObserver: it writes every
// event as a structured log line.
type ZerologObserver struct {
	log zerolog.Logger
}

// NewZerologObserver wraps a logger as an AerodromeObserver.
func NewZerologObserver(log zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{log: log}
}

func (z *ZerologObserver) OnMessage(icao, message string) {
	z.log.Info().Str("icao", icao).Msg(message)
}

func (z *ZerologObserver) OnDisconnect(icao string) {
	z.log.Warn().Str("icao", icao).Msg("aerodrome disconnected by server")
}

func (z *ZerologObserver) OnFlush(icao string, patchedNodes, patchedBlocks, sceneryChanges int) {
	if patchedNodes == 0 && patchedBlocks == 0 && sceneryChanges == 0 {
		return
	}
	z.log.Debug().
		Str("icao", icao).
		Int("nodes", patchedNodes).
		Int("blocks", patchedBlocks).
		Int("scenery", sceneryChanges).
		Msg("tick flush")
}
