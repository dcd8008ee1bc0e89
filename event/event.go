// Package event provides the simulation event log and publish/subscribe
// bus. Every notable occurrence in a run (agent lifecycle, choices, state
// transitions, environment updates) flows through one Bus.
package event

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/choicesim/sim"
)

// Type classifies an event.
type Type string

const (
	TypeAgentAdded           Type = "agent_added"
	TypeAgentRemoved         Type = "agent_removed"
	TypeChoiceMade           Type = "choice_made"
	TypeSimulationStarted    Type = "simulation_started"
	TypeSimulationPaused     Type = "simulation_paused"
	TypeSimulationResumed    Type = "simulation_resumed"
	TypeSimulationCompleted  Type = "simulation_completed"
	TypeValidationError      Type = "validation_error"
	TypeEnvironmentUpdated   Type = "environment_updated"
	TypeInformationProcessed Type = "information_processed"
)

// CustomType builds an application-defined event type.
func CustomType(name string) Type {
	return Type("custom:" + name)
}

// Event is one timestamped occurrence. AgentID is zero for events not tied
// to a particular agent.
type Event struct {
	Type        Type
	Time        sim.Time
	AgentID     sim.AgentID
	Description string
	Data        map[string]string
}

// NewAgentAdded builds an agent-added event.
func NewAgentAdded(t sim.Time, agentID sim.AgentID) Event {
	return Event{
		Type:        TypeAgentAdded,
		Time:        t,
		AgentID:     agentID,
		Description: fmt.Sprintf("agent %s added", agentID),
	}
}

// NewAgentRemoved builds an agent-removed event.
func NewAgentRemoved(t sim.Time, agentID sim.AgentID) Event {
	return Event{
		Type:        TypeAgentRemoved,
		Time:        t,
		AgentID:     agentID,
		Description: fmt.Sprintf("agent %s removed", agentID),
	}
}

// NewChoiceMade builds a choice event. The choice is rendered with %v so
// any choice type works.
func NewChoiceMade(t sim.Time, agentID sim.AgentID, choice any, trigger sim.Trigger) Event {
	return Event{
		Type:        TypeChoiceMade,
		Time:        t,
		AgentID:     agentID,
		Description: fmt.Sprintf("agent %s chose %v", agentID, choice),
		Data: map[string]string{
			"choice":  fmt.Sprintf("%v", choice),
			"trigger": string(trigger),
		},
	}
}

// NewStateChange builds a lifecycle event of the given type.
func NewStateChange(typ Type, t sim.Time, description string) Event {
	return Event{Type: typ, Time: t, Description: description}
}

// NewValidationError records a validation failure against an agent.
func NewValidationError(t sim.Time, agentID sim.AgentID, err error) Event {
	return Event{
		Type:        TypeValidationError,
		Time:        t,
		AgentID:     agentID,
		Description: err.Error(),
	}
}

// NewEnvironmentUpdated records one environment change.
func NewEnvironmentUpdated(t sim.Time, changeType, description string, magnitude float64) Event {
	return Event{
		Type:        TypeEnvironmentUpdated,
		Time:        t,
		Description: description,
		Data: map[string]string{
			"change_type": changeType,
			"magnitude":   fmt.Sprintf("%g", magnitude),
		},
	}
}

// NewInformationProcessed records a transformer pass for an agent.
func NewInformationProcessed(t sim.Time, agentID sim.AgentID, in, out int) Event {
	return Event{
		Type:        TypeInformationProcessed,
		Time:        t,
		AgentID:     agentID,
		Description: fmt.Sprintf("transformed %d items to %d for agent %s", in, out, agentID),
		Data: map[string]string{
			"items_in":  fmt.Sprintf("%d", in),
			"items_out": fmt.Sprintf("%d", out),
		},
	}
}

// Handler receives every emitted event. Handlers must not call back into
// the bus.
type Handler interface {
	HandleEvent(e Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(e Event)

func (f HandlerFunc) HandleEvent(e Event) { f(e) }

// DefaultMaxLog bounds the in-memory event log. When the log is full the
// oldest events are evicted first.
const DefaultMaxLog = 10000

// Bus is the event log and dispatcher. Safe for concurrent use.
type Bus struct {
	logMu  sync.Mutex
	log    []Event
	maxLog int

	handlerMu sync.RWMutex
	handlers  []Handler
}

// NewBus creates a bus retaining up to DefaultMaxLog events.
func NewBus() *Bus {
	return NewBusWithCapacity(DefaultMaxLog)
}

// NewBusWithCapacity creates a bus with an explicit log bound. maxLog <= 0
// disables logging entirely; handlers still fire.
func NewBusWithCapacity(maxLog int) *Bus {
	return &Bus{maxLog: maxLog}
}

// AddHandler subscribes a handler to all future events.
func (b *Bus) AddHandler(h Handler) {
	b.handlerMu.Lock()
	b.handlers = append(b.handlers, h)
	b.handlerMu.Unlock()
}

// Emit appends the event to the log, evicting the oldest entry when full,
// then invokes every handler synchronously in subscription order.
func (b *Bus) Emit(e Event) {
	if b.maxLog > 0 {
		b.logMu.Lock()
		if len(b.log) >= b.maxLog {
			b.log = b.log[1:]
		}
		b.log = append(b.log, e)
		b.logMu.Unlock()
	}

	b.handlerMu.RLock()
	handlers := b.handlers
	b.handlerMu.RUnlock()
	for _, h := range handlers {
		h.HandleEvent(e)
	}
}

// All returns a copy of the current log, oldest first.
func (b *Bus) All() []Event {
	b.logMu.Lock()
	defer b.logMu.Unlock()
	out := make([]Event, len(b.log))
	copy(out, b.log)
	return out
}

// OfType returns the logged events of the given type, oldest first.
func (b *Bus) OfType(typ Type) []Event {
	b.logMu.Lock()
	defer b.logMu.Unlock()
	var out []Event
	for _, e := range b.log {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// ForAgent returns the logged events concerning the given agent.
func (b *Bus) ForAgent(agentID sim.AgentID) []Event {
	b.logMu.Lock()
	defer b.logMu.Unlock()
	var out []Event
	for _, e := range b.log {
		if e.AgentID == agentID {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of retained events.
func (b *Bus) Len() int {
	b.logMu.Lock()
	defer b.logMu.Unlock()
	return len(b.log)
}

// Clear drops the retained log. Handlers stay subscribed.
func (b *Bus) Clear() {
	b.logMu.Lock()
	b.log = nil
	b.logMu.Unlock()
}

// LogHandler mirrors every event to a structured logger.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a handler writing to logger at debug level.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

func (h *LogHandler) HandleEvent(e Event) {
	attrs := []any{
		"type", string(e.Type),
		"time", e.Time,
		"description", e.Description,
	}
	if !e.AgentID.IsZero() {
		attrs = append(attrs, "agent", e.AgentID.String())
	}
	h.logger.Debug("event", attrs...)
}
