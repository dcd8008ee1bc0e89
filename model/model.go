// Package model implements the simulation core: the lifecycle state
// machine, the stepping loop, and run statistics. A Model owns the agents,
// an environment, an information transformer, and an event bus, and drives
// them through simulated time.
package model

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/talgya/choicesim/agent"
	"github.com/talgya/choicesim/env"
	"github.com/talgya/choicesim/errs"
	"github.com/talgya/choicesim/event"
	"github.com/talgya/choicesim/info"
	"github.com/talgya/choicesim/sim"
	"github.com/talgya/choicesim/validate"
)

// State is a model lifecycle state.
type State string

const (
	StateInitialized State = "initialized"
	StateRunning     State = "running"
	StatePaused      State = "paused"
	StateCompleted   State = "completed"
	StateError       State = "error"
)

// Stats summarizes a run so far.
type Stats struct {
	TotalAgents        int
	TotalChoices       int
	AvgChoicesPerAgent float64
	Duration           sim.Time // simulated time covered by the run
	Elapsed            time.Duration
	EventsProcessed    int
	ValidationErrors   int
}

// Model is the simulation core. Not safe for concurrent use; drive it from
// one goroutine. Ch is the concrete choice type, Ctx the decision context
// type handed to choice modules.
type Model[Ch, Ctx any] struct {
	config      Config
	state       State
	currentTime sim.Time

	agents     map[sim.AgentID]*agent.Agent[Ch, Ctx]
	agentOrder []sim.AgentID

	environment *env.Environment
	transformer *info.Transformer
	validator   *validate.Validator
	bus         *event.Bus
	rng         *rand.Rand
	logger      *slog.Logger

	stats     Stats
	emitted   int
	startedAt time.Time
	failure   error
}

// New creates a model in the Initialized state. validator may be nil when
// cfg.Validation is false.
func New[Ch, Ctx any](cfg Config, environment *env.Environment, transformer *info.Transformer, validator *validate.Validator) (*Model[Ch, Ctx], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Validation && validator == nil {
		return nil, errs.Validationf("validation enabled but no validator supplied")
	}

	seed := time.Now().UnixNano()
	if cfg.RandomSeed != nil {
		seed = *cfg.RandomSeed
	}

	return &Model[Ch, Ctx]{
		config:      cfg,
		state:       StateInitialized,
		agents:      map[sim.AgentID]*agent.Agent[Ch, Ctx]{},
		environment: environment,
		transformer: transformer,
		validator:   validator,
		bus:         event.NewBus(),
		rng:         rand.New(rand.NewSource(seed)),
		logger:      slog.Default(),
	}, nil
}

// SetLogger replaces the model's logger. Call before Start.
func (m *Model[Ch, Ctx]) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// Configuration returns the model's config.
func (m *Model[Ch, Ctx]) Configuration() Config { return m.config }

// State returns the current lifecycle state.
func (m *Model[Ch, Ctx]) State() State { return m.state }

// CurrentTime returns the model's simulated time.
func (m *Model[Ch, Ctx]) CurrentTime() sim.Time { return m.currentTime }

// Environment returns the model's environment.
func (m *Model[Ch, Ctx]) Environment() *env.Environment { return m.environment }

// Events returns the model's event bus. Subscribe handlers here before
// starting a run.
func (m *Model[Ch, Ctx]) Events() *event.Bus { return m.bus }

// RNG returns the model's seeded random source for use by custom
// components that want reproducibility.
func (m *Model[Ch, Ctx]) RNG() *rand.Rand { return m.rng }

// Agent looks up an agent by ID.
func (m *Model[Ch, Ctx]) Agent(id sim.AgentID) (*agent.Agent[Ch, Ctx], bool) {
	a, ok := m.agents[id]
	return a, ok
}

// AgentIDs returns the agent IDs in insertion order. Every per-agent pass
// in the model walks agents in this order, so runs replay deterministically.
func (m *Model[Ch, Ctx]) AgentIDs() []sim.AgentID {
	out := make([]sim.AgentID, len(m.agentOrder))
	copy(out, m.agentOrder)
	return out
}

// Statistics returns the current run statistics.
func (m *Model[Ch, Ctx]) Statistics() Stats {
	s := m.stats
	s.EventsProcessed = m.emitted
	s.Duration = m.currentTime
	if !m.startedAt.IsZero() && (m.state == StateRunning || m.state == StatePaused) {
		s.Elapsed = time.Since(m.startedAt)
	}
	return s
}

// Failure returns the error recorded by Fail, if any.
func (m *Model[Ch, Ctx]) Failure() error { return m.failure }

func (m *Model[Ch, Ctx]) emit(e event.Event) {
	if !m.config.EventLogging {
		return
	}
	m.emitted++
	m.bus.Emit(e)
}

// AddAgent inserts an agent. Only legal in the Initialized state. When
// validation is enabled a failing agent is rejected, a ValidationError
// event is emitted, and the validation-error counter is bumped.
func (m *Model[Ch, Ctx]) AddAgent(a *agent.Agent[Ch, Ctx]) error {
	if m.state != StateInitialized {
		return errs.Statef("cannot add agent in state %s", m.state)
	}
	id := a.ID()
	if _, exists := m.agents[id]; exists {
		return errs.Agentf("agent %s already in model", id)
	}

	if m.config.Validation {
		if err := m.validator.ValidateAttributes(a.Attributes()); err != nil {
			m.stats.ValidationErrors++
			m.emit(event.NewValidationError(m.currentTime, id, err))
			return errs.Wrap(errs.KindValidation, err, "agent %s rejected", id)
		}
	}

	m.agents[id] = a
	m.agentOrder = append(m.agentOrder, id)
	m.stats.TotalAgents = len(m.agents)
	m.emit(event.NewAgentAdded(m.currentTime, id))
	return nil
}

// RemoveAgent deletes an agent. Illegal while Running.
func (m *Model[Ch, Ctx]) RemoveAgent(id sim.AgentID) error {
	if m.state == StateRunning {
		return errs.Statef("cannot remove agent while running")
	}
	if _, exists := m.agents[id]; !exists {
		return errs.Agentf("agent %s not in model", id)
	}
	delete(m.agents, id)
	for i, oid := range m.agentOrder {
		if oid == id {
			m.agentOrder = append(m.agentOrder[:i], m.agentOrder[i+1:]...)
			break
		}
	}
	m.stats.TotalAgents = len(m.agents)
	m.emit(event.NewAgentRemoved(m.currentTime, id))
	return nil
}

// Start moves Initialized to Running. A model with no agents cannot start.
func (m *Model[Ch, Ctx]) Start() error {
	if m.state != StateInitialized {
		return errs.Statef("cannot start in state %s", m.state)
	}
	if len(m.agents) == 0 {
		return errs.Statef("cannot start with zero agents")
	}

	m.currentTime = 0
	m.state = StateRunning
	m.startedAt = time.Now()
	m.emit(event.NewStateChange(event.TypeSimulationStarted, 0, "simulation started"))
	m.logger.Info("simulation started",
		"model", m.config.Name,
		"agents", len(m.agents),
		"max_time", m.config.MaxTime,
		"time_step", m.config.TimeStep)
	return nil
}

// Pause moves Running to Paused.
func (m *Model[Ch, Ctx]) Pause() error {
	if m.state != StateRunning {
		return errs.Statef("cannot pause in state %s", m.state)
	}
	m.state = StatePaused
	m.emit(event.NewStateChange(event.TypeSimulationPaused, m.currentTime, "simulation paused"))
	return nil
}

// Resume moves Paused back to Running.
func (m *Model[Ch, Ctx]) Resume() error {
	if m.state != StatePaused {
		return errs.Statef("cannot resume in state %s", m.state)
	}
	m.state = StateRunning
	m.emit(event.NewStateChange(event.TypeSimulationResumed, m.currentTime, "simulation resumed"))
	return nil
}

// Stop completes the run from any live state, including Initialized
// (a never-started model completes at time zero). Calling Stop on a
// Completed or Error model is a no-op; the completion event fires exactly
// once.
func (m *Model[Ch, Ctx]) Stop() error {
	switch m.state {
	case StateCompleted, StateError:
		return nil
	}

	m.state = StateCompleted
	m.stats.Duration = m.currentTime
	if !m.startedAt.IsZero() {
		m.stats.Elapsed = time.Since(m.startedAt)
	}
	m.emit(event.NewStateChange(event.TypeSimulationCompleted, m.currentTime, "simulation completed"))
	m.logger.Info("simulation completed",
		"model", m.config.Name,
		"time", m.currentTime,
		"choices", m.stats.TotalChoices,
		"elapsed", m.stats.Elapsed)
	return nil
}

// Fail moves the model into the absorbing Error state, recording the
// cause. The model never enters Error on its own; operational errors
// propagate to the caller, who decides whether the run is unrecoverable.
func (m *Model[Ch, Ctx]) Fail(cause error) {
	if m.state == StateCompleted || m.state == StateError {
		return
	}
	m.state = StateError
	m.failure = cause
	m.stats.Duration = m.currentTime
	if !m.startedAt.IsZero() {
		m.stats.Elapsed = time.Since(m.startedAt)
	}
	m.logger.Error("simulation failed", "model", m.config.Name, "time", m.currentTime, "error", cause)
}

// Step advances simulated time by one TimeStep. Only legal while Running.
// When the next tick would pass MaxTime the model stops instead and the
// tick does not execute.
//
// A tick runs the environment update, converts the resulting changes into
// synthetic information attributed to sim.SystemSource, and pushes the
// batch through the transformer once per agent in insertion order. A
// mid-tick error propagates with time and state unchanged; environment
// mutations already applied are not undone.
func (m *Model[Ch, Ctx]) Step(ctx context.Context) error {
	if m.state != StateRunning {
		return errs.Statef("cannot step in state %s", m.state)
	}

	newTime := m.currentTime + m.config.TimeStep
	if newTime > m.config.MaxTime {
		return m.Stop()
	}

	changes, err := m.environment.UpdateToTime(ctx, newTime)
	if err != nil {
		return err
	}

	batch := make([]info.Information, 0, len(changes))
	for _, c := range changes {
		m.emit(event.NewEnvironmentUpdated(newTime, c.Type, c.Description, c.Magnitude))
		batch = append(batch, info.New(c.Description, sim.SystemSource, newTime, 1.0, c.Type))
	}

	m.transformer.ClearExpiredCache(newTime)
	for _, id := range m.agentOrder {
		fctx := info.NewFilterContext(newTime)
		dctx := info.NewDistortionContext(newTime)
		processed, err := m.transformer.ProcessForAgent(ctx, id, batch, fctx, dctx)
		if err != nil {
			return errs.Wrap(errs.KindInformation, err, "process information for agent %s", id)
		}
		m.emit(event.NewInformationProcessed(newTime, id, len(batch), len(processed)))
	}

	m.currentTime = newTime
	m.recomputeStats()
	return nil
}

// Run starts the model and steps until the horizon is reached or ctx is
// cancelled. The first error stops the run and propagates.
func (m *Model[Ch, Ctx]) Run(ctx context.Context) error {
	if err := m.Start(); err != nil {
		return err
	}
	for m.state == StateRunning {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TriggerAgent runs one agent's choice process at the current time. When
// the agent makes a choice a ChoiceMade event is emitted and the choice is
// returned with ok true.
func (m *Model[Ch, Ctx]) TriggerAgent(ctx context.Context, id sim.AgentID, trigger sim.Trigger, choices []Ch, dctx Ctx) (Ch, bool, error) {
	var zero Ch
	a, ok := m.agents[id]
	if !ok {
		return zero, false, errs.Agentf("agent %s not in model", id)
	}

	choice, made, err := a.ProcessTrigger(ctx, trigger, choices, dctx, m.currentTime)
	if err != nil {
		return zero, false, err
	}
	if made {
		m.emit(event.NewChoiceMade(m.currentTime, id, choice, trigger))
		m.recomputeStats()
	}
	return choice, made, nil
}

// Reset returns the model to Initialized for another run. Illegal while
// Running. Agents stay registered but their histories are cleared; the
// clock, stats, and event log reset.
func (m *Model[Ch, Ctx]) Reset() error {
	if m.state == StateRunning {
		return errs.Statef("cannot reset while running")
	}

	m.state = StateInitialized
	m.currentTime = 0
	m.stats = Stats{TotalAgents: len(m.agents)}
	m.emitted = 0
	m.startedAt = time.Time{}
	m.failure = nil
	for _, a := range m.agents {
		a.ClearHistory()
	}
	m.bus.Clear()
	return nil
}

func (m *Model[Ch, Ctx]) recomputeStats() {
	total := 0
	for _, a := range m.agents {
		total += len(a.History())
	}
	m.stats.TotalAgents = len(m.agents)
	m.stats.TotalChoices = total
	m.stats.Duration = m.currentTime
	if len(m.agents) > 0 {
		m.stats.AvgChoicesPerAgent = float64(total) / float64(len(m.agents))
	} else {
		m.stats.AvgChoicesPerAgent = 0
	}
}
