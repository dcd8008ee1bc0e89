// Package env models the world agents live in: physical and knowledge
// assets, social networks, interaction rules, and the exogenous processes
// that perturb the environment independent of agent actions.
package env

import (
	"context"

	"github.com/talgya/choicesim/errs"
	"github.com/talgya/choicesim/sim"
)

// PhysicalAsset is a technology or product present in the environment.
type PhysicalAsset interface {
	AssetID() sim.AssetID
	Name() string
	PhysicalProperties() map[string]float64
	PerformanceCharacteristics() map[string]float64
	EconomicAttributes() map[string]float64
	EnvironmentalImpact() map[string]float64
	IsAvailable(t sim.Time) bool

	// UpdateState applies asset-local mutation for the passage of time
	// (maturity growth, decay). Asset-defined.
	UpdateState(t sim.Time) error
}

// KnowledgeAsset is a piece of standing information in the environment.
type KnowledgeAsset interface {
	AssetID() sim.AssetID
	Content() string
	Reliability() float64
	Relevance(topic string) float64
	Timestamp() sim.Time
	IsAccessibleTo(agentID sim.AgentID) bool
	Metadata() map[string]string
	UpdateReliability(v float64) error
}

// Network is a graph over agent identifiers. The representation is up to
// the implementation; only the capability contract is fixed.
type Network interface {
	Agents() []sim.AgentID
	AreConnected(a, b sim.AgentID) bool
	ConnectionStrength(a, b sim.AgentID) float64
	AddAgent(id sim.AgentID) error
	RemoveAgent(id sim.AgentID) error
	Connect(a, b sim.AgentID, strength float64) error
	Neighbors(id sim.AgentID) []sim.AgentID
	Stats() NetworkStats
}

// NetworkStats summarizes a network for analysis.
type NetworkStats struct {
	AgentCount            int
	ConnectionCount       int
	AverageDegree         float64
	ClusteringCoefficient float64
	Density               float64
}

// InteractionEffect is one consequence of an agent interaction.
type InteractionEffect struct {
	TargetAgent sim.AgentID
	EffectType  string
	Magnitude   float64
	Duration    *sim.Time // nil = instantaneous
}

// Rules governs which agent interactions are allowed and what they produce.
// The interaction payload is model-defined.
type Rules interface {
	IsInteractionAllowed(ctx context.Context, initiator, target sim.AgentID, interaction any, t sim.Time) (bool, error)
	ProcessInteraction(ctx context.Context, initiator, target sim.AgentID, interaction any, t sim.Time) ([]InteractionEffect, error)
	InteractionCost(interaction any) float64
}

// Change is one environment change produced by an exogenous process.
type Change struct {
	Type           string
	AffectedAssets []sim.AssetID
	Magnitude      float64
	Duration       *sim.Time // nil = permanent
	Description    string
}

// ExogenousProcess is a scheduled external force perturbing the environment
// independent of agent actions (market cycles, regulation).
type ExogenousProcess interface {
	UpdateEnvironment(ctx context.Context, t sim.Time) ([]Change, error)
	IsActive(t sim.Time) bool
	Name() string
	Frequency() sim.Time
}

// Environment owns the assets, networks, rules, and exogenous processes of
// a simulation, plus its own time scalar. Not safe for concurrent use; it
// is exclusively owned by the model driving it.
type Environment struct {
	physical      map[sim.AssetID]PhysicalAsset
	physicalOrder []sim.AssetID
	knowledge     map[sim.AssetID]KnowledgeAsset
	knowOrder     []sim.AssetID
	networks      []Network
	rules         Rules
	processes     []ExogenousProcess
	currentTime   sim.Time
}

// New creates an empty environment governed by the given interaction rules.
func New(rules Rules) *Environment {
	return &Environment{
		physical:  map[sim.AssetID]PhysicalAsset{},
		knowledge: map[sim.AssetID]KnowledgeAsset{},
		rules:     rules,
	}
}

// AddPhysicalAsset registers an asset. A duplicate ID is an error, never an
// overwrite.
func (e *Environment) AddPhysicalAsset(asset PhysicalAsset) error {
	id := asset.AssetID()
	if _, exists := e.physical[id]; exists {
		return errs.Environmentf("physical asset %s already exists", id)
	}
	e.physical[id] = asset
	e.physicalOrder = append(e.physicalOrder, id)
	return nil
}

// AddKnowledgeAsset registers a knowledge asset. A duplicate ID is an
// error, never an overwrite.
func (e *Environment) AddKnowledgeAsset(asset KnowledgeAsset) error {
	id := asset.AssetID()
	if _, exists := e.knowledge[id]; exists {
		return errs.Environmentf("knowledge asset %s already exists", id)
	}
	e.knowledge[id] = asset
	e.knowOrder = append(e.knowOrder, id)
	return nil
}

// AddNetwork appends a network.
func (e *Environment) AddNetwork(n Network) {
	e.networks = append(e.networks, n)
}

// AddProcess appends an exogenous process. Processes run in registration
// order each tick.
func (e *Environment) AddProcess(p ExogenousProcess) {
	e.processes = append(e.processes, p)
}

// PhysicalAsset looks up an asset by ID.
func (e *Environment) PhysicalAsset(id sim.AssetID) (PhysicalAsset, bool) {
	a, ok := e.physical[id]
	return a, ok
}

// KnowledgeAsset looks up a knowledge asset by ID.
func (e *Environment) KnowledgeAsset(id sim.AssetID) (KnowledgeAsset, bool) {
	a, ok := e.knowledge[id]
	return a, ok
}

// PhysicalAssets returns all physical assets in insertion order.
func (e *Environment) PhysicalAssets() []PhysicalAsset {
	out := make([]PhysicalAsset, 0, len(e.physicalOrder))
	for _, id := range e.physicalOrder {
		out = append(out, e.physical[id])
	}
	return out
}

// KnowledgeAssets returns all knowledge assets in insertion order.
func (e *Environment) KnowledgeAssets() []KnowledgeAsset {
	out := make([]KnowledgeAsset, 0, len(e.knowOrder))
	for _, id := range e.knowOrder {
		out = append(out, e.knowledge[id])
	}
	return out
}

// Networks returns the registered networks in registration order.
func (e *Environment) Networks() []Network {
	return e.networks
}

// Rules returns the environment's interaction rules.
func (e *Environment) Rules() Rules {
	return e.rules
}

// CurrentTime returns the environment's own clock.
func (e *Environment) CurrentTime() sim.Time {
	return e.currentTime
}

// UpdateToTime advances the environment: every physical asset's UpdateState
// runs first (insertion order), then every active exogenous process in
// registration order, concatenating their changes. The first error aborts
// the remaining updates and propagates; mutations already applied this tick
// are not rolled back, and the environment clock is not advanced.
func (e *Environment) UpdateToTime(ctx context.Context, newTime sim.Time) ([]Change, error) {
	for _, id := range e.physicalOrder {
		if err := e.physical[id].UpdateState(newTime); err != nil {
			return nil, errs.Wrap(errs.KindEnvironment, err, "update asset %s", id)
		}
	}

	var all []Change
	for _, p := range e.processes {
		if !p.IsActive(newTime) {
			continue
		}
		changes, err := p.UpdateEnvironment(ctx, newTime)
		if err != nil {
			return nil, errs.Wrap(errs.KindEnvironment, err, "exogenous process %q", p.Name())
		}
		all = append(all, changes...)
	}

	e.currentTime = newTime
	return all, nil
}

// AvailablePhysicalAssets returns the assets available at time t.
func (e *Environment) AvailablePhysicalAssets(t sim.Time) []PhysicalAsset {
	var out []PhysicalAsset
	for _, id := range e.physicalOrder {
		if a := e.physical[id]; a.IsAvailable(t) {
			out = append(out, a)
		}
	}
	return out
}

// AccessibleKnowledgeAssets returns the knowledge assets the agent may see.
func (e *Environment) AccessibleKnowledgeAssets(agentID sim.AgentID) []KnowledgeAsset {
	var out []KnowledgeAsset
	for _, id := range e.knowOrder {
		if a := e.knowledge[id]; a.IsAccessibleTo(agentID) {
			out = append(out, a)
		}
	}
	return out
}
