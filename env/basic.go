package env

import (
	"context"

	"github.com/talgya/choicesim/errs"
	"github.com/talgya/choicesim/sim"
)

// BasicPhysicalAsset is the stock PhysicalAsset: property maps plus an
// availability window. UpdateState records the last-seen time and leaves
// the rest alone; wrap or reimplement for assets with real dynamics.
type BasicPhysicalAsset struct {
	id          sim.AssetID
	name        string
	physical    map[string]float64
	performance map[string]float64
	economic    map[string]float64
	impact      map[string]float64

	availableFrom  sim.Time
	availableUntil *sim.Time // nil = no end
	lastUpdated    sim.Time
}

// NewBasicPhysicalAsset creates an asset available from time zero onward.
func NewBasicPhysicalAsset(id sim.AssetID, name string) *BasicPhysicalAsset {
	return &BasicPhysicalAsset{
		id:          id,
		name:        name,
		physical:    map[string]float64{},
		performance: map[string]float64{},
		economic:    map[string]float64{},
		impact:      map[string]float64{},
	}
}

// WithPhysicalProperty sets a physical property and returns the receiver.
func (a *BasicPhysicalAsset) WithPhysicalProperty(name string, v float64) *BasicPhysicalAsset {
	a.physical[name] = v
	return a
}

// WithPerformance sets a performance characteristic.
func (a *BasicPhysicalAsset) WithPerformance(name string, v float64) *BasicPhysicalAsset {
	a.performance[name] = v
	return a
}

// WithEconomicAttribute sets an economic attribute (price, upkeep).
func (a *BasicPhysicalAsset) WithEconomicAttribute(name string, v float64) *BasicPhysicalAsset {
	a.economic[name] = v
	return a
}

// WithEnvironmentalImpact sets an environmental impact metric.
func (a *BasicPhysicalAsset) WithEnvironmentalImpact(name string, v float64) *BasicPhysicalAsset {
	a.impact[name] = v
	return a
}

// WithAvailability restricts the asset to [from, until]. Pass nil until for
// open-ended availability.
func (a *BasicPhysicalAsset) WithAvailability(from sim.Time, until *sim.Time) *BasicPhysicalAsset {
	a.availableFrom = from
	a.availableUntil = until
	return a
}

func (a *BasicPhysicalAsset) AssetID() sim.AssetID { return a.id }
func (a *BasicPhysicalAsset) Name() string         { return a.name }

func (a *BasicPhysicalAsset) PhysicalProperties() map[string]float64 {
	return copyMap(a.physical)
}

func (a *BasicPhysicalAsset) PerformanceCharacteristics() map[string]float64 {
	return copyMap(a.performance)
}

func (a *BasicPhysicalAsset) EconomicAttributes() map[string]float64 {
	return copyMap(a.economic)
}

func (a *BasicPhysicalAsset) EnvironmentalImpact() map[string]float64 {
	return copyMap(a.impact)
}

func (a *BasicPhysicalAsset) IsAvailable(t sim.Time) bool {
	if t < a.availableFrom {
		return false
	}
	return a.availableUntil == nil || t <= *a.availableUntil
}

func (a *BasicPhysicalAsset) UpdateState(t sim.Time) error {
	a.lastUpdated = t
	return nil
}

// LastUpdated returns the time of the most recent state update.
func (a *BasicPhysicalAsset) LastUpdated() sim.Time {
	return a.lastUpdated
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// BasicKnowledgeAsset is the stock KnowledgeAsset: static content with a
// reliability scalar, a topic, and an optional access list (empty list =
// accessible to everyone).
type BasicKnowledgeAsset struct {
	id          sim.AssetID
	content     string
	topic       string
	reliability float64
	timestamp   sim.Time
	metadata    map[string]string
	accessList  map[sim.AgentID]bool
}

// NewBasicKnowledgeAsset creates a fully public knowledge asset.
func NewBasicKnowledgeAsset(id sim.AssetID, content, topic string, reliability float64, timestamp sim.Time) *BasicKnowledgeAsset {
	return &BasicKnowledgeAsset{
		id:          id,
		content:     content,
		topic:       topic,
		reliability: reliability,
		timestamp:   timestamp,
		metadata:    map[string]string{},
		accessList:  map[sim.AgentID]bool{},
	}
}

// RestrictTo limits access to the listed agents.
func (k *BasicKnowledgeAsset) RestrictTo(agents ...sim.AgentID) *BasicKnowledgeAsset {
	for _, id := range agents {
		k.accessList[id] = true
	}
	return k
}

// WithMetadata sets a metadata key.
func (k *BasicKnowledgeAsset) WithMetadata(key, value string) *BasicKnowledgeAsset {
	k.metadata[key] = value
	return k
}

func (k *BasicKnowledgeAsset) AssetID() sim.AssetID { return k.id }
func (k *BasicKnowledgeAsset) Content() string      { return k.content }
func (k *BasicKnowledgeAsset) Reliability() float64 { return k.reliability }
func (k *BasicKnowledgeAsset) Timestamp() sim.Time  { return k.timestamp }

// Relevance is 1 for an exact topic match, 0 otherwise.
func (k *BasicKnowledgeAsset) Relevance(topic string) float64 {
	if topic == k.topic {
		return 1.0
	}
	return 0.0
}

func (k *BasicKnowledgeAsset) IsAccessibleTo(agentID sim.AgentID) bool {
	if len(k.accessList) == 0 {
		return true
	}
	return k.accessList[agentID]
}

func (k *BasicKnowledgeAsset) Metadata() map[string]string {
	out := make(map[string]string, len(k.metadata))
	for key, v := range k.metadata {
		out[key] = v
	}
	return out
}

func (k *BasicKnowledgeAsset) UpdateReliability(v float64) error {
	if v < 0 || v > 1 {
		return errs.Environmentf("reliability %v out of range [0,1]", v)
	}
	k.reliability = v
	return nil
}

// BasicNetwork is an undirected weighted adjacency-map network.
type BasicNetwork struct {
	members []sim.AgentID
	present map[sim.AgentID]bool
	edges   map[sim.AgentID]map[sim.AgentID]float64
}

// NewBasicNetwork creates an empty network.
func NewBasicNetwork() *BasicNetwork {
	return &BasicNetwork{
		present: map[sim.AgentID]bool{},
		edges:   map[sim.AgentID]map[sim.AgentID]float64{},
	}
}

func (n *BasicNetwork) Agents() []sim.AgentID {
	out := make([]sim.AgentID, len(n.members))
	copy(out, n.members)
	return out
}

func (n *BasicNetwork) AddAgent(id sim.AgentID) error {
	if n.present[id] {
		return errs.Agentf("agent %s already in network", id)
	}
	n.present[id] = true
	n.members = append(n.members, id)
	return nil
}

func (n *BasicNetwork) RemoveAgent(id sim.AgentID) error {
	if !n.present[id] {
		return errs.Agentf("agent %s not in network", id)
	}
	delete(n.present, id)
	for i, m := range n.members {
		if m == id {
			n.members = append(n.members[:i], n.members[i+1:]...)
			break
		}
	}
	for peer := range n.edges[id] {
		delete(n.edges[peer], id)
	}
	delete(n.edges, id)
	return nil
}

// Connect creates or updates the undirected edge between a and b.
func (n *BasicNetwork) Connect(a, b sim.AgentID, strength float64) error {
	if !n.present[a] || !n.present[b] {
		return errs.Agentf("both agents must be in the network to connect")
	}
	if strength < 0 || strength > 1 {
		return errs.Agentf("connection strength %v out of range [0,1]", strength)
	}
	if n.edges[a] == nil {
		n.edges[a] = map[sim.AgentID]float64{}
	}
	if n.edges[b] == nil {
		n.edges[b] = map[sim.AgentID]float64{}
	}
	n.edges[a][b] = strength
	n.edges[b][a] = strength
	return nil
}

func (n *BasicNetwork) AreConnected(a, b sim.AgentID) bool {
	_, ok := n.edges[a][b]
	return ok
}

func (n *BasicNetwork) ConnectionStrength(a, b sim.AgentID) float64 {
	return n.edges[a][b]
}

func (n *BasicNetwork) Neighbors(id sim.AgentID) []sim.AgentID {
	peers := n.edges[id]
	// Stable order: walk members, not the edge map.
	var out []sim.AgentID
	for _, m := range n.members {
		if _, ok := peers[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (n *BasicNetwork) Stats() NetworkStats {
	agentCount := len(n.members)
	edgeCount := 0
	for _, peers := range n.edges {
		edgeCount += len(peers)
	}
	edgeCount /= 2 // each undirected edge counted twice

	stats := NetworkStats{
		AgentCount:      agentCount,
		ConnectionCount: edgeCount,
	}
	if agentCount > 0 {
		stats.AverageDegree = 2 * float64(edgeCount) / float64(agentCount)
	}
	if agentCount > 1 {
		possible := float64(agentCount*(agentCount-1)) / 2
		stats.Density = float64(edgeCount) / possible
	}
	stats.ClusteringCoefficient = n.clustering()
	return stats
}

// clustering is the mean local clustering coefficient over members with at
// least two neighbors.
func (n *BasicNetwork) clustering() float64 {
	total := 0.0
	counted := 0
	for _, m := range n.members {
		neighbors := n.Neighbors(m)
		k := len(neighbors)
		if k < 2 {
			continue
		}
		links := 0
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if n.AreConnected(neighbors[i], neighbors[j]) {
					links++
				}
			}
		}
		total += 2 * float64(links) / float64(k*(k-1))
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// OpenRules allows every interaction at zero cost and produces a single
// unit-magnitude effect on the target. Useful as a default and in tests.
type OpenRules struct{}

func (OpenRules) IsInteractionAllowed(_ context.Context, _, _ sim.AgentID, _ any, _ sim.Time) (bool, error) {
	return true, nil
}

func (OpenRules) ProcessInteraction(_ context.Context, _, target sim.AgentID, interaction any, _ sim.Time) ([]InteractionEffect, error) {
	effectType := "interaction"
	if s, ok := interaction.(string); ok {
		effectType = s
	}
	return []InteractionEffect{{
		TargetAgent: target,
		EffectType:  effectType,
		Magnitude:   1.0,
	}}, nil
}

func (OpenRules) InteractionCost(_ any) float64 {
	return 0
}
