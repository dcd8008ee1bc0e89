// Package info models information flow between the environment and agents:
// the Information value object, the filter and distorter capabilities, and
// the Transformer that runs an agent-specific filter/distort pipeline.
package info

import (
	"context"

	"github.com/talgya/choicesim/sim"
)

// Information is a single piece of information circulating in a simulation.
// Distortion produces a new value; a filtered item is never mutated in
// place.
type Information struct {
	Content     string
	Source      sim.AgentID
	Timestamp   sim.Time
	Reliability float64 // [0,1]
	Topic       string
	Metadata    map[string]string
}

// New creates an information value without metadata.
func New(content string, source sim.AgentID, timestamp sim.Time, reliability float64, topic string) Information {
	return Information{
		Content:     content,
		Source:      source,
		Timestamp:   timestamp,
		Reliability: reliability,
		Topic:       topic,
	}
}

// WithMetadata returns a copy with the key set.
func (i Information) WithMetadata(key, value string) Information {
	md := make(map[string]string, len(i.Metadata)+1)
	for k, v := range i.Metadata {
		md[k] = v
	}
	md[key] = value
	i.Metadata = md
	return i
}

// Age returns how old the information is at now.
func (i Information) Age(now sim.Time) sim.Time {
	return now - i.Timestamp
}

// IsRecent reports whether the information is at most threshold old at now.
func (i Information) IsRecent(now, threshold sim.Time) bool {
	return now-i.Timestamp <= threshold
}

// FilterContext carries the per-tick parameters filters consult.
type FilterContext struct {
	CurrentTime          sim.Time
	AgentInterests       []string
	RelevanceThreshold   float64
	ReliabilityThreshold float64
	RecencyThreshold     sim.Time
	MaxItems             int // 0 = unlimited
}

// NewFilterContext creates a filter context with the default thresholds.
func NewFilterContext(now sim.Time) FilterContext {
	return FilterContext{
		CurrentTime:          now,
		RelevanceThreshold:   0.5,
		ReliabilityThreshold: 0.3,
		RecencyThreshold:     100.0,
	}
}

// DistortionContext carries the per-tick parameters distorters consult.
type DistortionContext struct {
	CurrentTime            sim.Time
	AgentBiases            map[string]float64
	SocialInfluence        float64
	StressLevel            float64
	ConfirmationBiasWeight float64
}

// NewDistortionContext creates a distortion context with the default
// confirmation-bias weight.
func NewDistortionContext(now sim.Time) DistortionContext {
	return DistortionContext{
		CurrentTime:            now,
		ConfirmationBiasWeight: 0.5,
	}
}

// Filter narrows an information batch for one agent. Filters compose as a
// pipeline: a later filter only sees what survived earlier filters.
type Filter interface {
	// FilterInformation returns the surviving subset of items.
	FilterInformation(ctx context.Context, items []Information, agentID sim.AgentID, fctx FilterContext) ([]Information, error)

	// Passes reports whether a single item survives this filter.
	Passes(ctx context.Context, item Information, agentID sim.AgentID, fctx FilterContext) (bool, error)

	// Name identifies the filter in logs and events.
	Name() string

	// Parameters exposes the filter's tuning values.
	Parameters() map[string]float64
}

// Distorter applies agent-specific bias to a single information item,
// returning the (possibly modified) item.
type Distorter interface {
	DistortInformation(ctx context.Context, item Information, agentID sim.AgentID, dctx DistortionContext) (Information, error)

	// Magnitude estimates how strongly this distorter would alter the item.
	Magnitude(item Information, agentID sim.AgentID) float64

	// Name identifies the distorter in logs and events.
	Name() string

	// Parameters exposes the distorter's tuning values.
	Parameters() map[string]float64
}

// Transformer runs the per-agent information pipeline: every filter in
// registration order over the batch, then every distorter in registration
// order over each surviving item, caching the final list per agent.
type Transformer struct {
	filters    []Filter
	distorters []Distorter

	cache       map[sim.AgentID][]Information
	cacheExpiry sim.Time // single global threshold, not per-entry
}

// NewTransformer creates a transformer whose cache expires wholesale once
// the simulation passes cacheExpiry.
func NewTransformer(cacheExpiry sim.Time) *Transformer {
	return &Transformer{
		cache:       map[sim.AgentID][]Information{},
		cacheExpiry: cacheExpiry,
	}
}

// AddFilter appends a filter to the pipeline.
func (t *Transformer) AddFilter(f Filter) {
	t.filters = append(t.filters, f)
}

// AddDistorter appends a distorter to the pipeline.
func (t *Transformer) AddDistorter(d Distorter) {
	t.distorters = append(t.distorters, d)
}

// FilterCount returns the number of registered filters.
func (t *Transformer) FilterCount() int {
	return len(t.filters)
}

// DistorterCount returns the number of registered distorters.
func (t *Transformer) DistorterCount() int {
	return len(t.distorters)
}

// ProcessForAgent runs the raw batch through the full pipeline for one
// agent and caches the result under the agent's ID, overwriting any prior
// entry. An error from any filter or distorter aborts the whole call and
// caches nothing.
func (t *Transformer) ProcessForAgent(ctx context.Context, agentID sim.AgentID, raw []Information, fctx FilterContext, dctx DistortionContext) ([]Information, error) {
	items := raw
	for _, f := range t.filters {
		var err error
		items, err = f.FilterInformation(ctx, items, agentID, fctx)
		if err != nil {
			return nil, err
		}
	}

	out := make([]Information, 0, len(items))
	for _, item := range items {
		distorted := item
		for _, d := range t.distorters {
			var err error
			distorted, err = d.DistortInformation(ctx, distorted, agentID, dctx)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, distorted)
	}

	t.cache[agentID] = out
	return out, nil
}

// Cached returns the most recently processed list for the agent.
func (t *Transformer) Cached(agentID sim.AgentID) ([]Information, bool) {
	items, ok := t.cache[agentID]
	return items, ok
}

// ClearExpiredCache drops the entire cache once now passes the global
// expiry threshold. The policy is deliberately coarse: individual entries
// do not carry their own timestamps.
func (t *Transformer) ClearExpiredCache(now sim.Time) {
	if now > t.cacheExpiry {
		t.cache = map[sim.AgentID][]Information{}
	}
}
