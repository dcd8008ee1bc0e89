package info

import (
	"context"
	"math/rand"
	"strings"

	"github.com/talgya/choicesim/sim"
)

// ReliabilityFilter drops items whose reliability is below a minimum.
type ReliabilityFilter struct {
	MinReliability float64
}

// NewReliabilityFilter creates a reliability filter.
func NewReliabilityFilter(min float64) *ReliabilityFilter {
	return &ReliabilityFilter{MinReliability: min}
}

func (f *ReliabilityFilter) FilterInformation(ctx context.Context, items []Information, agentID sim.AgentID, fctx FilterContext) ([]Information, error) {
	return keep(ctx, f, items, agentID, fctx)
}

func (f *ReliabilityFilter) Passes(_ context.Context, item Information, _ sim.AgentID, _ FilterContext) (bool, error) {
	return item.Reliability >= f.MinReliability, nil
}

func (f *ReliabilityFilter) Name() string { return "reliability" }

func (f *ReliabilityFilter) Parameters() map[string]float64 {
	return map[string]float64{"min_reliability": f.MinReliability}
}

// RecencyFilter drops items older than the context's recency threshold.
type RecencyFilter struct{}

func (f *RecencyFilter) FilterInformation(ctx context.Context, items []Information, agentID sim.AgentID, fctx FilterContext) ([]Information, error) {
	return keep(ctx, f, items, agentID, fctx)
}

func (f *RecencyFilter) Passes(_ context.Context, item Information, _ sim.AgentID, fctx FilterContext) (bool, error) {
	return item.IsRecent(fctx.CurrentTime, fctx.RecencyThreshold), nil
}

func (f *RecencyFilter) Name() string { return "recency" }

func (f *RecencyFilter) Parameters() map[string]float64 {
	return map[string]float64{}
}

// TopicFilter keeps items whose topic matches one of the agent's interests
// (case-insensitive substring match). Items pass unconditionally when the
// context lists no interests.
type TopicFilter struct{}

func (f *TopicFilter) FilterInformation(ctx context.Context, items []Information, agentID sim.AgentID, fctx FilterContext) ([]Information, error) {
	return keep(ctx, f, items, agentID, fctx)
}

func (f *TopicFilter) Passes(_ context.Context, item Information, _ sim.AgentID, fctx FilterContext) (bool, error) {
	if len(fctx.AgentInterests) == 0 {
		return true, nil
	}
	topic := strings.ToLower(item.Topic)
	for _, interest := range fctx.AgentInterests {
		if strings.Contains(topic, strings.ToLower(interest)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *TopicFilter) Name() string { return "topic" }

func (f *TopicFilter) Parameters() map[string]float64 {
	return map[string]float64{}
}

// MaxItemsFilter truncates the batch to the context's MaxItems, keeping the
// earliest-positioned items. A MaxItems of zero means unlimited.
type MaxItemsFilter struct{}

func (f *MaxItemsFilter) FilterInformation(_ context.Context, items []Information, _ sim.AgentID, fctx FilterContext) ([]Information, error) {
	if fctx.MaxItems <= 0 || len(items) <= fctx.MaxItems {
		return items, nil
	}
	return items[:fctx.MaxItems], nil
}

func (f *MaxItemsFilter) Passes(_ context.Context, _ Information, _ sim.AgentID, _ FilterContext) (bool, error) {
	// Truncation is positional; a single item always passes in isolation.
	return true, nil
}

func (f *MaxItemsFilter) Name() string { return "max_items" }

func (f *MaxItemsFilter) Parameters() map[string]float64 {
	return map[string]float64{}
}

// keep applies a per-item filter over the batch, preserving order.
func keep(ctx context.Context, f Filter, items []Information, agentID sim.AgentID, fctx FilterContext) ([]Information, error) {
	out := items[:0:0]
	for _, item := range items {
		ok, err := f.Passes(ctx, item, agentID, fctx)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// ConfirmationBiasDistorter nudges reliability upward in proportion to the
// context's confirmation-bias weight, clamped to [0,1].
type ConfirmationBiasDistorter struct {
	BiasStrength float64
}

// NewConfirmationBiasDistorter creates a confirmation-bias distorter.
func NewConfirmationBiasDistorter(strength float64) *ConfirmationBiasDistorter {
	return &ConfirmationBiasDistorter{BiasStrength: strength}
}

func (d *ConfirmationBiasDistorter) DistortInformation(_ context.Context, item Information, _ sim.AgentID, dctx DistortionContext) (Information, error) {
	item.Reliability = clamp01(item.Reliability + dctx.ConfirmationBiasWeight*d.BiasStrength)
	return item, nil
}

func (d *ConfirmationBiasDistorter) Magnitude(_ Information, _ sim.AgentID) float64 {
	return d.BiasStrength
}

func (d *ConfirmationBiasDistorter) Name() string { return "confirmation_bias" }

func (d *ConfirmationBiasDistorter) Parameters() map[string]float64 {
	return map[string]float64{"bias_strength": d.BiasStrength}
}

// NoiseDistorter jitters reliability by a seeded uniform perturbation in
// [-amplitude, +amplitude], clamped to [0,1]. Seeded so runs replay.
type NoiseDistorter struct {
	Amplitude float64
	rng       *rand.Rand
}

// NewNoiseDistorter creates a noise distorter with its own seeded rng.
func NewNoiseDistorter(amplitude float64, seed int64) *NoiseDistorter {
	return &NoiseDistorter{
		Amplitude: amplitude,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (d *NoiseDistorter) DistortInformation(_ context.Context, item Information, _ sim.AgentID, _ DistortionContext) (Information, error) {
	jitter := (d.rng.Float64()*2 - 1) * d.Amplitude
	item.Reliability = clamp01(item.Reliability + jitter)
	return item, nil
}

func (d *NoiseDistorter) Magnitude(_ Information, _ sim.AgentID) float64 {
	return d.Amplitude
}

func (d *NoiseDistorter) Name() string { return "noise" }

func (d *NoiseDistorter) Parameters() map[string]float64 {
	return map[string]float64{"amplitude": d.Amplitude}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
