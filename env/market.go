package env

import (
	"context"
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/choicesim/sim"
)

// MarketCycleProcess is an exogenous process that moves a market condition
// through smooth boom and bust cycles. Each activation samples a noise field
// at the current time and emits one change whose magnitude is the signed
// deviation from the neutral level, scaled by Amplitude.
type MarketCycleProcess struct {
	name      string
	noise     opensimplex.Noise
	amplitude float64
	frequency sim.Time
	timeScale float64

	affected []sim.AssetID
	lastRun  *sim.Time
}

// NewMarketCycleProcess creates a cycle process activating every frequency
// time units. timeScale stretches the noise field along the time axis; small
// values give long, slow cycles.
func NewMarketCycleProcess(name string, seed int64, amplitude float64, frequency sim.Time, timeScale float64) *MarketCycleProcess {
	return &MarketCycleProcess{
		name:      name,
		noise:     opensimplex.NewNormalized(seed),
		amplitude: amplitude,
		frequency: frequency,
		timeScale: timeScale,
	}
}

// Affecting declares which assets the emitted changes reference.
func (p *MarketCycleProcess) Affecting(assets ...sim.AssetID) *MarketCycleProcess {
	p.affected = append(p.affected, assets...)
	return p
}

func (p *MarketCycleProcess) Name() string        { return p.name }
func (p *MarketCycleProcess) Frequency() sim.Time { return p.frequency }

// IsActive reports whether a full activation interval has elapsed since the
// last run. The process is always active on its first call.
func (p *MarketCycleProcess) IsActive(t sim.Time) bool {
	if p.lastRun == nil {
		return true
	}
	return t-*p.lastRun >= p.frequency
}

// Condition samples the cycle level at t, normalized to [0,1] where 0.5 is
// the neutral market.
func (p *MarketCycleProcess) Condition(t sim.Time) float64 {
	return p.noise.Eval2(float64(t)*p.timeScale, 0)
}

func (p *MarketCycleProcess) UpdateEnvironment(_ context.Context, t sim.Time) ([]Change, error) {
	level := p.Condition(t)
	magnitude := (level - 0.5) * 2 * p.amplitude
	p.lastRun = &t

	changeType := "market_downturn"
	if magnitude >= 0 {
		changeType = "market_upturn"
	}

	return []Change{{
		Type:           changeType,
		AffectedAssets: append([]sim.AssetID(nil), p.affected...),
		Magnitude:      magnitude,
		Description:    fmt.Sprintf("%s: market condition %.3f at t=%.1f", p.name, level, t),
	}}, nil
}
