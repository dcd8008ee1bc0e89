package agent

import (
	"github.com/talgya/choicesim/errs"
	"github.com/talgya/choicesim/sim"
)

// BasicAttributes is the stock Attributes implementation backed by plain
// maps. Suitable for most models; implement Attributes directly when agent
// state lives elsewhere.
type BasicAttributes struct {
	id             sim.AgentID
	psychological  map[string]float64
	socioeconomic  map[string]float64
	stockVariables map[string]*string
}

// NewBasicAttributes creates an empty attribute set for the given agent.
func NewBasicAttributes(id sim.AgentID) *BasicAttributes {
	return &BasicAttributes{
		id:             id,
		psychological:  map[string]float64{},
		socioeconomic:  map[string]float64{},
		stockVariables: map[string]*string{},
	}
}

// WithPsychological sets a psychological attribute and returns the receiver
// for chaining.
func (b *BasicAttributes) WithPsychological(name string, value float64) *BasicAttributes {
	b.psychological[name] = value
	return b
}

// WithSocioeconomic sets a socioeconomic attribute and returns the receiver
// for chaining.
func (b *BasicAttributes) WithSocioeconomic(name string, value float64) *BasicAttributes {
	b.socioeconomic[name] = value
	return b
}

// WithStock records an owned stock variable in the given state.
func (b *BasicAttributes) WithStock(name, state string) *BasicAttributes {
	b.stockVariables[name] = &state
	return b
}

// WithStockUnowned records a known but unowned stock variable.
func (b *BasicAttributes) WithStockUnowned(name string) *BasicAttributes {
	b.stockVariables[name] = nil
	return b
}

// AgentID returns the owning agent's identifier.
func (b *BasicAttributes) AgentID() sim.AgentID {
	return b.id
}

// Psychological returns a copy of the psychological attribute map.
func (b *BasicAttributes) Psychological() map[string]float64 {
	out := make(map[string]float64, len(b.psychological))
	for k, v := range b.psychological {
		out[k] = v
	}
	return out
}

// Socioeconomic returns a copy of the socioeconomic attribute map.
func (b *BasicAttributes) Socioeconomic() map[string]float64 {
	out := make(map[string]float64, len(b.socioeconomic))
	for k, v := range b.socioeconomic {
		out[k] = v
	}
	return out
}

// StockVariables returns a copy of the stock variable map.
func (b *BasicAttributes) StockVariables() map[string]*string {
	out := make(map[string]*string, len(b.stockVariables))
	for k, v := range b.stockVariables {
		out[k] = v
	}
	return out
}

// Update applies a bulk change set. Each name must already exist as a
// psychological or socioeconomic attribute; an unknown name fails the whole
// call without applying the remaining changes.
func (b *BasicAttributes) Update(changes map[string]float64) error {
	for name, value := range changes {
		switch {
		case contains(b.psychological, name):
			b.psychological[name] = value
		case contains(b.socioeconomic, name):
			b.socioeconomic[name] = value
		default:
			return errs.Agentf("unknown attribute %q", name)
		}
	}
	return nil
}

func contains(m map[string]float64, name string) bool {
	_, ok := m[name]
	return ok
}
