// Package validate checks agent attributes and model scalars against
// configurable rules before they enter a simulation.
package validate

import (
	"github.com/talgya/choicesim/agent"
	"github.com/talgya/choicesim/errs"
)

// Rules configures attribute validation. Zero value: no required names, no
// socioeconomic bounds beyond non-negativity.
type Rules struct {
	RequiredPsychological []string
	RequiredSocioeconomic []string

	// Optional per-attribute bounds on socioeconomic values, applied after
	// the global non-negativity check.
	SocioeconomicMin map[string]float64
	SocioeconomicMax map[string]float64
}

// Validator applies Rules to agent attributes.
type Validator struct {
	rules Rules
}

// New creates a validator with the given rules.
func New(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// ValidateAttributes checks the attribute invariants: every required name
// present, psychological values in [0,1], socioeconomic values >= 0 and
// within any configured bounds. The first violation found is returned.
func (v *Validator) ValidateAttributes(attrs agent.Attributes) error {
	psych := attrs.Psychological()
	socio := attrs.Socioeconomic()

	for _, name := range v.rules.RequiredPsychological {
		if _, ok := psych[name]; !ok {
			return errs.Validationf("missing required psychological attribute %q", name)
		}
	}
	for _, name := range v.rules.RequiredSocioeconomic {
		if _, ok := socio[name]; !ok {
			return errs.Validationf("missing required socioeconomic attribute %q", name)
		}
	}

	for name, val := range psych {
		if val < 0 || val > 1 {
			return errs.Validationf("psychological attribute %q = %v out of range [0,1]", name, val)
		}
	}

	for name, val := range socio {
		if val < 0 {
			return errs.Validationf("socioeconomic attribute %q = %v is negative", name, val)
		}
		if min, ok := v.rules.SocioeconomicMin[name]; ok && val < min {
			return errs.Validationf("socioeconomic attribute %q = %v below minimum %v", name, val, min)
		}
		if max, ok := v.rules.SocioeconomicMax[name]; ok && val > max {
			return errs.Validationf("socioeconomic attribute %q = %v above maximum %v", name, val, max)
		}
	}

	return nil
}

// ValidateProbability checks that v lies in [0,1].
func ValidateProbability(name string, val float64) error {
	if val < 0 || val > 1 {
		return errs.Validationf("%s = %v out of range [0,1]", name, val)
	}
	return nil
}

// ValidateReliability checks an information reliability scalar.
func ValidateReliability(val float64) error {
	return ValidateProbability("reliability", val)
}

// ValidateScores checks a dimension score map: every value in [0,1].
func ValidateScores[K ~string](scores map[K]float64) error {
	for dim, val := range scores {
		if val < 0 || val > 1 {
			return errs.Validationf("score for %s = %v out of range [0,1]", string(dim), val)
		}
	}
	return nil
}
