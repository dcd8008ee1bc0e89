// Package sim provides the core scalar types and enumerations shared by
// every part of the consumer-choice framework: simulation time, decision
// triggers, and evaluation dimensions.
package sim

// Time is the simulated-time scalar. It is a model-defined unit (days,
// weeks, quarters), not wall-clock time.
type Time = float64

// Trigger is the categorical cause prompting an agent to consider a choice.
type Trigger string

const (
	TriggerTemporal      Trigger = "temporal"      // passage of time
	TriggerInformational Trigger = "informational" // information received
	TriggerSocial        Trigger = "social"        // social influence
	TriggerEconomic      Trigger = "economic"      // economic factors
	TriggerRegulatory    Trigger = "regulatory"    // regulatory changes
	TriggerTechnological Trigger = "technological" // technological changes
	TriggerEnvironmental Trigger = "environmental" // environmental factors
	TriggerPersonal      Trigger = "personal"      // personal circumstances
	TriggerStochastic    Trigger = "stochastic"    // random events
)

// CustomTrigger builds a model-defined trigger outside the standard set.
func CustomTrigger(name string) Trigger {
	return Trigger("custom:" + name)
}

// StandardTriggers returns the nine standard trigger types.
func StandardTriggers() []Trigger {
	return []Trigger{
		TriggerTemporal,
		TriggerInformational,
		TriggerSocial,
		TriggerEconomic,
		TriggerRegulatory,
		TriggerTechnological,
		TriggerEnvironmental,
		TriggerPersonal,
		TriggerStochastic,
	}
}

// Dimension is an axis along which a chosen option is scored.
type Dimension string

const (
	DimEconomic      Dimension = "economic"
	DimEnvironmental Dimension = "environmental"
	DimSocial        Dimension = "social"
	DimFunctional    Dimension = "functional"
	DimAesthetic     Dimension = "aesthetic"
	DimConvenience   Dimension = "convenience"
	DimSafety        Dimension = "safety"
	DimReliability   Dimension = "reliability"
	DimInnovation    Dimension = "innovation"
	DimBrand         Dimension = "brand"
)

// CustomDimension builds a model-defined evaluation dimension.
func CustomDimension(name string) Dimension {
	return Dimension("custom:" + name)
}

// StandardDimensions returns the ten standard evaluation dimensions.
func StandardDimensions() []Dimension {
	return []Dimension{
		DimEconomic,
		DimEnvironmental,
		DimSocial,
		DimFunctional,
		DimAesthetic,
		DimConvenience,
		DimSafety,
		DimReliability,
		DimInnovation,
		DimBrand,
	}
}
