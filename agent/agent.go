// Package agent defines the agent-side capabilities of the framework: the
// attribute set an agent exposes, the pluggable decision module it uses to
// pick among options, and the Agent composite that records choice history.
package agent

import (
	"context"

	"github.com/talgya/choicesim/sim"
)

// Attributes is the capability every agent exposes: psychological
// attributes (values in [0,1] by convention), socioeconomic attributes
// (non-negative by convention), and stock variables (nil state = not owned).
type Attributes interface {
	AgentID() sim.AgentID
	Psychological() map[string]float64
	Socioeconomic() map[string]float64
	StockVariables() map[string]*string

	// Update applies a bulk change set. It fails if any name is neither a
	// known psychological nor socioeconomic attribute.
	Update(changes map[string]float64) error
}

// PsychologicalAttribute looks up a single psychological attribute.
func PsychologicalAttribute(a Attributes, name string) (float64, bool) {
	v, ok := a.Psychological()[name]
	return v, ok
}

// SocioeconomicAttribute looks up a single socioeconomic attribute.
func SocioeconomicAttribute(a Attributes, name string) (float64, bool) {
	v, ok := a.Socioeconomic()[name]
	return v, ok
}

// OwnsStock reports whether the agent currently owns the named stock
// variable (present with a non-nil state).
func OwnsStock(a Attributes, name string) bool {
	s, ok := a.StockVariables()[name]
	return ok && s != nil
}

// ChoiceModule is the pluggable decision algorithm an agent uses. Ch is the
// concrete choice type, Ctx the decision context the model supplies.
type ChoiceModule[Ch, Ctx any] interface {
	// MakeChoice evaluates the available choices and selects at most one.
	// ok is false when the module declines to choose.
	MakeChoice(ctx context.Context, choices []Ch, dctx Ctx, trigger sim.Trigger) (choice Ch, ok bool, err error)

	// EvaluateChoice scores a single choice across the given dimensions.
	EvaluateChoice(ctx context.Context, choice Ch, dims []sim.Dimension, dctx Ctx) (map[sim.Dimension]float64, error)

	// ShouldMakeChoice reports whether the trigger warrants a decision at all.
	ShouldMakeChoice(trigger sim.Trigger, dctx Ctx) bool

	// Dimensions lists the evaluation dimensions this module considers.
	Dimensions() []sim.Dimension
}

// ChoiceRecord captures one choice an agent made: the option, when, what
// prompted it, and the per-dimension evaluation produced at choice time.
type ChoiceRecord[Ch any] struct {
	Choice  Ch
	Time    sim.Time
	Trigger sim.Trigger
	Scores  map[sim.Dimension]float64
}

// Agent composes one attribute set (mutable) with one choice module
// (immutable after construction) and keeps a chronological, append-only
// history of the choices made. ProcessTrigger is the only appender.
type Agent[Ch, Ctx any] struct {
	attributes Attributes
	module     ChoiceModule[Ch, Ctx]

	history        []ChoiceRecord[Ch]
	lastChoiceTime sim.Time
	hasChosen      bool
}

// New creates an agent from an attribute set and a choice module.
func New[Ch, Ctx any](attributes Attributes, module ChoiceModule[Ch, Ctx]) *Agent[Ch, Ctx] {
	return &Agent[Ch, Ctx]{
		attributes: attributes,
		module:     module,
	}
}

// ID returns the agent's identifier.
func (a *Agent[Ch, Ctx]) ID() sim.AgentID {
	return a.attributes.AgentID()
}

// Attributes returns the agent's attribute set.
func (a *Agent[Ch, Ctx]) Attributes() Attributes {
	return a.attributes
}

// Module returns the agent's choice module.
func (a *Agent[Ch, Ctx]) Module() ChoiceModule[Ch, Ctx] {
	return a.module
}

// History returns a copy of the agent's choice history, oldest first.
func (a *Agent[Ch, Ctx]) History() []ChoiceRecord[Ch] {
	out := make([]ChoiceRecord[Ch], len(a.history))
	copy(out, a.history)
	return out
}

// LastChoiceTime returns the time of the most recent choice. ok is false
// when the agent has never chosen.
func (a *Agent[Ch, Ctx]) LastChoiceTime() (sim.Time, bool) {
	return a.lastChoiceTime, a.hasChosen
}

// ProcessTrigger asks the choice module whether the trigger warrants a
// decision, and if the module selects an option, evaluates it and appends a
// choice record at now. ok is false when no choice was made; history is
// untouched in that case.
func (a *Agent[Ch, Ctx]) ProcessTrigger(ctx context.Context, trigger sim.Trigger, choices []Ch, dctx Ctx, now sim.Time) (Ch, bool, error) {
	var zero Ch

	if !a.module.ShouldMakeChoice(trigger, dctx) {
		return zero, false, nil
	}

	chosen, ok, err := a.module.MakeChoice(ctx, choices, dctx, trigger)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}

	scores, err := a.module.EvaluateChoice(ctx, chosen, a.module.Dimensions(), dctx)
	if err != nil {
		return zero, false, err
	}

	a.history = append(a.history, ChoiceRecord[Ch]{
		Choice:  chosen,
		Time:    now,
		Trigger: trigger,
		Scores:  scores,
	})
	a.lastChoiceTime = now
	a.hasChosen = true

	return chosen, true, nil
}

// ClearHistory drops the choice history and the last-choice timestamp.
func (a *Agent[Ch, Ctx]) ClearHistory() {
	a.history = nil
	a.lastChoiceTime = 0
	a.hasChosen = false
}

// ChoicesInRange returns the records with start <= Time <= end.
func (a *Agent[Ch, Ctx]) ChoicesInRange(start, end sim.Time) []ChoiceRecord[Ch] {
	var out []ChoiceRecord[Ch]
	for _, rec := range a.history {
		if rec.Time >= start && rec.Time <= end {
			out = append(out, rec)
		}
	}
	return out
}

// MostRecentChoice returns the newest record. ok is false when the history
// is empty.
func (a *Agent[Ch, Ctx]) MostRecentChoice() (ChoiceRecord[Ch], bool) {
	if len(a.history) == 0 {
		return ChoiceRecord[Ch]{}, false
	}
	return a.history[len(a.history)-1], true
}
