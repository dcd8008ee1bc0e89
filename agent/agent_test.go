package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/talgya/choicesim/errs"
	"github.com/talgya/choicesim/sim"
)

type productChoice struct {
	Name  string
	Price float64
}

type budgetContext struct {
	Budget float64
}

// firstAffordable picks the first choice within budget.
type firstAffordable struct {
	decline   bool
	chooseErr error
	evalErr   error
}

func (m *firstAffordable) MakeChoice(_ context.Context, choices []productChoice, dctx budgetContext, _ sim.Trigger) (productChoice, bool, error) {
	if m.chooseErr != nil {
		return productChoice{}, false, m.chooseErr
	}
	for _, c := range choices {
		if c.Price <= dctx.Budget {
			return c, true, nil
		}
	}
	return productChoice{}, false, nil
}

func (m *firstAffordable) EvaluateChoice(_ context.Context, c productChoice, dims []sim.Dimension, _ budgetContext) (map[sim.Dimension]float64, error) {
	if m.evalErr != nil {
		return nil, m.evalErr
	}
	scores := make(map[sim.Dimension]float64, len(dims))
	for _, d := range dims {
		scores[d] = 1.0 - c.Price/1000.0
	}
	return scores, nil
}

func (m *firstAffordable) ShouldMakeChoice(_ sim.Trigger, _ budgetContext) bool {
	return !m.decline
}

func (m *firstAffordable) Dimensions() []sim.Dimension {
	return []sim.Dimension{sim.DimEconomic}
}

func newTestAgent(module *firstAffordable) *Agent[productChoice, budgetContext] {
	attrs := NewBasicAttributes(sim.NewAgentID()).
		WithPsychological("risk_aversion", 0.5).
		WithSocioeconomic("income", 50000)
	return New[productChoice, budgetContext](attrs, module)
}

func TestProcessTriggerRecordsChoice(t *testing.T) {
	a := newTestAgent(&firstAffordable{})
	choices := []productChoice{{Name: "sedan", Price: 400}}

	chosen, ok, err := a.ProcessTrigger(context.Background(), sim.TriggerEconomic, choices, budgetContext{Budget: 500}, 3.0)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || chosen.Name != "sedan" {
		t.Fatalf("expected sedan to be chosen, got ok=%v %+v", ok, chosen)
	}

	if len(a.History()) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(a.History()))
	}
	rec := a.History()[0]
	if rec.Time != 3.0 || rec.Trigger != sim.TriggerEconomic {
		t.Errorf("record mismatch: %+v", rec)
	}
	if last, has := a.LastChoiceTime(); !has || last != 3.0 {
		t.Errorf("last choice time = %v (has=%v), want 3.0", last, has)
	}
}

func TestProcessTriggerDecline(t *testing.T) {
	a := newTestAgent(&firstAffordable{decline: true})

	_, ok, err := a.ProcessTrigger(context.Background(), sim.TriggerTemporal, nil, budgetContext{}, 1.0)
	if err != nil || ok {
		t.Fatalf("declined module must yield no choice: ok=%v err=%v", ok, err)
	}
	if len(a.History()) != 0 {
		t.Error("history must be unchanged when no choice is made")
	}
	if _, has := a.LastChoiceTime(); has {
		t.Error("last choice time must be unset when no choice is made")
	}
}

func TestProcessTriggerNoAffordableChoice(t *testing.T) {
	a := newTestAgent(&firstAffordable{})
	choices := []productChoice{{Name: "yacht", Price: 9000}}

	_, ok, err := a.ProcessTrigger(context.Background(), sim.TriggerEconomic, choices, budgetContext{Budget: 100}, 1.0)
	if err != nil || ok {
		t.Fatalf("unaffordable choice set must yield nothing: ok=%v err=%v", ok, err)
	}
	if len(a.History()) != 0 {
		t.Error("history must stay empty")
	}
}

func TestProcessTriggerErrorsDoNotRecord(t *testing.T) {
	boom := errors.New("boom")
	for name, module := range map[string]*firstAffordable{
		"choose": {chooseErr: boom},
		"eval":   {evalErr: boom},
	} {
		a := newTestAgent(module)
		_, _, err := a.ProcessTrigger(context.Background(), sim.TriggerEconomic,
			[]productChoice{{Name: "x", Price: 1}}, budgetContext{Budget: 10}, 1.0)
		if !errors.Is(err, boom) {
			t.Errorf("%s: expected boom, got %v", name, err)
		}
		if len(a.History()) != 0 {
			t.Errorf("%s: failed trigger must not append history", name)
		}
	}
}

func TestHistoryMonotonicAndRange(t *testing.T) {
	a := newTestAgent(&firstAffordable{})
	dctx := budgetContext{Budget: 500}
	choices := []productChoice{{Name: "sedan", Price: 400}}

	for _, tick := range []sim.Time{1, 2, 5, 9} {
		if _, ok, err := a.ProcessTrigger(context.Background(), sim.TriggerTemporal, choices, dctx, tick); err != nil || !ok {
			t.Fatalf("tick %v: ok=%v err=%v", tick, ok, err)
		}
	}

	prev := sim.Time(-1)
	for _, rec := range a.History() {
		if rec.Time < prev {
			t.Fatalf("history time decreased: %v after %v", rec.Time, prev)
		}
		prev = rec.Time
	}

	in := a.ChoicesInRange(2, 5)
	if len(in) != 2 {
		t.Errorf("expected 2 records in [2,5], got %d", len(in))
	}

	latest, ok := a.MostRecentChoice()
	if !ok || latest.Time != 9 {
		t.Errorf("most recent choice time = %v (ok=%v), want 9", latest.Time, ok)
	}
}

func TestClearHistory(t *testing.T) {
	a := newTestAgent(&firstAffordable{})
	if _, _, err := a.ProcessTrigger(context.Background(), sim.TriggerTemporal,
		[]productChoice{{Name: "sedan", Price: 1}}, budgetContext{Budget: 10}, 1.0); err != nil {
		t.Fatal(err)
	}

	a.ClearHistory()
	if len(a.History()) != 0 {
		t.Error("history not cleared")
	}
	if _, has := a.LastChoiceTime(); has {
		t.Error("last choice time not cleared")
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	a := newTestAgent(&firstAffordable{})
	if _, _, err := a.ProcessTrigger(context.Background(), sim.TriggerTemporal,
		[]productChoice{{Name: "sedan", Price: 1}}, budgetContext{Budget: 10}, 1.0); err != nil {
		t.Fatal(err)
	}

	got := a.History()
	got[0].Choice.Name = "tampered"
	got[0].Time = 99

	fresh := a.History()
	if fresh[0].Choice.Name != "sedan" || fresh[0].Time != 1 {
		t.Errorf("mutating the returned slice altered the history: %+v", fresh[0])
	}
}

func TestBasicAttributesUpdate(t *testing.T) {
	attrs := NewBasicAttributes(sim.NewAgentID()).
		WithPsychological("risk_aversion", 0.5).
		WithSocioeconomic("income", 50000)

	if err := attrs.Update(map[string]float64{"risk_aversion": 0.9, "income": 60000}); err != nil {
		t.Fatal(err)
	}
	if v, _ := PsychologicalAttribute(attrs, "risk_aversion"); v != 0.9 {
		t.Errorf("risk_aversion = %v, want 0.9", v)
	}
	if v, _ := SocioeconomicAttribute(attrs, "income"); v != 60000 {
		t.Errorf("income = %v, want 60000", v)
	}

	err := attrs.Update(map[string]float64{"shoe_size": 42})
	if err == nil {
		t.Fatal("unknown attribute must fail the update")
	}
	if errs.KindOf(err) != errs.KindAgent {
		t.Errorf("expected agent error kind, got %q", errs.KindOf(err))
	}
}

func TestStockOwnership(t *testing.T) {
	attrs := NewBasicAttributes(sim.NewAgentID()).
		WithStock("car", "sedan").
		WithStockUnowned("house")

	if !OwnsStock(attrs, "car") {
		t.Error("car should be owned")
	}
	if OwnsStock(attrs, "house") {
		t.Error("house is known but unowned")
	}
	if OwnsStock(attrs, "boat") {
		t.Error("boat is unknown")
	}
}
