package validate

import (
	"testing"

	"github.com/talgya/choicesim/agent"
	"github.com/talgya/choicesim/errs"
	"github.com/talgya/choicesim/sim"
)

func TestValidateAttributes(t *testing.T) {
	v := New(Rules{
		RequiredPsychological: []string{"openness"},
		RequiredSocioeconomic: []string{"income"},
		SocioeconomicMax:      map[string]float64{"age": 120},
	})

	tests := []struct {
		name    string
		attrs   *agent.BasicAttributes
		wantErr bool
	}{
		{
			name: "valid",
			attrs: agent.NewBasicAttributes(sim.NewAgentID()).
				WithPsychological("openness", 0.7).
				WithSocioeconomic("income", 52000),
		},
		{
			name: "boundary values pass",
			attrs: agent.NewBasicAttributes(sim.NewAgentID()).
				WithPsychological("openness", 0.0).
				WithPsychological("risk_aversion", 1.0).
				WithSocioeconomic("income", 0),
		},
		{
			name: "psychological above one",
			attrs: agent.NewBasicAttributes(sim.NewAgentID()).
				WithPsychological("openness", 1.5).
				WithSocioeconomic("income", 100),
			wantErr: true,
		},
		{
			name: "negative socioeconomic",
			attrs: agent.NewBasicAttributes(sim.NewAgentID()).
				WithPsychological("openness", 0.5).
				WithSocioeconomic("income", -1),
			wantErr: true,
		},
		{
			name: "missing required psychological",
			attrs: agent.NewBasicAttributes(sim.NewAgentID()).
				WithSocioeconomic("income", 100),
			wantErr: true,
		},
		{
			name: "missing required socioeconomic",
			attrs: agent.NewBasicAttributes(sim.NewAgentID()).
				WithPsychological("openness", 0.5),
			wantErr: true,
		},
		{
			name: "above configured maximum",
			attrs: agent.NewBasicAttributes(sim.NewAgentID()).
				WithPsychological("openness", 0.5).
				WithSocioeconomic("income", 100).
				WithSocioeconomic("age", 130),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAttributes(tt.attrs)
			if tt.wantErr && err == nil {
				t.Fatal("validation passed, want failure")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("validation failed: %v", err)
			}
			if err != nil && errs.KindOf(err) != errs.KindValidation {
				t.Errorf("kind = %v, want validation", errs.KindOf(err))
			}
		})
	}
}

func TestValidateProbability(t *testing.T) {
	if err := ValidateProbability("adoption_rate", 0.0); err != nil {
		t.Errorf("0.0 rejected: %v", err)
	}
	if err := ValidateProbability("adoption_rate", 1.0); err != nil {
		t.Errorf("1.0 rejected: %v", err)
	}
	if err := ValidateProbability("adoption_rate", 1.5); err == nil {
		t.Error("1.5 accepted")
	}
	if err := ValidateReliability(-0.1); err == nil {
		t.Error("-0.1 accepted")
	}
}

func TestValidateScores(t *testing.T) {
	good := map[sim.Dimension]float64{sim.DimEconomic: 0.4, sim.DimSocial: 1.0}
	if err := ValidateScores(good); err != nil {
		t.Errorf("valid scores rejected: %v", err)
	}
	bad := map[sim.Dimension]float64{sim.DimEconomic: 1.1}
	if err := ValidateScores(bad); err == nil {
		t.Error("out-of-range score accepted")
	}
}
