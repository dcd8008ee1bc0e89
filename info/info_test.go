package info

import (
	"context"
	"errors"
	"testing"

	"github.com/talgya/choicesim/sim"
)

// recordingFilter tracks the batches it saw and rejects by content.
type recordingFilter struct {
	reject map[string]bool
	seen   [][]string
	err    error
}

func (f *recordingFilter) FilterInformation(_ context.Context, items []Information, _ sim.AgentID, _ FilterContext) ([]Information, error) {
	if f.err != nil {
		return nil, f.err
	}
	var contents []string
	var out []Information
	for _, item := range items {
		contents = append(contents, item.Content)
		if !f.reject[item.Content] {
			out = append(out, item)
		}
	}
	f.seen = append(f.seen, contents)
	return out, nil
}

func (f *recordingFilter) Passes(_ context.Context, item Information, _ sim.AgentID, _ FilterContext) (bool, error) {
	return !f.reject[item.Content], f.err
}

func (f *recordingFilter) Name() string                   { return "recording" }
func (f *recordingFilter) Parameters() map[string]float64 { return nil }

// countingDistorter counts invocations and tags items it touched.
type countingDistorter struct {
	calls int
	err   error
}

func (d *countingDistorter) DistortInformation(_ context.Context, item Information, _ sim.AgentID, _ DistortionContext) (Information, error) {
	if d.err != nil {
		return Information{}, d.err
	}
	d.calls++
	return item.WithMetadata("touched", "yes"), nil
}

func (d *countingDistorter) Magnitude(Information, sim.AgentID) float64 { return 0 }
func (d *countingDistorter) Name() string                               { return "counting" }
func (d *countingDistorter) Parameters() map[string]float64             { return nil }

func testInfo(content string, reliability float64) Information {
	return New(content, sim.NewAgentID(), 0, reliability, "vehicles")
}

func TestPipelineOrdering(t *testing.T) {
	// F1 rejects "a"; F2 must never see it, and no distorter may run on it.
	f1 := &recordingFilter{reject: map[string]bool{"a": true}}
	f2 := &recordingFilter{}
	d1 := &countingDistorter{}
	d2 := &countingDistorter{}

	tr := NewTransformer(1000)
	tr.AddFilter(f1)
	tr.AddFilter(f2)
	tr.AddDistorter(d1)
	tr.AddDistorter(d2)

	agentID := sim.NewAgentID()
	out, err := tr.ProcessForAgent(context.Background(), agentID,
		[]Information{testInfo("a", 0.9)}, NewFilterContext(1), NewDistortionContext(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d items", len(out))
	}
	if len(f2.seen) != 1 || len(f2.seen[0]) != 0 {
		t.Errorf("second filter saw rejected item: %v", f2.seen)
	}
	if d1.calls != 0 || d2.calls != 0 {
		t.Errorf("distorters ran on a rejected item: d1=%d d2=%d", d1.calls, d2.calls)
	}
}

func TestDistortersThreadThroughChain(t *testing.T) {
	tr := NewTransformer(1000)
	d1 := &countingDistorter{}
	d2 := &countingDistorter{}
	tr.AddDistorter(d1)
	tr.AddDistorter(d2)

	out, err := tr.ProcessForAgent(context.Background(), sim.NewAgentID(),
		[]Information{testInfo("a", 0.9), testInfo("b", 0.8)},
		NewFilterContext(1), NewDistortionContext(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if d1.calls != 2 || d2.calls != 2 {
		t.Errorf("each distorter must run once per item: d1=%d d2=%d", d1.calls, d2.calls)
	}
	for _, item := range out {
		if item.Metadata["touched"] != "yes" {
			t.Errorf("item %q missed the distorter chain", item.Content)
		}
	}
}

func TestErrorAbortsWithoutCaching(t *testing.T) {
	boom := errors.New("boom")
	agentID := sim.NewAgentID()

	tr := NewTransformer(1000)
	tr.AddDistorter(&countingDistorter{err: boom})

	_, err := tr.ProcessForAgent(context.Background(), agentID,
		[]Information{testInfo("a", 0.9)}, NewFilterContext(1), NewDistortionContext(1))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := tr.Cached(agentID); ok {
		t.Error("failed call must cache nothing")
	}
}

func TestCacheOverwriteAndExpiry(t *testing.T) {
	tr := NewTransformer(10)
	agentID := sim.NewAgentID()

	if _, err := tr.ProcessForAgent(context.Background(), agentID,
		[]Information{testInfo("first", 0.9)}, NewFilterContext(1), NewDistortionContext(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.ProcessForAgent(context.Background(), agentID,
		[]Information{testInfo("second", 0.9)}, NewFilterContext(2), NewDistortionContext(2)); err != nil {
		t.Fatal(err)
	}

	cached, ok := tr.Cached(agentID)
	if !ok || len(cached) != 1 || cached[0].Content != "second" {
		t.Fatalf("cache must hold the latest batch: %v", cached)
	}

	tr.ClearExpiredCache(10) // not past the threshold yet
	if _, ok := tr.Cached(agentID); !ok {
		t.Error("cache cleared before expiry")
	}

	tr.ClearExpiredCache(10.5) // past it: whole cache goes
	if _, ok := tr.Cached(agentID); ok {
		t.Error("cache survived expiry")
	}
}

func TestReliabilityFilter(t *testing.T) {
	f := NewReliabilityFilter(0.5)
	out, err := f.FilterInformation(context.Background(),
		[]Information{testInfo("reliable", 0.8), testInfo("junk", 0.3), testInfo("edge", 0.5)},
		sim.NewAgentID(), NewFilterContext(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Content != "reliable" || out[1].Content != "edge" {
		t.Errorf("unexpected survivors: %v", out)
	}
}

func TestRecencyFilter(t *testing.T) {
	f := &RecencyFilter{}
	fctx := NewFilterContext(50)
	fctx.RecencyThreshold = 10

	fresh := New("fresh", sim.NewAgentID(), 45, 1, "t")
	stale := New("stale", sim.NewAgentID(), 30, 1, "t")

	out, err := f.FilterInformation(context.Background(), []Information{fresh, stale}, sim.NewAgentID(), fctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Content != "fresh" {
		t.Errorf("unexpected survivors: %v", out)
	}
}

func TestTopicFilter(t *testing.T) {
	f := &TopicFilter{}
	fctx := NewFilterContext(0)
	fctx.AgentInterests = []string{"Vehicles"}

	match := New("m", sim.NewAgentID(), 0, 1, "electric_vehicles")
	miss := New("x", sim.NewAgentID(), 0, 1, "gardening")

	out, err := f.FilterInformation(context.Background(), []Information{match, miss}, sim.NewAgentID(), fctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Content != "m" {
		t.Errorf("unexpected survivors: %v", out)
	}

	// No declared interests: everything passes.
	out, err = f.FilterInformation(context.Background(), []Information{match, miss}, sim.NewAgentID(), NewFilterContext(0))
	if err != nil || len(out) != 2 {
		t.Errorf("interest-less context must pass all: %v err=%v", out, err)
	}
}

func TestMaxItemsFilter(t *testing.T) {
	f := &MaxItemsFilter{}
	fctx := NewFilterContext(0)
	fctx.MaxItems = 2

	out, err := f.FilterInformation(context.Background(),
		[]Information{testInfo("a", 1), testInfo("b", 1), testInfo("c", 1)},
		sim.NewAgentID(), fctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Content != "a" || out[1].Content != "b" {
		t.Errorf("unexpected truncation: %v", out)
	}
}

func TestConfirmationBiasDistorter(t *testing.T) {
	d := NewConfirmationBiasDistorter(0.4)
	dctx := NewDistortionContext(0) // weight 0.5

	out, err := d.DistortInformation(context.Background(), testInfo("a", 0.5), sim.NewAgentID(), dctx)
	if err != nil {
		t.Fatal(err)
	}
	if out.Reliability != 0.7 {
		t.Errorf("reliability = %v, want 0.7", out.Reliability)
	}

	// Clamped at 1.0.
	out, err = d.DistortInformation(context.Background(), testInfo("b", 0.95), sim.NewAgentID(), dctx)
	if err != nil {
		t.Fatal(err)
	}
	if out.Reliability != 1.0 {
		t.Errorf("reliability = %v, want clamp at 1.0", out.Reliability)
	}
}

func TestNoiseDistorterDeterministic(t *testing.T) {
	a := NewNoiseDistorter(0.1, 42)
	b := NewNoiseDistorter(0.1, 42)

	for i := 0; i < 5; i++ {
		ra, err := a.DistortInformation(context.Background(), testInfo("a", 0.5), sim.NewAgentID(), NewDistortionContext(0))
		if err != nil {
			t.Fatal(err)
		}
		rb, err := b.DistortInformation(context.Background(), testInfo("a", 0.5), sim.NewAgentID(), NewDistortionContext(0))
		if err != nil {
			t.Fatal(err)
		}
		if ra.Reliability != rb.Reliability {
			t.Fatalf("same seed diverged at step %d: %v vs %v", i, ra.Reliability, rb.Reliability)
		}
		if ra.Reliability < 0 || ra.Reliability > 1 {
			t.Fatalf("reliability out of range: %v", ra.Reliability)
		}
	}
}

func TestInformationAge(t *testing.T) {
	i := New("c", sim.NewAgentID(), 10, 0.8, "topic")
	if i.Age(20) != 10 {
		t.Errorf("age = %v, want 10", i.Age(20))
	}
	if !i.IsRecent(15, 10) {
		t.Error("should be recent at 15 with threshold 10")
	}
	if i.IsRecent(25, 10) {
		t.Error("should be stale at 25 with threshold 10")
	}
}

func TestWithMetadataCopies(t *testing.T) {
	orig := New("c", sim.NewAgentID(), 0, 1, "t")
	tagged := orig.WithMetadata("k", "v")
	if len(orig.Metadata) != 0 {
		t.Error("original mutated by WithMetadata")
	}
	if tagged.Metadata["k"] != "v" {
		t.Error("metadata not set on copy")
	}
}
