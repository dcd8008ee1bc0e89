// Package factory builds simulation components from declarative configs,
// decoupling scenario setup from component implementations.
package factory

import (
	"github.com/talgya/choicesim/agent"
	"github.com/talgya/choicesim/env"
	"github.com/talgya/choicesim/errs"
	"github.com/talgya/choicesim/info"
	"github.com/talgya/choicesim/sim"
)

// AgentConfig describes one agent to create.
type AgentConfig struct {
	Psychological map[string]float64 `yaml:"psychological"`
	Socioeconomic map[string]float64 `yaml:"socioeconomic"`
	Stock         map[string]string  `yaml:"stock"` // name -> initial state, "" = unowned
}

// PhysicalAssetConfig describes one physical asset.
type PhysicalAssetConfig struct {
	Name           string             `yaml:"name"`
	Physical       map[string]float64 `yaml:"physical"`
	Performance    map[string]float64 `yaml:"performance"`
	Economic       map[string]float64 `yaml:"economic"`
	Impact         map[string]float64 `yaml:"impact"`
	AvailableFrom  sim.Time           `yaml:"available_from"`
	AvailableUntil *sim.Time          `yaml:"available_until"`
}

// KnowledgeAssetConfig describes one knowledge asset.
type KnowledgeAssetConfig struct {
	Content     string   `yaml:"content"`
	Topic       string   `yaml:"topic"`
	Reliability float64  `yaml:"reliability"`
	Timestamp   sim.Time `yaml:"timestamp"`
}

// ComponentParams carries the numeric parameters of a keyed component such
// as a filter, distorter, or process.
type ComponentParams map[string]float64

// Factory creates simulation components. Implementations may support any
// subset of component kinds; unsupported kinds return a factory error.
type Factory[Ch, Ctx any] interface {
	CreateAgent(cfg AgentConfig) (*agent.Agent[Ch, Ctx], error)
	CreatePhysicalAsset(cfg PhysicalAssetConfig) (env.PhysicalAsset, error)
	CreateKnowledgeAsset(cfg KnowledgeAssetConfig) (env.KnowledgeAsset, error)
	CreateNetwork(kind string) (env.Network, error)
	CreateRules(kind string) (env.Rules, error)
	CreateProcess(kind string, params ComponentParams) (env.ExogenousProcess, error)
	CreateFilter(kind string, params ComponentParams) (info.Filter, error)
	CreateDistorter(kind string, params ComponentParams) (info.Distorter, error)

	Name() string
	SupportedComponents() []string
}

// Basic is the stock factory. It builds agents around a caller-supplied
// choice module constructor and the stock environment and information
// components.
type Basic[Ch, Ctx any] struct {
	name    string
	module  func() agent.ChoiceModule[Ch, Ctx]
	seed    int64
	nextSub int64
}

// NewBasic creates a factory. Every created agent gets a fresh module from
// moduleFn. seed derives the seeds of created stochastic components.
func NewBasic[Ch, Ctx any](name string, seed int64, moduleFn func() agent.ChoiceModule[Ch, Ctx]) *Basic[Ch, Ctx] {
	return &Basic[Ch, Ctx]{name: name, module: moduleFn, seed: seed}
}

func (f *Basic[Ch, Ctx]) Name() string { return f.name }

func (f *Basic[Ch, Ctx]) SupportedComponents() []string {
	return []string{
		"agent", "physical_asset", "knowledge_asset",
		"network:basic", "rules:open",
		"process:market_cycle",
		"filter:reliability", "filter:recency", "filter:topic", "filter:max_items",
		"distorter:confirmation_bias", "distorter:noise",
	}
}

// subSeed hands out a distinct deterministic seed per stochastic component.
func (f *Basic[Ch, Ctx]) subSeed() int64 {
	f.nextSub++
	return f.seed + f.nextSub
}

func (f *Basic[Ch, Ctx]) CreateAgent(cfg AgentConfig) (*agent.Agent[Ch, Ctx], error) {
	attrs := agent.NewBasicAttributes(sim.NewAgentID())
	for name, v := range cfg.Psychological {
		attrs.WithPsychological(name, v)
	}
	for name, v := range cfg.Socioeconomic {
		attrs.WithSocioeconomic(name, v)
	}
	for name, state := range cfg.Stock {
		if state == "" {
			attrs.WithStockUnowned(name)
		} else {
			attrs.WithStock(name, state)
		}
	}
	return agent.New(attrs, f.module()), nil
}

func (f *Basic[Ch, Ctx]) CreatePhysicalAsset(cfg PhysicalAssetConfig) (env.PhysicalAsset, error) {
	if cfg.Name == "" {
		return nil, errs.Factoryf("physical asset config missing name")
	}
	a := env.NewBasicPhysicalAsset(sim.NewAssetID(), cfg.Name).
		WithAvailability(cfg.AvailableFrom, cfg.AvailableUntil)
	for name, v := range cfg.Physical {
		a.WithPhysicalProperty(name, v)
	}
	for name, v := range cfg.Performance {
		a.WithPerformance(name, v)
	}
	for name, v := range cfg.Economic {
		a.WithEconomicAttribute(name, v)
	}
	for name, v := range cfg.Impact {
		a.WithEnvironmentalImpact(name, v)
	}
	return a, nil
}

func (f *Basic[Ch, Ctx]) CreateKnowledgeAsset(cfg KnowledgeAssetConfig) (env.KnowledgeAsset, error) {
	if cfg.Reliability < 0 || cfg.Reliability > 1 {
		return nil, errs.Factoryf("knowledge asset reliability %v out of range [0,1]", cfg.Reliability)
	}
	return env.NewBasicKnowledgeAsset(sim.NewAssetID(), cfg.Content, cfg.Topic, cfg.Reliability, cfg.Timestamp), nil
}

func (f *Basic[Ch, Ctx]) CreateNetwork(kind string) (env.Network, error) {
	switch kind {
	case "basic":
		return env.NewBasicNetwork(), nil
	default:
		return nil, errs.Factoryf("unknown network kind %q", kind)
	}
}

func (f *Basic[Ch, Ctx]) CreateRules(kind string) (env.Rules, error) {
	switch kind {
	case "open":
		return env.OpenRules{}, nil
	default:
		return nil, errs.Factoryf("unknown rules kind %q", kind)
	}
}

func (f *Basic[Ch, Ctx]) CreateProcess(kind string, params ComponentParams) (env.ExogenousProcess, error) {
	switch kind {
	case "market_cycle":
		amplitude := paramOr(params, "amplitude", 0.2)
		frequency := sim.Time(paramOr(params, "frequency", 1.0))
		timeScale := paramOr(params, "time_scale", 0.05)
		return env.NewMarketCycleProcess("market_cycle", f.subSeed(), amplitude, frequency, timeScale), nil
	default:
		return nil, errs.Factoryf("unknown process kind %q", kind)
	}
}

func (f *Basic[Ch, Ctx]) CreateFilter(kind string, params ComponentParams) (info.Filter, error) {
	switch kind {
	case "reliability":
		return info.NewReliabilityFilter(paramOr(params, "min_reliability", 0.3)), nil
	case "recency":
		return &info.RecencyFilter{}, nil
	case "topic":
		return &info.TopicFilter{}, nil
	case "max_items":
		return &info.MaxItemsFilter{}, nil
	default:
		return nil, errs.Factoryf("unknown filter kind %q", kind)
	}
}

func (f *Basic[Ch, Ctx]) CreateDistorter(kind string, params ComponentParams) (info.Distorter, error) {
	switch kind {
	case "confirmation_bias":
		return info.NewConfirmationBiasDistorter(paramOr(params, "strength", 0.5)), nil
	case "noise":
		return info.NewNoiseDistorter(paramOr(params, "amplitude", 0.1), f.subSeed()), nil
	default:
		return nil, errs.Factoryf("unknown distorter kind %q", kind)
	}
}

func paramOr(params ComponentParams, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}
