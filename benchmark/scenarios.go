package benchmark

import (
	"fmt"
	"os"

	"github.com/nvr-ai/go-motion/motion"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ScenarioBuilder helps build scenarios with a fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a builder for a VGA scene with three moving
// regions and the default detection config.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Resolution: CommonResolutions[1],
			Detection:  motion.DefaultConfig(),
			Regions:    3,
			Iterations: 100,
			WarmupRuns: 10,
		},
	}
}

// WithResolution sets the frame size
func (sb *ScenarioBuilder) WithResolution(width, height int) *ScenarioBuilder {
	sb.scenario.Resolution = Resolution{
		Width:  width,
		Height: height,
		Name:   fmt.Sprintf("%dx%d", width, height),
	}
	return sb
}

// WithNamedResolution sets the frame size from a predefined resolution
func (sb *ScenarioBuilder) WithNamedResolution(res Resolution) *ScenarioBuilder {
	sb.scenario.Resolution = res
	return sb
}

// WithDetection sets the whole detection config
func (sb *ScenarioBuilder) WithDetection(cfg motion.Config) *ScenarioBuilder {
	sb.scenario.Detection = cfg
	return sb
}

// WithStrategy sets the candidate strategy
func (sb *ScenarioBuilder) WithStrategy(strategy motion.Strategy) *ScenarioBuilder {
	sb.scenario.Detection.Strategy = strategy
	return sb
}

// WithIoUThreshold sets the suppression threshold
func (sb *ScenarioBuilder) WithIoUThreshold(threshold float32) *ScenarioBuilder {
	sb.scenario.Detection.IoUThreshold = threshold
	return sb
}

// WithRegions sets the number of moving regions per scene
func (sb *ScenarioBuilder) WithRegions(n int) *ScenarioBuilder {
	sb.scenario.Regions = n
	return sb
}

// WithIterations sets the number of measured runs
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of unmeasured runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related scenarios
type ScenarioSet struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Scenarios   []Scenario `json:"scenarios" yaml:"scenarios"`
}

var strategies = []motion.Strategy{motion.StrategyComponents, motion.StrategyContours}

// PredefinedScenarios contains common scenario sets
type PredefinedScenarios struct{}

// GetQuickScenarios returns both strategies at VGA and 720p
func (ps *PredefinedScenarios) GetQuickScenarios() *ScenarioSet {
	scenarios := make([]Scenario, 0)
	for _, res := range CommonResolutions[1:3] {
		for _, strategy := range strategies {
			scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("quick_%s_%s", strategy, res.Name)).
				WithNamedResolution(res).
				WithStrategy(strategy).
				WithIterations(50).
				WithWarmupRuns(5).
				Build())
		}
	}

	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Both strategies at common camera resolutions",
		Scenarios:   scenarios,
	}
}

// GetResolutionComparisonScenarios runs one strategy at every common resolution
func (ps *PredefinedScenarios) GetResolutionComparisonScenarios(strategy motion.Strategy) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(CommonResolutions))
	for _, res := range CommonResolutions {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("resolution_%s_%s", strategy, res.Name)).
			WithNamedResolution(res).
			WithStrategy(strategy).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Resolution Comparison - %s", strategy),
		Description: fmt.Sprintf("Compares frame sizes for the %s strategy", strategy),
		Scenarios:   scenarios,
	}
}

// GetDensityScenarios varies the number of moving regions at one resolution
func (ps *PredefinedScenarios) GetDensityScenarios(res Resolution) *ScenarioSet {
	scenarios := make([]Scenario, 0)
	for _, regions := range []int{1, 5, 20, 50} {
		for _, strategy := range strategies {
			scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("density_%s_%d_%s", strategy, regions, res.Name)).
				WithNamedResolution(res).
				WithStrategy(strategy).
				WithRegions(regions).
				Build())
		}
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Scene Density @ %s", res.Name),
		Description: "Compares strategies as the number of moving regions grows",
		Scenarios:   scenarios,
	}
}

// SaveScenarioSet writes a scenario set as YAML
func SaveScenarioSet(set *ScenarioSet, filename string) error {
	data, err := yaml.Marshal(set)
	if err != nil {
		return errors.Wrap(err, "marshal scenario set")
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "write scenario file")
	}
	return nil
}

// LoadScenarioSet reads a YAML scenario set. Fields a scenario leaves out
// take the builder defaults.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario file")
	}

	var raw struct {
		Name        string      `yaml:"name"`
		Description string      `yaml:"description"`
		Scenarios   []yaml.Node `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal scenario set")
	}

	set := &ScenarioSet{Name: raw.Name, Description: raw.Description}
	for i := range raw.Scenarios {
		scenario := NewScenarioBuilder("").Build()
		if err := raw.Scenarios[i].Decode(&scenario); err != nil {
			return nil, errors.Wrapf(err, "scenario %d", i)
		}
		set.Scenarios = append(set.Scenarios, scenario)
	}
	return set, nil
}
