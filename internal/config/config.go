// Package config loads the session configuration from YAML and fills in
// defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"agora/dialectic/internal/debate"
	"agora/dialectic/internal/infer"
)

// DefaultModel is the generator model used when the file names none.
const DefaultModel = "claude-sonnet-4"

// Config is the full runtime configuration of a debate session.
type Config struct {
	// Model is the generator model id passed to the llm CLI.
	Model string `yaml:"model"`

	// OutputDir is where session directories are created.
	OutputDir string `yaml:"output_dir"`

	Debate    DebateConfig `yaml:"debate"`
	Branch    BranchConfig `yaml:"branch"`
	Agents    AgentsConfig `yaml:"agents"`
	Inference infer.Config `yaml:"inference"`
}

// DebateConfig bounds the main debate.
type DebateConfig struct {
	Rounds      int     `yaml:"rounds"`
	MaxTurns    int     `yaml:"max_turns"`
	Temperature float64 `yaml:"temperature"`
}

// BranchConfig bounds branch debates and branch selection.
type BranchConfig struct {
	Rounds             int             `yaml:"rounds"`
	MaxTurns           int             `yaml:"max_turns"`
	MaxBranches        int             `yaml:"max_branches"`
	Strategy           debate.Strategy `yaml:"strategy"`
	MinUrgency         float64         `yaml:"min_urgency"`
	RelevanceThreshold float64         `yaml:"relevance_threshold"`
}

// AgentsConfig controls ensemble makeup. With Generate false the
// hand-crafted default agents and observers are used.
type AgentsConfig struct {
	Generate  bool `yaml:"generate"`
	Agents    int  `yaml:"agents"`
	Observers int  `yaml:"observers"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Model:     DefaultModel,
		OutputDir: "output",
		Debate: DebateConfig{
			Rounds:      3,
			MaxTurns:    10,
			Temperature: 0.7,
		},
		Branch: BranchConfig{
			Rounds:             2,
			MaxTurns:           10,
			MaxBranches:        3,
			Strategy:           debate.StrategyDiverse,
			MinUrgency:         0.5,
			RelevanceThreshold: 0.6,
		},
		Agents: AgentsConfig{
			Generate:  false,
			Agents:    3,
			Observers: 3,
		},
		Inference: infer.DefaultConfig(),
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the orchestrator cannot run with.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must be set")
	}
	if c.Debate.Rounds < 1 || c.Branch.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1")
	}
	if c.Debate.MaxTurns < 1 || c.Branch.MaxTurns < 1 {
		return fmt.Errorf("max_turns must be at least 1")
	}
	if c.Branch.MaxBranches < 0 {
		return fmt.Errorf("max_branches must not be negative")
	}
	switch c.Branch.Strategy {
	case debate.StrategyUrgent, debate.StrategyDiverse, debate.StrategyDeep, debate.StrategyMeta:
	default:
		return fmt.Errorf("unknown strategy %q", c.Branch.Strategy)
	}
	if c.Branch.MinUrgency < 0 || c.Branch.MinUrgency > 1 {
		return fmt.Errorf("min_urgency must be in [0,1]")
	}
	if c.Branch.RelevanceThreshold < 0 || c.Branch.RelevanceThreshold > 1 {
		return fmt.Errorf("relevance_threshold must be in [0,1]")
	}
	if c.Agents.Generate && (c.Agents.Agents < 2 || c.Agents.Observers < 1) {
		return fmt.Errorf("generated ensembles need at least 2 agents and 1 observer")
	}
	return nil
}
