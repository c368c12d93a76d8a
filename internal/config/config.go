package config

import (
	"errors"
	"fmt"
	"time"

	"warplan/internal/war"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config is the planner configuration file. Values start from Default,
// then the YAML file, then WARPLAN_* environment variables.
type Config struct {
	Planner PlannerConfig `yaml:"planner"`
	Scoring ScoringConfig `yaml:"scoring"`
}

type PlannerConfig struct {
	Lambda       float64       `yaml:"lambda"        env:"WARPLAN_LAMBDA"`
	SolveTimeout time.Duration `yaml:"solve_timeout" env:"WARPLAN_SOLVE_TIMEOUT"`
	MaxNodes     int           `yaml:"max_nodes"     env:"WARPLAN_MAX_NODES"`
	MaxVariables int           `yaml:"max_variables" env:"WARPLAN_MAX_VARIABLES"`
	Fallback     string        `yaml:"fallback"      env:"WARPLAN_FALLBACK"`
	RecordEvents bool          `yaml:"record_events" env:"WARPLAN_RECORD_EVENTS"`
}

type ScoringConfig struct {
	Base         float64 `yaml:"base"`
	PowerPenalty float64 `yaml:"power_penalty"`
	PowerBonus   float64 `yaml:"power_bonus"`
	RankWeight   float64 `yaml:"rank_weight"`
	Clamp        bool    `yaml:"clamp" env:"WARPLAN_CLAMP_SCORE"`
}

func Default() Config {
	pc := war.DefaultConfig()
	return Config{
		Planner: PlannerConfig{
			Lambda:       pc.Lambda,
			SolveTimeout: pc.SolveTimeout,
			MaxNodes:     pc.MaxNodes,
			MaxVariables: pc.MaxVariables,
			Fallback:     string(pc.Fallback),
		},
		Scoring: ScoringConfig{
			Base:         pc.Scoring.Base,
			PowerPenalty: pc.Scoring.PowerPenalty,
			PowerBonus:   pc.Scoring.PowerBonus,
			RankWeight:   pc.Scoring.RankWeight,
			Clamp:        pc.Scoring.Clamp,
		},
	}
}

// Load reads the config at path (skipped when empty) over the defaults and
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadYAML(path, &cfg, true); err != nil {
			return Config{}, err
		}
	}
	if err := parseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	p := c.Planner
	switch {
	case p.Lambda < 0:
		return fmt.Errorf("%w: planner.lambda must not be negative", ErrInvalidConfig)
	case p.SolveTimeout < 0:
		return fmt.Errorf("%w: planner.solve_timeout must not be negative", ErrInvalidConfig)
	case p.MaxNodes < 0:
		return fmt.Errorf("%w: planner.max_nodes must not be negative", ErrInvalidConfig)
	}
	switch war.Fallback(p.Fallback) {
	case war.FallbackGreedy, war.FallbackNone:
	default:
		return fmt.Errorf("%w: planner.fallback %q (want greedy or none)", ErrInvalidConfig, p.Fallback)
	}
	return nil
}

// War converts the file form into the planner's configuration.
func (c Config) War() war.Config {
	return war.Config{
		Lambda:       c.Planner.Lambda,
		SolveTimeout: c.Planner.SolveTimeout,
		MaxNodes:     c.Planner.MaxNodes,
		MaxVariables: c.Planner.MaxVariables,
		Fallback:     war.Fallback(c.Planner.Fallback),
		Record:       c.Planner.RecordEvents,
		Scoring: war.ScoreParams{
			Base:         c.Scoring.Base,
			PowerPenalty: c.Scoring.PowerPenalty,
			PowerBonus:   c.Scoring.PowerBonus,
			RankWeight:   c.Scoring.RankWeight,
			Clamp:        c.Scoring.Clamp,
		},
	}
}
