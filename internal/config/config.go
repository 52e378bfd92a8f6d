// Package config handles YAML run configuration parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"crowdsim/internal/aggregate"

	"gopkg.in/yaml.v3"
)

// Config is the root run configuration. It tells the launcher which target
// profile and behavior to bind, how many agents to run, and how to report.
type Config struct {
	ProfilesFile   string `yaml:"profiles_file"`
	BehaviorsFile  string `yaml:"behaviors_file,omitempty"`
	ActiveProfile  string `yaml:"active_profile"`
	ActiveBehavior string `yaml:"active_behavior"`
	Mode           string `yaml:"mode"` // realistic | stress

	Agents   int           `yaml:"agents"`
	Duration time.Duration `yaml:"duration"`

	// ArchetypeMix maps archetype names to relative counts in the pool,
	// e.g. {normal: 3, mobile: 1}. Empty means all agents are "normal".
	ArchetypeMix map[string]int `yaml:"archetype_mix,omitempty"`

	LoadProfile *LoadProfile          `yaml:"load_profile,omitempty"`
	Thresholds  *aggregate.Thresholds `yaml:"thresholds,omitempty"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	MetricsAddr    string        `yaml:"metrics_addr,omitempty"`
	OutputDir      string        `yaml:"output_dir,omitempty"`
	EventsDB       string        `yaml:"events_db,omitempty"`
	Seed           int64         `yaml:"seed,omitempty"`
}

// LoadProfile defines a phased load pattern for stress mode.
type LoadProfile struct {
	Phases []Phase `yaml:"phases"`
}

// TotalDuration returns the sum of all phase durations.
func (lp *LoadProfile) TotalDuration() time.Duration {
	var total time.Duration
	for _, p := range lp.Phases {
		total += p.Duration
	}
	return total
}

// Phase is a single phase in the load profile. Either Agents holds a flat
// count, or StartAgents/EndAgents ramp linearly over the phase. RPS, when
// set, caps the whole pool's request rate during the phase.
type Phase struct {
	Name        string        `yaml:"name"`
	Duration    time.Duration `yaml:"duration"`
	Agents      int           `yaml:"agents"`
	StartAgents int           `yaml:"startAgents"`
	EndAgents   int           `yaml:"endAgents"`
	RPS         int           `yaml:"rps"`
}

// Load reads and parses a YAML run configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Agents == 0 {
		c.Agents = 5
	}
	if c.Duration == 0 {
		c.Duration = time.Minute
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.ActiveBehavior == "" {
		c.ActiveBehavior = "normal_user"
	}
	if c.Mode == "" {
		c.Mode = "realistic"
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.ProfilesFile == "" {
		return fmt.Errorf("profiles_file is required")
	}
	if c.ActiveProfile == "" {
		return fmt.Errorf("active_profile is required")
	}
	if c.Agents < 1 {
		return fmt.Errorf("agents must be >= 1, got %d", c.Agents)
	}
	for name, n := range c.ArchetypeMix {
		if n < 0 {
			return fmt.Errorf("archetype_mix[%s] must be >= 0, got %d", name, n)
		}
	}
	if c.LoadProfile != nil {
		for i, p := range c.LoadProfile.Phases {
			if p.Duration <= 0 {
				return fmt.Errorf("load_profile phase %d (%s): duration must be > 0", i, p.Name)
			}
		}
	}
	return nil
}
