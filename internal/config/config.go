package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jhonnyo88/devteam-sub001/internal/eventbus"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

// DefaultRedisURL is used when devteam.yml omits the redis section.
const DefaultRedisURL = "redis://localhost:6379"

// Config represents the top-level devteam.yml configuration
type Config struct {
	Version  string           `yaml:"version"`
	Redis    *RedisConfig     `yaml:"redis,omitempty"`
	EventBus *EventBusConfig  `yaml:"event_bus,omitempty"`
	Agents   map[string]Agent `yaml:"agents"`
}

// RedisConfig specifies the coordination store connection
type RedisConfig struct {
	URL string `yaml:"url,omitempty"`
}

// EventBusConfig specifies scheduler behavior overrides
type EventBusConfig struct {
	MaxConcurrentWork  *int `yaml:"max_concurrent_work,omitempty"`  // Parallel work items across the pipeline (default = 10)
	WorkTimeoutMinutes *int `yaml:"work_timeout_minutes,omitempty"` // Per-item processing deadline (default = 60)
}

// Agent represents a single pipeline agent configuration
type Agent struct {
	Type         string   `yaml:"type"` // Required: pipeline role (project_manager, developer, ...)
	Replicas     *int     `yaml:"replicas,omitempty"`
	Capabilities []string `yaml:"capabilities,omitempty"`
}

// AgentType returns the parsed pipeline role.
func (a Agent) AgentType() contract.AgentType {
	return contract.AgentType(a.Type)
}

// Validate performs validation on a single agent configuration
func (a *Agent) Validate(name string) error {
	// Required: type
	if a.Type == "" {
		return fmt.Errorf("agent '%s': type is required", name)
	}

	typ := a.AgentType()
	if err := typ.Validate(); err != nil {
		return fmt.Errorf("agent '%s': %w", name, err)
	}
	if typ.IsOriginator() {
		return fmt.Errorf("agent '%s': type '%s' is an originator alias and cannot be hosted", name, a.Type)
	}

	// Set default replicas if not specified
	if a.Replicas == nil {
		one := 1
		a.Replicas = &one
	}
	if *a.Replicas < 1 {
		return fmt.Errorf("agent '%s': replicas must be >= 1, got %d", name, *a.Replicas)
	}

	return nil
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Required: at least one agent
	if len(c.Agents) == 0 {
		return fmt.Errorf("no agents defined")
	}

	// Validate each agent
	for name := range c.Agents {
		agent := c.Agents[name]
		if err := agent.Validate(name); err != nil {
			return err
		}
		c.Agents[name] = agent
	}

	// Apply default redis config if missing
	if c.Redis == nil {
		c.Redis = &RedisConfig{URL: DefaultRedisURL}
	} else if c.Redis.URL == "" {
		c.Redis.URL = DefaultRedisURL
	}

	// Apply default event bus config if missing
	if c.EventBus == nil {
		c.EventBus = &EventBusConfig{}
	}
	if c.EventBus.MaxConcurrentWork == nil {
		defaultConcurrent := 10
		c.EventBus.MaxConcurrentWork = &defaultConcurrent
	}
	if c.EventBus.WorkTimeoutMinutes == nil {
		defaultTimeout := 60
		c.EventBus.WorkTimeoutMinutes = &defaultTimeout
	}

	if *c.EventBus.MaxConcurrentWork < 1 {
		return fmt.Errorf("event_bus.max_concurrent_work must be >= 1, got %d", *c.EventBus.MaxConcurrentWork)
	}
	if *c.EventBus.WorkTimeoutMinutes < 1 {
		return fmt.Errorf("event_bus.work_timeout_minutes must be >= 1, got %d", *c.EventBus.WorkTimeoutMinutes)
	}

	return nil
}

// BusConfig converts the validated event bus section into scheduler settings.
func (c *Config) BusConfig() eventbus.Config {
	return eventbus.Config{
		MaxConcurrentWork: *c.EventBus.MaxConcurrentWork,
		WorkTimeout:       time.Duration(*c.EventBus.WorkTimeoutMinutes) * time.Minute,
	}
}

// Load reads and validates devteam.yml from the specified path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
