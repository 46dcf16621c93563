package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create temporary directory
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "devteam.yml")

	// Write valid config
	validConfig := `version: "1.0"
redis:
  url: "redis://redis:6379"
event_bus:
  max_concurrent_work: 3
  work_timeout_minutes: 15
agents:
  pm:
    type: "project_manager"
    capabilities: ["story_breakdown"]
  dev:
    type: "developer"
    replicas: 2
`
	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	// Load and validate
	config, err := Load(configPath)
	require.NoError(t, err)
	assert.NotNil(t, config)
	assert.Equal(t, "1.0", config.Version)
	assert.Equal(t, "redis://redis:6379", config.Redis.URL)
	assert.Len(t, config.Agents, 2)
	assert.Equal(t, contract.AgentProjectManager, config.Agents["pm"].AgentType())
	assert.Equal(t, []string{"story_breakdown"}, config.Agents["pm"].Capabilities)
	assert.Equal(t, 2, *config.Agents["dev"].Replicas)

	bus := config.BusConfig()
	assert.Equal(t, 3, bus.MaxConcurrentWork)
	assert.Equal(t, 15*time.Minute, bus.WorkTimeout)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/devteam.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "devteam.yml")

	// Write invalid YAML
	invalidYAML := `version: "1.0"
agents:
  - this is invalid
    yaml syntax
`
	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	config, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	config := &Config{
		Version: "2.0",
		Agents: map[string]Agent{
			"pm": {Type: "project_manager"},
		},
	}
	err := config.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
}

func TestValidate_NoAgents(t *testing.T) {
	config := &Config{Version: "1.0"}
	err := config.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no agents defined")
}

func TestValidate_AgentType(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		config := &Config{
			Version: "1.0",
			Agents:  map[string]Agent{"pm": {}},
		}
		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "type is required")
	})

	t.Run("unknown type", func(t *testing.T) {
		config := &Config{
			Version: "1.0",
			Agents:  map[string]Agent{"pm": {Type: "intern"}},
		}
		assert.Error(t, config.Validate())
	})

	t.Run("originator alias rejected", func(t *testing.T) {
		config := &Config{
			Version: "1.0",
			Agents:  map[string]Agent{"gh": {Type: "github"}},
		}
		err := config.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "originator alias")
	})
}

func TestValidate_Defaults(t *testing.T) {
	config := &Config{
		Version: "1.0",
		Agents:  map[string]Agent{"qa": {Type: "qa_tester"}},
	}
	require.NoError(t, config.Validate())

	assert.Equal(t, DefaultRedisURL, config.Redis.URL)
	assert.Equal(t, 10, *config.EventBus.MaxConcurrentWork)
	assert.Equal(t, 60, *config.EventBus.WorkTimeoutMinutes)
	assert.Equal(t, 1, *config.Agents["qa"].Replicas)
}

func TestValidate_EventBusBounds(t *testing.T) {
	zero := 0
	config := &Config{
		Version:  "1.0",
		EventBus: &EventBusConfig{MaxConcurrentWork: &zero},
		Agents:   map[string]Agent{"pm": {Type: "project_manager"}},
	}
	err := config.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_work")
}

func TestValidate_Replicas(t *testing.T) {
	negative := -1
	config := &Config{
		Version: "1.0",
		Agents:  map[string]Agent{"dev": {Type: "developer", Replicas: &negative}},
	}
	err := config.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "replicas")
}
