package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Service identifiers as they appear in config/services.yaml and the
// SERVICE environment variable.
const (
	ServiceIngredients = "ingredients"
	ServiceRecipes     = "recipes"
	ServiceCrawler     = "crawler"
)

// ServiceSettings controls one service entry in config/services.yaml.
type ServiceSettings struct {
	Enabled     bool   `yaml:"enabled"`
	Port        int    `yaml:"port"`
	Description string `yaml:"description"`
}

// ServicesConfig maps service identifiers to their settings.
type ServicesConfig struct {
	Services map[string]*ServiceSettings `yaml:"services"`
}

// IsEnabled reports whether the named service is present and enabled.
func (c *ServicesConfig) IsEnabled(id string) bool {
	s, ok := c.Services[id]
	return ok && s.Enabled
}

// Settings returns the settings for the named service.
func (c *ServicesConfig) Settings(id string) (*ServiceSettings, bool) {
	s, ok := c.Services[id]
	return s, ok
}

// LoadServicesConfig loads the services configuration from config/services.yaml
func LoadServicesConfig() (*ServicesConfig, error) {
	return LoadServicesConfigFromPath(filepath.Join("config", "services.yaml"))
}

// LoadServicesConfigFromPath loads the services configuration from a specific path
func LoadServicesConfigFromPath(path string) (*ServicesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read services config: %w", err)
	}

	var cfg ServicesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse services config: %w", err)
	}

	// Validate that all services have required fields
	for id, settings := range cfg.Services {
		if settings.Port == 0 {
			return nil, fmt.Errorf("service %s: port is required", id)
		}
	}

	return &cfg, nil
}

// LoadServicesConfigOrDefault loads services config or returns default if file not found
func LoadServicesConfigOrDefault() *ServicesConfig {
	cfg, err := LoadServicesConfig()
	if err != nil {
		// Return default configuration with all services enabled
		return DefaultServicesConfig()
	}
	return cfg
}

// DefaultServicesConfig returns the default services configuration
func DefaultServicesConfig() *ServicesConfig {
	return &ServicesConfig{
		Services: map[string]*ServiceSettings{
			ServiceIngredients: {
				Enabled:     true,
				Port:        8000,
				Description: "Ingredient catalog and tags",
			},
			ServiceRecipes: {
				Enabled:     true,
				Port:        8001,
				Description: "Recipe management with ingredient validation",
			},
			ServiceCrawler: {
				Enabled:     true,
				Port:        8002,
				Description: "Recipe site crawl queue and worker",
			},
		},
	}
}
