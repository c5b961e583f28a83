package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sysmeter/snapshot"
)

// Config is the sampler binary's runtime configuration.
type Config struct {
	LogFilePath           string        `yaml:"log-file-path"`
	SampleIntervalSeconds int           `yaml:"sample-interval-seconds"`
	Refresh               RefreshConfig `yaml:"refresh"`
}

// RefreshConfig selects which metric categories each sampling cycle refreshes.
type RefreshConfig struct {
	CPU         bool `yaml:"cpu"`
	Memory      bool `yaml:"memory"`
	Processes   bool `yaml:"processes"`
	Disks       bool `yaml:"disks"`
	Networks    bool `yaml:"networks"`
	Users       bool `yaml:"users"`
	Components  bool `yaml:"components"`
	LoadAverage bool `yaml:"load-average"`
}

// LoadConfig reads a YAML config file. A missing file yields the default
// configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.SampleIntervalSeconds <= 0 {
		cfg.SampleIntervalSeconds = 5
	}
	return cfg, nil
}

func GetDefaultConfig() *Config {
	return &Config{
		LogFilePath:           "sysmeter.log",
		SampleIntervalSeconds: 5,
		Refresh: RefreshConfig{
			CPU:         true,
			Memory:      true,
			Processes:   true,
			LoadAverage: true,
		},
	}
}

// Specifics maps the refresh toggles onto the snapshot's category set.
func (c *Config) Specifics() snapshot.Specifics {
	return snapshot.Specifics{
		CPU:         c.Refresh.CPU,
		Memory:      c.Refresh.Memory,
		Processes:   c.Refresh.Processes,
		Disks:       c.Refresh.Disks,
		Networks:    c.Refresh.Networks,
		Users:       c.Refresh.Users,
		Components:  c.Refresh.Components,
		LoadAverage: c.Refresh.LoadAverage,
	}
}
