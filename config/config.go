package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DataConfig locates the scenario input directories.
type DataConfig struct {
	// Dir is the root holding one sub-directory per scenario.
	Dir string `json:"dir"`
	// Scenarios lists the scenario names to run.
	Scenarios []string `json:"scenarios"`
}

// Validate checks the data section.
func (c DataConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("data.scenarios must name at least one scenario")
	}
	return nil
}

// SolverConfig carries the optional solver budget.
type SolverConfig struct {
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	Verbose          bool    `json:"verbose"`
}

// MetricsConfig toggles the Prometheus sink.
type MetricsConfig struct {
	PrometheusEnabled bool `json:"prometheus_enabled"`
}

// ExportConfig controls schedule export. An empty Dir disables export.
type ExportConfig struct {
	Dir string `json:"dir"`
	// Format is "csv" or "json".
	Format string `json:"format"`
}

// SetDefaults fills the export format.
func (c *ExportConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = "csv"
	}
}

// Validate checks the export section.
func (c ExportConfig) Validate() error {
	switch c.Format {
	case "csv", "json":
		return nil
	default:
		return fmt.Errorf("export.format must be csv or json, got %q", c.Format)
	}
}

// InvestmentConfig parameterises the sizing variant.
type InvestmentConfig struct {
	CapitalCostPerKWh float64 `json:"capital_cost_per_kwh"`
}

// Config is the application configuration.
type Config struct {
	Data       DataConfig       `json:"data"`
	Solver     SolverConfig     `json:"solver"`
	Metrics    MetricsConfig    `json:"metrics"`
	Export     ExportConfig     `json:"export"`
	Investment InvestmentConfig `json:"investment"`
}

// Load reads the configuration from a YAML or JSON file, with optional
// FLEXOPT_-prefixed environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("FLEXOPT_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "flexopt_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Export.SetDefaults()
	if err := cfg.Data.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Export.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
