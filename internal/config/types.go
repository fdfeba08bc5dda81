package config

import (
	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/validator"
)

// Config is the full run configuration loaded from the rules file.
type Config struct {
	Version           string               `yaml:"version" mapstructure:"version"`
	Rules             map[string]RuleSpec  `yaml:"rules" mapstructure:"rules"`
	Global            GlobalSettings       `yaml:"global" mapstructure:"global"`
	ColumnMapping     map[string]string    `yaml:"column_mapping" mapstructure:"column_mapping"`
	Engine            EngineConfig         `yaml:"engine" mapstructure:"engine"`
	Logging           LoggingConfig        `yaml:"logging" mapstructure:"logging"`
	PrivacyThresholds validator.Thresholds `yaml:"privacy_thresholds" mapstructure:"privacy_thresholds"`
	Source            *dataset.SQLConfig   `yaml:"source" mapstructure:"source"`
}

// RuleSpec is the raw form of one per-field rule before compilation.
type RuleSpec struct {
	Strategy   string                 `yaml:"strategy" mapstructure:"strategy"`
	Parameters map[string]interface{} `yaml:"parameters" mapstructure:"parameters"`
}

// GlobalSettings mirrors the global section of the rules file.
type GlobalSettings struct {
	HandleNulls       bool   `yaml:"handle_nulls" mapstructure:"handle_nulls"`
	NullReplacement   string `yaml:"null_replacement" mapstructure:"null_replacement"`
	PreserveDataTypes bool   `yaml:"preserve_data_types" mapstructure:"preserve_data_types"`
	CaseSensitive     bool   `yaml:"case_sensitive" mapstructure:"case_sensitive"`
}

// EngineConfig holds run execution settings.
type EngineConfig struct {
	Workers int    `yaml:"workers" mapstructure:"workers"`
	Seed    uint64 `yaml:"seed" mapstructure:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string            `yaml:"level" mapstructure:"level"`
	Format string            `yaml:"format" mapstructure:"format"`
	File   FileLoggingConfig `yaml:"file" mapstructure:"file"`
}

// FileLoggingConfig holds file logging settings.
type FileLoggingConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// GetDefaults returns the default configuration.
func GetDefaults() *Config {
	return &Config{
		Version: "1.0",
		Rules:   make(map[string]RuleSpec),
		Global: GlobalSettings{
			HandleNulls:       true,
			PreserveDataTypes: true,
		},
		Engine: EngineConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
