// Package config loads and validates the anonymization rules file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/raaihank/data-anonymizer/internal/rules"
)

// Load loads configuration from file and environment variables. A
// missing config file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	config := GetDefaults()

	v := viper.New()
	v.SetConfigName("rules")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("$HOME/.data-anonymizer/")

	v.SetEnvPrefix("ANONYMIZER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validateConfig validates the loaded configuration, compiling every
// rule so parameter errors surface at load time rather than mid-run.
func validateConfig(config *Config) error {
	if config.Engine.Workers <= 0 {
		return fmt.Errorf("invalid worker count: %d", config.Engine.Workers)
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	if _, err := config.CompileRules(); err != nil {
		return err
	}

	return nil
}

// CompileRules turns the raw rule specs into the validated, immutable
// rule model. Pseudonymize rules inherit the engine seed unless they
// set their own.
func (c *Config) CompileRules() (map[string]*rules.Rule, error) {
	compiled := make(map[string]*rules.Rule, len(c.Rules))

	for piiType, spec := range c.Rules {
		params := spec.Parameters
		if spec.Strategy == string(rules.StrategyPseudonymize) {
			if _, ok := params["seed"]; !ok && c.Engine.Seed != 0 {
				params = cloneParams(params)
				params["seed"] = c.Engine.Seed
			}
		}

		rule, err := rules.Compile(piiType, spec.Strategy, params)
		if err != nil {
			return nil, err
		}
		compiled[piiType] = rule
	}

	return compiled, nil
}

// GlobalConfig converts the raw global section to the rule model form.
func (c *Config) GlobalConfig() rules.GlobalConfig {
	return rules.GlobalConfig{
		HandleNulls:       c.Global.HandleNulls,
		NullReplacement:   c.Global.NullReplacement,
		PreserveDataTypes: c.Global.PreserveDataTypes,
		CaseSensitive:     c.Global.CaseSensitive,
	}
}

func cloneParams(params map[string]interface{}) map[string]interface{} {
	clone := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		clone[k] = v
	}
	return clone
}
