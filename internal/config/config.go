// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for milcalc.
type Configuration struct {
	Logging       LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
	Output        OutputConfig  `yaml:"output,omitempty" json:"output,omitempty"`
	ReferenceData string        `yaml:"referenceData,omitempty" json:"referenceData,omitempty"` // optional reference table override
	Scenarios     []Scenario    `yaml:"scenarios" json:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r, for
// example an uploaded file.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// Sanitize applies the input-boundary clamps to every scenario.
func (conf *Configuration) Sanitize() {
	for i := range conf.Scenarios {
		conf.Scenarios[i].Sanitize()
	}
}

// Validate returns an error for configuration that cannot be calculated.
func (conf *Configuration) Validate() error {
	var errs []error
	if conf.Output.Format != "" {
		if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
			errs = append(errs, err)
		}
	}
	if len(conf.Scenarios) == 0 {
		errs = append(errs, errors.New("configuration must define at least one scenario"))
	}
	for i := range conf.Scenarios {
		if err := conf.Scenarios[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("scenario %q: %w", conf.Scenarios[i].Name, err))
		}
	}
	return errors.Join(errs...)
}

// ActiveScenarios returns the scenarios marked active, in file order.
func (conf *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range conf.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}
