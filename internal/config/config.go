// Package config loads table sessions from HCL with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/kelseyhightower/envconfig"

	"github.com/lox/holdembet/internal/engine"
	"github.com/lox/holdembet/internal/showdown"
)

// EnvPrefix is the prefix for environment overrides, e.g. HOLDEMBET_BIG_BLIND
const EnvPrefix = "holdembet"

const (
	DefaultLogLevel     = "info"
	DefaultInitialChips = 1000
	DefaultBigBlind     = 20
)

// Config is the complete session configuration
type Config struct {
	LogLevel string        `hcl:"log_level,optional"`
	Tables   []TableConfig `hcl:"table,block"`
}

// TableConfig defines one table
type TableConfig struct {
	Name         string   `hcl:"name,label"`
	Seats        []string `hcl:"seats"`
	InitialChips int      `hcl:"initial_chips,optional"`
	Stacks       []int    `hcl:"stacks,optional"`
	BigBlind     int      `hcl:"big_blind,optional"`
	Dealer       int      `hcl:"dealer,optional"`
	OddChips     string   `hcl:"odd_chips,optional"`
}

// Overrides are read from the environment and apply to every table
type Overrides struct {
	LogLevel     string `envconfig:"log_level"`
	BigBlind     int    `envconfig:"big_blind"`
	InitialChips int    `envconfig:"initial_chips"`
	OddChips     string `envconfig:"odd_chips"`
}

// Default returns a single three-handed table
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Tables: []TableConfig{
			{
				Name:         "main",
				Seats:        []string{"Alice", "Bob", "Carol"},
				InitialChips: DefaultInitialChips,
				BigBlind:     DefaultBigBlind,
				OddChips:     showdown.OddChipsLeftOfDealer.String(),
			},
		},
	}
}

// Load reads filename and applies environment overrides. A missing file
// yields the defaults.
func Load(filename string) (*Config, error) {
	var config *Config
	src, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
		config = Default()
	case err != nil:
		return nil, err
	default:
		if config, err = Parse(src, filename); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// Parse decodes HCL source and fills defaults
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.InitialChips == 0 && t.Stacks == nil {
			t.InitialChips = DefaultInitialChips
		}
		if t.BigBlind == 0 {
			t.BigBlind = DefaultBigBlind
		}
		if t.OddChips == "" {
			t.OddChips = showdown.OddChipsLeftOfDealer.String()
		}
	}
}

// ApplyEnv overlays HOLDEMBET_* environment variables
func (c *Config) ApplyEnv() error {
	var o Overrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	c.Apply(o)
	return nil
}

// Apply overlays the non-zero overrides
func (c *Config) Apply(o Overrides) {
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	for i := range c.Tables {
		t := &c.Tables[i]
		if o.BigBlind != 0 {
			t.BigBlind = o.BigBlind
		}
		if o.InitialChips != 0 {
			t.InitialChips = o.InitialChips
			t.Stacks = nil
		}
		if o.OddChips != "" {
			t.OddChips = o.OddChips
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := map[string]bool{}
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("table %s: duplicate name", table.Name)
		}
		seen[table.Name] = true

		if err := table.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single table
func (t TableConfig) Validate() error {
	if len(t.Seats) < 2 {
		return fmt.Errorf("table %s: at least 2 seats required", t.Name)
	}
	for i, name := range t.Seats {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("table %s: seat %d has no name", t.Name, i)
		}
	}
	if t.Stacks != nil {
		if len(t.Stacks) != len(t.Seats) {
			return fmt.Errorf("table %s: %d stacks for %d seats", t.Name, len(t.Stacks), len(t.Seats))
		}
		for i, s := range t.Stacks {
			if s <= 0 {
				return fmt.Errorf("table %s: seat %d stack must be positive", t.Name, i)
			}
		}
	} else if t.InitialChips <= 0 {
		return fmt.Errorf("table %s: initial chips must be positive", t.Name)
	}
	if t.BigBlind < 2 {
		return fmt.Errorf("table %s: big blind must be at least 2", t.Name)
	}
	if t.Dealer < 0 || t.Dealer >= len(t.Seats) {
		return fmt.Errorf("table %s: dealer seat %d out of range", t.Name, t.Dealer)
	}
	if _, err := showdown.ParseOddChipPolicy(t.OddChips); err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	return nil
}

// Table returns the named table
func (c *Config) Table(name string) (TableConfig, error) {
	for _, table := range c.Tables {
		if table.Name == name {
			return table, nil
		}
	}
	return TableConfig{}, fmt.Errorf("no table named %q", name)
}

// Level returns the parsed log level, falling back to info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// EngineConfig converts the table to an engine configuration
func (t TableConfig) EngineConfig() (engine.Config, error) {
	policy, err := showdown.ParseOddChipPolicy(t.OddChips)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Names:        append([]string(nil), t.Seats...),
		InitialChips: t.InitialChips,
		Stacks:       append([]int(nil), t.Stacks...),
		BigBlind:     t.BigBlind,
		Dealer:       t.Dealer,
		OddChips:     policy,
	}, nil
}

// Encode renders the configuration back to HCL
func (c *Config) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(c, f.Body())
	return f.Bytes()
}
