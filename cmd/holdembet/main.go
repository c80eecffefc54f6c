package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/holdembet/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	ConfigFile string `name:"config" short:"c" help:"Path to HCL session config" default:"holdembet.hcl" type:"path"`
	LogLevel   string `help:"Override the configured log level (debug, info, warn, error)"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" help:"Play a scripted session on a configured table"`
	Simulate SimulateCmd      `cmd:"" help:"Play random legal hands on many tables and check chip conservation"`
	Config   ConfigCmd        `cmd:"" help:"Print the effective configuration"`
}

func main() {
	cli := CLI{Globals: Globals{Stdout: os.Stdout, Stderr: os.Stderr}}
	ctx := kong.Parse(&cli,
		kong.Name("holdembet"),
		kong.Description("Turn-based hold'em betting engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// loadConfig reads and validates the session configuration
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", g.ConfigFile, err)
	}
	return cfg, nil
}

func (g *Globals) newLogger(cfg *config.Config) *log.Logger {
	return log.NewWithOptions(g.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "holdembet",
		Level:           cfg.Level(),
	})
}
