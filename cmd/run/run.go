package run

import (
	"context"
	"flag"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/harvest/cmd/env"
	"github.com/sig-0/harvest/config"
)

// runCfg wraps the run configuration
type runCfg struct {
	config *config.Config

	configPath string

	shardIndex int
	shardTotal int

	// comma-separated provider ID selection, if any
	providers string

	// flag overrides for the TOML config
	deadline       time.Duration
	maxConcurrency int
}

// NewRunCmd creates the run subcommand
func NewRunCmd() *ffcli.Command {
	cfg := &runCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "run",
		ShortUsage: "run <subcommand> [flags]",
		LongHelp:   "Runs a single sharded ingestion pass",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newRunSQLCmd(cfg),
		newRunMemoryCmd(cfg),
	}

	return cmd
}

func (c *runCfg) registerFlags(fs *flag.FlagSet) {
	fs.IntVar(
		&c.shardIndex,
		"shard-index",
		0,
		"the index of this execution shard",
	)

	fs.IntVar(
		&c.shardTotal,
		"shard-total",
		1,
		"the total number of execution shards",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the run TOML configuration, if any",
	)

	fs.StringVar(
		&c.providers,
		"providers",
		"",
		"comma-separated provider IDs to run (default: all configured)",
	)

	fs.DurationVar(
		&c.deadline,
		"deadline",
		0,
		"the wall-clock budget for the run (overrides the config)",
	)

	fs.IntVar(
		&c.maxConcurrency,
		"max-concurrency",
		0,
		"the maximum number of concurrent providers (overrides the config)",
	)
}

// selectedProviders parses the comma-separated provider selection
func (c *runCfg) selectedProviders() []string {
	var ids []string

	for _, id := range strings.Split(c.providers, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	return ids
}

// load reads and validates the TOML run configuration,
// applying any flag overrides
func (c *runCfg) load() error {
	if c.configPath != "" {
		runCfg, err := config.Read(c.configPath)
		if err != nil {
			return err
		}

		c.config = runCfg
	}

	if c.deadline > 0 {
		c.config.Deadline = c.deadline.String()
	}

	if c.maxConcurrency > 0 {
		c.config.MaxConcurrency = c.maxConcurrency
	}

	return config.ValidateConfig(c.config)
}
