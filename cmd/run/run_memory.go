package run

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/harvest/cmd/env"
	"github.com/sig-0/harvest/storage/memory"
)

type runMemoryCfg struct {
	rootCfg *runCfg
}

// newRunMemoryCmd creates the run memory command (dry runs)
func newRunMemoryCmd(rootCfg *runCfg) *ffcli.Command {
	cfg := &runMemoryCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("memory", flag.ExitOnError)
	cfg.rootCfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "memory",
		ShortUsage: "run memory [flags]",
		LongHelp:   "Runs a sharded ingestion pass against an in-memory sink",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

// exec executes the run memory command
func (c *runMemoryCfg) exec(ctx context.Context, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	// Read and validate the run configuration
	if err := c.rootCfg.load(); err != nil {
		return fmt.Errorf("unable to load run config, %w", err)
	}

	// Create an in-memory store
	store := memory.NewStorage()

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	defer cancelFn()

	return c.rootCfg.ingestAndReport(runCtx, logger, store)
}
