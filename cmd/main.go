package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/harvest/cmd/run"
	"github.com/sig-0/harvest/cmd/serve"
	"github.com/sig-0/harvest/cmd/sql"
)

func main() {
	fs := flag.NewFlagSet("root", flag.ExitOnError)

	// Create the root command
	cmd := &ffcli.Command{
		ShortUsage: "<sub-command> [flags] [<arg>...]",
		LongHelp:   "Runs the harvest ingestion service",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
	}

	// Add the subcommands
	cmd.Subcommands = []*ffcli.Command{
		run.NewRunCmd(),
		serve.NewServeCmd(),
		sql.NewSQLCmd(),
	}

	if err := cmd.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		// Completed runs carry a dedicated exit code per run status
		var statusErr *run.StatusError

		if errors.As(err, &statusErr) {
			_, _ = fmt.Fprintln(os.Stderr, statusErr)

			os.Exit(statusErr.Code)
		}

		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
