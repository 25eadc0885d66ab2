// Package main provides the AgentMap CLI.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jwwelbor/AgentMap-sub007/internal/adapters/repository/fs"
	"github.com/jwwelbor/AgentMap-sub007/internal/adapters/repository/postgres"
	"github.com/jwwelbor/AgentMap-sub007/internal/adapters/repository/sqlite"
	"github.com/jwwelbor/AgentMap-sub007/internal/infrastructure/config"
	"github.com/jwwelbor/AgentMap-sub007/pkg/agentmap"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentmap",
		Short: "AgentMap workflow bundle tooling",
	}
	root.AddCommand(newVersionCmd(), newBundleCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agentmap %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		},
	}
}

func newBundleCmd() *cobra.Command {
	bundleCmd := &cobra.Command{
		Use:   "bundle",
		Short: "Inspect and verify compiled bundles",
	}

	inspect := &cobra.Command{
		Use:   "inspect <bundle-path>",
		Short: "Print a bundle's graph, agents, and service closure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newCLIRuntime()
			if err != nil {
				return err
			}
			b, err := rt.Bundles().LoadBundle(context.Background(), args[0])
			if err != nil {
				return err
			}
			if b == nil {
				return fmt.Errorf("bundle %q could not be loaded", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "graph:    %s\n", b.GraphName)
			fmt.Fprintf(out, "format:   %s\n", b.Format)
			fmt.Fprintf(out, "hash:     %s\n", b.SourceHash())
			fmt.Fprintf(out, "nodes:    %s\n", strings.Join(b.NodeNames(), ", "))
			fmt.Fprintf(out, "agents:   %s\n", strings.Join(b.RequiredAgents, ", "))
			fmt.Fprintf(out, "services: %s\n", strings.Join(b.ServiceLoadOrder, ", "))
			return nil
		},
	}

	verify := &cobra.Command{
		Use:   "verify <bundle-path> <csv-path>",
		Short: "Check whether a bundle is still current for its CSV source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newCLIRuntime()
			if err != nil {
				return err
			}
			b, err := rt.Bundles().LoadBundle(context.Background(), args[0])
			if err != nil {
				return err
			}
			csv, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if rt.Bundles().ValidateBundle(b, csv) {
				fmt.Fprintln(cmd.OutOrStdout(), "bundle is current")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "bundle is stale: recompilation required")
			return nil
		},
	}

	bundleCmd.AddCommand(inspect, verify)
	return bundleCmd
}

func newCLIRuntime() (*agentmap.Runtime, error) {
	cfg := config.Load()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	opts, err := storageOptions(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	opts.Logger = logger
	return agentmap.NewRuntime(opts)
}

// storageOptions selects the storage backends the configuration names.
// A PostgreSQL DSN wins over a SQLite path; with neither set the
// checkpoint and thread stores fall back to the runtime's in-memory
// defaults. Bundles always go through the filesystem store rooted at
// the configured bundle directory.
func storageOptions(ctx context.Context, cfg *config.Config) (agentmap.Options, error) {
	opts := agentmap.Options{Documents: fs.NewDocumentStore(cfg.BundleDir)}

	switch {
	case cfg.PostgresDSN != "":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return opts, fmt.Errorf("failed to open postgres pool: %w", err)
		}
		checkpoints := postgres.NewCheckpointStore(pool, nil)
		threads := postgres.NewThreadStore(pool)
		if err := checkpoints.CreateTables(ctx); err != nil {
			return opts, err
		}
		if err := threads.CreateTables(ctx); err != nil {
			return opts, err
		}
		opts.Checkpoints = checkpoints
		opts.Threads = threads
	case cfg.SQLitePath != "":
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return opts, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		checkpoints := sqlite.NewCheckpointStore(db, nil)
		threads := sqlite.NewThreadStore(db)
		if err := checkpoints.CreateTables(ctx); err != nil {
			return opts, err
		}
		if err := threads.CreateTables(ctx); err != nil {
			return opts, err
		}
		opts.Checkpoints = checkpoints
		opts.Threads = threads
	}
	return opts, nil
}
