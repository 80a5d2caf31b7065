// Package cmd defines the scholarly command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scholarly/internal/config"
	"scholarly/internal/persistence"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scholarly",
		Short: "Scholarly turns research papers into credibility-scored digests.",
		Long: `Scholarly ingests research paper metadata, scores each paper's
credibility, and uses AI providers to produce plain-language digests with
headlines, takeaways, and connecting narrative.

Typical flow:
  scholarly seed                      # load demo papers
  scholarly digest create --name "This week" <paper-id>...
  scholarly serve                     # REST API for the same pipeline`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.scholarly.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewDigestCmd())
	rootCmd.AddCommand(NewPapersCmd())
	rootCmd.AddCommand(NewWeightsCmd())
	rootCmd.AddCommand(NewSeedCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// openStore connects to the configured database and verifies the connection.
func openStore(ctx context.Context) (persistence.Store, error) {
	db := config.GetDatabase()
	store, err := persistence.Open(db.Driver, db.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", db.Driver, err)
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return store, nil
}
