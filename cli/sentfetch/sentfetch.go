package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cperrin88/sentfetch/internal/cli"
)

var (
	configPath string
	envFile    string
	verbose    bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentfetch",
		Short: "Bulk downloader for Sentinel satellite products",
		Long: `sentfetch searches a Copernicus-style OData catalog for Sentinel-1 and
Sentinel-2 products, selects the best product per tile and monthly window
and downloads the requested files into a local .SAFE tree. Files already
on disk are skipped, so interrupted runs can simply be re-run.`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "run config file path")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with credentials (default: .env)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.EnvFile = &envFile
	cli.Verbose = &verbose

	// Add subcommands
	cmd.AddCommand(
		cli.NewFetchCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
