package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chanilino/romscrape/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	user       string
	password   string
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
		Use:   "romscrape",
		Short: "A ROM metadata and media scraper",
		Long: `romscrape turns a directory of ROM files into an Attract-Mode setup:
- identify each ROM by content hash against ScreenScraper
- download screenshots, videos, wheels and box art
- write per-system romlist files`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&user, "user", "", "ScreenScraper account name (overrides config)")
	cmd.PersistentFlags().StringVar(&password, "password", "", "ScreenScraper account password (overrides config)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.User = &user
	cli.Password = &password

	// Add subcommands
	cmd.AddCommand(
		cli.NewScrapeCmd(),
		cli.NewSystemsCmd(),
		cli.NewMergeCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
