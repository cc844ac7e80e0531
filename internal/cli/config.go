package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chanilino/romscrape/internal/logger"
	"github.com/chanilino/romscrape/pkg/config"
	"github.com/chanilino/romscrape/pkg/errors"
)

// Column padding for the config show table.
const tabWidth = 4

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View and initialize the romscrape configuration file",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration settings",
		RunE:  runConfigShow,
	}

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  "Create a configuration file populated with the defaults",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration file")

	return cmd
}

func runConfigShow(*cobra.Command, []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, tabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "SETTING\tVALUE")
	_, _ = fmt.Fprintln(tabWriter, "-------\t-----")
	_, _ = fmt.Fprintf(tabWriter, "general.langs\t%s\n", strings.Join(cfg.General.Langs, ","))
	_, _ = fmt.Fprintf(tabWriter, "general.regions\t%s\n", strings.Join(cfg.General.Regions, ","))
	_, _ = fmt.Fprintf(tabWriter, "general.download_path\t%s\n", cfg.General.DownloadPath)
	_, _ = fmt.Fprintf(tabWriter, "general.workers\t%d\n", cfg.General.Workers)
	_, _ = fmt.Fprintf(tabWriter, "general.enable_search_by_filename\t%t\n", cfg.General.EnableSearchByFilename)
	_, _ = fmt.Fprintf(tabWriter, "general.fallback_system\t%s\n", cfg.General.FallbackSystem)
	_, _ = fmt.Fprintf(tabWriter, "general.http_timeout\t%s\n", cfg.General.HTTPTimeout)
	_, _ = fmt.Fprintf(tabWriter, "general.log_level\t%s\n", cfg.General.LogLevel)
	_ = tabWriter.Flush()

	if len(cfg.Systems) > 0 {
		names := make([]string, 0, len(cfg.Systems))
		for name := range cfg.Systems {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Printf("\nSystems (%d):\n", len(names))
		for _, name := range names {
			fmt.Printf("  %s: %s\n", name, cfg.Systems[name].Emulator)
		}
	}

	credentials := "not set"
	if cfg.Credentials.SSID != "" {
		credentials = cfg.Credentials.SSID
	}
	fmt.Printf("\nAccount: %s\n", credentials)

	return nil
}

func runConfigInit(force bool) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.Wrapf(errors.ErrConfigExists, "%s (use --force to overwrite)", configPath)
	}

	cfg := config.DefaultConfig()
	if err := cfg.SaveConfig(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logger.InitLogger(cfg.General.LogLevel)
	logger.Success("Configuration file created", logger.Fields{"path": configPath})
	return nil
}
