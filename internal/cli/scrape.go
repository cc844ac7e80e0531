package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chanilino/romscrape/internal/logger"
	"github.com/chanilino/romscrape/pkg/catalog"
	"github.com/chanilino/romscrape/pkg/config"
	"github.com/chanilino/romscrape/pkg/download"
	"github.com/chanilino/romscrape/pkg/errors"
	"github.com/chanilino/romscrape/pkg/pipeline"
	"github.com/chanilino/romscrape/pkg/screenscraper"
)

const downloadUserAgent = "romscrape/" + Version

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	var (
		systemsFile string
		romlistDir  string
	)

	cmd := &cobra.Command{
		Use:   "scrape ROM_DIR",
		Short: "Scrape a directory of ROM files",
		Long: `Scrape every ROM file directly under ROM_DIR: hash it, look it up on
the metadata service, download its media assets and append a row to the
per-system romlist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd.Context(), args[0], systemsFile, romlistDir)
		},
	}

	cmd.Flags().StringVar(&systemsFile, "systems-file", "", "offline system catalog snapshot instead of the live service")
	cmd.Flags().StringVar(&romlistDir, "romlist-dir", ".", "directory for the per-system romlist files")

	return cmd
}

func runScrape(ctx context.Context, romDir, systemsFile, romlistDir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newClient(cfg)

	lookupWorkers, err := client.UserInfo(ctx)
	if err != nil {
		logger.Warn("could not fetch account info, using a single lookup worker",
			logger.Fields{"error": err.Error()})
	}

	systems, err := loadSystems(ctx, client, systemsFile)
	if err != nil {
		return err
	}

	fallbackID := 0
	if cfg.General.FallbackSystem != "" {
		id, ok := systems.IDByName(cfg.General.FallbackSystem)
		if !ok {
			logger.Warn("fallback system is unknown, filename lookups will not be scoped",
				logger.Fields{"system": cfg.General.FallbackSystem})
		} else {
			fallbackID = id
		}
	}

	files, err := pipeline.ListROMs(romDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no ROM files found", logger.Fields{"dir": romDir})
		return nil
	}

	writer := pipeline.NewRowWriter(romlistDir)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close romlist files", logger.Fields{"error": err.Error()})
		}
	}()

	p := &pipeline.Pipeline{
		Lookup:           client,
		DL:               download.NewManager(cfg.General.HTTPTimeout, downloadUserAgent),
		Systems:          systems,
		Record:           recordOptions(cfg),
		Writer:           writer,
		HashWorkers:      cfg.General.Workers,
		LookupWorkers:    lookupWorkers,
		FilenameFallback: cfg.General.EnableSearchByFilename,
		FallbackSystemID: fallbackID,
	}

	logger.Info("starting scrape", logger.Fields{
		"dir": romDir, "roms": len(files), "lookup_workers": lookupWorkers,
	})
	summary := p.Run(ctx, files)

	logger.Success("scrape finished", logger.Fields{
		"hashed":       summary.Hashed,
		"identified":   summary.Identified,
		"not_found":    summary.NotFound,
		"downloaded":   summary.Downloaded,
		"skipped":      summary.Skipped,
		"asset_errors": summary.AssetErrors,
		"hash_errors":  summary.HashFailures,
	})
	return nil
}

// loadSystems fetches the system catalog, from the snapshot file when one is
// given and from the live service otherwise. An empty catalog is fatal.
func loadSystems(ctx context.Context, client *screenscraper.Client, systemsFile string) (catalog.Systems, error) {
	var (
		m   map[int]string
		err error
	)
	if systemsFile != "" {
		var file *os.File
		file, err = os.Open(systemsFile)
		if err != nil {
			return catalog.Systems{}, fmt.Errorf("failed to open systems file: %w", err)
		}
		defer func() { _ = file.Close() }()
		m, err = screenscraper.SystemsFromReader(file)
	} else {
		m, err = client.Systems(ctx)
	}
	if err != nil {
		return catalog.Systems{}, fmt.Errorf("failed to load system catalog: %w", err)
	}

	systems := catalog.NewSystems(m)
	if systems.Empty() {
		return catalog.Systems{}, errors.Wrap(errors.ErrEmptyCatalog, "no systems in catalog")
	}
	return systems, nil
}

// recordOptions derives the record resolution settings from the configuration.
func recordOptions(cfg *config.Config) catalog.Options {
	emulators := make(map[string]string, len(cfg.Systems))
	for name, system := range cfg.Systems {
		emulators[name] = system.Emulator
	}
	return catalog.Options{
		Langs:        cfg.General.Langs,
		Regions:      cfg.General.Regions,
		DownloadPath: cfg.General.DownloadPath,
		MediaDir:     cfg.MediaDir,
		Emulators:    catalog.NewEmulatorTable(emulators),
	}
}
