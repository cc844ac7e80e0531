package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chanilino/romscrape/internal/logger"
	"github.com/chanilino/romscrape/pkg/fsutil"
	"github.com/chanilino/romscrape/pkg/romlist"
)

// Number of romlist files the merge command expects.
const mergeCommandArgs = 2

// NewMergeCmd creates the merge command.
func NewMergeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "merge BASE OTHER",
		Short: "Merge two romlist files",
		Long: `Merge two romlist files into one. Rows are matched by their Name column;
when both files carry the same name, the row from BASE wins. Row order is
preserved: all of BASE first, then the rows only OTHER has.`,
		Args: cobra.ExactArgs(mergeCommandArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			return runMerge(args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func runMerge(basePath, otherPath, outputPath string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	base, err := parseRomlist(basePath)
	if err != nil {
		return err
	}
	other, err := parseRomlist(otherPath)
	if err != nil {
		return err
	}

	merged := romlist.Merge(base, other)

	if outputPath == "" {
		return romlist.Write(os.Stdout, merged)
	}

	if err := fsutil.EnsureFileDir(outputPath); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := romlist.Write(file, merged); err != nil {
		return fmt.Errorf("failed to write merged romlist: %w", err)
	}

	logger.Success("romlists merged", logger.Fields{
		"base": len(base), "other": len(other), "merged": len(merged), "output": outputPath,
	})
	return nil
}

func parseRomlist(path string) ([]romlist.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open romlist %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rows, err := romlist.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse romlist %s: %w", path, err)
	}
	return rows, nil
}
