package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewSystemsCmd creates the systems command.
func NewSystemsCmd() *cobra.Command {
	var systemsFile string

	cmd := &cobra.Command{
		Use:   "systems",
		Short: "List the known systems",
		Long: `List the systems the metadata service knows about, with the ids used
in the fallback_system setting and the names used as systems: section keys.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSystems(cmd, systemsFile)
		},
	}

	cmd.Flags().StringVar(&systemsFile, "systems-file", "", "offline system catalog snapshot instead of the live service")

	return cmd
}

func runSystems(cmd *cobra.Command, systemsFile string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	systems, err := loadSystems(cmd.Context(), newClient(cfg), systemsFile)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, systems.Len())
	for _, id := range systems.IDs() {
		name, _ := systems.NameByID(id)
		emulator := ""
		if configured, ok := cfg.Emulator(name); ok {
			emulator = configured
		}
		rows = append(rows, []string{strconv.Itoa(id), name, emulator})
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "System", "Emulator"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	))
	return nil
}
