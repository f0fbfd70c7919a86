package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/pgql/cli/internal/ui"
	"github.com/satishbabariya/pgql/cli/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var minVersion string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display version information for the pgql CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if err := ui.New(cmd.OutOrStdout()).Table([]string{"Component", "Value"}, info.Rows()); err != nil {
				return err
			}

			if minVersion == "" {
				return nil
			}
			older, err := info.Older(minVersion)
			if err != nil {
				return err
			}
			if older {
				return fmt.Errorf("pgql %s is older than the required %s", info.Version, minVersion)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&minVersion, "require", "", "Fail when the CLI is older than this version")

	return cmd
}
