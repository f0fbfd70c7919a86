package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/pgql/cli/internal/config"
	"github.com/satishbabariya/pgql/cli/internal/ui"
)

// NewInitCommand creates the init command.
func NewInitCommand(a *app) *cobra.Command {
	var (
		provider string
		url      string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a pgql config file",
		Long:  "Write a .pgql.yaml with the default settings into the working directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(a.dir, config.FileName)

			exists, err := afero.Exists(a.fs, path)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}

			cfg := config.Default()
			cfg.Database.Provider = provider
			cfg.Database.URL = url
			if err := config.NewLoader(a.fs, a.dir).Save(cfg, path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			p := ui.New(cmd.OutOrStdout())
			p.Success("Created %s", path)
			fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
			fmt.Fprintln(cmd.OutOrStdout(), "1. Set DATABASE_URL in your .env file")
			fmt.Fprintln(cmd.OutOrStdout(), "2. Run `pgql serve` and open http://localhost:8000/graphql")
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "postgres", "Database provider: postgres, pgx, mysql or sqlite")
	cmd.Flags().StringVar(&url, "url", "", "Database URL to store in the config file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
