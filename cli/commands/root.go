// Package commands implements the pgql CLI commands.
package commands

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/pgql/cli/internal/config"
	"github.com/satishbabariya/pgql/cli/internal/version"
	"github.com/satishbabariya/pgql/internal/debug"
)

// app is the state shared by every command of one invocation.
type app struct {
	fs  afero.Fs
	dir string

	configFile string
	logLevel   string
	logFormat  string

	loader *config.Loader
	cfg    *config.Config
}

// Execute runs the CLI against the OS filesystem and working directory.
func Execute() error {
	return NewRootCommand(config.AppFs, ".").Execute()
}

// NewRootCommand creates the pgql command tree. Config files and .env files
// are looked up in dir on fs.
func NewRootCommand(fs afero.Fs, dir string) *cobra.Command {
	a := &app{fs: fs, dir: dir}

	rootCmd := &cobra.Command{
		Use:           "pgql",
		Short:         "GraphQL over SQL with compiled filters",
		Long:          "pgql serves users and posts over GraphQL and compiles nested filters into parameterized SQL",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default .pgql.yaml in the working or home directory)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(NewServeCommand(a))
	rootCmd.AddCommand(NewCompileCommand(a))
	rootCmd.AddCommand(NewInitCommand(a))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// load reads the configuration and sets up logging before any command runs.
func (a *app) load(cmd *cobra.Command) error {
	a.loader = config.NewLoader(a.fs, a.dir)

	cfg, err := a.loader.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	a.cfg = cfg

	return debug.Init(debug.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
}
