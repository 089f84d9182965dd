package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/tidy/pkg/config"
	"github.com/arthur-debert/tidy/pkg/executor"
	"github.com/arthur-debert/tidy/pkg/filesystem"
	"github.com/arthur-debert/tidy/pkg/logging"
)

var (
	verbosity  int
	dryRun     bool
	configPath string
	rootDir    string

	cfg    config.Config
	engine *executor.Engine

	rootCmd = &cobra.Command{
		Use:   "tidy",
		Short: "A rule-driven, dry-run-first file organizer",
		Long: `tidy reorganizes files safely: every operation can be previewed as a
dry run, deletions go to a recoverable trash vault, and everything that
happens (or would happen) lands in an append-only operation log.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")

			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if rootDir != "" {
				cfg.Root = rootDir
			}

			engine, err = executor.New(filesystem.NewOS(), cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if engine != nil {
				_ = engine.Close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"Preview changes without executing them")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (TOML or YAML)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "",
		"Confine all operations to this directory tree")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tidy version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}
