// Package cli provides the csvpreview command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvpreview/internal/config"
	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/logging"
)

// Version is set at build time.
var Version = "0.1.0"

// serviceKey stores the preview service in the command context.
type serviceKey struct{}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "csvpreview",
		Short: "Preview CSV recipient lists",
		Long: `csvpreview parses a CSV file, lists its columns and lets you pick an
email column and a row range, the same way the web preview does.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			// stdout belongs to command output and the terminal UI.
			logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

			svc := core.NewService(nil, core.OptionsFromConfig(cfg))
			cmd.SetContext(context.WithValue(cmd.Context(), serviceKey{}, svc))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewTUICommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", core.FormatUserError(err))
		return err
	}
	return nil
}

// serviceFrom returns the service stored by the root command.
func serviceFrom(ctx context.Context) (*core.Service, error) {
	if svc, ok := ctx.Value(serviceKey{}).(*core.Service); ok {
		return svc, nil
	}
	return nil, fmt.Errorf("preview service not initialised")
}
