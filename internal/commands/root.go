package commands

import (
	"context"

	"github.com/spendlog/spendlog/internal/app"
	"github.com/spendlog/spendlog/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config/application.yaml"

type rootOptions struct {
	configPath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "spendlog",
		Short: "Personal expense log with daily and category reports",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "path to the YAML configuration file")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newAddCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))
	rootCmd.AddCommand(newDayCommand(opts))

	return rootCmd
}

func (o *rootOptions) openApplication(ctx context.Context) (*app.Application, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	return app.NewApplication(ctx, cfg)
}
