package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"karaparty/internal/config"
	"karaparty/internal/daemonrun"
)

type flags struct {
	configPath string
	apiBind    string
	logLevel   string
	diagnostic bool
}

func newCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "karapartyd",
		Short:         "Run the karaparty submission daemon",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:   f.logLevel,
				Diagnostic: f.diagnostic,
			})
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&f.apiBind, "api", "", "Override paths.api_bind")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Override logging.level")
	cmd.Flags().BoolVar(&f.diagnostic, "diagnostic", false, "Also write DEBUG-level JSON logs under <log_dir>/debug")
	return cmd
}

func loadConfig(f flags) (*config.Config, error) {
	cfg, _, _, err := config.Load(strings.TrimSpace(f.configPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if bind := strings.TrimSpace(f.apiBind); bind != "" {
		cfg.Paths.APIBind = bind
	}
	return cfg, nil
}
