package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zombar/biasanalyzer/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage biasctl configuration",
		Long: `Manage the biasctl configuration file.

Configuration precedence (highest first):
  1. command line flags
  2. BIASCTL_* environment variables
  3. config file ($XDG_CONFIG_HOME/biasctl/config.yaml)
  4. built-in defaults`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				if used := a.v.ConfigFileUsed(); used != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", used)
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
				}
				data, err := a.cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a default configuration file",
			// The file may not exist yet, so the configuration is not loaded
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
			RunE: func(cmd *cobra.Command, args []string) error {
				path := a.cfgFile
				if path == "" {
					path = a.configPath
				}
				if err := config.Write(path, config.Default()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			},
		},
	)
	return cmd
}
