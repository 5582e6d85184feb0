package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize sheetsdb storage",
		Long:  "Write config.yaml if it is missing, then create the data directory and\nthe backend's root collection.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.driveConfig()
			if err != nil {
				return err
			}
			// Record an explicit --data-dir so later commands find the same store.
			if a.flags.dataDir != "" && a.settings.GetString(cfgKeyDataDir) == "" {
				err := writeConfig(a.configDir, configFile{
					Backend:   cfg.Backend,
					DataDir:   cfg.DataDir,
					LogLevel:  cfg.LogLevel,
					LogFormat: cfg.LogFormat,
				})
				if err != nil {
					return fmt.Errorf("write config: %w", err)
				}
			}

			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			if _, err := s.Drive().Root(); err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}

			if cfg.Backend == types.BackendMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "sheetsdb initialized (memory backend, nothing is persisted)")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sheetsdb initialized in %s\n", cfg.DataDir)
			return nil
		},
	}
}
