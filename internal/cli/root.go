// Package cli implements the sheetsdb command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/sheetsdb/internal/logging"
	"github.com/mesh-intelligence/sheetsdb/internal/paths"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Version is the sheetsdb release reported by the version command.
const Version = "0.1.0"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks mistakes in the command line itself.
var errUsage = errors.New("usage error")

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	settings  *viper.Viper
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "sheetsdb" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: logging.Discard()}
	root := &cobra.Command{
		Use:     "sheetsdb",
		Short:   "Read and write spreadsheet rows as records",
		Long:    "sheetsdb treats each worksheet of a spreadsheet as a table whose first row\nholds column names, and reads or writes the rows below it as records.",
		Version: Version,
		// Subcommand errors are printed once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.configure(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $SHEETSDB_CONFIG_DIR or the user config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.sheetsdb-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newSpreadsheetsCmd(a),
		newCreateCmd(a),
		newWorksheetsCmd(a),
		newRowsCmd(a),
		newFindCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	err := NewRootCmd().Execute()
	if err == nil {
		os.Exit(exitSuccess)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(exitCode(err))
}

// exitCode separates caller mistakes from failures of the backend.
func exitCode(err error) int {
	for _, userErr := range []error{
		errUsage,
		types.ErrResourceNotFound,
		types.ErrChildResourceNotFound,
		types.ErrColumnNotFound,
		types.ErrUnknownAttribute,
		types.ErrInvalidValue,
		types.ErrInvalidName,
		types.ErrBackendUnknown,
		types.ErrDataDirRequired,
	} {
		if errors.Is(err, userErr) {
			return exitUserError
		}
	}
	return exitSysError
}

// configure resolves directories, loads config.yaml, and sets up logging.
func (a *app) configure(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	a.configDir = configDir
	a.settings = v
	a.logger = logging.Setup(v.GetString(cfgKeyLogLevel), v.GetString(cfgKeyLogFormat))
	a.logger.Debug("loaded configuration", "config_dir", configDir, "command", cmd.Name())
	return nil
}
