package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/sheetsdb/internal/paths"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend   = "backend"
	cfgKeyDataDir   = "data_dir"
	cfgKeyLogLevel  = "log_level"
	cfgKeyLogFormat = "log_format"

	defaultBackend   = types.BackendSQLite
	defaultLogLevel  = "warn"
	defaultLogFormat = types.LogFormatText
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# sheetsdb configuration

# Backend: sqlite, xlsx, or memory
backend: sqlite

# Data directory (optional; overridable by --data-dir and SHEETSDB_DATA_DIR)
# data_dir:

# Logging: debug, info, warn, error / text, json
log_level: warn
log_format: text
`

// configFile is the structure init writes when it records a data directory.
type configFile struct {
	Backend   string `yaml:"backend"`
	DataDir   string `yaml:"data_dir,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"`
}

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates config.yaml unless it already exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// writeConfig rewrites config.yaml with cfg.
func writeConfig(configDir string, cfg configFile) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(configDir, configFileExt), data, 0o644)
}

// driveConfig merges flags, config.yaml, and the environment into the
// backend configuration.
func (a *app) driveConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.settings.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Backend:   a.settings.GetString(cfgKeyBackend),
		DataDir:   dataDir,
		LogLevel:  a.settings.GetString(cfgKeyLogLevel),
		LogFormat: a.settings.GetString(cfgKeyLogFormat),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config.yaml: %w", err)
	}
	return cfg, nil
}
