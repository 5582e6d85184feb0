package types

import "errors"

// Config holds backend selection and parameters for opening a Drive.
type Config struct {
	Backend   string `json:"backend" yaml:"backend"`
	DataDir   string `json:"data_dir" yaml:"data_dir"`
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendXLSX   = "xlsx"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrDataDirRequired  = errors.New("data directory is required for this backend")
	ErrLogLevelUnknown  = errors.New("unknown log level")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendXLSX:   true,
}

var knownLogLevels = map[string]bool{
	"":      true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. The xlsx backend needs a DataDir because the
// directory itself is the root collection; sqlite falls back to the working
// directory.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendXLSX && c.DataDir == "" {
		return ErrDataDirRequired
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		return ErrLogFormatUnknown
	}
	return nil
}
