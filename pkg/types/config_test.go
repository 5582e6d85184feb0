package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: "sqlite", DataDir: ""},
			wantErr: nil,
		},
		{
			name:    "memory needs no DataDir",
			config:  Config{Backend: "memory"},
			wantErr: nil,
		},
		{
			name:    "xlsx without DataDir returns ErrDataDirRequired",
			config:  Config{Backend: "xlsx"},
			wantErr: ErrDataDirRequired,
		},
		{
			name:    "unknown log level",
			config:  Config{Backend: "memory", LogLevel: "verbose"},
			wantErr: ErrLogLevelUnknown,
		},
		{
			name:    "unknown log format",
			config:  Config{Backend: "memory", LogFormat: "xml"},
			wantErr: ErrLogFormatUnknown,
		},
		{
			name:    "json logging at debug",
			config:  Config{Backend: "xlsx", DataDir: "/tmp/books", LogLevel: "debug", LogFormat: "json"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
