package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			config: Config{
				Port:         "8081",
				SQLiteDBPath: "./test.db",
				SessionTTL:   24 * time.Hour,
				BcryptCost:   10,
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:         "abc",
				SQLiteDBPath: "./test.db",
				SessionTTL:   time.Hour,
				BcryptCost:   10,
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:         "70000",
				SQLiteDBPath: "./test.db",
				SessionTTL:   time.Hour,
				BcryptCost:   10,
			},
			wantErr:     true,
			errorString: "must be between 1 and 65535",
		},
		{
			name: "empty db path",
			config: Config{
				Port:       "8081",
				SessionTTL: time.Hour,
				BcryptCost: 10,
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "session TTL too short",
			config: Config{
				Port:         "8081",
				SQLiteDBPath: "./test.db",
				SessionTTL:   10 * time.Second,
				BcryptCost:   10,
			},
			wantErr:     true,
			errorString: "must be at least 1 minute",
		},
		{
			name: "bcrypt cost out of range",
			config: Config{
				Port:         "8081",
				SQLiteDBPath: "./test.db",
				SessionTTL:   time.Hour,
				BcryptCost:   99,
			},
			wantErr:     true,
			errorString: "invalid bcrypt cost 99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "fintrack.db"))
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("default port = %s", cfg.Port)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("default session TTL = %v", cfg.SessionTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
