package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitquest/internal/constants"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage.Path != constants.DefaultDBPath {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, constants.DefaultDBPath)
	}
	if cfg.Server.Addr != "127.0.0.1:8787" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:8787")
	}
	if !cfg.Server.Metrics {
		t.Error("Server.Metrics should be enabled by default")
	}
	if cfg.Logging.Debug {
		t.Error("Logging.Debug should be off by default")
	}
	if cfg.Day.RolloverHour != nil {
		t.Error("Day.RolloverHour should be unset by default")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != constants.DefaultServerAddr {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[storage]
path = "/tmp/quest.db"

[logging]
debug = true

[server]
addr = ":9000"

[day]
timezone = "Europe/Berlin"
rollover_hour = 4
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Path != "/tmp/quest.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if !cfg.Logging.Debug {
		t.Error("Logging.Debug should be true")
	}
	if cfg.Server.Addr != ":9000" || !cfg.Server.Metrics {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Day.Timezone != "Europe/Berlin" || cfg.Day.RolloverHour == nil || *cfg.Day.RolloverHour != 4 {
		t.Errorf("unexpected day config %+v", cfg.Day)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax error", "[storage\npath=1", "failed to parse"},
		{"bad timezone", "[day]\ntimezone = \"Mars/Olympus\"", "not a valid IANA timezone"},
		{"bad rollover", "[day]\nrollover_hour = 30", "rollover_hour"},
		{"empty storage path", "[storage]\npath = \"\"", "storage.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	hour := 5
	cfg := DefaultConfig()
	cfg.Storage.Path = "/data/quest.db"
	cfg.Day.RolloverHour = &hour

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Storage.Path != "/data/quest.db" || got.Day.RolloverHour == nil || *got.Day.RolloverHour != 5 {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		in   string
		want string
	}{
		{"~/.config/habitquest/habitquest.db", filepath.Join(home, ".config/habitquest/habitquest.db")},
		{"/abs/path.db", "/abs/path.db"},
		{"postgres://localhost/quest", "postgres://localhost/quest"},
		{"~other/file", "~other/file"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPostgres(t *testing.T) {
	if !IsPostgres("postgresql://user@host/db") || !IsPostgres("postgres://host/db") {
		t.Error("expected postgres URLs to be detected")
	}
	if IsPostgres("/tmp/quest.db") {
		t.Error("file path is not postgres")
	}
}
