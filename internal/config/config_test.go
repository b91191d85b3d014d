package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
server:
  host: "0.0.0.0"
  port: 8080
backend:
  url: "https://warehouse.example.com"
  api_key: "backend-key"
auth:
  api_key: "ingest-key"
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Backend.URL != "https://warehouse.example.com" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}

	// Defaults fill everything the file omits.
	if cfg.Backend.Timeout != 30*time.Second {
		t.Errorf("backend timeout = %v, want 30s", cfg.Backend.Timeout)
	}
	if cfg.Queue.Dir != "data" || cfg.Queue.MigrationsPath != "migrations" {
		t.Errorf("queue defaults = %q, %q", cfg.Queue.Dir, cfg.Queue.MigrationsPath)
	}
	if cfg.Queue.SyncInterval != 30*time.Second {
		t.Errorf("sync interval = %v, want 30s", cfg.Queue.SyncInterval)
	}
	if cfg.Buffer.MaxPoints != 1000 || cfg.Buffer.Window != 24*time.Hour {
		t.Errorf("buffer defaults = %d, %v", cfg.Buffer.MaxPoints, cfg.Buffer.Window)
	}
	if cfg.Sensor.Model != "unknown" {
		t.Errorf("sensor model default = %q", cfg.Sensor.Model)
	}
	if cfg.MQTT.Enabled || cfg.Redis.Enabled || cfg.Tailscale.Enabled {
		t.Error("optional integrations enabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("VITALSYNC_SERVER_PORT", "9090")
	t.Setenv("VITALSYNC_BACKEND_URL", "https://override.example.com")
	t.Setenv("VITALSYNC_SENSOR_MODEL", "pulseband-3")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want env override 9090", cfg.Server.Port)
	}
	if cfg.Backend.URL != "https://override.example.com" {
		t.Errorf("backend url = %q, want env override", cfg.Backend.URL)
	}
	if cfg.Sensor.Model != "pulseband-3" {
		t.Errorf("sensor model = %q, want env override", cfg.Sensor.Model)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing port",
			`
backend:
  url: "https://warehouse.example.com"
auth:
  api_key: "k"
`,
			"server.port",
		},
		{
			"missing backend url",
			`
server:
  port: 8080
auth:
  api_key: "k"
`,
			"backend.url",
		},
		{
			"missing auth key",
			`
server:
  port: 8080
backend:
  url: "https://warehouse.example.com"
`,
			"auth.api_key",
		},
		{
			"mqtt enabled without broker",
			minimalConfig + `
mqtt:
  enabled: true
  topic: "vitals/readings"
`,
			"mqtt.broker",
		},
		{
			"redis enabled without addr",
			minimalConfig + `
redis:
  enabled: true
`,
			"redis.addr",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [not a map")); err == nil {
		t.Fatal("expected parse error")
	}
}
