package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Source != SourceGPIO {
		t.Fatalf("source = %q", cfg.Source)
	}
	if cfg.Pin != 13 || cfg.PollIntervalUs != 30 || cfg.WindowUs != 200000 {
		t.Fatalf("unexpected sampler defaults: %+v", cfg)
	}
	if cfg.EventPause != 200*time.Millisecond {
		t.Fatalf("event pause = %s", cfg.EventPause)
	}
	if cfg.Listen != ":8080" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
source: serial
serial:
  port: /dev/ttyUSB0
  baud: 115200
keymap_file: /var/lib/remote/keymap.json
event_pause: 50ms
decoder:
  bit_threshold_us: 1100
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != SourceSerial || cfg.Serial.Port != "/dev/ttyUSB0" || cfg.Serial.Baud != 115200 {
		t.Fatalf("serial config = %+v", cfg.Serial)
	}
	if cfg.EventPause != 50*time.Millisecond {
		t.Fatalf("event pause = %s", cfg.EventPause)
	}
	if cfg.Decoder.BitThresholdUs != 1100 {
		t.Fatalf("bit threshold = %d", cfg.Decoder.BitThresholdUs)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
	// Untouched fields keep their defaults.
	if cfg.Pin != 13 || cfg.Listen != ":8080" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad source", "source: dvb\n"},
		{"serial without port", "source: serial\n"},
		{"bad event pause", "event_pause: soon\n"},
		{"negative poll interval", "poll_interval_us: -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
