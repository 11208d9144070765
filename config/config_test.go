package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.RecordSeconds != DefaultRecordSeconds {
		t.Errorf("RecordSeconds = %d, want %d", cfg.RecordSeconds, DefaultRecordSeconds)
	}
	if cfg.BackendURL != "" {
		t.Errorf("BackendURL = %q, want empty", cfg.BackendURL)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := &Config{
		BackendURL:    "http://localhost:5000",
		RecordSeconds: 8,
		Muted:         true,
		OpenAI: &OpenAIConfig{
			APIKey:    "sk-test",
			ChatModel: "gpt-4o-mini",
		},
	}
	if err := cfg.saveTo(path); err != nil {
		t.Fatalf("saveTo: %v", err)
	}

	got, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if got.BackendURL != cfg.BackendURL {
		t.Errorf("BackendURL = %q, want %q", got.BackendURL, cfg.BackendURL)
	}
	if got.RecordSeconds != 8 {
		t.Errorf("RecordSeconds = %d, want 8", got.RecordSeconds)
	}
	if !got.Muted {
		t.Error("Muted should round-trip")
	}
	if got.OpenAI == nil || got.OpenAI.APIKey != "sk-test" {
		t.Errorf("OpenAI = %+v, want APIKey sk-test", got.OpenAI)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadFrom(path); err == nil {
		t.Error("loadFrom should report corrupt config")
	}
}

func TestRecordDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"default when zero", 0, 5 * time.Second},
		{"default when negative", -3, 5 * time.Second},
		{"configured", 10, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{RecordSeconds: tt.seconds}
			if got := cfg.RecordDuration(); got != tt.want {
				t.Errorf("RecordDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSystemPrompt(t *testing.T) {
	cfg := &Config{}
	if cfg.GetSystemPrompt() != DefaultSystemPrompt {
		t.Error("empty config should use default prompt")
	}

	cfg.SystemPrompt = "custom"
	if cfg.GetSystemPrompt() != "custom" {
		t.Errorf("GetSystemPrompt() = %q, want custom", cfg.GetSystemPrompt())
	}
}
