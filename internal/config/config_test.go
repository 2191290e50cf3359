package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectureiq/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("LECTUREIQ_API_URL", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "lectureiq")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Fatalf("unexpected timeout: %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Polling.DetailIntervalSeconds != 4 || cfg.Polling.ListIntervalSeconds != 5 {
		t.Fatalf("unexpected polling intervals: %+v", cfg.Polling)
	}
	if got := cfg.SessionFile(); got != filepath.Join(wantState, config.SessionFileName) {
		t.Fatalf("unexpected session file: %q", got)
	}
}

func TestLoadReadsFileAndTrimsBaseURL(t *testing.T) {
	t.Setenv("LECTUREIQ_API_URL", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[api]",
		`base_url = "https://study.example.com/"`,
		"timeout_seconds = 5",
		"",
		"[polling]",
		"detail_interval_seconds = 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.API.BaseURL != "https://study.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 5 {
		t.Fatalf("unexpected timeout: %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Polling.DetailIntervalSeconds != 2 {
		t.Fatalf("unexpected detail interval: %d", cfg.Polling.DetailIntervalSeconds)
	}
	if cfg.Polling.ListIntervalSeconds != 5 {
		t.Fatalf("expected default list interval, got %d", cfg.Polling.ListIntervalSeconds)
	}
}

func TestLoadHonoursEnvBaseURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LECTUREIQ_API_URL", "https://env.example.com")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com" {
		t.Fatalf("expected env override, got %q", cfg.API.BaseURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LECTUREIQ_API_URL", "")
	cases := []struct {
		name    string
		content string
	}{
		{"bad url", "[api]\nbase_url = \"not a url\"\n"},
		{"bad format", "[logging]\nformat = \"xml\"\n"},
		{"bad level", "[logging]\nlevel = \"verbose\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("LECTUREIQ_API_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("load sample: exists=%v err=%v", exists, err)
	}
}
