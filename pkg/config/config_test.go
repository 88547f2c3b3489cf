package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	configDir := filepath.Join(home, ".taxnav")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")
}

func TestConfigFileAPIKeysAsFallback(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearKeyEnv(t)

	writeConfig(t, home, "api_keys:\n  anthropic: file-ant\n  openai: file-openai\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "file-ant" || cfg.OpenAIAPIKey != "file-openai" {
		t.Fatalf("file keys not used: %+v", cfg)
	}
	if cfg.GoogleAPIKey != "" || cfg.DeepSeekAPIKey != "" {
		t.Fatalf("unset keys not empty: %+v", cfg)
	}
}

func TestConfigEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "env-openai")

	writeConfig(t, home, "api_keys:\n  openai: file-openai\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAIAPIKey != "env-openai" {
		t.Fatalf("env key not preferred: %q", cfg.OpenAIAPIKey)
	}
}

func TestConfigClassifySettings(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearKeyEnv(t)

	writeConfig(t, home, `classify:
  adapter: anthropic
  summary_model: claude-sonnet-4-20250514
  batch_size: 50
  max_per_batch: 10
  domain_count: 2
  taxonomy_file: /data/taxonomy.en-US.txt
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := cfg.Classify
	if s.Adapter != "anthropic" || s.SummaryModel != "claude-sonnet-4-20250514" {
		t.Fatalf("settings: %+v", s)
	}
	if s.BatchSize != 50 || s.MaxPerBatch != 10 || s.DomainCount != 2 {
		t.Fatalf("tunables: %+v", s)
	}
	if s.TaxonomyFile != "/data/taxonomy.en-US.txt" {
		t.Fatalf("taxonomy file: %q", s.TaxonomyFile)
	}
}

func TestConfigDefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearKeyEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Classify.Adapter != "openai" {
		t.Fatalf("default adapter: %q", cfg.Classify.Adapter)
	}
	if cfg.HasAdapter("openai") {
		t.Fatalf("adapter reported configured without a key")
	}
}

func TestLoadWithFile(t *testing.T) {
	dir := t.TempDir()
	clearKeyEnv(t)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("classify:\n  adapter: google\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Classify.Adapter != "google" {
		t.Fatalf("adapter: %q", cfg.Classify.Adapter)
	}
	if _, err := LoadWithFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}
