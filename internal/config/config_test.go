package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.APIBaseURL != "https://api.openai.com/v1" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %q, want default", cfg.Model)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `{"model":"gpt-4o-mini","api_key":"sk-test","db_max_open_conns":1}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.APIBaseURL != "https://api.openai.com/v1" {
		t.Errorf("APIBaseURL = %q, want default preserved", cfg.APIBaseURL)
	}
	if cfg.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d", cfg.DBMaxOpenConns)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestLoad_EnvKeyOverride(t *testing.T) {
	dir := t.TempDir()
	content := `{"api_key":"sk-from-file"}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TESSERA_API_KEY", "sk-from-env")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want env override", cfg.APIKey)
	}
}

func TestMerge_ArraysDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"code_add", " autocode_run "}}
	overlay := &Config{DisabledTools: []string{"code_add", "project_reset"}}

	got := Merge(base, overlay)
	want := map[string]bool{"code_add": true, "autocode_run": true, "project_reset": true}

	if len(got.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v", got.DisabledTools)
	}
	for _, tool := range got.DisabledTools {
		if !want[tool] {
			t.Errorf("unexpected tool %q", tool)
		}
	}
}
