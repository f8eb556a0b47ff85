package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.PlaceholderID != "affix" || cfg.ConceptualClass != "conceptual" || cfg.XrefClass != "xref" {
		t.Errorf("unexpected markers: %q %q %q", cfg.PlaceholderID, cfg.ConceptualClass, cfg.XrefClass)
	}
	if !reflect.DeepEqual(cfg.ListClasses, []string{"nav", "bs-docs-sidenav"}) {
		t.Errorf("unexpected list classes: %v", cfg.ListClasses)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job ttl, got %v", cfg.JobTTL)
	}
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affix.yaml")
	data := []byte(`port: "9000"
worker_count: 6
placeholder_id: side-nav
list_classes: [nav]
job_ttl: 10m
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORKER_COUNT", "3")
	t.Setenv("AFFIX_SCOPE_CLASS", "page-affix")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port from file, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 3 {
		t.Errorf("expected env to override file worker count, got %d", cfg.WorkerCount)
	}
	if cfg.PlaceholderID != "side-nav" {
		t.Errorf("expected placeholder from file, got %q", cfg.PlaceholderID)
	}
	if !reflect.DeepEqual(cfg.ListClasses, []string{"nav"}) {
		t.Errorf("expected list classes from file, got %v", cfg.ListClasses)
	}
	if cfg.ScopeClass != "page-affix" {
		t.Errorf("expected scope class from env, got %q", cfg.ScopeClass)
	}
	if cfg.JobTTL != 10*time.Minute {
		t.Errorf("expected 10m job ttl, got %v", cfg.JobTTL)
	}
}

func TestLoadFrom_MissingFileIsIgnored(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected defaults, got port %q", cfg.Port)
	}
}

func TestLoadFrom_BadFile(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"bad yaml":     "port: [unclosed",
		"bad duration": "job_ttl: soon",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFrom_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("MAX_QUEUE_SIZE", "lots")
	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected default worker count, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected default queue size, got %d", cfg.MaxQueueSize)
	}
}

func TestEnvList(t *testing.T) {
	t.Setenv("AFFIX_LIST_CLASSES", "nav, sidenav  extra")
	got := envList("AFFIX_LIST_CLASSES", nil)
	if !reflect.DeepEqual(got, []string{"nav", "sidenav", "extra"}) {
		t.Errorf("unexpected list: %v", got)
	}

	t.Setenv("AFFIX_LIST_CLASSES", "")
	if got := envList("AFFIX_LIST_CLASSES", []string{"nav"}); len(got) != 0 {
		t.Errorf("expected blank variable to clear the list, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	cfg, _ := LoadFrom("")
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without api key")
	}
	cfg.APIKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
