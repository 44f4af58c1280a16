package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want :8080", cfg.Server.Addr)
	}
	if cfg.Catalog.Format != "auto" {
		t.Errorf("Catalog.Format = %s, want auto", cfg.Catalog.Format)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics should be enabled by default")
	}
	if cfg.Sessions.IdleTimeout.Duration() != 30*time.Minute {
		t.Errorf("Sessions.IdleTimeout = %s, want 30m", cfg.Sessions.IdleTimeout.Duration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad catalog format", func(c *Config) { c.Catalog.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Log.Format = "text" }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"watch without path", func(c *Config) { c.Catalog.Watch = true }},
		{"metrics without namespace", func(c *Config) { c.Metrics.Namespace = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAddr:     ":9999",
		EnvLogLevel: "DEBUG",
		EnvCatalog:  "/data/catalog.db",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv(lookup)

	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %s, want :9999", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
	if cfg.Catalog.Path != "/data/catalog.db" {
		t.Errorf("Catalog.Path = %s", cfg.Catalog.Path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:7000"
	cfg.Server.CORSOrigins = []string{"https://mosdac.example"}
	cfg.Catalog.Path = "/srv/catalog.yaml"
	cfg.Catalog.Watch = true
	cfg.Sessions.IdleTimeout = Duration(10 * time.Minute)

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("Server.Addr = %s", loaded.Server.Addr)
	}
	if len(loaded.Server.CORSOrigins) != 1 {
		t.Errorf("CORSOrigins = %v", loaded.Server.CORSOrigins)
	}
	if !loaded.Catalog.Watch || loaded.Catalog.Path != "/srv/catalog.yaml" {
		t.Errorf("Catalog = %+v", loaded.Catalog)
	}
	if loaded.Sessions.IdleTimeout.Duration() != 10*time.Minute {
		t.Errorf("IdleTimeout = %s, want 10m", loaded.Sessions.IdleTimeout.Duration())
	}
}

func TestLoadPartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data := "log:\n  level: warn\nserver:\n  read_timeout: 3s\n"
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %s, want default json", cfg.Log.Format)
	}
	if cfg.Server.ReadTimeout.Duration() != 3*time.Second {
		t.Errorf("ReadTimeout = %s, want 3s", cfg.Server.ReadTimeout.Duration())
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want default", cfg.Server.Addr)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics should stay enabled when the file omits it")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("bad yaml", func(t *testing.T) {
		p := filepath.Join(dir, "bad.yaml")
		os.WriteFile(p, []byte("server: [oops"), 0644)
		if _, _, err := LoadFromPath(p); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		p := filepath.Join(dir, "dur.yaml")
		os.WriteFile(p, []byte("server:\n  read_timeout: soon\n"), 0644)
		if _, _, err := LoadFromPath(p); err == nil {
			t.Error("expected duration error")
		}
	})

	t.Run("fails validation", func(t *testing.T) {
		p := filepath.Join(dir, "invalid.yaml")
		os.WriteFile(p, []byte("catalog:\n  format: csv\n"), 0644)
		_, _, err := LoadFromPath(p)
		if err == nil || !strings.Contains(err.Error(), "invalid config") {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := LoadFromPath(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("expected read error")
		}
	})
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFindConfig(t *testing.T) {
	wd, err := filepath.Abs(ConfigFileName)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		env      map[string]string
		existing []string
		want     string
	}{
		{
			name:     "explicit path wins",
			env:      map[string]string{EnvConfigPath: "/opt/bot.yaml", "XDG_CONFIG_HOME": "/xdg"},
			existing: []string{"/opt/bot.yaml", wd, "/xdg/mosdacbot/config.yaml"},
			want:     "/opt/bot.yaml",
		},
		{
			name:     "missing explicit path falls back to working directory",
			env:      map[string]string{EnvConfigPath: "/nonexistent.yaml"},
			existing: []string{wd},
			want:     wd,
		},
		{
			name:     "xdg config home",
			env:      map[string]string{"XDG_CONFIG_HOME": "/xdg", "HOME": "/home/op"},
			existing: []string{"/xdg/mosdacbot/config.yaml", "/home/op/.config/mosdacbot/config.yaml"},
			want:     "/xdg/mosdacbot/config.yaml",
		},
		{
			name:     "home config without xdg",
			env:      map[string]string{"HOME": "/home/op"},
			existing: []string{"/home/op/.config/mosdacbot/config.yaml"},
			want:     "/home/op/.config/mosdacbot/config.yaml",
		},
		{
			name:     "system wide",
			env:      map[string]string{},
			existing: []string{"/etc/mosdacbot/config.yaml"},
			want:     "/etc/mosdacbot/config.yaml",
		},
		{
			name: "nothing found",
			env:  map[string]string{"HOME": "/home/op"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists := func(p string) bool {
				for _, e := range tt.existing {
					if e == p {
						return true
					}
				}
				return false
			}
			if got := findConfig(envMap(tt.env), exists); got != tt.want {
				t.Errorf("findConfig() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindConfigPathExplicit(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, explicit)

	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultConfigPath(); got != "/xdg/mosdacbot/config.yaml" {
		t.Errorf("DefaultConfigPath() = %s", got)
	}
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	data := "catalog:\n  path: data/catalog.yaml\nnlp:\n  rules_path: rules.yaml\n  templates_path: /abs/templates.yaml\n"
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCatalog, "")
	os.Unsetenv(EnvCatalog)

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if want := filepath.Join(dir, "data", "catalog.yaml"); cfg.Catalog.Path != want {
		t.Errorf("Catalog.Path = %s, want %s", cfg.Catalog.Path, want)
	}
	if want := filepath.Join(dir, "rules.yaml"); cfg.NLP.RulesPath != want {
		t.Errorf("NLP.RulesPath = %s, want %s", cfg.NLP.RulesPath, want)
	}
	if cfg.NLP.TemplatesPath != "/abs/templates.yaml" {
		t.Errorf("NLP.TemplatesPath = %s, want unchanged absolute path", cfg.NLP.TemplatesPath)
	}

	// the environment override is not anchored to the config directory
	t.Setenv(EnvCatalog, "other.yaml")
	cfg, _, err = LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Catalog.Path != "other.yaml" {
		t.Errorf("Catalog.Path = %s, want env override other.yaml", cfg.Catalog.Path)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}

func TestSummary(t *testing.T) {
	s := DefaultConfig().Summary()
	if !strings.Contains(s, "built-in sample") {
		t.Errorf("Summary() should mention the sample catalog: %s", s)
	}
	if !strings.Contains(s, "Metrics: enabled") {
		t.Errorf("Summary() should mention metrics: %s", s)
	}
}
