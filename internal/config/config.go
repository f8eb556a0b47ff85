package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentPages int

	// Upload limits
	MaxUploadBytes int64

	// Batch jobs may only target directories below this root.
	PagesRoot string

	// Page markers
	PlaceholderID   string
	ConceptualClass string
	XrefClass       string

	// Rendered list
	ListClasses []string
	ScopeClass  string

	// Job state
	JobTTL time.Duration

	// Latency stats window
	StatsWindow time.Duration
}

// fileConfig is the YAML shape of the optional config file. Zero values leave
// the defaults in place.
type fileConfig struct {
	Port               string   `yaml:"port,omitempty"`
	WorkerCount        int      `yaml:"worker_count,omitempty"`
	MaxQueueSize       int      `yaml:"max_queue_size,omitempty"`
	MaxConcurrentPages int      `yaml:"max_concurrent_pages,omitempty"`
	MaxUploadBytes     int64    `yaml:"max_upload_bytes,omitempty"`
	PagesRoot          string   `yaml:"pages_root,omitempty"`
	PlaceholderID      string   `yaml:"placeholder_id,omitempty"`
	ConceptualClass    string   `yaml:"conceptual_class,omitempty"`
	XrefClass          string   `yaml:"xref_class,omitempty"`
	ListClasses        []string `yaml:"list_classes,omitempty"`
	ScopeClass         string   `yaml:"scope_class,omitempty"`
	JobTTL             string   `yaml:"job_ttl,omitempty"`
	StatsWindow        string   `yaml:"stats_window,omitempty"`
}

func defaults() Config {
	return Config{
		Port:               "8090",
		WorkerCount:        2,
		MaxQueueSize:       100,
		MaxConcurrentPages: 8,
		MaxUploadBytes:     10485760, // 10MB
		PagesRoot:          ".",
		PlaceholderID:      "affix",
		ConceptualClass:    "conceptual",
		XrefClass:          "xref",
		ListClasses:        []string{"nav", "bs-docs-sidenav"},
		JobTTL:             1 * time.Hour,
		StatsWindow:        1 * time.Hour,
	}
}

// Load reads the config file named by AFFIX_CONFIG, if any, then applies
// environment overrides.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("AFFIX_CONFIG"))
}

// LoadFrom reads the YAML config file at path (skipped when path is empty or
// the file does not exist), then applies environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		fc, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := fc.apply(&cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("AFFIX_API_KEY", cfg.APIKey)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxConcurrentPages = envInt("MAX_CONCURRENT_PAGES", cfg.MaxConcurrentPages)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.PagesRoot = envOr("AFFIX_PAGES_ROOT", cfg.PagesRoot)
	cfg.PlaceholderID = envOr("AFFIX_PLACEHOLDER_ID", cfg.PlaceholderID)
	cfg.ConceptualClass = envOr("AFFIX_CONCEPTUAL_CLASS", cfg.ConceptualClass)
	cfg.XrefClass = envOr("AFFIX_XREF_CLASS", cfg.XrefClass)
	cfg.ListClasses = envList("AFFIX_LIST_CLASSES", cfg.ListClasses)
	cfg.ScopeClass = envOr("AFFIX_SCOPE_CLASS", cfg.ScopeClass)

	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)

	d := defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = d.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = d.MaxQueueSize
	}
	if cfg.MaxConcurrentPages <= 0 {
		cfg.MaxConcurrentPages = d.MaxConcurrentPages
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = d.JobTTL
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = d.StatsWindow
	}

	return cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("AFFIX_API_KEY is required")
	}
	if c.PlaceholderID == "" {
		return fmt.Errorf("placeholder id must not be empty")
	}
	return nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return fc, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing config: %w", err)
	}
	return fc, nil
}

func (fc fileConfig) apply(cfg *Config) error {
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.WorkerCount > 0 {
		cfg.WorkerCount = fc.WorkerCount
	}
	if fc.MaxQueueSize > 0 {
		cfg.MaxQueueSize = fc.MaxQueueSize
	}
	if fc.MaxConcurrentPages > 0 {
		cfg.MaxConcurrentPages = fc.MaxConcurrentPages
	}
	if fc.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = fc.MaxUploadBytes
	}
	if fc.PagesRoot != "" {
		cfg.PagesRoot = fc.PagesRoot
	}
	if fc.PlaceholderID != "" {
		cfg.PlaceholderID = fc.PlaceholderID
	}
	if fc.ConceptualClass != "" {
		cfg.ConceptualClass = fc.ConceptualClass
	}
	if fc.XrefClass != "" {
		cfg.XrefClass = fc.XrefClass
	}
	if fc.ListClasses != nil {
		cfg.ListClasses = fc.ListClasses
	}
	if fc.ScopeClass != "" {
		cfg.ScopeClass = fc.ScopeClass
	}
	if fc.JobTTL != "" {
		d, err := time.ParseDuration(fc.JobTTL)
		if err != nil {
			return fmt.Errorf("job_ttl: %w", err)
		}
		cfg.JobTTL = d
	}
	if fc.StatsWindow != "" {
		d, err := time.ParseDuration(fc.StatsWindow)
		if err != nil {
			return fmt.Errorf("stats_window: %w", err)
		}
		cfg.StatsWindow = d
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits on commas and whitespace. A set but blank variable clears
// the list.
func envList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
