package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Backend selects which catalog implementation the CLI talks to.
type Backend string

const (
	BackendRemote Backend = "remote"
	BackendMemory Backend = "memory"
	BackendKuzu   Backend = "kuzu"
)

// Defaults applied before the config file, environment and flags.
const (
	DefaultBaseURL  = "http://localhost:8080"
	DefaultListen   = "127.0.0.1:8080"
	DefaultDebounce = 500 * time.Millisecond
	DefaultTimeout  = 30 * time.Second
)

// Decode lets envconfig accept LENDIT_BACKEND in any case.
func (b *Backend) Decode(value string) error {
	*b = Backend(strings.ToLower(value))
	return nil
}

// ProjectConfig holds settings loaded from lendit.yml. The envconfig tags
// carry full variable names so bare USER or TIMEOUT are never read.
type ProjectConfig struct {
	Backend    Backend       `yaml:"backend,omitempty" envconfig:"LENDIT_BACKEND"`
	BaseURL    string        `yaml:"baseURL,omitempty" envconfig:"LENDIT_BASE_URL"`
	ActingUser int64         `yaml:"actingUser,omitempty" envconfig:"LENDIT_USER"`
	Listen     string        `yaml:"listen,omitempty" envconfig:"LENDIT_LISTEN"`
	Seed       *bool         `yaml:"seed,omitempty" envconfig:"LENDIT_SEED"`
	Latency    bool          `yaml:"latency,omitempty" envconfig:"LENDIT_LATENCY"`
	Debounce   time.Duration `yaml:"debounce,omitempty" envconfig:"LENDIT_DEBOUNCE"`
	Timeout    time.Duration `yaml:"timeout,omitempty" envconfig:"LENDIT_TIMEOUT"`
	KuzuPath   string        `yaml:"kuzuPath,omitempty" envconfig:"LENDIT_KUZU_PATH"`
}

// Default returns the configuration used when nothing else is set.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Backend:  BackendRemote,
		BaseURL:  DefaultBaseURL,
		Listen:   DefaultListen,
		Debounce: DefaultDebounce,
		Timeout:  DefaultTimeout,
	}
}

// Load attempts to read lendit.yml or lendit.yaml from the given directory
// on top of Default. Returns the defaults (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	cfg := Default()
	for _, name := range []string{"lendit.yml", "lendit.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return cfg, nil
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LENDIT_* environment variables. Variables
// that are not set leave the loaded value alone; malformed values are errors.
func (c *ProjectConfig) ApplyEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SeedData reports whether in-process stores start with the sample data.
// Unset means yes.
func (c *ProjectConfig) SeedData() bool {
	return c.Seed == nil || *c.Seed
}

// Validate checks the combination of settings.
func (c *ProjectConfig) Validate() error {
	switch c.Backend {
	case BackendRemote:
		if c.BaseURL == "" {
			return fmt.Errorf("config: baseURL is required for the remote backend")
		}
	case BackendMemory, BackendKuzu:
	default:
		return fmt.Errorf("config: unknown backend %q (want remote, memory or kuzu)", c.Backend)
	}
	if c.Debounce < 0 || c.Timeout < 0 {
		return fmt.Errorf("config: debounce and timeout must not be negative")
	}
	return nil
}
