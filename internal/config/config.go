package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"agentic-surfer/internal/integrations/queryservice"
)

const (
	DefaultPath     = "surfer.yaml"
	DefaultEndpoint = queryservice.DefaultEndpoint
	DefaultStubAddr = ":8007"
)

// Config holds the chat client's settings. Precedence, lowest first:
// defaults, YAML file, environment, command-line flags.
type Config struct {
	// Query service
	Endpoint          string `yaml:"endpoint"`
	EndpointParameter string `yaml:"endpoint_parameter"` // SSM parameter name; overrides Endpoint when set
	RequestTimeout    string `yaml:"request_timeout"`    // empty means wait indefinitely

	Greeting string `yaml:"greeting"`

	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
	Stub    StubConfig    `yaml:"stub"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	Markdown      bool   `yaml:"markdown"`
	MarkdownStyle string `yaml:"markdown_style"` // glamour standard style: dark, light, notty, ascii
	Mouse         bool   `yaml:"mouse"`
}

// LoggingConfig configures logging. With no file set, the interactive client
// does not log at all, since it owns the terminal.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// StubConfig configures the local query service stand-in.
type StubConfig struct {
	Addr  string `yaml:"addr"`
	Shape string `yaml:"shape"`
}

// EndpointLookup resolves a query service URL from a named parameter.
type EndpointLookup interface {
	LookupEndpoint(ctx context.Context, name string) (string, error)
}

func DefaultConfig() *Config {
	return &Config{
		Endpoint: DefaultEndpoint,
		UI: UIConfig{
			MarkdownStyle: "dark",
			Mouse:         true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Stub: StubConfig{
			Addr:  DefaultStubAddr,
			Shape: "answer",
		},
	}
}

// LoadEnvFile loads variables from a .env file. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from a YAML file and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := strings.TrimSpace(os.Getenv("SURFER_ENDPOINT")); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("SURFER_ENDPOINT_PARAMETER")); v != "" {
		c.EndpointParameter = v
	}
	if v := strings.TrimSpace(os.Getenv("SURFER_REQUEST_TIMEOUT")); v != "" {
		c.RequestTimeout = v
	}
	if v := strings.TrimSpace(os.Getenv("SURFER_LOG_FILE")); v != "" {
		c.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv("SURFER_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("SURFER_MARKDOWN")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: SURFER_MARKDOWN: %w", err)
		}
		c.UI.Markdown = b
	}
	return nil
}

// Validate checks the settings the client cannot run without.
func (c *Config) Validate() error {
	if c.EndpointParameter == "" {
		if err := validateEndpoint(c.Endpoint); err != nil {
			return err
		}
	}
	if _, err := c.GetRequestTimeout(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logging.Level)
	}
	return nil
}

// GetRequestTimeout returns the per-exchange timeout; zero means none.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.RequestTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("config: request_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: request_timeout must not be negative")
	}
	return d, nil
}

// ResolveEndpoint replaces Endpoint with the value of EndpointParameter when
// one is configured.
func (c *Config) ResolveEndpoint(ctx context.Context, lookup EndpointLookup) error {
	name := strings.TrimSpace(c.EndpointParameter)
	if name == "" {
		return nil
	}
	if lookup == nil {
		return errors.New("config: endpoint lookup must not be nil")
	}
	endpoint, err := lookup.LookupEndpoint(ctx, name)
	if err != nil {
		return fmt.Errorf("config: resolve endpoint from %q: %w", name, err)
	}
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}
	c.Endpoint = endpoint
	return nil
}

func validateEndpoint(endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return errors.New("config: endpoint must not be empty")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("config: parse endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: endpoint %q must be an absolute http or https URL", endpoint)
	}
	return nil
}
