package client

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amp-labs/dataapi-go/pointer"
	"github.com/amp-labs/dataapi-go/retry"
	"github.com/amp-labs/dataapi-go/timeouts"
)

// Duration is a YAML-friendly duration. It accepts Go duration strings
// ("2s", "150ms") or bare integers, which are read as milliseconds per the
// Data API convention.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var millis int64
	if err := node.Decode(&millis); err == nil {
		*d = Duration(time.Duration(millis) * time.Millisecond)

		return nil
	}

	var text string
	if err := node.Decode(&text); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}

	*d = Duration(parsed)

	return nil
}

// TimeoutConfig is the YAML shape of a timeout override. Absent fields
// inherit; explicit zeros disable the budget.
type TimeoutConfig struct {
	Provided        *Duration `yaml:"provided"`
	Request         *Duration `yaml:"request"`
	GeneralMethod   *Duration `yaml:"generalMethod"`
	CollectionAdmin *Duration `yaml:"collectionAdmin"`
	TableAdmin      *Duration `yaml:"tableAdmin"`
	DatabaseAdmin   *Duration `yaml:"databaseAdmin"`
	KeyspaceAdmin   *Duration `yaml:"keyspaceAdmin"`
}

// Override converts the config to a timeout override, or nil when the config
// itself is nil.
func (t *TimeoutConfig) Override() *timeouts.Override {
	if t == nil {
		return nil
	}

	return &timeouts.Override{
		Provided:        durationPtr(t.Provided),
		Request:         durationPtr(t.Request),
		GeneralMethod:   durationPtr(t.GeneralMethod),
		CollectionAdmin: durationPtr(t.CollectionAdmin),
		TableAdmin:      durationPtr(t.TableAdmin),
		DatabaseAdmin:   durationPtr(t.DatabaseAdmin),
		KeyspaceAdmin:   durationPtr(t.KeyspaceAdmin),
	}
}

func durationPtr(d *Duration) *time.Duration {
	if d == nil {
		return nil
	}

	return pointer.To(time.Duration(*d))
}

// RetryConfig is the YAML shape of the data-plane retry policy. Zero retries
// means never retry.
type RetryConfig struct {
	Retries      int      `yaml:"retries"`
	Delay        Duration `yaml:"delay"`
	ResetTimeout bool     `yaml:"resetTimeout"`
}

// Config is the YAML-loadable client configuration.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
	Keyspace string `yaml:"keyspace"`

	Timeouts *TimeoutConfig `yaml:"timeouts"`

	Retry RetryConfig `yaml:"retry"`
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("config %s: endpoint is required", path)
	}

	return cfg, nil
}

// NewClient builds a Client from the configuration. Additional options apply
// after the configured ones and win on conflict.
func (cfg *Config) NewClient(opts ...Option) *Client {
	configured := []Option{
		WithTimeouts(cfg.Timeouts.Override()),
	}

	if cfg.Retry.Retries > 0 {
		configured = append(configured, WithRetryPolicy(&retry.Fixed{
			Retries:      cfg.Retry.Retries,
			Wait:         time.Duration(cfg.Retry.Delay),
			ResetTimeout: cfg.Retry.ResetTimeout,
		}))
	}

	return New(cfg.Endpoint, StaticToken(cfg.Token), append(configured, opts...)...)
}
