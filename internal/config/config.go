// Package config handles simulator configuration and update command parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamancini/devsim/internal/device"
	"github.com/adamancini/devsim/internal/types"
	"github.com/adamancini/devsim/internal/update"
)

// Defaults applied before a configuration file is decoded.
const (
	DefaultTenant           = "DEFAULT"
	DefaultAutostartName    = "simulated"
	DefaultAutostartAddress = "http://localhost:8080"
)

// Duration is a time.Duration written as "2s", "500ms" or "1m" in every format.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML parses a duration scalar.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SchedulerConfig sizes the session pool.
type SchedulerConfig struct {
	Workers int      `yaml:"workers" toml:"workers" json:"workers"`
	Delay   Duration `yaml:"delay" toml:"delay" json:"delay"`
}

// DownloadConfig tunes artifact downloads.
type DownloadConfig struct {
	Timeout Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
}

// Attribute is a device attribute stamped on every simulated device.
// Random is a comma-separated list of candidates used when Value is empty.
type Attribute struct {
	Key    string `yaml:"key" toml:"key" json:"key"`
	Value  string `yaml:"value,omitempty" toml:"value,omitempty" json:"value,omitempty"`
	Random string `yaml:"random,omitempty" toml:"random,omitempty" json:"random,omitempty"`
}

// Autostart describes a batch of devices created at startup.
type Autostart struct {
	Name         string         `yaml:"name" toml:"name" json:"name"`
	Amount       int            `yaml:"amount" toml:"amount" json:"amount"`
	Tenant       string         `yaml:"tenant" toml:"tenant" json:"tenant"`
	API          types.Protocol `yaml:"api" toml:"api" json:"api"`
	Endpoint     string         `yaml:"endpoint,omitempty" toml:"endpoint,omitempty" json:"endpoint,omitempty"`
	PollDelay    int            `yaml:"poll_delay" toml:"poll_delay" json:"poll_delay"` // seconds
	GatewayToken string         `yaml:"gateway_token,omitempty" toml:"gateway_token,omitempty" json:"gateway_token,omitempty"`
}

// Config is the parsed simulator configuration.
type Config struct {
	DefaultTenant                 string          `yaml:"default_tenant" toml:"default_tenant" json:"default_tenant"`
	DownloadAuthenticationEnabled bool            `yaml:"download_authentication_enabled" toml:"download_authentication_enabled" json:"download_authentication_enabled"`
	Scheduler                     SchedulerConfig `yaml:"scheduler" toml:"scheduler" json:"scheduler"`
	Download                      DownloadConfig  `yaml:"download" toml:"download" json:"download"`
	Attributes                    []Attribute     `yaml:"attributes,omitempty" toml:"attributes,omitempty" json:"attributes,omitempty"`
	Autostarts                    []Autostart     `yaml:"autostarts,omitempty" toml:"autostarts,omitempty" json:"autostarts,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		DefaultTenant:                 DefaultTenant,
		DownloadAuthenticationEnabled: true,
		Scheduler: SchedulerConfig{
			Workers: update.DefaultWorkers,
			Delay:   Duration(update.DefaultDelay),
		},
		Download: DownloadConfig{
			Timeout: Duration(update.DefaultDownloadTimeout),
		},
	}
}

// applyDefaults fills per-entry defaults that cannot be seeded before decoding.
func (c *Config) applyDefaults() {
	for i := range c.Autostarts {
		a := &c.Autostarts[i]
		if a.Name == "" {
			a.Name = DefaultAutostartName
		}
		if a.Tenant == "" {
			a.Tenant = c.DefaultTenant
		}
		a.API = a.API.Default()
		if a.PollDelay == 0 {
			a.PollDelay = device.DefaultPollDelaySeconds
		}
		if a.Endpoint == "" && a.API.RequiresEndpoint() {
			a.Endpoint = DefaultAutostartAddress
		}
	}
}

// DeviceAttributes converts the configured attributes for the device factory.
func (c *Config) DeviceAttributes() []device.Attribute {
	attrs := make([]device.Attribute, 0, len(c.Attributes))
	for _, a := range c.Attributes {
		attrs = append(attrs, device.Attribute{Key: a.Key, Value: a.Value, Random: a.Random})
	}
	return attrs
}

// DeviceAutostarts converts the configured autostarts for device.Populate.
func (c *Config) DeviceAutostarts() []device.Autostart {
	out := make([]device.Autostart, 0, len(c.Autostarts))
	for _, a := range c.Autostarts {
		out = append(out, device.Autostart{
			Name:         a.Name,
			Amount:       a.Amount,
			Tenant:       a.Tenant,
			API:          a.API,
			Endpoint:     a.Endpoint,
			PollDelay:    a.PollDelay,
			GatewayToken: a.GatewayToken,
		})
	}
	return out
}

// SchedulerOptions converts the configuration for update.NewScheduler.
func (c *Config) SchedulerOptions() update.Options {
	return update.Options{
		Workers:                       c.Scheduler.Workers,
		Delay:                         c.Scheduler.Delay.Std(),
		DownloadAuthenticationEnabled: c.DownloadAuthenticationEnabled,
	}
}

// configNames lists the file name variants searched in every directory.
var configNames = []string{
	"devsim.yaml",
	"devsim.yml",
	"devsim.toml",
	"devsim.json",
	".devsim",
	".devsim.yaml",
	".devsim.yml",
	".devsim.toml",
	".devsim.json",
}

// FindConfig searches for a configuration file in the standard locations.
// It returns an empty path and no error when none exists.
func FindConfig(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	if envPath := os.Getenv("DEVSIM_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	var searchPaths []string
	if home, err := os.UserHomeDir(); err == nil {
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig == "" {
			xdgConfig = filepath.Join(home, ".config")
		}
		searchPaths = append(searchPaths,
			filepath.Join(xdgConfig, "devsim"),
			filepath.Join(home, ".devsim"),
		)
	}
	if wd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, wd)
	}

	for _, dir := range searchPaths {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}

	return "", nil
}

// Load reads, parses and validates the configuration file at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(path, content)
}

// Parse decodes and validates configuration content. The format is taken
// from the extension of name, or sniffed from content.
func Parse(name string, content []byte) (*Config, error) {
	format := detectFormat(name, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", name)
	}

	cfg, err := parse(content, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Resolve locates and loads the configuration, falling back to Default when
// no file exists. The returned path is empty in that case.
func Resolve(explicitPath string) (*Config, string, error) {
	path, err := FindConfig(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
