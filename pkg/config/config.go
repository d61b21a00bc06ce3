package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

const (
	EnvBaseURL = "WORKLOCAL_BASE_URL"
	EnvAPIKey  = "WORKLOCAL_API_KEY"
)

// StaticConfig is the configuration for the server.
// It allows to configure server specific settings and tools to be enabled or disabled.
type StaticConfig struct {
	LogLevel int `toml:"log_level,omitempty"`
	// Port to listen on when serving Streamable HTTP and SSE. Empty means stdio.
	Port                   string `toml:"port,omitempty"`
	SSEBaseURL             string `toml:"sse_base_url,omitempty"`
	HealthEndpoint         string `toml:"health_endpoint,omitempty"`
	StreamableHttpEndpoint string `toml:"streamable_http_endpoint,omitempty"`
	SSEEndpoint            string `toml:"sse_endpoint,omitempty"`
	SSEMessageEndpoint     string `toml:"sse_message_endpoint,omitempty"`
	// When true, expose only tools annotated with readOnlyHint=true
	ReadOnly bool `toml:"read_only,omitempty"`
	// When true, disable tools annotated with destructiveHint=true
	DisableDestructive bool     `toml:"disable_destructive,omitempty"`
	Toolsets           []string `toml:"toolsets,omitempty"`
	EnabledTools       []string `toml:"enabled_tools,omitempty"`
	DisabledTools      []string `toml:"disabled_tools,omitempty"`
	ServerInstructions string   `toml:"server_instructions,omitempty"`

	CORS      *CORSConfig     `toml:"cors,omitempty"`
	WorkLocal WorkLocalConfig `toml:"worklocal"`
}

type CORSConfig struct {
	Origins []string `toml:"origins,omitempty"`
	MaxAge  int      `toml:"max_age,omitempty"`
}

// Read loads the configuration file and the drop-in directory from the OS filesystem.
func Read(configPath, dropInDir string) (*StaticConfig, error) {
	return ReadFs(afero.NewOsFs(), configPath, dropInDir)
}

// ReadFs loads the default configuration, overlays the main configuration file and then
// every *.toml file in dropInDir in lexical order. Environment overrides are applied last.
func ReadFs(fs afero.Fs, configPath, dropInDir string) (*StaticConfig, error) {
	cfg := Default()
	if configPath != "" {
		if err := decodeFile(fs, configPath, cfg); err != nil {
			return nil, err
		}
	}
	if dropInDir != "" {
		dropIns, err := dropInFiles(fs, dropInDir)
		if err != nil {
			return nil, err
		}
		for _, dropIn := range dropIns {
			if err = decodeFile(fs, dropIn, cfg); err != nil {
				return nil, err
			}
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadToml decodes the provided TOML document on top of the default configuration.
func ReadToml(configData []byte) (*StaticConfig, error) {
	cfg := Default()
	if err := toml.Unmarshal(configData, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(fs afero.Fs, path string, cfg *StaticConfig) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if _, err = toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func dropInFiles(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory %s: %w", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ApplyEnv overrides the WorkLocal connection settings with the values of
// WORKLOCAL_BASE_URL and WORKLOCAL_API_KEY when they are set.
func (c *StaticConfig) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.WorkLocal.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.WorkLocal.APIKey = v
	}
}

func (c *StaticConfig) Validate() error {
	if err := c.WorkLocal.Validate(); err != nil {
		return fmt.Errorf("invalid worklocal configuration: %w", err)
	}
	return nil
}
