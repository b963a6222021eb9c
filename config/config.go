// Package config handles the configuration files of the stegman commands.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the stegman commands. Command-line
// flags override the values read from a file.
type Config struct {
	// Listen is the address stegman-server listens on.
	Listen string `toml:"listen" json:"listen" yaml:"listen"`

	// Hostname, when set, makes stegman-server serve TLS with a
	// self-signed certificate for this name.
	Hostname string `toml:"hostname" json:"hostname" yaml:"hostname"`

	// PrivkeyFile is the file holding the private key that sealed
	// messages are opened with.
	PrivkeyFile string `toml:"privkey_file" json:"privkey_file" yaml:"privkey_file"`

	// PubkeyFile is the file holding the recipient public key that
	// messages are sealed to.
	PubkeyFile string `toml:"pubkey_file" json:"pubkey_file" yaml:"pubkey_file"`

	// Checksum appends a CRC-32 to every message before hiding it.
	Checksum bool `toml:"checksum" json:"checksum" yaml:"checksum"`

	// Armor wraps stego text in an AMP HTML document.
	Armor bool `toml:"armor" json:"armor" yaml:"armor"`

	// MaxCoverLength is the largest cover text, in bytes, the server
	// accepts in one request.
	MaxCoverLength int `toml:"max_cover_length" json:"max_cover_length" yaml:"max_cover_length"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		MaxCoverLength: 64 * 1024,
	}
}

// Load reads the configuration file at path on top of the defaults and
// validates it. The extension selects the format: .toml, .yaml or .yml, or
// .json.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxCoverLength <= 0 {
		return fmt.Errorf("max_cover_length must be positive, got %d", c.MaxCoverLength)
	}
	if c.PrivkeyFile != "" && c.PrivkeyFile == c.PubkeyFile {
		return errors.New("privkey_file and pubkey_file must be different")
	}
	return nil
}
