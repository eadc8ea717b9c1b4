// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package config holds the install-target storage configuration.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sharkcz/anaconda/pkg/constants"
)

// Endpoints are the remote storage configuration service endpoints. An empty
// endpoint disables the corresponding service.
type Endpoints struct {
	ISCSI string `yaml:"iscsi,omitempty"`
	FCOE  string `yaml:"fcoe,omitempty"`
	ZFCP  string `yaml:"zfcp,omitempty"`
}

// Config is the installer storage configuration.
type Config struct {
	// SysRoot is the mount point of the target OS installation.
	SysRoot string `yaml:"sysRoot,omitempty"`

	// SysfsRoot is the sysfs mount point.
	SysfsRoot string `yaml:"sysfsRoot,omitempty"`

	// Endpoints configures the remote storage configuration services.
	Endpoints Endpoints `yaml:"endpoints,omitempty"`
}

// FillDefaults fills unset fields with their defaults.
func (c *Config) FillDefaults() {
	if c.SysRoot == "" {
		c.SysRoot = constants.DefaultSysRoot
	}

	if c.SysfsRoot == "" {
		c.SysfsRoot = constants.DefaultSysfsRoot
	}
}

// LoadBytes decodes a Config from YAML, rejecting unknown fields.
func LoadBytes(data []byte) (*Config, error) {
	var cfg Config

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode storage config: %w", err)
	}

	cfg.FillDefaults()

	return &cfg, nil
}

// Load reads and decodes a Config from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage config: %w", err)
	}

	return LoadBytes(data)
}
