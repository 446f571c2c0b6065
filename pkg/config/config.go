// Package config loads and validates the outpost.yaml deployment
// configuration. Every field is optional; omitted fields fall back to the
// stock sandbox topology.
package config

import (
	"bytes"
	"fmt"
	"io"

	"github.com/outpostlabs/outpost/pkg/topology"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked for in the working directory when
// no --config flag is given.
const DefaultFileName = "outpost.yaml"

type Config struct {
	Project     string `yaml:"project,omitempty"`
	Environment string `yaml:"environment,omitempty"`
	Region      string `yaml:"region,omitempty"`
	// KeyDir is the directory holding the SSH key pair. Relative paths are
	// resolved against the working directory.
	KeyDir string `yaml:"key_dir,omitempty"`

	Network  NetworkConfig     `yaml:"network,omitempty"`
	Machine  MachineConfig     `yaml:"machine,omitempty"`
	Firewall FirewallConfig    `yaml:"firewall,omitempty"`
	Tags     map[string]string `yaml:"tags,omitempty"`
}

type NetworkConfig struct {
	VpcCidr          string `yaml:"vpc_cidr,omitempty"`
	SubnetCidr       string `yaml:"subnet_cidr,omitempty"`
	AvailabilityZone string `yaml:"availability_zone,omitempty"`
}

type MachineConfig struct {
	InstanceType string `yaml:"instance_type,omitempty"`
	Ami          string `yaml:"ami,omitempty"`
	SSHUser      string `yaml:"ssh_user,omitempty"`
}

type FirewallConfig struct {
	// SSHCidrs narrows where SSH connections may originate from.
	SSHCidrs []string `yaml:"ssh_cidrs,omitempty"`
}

// Default returns the configuration written by `outpost init`.
func Default() *Config {
	return &Config{
		Project:     "outpost",
		Environment: "dev",
		Region:      "us-east-1",
		KeyDir:      ".",
	}
}

// Load reads the config file at path, applies defaults, and validates the
// result. Unknown fields are errors so typos don't silently deploy the stock
// topology.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Write marshals cfg to path. Existing files are not overwritten.
func Write(fs afero.Fs, path string, cfg *Config) error {
	if exists, err := afero.Exists(fs, path); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0644)
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Project == "" {
		c.Project = def.Project
	}
	if c.Environment == "" {
		c.Environment = def.Environment
	}
	if c.Region == "" {
		c.Region = def.Region
	}
	if c.KeyDir == "" {
		c.KeyDir = def.KeyDir
	}
}

func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("project must not be empty")
	}
	if c.Environment == "" {
		return fmt.Errorf("environment must not be empty")
	}
	if c.Region == "" {
		return fmt.Errorf("region must not be empty")
	}
	return c.Topology().Validate()
}

// Topology maps the configuration onto the stock topology, overriding only
// the fields the file sets.
func (c *Config) Topology() topology.Spec {
	spec := topology.Default()
	spec.KeyDir = c.KeyDir
	if c.Network.VpcCidr != "" {
		spec.Network.VpcCidr = c.Network.VpcCidr
	}
	if c.Network.SubnetCidr != "" {
		spec.Network.SubnetCidr = c.Network.SubnetCidr
	}
	if c.Network.AvailabilityZone != "" {
		spec.Network.AvailabilityZone = c.Network.AvailabilityZone
	}
	if c.Machine.InstanceType != "" {
		spec.Machine.InstanceType = c.Machine.InstanceType
	}
	if c.Machine.Ami != "" {
		spec.Machine.Ami = c.Machine.Ami
	}
	if c.Machine.SSHUser != "" {
		spec.Machine.SSHUser = c.Machine.SSHUser
	}
	if len(c.Firewall.SSHCidrs) > 0 {
		for i := range spec.Firewall.Ingress {
			spec.Firewall.Ingress[i].Cidrs = c.Firewall.SSHCidrs
		}
	}
	if len(c.Tags) > 0 {
		spec.Tags = make(map[string]string, len(c.Tags))
		for k, v := range c.Tags {
			spec.Tags[k] = v
		}
	}
	return spec
}
