// Package config provides configuration loading and management for provgen.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete provgen configuration.
type Config struct {
	Graph      GraphConfig      `yaml:"graph"`
	Hierarchy  HierarchyConfig  `yaml:"hierarchy"`
	Output     OutputConfig     `yaml:"output"`
	Provenance ProvenanceConfig `yaml:"provenance"`
	NATS       NATSConfig       `yaml:"nats"`
	SharePoint SharePointConfig `yaml:"sharepoint"`
}

// GraphConfig locates the knowledge graph input.
type GraphConfig struct {
	// Path is the Turtle file describing the digitised objects
	Path string `yaml:"path"`
	// Base is the base IRI under which object subjects are minted
	// (<base>/<NR>/...)
	Base string `yaml:"base"`
}

// HierarchyConfig selects the folder hierarchy source.
type HierarchyConfig struct {
	// Root is a directory laid out as <root>/Sala*/<folder>/<stage>/
	Root string `yaml:"root"`
	// Structure is a structure JSON document; takes precedence over Root
	Structure string `yaml:"structure"`
}

// OutputConfig controls where generated files go.
type OutputConfig struct {
	// Dir is the root directory for meta.ttl / prov.nq output
	Dir string `yaml:"dir"`
}

// ProvenanceConfig controls snapshot construction.
type ProvenanceConfig struct {
	// Agent is the responsible agent IRI (e.g. an ORCID URL); required for
	// every snapshot
	Agent string `yaml:"agent"`
	// PrimarySource, when set, is recorded as prov:hadPrimarySource
	PrimarySource string `yaml:"primary_source"`
	// AssertEntityType adds rdf:type prov:Entity to each snapshot
	AssertEntityType bool `yaml:"assert_entity_type"`
	// Describe adds a dcterms:description to each snapshot
	Describe bool `yaml:"describe"`
}

// NATSConfig configures optional quad publication.
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
	// Subject is the publish subject
	Subject string `yaml:"subject"`
}

// SharePointConfig configures the structure extraction command. Session
// cookies are taken from the environment, never from config files.
type SharePointConfig struct {
	// SiteURL is the SharePoint site URL
	SiteURL string `yaml:"site_url"`
	// Sale lists the sala folders to walk
	Sale []string `yaml:"sale"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			Path: "data/kg.ttl",
			Base: "https://w3id.org/changes/4/aldrovandi",
		},
		Hierarchy: HierarchyConfig{
			Structure: "data/sharepoint_structure.json",
		},
		Output: OutputConfig{
			Dir: "data/output",
		},
		NATS: NATSConfig{
			Subject: "provenance.ingest.quads",
		},
		SharePoint: SharePointConfig{
			Sale: []string{"Sala1", "Sala2", "Sala3", "Sala4", "Sala5", "Sala6"},
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Graph.Path == "" {
		return fmt.Errorf("graph.path is required")
	}
	if c.Hierarchy.Root == "" && c.Hierarchy.Structure == "" {
		return fmt.Errorf("one of hierarchy.root or hierarchy.structure is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	return nil
}

// Merge overlays non-zero fields from other onto c.
func (c *Config) Merge(other *Config) {
	if other.Graph.Path != "" {
		c.Graph.Path = other.Graph.Path
	}
	if other.Graph.Base != "" {
		c.Graph.Base = other.Graph.Base
	}
	if other.Hierarchy.Root != "" {
		c.Hierarchy.Root = other.Hierarchy.Root
	}
	if other.Hierarchy.Structure != "" {
		c.Hierarchy.Structure = other.Hierarchy.Structure
	}
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Provenance.Agent != "" {
		c.Provenance.Agent = other.Provenance.Agent
	}
	if other.Provenance.PrimarySource != "" {
		c.Provenance.PrimarySource = other.Provenance.PrimarySource
	}
	if other.Provenance.AssertEntityType {
		c.Provenance.AssertEntityType = true
	}
	if other.Provenance.Describe {
		c.Provenance.Describe = true
	}
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
	if other.SharePoint.SiteURL != "" {
		c.SharePoint.SiteURL = other.SharePoint.SiteURL
	}
	if len(other.SharePoint.Sale) > 0 {
		c.SharePoint.Sale = other.SharePoint.Sale
	}
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
