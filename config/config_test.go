package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Graph.Path != "data/kg.ttl" {
		t.Errorf("expected default graph path data/kg.ttl, got %s", cfg.Graph.Path)
	}
	if cfg.Graph.Base != "https://w3id.org/changes/4/aldrovandi" {
		t.Errorf("unexpected default base IRI %s", cfg.Graph.Base)
	}
	if cfg.Hierarchy.Structure != "data/sharepoint_structure.json" {
		t.Errorf("unexpected default structure path %s", cfg.Hierarchy.Structure)
	}
	if cfg.Output.Dir != "data/output" {
		t.Errorf("unexpected default output dir %s", cfg.Output.Dir)
	}
	if cfg.NATS.URL != "" {
		t.Error("publishing must be disabled by default")
	}
	if cfg.NATS.Subject != "provenance.ingest.quads" {
		t.Errorf("unexpected default NATS subject %s", cfg.NATS.Subject)
	}
	if len(cfg.SharePoint.Sale) != 6 {
		t.Errorf("expected 6 default sale, got %d", len(cfg.SharePoint.Sale))
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing graph path",
			modify:  func(c *Config) { c.Graph.Path = "" },
			wantErr: true,
		},
		{
			name: "no hierarchy source",
			modify: func(c *Config) {
				c.Hierarchy.Root = ""
				c.Hierarchy.Structure = ""
			},
			wantErr: true,
		},
		{
			name: "filesystem root alone is enough",
			modify: func(c *Config) {
				c.Hierarchy.Root = "data/hierarchy"
				c.Hierarchy.Structure = ""
			},
			wantErr: false,
		},
		{
			name:    "missing output dir",
			modify:  func(c *Config) { c.Output.Dir = "" },
			wantErr: true,
		},
		{
			name: "nats url without subject",
			modify: func(c *Config) {
				c.NATS.URL = "nats://localhost:4222"
				c.NATS.Subject = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{}
	overlay.Graph.Path = "other/kg.ttl"
	overlay.Provenance.Agent = "https://orcid.org/0000-0002-1825-0097"
	overlay.Provenance.Describe = true
	overlay.SharePoint.Sale = []string{"Sala9"}

	base.Merge(overlay)

	if base.Graph.Path != "other/kg.ttl" {
		t.Errorf("graph path not merged: %s", base.Graph.Path)
	}
	if base.Graph.Base != "https://w3id.org/changes/4/aldrovandi" {
		t.Errorf("zero-value overlay must not clear defaults: %s", base.Graph.Base)
	}
	if base.Provenance.Agent != "https://orcid.org/0000-0002-1825-0097" {
		t.Errorf("agent not merged: %s", base.Provenance.Agent)
	}
	if !base.Provenance.Describe {
		t.Error("describe flag not merged")
	}
	if len(base.SharePoint.Sale) != 1 || base.SharePoint.Sale[0] != "Sala9" {
		t.Errorf("sale list not merged: %v", base.SharePoint.Sale)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provgen.yaml")
	content := `
graph:
  path: custom/kg.ttl
provenance:
  agent: https://orcid.org/0000-0002-1825-0097
  assert_entity_type: true
nats:
  url: nats://localhost:4222
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Graph.Path != "custom/kg.ttl" {
		t.Errorf("graph path = %s", cfg.Graph.Path)
	}
	if !cfg.Provenance.AssertEntityType {
		t.Error("assert_entity_type not loaded")
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("nats url = %s", cfg.NATS.URL)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Output.Dir != "data/output" {
		t.Errorf("output dir = %s", cfg.Output.Dir)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFromFile(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("graph: [not: a: mapping"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestSaveAndReload(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provenance.Agent = "https://orcid.org/0000-0002-1825-0097"

	path := filepath.Join(t.TempDir(), "nested", "provgen.yaml")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	back, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if back.Provenance.Agent != cfg.Provenance.Agent {
		t.Errorf("agent lost on reload: %s", back.Provenance.Agent)
	}
}
