// Package config provides configuration management for the seeddump CLI.
//
// Configuration is layered with koanf: built-in defaults, then
// seeddump.yaml, then SEEDDUMP_ environment variables, then explicitly set
// command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool                   `koanf:"verbose"`
	Jobs         int                    `koanf:"jobs"`
	Environment  string                 `koanf:"environment"`
	Target       *TargetConfig          `koanf:"target"`
	Dump         DumpConfig             `koanf:"dump"`
	Models       map[string]ModelConfig `koanf:"models"`
	Environments map[string]EnvConfig   `koanf:"environments"`
}

// TargetConfig describes the database to dump from.
type TargetConfig struct {
	Type     string            `koanf:"type"`
	Database string            `koanf:"database"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
	// Params holds adapter-specific settings (DuckDB extensions, SQLite
	// pragmas) decoded by the adapter itself.
	Params map[string]any `koanf:"params"`
}

// EnvConfig holds environment-specific overrides, selected with --target.
type EnvConfig struct {
	Target *TargetConfig `koanf:"target"`
}

// DumpConfig holds the default dump options.
type DumpConfig struct {
	// Exclude replaces the default excluded attributes (id, created_at,
	// updated_at). An empty list excludes nothing.
	Exclude                []string          `koanf:"exclude"`
	Import                 bool              `koanf:"import"`
	ImportOptions          map[string]string `koanf:"import_options"`
	References             bool              `koanf:"references"`
	IncludeHasAssociations bool              `koanf:"include_has_associations"`
	BatchSize              int               `koanf:"batch_size"`
	File                   string            `koanf:"file"`
	Append                 bool              `koanf:"append"`
	OutDir                 string            `koanf:"out_dir"`
}

// ModelConfig overrides what is inferred for one table.
type ModelConfig struct {
	Name        string              `koanf:"name" yaml:"name,omitempty"`
	PrimaryKey  string              `koanf:"primary_key" yaml:"primary_key,omitempty"`
	Exclude     []string            `koanf:"exclude" yaml:"exclude,omitempty"`
	Polymorphic []PolymorphicConfig `koanf:"polymorphic" yaml:"polymorphic,omitempty"`
	HasOne      []string            `koanf:"has_one" yaml:"has_one,omitempty"`
}

// PolymorphicConfig declares a polymorphic belongs-to.
type PolymorphicConfig struct {
	Name        string `koanf:"name" yaml:"name"`
	ForeignKey  string `koanf:"foreign_key" yaml:"foreign_key,omitempty"`
	ForeignType string `koanf:"foreign_type" yaml:"foreign_type,omitempty"`
}

// Default configuration values.
const (
	DefaultJobs       = 4
	ConfigFileName    = "seeddump.yaml"
	ConfigFileNameAlt = "seeddump.yml"
	EnvPrefix         = "SEEDDUMP_"
)
