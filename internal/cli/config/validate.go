package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/leapstack-labs/seeddump/pkg/source"
)

// DefaultSchemaForType returns the default schema for a database type,
// taken from the registered adapter's dialect.
func DefaultSchemaForType(dbType string) string {
	if factory, ok := adapter.Get(dbType); ok {
		if d := factory(nil).Dialect(); d != nil && d.DefaultSchema != "" {
			return d.DefaultSchema
		}
	}
	return "main"
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil || t.Type == "" {
		return
	}
	if t.Schema == "" && t.Type != "mysql" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	switch t.Type {
	case "postgres":
		if t.Port == 0 {
			t.Port = 5432
		}
	case "mysql":
		if t.Port == 0 {
			t.Port = 3306
		}
	}
}

// Validate checks if the target configuration is valid.
// The adapter registry is the source of truth for the available types.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return errors.New("target type is required\nHint: Set target.type in seeddump.yaml or pass --type")
	}
	if !adapter.IsRegistered(t.Type) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Target == nil {
		return errors.New("target is required")
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.Dump.BatchSize < 0 {
		return fmt.Errorf("dump.batch_size must not be negative, got %d", c.Dump.BatchSize)
	}
	if c.Dump.File != "" && c.Dump.OutDir != "" {
		return errors.New("dump.file and dump.out_dir are mutually exclusive")
	}
	for table, m := range c.Models {
		for _, p := range m.Polymorphic {
			if p.Name == "" {
				return fmt.Errorf("models.%s.polymorphic: name is required", table)
			}
		}
	}
	return nil
}

// AdapterConfig converts the target into the adapter connection config.
func (c *Config) AdapterConfig() core.AdapterConfig {
	t := c.Target
	return core.AdapterConfig{
		Type:     t.Type,
		Path:     t.Database,
		Database: t.Database,
		Schema:   t.Schema,
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// SourceModels converts the per-table overrides for the record source.
func (c *Config) SourceModels() map[string]source.ModelConfig {
	out := make(map[string]source.ModelConfig, len(c.Models))
	for table, m := range c.Models {
		sm := source.ModelConfig{
			Name:       m.Name,
			PrimaryKey: m.PrimaryKey,
			HasOne:     m.HasOne,
		}
		for _, p := range m.Polymorphic {
			sm.Polymorphic = append(sm.Polymorphic, source.Polymorphic{
				Name:        p.Name,
				ForeignKey:  p.ForeignKey,
				ForeignType: p.ForeignType,
			})
		}
		out[table] = sm
	}
	return out
}

// DumpOptions returns the dump options for table: the dump defaults, with
// the table's own exclude list taking precedence. Import options from the
// config file are ordered by key.
func (c *Config) DumpOptions(table string) core.Options {
	d := c.Dump
	opts := core.Options{
		Exclude:                d.Exclude,
		Import:                 d.Import,
		References:             d.References,
		IncludeHasAssociations: d.IncludeHasAssociations,
		File:                   d.File,
		Append:                 d.Append,
		BatchSize:              d.BatchSize,
	}
	if m, ok := c.Models[table]; ok && m.Exclude != nil {
		opts.Exclude = m.Exclude
	}
	for _, key := range slices.Sorted(maps.Keys(d.ImportOptions)) {
		opts.ImportOptions = append(opts.ImportOptions, core.ImportOption{Key: key, Value: d.ImportOptions[key]})
	}
	return opts
}
