package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/seeddump/pkg/adapter"
	"github.com/leapstack-labs/seeddump/pkg/core"
	"github.com/leapstack-labs/seeddump/pkg/source"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/seeddump/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/seeddump/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/seeddump/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/seeddump/pkg/adapters/sqlite"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestTargetConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		target    TargetConfig
		errSubstr string
	}{
		{name: "empty type", target: TargetConfig{}, errSubstr: "target type is required"},
		{name: "duckdb", target: TargetConfig{Type: "duckdb"}},
		{name: "postgres", target: TargetConfig{Type: "postgres"}},
		{name: "sqlite", target: TargetConfig{Type: "sqlite"}},
		{name: "mysql", target: TargetConfig{Type: "mysql"}},
		{name: "unknown type", target: TargetConfig{Type: "oracle"}, errSubstr: "unknown adapter type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestTargetConfig_Validate_ErrorContainsAvailable(t *testing.T) {
	err := (&TargetConfig{Type: "invalid_db"}).Validate()

	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Available, "sqlite")
	assert.Contains(t, err.Error(), "seeddump.yaml")
}

func TestDefaultSchemaForType(t *testing.T) {
	tests := []struct {
		dbType   string
		expected string
	}{
		{"duckdb", "main"},
		{"postgres", "public"},
		{"sqlite", "main"},
		{"unknown", "main"},
		{"", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultSchemaForType(tt.dbType))
		})
	}
}

func TestApplyTargetDefaults(t *testing.T) {
	tests := []struct {
		name   string
		target TargetConfig
		want   TargetConfig
	}{
		{
			name:   "postgres schema and port",
			target: TargetConfig{Type: "postgres"},
			want:   TargetConfig{Type: "postgres", Schema: "public", Port: 5432},
		},
		{
			name:   "mysql port only",
			target: TargetConfig{Type: "mysql"},
			want:   TargetConfig{Type: "mysql", Port: 3306},
		},
		{
			name:   "existing values kept",
			target: TargetConfig{Type: "postgres", Schema: "app", Port: 6543},
			want:   TargetConfig{Type: "postgres", Schema: "app", Port: 6543},
		},
		{
			name:   "no type",
			target: TargetConfig{},
			want:   TargetConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.target
			ApplyTargetDefaults(&got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"multiple variables", "${TEST_VAR_ONE}/${TEST_VAR_TWO}", "value_one/value_two"},
		{"unset variable stays as-is", "${UNSET_VARIABLE}", "${UNSET_VARIABLE}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
		{"mixed set and unset", "${TEST_VAR_ONE}:${UNSET_VAR}", "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestMergeTargetConfig(t *testing.T) {
	t.Run("nil base returns override", func(t *testing.T) {
		override := &TargetConfig{Type: "duckdb", Database: "test.db"}
		assert.Equal(t, override, MergeTargetConfig(nil, override))
	})

	t.Run("nil override returns base", func(t *testing.T) {
		base := &TargetConfig{Type: "duckdb", Database: "test.db"}
		assert.Equal(t, base, MergeTargetConfig(base, nil))
	})

	t.Run("override replaces base fields", func(t *testing.T) {
		base := &TargetConfig{Type: "postgres", Database: "app", Host: "localhost", Port: 5432}
		override := &TargetConfig{Database: "app_staging", Port: 6432}

		got := MergeTargetConfig(base, override)
		assert.Equal(t, "postgres", got.Type)
		assert.Equal(t, "app_staging", got.Database)
		assert.Equal(t, "localhost", got.Host)
		assert.Equal(t, 6432, got.Port)
		assert.Equal(t, "app", base.Database, "base must not be modified")
	})

	t.Run("options and params are merged", func(t *testing.T) {
		base := &TargetConfig{
			Options: map[string]string{"sslmode": "disable", "connect_timeout": "5"},
			Params:  map[string]any{"threads": 2},
		}
		override := &TargetConfig{
			Options: map[string]string{"sslmode": "require"},
			Params:  map[string]any{"memory_limit": "1GB"},
		}

		got := MergeTargetConfig(base, override)
		assert.Equal(t, map[string]string{"sslmode": "require", "connect_timeout": "5"}, got.Options)
		assert.Equal(t, map[string]any{"threads": 2, "memory_limit": "1GB"}, got.Params)
		assert.Equal(t, "disable", base.Options["sslmode"])
	})
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
target:
  type: SQLite
  database: blog.db
jobs: 2
dump:
  references: true
  batch_size: 500
  import_options:
    validate: "false"
    batch_size: "100"
models:
  comments:
    polymorphic:
      - name: commentable
  users:
    name: Account
    primary_key: uid
    has_one: [profiles]
    exclude: [password_digest]
`)

	loaded, err := LoadConfig(path, "", nil)
	require.NoError(t, err)

	assert.Equal(t, path, loaded.File)
	assert.Equal(t, "sqlite", loaded.Target.Type)
	assert.Equal(t, "blog.db", loaded.Target.Database)
	assert.Equal(t, "main", loaded.Target.Schema)
	assert.Equal(t, 2, loaded.Jobs)
	assert.True(t, loaded.Dump.References)
	assert.Equal(t, 500, loaded.Dump.BatchSize)
	assert.Nil(t, loaded.Dump.Exclude)

	assert.Equal(t, ModelConfig{
		Name:       "Account",
		PrimaryKey: "uid",
		HasOne:     []string{"profiles"},
		Exclude:    []string{"password_digest"},
	}, loaded.Models["users"])
	assert.Equal(t, []PolymorphicConfig{{Name: "commentable"}}, loaded.Models["comments"].Polymorphic)
}

func TestLoadConfig_Defaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("type", "", "")
	require.NoError(t, flags.Set("type", "duckdb"))

	loaded, err := LoadConfig(writeConfig(t, "verbose: false\n"), "", flags)
	require.NoError(t, err)

	assert.Equal(t, DefaultJobs, loaded.Jobs)
	assert.Equal(t, "main", loaded.Target.Schema)
	assert.Equal(t, 0, loaded.Dump.BatchSize)
	assert.False(t, loaded.Verbose)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, `
target:
  type: sqlite
  database: from_file.db
jobs: 1
`)

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("SEEDDUMP_TARGET__DATABASE", "from_env.db")
		t.Setenv("SEEDDUMP_JOBS", "3")

		loaded, err := LoadConfig(path, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "from_env.db", loaded.Target.Database)
		assert.Equal(t, 3, loaded.Jobs)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("SEEDDUMP_TARGET__DATABASE", "from_env.db")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("database", "", "")
		flags.Int("batch-size", 0, "")
		flags.StringSlice("exclude", nil, "")
		require.NoError(t, flags.Set("database", "from_flag.db"))
		require.NoError(t, flags.Set("batch-size", "25"))
		require.NoError(t, flags.Set("exclude", "id,token"))

		loaded, err := LoadConfig(path, "", flags)
		require.NoError(t, err)
		assert.Equal(t, "from_flag.db", loaded.Target.Database)
		assert.Equal(t, 25, loaded.Dump.BatchSize)
		assert.Equal(t, []string{"id", "token"}, loaded.Dump.Exclude)
	})

	t.Run("unset flag falls back to env", func(t *testing.T) {
		t.Setenv("SEEDDUMP_TARGET__DATABASE", "from_env.db")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("database", "", "")

		loaded, err := LoadConfig(path, "", flags)
		require.NoError(t, err)
		assert.Equal(t, "from_env.db", loaded.Target.Database)
	})

	t.Run("command-local flags are ignored", func(t *testing.T) {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Bool("all", false, "")
		require.NoError(t, flags.Set("all", "true"))

		loaded, err := LoadConfig(path, "", flags)
		require.NoError(t, err)
		assert.Equal(t, "from_file.db", loaded.Target.Database)
	})
}

func TestLoadConfig_Environments(t *testing.T) {
	path := writeConfig(t, `
environment: dev
target:
  type: postgres
  host: localhost
  database: app
  user: seed
environments:
  dev:
    target:
      database: app_dev
  prod:
    target:
      host: db.internal
      database: app_prod
      password: ${TEST_PROD_PASSWORD}
`)
	t.Setenv("TEST_PROD_PASSWORD", "s3cret")

	tests := []struct {
		name         string
		override     string
		wantHost     string
		wantDatabase string
		wantPassword string
	}{
		{"default environment", "", "localhost", "app_dev", ""},
		{"override to prod", "prod", "db.internal", "app_prod", "s3cret"},
		{"unknown environment keeps base", "nonexistent", "localhost", "app", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loaded, err := LoadConfig(path, tt.override, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, loaded.Target.Host)
			assert.Equal(t, tt.wantDatabase, loaded.Target.Database)
			assert.Equal(t, tt.wantPassword, loaded.Target.Password)
			assert.Equal(t, "seed", loaded.Target.User)
			assert.Equal(t, 5432, loaded.Target.Port)
		})
	}

	t.Run("flags win over environment target", func(t *testing.T) {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("database", "", "")
		flags.Int("port", 0, "")
		require.NoError(t, flags.Set("database", "scratch"))
		require.NoError(t, flags.Set("port", "6432"))

		loaded, err := LoadConfig(path, "prod", flags)
		require.NoError(t, err)
		assert.Equal(t, "scratch", loaded.Target.Database)
		assert.Equal(t, 6432, loaded.Target.Port)
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"missing type", "target:\n  database: x.db\n", "target type is required"},
		{"unknown type", "target:\n  type: oracle\n", "unknown adapter type"},
		{"zero jobs", "target:\n  type: sqlite\njobs: 0\n", "jobs must be at least 1"},
		{"negative batch size", "target:\n  type: sqlite\ndump:\n  batch_size: -1\n", "batch_size must not be negative"},
		{"file and out_dir", "target:\n  type: sqlite\ndump:\n  file: a.rb\n  out_dir: seeds\n", "mutually exclusive"},
		{"nameless polymorphic", "target:\n  type: sqlite\nmodels:\n  comments:\n    polymorphic:\n      - foreign_key: x_id\n", "name is required"},
		{"malformed yaml", "target: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content), "", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))

	assert.Empty(t, findConfigFile("", nested))

	path := filepath.Join(root, ConfigFileNameAlt)
	require.NoError(t, os.WriteFile(path, []byte("target:\n  type: sqlite\n"), 0600))
	assert.Equal(t, path, findConfigFile("", nested))

	assert.Equal(t, "explicit.yaml", findConfigFile("explicit.yaml", nested))
}

func TestConfig_DumpOptions(t *testing.T) {
	cfg := &Config{
		Dump: DumpConfig{
			Import:        true,
			ImportOptions: map[string]string{"validate": "false", "on_duplicate_key_ignore": "true"},
			References:    true,
			BatchSize:     50,
		},
		Models: map[string]ModelConfig{
			"users": {Exclude: []string{}},
			"posts": {Name: "Article"},
		},
	}

	users := cfg.DumpOptions("users")
	assert.NotNil(t, users.Exclude)
	assert.Empty(t, users.Exclude)
	assert.True(t, users.IsImport())
	assert.Equal(t, []core.ImportOption{
		{Key: "on_duplicate_key_ignore", Value: "true"},
		{Key: "validate", Value: "false"},
	}, users.ImportOptions)
	assert.Equal(t, 50, users.EffectiveBatchSize())

	posts := cfg.DumpOptions("posts")
	assert.Nil(t, posts.Exclude)
	assert.True(t, posts.References)
}

func TestConfig_SourceModels(t *testing.T) {
	cfg := &Config{Models: map[string]ModelConfig{
		"comments": {
			Polymorphic: []PolymorphicConfig{{Name: "commentable", ForeignType: "kind"}},
		},
		"users": {Name: "Account", PrimaryKey: "uid", HasOne: []string{"profiles"}},
	}}

	assert.Equal(t, map[string]source.ModelConfig{
		"comments": {Polymorphic: []source.Polymorphic{{Name: "commentable", ForeignType: "kind"}}},
		"users":    {Name: "Account", PrimaryKey: "uid", HasOne: []string{"profiles"}},
	}, cfg.SourceModels())
}

func TestConfig_AdapterConfig(t *testing.T) {
	cfg := &Config{Target: &TargetConfig{
		Type:     "postgres",
		Database: "app",
		Host:     "db",
		Port:     5432,
		User:     "seed",
		Password: "pw",
		Schema:   "public",
		Options:  map[string]string{"sslmode": "disable"},
	}}

	assert.Equal(t, core.AdapterConfig{
		Type:     "postgres",
		Path:     "app",
		Database: "app",
		Host:     "db",
		Port:     5432,
		Username: "seed",
		Password: "pw",
		Schema:   "public",
		Options:  map[string]string{"sslmode": "disable"},
	}, cfg.AdapterConfig())
}
