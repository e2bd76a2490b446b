// Package main provides tests for the seeddump CLI.
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/seeddump/internal/cli"
	"github.com/leapstack-labs/seeddump/pkg/adapters/sqlite"
	"github.com/leapstack-labs/seeddump/pkg/core"
)

const shopFixture = `
CREATE TABLE customers (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT
);
CREATE TABLE orders (
	id INTEGER PRIMARY KEY,
	customer_id INTEGER REFERENCES customers(id),
	total_cents INTEGER
);
INSERT INTO customers VALUES (1, 'Ada', '2024-01-01'), (2, 'Grace', '2024-01-02');
INSERT INTO orders VALUES (10, 1, 1250), (11, 2, 300);
`

func shopDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")
	adp := sqlite.New(nil)
	if err := adp.Connect(context.Background(), core.AdapterConfig{Path: path}); err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := adp.Exec(context.Background(), shopFixture); err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	if err := adp.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "seeddump") {
		t.Errorf("version output should contain 'seeddump', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	for _, expected := range []string{"dump", "tables", "schema", "doctor", "version", "completion", "--type", "--database", "--target"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	output, err := run(t, "completion", "bash")
	if err != nil {
		t.Errorf("completion command error = %v", err)
	}
	if !strings.Contains(output, "seeddump") {
		t.Errorf("completion script should mention seeddump")
	}
}

func TestDumpCommand_Flags(t *testing.T) {
	db := shopDB(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "defaults",
			args: []string{"dump", "customers"},
			want: "Customer.create!([\n" +
				"  {name: \"Ada\"},\n" +
				"  {name: \"Grace\"}\n" +
				"])\n",
		},
		{
			name: "references and batch size",
			args: []string{"dump", "orders", "--references", "--batch-size", "1"},
			want: "(order_10, order_11) = Order.create!([\n" +
				"  {customer: customer_1, total_cents: 1250},\n" +
				"  {customer: customer_2, total_cents: 300}\n" +
				"])\n",
		},
		{
			name: "custom exclude",
			args: []string{"dump", "customers", "--exclude", "created_at", "--import"},
			want: "Customer.import([:id, :name], [\n" +
				"  [1, \"Ada\"],\n" +
				"  [2, \"Grace\"]\n" +
				"])\n",
		},
		{
			name: "import option implies import",
			args: []string{"dump", "customers", "--import-option", "validate=false"},
			want: "Customer.import([:name], [\n" +
				"  [\"Ada\"],\n" +
				"  [\"Grace\"]\n" +
				"], validate: false)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--type", "sqlite", "--database", db}, tt.args...)
			output, err := run(t, args...)
			if err != nil {
				t.Fatalf("dump error = %v", err)
			}
			if output != tt.want {
				t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", output, tt.want)
			}
		})
	}
}

func TestDumpCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "seeddump.yaml")
	cfg := `target:
  type: sqlite
  database: ` + shopDB(t) + `
dump:
  references: true
  include_has_associations: true
models:
  customers:
    name: Client
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	output, err := run(t, "--config", cfgPath, "dump", "customers")
	if err != nil {
		t.Fatalf("dump error = %v", err)
	}

	want := "(client_1, client_2) = Client.create!([\n" +
		"  {name: \"Ada\"},\n" +
		"  {name: \"Grace\"}\n" +
		"])\n" +
		"(order_10, order_11) = Order.create!([\n" +
		"  {customer: client_1, total_cents: 1250},\n" +
		"  {customer: client_2, total_cents: 300}\n" +
		"])\n"
	if output != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", output, want)
	}
}

func TestDumpCommand_MissingType(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "dump", "customers")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "seeddump.yaml")
	if err := os.WriteFile(cfgPath, []byte("jobs: 1\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	_, err = run(t, "--config", cfgPath, "dump", "customers")
	if err == nil || !strings.Contains(err.Error(), "target type is required") {
		t.Errorf("expected missing type error, got: %v", err)
	}
}
