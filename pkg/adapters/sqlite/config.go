package sqlite

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds SQLite-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Pragmas are applied after connecting (e.g., foreign_keys: "on").
	Pragmas map[string]string `mapstructure:"pragmas"`

	// ReadOnly opens the database file with mode=ro.
	ReadOnly bool `mapstructure:"read_only"`
}

func parseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}
	if err := mapstructure.WeakDecode(raw, p); err != nil {
		return nil, fmt.Errorf("invalid sqlite params: %w", err)
	}
	return p, nil
}

// pragmaStatements renders the pragmas sorted by name.
func (p *Params) pragmaStatements() []string {
	names := make([]string, 0, len(p.Pragmas))
	for name := range p.Pragmas {
		names = append(names, name)
	}
	sort.Strings(names)

	stmts := make([]string, len(names))
	for i, name := range names {
		stmts[i] = fmt.Sprintf("PRAGMA %s = %s", name, p.Pragmas[name])
	}
	return stmts
}
